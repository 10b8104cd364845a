//go:build integration

package repository

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/guttosm/casebreak-service/internal/domain/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBreakableProduct(sku string, stock int) *model.Product {
	return &model.Product{
		SKU:             sku,
		Title:           "Product " + sku,
		CasePrice:       decimal.RequireFromString("84.99"),
		Package:         []int{8, 1},
		IsCaseBreakable: true,
		UnitProduct: &model.UnitProduct{
			SKU:            model.UnitSKU(sku),
			UnitPrice:      decimal.RequireFromString("15.99"),
			AvailableStock: stock,
			Package:        []int{1, 1},
		},
	}
}

func TestMongoStore_Products(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMongoStore(setupTestDBFromSharedContainer(t))

	p := newBreakableProduct("FW-100", 7)
	require.NoError(t, store.Products.Create(ctx, p))
	assert.NotEmpty(t, p.ID)

	t.Run("duplicate sku", func(t *testing.T) {
		err := store.Products.Create(ctx, newBreakableProduct("FW-100", 0))
		assert.ErrorIs(t, err, ErrDuplicateKey)
	})

	t.Run("update keeps stock", func(t *testing.T) {
		p.Title = "Renamed"
		p.UnitProduct.AvailableStock = 0
		p.UnitProduct.UnitPrice = decimal.RequireFromString("16.99")
		require.NoError(t, store.Products.Update(ctx, p))

		assert.Equal(t, "Renamed", p.Title)
		assert.Equal(t, 7, p.UnitProduct.AvailableStock)
		assert.True(t, p.UnitProduct.UnitPrice.Equal(decimal.RequireFromString("16.99")))
	})

	t.Run("remove and re-add facet", func(t *testing.T) {
		p.UnitProduct = nil
		p.IsCaseBreakable = false
		require.NoError(t, store.Products.Update(ctx, p))
		assert.Nil(t, p.UnitProduct)

		_, err := store.Inventory.AvailableStock(ctx, p.ID)
		assert.ErrorIs(t, err, ErrNoUnitInventory)

		p.IsCaseBreakable = true
		p.UnitProduct = &model.UnitProduct{SKU: "FW-100-u", UnitPrice: decimal.RequireFromString("15.99"), Package: []int{1, 1}}
		require.NoError(t, store.Products.Update(ctx, p))
		stock, err := store.Inventory.AvailableStock(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, stock)
	})

	t.Run("missing product", func(t *testing.T) {
		got, err := store.Products.FindByID(ctx, "missing")
		assert.NoError(t, err)
		assert.Nil(t, got)

		_, err = store.Inventory.Reserve(ctx, "missing", 1)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestMongoStore_Reserve(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMongoStore(setupTestDBFromSharedContainer(t))

	p := newBreakableProduct("FW-200", 4)
	require.NoError(t, store.Products.Create(ctx, p))

	got, err := store.Inventory.Reserve(ctx, p.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, 4, got)

	got, err = store.Inventory.Reserve(ctx, p.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 0, got)

	stock, err := store.Inventory.Credit(ctx, p.ID, 6)
	require.NoError(t, err)
	assert.Equal(t, 6, stock)
}

func TestMongoStore_ConcurrentReserve(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMongoStore(setupTestDBFromSharedContainer(t))

	p := newBreakableProduct("FW-300", 1)
	require.NoError(t, store.Products.Create(ctx, p))

	var wg sync.WaitGroup
	var won atomic.Int32
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Transactor.WithinTransaction(ctx, func(ctx context.Context) error {
				got, err := store.Inventory.Reserve(ctx, p.ID, 1)
				if err != nil {
					return err
				}
				if got == 1 {
					won.Add(1)
				}
				return nil
			})
		}()
	}
	wg.Wait()

	stock, err := store.Inventory.AvailableStock(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stock)
	assert.GreaterOrEqual(t, won.Load(), int32(1))
}

func TestMongoStore_TransactionRollback(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMongoStore(setupTestDBFromSharedContainer(t))

	p := newBreakableProduct("FW-400", 5)
	require.NoError(t, store.Products.Create(ctx, p))
	boom := errors.New("boom")

	err := store.Transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := store.Inventory.Reserve(ctx, p.ID, 5); err != nil {
			return err
		}
		if err := store.BreakCases.Create(ctx, &model.BreakCaseRequest{ProductID: p.ID, Quantity: 1}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	stock, err := store.Inventory.AvailableStock(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stock)

	reqs, err := store.BreakCases.List(ctx, model.BreakCaseFilter{})
	require.NoError(t, err)
	assert.Empty(t, reqs)
}

func TestMongoStore_BreakCasesAndPurchases(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMongoStore(setupTestDBFromSharedContainer(t))

	req := &model.BreakCaseRequest{ProductID: "p1", Quantity: 6, PurchaseID: "buy-1"}
	require.NoError(t, store.BreakCases.Create(ctx, req))
	require.NoError(t, store.BreakCases.MarkCompleted(ctx, req.ID, time.Now().UTC()))
	assert.ErrorIs(t, store.BreakCases.MarkCompleted(ctx, req.ID, time.Now().UTC()), ErrConflict)
	assert.ErrorIs(t, store.BreakCases.MarkCompleted(ctx, "missing", time.Now().UTC()), ErrNotFound)

	open, err := store.BreakCases.List(ctx, model.BreakCaseFilter{Status: model.RequestStatusOpen})
	require.NoError(t, err)
	assert.Empty(t, open)

	purchase := &model.PurchaseRecord{
		UserID:   "u1",
		Items:    []model.PurchaseItem{{ProductID: "p1", Quantity: 10, Kind: model.ItemKindUnit, ItemSubtotal: decimal.RequireFromString("139.90")}},
		Subtotal: decimal.RequireFromString("139.90"), GrandTotal: decimal.RequireFromString("139.90"),
		Status: model.PurchaseStatusPending,
	}
	require.NoError(t, store.Purchases.Create(ctx, purchase))

	updated, err := store.Purchases.UpdateStatus(ctx, purchase.ID, model.PurchaseStatusShipped)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, model.PurchaseStatusShipped, updated.Status)
	assert.True(t, updated.Subtotal.Equal(decimal.RequireFromString("139.90")))

	list, err := store.Purchases.List(ctx, model.PurchaseFilter{UserID: "u1"})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestMongoStore_Carts(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMongoStore(setupTestDBFromSharedContainer(t))

	cart, err := store.Carts.SetLine(ctx, "u1", model.CartLine{ProductID: "a", CaseQuantity: 2})
	require.NoError(t, err)
	_, err = store.Carts.SetLine(ctx, "u1", model.CartLine{ProductID: "b", UnitQuantity: 3})
	require.NoError(t, err)

	got, err := store.Carts.GetByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, got.Lines, 2)

	n, err := store.Carts.Clear(ctx, cart.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestLogsRepository_Integration(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := setupTestDBFromSharedContainer(t)
	require.NoError(t, db.SetLogsTTL(ctx, 30*24*time.Hour))

	repo := NewLogsRepository(db)
	require.NoError(t, repo.CreateMany(ctx, []*LogEntryDocument{
		{Level: "info", Message: "checkout", ActionType: "checkout", UserID: "u1"},
		{Level: "info", Message: "process", ActionType: "process_case_break"},
	}))

	entries, err := repo.Query(ctx, model.LogQueryOptions{ActionType: "checkout"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "u1", entries[0].UserID)

	n, err := repo.Count(ctx, model.LogQueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestMongoDB_SetLogsTTL_Integration(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := setupTestDBFromSharedContainer(t)

	ttlSeconds := func() (int32, bool) {
		cursor, err := db.Logs.Indexes().List(ctx)
		require.NoError(t, err)
		var specs []struct {
			Name               string `bson:"name"`
			ExpireAfterSeconds *int32 `bson:"expireAfterSeconds"`
		}
		require.NoError(t, cursor.All(ctx, &specs))
		for _, s := range specs {
			if s.Name == logsTTLIndex && s.ExpireAfterSeconds != nil {
				return *s.ExpireAfterSeconds, true
			}
		}
		return 0, false
	}

	require.NoError(t, db.SetLogsTTL(ctx, 24*time.Hour))
	got, ok := ttlSeconds()
	require.True(t, ok)
	assert.Equal(t, int32(86400), got)

	require.NoError(t, db.SetLogsTTL(ctx, time.Hour))
	got, ok = ttlSeconds()
	require.True(t, ok)
	assert.Equal(t, int32(3600), got)

	require.NoError(t, db.SetLogsTTL(ctx, 0))
	_, ok = ttlSeconds()
	assert.False(t, ok)
}
