//go:build integration

package service

import (
	"context"
	"testing"

	"github.com/guttosm/casebreak-service/internal/domain/model"
	"github.com/guttosm/casebreak-service/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckout_MongoIntegration(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMongoStore(setupMongo(t))

	pricing := NewPricingService()
	catalog := NewCatalogService(store, pricing)
	ledger := NewInventoryService(store.Inventory)
	queue := NewFulfillmentService(store, ledger)
	carts := NewCartService(store)
	checkout := NewCheckoutService(store, ledger, queue)

	p, err := catalog.CreateProduct(ctx, model.ProductDraft{
		SKU:             "FW-200",
		Title:           "Sky Thunder",
		CasePrice:       decimal.RequireFromString("84.99"),
		Package:         []int{8},
		IsCaseBreakable: true,
	})
	require.NoError(t, err)
	_, err = ledger.Credit(ctx, p.ID, 4)
	require.NoError(t, err)

	_, err = carts.SetLine(ctx, "user-1", p.ID, 0, 10)
	require.NoError(t, err)

	address := model.Address{Street1: "1 Main St", City: "Springfield", State: "IL", PostalCode: "62701"}

	t.Run("failed checkout changes nothing", func(t *testing.T) {
		_, err := store.Carts.SetLine(ctx, "user-2", model.CartLine{ProductID: p.ID, UnitQuantity: 3})
		require.NoError(t, err)
		_, err = store.Carts.SetLine(ctx, "user-2", model.CartLine{ProductID: "gone", CaseQuantity: 1})
		require.NoError(t, err)

		_, err = checkout.Checkout(ctx, CheckoutInput{UserID: "user-2", ShippingAddress: address})
		assert.ErrorIs(t, err, ErrProductNotFound)

		stock, err := ledger.GetAvailableStock(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 4, stock)
	})

	t.Run("shortfall opens a request", func(t *testing.T) {
		purchase, err := checkout.Checkout(ctx, CheckoutInput{UserID: "user-1", ShippingAddress: address})
		require.NoError(t, err)

		require.Len(t, purchase.Items, 1)
		assert.Equal(t, 10, purchase.Items[0].Quantity)
		assert.True(t, purchase.Subtotal.Equal(decimal.RequireFromString("159.90")))

		stock, err := ledger.GetAvailableStock(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, stock)

		open, err := queue.OpenRequests(ctx)
		require.NoError(t, err)
		require.Len(t, open, 1)
		assert.Equal(t, 6, open[0].Quantity)

		updated, err := queue.Process(ctx, open[0].ID, 8)
		require.NoError(t, err)
		assert.Equal(t, 8, updated.NewTotalStock)

		_, err = queue.Process(ctx, open[0].ID, 8)
		assert.ErrorIs(t, err, ErrRequestAlreadyCompleted)
	})
}
