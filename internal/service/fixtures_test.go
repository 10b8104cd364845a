//go:build !integration

package service

import (
	"context"
	"sync"
	"testing"

	"github.com/guttosm/casebreak-service/internal/domain/model"
	"github.com/guttosm/casebreak-service/internal/notification"
	"github.com/guttosm/casebreak-service/internal/repository"
	"github.com/guttosm/casebreak-service/internal/repository/memory"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu     sync.Mutex
	events []notification.Event
	err    error
}

func (s *recordingSink) Notify(_ context.Context, e notification.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return s.err
}

func (s *recordingSink) Events() []notification.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]notification.Event(nil), s.events...)
}

type testEnv struct {
	store    *repository.Store
	pricing  *PricingServiceImpl
	catalog  *CatalogServiceImpl
	ledger   *InventoryServiceImpl
	queue    *FulfillmentServiceImpl
	carts    *CartServiceImpl
	checkout *CheckoutServiceImpl
	sink     *recordingSink
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store, _ := memory.NewRepositoryStore()
	sink := &recordingSink{}
	pricing := NewPricingService()
	ledger := NewInventoryService(store.Inventory)
	queue := NewFulfillmentService(store, ledger, WithFulfillmentNotifier(sink))

	return &testEnv{
		store:    store,
		pricing:  pricing,
		catalog:  NewCatalogService(store, pricing),
		ledger:   ledger,
		queue:    queue,
		carts:    NewCartService(store),
		checkout: NewCheckoutService(store, ledger, queue, WithCheckoutNotifier(sink)),
		sink:     sink,
	}
}

// seedProduct creates a product through the catalog and tops its unit stock up to stock.
func (e *testEnv) seedProduct(t *testing.T, sku, casePrice string, pkg []int, breakable bool, stock int) *model.Product {
	t.Helper()
	ctx := context.Background()

	p, err := e.catalog.CreateProduct(ctx, model.ProductDraft{
		SKU:             sku,
		Title:           "Product " + sku,
		CasePrice:       dec(casePrice),
		Package:         pkg,
		IsCaseBreakable: breakable,
	})
	require.NoError(t, err)

	if stock > 0 {
		_, err = e.ledger.Credit(ctx, p.ID, stock)
		require.NoError(t, err)
	}

	p, err = e.catalog.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	return p
}

func (e *testEnv) stock(t *testing.T, productID string) int {
	t.Helper()
	n, err := e.ledger.GetAvailableStock(context.Background(), productID)
	require.NoError(t, err)
	return n
}

func testAddress() model.Address {
	return model.Address{Street1: "1 Main St", City: "Springfield", State: "IL", PostalCode: "62701"}
}
