// Package repository provides interfaces for repository operations.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/guttosm/casebreak-service/internal/domain/model"
)

var (
	// ErrNotFound is returned by ledger and state-transition operations when the target row is absent.
	ErrNotFound = errors.New("repository: not found")
	// ErrNoUnitInventory is returned when a product exists but has no unit facet.
	ErrNoUnitInventory = errors.New("repository: product has no unit inventory")
	// ErrDuplicateKey is returned when a unique constraint (SKU, unit SKU) is violated.
	ErrDuplicateKey = errors.New("repository: duplicate key")
	// ErrConflict is returned when a conditional update found the row in an unexpected state.
	ErrConflict = errors.New("repository: conflicting state")
)

// Transactor runs fn inside a store transaction. The context handed to fn carries
// the transaction; repository calls made with it join the transaction. Calling
// WithinTransaction with a context that already carries one runs fn in place.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ProductRepositoryInterface defines catalog persistence.
// Update never writes the unit facet's available stock of an existing facet.
type ProductRepositoryInterface interface {
	Create(ctx context.Context, product *model.Product) error
	Update(ctx context.Context, product *model.Product) error
	FindByID(ctx context.Context, id string) (*model.Product, error)
}

// InventoryRepositoryInterface defines unit stock persistence. Reserve and Credit
// are single atomic conditional updates.
type InventoryRepositoryInterface interface {
	AvailableStock(ctx context.Context, productID string) (int, error)
	// Reserve decrements stock by min(stock, requested) and returns the amount taken.
	Reserve(ctx context.Context, productID string, requested int) (int, error)
	// Credit increments stock and returns the new level.
	Credit(ctx context.Context, productID string, quantity int) (int, error)
}

// CartRepositoryInterface defines cart persistence.
type CartRepositoryInterface interface {
	GetByUser(ctx context.Context, userID string) (*model.Cart, error)
	SetLine(ctx context.Context, userID string, line model.CartLine) (*model.Cart, error)
	Clear(ctx context.Context, cartID string) (int64, error)
}

// PurchaseRepositoryInterface defines purchase persistence. Records are immutable
// apart from status.
type PurchaseRepositoryInterface interface {
	Create(ctx context.Context, purchase *model.PurchaseRecord) error
	FindByID(ctx context.Context, id string) (*model.PurchaseRecord, error)
	List(ctx context.Context, filter model.PurchaseFilter) ([]model.PurchaseRecord, error)
	UpdateStatus(ctx context.Context, id string, status model.PurchaseStatus) (*model.PurchaseRecord, error)
}

// BreakCaseRepositoryInterface defines break-case request persistence.
type BreakCaseRepositoryInterface interface {
	Create(ctx context.Context, request *model.BreakCaseRequest) error
	FindByID(ctx context.Context, id string) (*model.BreakCaseRequest, error)
	// MarkCompleted moves an OPEN request to COMPLETED. It returns ErrNotFound when
	// the request is absent and ErrConflict when it is not OPEN.
	MarkCompleted(ctx context.Context, id string, completedAt time.Time) error
	List(ctx context.Context, filter model.BreakCaseFilter) ([]model.BreakCaseRequest, error)
}

// LogsRepositoryInterface defines the interface for logs repository operations.
type LogsRepositoryInterface interface {
	Create(ctx context.Context, entry *LogEntryDocument) error
	CreateMany(ctx context.Context, entries []*LogEntryDocument) error
	Query(ctx context.Context, q model.LogQueryOptions) ([]*LogEntryDocument, error)
	Count(ctx context.Context, q model.LogQueryOptions) (int64, error)
}

// Store bundles the repositories of one backend.
type Store struct {
	Driver     string
	Transactor Transactor
	Products   ProductRepositoryInterface
	Inventory  InventoryRepositoryInterface
	Carts      CartRepositoryInterface
	Purchases  PurchaseRepositoryInterface
	BreakCases BreakCaseRepositoryInterface

	healthCheck func(ctx context.Context) error
	close       func(ctx context.Context) error
}

// NewStore assembles a Store. healthCheck and closeFn may be nil.
func NewStore(driver string, tx Transactor, products ProductRepositoryInterface, inventory InventoryRepositoryInterface,
	carts CartRepositoryInterface, purchases PurchaseRepositoryInterface, breakCases BreakCaseRepositoryInterface,
	healthCheck, closeFn func(ctx context.Context) error) *Store {
	return &Store{
		Driver:      driver,
		Transactor:  tx,
		Products:    products,
		Inventory:   inventory,
		Carts:       carts,
		Purchases:   purchases,
		BreakCases:  breakCases,
		healthCheck: healthCheck,
		close:       closeFn,
	}
}

// HealthCheck pings the backend.
func (s *Store) HealthCheck(ctx context.Context) error {
	if s.healthCheck == nil {
		return nil
	}
	return s.healthCheck(ctx)
}

// Close releases backend resources.
func (s *Store) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}
