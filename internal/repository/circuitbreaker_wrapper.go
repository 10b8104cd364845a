package repository

import (
	"context"
	"errors"
	"time"

	"github.com/guttosm/casebreak-service/internal/circuitbreaker"
	"github.com/guttosm/casebreak-service/internal/domain/model"
)

// IsStoreFailure reports whether err came from the backend rather than from a
// row being absent or in the wrong state.
func IsStoreFailure(err error) bool {
	switch {
	case err == nil,
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrNoUnitInventory),
		errors.Is(err, ErrDuplicateKey),
		errors.Is(err, ErrConflict):
		return false
	}
	return true
}

// WithCircuitBreaker returns a Store whose every call goes through cb.
func WithCircuitBreaker(s *Store, cb *circuitbreaker.CircuitBreaker) *Store {
	return &Store{
		Driver:      s.Driver,
		Transactor:  &transactorWithCircuitBreaker{next: s.Transactor, cb: cb},
		Products:    &productsWithCircuitBreaker{next: s.Products, cb: cb},
		Inventory:   &inventoryWithCircuitBreaker{next: s.Inventory, cb: cb},
		Carts:       &cartsWithCircuitBreaker{next: s.Carts, cb: cb},
		Purchases:   &purchasesWithCircuitBreaker{next: s.Purchases, cb: cb},
		BreakCases:  &breakCasesWithCircuitBreaker{next: s.BreakCases, cb: cb},
		healthCheck: s.healthCheck,
		close:       s.close,
	}
}

type transactorWithCircuitBreaker struct {
	next Transactor
	cb   *circuitbreaker.CircuitBreaker
}

func (t *transactorWithCircuitBreaker) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return t.cb.Execute(ctx, func() error {
		return t.next.WithinTransaction(ctx, fn)
	})
}

type productsWithCircuitBreaker struct {
	next ProductRepositoryInterface
	cb   *circuitbreaker.CircuitBreaker
}

func (r *productsWithCircuitBreaker) Create(ctx context.Context, p *model.Product) error {
	return r.cb.Execute(ctx, func() error { return r.next.Create(ctx, p) })
}

func (r *productsWithCircuitBreaker) Update(ctx context.Context, p *model.Product) error {
	return r.cb.Execute(ctx, func() error { return r.next.Update(ctx, p) })
}

func (r *productsWithCircuitBreaker) FindByID(ctx context.Context, id string) (*model.Product, error) {
	return circuitbreaker.Do(ctx, r.cb, func() (*model.Product, error) { return r.next.FindByID(ctx, id) })
}

type inventoryWithCircuitBreaker struct {
	next InventoryRepositoryInterface
	cb   *circuitbreaker.CircuitBreaker
}

func (r *inventoryWithCircuitBreaker) AvailableStock(ctx context.Context, productID string) (int, error) {
	return circuitbreaker.Do(ctx, r.cb, func() (int, error) { return r.next.AvailableStock(ctx, productID) })
}

func (r *inventoryWithCircuitBreaker) Reserve(ctx context.Context, productID string, requested int) (int, error) {
	return circuitbreaker.Do(ctx, r.cb, func() (int, error) { return r.next.Reserve(ctx, productID, requested) })
}

func (r *inventoryWithCircuitBreaker) Credit(ctx context.Context, productID string, quantity int) (int, error) {
	return circuitbreaker.Do(ctx, r.cb, func() (int, error) { return r.next.Credit(ctx, productID, quantity) })
}

type cartsWithCircuitBreaker struct {
	next CartRepositoryInterface
	cb   *circuitbreaker.CircuitBreaker
}

func (r *cartsWithCircuitBreaker) GetByUser(ctx context.Context, userID string) (*model.Cart, error) {
	return circuitbreaker.Do(ctx, r.cb, func() (*model.Cart, error) { return r.next.GetByUser(ctx, userID) })
}

func (r *cartsWithCircuitBreaker) SetLine(ctx context.Context, userID string, line model.CartLine) (*model.Cart, error) {
	return circuitbreaker.Do(ctx, r.cb, func() (*model.Cart, error) { return r.next.SetLine(ctx, userID, line) })
}

func (r *cartsWithCircuitBreaker) Clear(ctx context.Context, cartID string) (int64, error) {
	return circuitbreaker.Do(ctx, r.cb, func() (int64, error) { return r.next.Clear(ctx, cartID) })
}

type purchasesWithCircuitBreaker struct {
	next PurchaseRepositoryInterface
	cb   *circuitbreaker.CircuitBreaker
}

func (r *purchasesWithCircuitBreaker) Create(ctx context.Context, p *model.PurchaseRecord) error {
	return r.cb.Execute(ctx, func() error { return r.next.Create(ctx, p) })
}

func (r *purchasesWithCircuitBreaker) FindByID(ctx context.Context, id string) (*model.PurchaseRecord, error) {
	return circuitbreaker.Do(ctx, r.cb, func() (*model.PurchaseRecord, error) { return r.next.FindByID(ctx, id) })
}

func (r *purchasesWithCircuitBreaker) List(ctx context.Context, f model.PurchaseFilter) ([]model.PurchaseRecord, error) {
	return circuitbreaker.Do(ctx, r.cb, func() ([]model.PurchaseRecord, error) { return r.next.List(ctx, f) })
}

func (r *purchasesWithCircuitBreaker) UpdateStatus(ctx context.Context, id string, status model.PurchaseStatus) (*model.PurchaseRecord, error) {
	return circuitbreaker.Do(ctx, r.cb, func() (*model.PurchaseRecord, error) { return r.next.UpdateStatus(ctx, id, status) })
}

type breakCasesWithCircuitBreaker struct {
	next BreakCaseRepositoryInterface
	cb   *circuitbreaker.CircuitBreaker
}

func (r *breakCasesWithCircuitBreaker) Create(ctx context.Context, req *model.BreakCaseRequest) error {
	return r.cb.Execute(ctx, func() error { return r.next.Create(ctx, req) })
}

func (r *breakCasesWithCircuitBreaker) FindByID(ctx context.Context, id string) (*model.BreakCaseRequest, error) {
	return circuitbreaker.Do(ctx, r.cb, func() (*model.BreakCaseRequest, error) { return r.next.FindByID(ctx, id) })
}

func (r *breakCasesWithCircuitBreaker) MarkCompleted(ctx context.Context, id string, completedAt time.Time) error {
	return r.cb.Execute(ctx, func() error { return r.next.MarkCompleted(ctx, id, completedAt) })
}

func (r *breakCasesWithCircuitBreaker) List(ctx context.Context, f model.BreakCaseFilter) ([]model.BreakCaseRequest, error) {
	return circuitbreaker.Do(ctx, r.cb, func() ([]model.BreakCaseRequest, error) { return r.next.List(ctx, f) })
}

// LogsRepositoryWithCircuitBreaker wraps LogsRepository with circuit breaker protection.
// Writes are dropped silently while the circuit is open; logging is not critical.
type LogsRepositoryWithCircuitBreaker struct {
	repo           LogsRepositoryInterface
	circuitBreaker *circuitbreaker.CircuitBreaker
}

// NewLogsRepositoryWithCircuitBreaker creates a new repository wrapper with circuit breaker.
func NewLogsRepositoryWithCircuitBreaker(repo LogsRepositoryInterface, cb *circuitbreaker.CircuitBreaker) *LogsRepositoryWithCircuitBreaker {
	return &LogsRepositoryWithCircuitBreaker{repo: repo, circuitBreaker: cb}
}

// Create stores a single log entry.
func (r *LogsRepositoryWithCircuitBreaker) Create(ctx context.Context, entry *LogEntryDocument) error {
	err := r.circuitBreaker.Execute(ctx, func() error { return r.repo.Create(ctx, entry) })
	if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		return nil
	}
	return err
}

// CreateMany stores multiple log entries.
func (r *LogsRepositoryWithCircuitBreaker) CreateMany(ctx context.Context, entries []*LogEntryDocument) error {
	err := r.circuitBreaker.Execute(ctx, func() error { return r.repo.CreateMany(ctx, entries) })
	if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		return nil
	}
	return err
}

// Query retrieves log entries.
func (r *LogsRepositoryWithCircuitBreaker) Query(ctx context.Context, q model.LogQueryOptions) ([]*LogEntryDocument, error) {
	return circuitbreaker.Do(ctx, r.circuitBreaker, func() ([]*LogEntryDocument, error) { return r.repo.Query(ctx, q) })
}

// Count returns the number of matching log entries.
func (r *LogsRepositoryWithCircuitBreaker) Count(ctx context.Context, q model.LogQueryOptions) (int64, error) {
	return circuitbreaker.Do(ctx, r.circuitBreaker, func() (int64, error) { return r.repo.Count(ctx, q) })
}

// GetCircuitBreaker returns the underlying circuit breaker for monitoring.
func (r *LogsRepositoryWithCircuitBreaker) GetCircuitBreaker() *circuitbreaker.CircuitBreaker {
	return r.circuitBreaker
}
