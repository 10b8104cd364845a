// Package memory provides an in-process store backend used in development mode and tests.
//
// All repositories share one mutex. WithinTransaction holds it for the whole
// callback and restores a snapshot when the callback fails, which gives the same
// all-or-nothing behaviour as the database backends.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/guttosm/casebreak-service/internal/domain/model"
	"github.com/guttosm/casebreak-service/internal/repository"
)

// DriverName identifies this backend in configuration.
const DriverName = "memory"

type txKey struct{}

type state struct {
	products   map[string]model.Product
	skus       map[string]string // sku or unit sku -> product id
	carts      map[string]model.Cart
	purchases  map[string]model.PurchaseRecord
	breakCases map[string]model.BreakCaseRequest
}

func newState() state {
	return state{
		products:   make(map[string]model.Product),
		skus:       make(map[string]string),
		carts:      make(map[string]model.Cart),
		purchases:  make(map[string]model.PurchaseRecord),
		breakCases: make(map[string]model.BreakCaseRequest),
	}
}

func (s state) clone() state {
	c := newState()
	for k, v := range s.products {
		c.products[k] = v.Clone()
	}
	for k, v := range s.skus {
		c.skus[k] = v
	}
	for k, v := range s.carts {
		c.carts[k] = v.Clone()
	}
	for k, v := range s.purchases {
		c.purchases[k] = v.Clone()
	}
	for k, v := range s.breakCases {
		c.breakCases[k] = v
	}
	return c
}

// Store is the in-memory backend. The zero value is not usable; call New.
type Store struct {
	mu    sync.Mutex
	data  state
	clock func() time.Time
}

// New creates an empty store.
func New() *Store {
	return &Store{data: newState(), clock: time.Now}
}

// NewRepositoryStore wraps a new in-memory store as a repository.Store.
func NewRepositoryStore() (*repository.Store, *Store) {
	s := New()
	return repository.NewStore(DriverName, s, s.Products(), s.Inventory(), s.Carts(), s.Purchases(), s.BreakCases(), nil, nil), s
}

// WithinTransaction runs fn while holding the store lock and rolls back on error.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

func (s *Store) inTx(ctx context.Context) bool {
	owner, ok := ctx.Value(txKey{}).(*Store)
	return ok && owner == s
}

// lock acquires the store mutex unless ctx already holds it through a transaction.
func (s *Store) lock(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// Products returns the product repository view.
func (s *Store) Products() repository.ProductRepositoryInterface { return &productRepo{s} }

// Inventory returns the inventory repository view.
func (s *Store) Inventory() repository.InventoryRepositoryInterface { return &inventoryRepo{s} }

// Carts returns the cart repository view.
func (s *Store) Carts() repository.CartRepositoryInterface { return &cartRepo{s} }

// Purchases returns the purchase repository view.
func (s *Store) Purchases() repository.PurchaseRepositoryInterface { return &purchaseRepo{s} }

// BreakCases returns the break-case request repository view.
func (s *Store) BreakCases() repository.BreakCaseRepositoryInterface { return &breakCaseRepo{s} }

type productRepo struct{ s *Store }

func (r *productRepo) Create(ctx context.Context, p *model.Product) error {
	defer r.s.lock(ctx)()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if _, exists := r.s.data.products[p.ID]; exists {
		return repository.ErrDuplicateKey
	}
	if err := r.s.checkSKUs(p, ""); err != nil {
		return err
	}
	now := r.s.clock()
	p.CreatedAt, p.UpdatedAt = now, now
	r.s.data.products[p.ID] = p.Clone()
	r.s.indexSKUs(p)
	return nil
}

func (r *productRepo) Update(ctx context.Context, p *model.Product) error {
	defer r.s.lock(ctx)()

	current, ok := r.s.data.products[p.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if err := r.s.checkSKUs(p, p.ID); err != nil {
		return err
	}

	next := p.Clone()
	next.CreatedAt = current.CreatedAt
	next.UpdatedAt = r.s.clock()
	if next.UnitProduct != nil && current.UnitProduct != nil {
		next.UnitProduct.AvailableStock = current.UnitProduct.AvailableStock
	}

	r.s.unindexSKUs(current)
	r.s.data.products[p.ID] = next
	r.s.indexSKUs(&next)

	*p = next.Clone()
	return nil
}

func (r *productRepo) FindByID(ctx context.Context, id string) (*model.Product, error) {
	defer r.s.lock(ctx)()

	p, ok := r.s.data.products[id]
	if !ok {
		return nil, nil
	}
	c := p.Clone()
	return &c, nil
}

func (s *Store) checkSKUs(p *model.Product, selfID string) error {
	for _, sku := range productSKUs(p) {
		if owner, taken := s.data.skus[sku]; taken && owner != selfID {
			return repository.ErrDuplicateKey
		}
	}
	return nil
}

func (s *Store) indexSKUs(p *model.Product) {
	for _, sku := range productSKUs(p) {
		s.data.skus[sku] = p.ID
	}
}

func (s *Store) unindexSKUs(p model.Product) {
	for _, sku := range productSKUs(&p) {
		delete(s.data.skus, sku)
	}
}

func productSKUs(p *model.Product) []string {
	skus := []string{p.SKU}
	if p.UnitProduct != nil {
		skus = append(skus, p.UnitProduct.SKU)
	}
	return skus
}

type inventoryRepo struct{ s *Store }

func (r *inventoryRepo) unit(productID string) (model.Product, error) {
	p, ok := r.s.data.products[productID]
	if !ok {
		return model.Product{}, repository.ErrNotFound
	}
	if p.UnitProduct == nil {
		return model.Product{}, repository.ErrNoUnitInventory
	}
	return p, nil
}

func (r *inventoryRepo) AvailableStock(ctx context.Context, productID string) (int, error) {
	defer r.s.lock(ctx)()

	p, err := r.unit(productID)
	if err != nil {
		return 0, err
	}
	return p.UnitProduct.AvailableStock, nil
}

func (r *inventoryRepo) Reserve(ctx context.Context, productID string, requested int) (int, error) {
	defer r.s.lock(ctx)()

	p, err := r.unit(productID)
	if err != nil {
		return 0, err
	}
	reserved := min(p.UnitProduct.AvailableStock, requested)
	p.UnitProduct.AvailableStock -= reserved
	r.s.data.products[productID] = p
	return reserved, nil
}

func (r *inventoryRepo) Credit(ctx context.Context, productID string, quantity int) (int, error) {
	defer r.s.lock(ctx)()

	p, err := r.unit(productID)
	if err != nil {
		return 0, err
	}
	p.UnitProduct.AvailableStock += quantity
	r.s.data.products[productID] = p
	return p.UnitProduct.AvailableStock, nil
}

type cartRepo struct{ s *Store }

func (r *cartRepo) GetByUser(ctx context.Context, userID string) (*model.Cart, error) {
	defer r.s.lock(ctx)()

	c, ok := r.s.data.carts[userID]
	if !ok {
		return nil, nil
	}
	out := c.Clone()
	return &out, nil
}

func (r *cartRepo) SetLine(ctx context.Context, userID string, line model.CartLine) (*model.Cart, error) {
	defer r.s.lock(ctx)()

	c, ok := r.s.data.carts[userID]
	if !ok {
		c = model.Cart{ID: uuid.NewString(), UserID: userID}
	}
	c.SetLine(line.ProductID, line.CaseQuantity, line.UnitQuantity)
	c.UpdatedAt = r.s.clock()
	r.s.data.carts[userID] = c

	out := c.Clone()
	return &out, nil
}

func (r *cartRepo) Clear(ctx context.Context, cartID string) (int64, error) {
	defer r.s.lock(ctx)()

	for userID, c := range r.s.data.carts {
		if c.ID != cartID {
			continue
		}
		n := int64(len(c.Lines))
		c.Lines = nil
		c.UpdatedAt = r.s.clock()
		r.s.data.carts[userID] = c
		return n, nil
	}
	return 0, nil
}

type purchaseRepo struct{ s *Store }

func (r *purchaseRepo) Create(ctx context.Context, p *model.PurchaseRecord) error {
	defer r.s.lock(ctx)()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if _, exists := r.s.data.purchases[p.ID]; exists {
		return repository.ErrDuplicateKey
	}
	if p.PurchasedAt.IsZero() {
		p.PurchasedAt = r.s.clock()
	}
	r.s.data.purchases[p.ID] = p.Clone()
	return nil
}

func (r *purchaseRepo) FindByID(ctx context.Context, id string) (*model.PurchaseRecord, error) {
	defer r.s.lock(ctx)()

	p, ok := r.s.data.purchases[id]
	if !ok {
		return nil, nil
	}
	out := p.Clone()
	return &out, nil
}

func (r *purchaseRepo) List(ctx context.Context, filter model.PurchaseFilter) ([]model.PurchaseRecord, error) {
	defer r.s.lock(ctx)()

	out := make([]model.PurchaseRecord, 0)
	for _, p := range r.s.data.purchases {
		if filter.Matches(p) {
			out = append(out, p.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PurchasedAt.After(out[j].PurchasedAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *purchaseRepo) UpdateStatus(ctx context.Context, id string, status model.PurchaseStatus) (*model.PurchaseRecord, error) {
	defer r.s.lock(ctx)()

	p, ok := r.s.data.purchases[id]
	if !ok {
		return nil, nil
	}
	p.Status = status
	r.s.data.purchases[id] = p
	out := p.Clone()
	return &out, nil
}

type breakCaseRepo struct{ s *Store }

func (r *breakCaseRepo) Create(ctx context.Context, req *model.BreakCaseRequest) error {
	defer r.s.lock(ctx)()

	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = r.s.clock()
	}
	if req.Status == "" {
		req.Status = model.RequestStatusOpen
	}
	r.s.data.breakCases[req.ID] = *req
	return nil
}

func (r *breakCaseRepo) FindByID(ctx context.Context, id string) (*model.BreakCaseRequest, error) {
	defer r.s.lock(ctx)()

	req, ok := r.s.data.breakCases[id]
	if !ok {
		return nil, nil
	}
	return &req, nil
}

func (r *breakCaseRepo) MarkCompleted(ctx context.Context, id string, completedAt time.Time) error {
	defer r.s.lock(ctx)()

	req, ok := r.s.data.breakCases[id]
	if !ok {
		return repository.ErrNotFound
	}
	if req.Status != model.RequestStatusOpen {
		return repository.ErrConflict
	}
	req.Status = model.RequestStatusCompleted
	req.CompletedAt = &completedAt
	r.s.data.breakCases[id] = req
	return nil
}

func (r *breakCaseRepo) List(ctx context.Context, filter model.BreakCaseFilter) ([]model.BreakCaseRequest, error) {
	defer r.s.lock(ctx)()

	out := make([]model.BreakCaseRequest, 0)
	for _, req := range r.s.data.breakCases {
		if filter.Matches(req) {
			out = append(out, req)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
