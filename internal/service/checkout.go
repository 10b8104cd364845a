package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/guttosm/casebreak-service/internal/domain/model"
	"github.com/guttosm/casebreak-service/internal/logger"
	"github.com/guttosm/casebreak-service/internal/metrics"
	"github.com/guttosm/casebreak-service/internal/notification"
	"github.com/guttosm/casebreak-service/internal/repository"
	"github.com/shopspring/decimal"
)

// CheckoutInput is what a customer submits to turn their cart into a purchase.
type CheckoutInput struct {
	UserID          string
	ShippingAddress model.Address
	Adjustments     model.Adjustments
}

// CheckoutService converts carts into purchases.
type CheckoutService interface {
	Checkout(ctx context.Context, in CheckoutInput) (*model.PurchaseRecord, error)
}

// CheckoutOption configures a CheckoutServiceImpl.
type CheckoutOption func(*CheckoutServiceImpl)

// WithCheckoutNotifier sets the sink told about completed purchases.
func WithCheckoutNotifier(sink notification.Sink) CheckoutOption {
	return func(s *CheckoutServiceImpl) {
		if sink != nil {
			s.sink = sink
		}
	}
}

// WithCheckoutClock overrides time.Now.
func WithCheckoutClock(now func() time.Time) CheckoutOption {
	return func(s *CheckoutServiceImpl) {
		s.now = now
	}
}

// CheckoutServiceImpl implements CheckoutService.
type CheckoutServiceImpl struct {
	tx        repository.Transactor
	carts     repository.CartRepositoryInterface
	products  repository.ProductRepositoryInterface
	purchases repository.PurchaseRepositoryInterface
	ledger    InventoryService
	queue     FulfillmentService
	sink      notification.Sink
	now       func() time.Time
}

// NewCheckoutService wires checkout to store, the unit ledger and the break-case queue.
func NewCheckoutService(store *repository.Store, ledger InventoryService, queue FulfillmentService, opts ...CheckoutOption) *CheckoutServiceImpl {
	s := &CheckoutServiceImpl{
		tx:        store.Transactor,
		carts:     store.Carts,
		products:  store.Products,
		purchases: store.Purchases,
		ledger:    ledger,
		queue:     queue,
		sink:      notification.Nop,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Checkout prices every cart line, reserves units, records shortfalls, stores
// the purchase and empties the cart in one transaction. Any failure leaves
// stock, requests, purchases and the cart untouched.
func (s *CheckoutServiceImpl) Checkout(ctx context.Context, in CheckoutInput) (*model.PurchaseRecord, error) {
	start := time.Now()

	if in.UserID == "" {
		return nil, ErrMissingUser
	}
	if !in.ShippingAddress.Complete() {
		return nil, ErrMissingShippingAddress
	}
	if err := validateAdjustments(in.Adjustments); err != nil {
		return nil, err
	}

	var (
		purchase  *model.PurchaseRecord
		created   []model.BreakCaseRequest
		fromStock []model.PurchaseItem
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		// the driver may rerun this function on a transient abort
		purchase, created, fromStock = nil, nil, nil

		cart, err := s.carts.GetByUser(ctx, in.UserID)
		if err != nil {
			return fmt.Errorf("load cart: %w", err)
		}
		if cart.IsEmpty() {
			return ErrCartEmpty
		}

		record := &model.PurchaseRecord{
			ID:              uuid.NewString(),
			UserID:          in.UserID,
			ShippingAddress: in.ShippingAddress,
			Status:          model.PurchaseStatusPending,
			PurchasedAt:     s.now(),
		}

		subtotal := decimal.Zero
		var (
			requests []model.BreakCaseRequest
			reserved []model.PurchaseItem
		)
		for i, line := range cart.Lines {
			out, err := s.checkoutLine(ctx, record.ID, line)
			if err != nil {
				return &CheckoutError{Line: i, ProductID: line.ProductID, Err: err}
			}
			for _, item := range out.items {
				subtotal = subtotal.Add(item.ItemSubtotal)
			}
			record.Items = append(record.Items, out.items...)
			requests = append(requests, out.requests...)
			if out.fromStock != nil {
				reserved = append(reserved, *out.fromStock)
			}
		}

		adj := in.Adjustments
		record.Subtotal = subtotal
		record.Tax = adj.Tax
		record.Shipping = adj.Shipping
		record.LiftGateFee = adj.LiftGateFee
		record.Discount = adj.Discount
		record.GrandTotal = subtotal.Add(adj.Tax).Add(adj.Shipping).Add(adj.LiftGateFee).Sub(adj.Discount.Amount)
		if record.GrandTotal.IsNegative() {
			return fmt.Errorf("%w: discount exceeds order total", ErrInvalidAdjustment)
		}

		if err := s.purchases.Create(ctx, record); err != nil {
			return fmt.Errorf("store purchase: %w", err)
		}
		if _, err := s.carts.Clear(ctx, cart.ID); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}

		purchase, created, fromStock = record, requests, reserved
		return nil
	})

	log := logger.FromContext(ctx)
	if err != nil {
		status := "error"
		if IsDomainError(err) {
			status = "rejected"
		}
		metrics.RecordCheckout(time.Since(start), status)
		return nil, err
	}
	metrics.RecordCheckout(time.Since(start), "success")

	log.Info().
		Str("purchase_id", purchase.ID).
		Str("user_id", purchase.UserID).
		Int("items", len(purchase.Items)).
		Int("break_case_requests", len(created)).
		Str("grand_total", purchase.GrandTotal.StringFixed(2)).
		Msg("checkout completed")

	if err := s.sink.Notify(ctx, notification.PurchaseCompleted(purchase, fromStock, created)); err != nil {
		log.Warn().Err(err).Str("purchase_id", purchase.ID).Msg("purchase.completed notification failed")
	}
	return purchase, nil
}

// lineOutcome is what one cart line contributes to a purchase. fromStock is
// the part of the unit item drawn from existing inventory, nil when none was.
type lineOutcome struct {
	items     []model.PurchaseItem
	requests  []model.BreakCaseRequest
	fromStock *model.PurchaseItem
}

// checkoutLine turns one cart line into at most one case item and one unit item.
func (s *CheckoutServiceImpl) checkoutLine(ctx context.Context, purchaseID string, line model.CartLine) (lineOutcome, error) {
	var out lineOutcome

	product, err := s.products.FindByID(ctx, line.ProductID)
	if err != nil {
		return out, fmt.Errorf("load product: %w", err)
	}
	if product == nil {
		return out, ErrProductNotFound
	}

	if line.CaseQuantity > 0 {
		out.items = append(out.items, model.PurchaseItem{
			ProductID:    product.ID,
			SKU:          product.SKU,
			Title:        product.Title,
			Quantity:     line.CaseQuantity,
			Kind:         model.ItemKindCase,
			ItemSubtotal: product.CasePrice.Mul(decimal.NewFromInt(int64(line.CaseQuantity))),
		})
	}

	if line.UnitQuantity > 0 {
		if !product.HasUnitInventory() {
			return out, ErrProductHasNoUnitInventory
		}

		res, err := s.ledger.TryReserve(ctx, product.ID, line.UnitQuantity)
		if err != nil {
			return out, err
		}

		// every ordered unit is billed; a break-case request covers what stock cannot
		unitItem := model.PurchaseItem{
			ProductID:    product.ID,
			SKU:          product.UnitProduct.SKU,
			Title:        product.Title,
			Quantity:     line.UnitQuantity,
			Kind:         model.ItemKindUnit,
			ItemSubtotal: product.UnitProduct.UnitPrice.Mul(decimal.NewFromInt(int64(line.UnitQuantity))),
		}
		out.items = append(out.items, unitItem)

		if res.ReservedFromStock > 0 {
			reserved := unitItem
			reserved.Quantity = res.ReservedFromStock
			reserved.ItemSubtotal = product.UnitProduct.UnitPrice.Mul(decimal.NewFromInt(int64(res.ReservedFromStock)))
			out.fromStock = &reserved
		}

		if res.Shortfall > 0 {
			req, err := s.queue.RecordShortfall(ctx, product.ID, res.Shortfall, purchaseID)
			if err != nil {
				return out, err
			}
			out.requests = append(out.requests, *req)
		}
	}

	return out, nil
}

func validateAdjustments(a model.Adjustments) error {
	for name, v := range map[string]decimal.Decimal{
		"tax":           a.Tax,
		"shipping":      a.Shipping,
		"lift gate fee": a.LiftGateFee,
		"discount":      a.Discount.Amount,
	} {
		if v.IsNegative() {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidAdjustment, name)
		}
	}
	return nil
}

// AsCheckoutError extracts the failing cart line from err.
func AsCheckoutError(err error) (*CheckoutError, bool) {
	var ce *CheckoutError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
