package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/guttosm/casebreak-service/internal/domain/model"
	"github.com/guttosm/casebreak-service/internal/logger"
	"github.com/guttosm/casebreak-service/internal/metrics"
	"github.com/guttosm/casebreak-service/internal/notification"
	"github.com/guttosm/casebreak-service/internal/repository"
)

// FulfillmentService is the queue of break-case requests raised by unit shortfalls.
type FulfillmentService interface {
	// RecordShortfall always appends a new OPEN request.
	RecordShortfall(ctx context.Context, productID string, quantity int, purchaseID string) (*model.BreakCaseRequest, error)
	// Process credits the ledger and completes the request in one transaction.
	Process(ctx context.Context, requestID string, quantityAdded int) (*model.UpdatedStock, error)
	Report(ctx context.Context, filter model.BreakCaseFilter) (*model.CaseBreakReport, error)
	OpenRequests(ctx context.Context) ([]model.BreakCaseRequest, error)
}

// FulfillmentOption configures a FulfillmentServiceImpl.
type FulfillmentOption func(*FulfillmentServiceImpl)

// WithFulfillmentNotifier sets the sink told about processed requests.
func WithFulfillmentNotifier(sink notification.Sink) FulfillmentOption {
	return func(s *FulfillmentServiceImpl) {
		if sink != nil {
			s.sink = sink
		}
	}
}

// WithFulfillmentClock overrides time.Now.
func WithFulfillmentClock(now func() time.Time) FulfillmentOption {
	return func(s *FulfillmentServiceImpl) {
		s.now = now
	}
}

// FulfillmentServiceImpl implements FulfillmentService.
type FulfillmentServiceImpl struct {
	tx       repository.Transactor
	requests repository.BreakCaseRepositoryInterface
	products repository.ProductRepositoryInterface
	ledger   InventoryService
	sink     notification.Sink
	now      func() time.Time
}

// NewFulfillmentService creates the request queue over store.
func NewFulfillmentService(store *repository.Store, ledger InventoryService, opts ...FulfillmentOption) *FulfillmentServiceImpl {
	s := &FulfillmentServiceImpl{
		tx:       store.Transactor,
		requests: store.BreakCases,
		products: store.Products,
		ledger:   ledger,
		sink:     notification.Nop,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecordShortfall stores an OPEN request for quantity units of productID.
func (s *FulfillmentServiceImpl) RecordShortfall(ctx context.Context, productID string, quantity int, purchaseID string) (*model.BreakCaseRequest, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	req := &model.BreakCaseRequest{
		ProductID:  productID,
		Quantity:   quantity,
		Status:     model.RequestStatusOpen,
		PurchaseID: purchaseID,
		CreatedAt:  s.now(),
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("record shortfall for product %s: %w", productID, err)
	}
	metrics.RecordCaseBreakRequest("created")
	return req, nil
}

// Process completes an OPEN request and credits quantityAdded units. The
// OPEN to COMPLETED move is conditional, so concurrent calls credit once.
func (s *FulfillmentServiceImpl) Process(ctx context.Context, requestID string, quantityAdded int) (*model.UpdatedStock, error) {
	if quantityAdded <= 0 {
		return nil, ErrInvalidQuantity
	}

	var result *model.UpdatedStock
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		req, err := s.requests.FindByID(ctx, requestID)
		if err != nil {
			return fmt.Errorf("load request %s: %w", requestID, err)
		}
		if req == nil {
			return ErrRequestNotFound
		}
		if !req.IsOpen() {
			return ErrRequestAlreadyCompleted
		}

		switch err := s.requests.MarkCompleted(ctx, requestID, s.now()); {
		case errors.Is(err, repository.ErrConflict):
			return ErrRequestAlreadyCompleted
		case errors.Is(err, repository.ErrNotFound):
			return ErrRequestNotFound
		case err != nil:
			return fmt.Errorf("complete request %s: %w", requestID, err)
		}

		product, err := s.products.FindByID(ctx, req.ProductID)
		if err != nil {
			return fmt.Errorf("load product %s: %w", req.ProductID, err)
		}
		if product == nil {
			return fmt.Errorf("%w: %s", ErrProductNotFound, req.ProductID)
		}

		stock, err := s.ledger.Credit(ctx, req.ProductID, quantityAdded)
		if err != nil {
			return err
		}

		result = &model.UpdatedStock{
			RequestID:     requestID,
			ProductID:     product.ID,
			SKU:           product.SKU,
			Title:         product.Title,
			AddedQuantity: quantityAdded,
			NewTotalStock: stock,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordCaseBreakRequest("processed")
	logger.FromContext(ctx).Info().
		Str("break_case_request_id", requestID).
		Str("product_id", result.ProductID).
		Int("added_quantity", quantityAdded).
		Int("new_total_stock", result.NewTotalStock).
		Msg("break-case request processed")

	if err := s.sink.Notify(ctx, notification.CaseBreakProcessed(result)); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Str("break_case_request_id", requestID).Msg("case_break.processed notification failed")
	}
	return result, nil
}

// Report lists requests matching filter, newest first, joined with their products.
func (s *FulfillmentServiceImpl) Report(ctx context.Context, filter model.BreakCaseFilter) (*model.CaseBreakReport, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	reqs, err := s.requests.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list break-case requests: %w", err)
	}

	report := &model.CaseBreakReport{Requests: make([]model.CaseBreakReportRow, 0, len(reqs))}
	products := make(map[string]*model.Product)
	for _, r := range reqs {
		p, seen := products[r.ProductID]
		if !seen {
			if p, err = s.products.FindByID(ctx, r.ProductID); err != nil {
				return nil, fmt.Errorf("load product %s: %w", r.ProductID, err)
			}
			products[r.ProductID] = p
		}

		row := model.CaseBreakReportRow{BreakCaseRequest: r}
		if p != nil {
			row.SKU, row.Title, row.Package = p.SKU, p.Title, p.Package
		}
		report.Requests = append(report.Requests, row)
		report.TotalQuantity += r.Quantity
	}
	report.Count = len(report.Requests)
	return report, nil
}

// OpenRequests returns every request still awaiting processing.
func (s *FulfillmentServiceImpl) OpenRequests(ctx context.Context) ([]model.BreakCaseRequest, error) {
	return s.requests.List(ctx, model.BreakCaseFilter{Status: model.RequestStatusOpen})
}
