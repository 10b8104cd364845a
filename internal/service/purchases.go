package service

import (
	"context"
	"fmt"

	"github.com/guttosm/casebreak-service/internal/domain/model"
	"github.com/guttosm/casebreak-service/internal/logger"
	"github.com/guttosm/casebreak-service/internal/repository"
)

// PurchaseService lists purchases and moves them through shipping states.
type PurchaseService interface {
	List(ctx context.Context, filter model.PurchaseFilter) ([]model.PurchaseRecord, error)
	Get(ctx context.Context, id string) (*model.PurchaseRecord, error)
	UpdateStatus(ctx context.Context, id string, status model.PurchaseStatus) (*model.PurchaseRecord, error)
}

// PurchaseServiceImpl implements PurchaseService.
type PurchaseServiceImpl struct {
	purchases repository.PurchaseRepositoryInterface
}

// NewPurchaseService creates a purchase service over store.
func NewPurchaseService(store *repository.Store) *PurchaseServiceImpl {
	return &PurchaseServiceImpl{purchases: store.Purchases}
}

// List returns purchases matching filter, newest first.
func (s *PurchaseServiceImpl) List(ctx context.Context, filter model.PurchaseFilter) ([]model.PurchaseRecord, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	out, err := s.purchases.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	return out, nil
}

// Get returns one purchase or ErrPurchaseNotFound.
func (s *PurchaseServiceImpl) Get(ctx context.Context, id string) (*model.PurchaseRecord, error) {
	p, err := s.purchases.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load purchase %s: %w", id, err)
	}
	if p == nil {
		return nil, ErrPurchaseNotFound
	}
	return p, nil
}

// UpdateStatus sets the status; nothing else on a purchase ever changes.
func (s *PurchaseServiceImpl) UpdateStatus(ctx context.Context, id string, status model.PurchaseStatus) (*model.PurchaseRecord, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	p, err := s.purchases.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, fmt.Errorf("update purchase %s: %w", id, err)
	}
	if p == nil {
		return nil, ErrPurchaseNotFound
	}

	logger.FromContext(ctx).Info().
		Str("purchase_id", id).
		Str("status", string(status)).
		Msg("purchase status updated")
	return p, nil
}
