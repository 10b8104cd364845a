package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/guttosm/casebreak-service/internal/domain/model"
	"github.com/guttosm/casebreak-service/internal/metrics"
	"github.com/guttosm/casebreak-service/internal/repository"
)

// InventoryService is the ledger of individually sellable units. Every call joins
// the transaction carried by ctx, if any.
type InventoryService interface {
	GetAvailableStock(ctx context.Context, productID string) (int, error)
	// TryReserve takes min(stock, requested) units. A shortfall is reported, not returned as an error.
	TryReserve(ctx context.Context, productID string, requested int) (model.Reservation, error)
	Credit(ctx context.Context, productID string, quantity int) (int, error)
}

// InventoryServiceImpl implements InventoryService on a repository.
type InventoryServiceImpl struct {
	repo repository.InventoryRepositoryInterface
}

// NewInventoryService creates a ledger backed by repo.
func NewInventoryService(repo repository.InventoryRepositoryInterface) *InventoryServiceImpl {
	return &InventoryServiceImpl{repo: repo}
}

// GetAvailableStock returns the unit stock of a product.
func (s *InventoryServiceImpl) GetAvailableStock(ctx context.Context, productID string) (int, error) {
	stock, err := s.repo.AvailableStock(ctx, productID)
	if err != nil {
		return 0, ledgerError("read stock", productID, err)
	}
	return stock, nil
}

// TryReserve decrements stock atomically and never below zero.
func (s *InventoryServiceImpl) TryReserve(ctx context.Context, productID string, requested int) (model.Reservation, error) {
	if requested <= 0 {
		return model.Reservation{}, ErrInvalidQuantity
	}

	reserved, err := s.repo.Reserve(ctx, productID, requested)
	if err != nil {
		return model.Reservation{}, ledgerError("reserve stock", productID, err)
	}
	metrics.RecordReservation(requested, reserved)

	return model.Reservation{
		ProductID:         productID,
		Requested:         requested,
		ReservedFromStock: reserved,
		Shortfall:         requested - reserved,
	}, nil
}

// Credit adds units to stock and returns the new level.
func (s *InventoryServiceImpl) Credit(ctx context.Context, productID string, quantity int) (int, error) {
	if quantity <= 0 {
		return 0, ErrInvalidQuantity
	}

	stock, err := s.repo.Credit(ctx, productID, quantity)
	if err != nil {
		return 0, ledgerError("credit stock", productID, err)
	}
	return stock, nil
}

func ledgerError(op, productID string, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	case errors.Is(err, repository.ErrNoUnitInventory):
		return fmt.Errorf("%w: %s", ErrProductHasNoUnitInventory, productID)
	}
	return fmt.Errorf("%s for product %s: %w", op, productID, err)
}
