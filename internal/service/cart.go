package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/guttosm/casebreak-service/internal/domain/model"
	"github.com/guttosm/casebreak-service/internal/repository"
)

// CartService reads and edits customer carts.
type CartService interface {
	GetCart(ctx context.Context, userID string) (*model.Cart, error)
	// SetLine upserts a line; zero cases and zero units remove it.
	SetLine(ctx context.Context, userID, productID string, caseQty, unitQty int) (*model.Cart, error)
}

// CartServiceImpl implements CartService.
type CartServiceImpl struct {
	carts    repository.CartRepositoryInterface
	products repository.ProductRepositoryInterface
}

// NewCartService creates a cart service over store.
func NewCartService(store *repository.Store) *CartServiceImpl {
	return &CartServiceImpl{carts: store.Carts, products: store.Products}
}

// GetCart returns the user's cart, empty when none has been started.
func (s *CartServiceImpl) GetCart(ctx context.Context, userID string) (*model.Cart, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}
	cart, err := s.carts.GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if cart == nil {
		return &model.Cart{UserID: userID, Lines: []model.CartLine{}}, nil
	}
	return cart, nil
}

// SetLine validates the product and quantities before writing.
func (s *CartServiceImpl) SetLine(ctx context.Context, userID, productID string, caseQty, unitQty int) (*model.Cart, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}

	line := model.CartLine{ProductID: productID}
	if caseQty != 0 || unitQty != 0 {
		var err error
		if line, err = model.NewCartLine(productID, caseQty, unitQty); err != nil {
			if errors.Is(err, model.ErrNegativeQuantity) {
				return nil, fmt.Errorf("%w: %v", ErrInvalidQuantity, err)
			}
			return nil, err
		}

		p, err := s.products.FindByID(ctx, productID)
		if err != nil {
			return nil, fmt.Errorf("load product %s: %w", productID, err)
		}
		if p == nil {
			return nil, ErrProductNotFound
		}
		if unitQty > 0 && !p.HasUnitInventory() {
			return nil, ErrProductHasNoUnitInventory
		}
	}

	cart, err := s.carts.SetLine(ctx, userID, line)
	if err != nil {
		return nil, fmt.Errorf("update cart: %w", err)
	}
	return cart, nil
}
