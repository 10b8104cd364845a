package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/guttosm/casebreak-service/internal/domain/model"
	"github.com/guttosm/casebreak-service/internal/logger"
	"github.com/guttosm/casebreak-service/internal/repository"
)

// CatalogService manages products and keeps their unit facet in step with the case fields.
type CatalogService interface {
	CreateProduct(ctx context.Context, draft model.ProductDraft) (*model.Product, error)
	UpdateProduct(ctx context.Context, id string, patch model.ProductPatch) (*model.Product, error)
	GetProduct(ctx context.Context, id string) (*model.Product, error)
}

// CatalogServiceImpl implements CatalogService.
type CatalogServiceImpl struct {
	tx       repository.Transactor
	products repository.ProductRepositoryInterface
	pricing  PricingService
}

// NewCatalogService creates a catalog over store priced by pricing.
func NewCatalogService(store *repository.Store, pricing PricingService) *CatalogServiceImpl {
	return &CatalogServiceImpl{tx: store.Transactor, products: store.Products, pricing: pricing}
}

// CreateProduct stores a product. A case-breakable product gets a unit facet
// with a derived price and zero stock.
func (s *CatalogServiceImpl) CreateProduct(ctx context.Context, draft model.ProductDraft) (*model.Product, error) {
	now := time.Now().UTC()
	p := &model.Product{
		SKU:             strings.TrimSpace(draft.SKU),
		Title:           strings.TrimSpace(draft.Title),
		CasePrice:       draft.CasePrice,
		Package:         append([]int(nil), draft.Package...),
		IsCaseBreakable: draft.IsCaseBreakable,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := validateProduct(p); err != nil {
		return nil, err
	}
	if err := s.syncUnitFacet(p); err != nil {
		return nil, err
	}

	if err := s.products.Create(ctx, p); err != nil {
		return nil, catalogError(p.SKU, err)
	}

	logger.FromContext(ctx).Info().
		Str("product_id", p.ID).
		Str("sku", p.SKU).
		Bool("case_breakable", p.IsCaseBreakable).
		Msg("product created")
	return p, nil
}

// UpdateProduct applies patch and re-derives the unit facet. Unit stock is kept;
// clearing IsCaseBreakable removes the facet.
func (s *CatalogServiceImpl) UpdateProduct(ctx context.Context, id string, patch model.ProductPatch) (*model.Product, error) {
	var out *model.Product
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		p, err := s.products.FindByID(ctx, id)
		if err != nil {
			return fmt.Errorf("load product %s: %w", id, err)
		}
		if p == nil {
			return ErrProductNotFound
		}
		if patch.IsEmpty() {
			out = p
			return nil
		}

		patch.Apply(p)
		if patch.SKU != nil {
			p.SKU = strings.TrimSpace(p.SKU)
		}
		if patch.Title != nil {
			p.Title = strings.TrimSpace(p.Title)
		}
		if err := validateProduct(p); err != nil {
			return err
		}
		if err := s.syncUnitFacet(p); err != nil {
			return err
		}
		p.UpdatedAt = time.Now().UTC()

		if err := s.products.Update(ctx, p); err != nil {
			return catalogError(p.SKU, err)
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetProduct returns a product or ErrProductNotFound.
func (s *CatalogServiceImpl) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load product %s: %w", id, err)
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	return p, nil
}

// syncUnitFacet sets or clears p.UnitProduct. Stock of an existing facet is carried over.
func (s *CatalogServiceImpl) syncUnitFacet(p *model.Product) error {
	if !p.IsCaseBreakable {
		p.UnitProduct = nil
		return nil
	}

	price, err := s.pricing.UnitPrice(p.CasePrice, p.UnitsPerCase())
	if err != nil {
		return err
	}

	stock := 0
	if p.UnitProduct != nil {
		stock = p.UnitProduct.AvailableStock
	}
	p.UnitProduct = &model.UnitProduct{
		SKU:            model.UnitSKU(p.SKU),
		UnitPrice:      price,
		AvailableStock: stock,
		Package:        model.UnitPackage(p.Package),
	}
	return nil
}

func validateProduct(p *model.Product) error {
	switch {
	case p.SKU == "":
		return fmt.Errorf("%w: sku is required", ErrInvalidProduct)
	case p.Title == "":
		return fmt.Errorf("%w: title is required", ErrInvalidProduct)
	case !p.CasePrice.IsPositive():
		return fmt.Errorf("%w: case price must be positive", ErrInvalidProduct)
	case !model.ValidPackage(p.Package):
		return fmt.Errorf("%w: package must be a non-empty list of positive integers", ErrInvalidProduct)
	}
	return nil
}

func catalogError(sku string, err error) error {
	switch {
	case errors.Is(err, repository.ErrDuplicateKey):
		return fmt.Errorf("%w: %s", ErrDuplicateSKU, sku)
	case errors.Is(err, repository.ErrNotFound):
		return ErrProductNotFound
	}
	return fmt.Errorf("store product %s: %w", sku, err)
}
