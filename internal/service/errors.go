package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidPricingInput       = errors.New("invalid pricing input")
	ErrProductNotFound           = errors.New("product not found")
	ErrProductHasNoUnitInventory = errors.New("product has no unit inventory")
	ErrRequestNotFound           = errors.New("break-case request not found")
	ErrRequestAlreadyCompleted   = errors.New("break-case request already completed")
	ErrInvalidQuantity           = errors.New("quantity must be positive")
	ErrCartEmpty                 = errors.New("cart is empty")
	ErrMissingUser               = errors.New("user id is required")
	ErrMissingShippingAddress    = errors.New("shipping address is incomplete")
	ErrPurchaseNotFound          = errors.New("purchase not found")
	ErrInvalidStatus             = errors.New("invalid status")
	ErrDuplicateSKU              = errors.New("sku already exists")
	ErrInvalidAdjustment         = errors.New("invalid price adjustment")
	ErrInvalidProduct            = errors.New("invalid product")
	ErrInvalidLogQuery           = errors.New("invalid log query")
)

var domainErrors = []error{
	ErrInvalidPricingInput,
	ErrProductNotFound,
	ErrProductHasNoUnitInventory,
	ErrRequestNotFound,
	ErrRequestAlreadyCompleted,
	ErrInvalidQuantity,
	ErrCartEmpty,
	ErrMissingUser,
	ErrMissingShippingAddress,
	ErrPurchaseNotFound,
	ErrInvalidStatus,
	ErrDuplicateSKU,
	ErrInvalidAdjustment,
	ErrInvalidProduct,
	ErrInvalidLogQuery,
}

// IsDomainError reports whether err is a business rejection rather than an infrastructure failure.
func IsDomainError(err error) bool {
	for _, target := range domainErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// CheckoutError identifies the cart line that aborted a checkout.
type CheckoutError struct {
	Line      int
	ProductID string
	Err       error
}

func (e *CheckoutError) Error() string {
	return fmt.Sprintf("checkout line %d (product %s): %v", e.Line, e.ProductID, e.Err)
}

func (e *CheckoutError) Unwrap() error { return e.Err }
