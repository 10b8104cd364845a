package service

import (
	"fmt"
	"strconv"
	"time"

	"github.com/guttosm/casebreak-service/internal/metrics"
	"github.com/guttosm/casebreak-service/internal/service/cache"
	"github.com/shopspring/decimal"
)

// PricingPolicy holds the constants of the unit price formula. Version tags
// cached prices so a policy change never serves a stale price.
type PricingPolicy struct {
	Version          string
	WholesaleDivisor decimal.Decimal
	RetailMultiplier decimal.Decimal
	Epsilon          decimal.Decimal
}

// DefaultPricingPolicy returns the policy in force for new unit products.
func DefaultPricingPolicy() PricingPolicy {
	return PricingPolicy{
		Version:          "2024-06",
		WholesaleDivisor: decimal.RequireFromString("1.53"),
		RetailMultiplier: decimal.RequireFromString("2.2"),
		Epsilon:          decimal.RequireFromString("0.01"),
	}
}

// Validate rejects policies the formula cannot use.
func (p PricingPolicy) Validate() error {
	switch {
	case !p.WholesaleDivisor.IsPositive():
		return fmt.Errorf("%w: wholesale divisor must be positive", ErrInvalidPricingInput)
	case !p.RetailMultiplier.IsPositive():
		return fmt.Errorf("%w: retail multiplier must be positive", ErrInvalidPricingInput)
	case p.Epsilon.IsNegative() || p.Epsilon.GreaterThanOrEqual(decimal.NewFromInt(1)):
		return fmt.Errorf("%w: epsilon must be in [0, 1)", ErrInvalidPricingInput)
	}
	return nil
}

// DeriveUnitPrice computes ceil(casePrice / divisor / units * multiplier) - epsilon.
// The ceiling is to a whole currency unit. The quotient is taken in a single
// division so a whole-unit result stays exact and is not rounded up a unit.
func DeriveUnitPrice(policy PricingPolicy, casePrice decimal.Decimal, unitsPerCase int) (decimal.Decimal, error) {
	if !casePrice.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: case price must be positive", ErrInvalidPricingInput)
	}
	if unitsPerCase < 1 {
		return decimal.Zero, fmt.Errorf("%w: units per case must be at least 1", ErrInvalidPricingInput)
	}

	wholesale := policy.WholesaleDivisor.Mul(decimal.NewFromInt(int64(unitsPerCase)))
	return casePrice.
		Mul(policy.RetailMultiplier).
		Div(wholesale).
		Ceil().
		Sub(policy.Epsilon), nil
}

// PricingService defines unit price derivation.
type PricingService interface {
	Policy() PricingPolicy
	UnitPrice(casePrice decimal.Decimal, unitsPerCase int) (decimal.Decimal, error)
	InvalidateCache()
}

// PricingOption configures a PricingServiceImpl.
type PricingOption func(*PricingServiceImpl)

// PricingServiceImpl derives unit prices under one policy, optionally memoised.
type PricingServiceImpl struct {
	policy PricingPolicy
	cache  cache.Cache
}

// NewPricingService creates a pricing service with the default policy unless overridden.
func NewPricingService(opts ...PricingOption) *PricingServiceImpl {
	s := &PricingServiceImpl{policy: DefaultPricingPolicy()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithPolicy replaces the pricing policy.
func WithPolicy(p PricingPolicy) PricingOption {
	return func(s *PricingServiceImpl) {
		s.policy = p
	}
}

// WithPriceCache enables memoisation of derived prices.
func WithPriceCache(capacity int, ttl time.Duration) PricingOption {
	return func(s *PricingServiceImpl) {
		if capacity > 0 {
			s.cache = newPriceCache(capacity, ttl)
		}
	}
}

// WithCacheInterface allows injecting a custom cache implementation.
func WithCacheInterface(c cache.Cache) PricingOption {
	return func(s *PricingServiceImpl) {
		s.cache = c
	}
}

// Policy returns the active policy.
func (s *PricingServiceImpl) Policy() PricingPolicy {
	return s.policy
}

// UnitPrice derives the unit price for a case.
func (s *PricingServiceImpl) UnitPrice(casePrice decimal.Decimal, unitsPerCase int) (decimal.Decimal, error) {
	key := s.policy.Version + "|" + casePrice.String() + "|" + strconv.Itoa(unitsPerCase)
	if s.cache != nil {
		if price, ok := s.cache.Get(key); ok {
			metrics.RecordUnitPricePreview("cached")
			return price, nil
		}
	}

	price, err := DeriveUnitPrice(s.policy, casePrice, unitsPerCase)
	if err != nil {
		metrics.RecordUnitPricePreview("invalid")
		return decimal.Zero, err
	}
	metrics.RecordUnitPricePreview("success")

	if s.cache != nil {
		s.cache.Set(key, price)
	}
	return price, nil
}

// InvalidateCache drops every memoised price.
func (s *PricingServiceImpl) InvalidateCache() {
	if s.cache != nil {
		s.cache.Clear()
	}
}
