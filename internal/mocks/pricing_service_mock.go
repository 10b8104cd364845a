// Code generated manually. DO NOT EDIT.

package mocks

import (
	"github.com/guttosm/casebreak-service/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockPricingService struct {
	mock.Mock
}

func (m *MockPricingService) Policy() service.PricingPolicy {
	args := m.Called()
	return args.Get(0).(service.PricingPolicy)
}

func (m *MockPricingService) UnitPrice(casePrice decimal.Decimal, unitsPerCase int) (decimal.Decimal, error) {
	args := m.Called(casePrice, unitsPerCase)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockPricingService) InvalidateCache() {
	m.Called()
}
