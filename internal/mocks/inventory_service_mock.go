// Code generated manually. DO NOT EDIT.

package mocks

import (
	"context"

	"github.com/guttosm/casebreak-service/internal/domain/model"
	"github.com/stretchr/testify/mock"
)

type MockInventoryService struct {
	mock.Mock
}

func (m *MockInventoryService) GetAvailableStock(ctx context.Context, productID string) (int, error) {
	args := m.Called(ctx, productID)
	return args.Int(0), args.Error(1)
}

func (m *MockInventoryService) TryReserve(ctx context.Context, productID string, requested int) (model.Reservation, error) {
	args := m.Called(ctx, productID, requested)
	return args.Get(0).(model.Reservation), args.Error(1)
}

func (m *MockInventoryService) Credit(ctx context.Context, productID string, quantity int) (int, error) {
	args := m.Called(ctx, productID, quantity)
	return args.Int(0), args.Error(1)
}
