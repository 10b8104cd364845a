// Code generated manually. DO NOT EDIT.

package mocks

import (
	"context"

	"github.com/guttosm/casebreak-service/internal/domain/model"
	"github.com/stretchr/testify/mock"
)

type MockPurchaseService struct {
	mock.Mock
}

func (m *MockPurchaseService) List(ctx context.Context, filter model.PurchaseFilter) ([]model.PurchaseRecord, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PurchaseRecord), args.Error(1)
}

func (m *MockPurchaseService) Get(ctx context.Context, id string) (*model.PurchaseRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PurchaseRecord), args.Error(1)
}

func (m *MockPurchaseService) UpdateStatus(ctx context.Context, id string, status model.PurchaseStatus) (*model.PurchaseRecord, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PurchaseRecord), args.Error(1)
}
