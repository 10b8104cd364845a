// Code generated manually. DO NOT EDIT.

package mocks

import (
	"context"

	"github.com/guttosm/casebreak-service/internal/domain/model"
	"github.com/stretchr/testify/mock"
)

type MockFulfillmentService struct {
	mock.Mock
}

func (m *MockFulfillmentService) RecordShortfall(ctx context.Context, productID string, quantity int, purchaseID string) (*model.BreakCaseRequest, error) {
	args := m.Called(ctx, productID, quantity, purchaseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BreakCaseRequest), args.Error(1)
}

func (m *MockFulfillmentService) Process(ctx context.Context, requestID string, quantityAdded int) (*model.UpdatedStock, error) {
	args := m.Called(ctx, requestID, quantityAdded)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UpdatedStock), args.Error(1)
}

func (m *MockFulfillmentService) Report(ctx context.Context, filter model.BreakCaseFilter) (*model.CaseBreakReport, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CaseBreakReport), args.Error(1)
}

func (m *MockFulfillmentService) OpenRequests(ctx context.Context) ([]model.BreakCaseRequest, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.BreakCaseRequest), args.Error(1)
}
