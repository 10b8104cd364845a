// Code generated manually. DO NOT EDIT.

package mocks

import (
	"context"

	"github.com/guttosm/casebreak-service/internal/domain/model"
	"github.com/stretchr/testify/mock"
)

type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) GetCart(ctx context.Context, userID string) (*model.Cart, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Cart), args.Error(1)
}

func (m *MockCartService) SetLine(ctx context.Context, userID, productID string, caseQty, unitQty int) (*model.Cart, error) {
	args := m.Called(ctx, userID, productID, caseQty, unitQty)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Cart), args.Error(1)
}
