// Package testutil provides test doubles and fixtures shared by the
// console backend's package tests.
package testutil

import (
	"context"

	"github.com/google/uuid"
	"github.com/opsconsole/backend/internal/domain/catalog"
	"github.com/opsconsole/backend/internal/domain/ledger"
	"github.com/opsconsole/backend/internal/domain/shared"
	"github.com/opsconsole/backend/internal/domain/trade"
	"github.com/stretchr/testify/mock"
)

// MockLedger is a mock.Mock implementation of every ledger port.
type MockLedger struct {
	mock.Mock
}

var _ ledger.Ledger = (*MockLedger)(nil)

func (m *MockLedger) CreateCheckout(ctx context.Context, req ledger.CheckoutRequest) shared.Result[uuid.UUID] {
	args := m.Called(ctx, req)
	return args.Get(0).(shared.Result[uuid.UUID])
}

func (m *MockLedger) LinkOrderItems(ctx context.Context, tenantID, checkoutID uuid.UUID, orderItemIDs []uuid.UUID) shared.Result[struct{}] {
	args := m.Called(ctx, tenantID, checkoutID, orderItemIDs)
	return args.Get(0).(shared.Result[struct{}])
}

func (m *MockLedger) FetchOrderItems(ctx context.Context, tenantID uuid.UUID) ([]trade.OrderItem, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]trade.OrderItem), args.Error(1)
}

func (m *MockLedger) FetchProducts(ctx context.Context, tenantID uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockLedger) Restock(ctx context.Context, tenantID uuid.UUID, sku string, quantity int) shared.Result[ledger.RestockOutcome] {
	args := m.Called(ctx, tenantID, sku, quantity)
	return args.Get(0).(shared.Result[ledger.RestockOutcome])
}

func (m *MockLedger) DeleteProduct(ctx context.Context, tenantID, productID uuid.UUID) shared.Result[ledger.DeleteMode] {
	args := m.Called(ctx, tenantID, productID)
	return args.Get(0).(shared.Result[ledger.DeleteMode])
}

func (m *MockLedger) DeleteOrderItem(ctx context.Context, tenantID, orderItemID uuid.UUID) shared.Result[struct{}] {
	args := m.Called(ctx, tenantID, orderItemID)
	return args.Get(0).(shared.Result[struct{}])
}

func (m *MockLedger) ResolveContacts(ctx context.Context, tenantID uuid.UUID, memberIDs []string) (map[string]trade.Contact, error) {
	args := m.Called(ctx, tenantID, memberIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]trade.Contact), args.Error(1)
}

// OkUnit is a successful Result[struct{}]
func OkUnit() shared.Result[struct{}] {
	return shared.Ok(struct{}{})
}

// Rejected is a failed result with code REJECTED
func Rejected[T any](message string) shared.Result[T] {
	return shared.Err[T](ledger.CodeRejected, message)
}
