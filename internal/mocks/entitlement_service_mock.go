package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/phrazzld/action-deck/internal/entitlement"
)

// TestifyMockEntitlementService is a mock of entitlement.Service for use with testify/mock
type TestifyMockEntitlementService struct {
	mock.Mock
}

var _ entitlement.Service = (*TestifyMockEntitlementService)(nil)

// IsPremiumActive is a mock implementation of entitlement.Service.IsPremiumActive
func (m *TestifyMockEntitlementService) IsPremiumActive(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

// RestorePurchases is a mock implementation of entitlement.Service.RestorePurchases
func (m *TestifyMockEntitlementService) RestorePurchases(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

// Updates is a mock implementation of entitlement.Service.Updates
func (m *TestifyMockEntitlementService) Updates() <-chan bool {
	args := m.Called()
	if ch, ok := args.Get(0).(chan bool); ok {
		return ch
	}
	if ch, ok := args.Get(0).(<-chan bool); ok {
		return ch
	}
	return nil
}
