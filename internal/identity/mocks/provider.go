// Package mocks provides mock implementations for testing identity provider consumers.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dealgrid/vendorsync/internal/identity"
)

// MockProvider is a mock implementation of Provider for testing.
type MockProvider struct {
	mock.Mock
}

// CreateIdentity mocks the CreateIdentity method of Provider.
func (m *MockProvider) CreateIdentity(ctx context.Context, input identity.CreateIdentityInput) (string, error) {
	args := m.Called(ctx, input)
	return args.String(0), args.Error(1)
}

// UpdateIdentity mocks the UpdateIdentity method of Provider.
func (m *MockProvider) UpdateIdentity(ctx context.Context, identityID string, update identity.UpdateIdentityInput) error {
	args := m.Called(ctx, identityID, update)
	return args.Error(0)
}

// DeleteIdentity mocks the DeleteIdentity method of Provider.
func (m *MockProvider) DeleteIdentity(ctx context.Context, identityID string) error {
	args := m.Called(ctx, identityID)
	return args.Error(0)
}
