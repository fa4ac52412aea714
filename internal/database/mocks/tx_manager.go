// Package mocks provides mock implementations for testing transaction management.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockTxManager is a mock implementation of TxManager for testing.
type MockTxManager struct {
	mock.Mock
}

// WithTx records the call and, when the configured return is nil, executes
// fn with the same context so repository mocks observe the transactional
// calls. A non-nil configured return simulates a begin/commit failure and
// skips fn entirely.
func (m *MockTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(ctx)
}
