// Package mocks provides mock implementations for vendor HTTP handler tests.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dealgrid/vendorsync/internal/vendorsvc/domain"
	"github.com/dealgrid/vendorsync/internal/vendorsvc/usecase"
)

// MockSyncUseCase is a mock implementation of usecase.SyncUseCase.
type MockSyncUseCase struct {
	mock.Mock
}

func (m *MockSyncUseCase) CreateVendor(
	ctx context.Context,
	input *usecase.CreateVendorInput,
) (*domain.SyncResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SyncResult), args.Error(1)
}

func (m *MockSyncUseCase) UpdateEmail(
	ctx context.Context,
	profileID uuid.UUID,
	email string,
) (*domain.SyncResult, error) {
	args := m.Called(ctx, profileID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SyncResult), args.Error(1)
}

func (m *MockSyncUseCase) UpdatePhone(
	ctx context.Context,
	profileID uuid.UUID,
	phone string,
) (*domain.SyncResult, error) {
	args := m.Called(ctx, profileID, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SyncResult), args.Error(1)
}

func (m *MockSyncUseCase) SetPassword(
	ctx context.Context,
	profileID uuid.UUID,
	password string,
) (*domain.SyncResult, error) {
	args := m.Called(ctx, profileID, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SyncResult), args.Error(1)
}

func (m *MockSyncUseCase) SetVendorStatus(
	ctx context.Context,
	profileID uuid.UUID,
	status domain.VerificationStatus,
) (*domain.SyncResult, error) {
	args := m.Called(ctx, profileID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SyncResult), args.Error(1)
}

func (m *MockSyncUseCase) DeleteVendorFully(
	ctx context.Context,
	businessID uuid.UUID,
) (*domain.SyncResult, error) {
	args := m.Called(ctx, businessID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SyncResult), args.Error(1)
}
