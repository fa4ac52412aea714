// Package mocks provides mock implementations for testing the sync coordinator.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	outboxDomain "github.com/dealgrid/vendorsync/internal/outbox/domain"
	"github.com/dealgrid/vendorsync/internal/vendorsvc/domain"
)

// MockProfileRepository is a mock implementation of ProfileRepository for testing.
type MockProfileRepository struct {
	mock.Mock
}

// Create mocks the Create method of ProfileRepository.
func (m *MockProfileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

// GetByID mocks the GetByID method of ProfileRepository.
func (m *MockProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

// GetByExternalIdentityID mocks the GetByExternalIdentityID method of ProfileRepository.
func (m *MockProfileRepository) GetByExternalIdentityID(
	ctx context.Context,
	externalIdentityID string,
) (*domain.Profile, error) {
	args := m.Called(ctx, externalIdentityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

// UpdateEmail mocks the UpdateEmail method of ProfileRepository.
func (m *MockProfileRepository) UpdateEmail(ctx context.Context, id uuid.UUID, email string) error {
	args := m.Called(ctx, id, email)
	return args.Error(0)
}

// UpdatePhone mocks the UpdatePhone method of ProfileRepository.
func (m *MockProfileRepository) UpdatePhone(ctx context.Context, id uuid.UUID, phone string) error {
	args := m.Called(ctx, id, phone)
	return args.Error(0)
}

// Delete mocks the Delete method of ProfileRepository.
func (m *MockProfileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockBusinessRecordRepository is a mock implementation of BusinessRecordRepository for testing.
type MockBusinessRecordRepository struct {
	mock.Mock
}

// Create mocks the Create method of BusinessRecordRepository.
func (m *MockBusinessRecordRepository) Create(ctx context.Context, record *domain.BusinessRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// GetByID mocks the GetByID method of BusinessRecordRepository.
func (m *MockBusinessRecordRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.BusinessRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BusinessRecord), args.Error(1)
}

// ListByProfileID mocks the ListByProfileID method of BusinessRecordRepository.
func (m *MockBusinessRecordRepository) ListByProfileID(
	ctx context.Context,
	profileID uuid.UUID,
) ([]*domain.BusinessRecord, error) {
	args := m.Called(ctx, profileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.BusinessRecord), args.Error(1)
}

// CountByProfileID mocks the CountByProfileID method of BusinessRecordRepository.
func (m *MockBusinessRecordRepository) CountByProfileID(ctx context.Context, profileID uuid.UUID) (int, error) {
	args := m.Called(ctx, profileID)
	return args.Int(0), args.Error(1)
}

// UpdateEmailByProfileID mocks the UpdateEmailByProfileID method of BusinessRecordRepository.
func (m *MockBusinessRecordRepository) UpdateEmailByProfileID(
	ctx context.Context,
	profileID uuid.UUID,
	email string,
) error {
	args := m.Called(ctx, profileID, email)
	return args.Error(0)
}

// UpdatePhoneByProfileID mocks the UpdatePhoneByProfileID method of BusinessRecordRepository.
func (m *MockBusinessRecordRepository) UpdatePhoneByProfileID(
	ctx context.Context,
	profileID uuid.UUID,
	phone string,
) error {
	args := m.Called(ctx, profileID, phone)
	return args.Error(0)
}

// UpdateStatusByProfileID mocks the UpdateStatusByProfileID method of BusinessRecordRepository.
func (m *MockBusinessRecordRepository) UpdateStatusByProfileID(
	ctx context.Context,
	profileID uuid.UUID,
	status domain.VerificationStatus,
) error {
	args := m.Called(ctx, profileID, status)
	return args.Error(0)
}

// Delete mocks the Delete method of BusinessRecordRepository.
func (m *MockBusinessRecordRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockOutboxRepository is a mock implementation of OutboxRepository for testing.
type MockOutboxRepository struct {
	mock.Mock
}

// Create mocks the Create method of OutboxRepository.
func (m *MockOutboxRepository) Create(ctx context.Context, entry *outboxDomain.OutboxEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}
