package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/dealgrid/vendorsync/internal/metrics"
	"github.com/dealgrid/vendorsync/internal/vendorsvc/domain"
)

// mockBusinessMetrics is a mock implementation of metrics.BusinessMetrics for testing.
type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

func (m *mockBusinessMetrics) RecordOutboxDepth(ctx context.Context, pending, exhausted int) {
	m.Called(ctx, pending, exhausted)
}

var _ metrics.BusinessMetrics = (*mockBusinessMetrics)(nil)

// mockSyncUseCase is a mock implementation of SyncUseCase for testing.
type mockSyncUseCase struct {
	mock.Mock
}

func (m *mockSyncUseCase) CreateVendor(ctx context.Context, input *CreateVendorInput) (*domain.SyncResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SyncResult), args.Error(1)
}

func (m *mockSyncUseCase) UpdateEmail(ctx context.Context, profileID uuid.UUID, email string) (*domain.SyncResult, error) {
	args := m.Called(ctx, profileID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SyncResult), args.Error(1)
}

func (m *mockSyncUseCase) UpdatePhone(ctx context.Context, profileID uuid.UUID, phone string) (*domain.SyncResult, error) {
	args := m.Called(ctx, profileID, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SyncResult), args.Error(1)
}

func (m *mockSyncUseCase) SetPassword(ctx context.Context, profileID uuid.UUID, password string) (*domain.SyncResult, error) {
	args := m.Called(ctx, profileID, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SyncResult), args.Error(1)
}

func (m *mockSyncUseCase) SetVendorStatus(
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

func (m *mockSyncUseCase) DeleteVendorFully(ctx context.Context, businessID uuid.UUID) (*domain.SyncResult, error) {
	args := m.Called(ctx, businessID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SyncResult), args.Error(1)
}

var _ SyncUseCase = (*mockSyncUseCase)(nil)

func expectMetrics(m *mockBusinessMetrics, operation, status string) {
	m.On("RecordOperation", mock.Anything, "sync", operation, status).
		Return().
		Once()
	m.On("RecordDuration", mock.Anything, "sync", operation, mock.AnythingOfType("time.Duration"), status).
		Return().
		Once()
}

// TestNewSyncUseCaseWithMetrics tests the metrics decorator constructor.
func TestNewSyncUseCaseWithMetrics(t *testing.T) {
	t.Parallel()

	mockUseCase := &mockSyncUseCase{}
	mockMetrics := &mockBusinessMetrics{}

	decorator := NewSyncUseCaseWithMetrics(mockUseCase, mockMetrics)

	assert.NotNil(t, decorator)
	assert.Implements(t, (*SyncUseCase)(nil), decorator)
}

// TestMetricsDecorator_CreateVendor tests the CreateVendor method with metrics.
func TestMetricsDecorator_CreateVendor(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	input := &CreateVendorInput{
		Email:        "vendor@example.com",
		Phone:        "+15550100100",
		Password:     "Str0ngPassw0rd",
		BusinessName: "Acme Supplies",
		Category:     "hardware",
	}

	t.Run("Success_RecordsSuccessMetrics", func(t *testing.T) {
		t.Parallel()
		mockUseCase := &mockSyncUseCase{}
		mockMetrics := &mockBusinessMetrics{}

		expectedResult := domain.Done(
			uuid.Must(uuid.NewV7()),
			uuid.Must(uuid.NewV7()),
			"idp|abc123",
		)

		mockUseCase.On("CreateVendor", ctx, input).
			Return(expectedResult, nil).
			Once()
		expectMetrics(mockMetrics, "vendor_create", "success")

		decorator := NewSyncUseCaseWithMetrics(mockUseCase, mockMetrics)
		result, err := decorator.CreateVendor(ctx, input)

		assert.NoError(t, err)
		assert.Equal(t, expectedResult, result)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Partial_RecordsPartialMetrics", func(t *testing.T) {
		t.Parallel()
		mockUseCase := &mockSyncUseCase{}
		mockMetrics := &mockBusinessMetrics{}

		expectedResult := domain.Deferred(
			uuid.Must(uuid.NewV7()),
			uuid.Must(uuid.NewV7()),
			"idp|abc123",
		)

		mockUseCase.On("CreateVendor", ctx, input).
			Return(expectedResult, nil).
			Once()
		expectMetrics(mockMetrics, "vendor_create", "partial")

		decorator := NewSyncUseCaseWithMetrics(mockUseCase, mockMetrics)
		result, err := decorator.CreateVendor(ctx, input)

		assert.NoError(t, err)
		assert.True(t, result.Partial)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Error_RecordsErrorMetrics", func(t *testing.T) {
		t.Parallel()
		mockUseCase := &mockSyncUseCase{}
		mockMetrics := &mockBusinessMetrics{}

		expectedError := errors.New("database error")

		mockUseCase.On("CreateVendor", ctx, input).
			Return(nil, expectedError).
			Once()
		expectMetrics(mockMetrics, "vendor_create", "error")

		decorator := NewSyncUseCaseWithMetrics(mockUseCase, mockMetrics)
		result, err := decorator.CreateVendor(ctx, input)

		assert.Error(t, err)
		assert.Nil(t, result)
		assert.Equal(t, expectedError, err)
		mockMetrics.AssertExpectations(t)
	})
}

// TestMetricsDecorator_UpdateEmail tests the UpdateEmail method with metrics.
func TestMetricsDecorator_UpdateEmail(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	profileID := uuid.Must(uuid.NewV7())

	t.Run("Success_RecordsSuccessMetrics", func(t *testing.T) {
		t.Parallel()
		mockUseCase := &mockSyncUseCase{}
		mockMetrics := &mockBusinessMetrics{}

		expectedResult := domain.Done(profileID, uuid.Nil, "idp|abc123")

		mockUseCase.On("UpdateEmail", ctx, profileID, "new@example.com").
			Return(expectedResult, nil).
			Once()
		expectMetrics(mockMetrics, "vendor_update_email", "success")

		decorator := NewSyncUseCaseWithMetrics(mockUseCase, mockMetrics)
		result, err := decorator.UpdateEmail(ctx, profileID, "new@example.com")

		assert.NoError(t, err)
		assert.Equal(t, expectedResult, result)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Error_RecordsErrorMetrics", func(t *testing.T) {
		t.Parallel()
		mockUseCase := &mockSyncUseCase{}
		mockMetrics := &mockBusinessMetrics{}

		mockUseCase.On("UpdateEmail", ctx, profileID, "new@example.com").
			Return(nil, domain.ErrProfileNotFound).
			Once()
		expectMetrics(mockMetrics, "vendor_update_email", "error")

		decorator := NewSyncUseCaseWithMetrics(mockUseCase, mockMetrics)
		result, err := decorator.UpdateEmail(ctx, profileID, "new@example.com")

		assert.Error(t, err)
		assert.Nil(t, result)
		assert.Equal(t, domain.ErrProfileNotFound, err)
		mockMetrics.AssertExpectations(t)
	})
}

// TestMetricsDecorator_UpdatePhone tests the UpdatePhone method with metrics.
func TestMetricsDecorator_UpdatePhone(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	profileID := uuid.Must(uuid.NewV7())

	t.Run("Partial_RecordsPartialMetrics", func(t *testing.T) {
		t.Parallel()
		mockUseCase := &mockSyncUseCase{}
		mockMetrics := &mockBusinessMetrics{}

		expectedResult := domain.Deferred(profileID, uuid.Nil, "idp|abc123")

		mockUseCase.On("UpdatePhone", ctx, profileID, "+15550100200").
			Return(expectedResult, nil).
			Once()
		expectMetrics(mockMetrics, "vendor_update_phone", "partial")

		decorator := NewSyncUseCaseWithMetrics(mockUseCase, mockMetrics)
		result, err := decorator.UpdatePhone(ctx, profileID, "+15550100200")

		assert.NoError(t, err)
		assert.True(t, result.Partial)
		mockMetrics.AssertExpectations(t)
	})
}

// TestMetricsDecorator_SetPassword tests the SetPassword method with metrics.
func TestMetricsDecorator_SetPassword(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	profileID := uuid.Must(uuid.NewV7())

	t.Run("Success_RecordsSuccessMetrics", func(t *testing.T) {
		t.Parallel()
		mockUseCase := &mockSyncUseCase{}
		mockMetrics := &mockBusinessMetrics{}

		expectedResult := domain.Done(profileID, uuid.Nil, "idp|abc123")

		mockUseCase.On("SetPassword", ctx, profileID, "N3wPassword").
			Return(expectedResult, nil).
			Once()
		expectMetrics(mockMetrics, "vendor_set_password", "success")

		decorator := NewSyncUseCaseWithMetrics(mockUseCase, mockMetrics)
		result, err := decorator.SetPassword(ctx, profileID, "N3wPassword")

		assert.NoError(t, err)
		assert.Equal(t, expectedResult, result)
		mockMetrics.AssertExpectations(t)
	})
}

// TestMetricsDecorator_SetVendorStatus tests the SetVendorStatus method with metrics.
func TestMetricsDecorator_SetVendorStatus(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	profileID := uuid.Must(uuid.NewV7())

	t.Run("Success_RecordsSuccessMetrics", func(t *testing.T) {
		t.Parallel()
		mockUseCase := &mockSyncUseCase{}
		mockMetrics := &mockBusinessMetrics{}

		expectedResult := domain.Done(profileID, uuid.Nil, "idp|abc123")

		mockUseCase.On("SetVendorStatus", ctx, profileID, domain.VerificationStatusApproved).
			Return(expectedResult, nil).
			Once()
		expectMetrics(mockMetrics, "vendor_set_status", "success")

		decorator := NewSyncUseCaseWithMetrics(mockUseCase, mockMetrics)
		result, err := decorator.SetVendorStatus(ctx, profileID, domain.VerificationStatusApproved)

		assert.NoError(t, err)
		assert.Equal(t, expectedResult, result)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Error_RecordsErrorMetrics", func(t *testing.T) {
		t.Parallel()
		mockUseCase := &mockSyncUseCase{}
		mockMetrics := &mockBusinessMetrics{}

		mockUseCase.On("SetVendorStatus", ctx, profileID, domain.VerificationStatusApproved).
			Return(nil, domain.ErrProfileNotFound).
			Once()
		expectMetrics(mockMetrics, "vendor_set_status", "error")

		decorator := NewSyncUseCaseWithMetrics(mockUseCase, mockMetrics)
		result, err := decorator.SetVendorStatus(ctx, profileID, domain.VerificationStatusApproved)

		assert.Error(t, err)
		assert.Nil(t, result)
		mockMetrics.AssertExpectations(t)
	})
}

// TestMetricsDecorator_DeleteVendorFully tests the DeleteVendorFully method with metrics.
func TestMetricsDecorator_DeleteVendorFully(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	businessID := uuid.Must(uuid.NewV7())

	t.Run("Success_RecordsSuccessMetrics", func(t *testing.T) {
		t.Parallel()
		mockUseCase := &mockSyncUseCase{}
		mockMetrics := &mockBusinessMetrics{}

		expectedResult := domain.Done(uuid.Nil, businessID, "")

		mockUseCase.On("DeleteVendorFully", ctx, businessID).
			Return(expectedResult, nil).
			Once()
		expectMetrics(mockMetrics, "vendor_delete", "success")

		decorator := NewSyncUseCaseWithMetrics(mockUseCase, mockMetrics)
		result, err := decorator.DeleteVendorFully(ctx, businessID)

		assert.NoError(t, err)
		assert.Equal(t, expectedResult, result)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Partial_RecordsPartialMetrics", func(t *testing.T) {
		t.Parallel()
		mockUseCase := &mockSyncUseCase{}
		mockMetrics := &mockBusinessMetrics{}

		expectedResult := domain.Deferred(uuid.Nil, businessID, "idp|abc123")

		mockUseCase.On("DeleteVendorFully", ctx, businessID).
			Return(expectedResult, nil).
			Once()
		expectMetrics(mockMetrics, "vendor_delete", "partial")

		decorator := NewSyncUseCaseWithMetrics(mockUseCase, mockMetrics)
		result, err := decorator.DeleteVendorFully(ctx, businessID)

		assert.NoError(t, err)
		assert.True(t, result.Partial)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Error_RecordsErrorMetrics", func(t *testing.T) {
		t.Parallel()
		mockUseCase := &mockSyncUseCase{}
		mockMetrics := &mockBusinessMetrics{}

		mockUseCase.On("DeleteVendorFully", ctx, businessID).
			Return(nil, domain.ErrBusinessRecordNotFound).
			Once()
		expectMetrics(mockMetrics, "vendor_delete", "error")

		decorator := NewSyncUseCaseWithMetrics(mockUseCase, mockMetrics)
		result, err := decorator.DeleteVendorFully(ctx, businessID)

		assert.Error(t, err)
		assert.Nil(t, result)
		mockMetrics.AssertExpectations(t)
	})
}
