package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dealgrid/vendorsync/internal/metrics"
	"github.com/dealgrid/vendorsync/internal/vendorsvc/domain"
)

// syncUseCaseWithMetrics decorates SyncUseCase with metrics instrumentation.
type syncUseCaseWithMetrics struct {
	next    SyncUseCase
	metrics metrics.BusinessMetrics
}

// NewSyncUseCaseWithMetrics wraps a SyncUseCase with metrics recording.
func NewSyncUseCaseWithMetrics(useCase SyncUseCase, m metrics.BusinessMetrics) SyncUseCase {
	return &syncUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// resultStatus maps an operation outcome to a metric status label. Partial
// successes are tracked separately because a rising partial rate signals
// provider or store instability before outright failures appear.
func resultStatus(result *domain.SyncResult, err error) string {
	switch {
	case err != nil:
		return "error"
	case result != nil && result.Partial:
		return "partial"
	default:
		return "success"
	}
}

func (s *syncUseCaseWithMetrics) record(
	ctx context.Context,
	operation string,
	start time.Time,
	result *domain.SyncResult,
	err error,
) {
	status := resultStatus(result, err)
	s.metrics.RecordOperation(ctx, "sync", operation, status)
	s.metrics.RecordDuration(ctx, "sync", operation, time.Since(start), status)
}

// CreateVendor records metrics for vendor creation operations.
func (s *syncUseCaseWithMetrics) CreateVendor(
	ctx context.Context,
	input *CreateVendorInput,
) (*domain.SyncResult, error) {
	start := time.Now()
	result, err := s.next.CreateVendor(ctx, input)
	s.record(ctx, "vendor_create", start, result, err)
	return result, err
}

// UpdateEmail records metrics for email update operations.
func (s *syncUseCaseWithMetrics) UpdateEmail(
	ctx context.Context,
	profileID uuid.UUID,
	email string,
) (*domain.SyncResult, error) {
	start := time.Now()
	result, err := s.next.UpdateEmail(ctx, profileID, email)
	s.record(ctx, "vendor_update_email", start, result, err)
	return result, err
}

// UpdatePhone records metrics for phone update operations.
func (s *syncUseCaseWithMetrics) UpdatePhone(
	ctx context.Context,
	profileID uuid.UUID,
	phone string,
) (*domain.SyncResult, error) {
	start := time.Now()
	result, err := s.next.UpdatePhone(ctx, profileID, phone)
	s.record(ctx, "vendor_update_phone", start, result, err)
	return result, err
}

// SetPassword records metrics for password rotation operations.
func (s *syncUseCaseWithMetrics) SetPassword(
	ctx context.Context,
	profileID uuid.UUID,
	password string,
) (*domain.SyncResult, error) {
	start := time.Now()
	result, err := s.next.SetPassword(ctx, profileID, password)
	s.record(ctx, "vendor_set_password", start, result, err)
	return result, err
}

// SetVendorStatus records metrics for status change operations.
func (s *syncUseCaseWithMetrics) SetVendorStatus(
	ctx context.Context,
	profileID uuid.UUID,
	status domain.VerificationStatus,
) (*domain.SyncResult, error) {
	start := time.Now()
	result, err := s.next.SetVendorStatus(ctx, profileID, status)
	s.record(ctx, "vendor_set_status", start, result, err)
	return result, err
}

// DeleteVendorFully records metrics for vendor deletion operations.
func (s *syncUseCaseWithMetrics) DeleteVendorFully(
	ctx context.Context,
	businessID uuid.UUID,
) (*domain.SyncResult, error) {
	start := time.Now()
	result, err := s.next.DeleteVendorFully(ctx, businessID)
	s.record(ctx, "vendor_delete", start, result, err)
	return result, err
}
