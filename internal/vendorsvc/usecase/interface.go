// Package usecase implements the sync coordinator: the dual-write
// orchestration between the identity provider and the relational store,
// including compensation and outbox deferral on partial failure.
package usecase

import (
	"context"

	"github.com/google/uuid"

	outboxDomain "github.com/dealgrid/vendorsync/internal/outbox/domain"
	"github.com/dealgrid/vendorsync/internal/vendorsvc/domain"
)

// ProfileRepository defines the interface for profile persistence operations.
type ProfileRepository interface {
	Create(ctx context.Context, profile *domain.Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error)
	GetByExternalIdentityID(ctx context.Context, externalIdentityID string) (*domain.Profile, error)
	UpdateEmail(ctx context.Context, id uuid.UUID, email string) error
	UpdatePhone(ctx context.Context, id uuid.UUID, phone string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// BusinessRecordRepository defines the interface for business record persistence operations.
type BusinessRecordRepository interface {
	Create(ctx context.Context, record *domain.BusinessRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.BusinessRecord, error)
	ListByProfileID(ctx context.Context, profileID uuid.UUID) ([]*domain.BusinessRecord, error)
	CountByProfileID(ctx context.Context, profileID uuid.UUID) (int, error)
	UpdateEmailByProfileID(ctx context.Context, profileID uuid.UUID, email string) error
	UpdatePhoneByProfileID(ctx context.Context, profileID uuid.UUID, phone string) error
	UpdateStatusByProfileID(ctx context.Context, profileID uuid.UUID, status domain.VerificationStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// OutboxRepository defines the outbox operations the sync coordinator needs.
// The coordinator only ever creates entries; mutation and deletion belong to
// the outbox worker.
type OutboxRepository interface {
	Create(ctx context.Context, entry *outboxDomain.OutboxEntry) error
}

// CreateVendorInput holds everything needed to register a vendor on both sides.
type CreateVendorInput struct {
	Email        string
	Phone        string
	Password     string
	BusinessName string
	Category     string
	Documents    []string
}

// SyncUseCase defines the six vendor lifecycle operations. Every operation
// returns a SyncResult describing whether the outcome was fully synchronous
// or partially deferred to the outbox.
type SyncUseCase interface {
	// CreateVendor registers the external identity first, then persists the
	// profile and business record in one local transaction.
	CreateVendor(ctx context.Context, input *CreateVendorInput) (*domain.SyncResult, error)
	// UpdateEmail changes the contact email at the provider first, then
	// mirrors it onto the profile and all its business records.
	UpdateEmail(ctx context.Context, profileID uuid.UUID, email string) (*domain.SyncResult, error)
	// UpdatePhone changes the contact phone at the provider first, then
	// mirrors it onto the profile and all its business records.
	UpdatePhone(ctx context.Context, profileID uuid.UUID, phone string) (*domain.SyncResult, error)
	// SetPassword rotates the provider-held credential. The local store
	// never holds credentials, so there is nothing to reconcile on failure.
	SetPassword(ctx context.Context, profileID uuid.UUID, password string) (*domain.SyncResult, error)
	// SetVendorStatus writes the application-owned verification status
	// locally first, then mirrors it into provider metadata.
	SetVendorStatus(ctx context.Context, profileID uuid.UUID, status domain.VerificationStatus) (*domain.SyncResult, error)
	// DeleteVendorFully removes a business record and, when it was the
	// profile's last record, the profile and its external identity.
	DeleteVendorFully(ctx context.Context, businessID uuid.UUID) (*domain.SyncResult, error)
}

// ReplayHandler replays the unfinished half of one outbox entry type.
// Handlers must be idempotent: replaying against a target already in the
// desired end state succeeds as a no-op.
type ReplayHandler interface {
	Process(ctx context.Context, entry *outboxDomain.OutboxEntry) error
}
