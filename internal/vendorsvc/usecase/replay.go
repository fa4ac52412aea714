package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dealgrid/vendorsync/internal/identity"
	"github.com/dealgrid/vendorsync/internal/vendorsvc/domain"

	apperrors "github.com/dealgrid/vendorsync/internal/errors"
	outboxDomain "github.com/dealgrid/vendorsync/internal/outbox/domain"
)

// contactField names which contact value a contact-retry entry carries.
type contactField string

const (
	contactFieldEmail contactField = "email"
	contactFieldPhone contactField = "phone"
)

// vendorCreateRetryPayload holds everything needed to replay the local half
// of a vendor creation without external context.
type vendorCreateRetryPayload struct {
	ProfileID          uuid.UUID `json:"profile_id"`
	BusinessID         uuid.UUID `json:"business_id"`
	ExternalIdentityID string    `json:"external_identity_id"`
	Email              string    `json:"email"`
	Phone              string    `json:"phone"`
	BusinessName       string    `json:"business_name"`
	Category           string    `json:"category"`
	Documents          []string  `json:"documents,omitempty"`
}

// vendorContactRetryPayload holds a contact value already applied at the
// provider, pending its local mirror.
type vendorContactRetryPayload struct {
	ProfileID uuid.UUID    `json:"profile_id"`
	Field     contactField `json:"field"`
	Value     string       `json:"value"`
}

// vendorStatusRetryPayload identifies a profile whose locally-committed
// status still needs its provider metadata mirror. The status itself is
// deliberately not stored: the handler re-reads the current local value so a
// stale retry never overwrites a newer change.
type vendorStatusRetryPayload struct {
	ProfileID uuid.UUID `json:"profile_id"`
}

// identityDeleteRetryPayload identifies an external identity pending deletion.
type identityDeleteRetryPayload struct {
	ExternalIdentityID string `json:"external_identity_id"`
}

// ReplayProcessor dispatches outbox entries to the idempotent replay handler
// for their type. It runs inside a savepoint on the worker's claim
// transaction, so local writes commit together with the entry's resolution
// and a failed handler does not abort the rest of the batch.
type ReplayProcessor struct {
	profileRepo  ProfileRepository
	businessRepo BusinessRecordRepository
	provider     identity.Provider
	logger       *slog.Logger
}

// NewReplayProcessor creates a new ReplayProcessor.
func NewReplayProcessor(
	profileRepo ProfileRepository,
	businessRepo BusinessRecordRepository,
	provider identity.Provider,
	logger *slog.Logger,
) *ReplayProcessor {
	return &ReplayProcessor{
		profileRepo:  profileRepo,
		businessRepo: businessRepo,
		provider:     provider,
		logger:       logger,
	}
}

// Process replays one entry. An error leaves the entry for a later attempt.
func (p *ReplayProcessor) Process(ctx context.Context, entry *outboxDomain.OutboxEntry) error {
	switch entry.Type {
	case outboxDomain.EntryTypeVendorCreateRetry:
		return p.replayVendorCreate(ctx, entry.Payload)
	case outboxDomain.EntryTypeVendorContactRetry:
		return p.replayVendorContact(ctx, entry.Payload)
	case outboxDomain.EntryTypeVendorStatusRetry:
		return p.replayVendorStatus(ctx, entry.Payload)
	case outboxDomain.EntryTypeIdentityDeleteRetry:
		return p.replayIdentityDelete(ctx, entry.Payload)
	default:
		if p.logger != nil {
			p.logger.Warn("unknown outbox entry type", slog.String("entry_type", entry.Type))
		}
		return outboxDomain.ErrUnknownEntryType
	}
}

// replayVendorCreate finishes a vendor creation whose external identity
// already exists. Checking for an existing profile by external identity id
// makes the replay idempotent: two runs against the same payload produce
// exactly one profile/record pair.
func (p *ReplayProcessor) replayVendorCreate(ctx context.Context, rawPayload string) error {
	var payload vendorCreateRetryPayload
	if err := json.Unmarshal([]byte(rawPayload), &payload); err != nil {
		return apperrors.Wrap(err, "failed to unmarshal create retry payload")
	}

	existing, err := p.profileRepo.GetByExternalIdentityID(ctx, payload.ExternalIdentityID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}
	if existing != nil {
		count, err := p.businessRepo.CountByProfileID(ctx, existing.ID)
		if err != nil {
			return err
		}
		if count > 0 {
			// Already fully created; a previous replay got there first.
			return nil
		}
		// Profile committed without its record on an earlier run; finish it.
		return p.businessRepo.Create(ctx, p.buildBusinessRecord(&payload, existing.ID))
	}

	now := time.Now().UTC()
	profile := &domain.Profile{
		ID:                 payload.ProfileID,
		ExternalIdentityID: payload.ExternalIdentityID,
		Email:              payload.Email,
		Phone:              payload.Phone,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := p.profileRepo.Create(ctx, profile); err != nil {
		return err
	}
	return p.businessRepo.Create(ctx, p.buildBusinessRecord(&payload, payload.ProfileID))
}

func (p *ReplayProcessor) buildBusinessRecord(payload *vendorCreateRetryPayload, profileID uuid.UUID) *domain.BusinessRecord {
	now := time.Now().UTC()
	return &domain.BusinessRecord{
		ID:                 payload.BusinessID,
		ProfileID:          profileID,
		BusinessName:       payload.BusinessName,
		Category:           payload.Category,
		Email:              payload.Email,
		Phone:              payload.Phone,
		VerificationStatus: domain.VerificationStatusPending,
		Documents:          payload.Documents,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// replayVendorContact mirrors a provider-committed contact change locally.
// A deleted profile means there is nothing left to reconcile.
func (p *ReplayProcessor) replayVendorContact(ctx context.Context, rawPayload string) error {
	var payload vendorContactRetryPayload
	if err := json.Unmarshal([]byte(rawPayload), &payload); err != nil {
		return apperrors.Wrap(err, "failed to unmarshal contact retry payload")
	}

	_, err := p.profileRepo.GetByID(ctx, payload.ProfileID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		return err
	}

	switch payload.Field {
	case contactFieldEmail:
		if err := p.profileRepo.UpdateEmail(ctx, payload.ProfileID, payload.Value); err != nil {
			return err
		}
		return p.businessRepo.UpdateEmailByProfileID(ctx, payload.ProfileID, payload.Value)
	case contactFieldPhone:
		if err := p.profileRepo.UpdatePhone(ctx, payload.ProfileID, payload.Value); err != nil {
			return err
		}
		return p.businessRepo.UpdatePhoneByProfileID(ctx, payload.ProfileID, payload.Value)
	default:
		return apperrors.Wrap(apperrors.ErrInvalidInput, "unknown contact field")
	}
}

// replayVendorStatus mirrors the profile's current local status into
// provider metadata. The local store is authoritative, so the handler reads
// the value at replay time rather than trusting the enqueue-time value.
func (p *ReplayProcessor) replayVendorStatus(ctx context.Context, rawPayload string) error {
	var payload vendorStatusRetryPayload
	if err := json.Unmarshal([]byte(rawPayload), &payload); err != nil {
		return apperrors.Wrap(err, "failed to unmarshal status retry payload")
	}

	profile, err := p.profileRepo.GetByID(ctx, payload.ProfileID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		return err
	}

	records, err := p.businessRepo.ListByProfileID(ctx, payload.ProfileID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	return p.provider.UpdateIdentity(ctx, profile.ExternalIdentityID, identity.UpdateIdentityInput{
		Metadata: map[string]string{
			domain.MetadataStatusKey: string(records[0].VerificationStatus),
		},
	})
}

// replayIdentityDelete removes an external identity. An already-deleted
// identity counts as success.
func (p *ReplayProcessor) replayIdentityDelete(ctx context.Context, rawPayload string) error {
	var payload identityDeleteRetryPayload
	if err := json.Unmarshal([]byte(rawPayload), &payload); err != nil {
		return apperrors.Wrap(err, "failed to unmarshal identity delete payload")
	}

	err := p.provider.DeleteIdentity(ctx, payload.ExternalIdentityID)
	if err != nil && !errors.Is(err, identity.ErrIdentityNotFound) {
		return err
	}
	return nil
}
