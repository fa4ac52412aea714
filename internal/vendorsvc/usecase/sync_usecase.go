package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dealgrid/vendorsync/internal/database"
	"github.com/dealgrid/vendorsync/internal/identity"
	"github.com/dealgrid/vendorsync/internal/vendorsvc/domain"

	apperrors "github.com/dealgrid/vendorsync/internal/errors"
	outboxDomain "github.com/dealgrid/vendorsync/internal/outbox/domain"
)

const (
	stepCreateIdentity = "create external identity"
	stepPersistVendor  = "persist vendor records"
)

// syncUseCase implements SyncUseCase. Each operation orders its two writes so
// the side that fails cleanly happens first, and only the second side is ever
// eligible for outbox deferral.
type syncUseCase struct {
	txManager    database.TxManager
	profileRepo  ProfileRepository
	businessRepo BusinessRecordRepository
	outboxRepo   OutboxRepository
	provider     identity.Provider
	logger       *slog.Logger
}

// NewSyncUseCase creates a new sync coordinator.
func NewSyncUseCase(
	txManager database.TxManager,
	profileRepo ProfileRepository,
	businessRepo BusinessRecordRepository,
	outboxRepo OutboxRepository,
	provider identity.Provider,
	logger *slog.Logger,
) SyncUseCase {
	return &syncUseCase{
		txManager:    txManager,
		profileRepo:  profileRepo,
		businessRepo: businessRepo,
		outboxRepo:   outboxRepo,
		provider:     provider,
		logger:       logger,
	}
}

// CreateVendor registers the identity first: an external account must exist
// before local records reference it. A failed identity creation aborts with
// no side effects. A failed local write triggers compensation (delete the
// just-created identity); only when that compensation itself fails is the
// remainder deferred to the outbox.
func (s *syncUseCase) CreateVendor(ctx context.Context, input *CreateVendorInput) (*domain.SyncResult, error) {
	profileID := uuid.Must(uuid.NewV7())
	businessID := uuid.Must(uuid.NewV7())
	var externalIdentityID string

	sg := &saga{
		logger: s.logger,
		steps: []sagaStep{
			{
				name: stepCreateIdentity,
				run: func(ctx context.Context) error {
					id, err := s.provider.CreateIdentity(ctx, identity.CreateIdentityInput{
						Email:    input.Email,
						Phone:    input.Phone,
						Password: input.Password,
						Metadata: map[string]string{
							domain.MetadataStatusKey: string(domain.VerificationStatusPending),
						},
					})
					if err != nil {
						return err
					}
					externalIdentityID = id
					return nil
				},
				compensate: func(ctx context.Context) error {
					return s.provider.DeleteIdentity(ctx, externalIdentityID)
				},
			},
			{
				name: stepPersistVendor,
				run: func(ctx context.Context) error {
					return s.persistVendor(ctx, profileID, businessID, externalIdentityID, input)
				},
			},
		},
	}

	failure := sg.execute(ctx)
	if failure == nil {
		return domain.Done(profileID, businessID, externalIdentityID), nil
	}

	// Identity creation failed: nothing was created anywhere, no outbox entry.
	if failure.StepName == stepCreateIdentity {
		return nil, failure.Err
	}

	// Local write failed and the identity was successfully deleted again.
	if failure.CompensationErr == nil {
		return nil, failure.Err
	}

	// Compensation failed: an orphan external identity exists. A constraint
	// violation will not be fixed by retrying the local write, so the only
	// thing left to reconcile is removing the orphan identity.
	if errors.Is(failure.Err, apperrors.ErrConflict) || errors.Is(failure.Err, apperrors.ErrInvalidInput) {
		s.enqueue(ctx, outboxDomain.EntryTypeIdentityDeleteRetry, identityDeleteRetryPayload{
			ExternalIdentityID: externalIdentityID,
		})
		return nil, failure.Err
	}

	// Transient local failure: defer the local write, keeping the already
	// created external id.
	if ok := s.enqueue(ctx, outboxDomain.EntryTypeVendorCreateRetry, vendorCreateRetryPayload{
		ProfileID:          profileID,
		BusinessID:         businessID,
		ExternalIdentityID: externalIdentityID,
		Email:              input.Email,
		Phone:              input.Phone,
		BusinessName:       input.BusinessName,
		Category:           input.Category,
		Documents:          input.Documents,
	}); !ok {
		return nil, failure.Err
	}
	return domain.Deferred(profileID, businessID, externalIdentityID), nil
}

// persistVendor writes the profile and its business record in one local
// transaction so they appear together or not at all.
func (s *syncUseCase) persistVendor(
	ctx context.Context,
	profileID, businessID uuid.UUID,
	externalIdentityID string,
	input *CreateVendorInput,
) error {
	now := time.Now().UTC()
	return s.txManager.WithTx(ctx, func(txCtx context.Context) error {
		profile := &domain.Profile{
			ID:                 profileID,
			ExternalIdentityID: externalIdentityID,
			Email:              input.Email,
			Phone:              input.Phone,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		if err := s.profileRepo.Create(txCtx, profile); err != nil {
			return err
		}

		record := &domain.BusinessRecord{
			ID:                 businessID,
			ProfileID:          profileID,
			BusinessName:       input.BusinessName,
			Category:           input.Category,
			Email:              input.Email,
			Phone:              input.Phone,
			VerificationStatus: domain.VerificationStatusPending,
			Documents:          input.Documents,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		return s.businessRepo.Create(txCtx, record)
	})
}

// UpdateEmail updates the provider first. Contact changes are not safely
// reversible at the provider without risking data loss, so a failed local
// mirror is deferred to the outbox instead of rolled back; the external
// state is already authoritative, hence success with partial.
func (s *syncUseCase) UpdateEmail(ctx context.Context, profileID uuid.UUID, email string) (*domain.SyncResult, error) {
	return s.updateContact(ctx, profileID, contactFieldEmail, email)
}

// UpdatePhone mirrors UpdateEmail for the phone field.
func (s *syncUseCase) UpdatePhone(ctx context.Context, profileID uuid.UUID, phone string) (*domain.SyncResult, error) {
	return s.updateContact(ctx, profileID, contactFieldPhone, phone)
}

func (s *syncUseCase) updateContact(
	ctx context.Context,
	profileID uuid.UUID,
	field contactField,
	value string,
) (*domain.SyncResult, error) {
	profile, err := s.profileRepo.GetByID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if profile.ExternalIdentityID == "" {
		return nil, domain.ErrIdentityNotLinked
	}

	update := identity.UpdateIdentityInput{}
	switch field {
	case contactFieldEmail:
		update.Email = &value
	case contactFieldPhone:
		update.Phone = &value
	}
	if err := s.provider.UpdateIdentity(ctx, profile.ExternalIdentityID, update); err != nil {
		return nil, err
	}

	err = s.txManager.WithTx(ctx, func(txCtx context.Context) error {
		switch field {
		case contactFieldEmail:
			if err := s.profileRepo.UpdateEmail(txCtx, profileID, value); err != nil {
				return err
			}
			return s.businessRepo.UpdateEmailByProfileID(txCtx, profileID, value)
		default:
			if err := s.profileRepo.UpdatePhone(txCtx, profileID, value); err != nil {
				return err
			}
			return s.businessRepo.UpdatePhoneByProfileID(txCtx, profileID, value)
		}
	})
	if err != nil {
		// The provider already holds the new value, so every local failure
		// is deferred to the outbox. Even a conflict gets an entry: the
		// divergence stays tracked, and the replay either converges once the
		// conflicting row changes or exhausts and surfaces to operators.
		if ok := s.enqueue(ctx, outboxDomain.EntryTypeVendorContactRetry, vendorContactRetryPayload{
			ProfileID: profileID,
			Field:     field,
			Value:     value,
		}); !ok {
			return nil, err
		}
		return domain.Deferred(profileID, uuid.Nil, profile.ExternalIdentityID), nil
	}

	return domain.Done(profileID, uuid.Nil, profile.ExternalIdentityID), nil
}

// SetPassword is provider-only; the local store never holds credentials, so
// failures propagate directly with nothing to reconcile.
func (s *syncUseCase) SetPassword(ctx context.Context, profileID uuid.UUID, password string) (*domain.SyncResult, error) {
	profile, err := s.profileRepo.GetByID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if profile.ExternalIdentityID == "" {
		return nil, domain.ErrIdentityNotLinked
	}

	err = s.provider.UpdateIdentity(ctx, profile.ExternalIdentityID, identity.UpdateIdentityInput{
		Password: &password,
	})
	if err != nil {
		return nil, err
	}

	return domain.Done(profileID, uuid.Nil, profile.ExternalIdentityID), nil
}

// SetVendorStatus writes locally first: verification status is an
// application-owned concept and the local store is authoritative for it.
// A failed provider metadata mirror is deferred to the outbox and never
// undone locally, since that would silently revert a decision the caller
// believes succeeded.
func (s *syncUseCase) SetVendorStatus(
	ctx context.Context,
	profileID uuid.UUID,
	status domain.VerificationStatus,
) (*domain.SyncResult, error) {
	if !status.IsValid() {
		return nil, domain.ErrInvalidStatus
	}

	profile, err := s.profileRepo.GetByID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if profile.ExternalIdentityID == "" {
		return nil, domain.ErrIdentityNotLinked
	}

	err = s.txManager.WithTx(ctx, func(txCtx context.Context) error {
		return s.businessRepo.UpdateStatusByProfileID(txCtx, profileID, status)
	})
	if err != nil {
		return nil, err
	}

	err = s.provider.UpdateIdentity(ctx, profile.ExternalIdentityID, identity.UpdateIdentityInput{
		Metadata: map[string]string{domain.MetadataStatusKey: string(status)},
	})
	if err != nil {
		// The payload holds only the profile id; the replay handler re-reads
		// the current status so a newer change is never overwritten by an
		// older retry.
		if ok := s.enqueue(ctx, outboxDomain.EntryTypeVendorStatusRetry, vendorStatusRetryPayload{
			ProfileID: profileID,
		}); !ok {
			return nil, err
		}
		return domain.Deferred(profileID, uuid.Nil, profile.ExternalIdentityID), nil
	}

	return domain.Done(profileID, uuid.Nil, profile.ExternalIdentityID), nil
}

// DeleteVendorFully removes the business record and, when no records remain
// under the profile, the profile itself followed by the external identity.
// A failed identity deletion after the local deletes is deferred to the
// outbox; local state is already consistent with "vendor removed."
func (s *syncUseCase) DeleteVendorFully(ctx context.Context, businessID uuid.UUID) (*domain.SyncResult, error) {
	record, err := s.businessRepo.GetByID(ctx, businessID)
	if err != nil {
		return nil, err
	}

	profile, err := s.profileRepo.GetByID(ctx, record.ProfileID)
	if err != nil {
		return nil, err
	}

	var profileRemoved bool
	err = s.txManager.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.businessRepo.Delete(txCtx, businessID); err != nil {
			return err
		}
		remaining, err := s.businessRepo.CountByProfileID(txCtx, record.ProfileID)
		if err != nil {
			return err
		}
		if remaining > 0 {
			return nil
		}
		profileRemoved = true
		return s.profileRepo.Delete(txCtx, record.ProfileID)
	})
	if err != nil {
		return nil, err
	}

	// Other business records remain; the profile and its identity stay.
	if !profileRemoved {
		return domain.Done(record.ProfileID, businessID, profile.ExternalIdentityID), nil
	}

	err = s.provider.DeleteIdentity(ctx, profile.ExternalIdentityID)
	if err != nil && !errors.Is(err, identity.ErrIdentityNotFound) {
		if ok := s.enqueue(ctx, outboxDomain.EntryTypeIdentityDeleteRetry, identityDeleteRetryPayload{
			ExternalIdentityID: profile.ExternalIdentityID,
		}); !ok {
			return nil, err
		}
		return domain.Deferred(record.ProfileID, businessID, profile.ExternalIdentityID), nil
	}

	return domain.Done(record.ProfileID, businessID, profile.ExternalIdentityID), nil
}

// enqueue durably records the unfinished half of an operation. Reports
// whether the entry was written; an enqueue failure is logged and the caller
// falls back to surfacing the original error.
func (s *syncUseCase) enqueue(ctx context.Context, entryType string, payload any) bool {
	data, err := json.Marshal(payload)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("failed to marshal outbox payload",
				slog.String("entry_type", entryType),
				slog.Any("error", err),
			)
		}
		return false
	}

	entry := outboxDomain.NewOutboxEntry(entryType, string(data))
	if err := s.outboxRepo.Create(ctx, entry); err != nil {
		if s.logger != nil {
			s.logger.Error("failed to enqueue outbox entry",
				slog.String("entry_type", entryType),
				slog.Any("error", err),
			)
		}
		return false
	}

	if s.logger != nil {
		s.logger.Info("outbox entry enqueued",
			slog.String("entry_id", entry.ID.String()),
			slog.String("entry_type", entryType),
		)
	}
	return true
}
