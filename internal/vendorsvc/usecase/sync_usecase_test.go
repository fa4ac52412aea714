package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	databaseMocks "github.com/dealgrid/vendorsync/internal/database/mocks"
	apperrors "github.com/dealgrid/vendorsync/internal/errors"
	"github.com/dealgrid/vendorsync/internal/identity"
	identityMocks "github.com/dealgrid/vendorsync/internal/identity/mocks"
	outboxDomain "github.com/dealgrid/vendorsync/internal/outbox/domain"
	"github.com/dealgrid/vendorsync/internal/vendorsvc/domain"
	usecaseMocks "github.com/dealgrid/vendorsync/internal/vendorsvc/usecase/mocks"
)

type syncFixture struct {
	txManager    *databaseMocks.MockTxManager
	profileRepo  *usecaseMocks.MockProfileRepository
	businessRepo *usecaseMocks.MockBusinessRecordRepository
	outboxRepo   *usecaseMocks.MockOutboxRepository
	provider     *identityMocks.MockProvider
	useCase      SyncUseCase
}

func newSyncFixture(t *testing.T) *syncFixture {
	t.Helper()
	f := &syncFixture{
		txManager:    &databaseMocks.MockTxManager{},
		profileRepo:  &usecaseMocks.MockProfileRepository{},
		businessRepo: &usecaseMocks.MockBusinessRecordRepository{},
		outboxRepo:   &usecaseMocks.MockOutboxRepository{},
		provider:     &identityMocks.MockProvider{},
	}
	f.useCase = NewSyncUseCase(
		f.txManager,
		f.profileRepo,
		f.businessRepo,
		f.outboxRepo,
		f.provider,
		slog.New(slog.DiscardHandler),
	)
	return f
}

func (f *syncFixture) assertExpectations(t *testing.T) {
	t.Helper()
	f.txManager.AssertExpectations(t)
	f.profileRepo.AssertExpectations(t)
	f.businessRepo.AssertExpectations(t)
	f.outboxRepo.AssertExpectations(t)
	f.provider.AssertExpectations(t)
}

func testCreateInput() *CreateVendorInput {
	return &CreateVendorInput{
		Email:        "vendor@example.com",
		Phone:        "+15550001111",
		Password:     "correct-horse-battery",
		BusinessName: "Acme Catering",
		Category:     "catering",
		Documents:    []string{"registration.pdf"},
	}
}

func testProfile(externalIdentityID string) *domain.Profile {
	return &domain.Profile{
		ID:                 uuid.Must(uuid.NewV7()),
		ExternalIdentityID: externalIdentityID,
		Email:              "vendor@example.com",
		Phone:              "+15550001111",
	}
}

func TestSyncUseCase_CreateVendor(t *testing.T) {
	ctx := context.Background()

	t.Run("full success", func(t *testing.T) {
		f := newSyncFixture(t)

		f.provider.On("CreateIdentity", ctx, mock.MatchedBy(func(input identity.CreateIdentityInput) bool {
			return input.Email == "vendor@example.com" &&
				input.Metadata[domain.MetadataStatusKey] == string(domain.VerificationStatusPending)
		})).Return("auth1|abc", nil)
		f.txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
		f.profileRepo.On("Create", ctx, mock.MatchedBy(func(p *domain.Profile) bool {
			return p.ExternalIdentityID == "auth1|abc" && p.Email == "vendor@example.com"
		})).Return(nil)
		f.businessRepo.On("Create", ctx, mock.MatchedBy(func(r *domain.BusinessRecord) bool {
			return r.BusinessName == "Acme Catering" &&
				r.VerificationStatus == domain.VerificationStatusPending
		})).Return(nil)

		result, err := f.useCase.CreateVendor(ctx, testCreateInput())

		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.False(t, result.Partial)
		assert.False(t, result.OutboxUsed)
		assert.Equal(t, "auth1|abc", result.ExternalIdentityID)
		assert.NotEqual(t, uuid.Nil, result.ProfileID)
		assert.NotEqual(t, uuid.Nil, result.BusinessID)
		f.assertExpectations(t)
	})

	t.Run("identity creation fails with no local side effects", func(t *testing.T) {
		f := newSyncFixture(t)

		f.provider.On("CreateIdentity", ctx, mock.Anything).Return("", identity.ErrProviderUnavailable)

		result, err := f.useCase.CreateVendor(ctx, testCreateInput())

		require.ErrorIs(t, err, identity.ErrProviderUnavailable)
		assert.Nil(t, result)
		f.profileRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		f.outboxRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		f.assertExpectations(t)
	})

	t.Run("local write fails and compensation deletes the identity", func(t *testing.T) {
		f := newSyncFixture(t)

		f.provider.On("CreateIdentity", ctx, mock.Anything).Return("auth1|abc", nil)
		f.txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(assert.AnError)
		f.provider.On("DeleteIdentity", ctx, "auth1|abc").Return(nil)

		result, err := f.useCase.CreateVendor(ctx, testCreateInput())

		require.ErrorIs(t, err, assert.AnError)
		assert.Nil(t, result)
		f.outboxRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		f.assertExpectations(t)
	})

	t.Run("failed compensation defers the local write to the outbox", func(t *testing.T) {
		f := newSyncFixture(t)

		f.provider.On("CreateIdentity", ctx, mock.Anything).Return("auth1|abc", nil)
		f.txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(assert.AnError)
		f.provider.On("DeleteIdentity", ctx, "auth1|abc").Return(identity.ErrProviderUnavailable)

		var captured *outboxDomain.OutboxEntry
		f.outboxRepo.On("Create", ctx, mock.MatchedBy(func(entry *outboxDomain.OutboxEntry) bool {
			captured = entry
			return entry.Type == outboxDomain.EntryTypeVendorCreateRetry
		})).Return(nil)

		result, err := f.useCase.CreateVendor(ctx, testCreateInput())

		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.True(t, result.Partial)
		assert.True(t, result.OutboxUsed)

		require.NotNil(t, captured)
		var payload vendorCreateRetryPayload
		require.NoError(t, json.Unmarshal([]byte(captured.Payload), &payload))
		assert.Equal(t, "auth1|abc", payload.ExternalIdentityID)
		assert.Equal(t, result.ProfileID, payload.ProfileID)
		assert.Equal(t, result.BusinessID, payload.BusinessID)
		f.assertExpectations(t)
	})

	t.Run("local conflict with failed compensation enqueues identity cleanup", func(t *testing.T) {
		f := newSyncFixture(t)

		f.provider.On("CreateIdentity", ctx, mock.Anything).Return("auth1|abc", nil)
		f.txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).
			Return(domain.ErrVendorAlreadyExists)
		f.provider.On("DeleteIdentity", ctx, "auth1|abc").Return(identity.ErrProviderUnavailable)

		f.outboxRepo.On("Create", ctx, mock.MatchedBy(func(entry *outboxDomain.OutboxEntry) bool {
			return entry.Type == outboxDomain.EntryTypeIdentityDeleteRetry
		})).Return(nil)

		result, err := f.useCase.CreateVendor(ctx, testCreateInput())

		require.ErrorIs(t, err, domain.ErrVendorAlreadyExists)
		assert.Nil(t, result)
		f.assertExpectations(t)
	})
}

func TestSyncUseCase_UpdateEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("full success", func(t *testing.T) {
		f := newSyncFixture(t)
		profile := testProfile("auth1|abc")

		f.profileRepo.On("GetByID", ctx, profile.ID).Return(profile, nil)
		f.provider.On("UpdateIdentity", ctx, "auth1|abc", mock.MatchedBy(func(u identity.UpdateIdentityInput) bool {
			return u.Email != nil && *u.Email == "new@example.com"
		})).Return(nil)
		f.txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
		f.profileRepo.On("UpdateEmail", ctx, profile.ID, "new@example.com").Return(nil)
		f.businessRepo.On("UpdateEmailByProfileID", ctx, profile.ID, "new@example.com").Return(nil)

		result, err := f.useCase.UpdateEmail(ctx, profile.ID, "new@example.com")

		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.False(t, result.Partial)
		f.assertExpectations(t)
	})

	t.Run("provider failure aborts before local writes", func(t *testing.T) {
		f := newSyncFixture(t)
		profile := testProfile("auth1|abc")

		f.profileRepo.On("GetByID", ctx, profile.ID).Return(profile, nil)
		f.provider.On("UpdateIdentity", ctx, "auth1|abc", mock.Anything).
			Return(identity.ErrProviderUnavailable)

		result, err := f.useCase.UpdateEmail(ctx, profile.ID, "new@example.com")

		require.ErrorIs(t, err, identity.ErrProviderUnavailable)
		assert.Nil(t, result)
		f.outboxRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		f.assertExpectations(t)
	})

	t.Run("local failure after provider success is deferred as partial", func(t *testing.T) {
		f := newSyncFixture(t)
		profile := testProfile("auth1|abc")

		f.profileRepo.On("GetByID", ctx, profile.ID).Return(profile, nil)
		f.provider.On("UpdateIdentity", ctx, "auth1|abc", mock.Anything).Return(nil)
		f.txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(assert.AnError)

		var captured *outboxDomain.OutboxEntry
		f.outboxRepo.On("Create", ctx, mock.MatchedBy(func(entry *outboxDomain.OutboxEntry) bool {
			captured = entry
			return entry.Type == outboxDomain.EntryTypeVendorContactRetry
		})).Return(nil)

		result, err := f.useCase.UpdateEmail(ctx, profile.ID, "new@example.com")

		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.True(t, result.Partial)
		assert.True(t, result.OutboxUsed)

		var payload vendorContactRetryPayload
		require.NoError(t, json.Unmarshal([]byte(captured.Payload), &payload))
		assert.Equal(t, contactFieldEmail, payload.Field)
		assert.Equal(t, "new@example.com", payload.Value)
		f.assertExpectations(t)
	})

	t.Run("local conflict is still deferred so the divergence stays tracked", func(t *testing.T) {
		f := newSyncFixture(t)
		profile := testProfile("auth1|abc")

		f.profileRepo.On("GetByID", ctx, profile.ID).Return(profile, nil)
		f.provider.On("UpdateIdentity", ctx, "auth1|abc", mock.Anything).Return(nil)
		f.txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).
			Return(fmt.Errorf("email taken: %w", apperrors.ErrConflict))

		f.outboxRepo.On("Create", ctx, mock.MatchedBy(func(entry *outboxDomain.OutboxEntry) bool {
			return entry.Type == outboxDomain.EntryTypeVendorContactRetry
		})).Return(nil)

		result, err := f.useCase.UpdateEmail(ctx, profile.ID, "new@example.com")

		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.True(t, result.Partial)
		assert.True(t, result.OutboxUsed)
		f.assertExpectations(t)
	})

	t.Run("unknown profile is a fatal input error", func(t *testing.T) {
		f := newSyncFixture(t)
		profileID := uuid.Must(uuid.NewV7())

		f.profileRepo.On("GetByID", ctx, profileID).Return(nil, domain.ErrProfileNotFound)

		result, err := f.useCase.UpdateEmail(ctx, profileID, "new@example.com")

		require.ErrorIs(t, err, domain.ErrProfileNotFound)
		assert.Nil(t, result)
		f.assertExpectations(t)
	})
}

func TestSyncUseCase_UpdatePhone(t *testing.T) {
	ctx := context.Background()

	t.Run("local failure carries the phone field in the payload", func(t *testing.T) {
		f := newSyncFixture(t)
		profile := testProfile("auth1|abc")

		f.profileRepo.On("GetByID", ctx, profile.ID).Return(profile, nil)
		f.provider.On("UpdateIdentity", ctx, "auth1|abc", mock.MatchedBy(func(u identity.UpdateIdentityInput) bool {
			return u.Phone != nil && *u.Phone == "+15559998888"
		})).Return(nil)
		f.txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(assert.AnError)

		var captured *outboxDomain.OutboxEntry
		f.outboxRepo.On("Create", ctx, mock.MatchedBy(func(entry *outboxDomain.OutboxEntry) bool {
			captured = entry
			return entry.Type == outboxDomain.EntryTypeVendorContactRetry
		})).Return(nil)

		result, err := f.useCase.UpdatePhone(ctx, profile.ID, "+15559998888")

		require.NoError(t, err)
		assert.True(t, result.Partial)

		var payload vendorContactRetryPayload
		require.NoError(t, json.Unmarshal([]byte(captured.Payload), &payload))
		assert.Equal(t, contactFieldPhone, payload.Field)
		f.assertExpectations(t)
	})
}

func TestSyncUseCase_SetPassword(t *testing.T) {
	ctx := context.Background()

	t.Run("provider-only success", func(t *testing.T) {
		f := newSyncFixture(t)
		profile := testProfile("auth1|abc")

		f.profileRepo.On("GetByID", ctx, profile.ID).Return(profile, nil)
		f.provider.On("UpdateIdentity", ctx, "auth1|abc", mock.MatchedBy(func(u identity.UpdateIdentityInput) bool {
			return u.Password != nil && *u.Password == "new-password-123"
		})).Return(nil)

		result, err := f.useCase.SetPassword(ctx, profile.ID, "new-password-123")

		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.False(t, result.Partial)
		f.txManager.AssertNotCalled(t, "WithTx", mock.Anything, mock.Anything)
		f.assertExpectations(t)
	})

	t.Run("provider failure propagates without outbox", func(t *testing.T) {
		f := newSyncFixture(t)
		profile := testProfile("auth1|abc")

		f.profileRepo.On("GetByID", ctx, profile.ID).Return(profile, nil)
		f.provider.On("UpdateIdentity", ctx, "auth1|abc", mock.Anything).
			Return(identity.ErrProviderUnavailable)

		result, err := f.useCase.SetPassword(ctx, profile.ID, "new-password-123")

		require.ErrorIs(t, err, identity.ErrProviderUnavailable)
		assert.Nil(t, result)
		f.outboxRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		f.assertExpectations(t)
	})
}

func TestSyncUseCase_SetVendorStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("local first then provider mirror", func(t *testing.T) {
		f := newSyncFixture(t)
		profile := testProfile("auth1|abc")

		f.profileRepo.On("GetByID", ctx, profile.ID).Return(profile, nil)
		f.txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
		f.businessRepo.On("UpdateStatusByProfileID", ctx, profile.ID, domain.VerificationStatusApproved).Return(nil)
		f.provider.On("UpdateIdentity", ctx, "auth1|abc", mock.MatchedBy(func(u identity.UpdateIdentityInput) bool {
			return u.Metadata[domain.MetadataStatusKey] == "approved"
		})).Return(nil)

		result, err := f.useCase.SetVendorStatus(ctx, profile.ID, domain.VerificationStatusApproved)

		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.False(t, result.Partial)
		f.assertExpectations(t)
	})

	t.Run("failed metadata mirror is partial success with outbox entry", func(t *testing.T) {
		f := newSyncFixture(t)
		profile := testProfile("auth1|abc")

		f.profileRepo.On("GetByID", ctx, profile.ID).Return(profile, nil)
		f.txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
		f.businessRepo.On("UpdateStatusByProfileID", ctx, profile.ID, domain.VerificationStatusApproved).Return(nil)
		f.provider.On("UpdateIdentity", ctx, "auth1|abc", mock.Anything).
			Return(identity.ErrProviderUnavailable)

		var captured *outboxDomain.OutboxEntry
		f.outboxRepo.On("Create", ctx, mock.MatchedBy(func(entry *outboxDomain.OutboxEntry) bool {
			captured = entry
			return entry.Type == outboxDomain.EntryTypeVendorStatusRetry
		})).Return(nil)

		result, err := f.useCase.SetVendorStatus(ctx, profile.ID, domain.VerificationStatusApproved)

		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.True(t, result.Partial)
		assert.True(t, result.OutboxUsed)

		// Only the profile id travels in the payload; the handler re-reads
		// the current status at replay time.
		var payload vendorStatusRetryPayload
		require.NoError(t, json.Unmarshal([]byte(captured.Payload), &payload))
		assert.Equal(t, profile.ID, payload.ProfileID)
		f.assertExpectations(t)
	})

	t.Run("local failure propagates with nothing mirrored", func(t *testing.T) {
		f := newSyncFixture(t)
		profile := testProfile("auth1|abc")

		f.profileRepo.On("GetByID", ctx, profile.ID).Return(profile, nil)
		f.txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(assert.AnError)

		result, err := f.useCase.SetVendorStatus(ctx, profile.ID, domain.VerificationStatusRejected)

		require.ErrorIs(t, err, assert.AnError)
		assert.Nil(t, result)
		f.provider.AssertNotCalled(t, "UpdateIdentity", mock.Anything, mock.Anything, mock.Anything)
		f.assertExpectations(t)
	})

	t.Run("invalid status is rejected before any write", func(t *testing.T) {
		f := newSyncFixture(t)

		result, err := f.useCase.SetVendorStatus(ctx, uuid.Must(uuid.NewV7()), domain.VerificationStatus("bogus"))

		require.ErrorIs(t, err, domain.ErrInvalidStatus)
		assert.Nil(t, result)
		f.assertExpectations(t)
	})
}

func TestSyncUseCase_DeleteVendorFully(t *testing.T) {
	ctx := context.Background()

	t.Run("deleting the last record removes profile and identity", func(t *testing.T) {
		f := newSyncFixture(t)
		profile := testProfile("auth1|abc")
		record := &domain.BusinessRecord{ID: uuid.Must(uuid.NewV7()), ProfileID: profile.ID}

		f.businessRepo.On("GetByID", ctx, record.ID).Return(record, nil)
		f.profileRepo.On("GetByID", ctx, profile.ID).Return(profile, nil)
		f.txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
		f.businessRepo.On("Delete", ctx, record.ID).Return(nil)
		f.businessRepo.On("CountByProfileID", ctx, profile.ID).Return(0, nil)
		f.profileRepo.On("Delete", ctx, profile.ID).Return(nil)
		f.provider.On("DeleteIdentity", ctx, "auth1|abc").Return(nil)

		result, err := f.useCase.DeleteVendorFully(ctx, record.ID)

		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.False(t, result.Partial)
		f.assertExpectations(t)
	})

	t.Run("deleting one of two records leaves profile and identity intact", func(t *testing.T) {
		f := newSyncFixture(t)
		profile := testProfile("auth1|abc")
		record := &domain.BusinessRecord{ID: uuid.Must(uuid.NewV7()), ProfileID: profile.ID}

		f.businessRepo.On("GetByID", ctx, record.ID).Return(record, nil)
		f.profileRepo.On("GetByID", ctx, profile.ID).Return(profile, nil)
		f.txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
		f.businessRepo.On("Delete", ctx, record.ID).Return(nil)
		f.businessRepo.On("CountByProfileID", ctx, profile.ID).Return(1, nil)

		result, err := f.useCase.DeleteVendorFully(ctx, record.ID)

		require.NoError(t, err)
		assert.True(t, result.Success)
		f.profileRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
		f.provider.AssertNotCalled(t, "DeleteIdentity", mock.Anything, mock.Anything)
		f.assertExpectations(t)
	})

	t.Run("failed identity deletion is deferred as partial", func(t *testing.T) {
		f := newSyncFixture(t)
		profile := testProfile("auth1|abc")
		record := &domain.BusinessRecord{ID: uuid.Must(uuid.NewV7()), ProfileID: profile.ID}

		f.businessRepo.On("GetByID", ctx, record.ID).Return(record, nil)
		f.profileRepo.On("GetByID", ctx, profile.ID).Return(profile, nil)
		f.txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
		f.businessRepo.On("Delete", ctx, record.ID).Return(nil)
		f.businessRepo.On("CountByProfileID", ctx, profile.ID).Return(0, nil)
		f.profileRepo.On("Delete", ctx, profile.ID).Return(nil)
		f.provider.On("DeleteIdentity", ctx, "auth1|abc").Return(identity.ErrProviderUnavailable)

		var captured *outboxDomain.OutboxEntry
		f.outboxRepo.On("Create", ctx, mock.MatchedBy(func(entry *outboxDomain.OutboxEntry) bool {
			captured = entry
			return entry.Type == outboxDomain.EntryTypeIdentityDeleteRetry
		})).Return(nil)

		result, err := f.useCase.DeleteVendorFully(ctx, record.ID)

		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.True(t, result.Partial)
		assert.True(t, result.OutboxUsed)

		var payload identityDeleteRetryPayload
		require.NoError(t, json.Unmarshal([]byte(captured.Payload), &payload))
		assert.Equal(t, "auth1|abc", payload.ExternalIdentityID)
		f.assertExpectations(t)
	})

	t.Run("identity already gone counts as success", func(t *testing.T) {
		f := newSyncFixture(t)
		profile := testProfile("auth1|abc")
		record := &domain.BusinessRecord{ID: uuid.Must(uuid.NewV7()), ProfileID: profile.ID}

		f.businessRepo.On("GetByID", ctx, record.ID).Return(record, nil)
		f.profileRepo.On("GetByID", ctx, profile.ID).Return(profile, nil)
		f.txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
		f.businessRepo.On("Delete", ctx, record.ID).Return(nil)
		f.businessRepo.On("CountByProfileID", ctx, profile.ID).Return(0, nil)
		f.profileRepo.On("Delete", ctx, profile.ID).Return(nil)
		f.provider.On("DeleteIdentity", ctx, "auth1|abc").Return(identity.ErrIdentityNotFound)

		result, err := f.useCase.DeleteVendorFully(ctx, record.ID)

		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.False(t, result.Partial)
		f.outboxRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		f.assertExpectations(t)
	})

	t.Run("unknown business record is a fatal input error", func(t *testing.T) {
		f := newSyncFixture(t)
		businessID := uuid.Must(uuid.NewV7())

		f.businessRepo.On("GetByID", ctx, businessID).Return(nil, domain.ErrBusinessRecordNotFound)

		result, err := f.useCase.DeleteVendorFully(ctx, businessID)

		require.ErrorIs(t, err, domain.ErrBusinessRecordNotFound)
		assert.Nil(t, result)
		f.assertExpectations(t)
	})
}
