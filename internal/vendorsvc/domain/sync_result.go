package domain

import (
	"github.com/google/uuid"
)

// SyncResult is the outcome shared by every sync coordinator operation.
//
// Success means the authoritative state for the operation is in place.
// Partial means one of the two writes succeeded and the other is queued for
// retry; the system will converge through the outbox. OutboxUsed reports
// whether an entry was durably recorded.
type SyncResult struct {
	Success            bool
	Partial            bool
	OutboxUsed         bool
	ProfileID          uuid.UUID
	BusinessID         uuid.UUID
	ExternalIdentityID string
}

// Done builds the result of a fully synchronous success.
func Done(profileID, businessID uuid.UUID, externalIdentityID string) *SyncResult {
	return &SyncResult{
		Success:            true,
		ProfileID:          profileID,
		BusinessID:         businessID,
		ExternalIdentityID: externalIdentityID,
	}
}

// Deferred builds the result of a partial success whose remainder was
// recorded in the outbox.
func Deferred(profileID, businessID uuid.UUID, externalIdentityID string) *SyncResult {
	return &SyncResult{
		Success:            true,
		Partial:            true,
		OutboxUsed:         true,
		ProfileID:          profileID,
		BusinessID:         businessID,
		ExternalIdentityID: externalIdentityID,
	}
}
