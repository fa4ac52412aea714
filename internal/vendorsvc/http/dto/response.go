package dto

import (
	"github.com/google/uuid"

	"github.com/dealgrid/vendorsync/internal/vendorsvc/domain"
)

// Sync outcome values reported to API clients. A deferred outcome means one
// of the two writes is queued in the outbox and will converge asynchronously.
const (
	SyncStateCompleted = "completed"
	SyncStateDeferred  = "deferred"
)

// SyncResponse represents the outcome of a sync operation in API responses.
type SyncResponse struct {
	ProfileID          string `json:"profile_id,omitempty"`
	BusinessID         string `json:"business_id,omitempty"`
	ExternalIdentityID string `json:"external_identity_id,omitempty"`
	Sync               string `json:"sync"`
}

// MapSyncResultToResponse converts a domain sync result to an API response.
func MapSyncResultToResponse(result *domain.SyncResult) SyncResponse {
	response := SyncResponse{
		ExternalIdentityID: result.ExternalIdentityID,
		Sync:               SyncStateCompleted,
	}
	if result.Partial {
		response.Sync = SyncStateDeferred
	}
	if result.ProfileID != uuid.Nil {
		response.ProfileID = result.ProfileID.String()
	}
	if result.BusinessID != uuid.Nil {
		response.BusinessID = result.BusinessID.String()
	}
	return response
}
