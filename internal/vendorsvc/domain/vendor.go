// Package domain defines the core vendor domain entities and types.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Profile represents one identity-bearing actor. A profile is only valid
// once it references an external identity; the create path never persists a
// profile without one.
type Profile struct {
	ID                 uuid.UUID
	ExternalIdentityID string
	Email              string
	Phone              string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// BusinessRecord is a vendor's business entity, owned by exactly one Profile.
// Its email/phone mirror the owning profile's and may transiently diverge
// during a partial-failure window.
type BusinessRecord struct {
	ID                 uuid.UUID
	ProfileID          uuid.UUID
	BusinessName       string
	Category           string
	Email              string
	Phone              string
	VerificationStatus VerificationStatus
	// Documents holds opaque references to uploaded verification artifacts.
	// They are stored as pass-through values and never processed here.
	Documents []string
	CreatedAt time.Time
	UpdatedAt time.Time
}
