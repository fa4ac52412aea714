package domain

import (
	"github.com/dealgrid/vendorsync/internal/errors"
)

// Domain-specific errors for vendor operations.
var (
	// ErrProfileNotFound indicates the requested profile does not exist.
	ErrProfileNotFound = errors.Wrap(errors.ErrNotFound, "profile not found")

	// ErrBusinessRecordNotFound indicates the requested business record does not exist.
	ErrBusinessRecordNotFound = errors.Wrap(errors.ErrNotFound, "business record not found")

	// ErrVendorAlreadyExists indicates a vendor with the same email already exists.
	ErrVendorAlreadyExists = errors.Wrap(errors.ErrConflict, "vendor already exists")

	// ErrIdentityNotLinked indicates a profile without an external identity id.
	// This is a fatal input error; such a profile is invalid and nothing can
	// be synchronized for it.
	ErrIdentityNotLinked = errors.Wrap(errors.ErrInvalidInput, "profile has no linked identity")

	// ErrInvalidStatus indicates an unknown verification status value.
	ErrInvalidStatus = errors.Wrap(errors.ErrInvalidInput, "invalid verification status")
)
