// Package identity abstracts the external authentication provider that holds
// vendor credentials and identity metadata. Implementations can call a remote
// management API or keep identities in memory for development and tests.
package identity

import (
	"context"

	apperrors "github.com/dealgrid/vendorsync/internal/errors"
)

// Provider is the admin surface of the identity provider. All methods are
// safe for concurrent use and honor the caller's context deadline.
type Provider interface {
	// CreateIdentity registers a new identity and returns its provider-assigned id.
	CreateIdentity(ctx context.Context, input CreateIdentityInput) (string, error)

	// UpdateIdentity applies the non-nil fields of update to an existing identity.
	UpdateIdentity(ctx context.Context, identityID string, update UpdateIdentityInput) error

	// DeleteIdentity removes an identity. Deleting an unknown identity returns
	// ErrIdentityNotFound.
	DeleteIdentity(ctx context.Context, identityID string) error
}

// CreateIdentityInput carries the fields required to register an identity.
type CreateIdentityInput struct {
	Email    string
	Phone    string
	Password string
	Metadata map[string]string
}

// UpdateIdentityInput carries a partial identity update. Nil fields are left
// untouched; Metadata, when non-nil, is merged key by key.
type UpdateIdentityInput struct {
	Email    *string
	Phone    *string
	Password *string
	Metadata map[string]string
}

// Identity is the provider-held record mirrored by local profiles.
type Identity struct {
	ID       string
	Email    string
	Phone    string
	Metadata map[string]string
}

// Provider-specific errors. Handlers and the sync coordinator branch on these
// to decide between abort, compensation, and outbox deferral.
var (
	// ErrIdentityNotFound indicates the identity id is unknown to the provider.
	ErrIdentityNotFound = apperrors.Wrap(apperrors.ErrNotFound, "identity not found")

	// ErrIdentityExists indicates the provider already holds an identity for
	// the email. The provider's answer is authoritative for "already exists";
	// the local unique constraint is only a backstop.
	ErrIdentityExists = apperrors.Wrap(apperrors.ErrConflict, "identity already exists")

	// ErrProviderUnavailable indicates a network failure, timeout, or 5xx
	// from the provider.
	ErrProviderUnavailable = apperrors.Wrap(apperrors.ErrUnavailable, "identity provider unavailable")
)
