package identity

import (
	"context"
	"strings"
	"sync"

	"github.com/allisson/go-pwdhash"
	"github.com/google/uuid"

	apperrors "github.com/dealgrid/vendorsync/internal/errors"
)

// SimulatedProvider is an in-memory Provider for development and tests. It is
// selected explicitly through configuration (IDENTITY_PROVIDER_MODE=simulated),
// never as an implicit fallback inside production logic. Credentials are kept
// hashed so a leaked dev dump does not expose plaintext passwords.
type SimulatedProvider struct {
	mu         sync.RWMutex
	identities map[string]*simulatedIdentity
	byEmail    map[string]string
	hasher     *pwdhash.PasswordHasher
}

type simulatedIdentity struct {
	identity     Identity
	passwordHash string
}

// NewSimulatedProvider creates an empty SimulatedProvider.
func NewSimulatedProvider() (*SimulatedProvider, error) {
	hasher, err := pwdhash.New(pwdhash.WithPolicy(pwdhash.PolicyInteractive))
	if err != nil {
		return nil, apperrors.Wrap(err, "identity: create password hasher")
	}

	return &SimulatedProvider{
		identities: make(map[string]*simulatedIdentity),
		byEmail:    make(map[string]string),
		hasher:     hasher,
	}, nil
}

// CreateIdentity stores a new identity under a generated id. A duplicate
// email returns ErrIdentityExists, matching the remote provider's conflict
// semantics so coordinator behavior is identical in both modes.
func (p *SimulatedProvider) CreateIdentity(ctx context.Context, input CreateIdentityInput) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", apperrors.Wrap(ErrProviderUnavailable, err.Error())
	}

	email := normalizeEmail(input.Email)
	if email == "" {
		return "", apperrors.Wrap(apperrors.ErrInvalidInput, "identity: email is required")
	}

	hash, err := p.hasher.Hash([]byte(input.Password))
	if err != nil {
		return "", apperrors.Wrap(err, "identity: hash password")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.byEmail[email]; exists {
		return "", ErrIdentityExists
	}

	id := "sim|" + uuid.Must(uuid.NewV7()).String()
	p.identities[id] = &simulatedIdentity{
		identity: Identity{
			ID:       id,
			Email:    email,
			Phone:    input.Phone,
			Metadata: cloneMetadata(input.Metadata),
		},
		passwordHash: hash,
	}
	p.byEmail[email] = id

	return id, nil
}

// UpdateIdentity applies the non-nil fields of update. Metadata keys are
// merged into the existing map.
func (p *SimulatedProvider) UpdateIdentity(ctx context.Context, identityID string, update UpdateIdentityInput) error {
	if err := ctx.Err(); err != nil {
		return apperrors.Wrap(ErrProviderUnavailable, err.Error())
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	record, ok := p.identities[identityID]
	if !ok {
		return ErrIdentityNotFound
	}

	if update.Email != nil {
		email := normalizeEmail(*update.Email)
		if other, exists := p.byEmail[email]; exists && other != identityID {
			return ErrIdentityExists
		}
		delete(p.byEmail, record.identity.Email)
		record.identity.Email = email
		p.byEmail[email] = identityID
	}

	if update.Phone != nil {
		record.identity.Phone = *update.Phone
	}

	if update.Password != nil {
		hash, err := p.hasher.Hash([]byte(*update.Password))
		if err != nil {
			return apperrors.Wrap(err, "identity: hash password")
		}
		record.passwordHash = hash
	}

	if update.Metadata != nil {
		if record.identity.Metadata == nil {
			record.identity.Metadata = make(map[string]string, len(update.Metadata))
		}
		for k, v := range update.Metadata {
			record.identity.Metadata[k] = v
		}
	}

	return nil
}

// DeleteIdentity removes an identity.
func (p *SimulatedProvider) DeleteIdentity(ctx context.Context, identityID string) error {
	if err := ctx.Err(); err != nil {
		return apperrors.Wrap(ErrProviderUnavailable, err.Error())
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	record, ok := p.identities[identityID]
	if !ok {
		return ErrIdentityNotFound
	}

	delete(p.byEmail, record.identity.Email)
	delete(p.identities, identityID)

	return nil
}

// GetIdentity returns a copy of a stored identity. Test and dev tooling only.
func (p *SimulatedProvider) GetIdentity(identityID string) (*Identity, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	record, ok := p.identities[identityID]
	if !ok {
		return nil, ErrIdentityNotFound
	}

	identity := record.identity
	identity.Metadata = cloneMetadata(record.identity.Metadata)
	return &identity, nil
}

// VerifyPassword checks a plaintext password against the stored hash. Used by
// dev tooling that simulates end-user logins.
func (p *SimulatedProvider) VerifyPassword(identityID, password string) (bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	record, ok := p.identities[identityID]
	if !ok {
		return false, ErrIdentityNotFound
	}

	return p.hasher.Verify([]byte(password), record.passwordHash)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func cloneMetadata(metadata map[string]string) map[string]string {
	if metadata == nil {
		return nil
	}
	clone := make(map[string]string, len(metadata))
	for k, v := range metadata {
		clone[k] = v
	}
	return clone
}
