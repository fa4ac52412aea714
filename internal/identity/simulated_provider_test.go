package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSimulatedProvider(t *testing.T) *SimulatedProvider {
	t.Helper()
	provider, err := NewSimulatedProvider()
	require.NoError(t, err)
	return provider
}

func TestSimulatedProvider_CreateIdentity(t *testing.T) {
	provider := newSimulatedProvider(t)
	ctx := context.Background()

	id, err := provider.CreateIdentity(ctx, CreateIdentityInput{
		Email:    "Vendor@Example.com",
		Phone:    "+15550100100",
		Password: "SecurePass123!",
		Metadata: map[string]string{"verification_status": "pending"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	identity, err := provider.GetIdentity(id)
	require.NoError(t, err)
	assert.Equal(t, "vendor@example.com", identity.Email)
	assert.Equal(t, "+15550100100", identity.Phone)
	assert.Equal(t, "pending", identity.Metadata["verification_status"])
}

func TestSimulatedProvider_CreateIdentity_DuplicateEmail(t *testing.T) {
	provider := newSimulatedProvider(t)
	ctx := context.Background()

	_, err := provider.CreateIdentity(ctx, CreateIdentityInput{
		Email:    "vendor@example.com",
		Password: "SecurePass123!",
	})
	require.NoError(t, err)

	_, err = provider.CreateIdentity(ctx, CreateIdentityInput{
		Email:    "VENDOR@example.com",
		Password: "OtherPass456!",
	})
	assert.ErrorIs(t, err, ErrIdentityExists)
}

func TestSimulatedProvider_UpdateIdentity(t *testing.T) {
	provider := newSimulatedProvider(t)
	ctx := context.Background()

	id, err := provider.CreateIdentity(ctx, CreateIdentityInput{
		Email:    "vendor@example.com",
		Password: "SecurePass123!",
		Metadata: map[string]string{"verification_status": "pending"},
	})
	require.NoError(t, err)

	newEmail := "updated@example.com"
	newPhone := "+15550100199"
	err = provider.UpdateIdentity(ctx, id, UpdateIdentityInput{
		Email:    &newEmail,
		Phone:    &newPhone,
		Metadata: map[string]string{"verification_status": "approved"},
	})
	require.NoError(t, err)

	identity, err := provider.GetIdentity(id)
	require.NoError(t, err)
	assert.Equal(t, "updated@example.com", identity.Email)
	assert.Equal(t, "+15550100199", identity.Phone)
	assert.Equal(t, "approved", identity.Metadata["verification_status"])
}

func TestSimulatedProvider_UpdateIdentity_NotFound(t *testing.T) {
	provider := newSimulatedProvider(t)

	err := provider.UpdateIdentity(context.Background(), "sim|missing", UpdateIdentityInput{})
	assert.ErrorIs(t, err, ErrIdentityNotFound)
}

func TestSimulatedProvider_UpdatePassword(t *testing.T) {
	provider := newSimulatedProvider(t)
	ctx := context.Background()

	id, err := provider.CreateIdentity(ctx, CreateIdentityInput{
		Email:    "vendor@example.com",
		Password: "SecurePass123!",
	})
	require.NoError(t, err)

	ok, err := provider.VerifyPassword(id, "SecurePass123!")
	require.NoError(t, err)
	assert.True(t, ok)

	newPassword := "RotatedPass456!"
	err = provider.UpdateIdentity(ctx, id, UpdateIdentityInput{Password: &newPassword})
	require.NoError(t, err)

	ok, err = provider.VerifyPassword(id, "SecurePass123!")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = provider.VerifyPassword(id, "RotatedPass456!")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSimulatedProvider_DeleteIdentity(t *testing.T) {
	provider := newSimulatedProvider(t)
	ctx := context.Background()

	id, err := provider.CreateIdentity(ctx, CreateIdentityInput{
		Email:    "vendor@example.com",
		Password: "SecurePass123!",
	})
	require.NoError(t, err)

	require.NoError(t, provider.DeleteIdentity(ctx, id))

	_, err = provider.GetIdentity(id)
	assert.ErrorIs(t, err, ErrIdentityNotFound)

	// The email is released for reuse once the identity is gone.
	_, err = provider.CreateIdentity(ctx, CreateIdentityInput{
		Email:    "vendor@example.com",
		Password: "SecurePass123!",
	})
	assert.NoError(t, err)
}

func TestSimulatedProvider_DeleteIdentity_NotFound(t *testing.T) {
	provider := newSimulatedProvider(t)

	err := provider.DeleteIdentity(context.Background(), "sim|missing")
	assert.ErrorIs(t, err, ErrIdentityNotFound)
}

func TestSimulatedProvider_CancelledContext(t *testing.T) {
	provider := newSimulatedProvider(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := provider.CreateIdentity(ctx, CreateIdentityInput{
		Email:    "vendor@example.com",
		Password: "SecurePass123!",
	})
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}
