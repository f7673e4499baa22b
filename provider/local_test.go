package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sketchmentor/core/domain"
	autherr "github.com/sketchmentor/core/errors"
)

func TestLocalBackend_RegisterThenAuthenticate(t *testing.T) {
	backend := NewLocalBackend()

	registered, err := backend.Register(context.Background(), "Ada@Example.com", "s3cret", "Ada")
	require.NoError(t, err)
	require.NotEmpty(t, registered.ID)
	assert.Equal(t, "ada@example.com", registered.Email)
	assert.Equal(t, "Ada", registered.Name)

	identity, err := backend.Authenticate(context.Background(), domain.SignInRequest{
		Email:    "ada@example.com",
		Password: "s3cret",
	})
	require.NoError(t, err)
	assert.Equal(t, registered.ID, identity.ID)
}

func TestLocalBackend_WrongPassword(t *testing.T) {
	backend := NewLocalBackend()
	_, err := backend.Register(context.Background(), "ada@example.com", "s3cret", "Ada")
	require.NoError(t, err)

	_, err = backend.Authenticate(context.Background(), domain.SignInRequest{
		Email:    "ada@example.com",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, autherr.ErrInvalidCredentials)
}

func TestLocalBackend_UnknownEmail(t *testing.T) {
	backend := NewLocalBackend()

	_, err := backend.Authenticate(context.Background(), domain.SignInRequest{
		Email:    "nobody@example.com",
		Password: "s3cret",
	})
	assert.ErrorIs(t, err, autherr.ErrInvalidCredentials)
}

func TestLocalBackend_DuplicateRegistration(t *testing.T) {
	backend := NewLocalBackend()
	_, err := backend.Register(context.Background(), "ada@example.com", "s3cret", "Ada")
	require.NoError(t, err)

	_, err = backend.Register(context.Background(), "ADA@example.com", "other", "Ada")
	assert.Error(t, err)
}

func TestLocalBackend_EmptyCredentialsRejected(t *testing.T) {
	backend := NewLocalBackend()

	_, err := backend.Register(context.Background(), "", "s3cret", "Ada")
	assert.Error(t, err)

	_, err = backend.Register(context.Background(), "ada@example.com", "", "Ada")
	assert.Error(t, err)
}
