package provider

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/sketchmentor/core/domain"
	autherr "github.com/sketchmentor/core/errors"
)

// LocalBackend is the email/password identity source backing the
// sign-up page. Accounts live in memory; this backend exists for
// development and for deployments without an external provider.
type LocalBackend struct {
	mu    sync.RWMutex
	users map[string]*localUser // keyed by lowercased email
}

type localUser struct {
	id           string
	email        string
	name         string
	passwordHash []byte
}

// NewLocalBackend creates an empty local backend.
func NewLocalBackend() *LocalBackend {
	return &LocalBackend{users: make(map[string]*localUser)}
}

func (l *LocalBackend) Name() string { return "email" }

// Register creates an account and returns its identity.
func (l *LocalBackend) Register(_ context.Context, email, password, name string) (*domain.Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, fmt.Errorf("email and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.users[email]; exists {
		return nil, fmt.Errorf("account already exists for %s", email)
	}
	u := &localUser{
		id:           uuid.NewString(),
		email:        email,
		name:         name,
		passwordHash: hash,
	}
	l.users[email] = u

	return u.identity(), nil
}

// Authenticate checks the email/password pair. Unknown accounts and
// bad passwords both map to ErrInvalidCredentials so callers cannot
// probe which emails exist.
func (l *LocalBackend) Authenticate(_ context.Context, req domain.SignInRequest) (*domain.Identity, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	l.mu.RLock()
	u, ok := l.users[email]
	l.mu.RUnlock()
	if !ok {
		return nil, autherr.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(u.passwordHash, []byte(req.Password)); err != nil {
		return nil, autherr.ErrInvalidCredentials
	}

	return u.identity(), nil
}

func (u *localUser) identity() *domain.Identity {
	return &domain.Identity{ID: u.id, Email: u.email, Name: u.name}
}

var _ Backend = (*LocalBackend)(nil)
