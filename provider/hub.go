package provider

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/sketchmentor/core/domain"
	autherr "github.com/sketchmentor/core/errors"
)

// Backend authenticates against one upstream identity source.
type Backend interface {
	// Name is the unique key used in SignInRequest.Provider
	// (e.g. "google", "email").
	Name() string

	// Authenticate resolves the request into an identity, or fails
	// with errors.ErrFlowCancelled when the user abandoned the flow.
	Authenticate(ctx context.Context, req domain.SignInRequest) (*domain.Identity, error)
}

// Hub implements domain.IdentityProvider over a set of named backends.
// It owns the provider-side notion of "current session" and fans out
// change notifications to subscribers, mirroring the notification
// stream a hosted auth SDK would push.
type Hub struct {
	mu       sync.RWMutex
	backends map[string]Backend
	current  *domain.ProviderSession
	subs     map[int]func(*domain.ProviderSession)
	nextSub  int
}

// NewHub creates a hub with the given backends registered.
func NewHub(backends ...Backend) *Hub {
	h := &Hub{
		backends: make(map[string]Backend),
		subs:     make(map[int]func(*domain.ProviderSession)),
	}
	for _, b := range backends {
		h.Register(b)
	}
	return h
}

// Register adds a backend under its name. Later registrations with the
// same name replace earlier ones.
func (h *Hub) Register(b Backend) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.backends[b.Name()] = b
}

// CurrentSession implements domain.IdentityProvider.CurrentSession.
func (h *Hub) CurrentSession(_ context.Context) (*domain.ProviderSession, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current, nil
}

// Subscribe implements domain.IdentityProvider.Subscribe.
func (h *Hub) Subscribe(fn func(*domain.ProviderSession)) (cancel func()) {
	h.mu.Lock()
	id := h.nextSub
	h.nextSub++
	h.subs[id] = fn
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
	}
}

// SignIn implements domain.IdentityProvider.SignIn. Cancellation
// propagates as ErrFlowCancelled without touching the current session.
func (h *Hub) SignIn(ctx context.Context, req domain.SignInRequest) (*domain.ProviderSession, error) {
	h.mu.RLock()
	backend, ok := h.backends[req.Provider]
	h.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", autherr.ErrProviderNotFound, req.Provider)
	}

	identity, err := backend.Authenticate(ctx, req)
	if err != nil {
		if errors.Is(err, autherr.ErrFlowCancelled) || errors.Is(err, context.Canceled) {
			log.Ctx(ctx).Debug().Str("provider", req.Provider).Msg("sign-in flow cancelled by user")
			return nil, autherr.ErrFlowCancelled
		}
		return nil, err
	}

	sess := &domain.ProviderSession{Identity: identity, Provider: backend.Name()}
	h.setCurrent(sess)
	return sess, nil
}

// SignOut implements domain.IdentityProvider.SignOut.
func (h *Hub) SignOut(_ context.Context) error {
	h.setCurrent(nil)
	return nil
}

// setCurrent replaces the session and notifies subscribers outside the
// lock; subscribers observe a fully committed session.
func (h *Hub) setCurrent(sess *domain.ProviderSession) {
	h.mu.Lock()
	h.current = sess
	subs := make([]func(*domain.ProviderSession), 0, len(h.subs))
	for _, fn := range h.subs {
		subs = append(subs, fn)
	}
	h.mu.Unlock()

	for _, fn := range subs {
		fn(sess)
	}
}

var _ domain.IdentityProvider = (*Hub)(nil)
