package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sketchmentor/core/domain"
	autherr "github.com/sketchmentor/core/errors"
)

// SessionReader is the read-only view of the session store that
// dependent components (recorder, feed, gate) consume.
type SessionReader interface {
	Current() domain.Session
}

// ActivityTracker is the slice of the activity recorder the session
// store needs for its best-effort login/logout events. Record never
// returns an error; tracking failures stay inside the recorder.
type ActivityTracker interface {
	Record(ctx context.Context, activityType domain.ActivityType, details map[string]any)
}

// SessionStore is the single authoritative projection of "who is
// logged in right now", fed by provider notifications. It is the only
// writer of session state; everything else reads snapshots.
type SessionStore struct {
	provider domain.IdentityProvider

	mu      sync.RWMutex
	session domain.Session
	subs    map[int]func(domain.Session)
	nextSub int

	tracker     ActivityTracker
	loginDelay  time.Duration
	initOnce    sync.Once
	unsubscribe func()
}

// NewSessionStore creates a store in the loading state. loginDelay is
// how long the post-sign-in login event is deferred so it does not
// race the provider's own session commit.
func NewSessionStore(provider domain.IdentityProvider, loginDelay time.Duration) *SessionStore {
	return &SessionStore{
		provider:   provider,
		session:    domain.Session{Loading: true},
		subs:       make(map[int]func(domain.Session)),
		loginDelay: loginDelay,
	}
}

// AttachTracker wires the activity recorder in after construction;
// the recorder itself depends on this store for its identity gate.
func (s *SessionStore) AttachTracker(t ActivityTracker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracker = t
}

// Initialize probes the provider once and subscribes to its change
// stream. Repeat calls are no-ops: the subscription is established
// exactly once for the lifetime of the process and released by Close.
func (s *SessionStore) Initialize(ctx context.Context) error {
	var err error
	s.initOnce.Do(func() {
		s.unsubscribe = s.provider.Subscribe(s.apply)

		var sess *domain.ProviderSession
		sess, err = s.provider.CurrentSession(ctx)
		if err != nil {
			// Clear loading anyway so the gate settles on Anonymous
			// instead of blanking the UI forever.
			log.Ctx(ctx).Error().Err(err).Msg("initial session probe failed")
			s.apply(nil)
			return
		}
		s.apply(sess)
	})
	return err
}

// Close releases the provider subscription.
func (s *SessionStore) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

// Current returns the session snapshot.
func (s *SessionStore) Current() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// OnChange registers fn for every session replacement. fn runs after
// the new state is committed, so reads from inside fn observe it.
func (s *SessionStore) OnChange(fn func(domain.Session)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// SignInWithProvider delegates the interactive flow to the adapter. A
// flow the user abandoned resolves cleanly with no session change; any
// other adapter rejection surfaces as *errors.AuthError.
func (s *SessionStore) SignInWithProvider(ctx context.Context, req domain.SignInRequest) error {
	if _, err := s.provider.SignIn(ctx, req); err != nil {
		if errors.Is(err, autherr.ErrFlowCancelled) {
			log.Ctx(ctx).Debug().Str("provider", req.Provider).Msg("sign-in cancelled, no session change")
			return nil
		}
		return autherr.NewAuthError("sign_in", req.Provider, err)
	}
	return nil
}

// SignOut records the logout event for the current identity first,
// then delegates to the adapter. The order matters: once the adapter
// signs out there is no identity left to attribute the event to.
func (s *SessionStore) SignOut(ctx context.Context) error {
	cur := s.Current()

	if cur.Identity != nil && s.trackerRef() != nil {
		s.trackerRef().Record(ctx, domain.ActivityLogout, map[string]any{"provider": cur.Provider})
	}

	if err := s.provider.SignOut(ctx); err != nil {
		return autherr.NewAuthError("sign_out", cur.Provider, err)
	}
	return nil
}

func (s *SessionStore) trackerRef() ActivityTracker {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tracker
}

// apply is the provider-notification handler and the only writer of
// session state. The replacement is atomic with respect to readers:
// observers are notified only after the new snapshot is committed.
func (s *SessionStore) apply(ps *domain.ProviderSession) {
	next := domain.Session{Loading: false}
	if ps != nil {
		next.Identity = ps.Identity
		next.Provider = ps.Provider
	}

	s.mu.Lock()
	prev := s.session
	s.session = next
	subs := make([]func(domain.Session), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}

	if next.Identity != nil && (prev.Identity == nil || prev.Identity.ID != next.Identity.ID) {
		s.scheduleLoginEvent(next)
	}
}

// scheduleLoginEvent fires the deferred, fire-and-forget login event.
// No handle is retained; failures never reach the sign-in flow.
func (s *SessionStore) scheduleLoginEvent(sess domain.Session) {
	tracker := s.trackerRef()
	if tracker == nil {
		return
	}
	time.AfterFunc(s.loginDelay, func() {
		tracker.Record(context.Background(), domain.ActivityLogin, map[string]any{"provider": sess.Provider})
	})
}

var _ SessionReader = (*SessionStore)(nil)
