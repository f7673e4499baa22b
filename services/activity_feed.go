package services

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/sketchmentor/core/domain"
	autherr "github.com/sketchmentor/core/errors"
)

// ActivityFeed exposes the most recent activity for the current
// identity as a reactive list. It re-queries whenever the identity
// changes or the recorder completes a write.
type ActivityFeed struct {
	sessions SessionReader
	repo     domain.ActivityRepository
	limit    int

	mu         sync.RWMutex
	activities []*domain.ActivityEvent
	loading    bool
	subs       map[int]func()
	nextSub    int
}

// NewActivityFeed creates a feed in the loading state. limit caps the
// list length for every refresh.
func NewActivityFeed(sessions SessionReader, repo domain.ActivityRepository, limit int) *ActivityFeed {
	return &ActivityFeed{
		sessions: sessions,
		repo:     repo,
		limit:    limit,
		loading:  true,
		subs:     make(map[int]func()),
	}
}

// Bind wires the feed's refresh triggers: session changes and
// successful recorder writes.
func (f *ActivityFeed) Bind(store *SessionStore, recorder *ActivityRecorder) {
	store.OnChange(func(domain.Session) {
		f.Refresh(context.Background())
	})
	recorder.OnRecorded(func() {
		f.Refresh(context.Background())
	})
}

// FetchRecent queries up to limit events for the current identity,
// newest first. No identity or a failing store both yield an empty
// list, never an error: feed reads are observability, and a broken
// feed must not break the dashboard.
func (f *ActivityFeed) FetchRecent(ctx context.Context, limit int) []*domain.ActivityEvent {
	cur := f.sessions.Current()
	if cur.Identity == nil {
		return nil
	}
	if limit <= 0 {
		limit = f.limit
	}

	events, err := f.repo.ListRecentByOwner(ctx, cur.Identity.ID, limit)
	if err != nil {
		terr := &autherr.TrackingError{Op: "query", Err: err}
		log.Ctx(ctx).Warn().Err(terr).Msg("activity feed query failed")
		return nil
	}
	return events
}

// Refresh re-queries and republishes the list.
func (f *ActivityFeed) Refresh(ctx context.Context) {
	events := f.FetchRecent(ctx, f.limit)

	f.mu.Lock()
	f.activities = events
	f.loading = false
	subs := make([]func(), 0, len(f.subs))
	for _, fn := range f.subs {
		subs = append(subs, fn)
	}
	f.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
}

// Snapshot returns the published list and whether the first refresh is
// still pending.
func (f *ActivityFeed) Snapshot() (activities []*domain.ActivityEvent, loading bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.activities, f.loading
}

// OnUpdate registers fn to run after every republish.
func (f *ActivityFeed) OnUpdate(fn func()) (cancel func()) {
	f.mu.Lock()
	id := f.nextSub
	f.nextSub++
	f.subs[id] = fn
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		delete(f.subs, id)
		f.mu.Unlock()
	}
}
