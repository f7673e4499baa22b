package services

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sketchmentor/core/domain"
	autherr "github.com/sketchmentor/core/errors"
	"github.com/sketchmentor/core/internal/audit"
)

// VisitLimiter is the suppression window consulted for page_visited
// events. TouchIfIdle reports whether the key was idle within the
// window and marks it seen.
type VisitLimiter interface {
	TouchIfIdle(ctx context.Context, key string) (bool, error)
}

// ActivityRecorder appends activity events for the current identity.
// Writes are strictly secondary to the user action that triggered
// them: no identity means a silent no-op, and storage failures are
// logged and swallowed, never surfaced, never retried.
type ActivityRecorder struct {
	sessions SessionReader
	repo     domain.ActivityRepository
	visits   VisitLimiter

	mu    sync.RWMutex
	hooks []func()
}

// NewActivityRecorder creates a recorder gated on sessions.
func NewActivityRecorder(sessions SessionReader, repo domain.ActivityRepository, visits VisitLimiter) *ActivityRecorder {
	return &ActivityRecorder{sessions: sessions, repo: repo, visits: visits}
}

// OnRecorded registers fn to run after every successful write. The
// feed uses this to refresh promptly instead of polling.
func (r *ActivityRecorder) OnRecorded(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks = append(r.hooks, fn)
}

// Record appends one event attributed to the current identity.
func (r *ActivityRecorder) Record(ctx context.Context, activityType domain.ActivityType, details map[string]any) {
	cur := r.sessions.Current()
	if cur.Identity == nil {
		// Activity cannot be attributed to nobody.
		return
	}

	if activityType == domain.ActivityPageVisited {
		if page, _ := details["page"].(string); page != "" {
			fresh, err := r.visits.TouchIfIdle(ctx, page)
			if err != nil {
				// A broken window must not drop events; record anyway.
				log.Ctx(ctx).Warn().Err(err).Str("page", page).Msg("visit window unavailable")
			} else if !fresh {
				return
			}
		}
	}

	event := &domain.ActivityEvent{
		OwnerID:   cur.Identity.ID,
		Type:      activityType,
		Details:   details,
		Timestamp: time.Now().UTC(),
	}

	if err := r.repo.Insert(ctx, event); err != nil {
		terr := &autherr.TrackingError{Op: "insert", Err: err}
		log.Ctx(ctx).Warn().Err(terr).Str("activity_type", string(activityType)).Msg("activity write failed")
		audit.Log("activity_recorder", string(activityType), cur.Identity.ID, details, false, err)
		return
	}

	r.mu.RLock()
	hooks := make([]func(), len(r.hooks))
	copy(hooks, r.hooks)
	r.mu.RUnlock()
	for _, fn := range hooks {
		fn()
	}
}

var _ ActivityTracker = (*ActivityRecorder)(nil)
