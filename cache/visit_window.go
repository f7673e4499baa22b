package cache

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// VisitWindow is the process-local suppression window for repeated
// page-visit events. Entries expire after the configured window and
// the whole map starts empty on every process start; nothing here is
// persisted.
type VisitWindow struct {
	cache *ttlcache.Cache[string, time.Time]
}

// NewVisitWindow creates a suppression window with automatic expiry.
func NewVisitWindow(window time.Duration) *VisitWindow {
	c := ttlcache.New(
		ttlcache.WithTTL[string, time.Time](window),
		ttlcache.WithDisableTouchOnHit[string, time.Time](),
	)

	// Start the expiry process
	go c.Start()

	return &VisitWindow{cache: c}
}

// TouchIfIdle reports whether key was idle (not seen within the
// window) and, if so, marks it seen as of now. A false return means
// the caller should suppress the event.
func (w *VisitWindow) TouchIfIdle(_ context.Context, key string) (bool, error) {
	if w.cache.Has(key) {
		return false, nil
	}
	w.cache.Set(key, time.Now().UTC(), ttlcache.DefaultTTL)
	return true, nil
}

// Close stops the expiry goroutine.
func (w *VisitWindow) Close() {
	w.cache.Stop()
}
