package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "sm:visit:"

// VisitWindow is a Redis-backed page-visit suppression window for
// deployments running more than one replica, where a process-local
// window would record one event per replica.
type VisitWindow struct {
	client *redis.Client
	window time.Duration
}

// NewVisitWindow creates a shared suppression window on client.
func NewVisitWindow(client *redis.Client, window time.Duration) *VisitWindow {
	return &VisitWindow{client: client, window: window}
}

// TouchIfIdle marks key seen with SET NX; the key carries the window
// as its TTL, so a false return means another record happened inside
// the window.
func (w *VisitWindow) TouchIfIdle(ctx context.Context, key string) (bool, error) {
	return w.client.SetNX(ctx, keyPrefix+key, time.Now().UTC().Format(time.RFC3339), w.window).Result()
}
