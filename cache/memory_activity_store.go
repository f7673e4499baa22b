package cache

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sketchmentor/core/domain"
)

// MemoryActivityStore implements domain.ActivityRepository in memory.
// It backs local development and tests; production uses the MongoDB
// repository.
type MemoryActivityStore struct {
	mu     sync.RWMutex
	events []*domain.ActivityEvent
}

// NewMemoryActivityStore creates an empty in-memory activity store.
func NewMemoryActivityStore() *MemoryActivityStore {
	return &MemoryActivityStore{}
}

// Insert implements domain.ActivityRepository.Insert.
func (s *MemoryActivityStore) Insert(_ context.Context, event *domain.ActivityEvent) error {
	stored := *event
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.Timestamp.IsZero() {
		stored.Timestamp = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, &stored)
	return nil
}

// ListRecentByOwner implements domain.ActivityRepository.ListRecentByOwner.
func (s *MemoryActivityStore) ListRecentByOwner(_ context.Context, ownerID string, limit int) ([]*domain.ActivityEvent, error) {
	s.mu.RLock()
	var out []*domain.ActivityEvent
	for _, ev := range s.events {
		if ev.OwnerID == ownerID {
			out = append(out, ev)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Count reports the number of stored events, across all owners.
func (s *MemoryActivityStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

var _ domain.ActivityRepository = (*MemoryActivityStore)(nil)
