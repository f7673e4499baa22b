package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/sketchmentor/core/cache"
	"github.com/sketchmentor/core/domain"
	"github.com/sketchmentor/core/domain/mocks"
	"github.com/sketchmentor/core/provider"
)

func seedEvents(t *testing.T, repo *cache.MemoryActivityStore) {
	t.Helper()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	events := []*domain.ActivityEvent{
		{OwnerID: "u-1", Type: domain.ActivityCanvasUsed, Timestamp: base},
		{OwnerID: "u-1", Type: domain.ActivityGraphVisualized, Timestamp: base.Add(time.Minute)},
		{OwnerID: "u-1", Type: domain.ActivityDocumentAnalyzed, Timestamp: base.Add(2 * time.Minute)},
		{OwnerID: "u-2", Type: domain.ActivityCanvasUsed, Timestamp: base.Add(3 * time.Minute)},
	}
	for _, ev := range events {
		require.NoError(t, repo.Insert(context.Background(), ev))
	}
}

func TestActivityFeed_FetchRecent_NewestFirstLimited(t *testing.T) {
	repo := cache.NewMemoryActivityStore()
	seedEvents(t, repo)

	feed := NewActivityFeed(signedInAs("u-1"), repo, 10)
	events := feed.FetchRecent(context.Background(), 2)

	require.Len(t, events, 2)
	assert.Equal(t, domain.ActivityDocumentAnalyzed, events[0].Type)
	assert.Equal(t, domain.ActivityGraphVisualized, events[1].Type)
}

func TestActivityFeed_FetchRecent_OnlyOwnEvents(t *testing.T) {
	repo := cache.NewMemoryActivityStore()
	seedEvents(t, repo)

	feed := NewActivityFeed(signedInAs("u-2"), repo, 10)
	events := feed.FetchRecent(context.Background(), 10)

	require.Len(t, events, 1)
	assert.Equal(t, "u-2", events[0].OwnerID)
}

func TestActivityFeed_FetchRecent_AnonymousIsEmpty(t *testing.T) {
	repo := cache.NewMemoryActivityStore()
	seedEvents(t, repo)

	feed := NewActivityFeed(stubSessions{session: domain.Session{}}, repo, 10)
	assert.Empty(t, feed.FetchRecent(context.Background(), 10))
}

func TestActivityFeed_QueryFailureYieldsEmptyListNotError(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockActivityRepository(ctrl)
	repo.EXPECT().ListRecentByOwner(gomock.Any(), "u-1", 10).Return(nil, errors.New("query failed"))

	feed := NewActivityFeed(signedInAs("u-1"), repo, 10)
	assert.Empty(t, feed.FetchRecent(context.Background(), 10))
}

func TestActivityFeed_DefaultLimitApplies(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockActivityRepository(ctrl)
	repo.EXPECT().ListRecentByOwner(gomock.Any(), "u-1", 3).Return(nil, nil)

	feed := NewActivityFeed(signedInAs("u-1"), repo, 3)
	feed.FetchRecent(context.Background(), 0)
}

func TestActivityFeed_RefreshesOnSessionChangeAndWrites(t *testing.T) {
	local := provider.NewLocalBackend()
	_, err := local.Register(context.Background(), "u@example.com", "secret", "U")
	require.NoError(t, err)

	hub := provider.NewHub(local)
	repo := cache.NewMemoryActivityStore()
	store := NewSessionStore(hub, time.Hour)
	recorder := NewActivityRecorder(store, repo, openWindow{})
	store.AttachTracker(recorder)
	feed := NewActivityFeed(store, repo, 10)
	feed.Bind(store, recorder)

	require.NoError(t, store.Initialize(context.Background()))
	defer store.Close()

	_, loading := feed.Snapshot()
	assert.False(t, loading, "the initial probe notification settles the feed")

	require.NoError(t, store.SignInWithProvider(context.Background(), domain.SignInRequest{
		Provider: "email", Email: "u@example.com", Password: "secret",
	}))

	updates := 0
	cancel := feed.OnUpdate(func() { updates++ })
	defer cancel()

	recorder.Record(context.Background(), domain.ActivityCanvasUsed, nil)

	activities, loading := feed.Snapshot()
	assert.False(t, loading)
	require.Len(t, activities, 1)
	assert.Equal(t, domain.ActivityCanvasUsed, activities[0].Type)
	assert.Equal(t, 1, updates)

	// Signing out empties the published list on the next notification.
	require.NoError(t, store.SignOut(context.Background()))
	activities, _ = feed.Snapshot()
	assert.Empty(t, activities)
}
