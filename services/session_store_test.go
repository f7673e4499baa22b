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
	autherr "github.com/sketchmentor/core/errors"
	"github.com/sketchmentor/core/provider"
)

// openWindow never suppresses anything.
type openWindow struct{}

func (openWindow) TouchIfIdle(context.Context, string) (bool, error) { return true, nil }

func eventsOfType(t *testing.T, repo *cache.MemoryActivityStore, ownerID string, typ domain.ActivityType) []*domain.ActivityEvent {
	t.Helper()
	all, err := repo.ListRecentByOwner(context.Background(), ownerID, 0)
	require.NoError(t, err)
	var out []*domain.ActivityEvent
	for _, ev := range all {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

func TestSessionStore_StartsLoading(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := NewSessionStore(mocks.NewMockIdentityProvider(ctrl), time.Millisecond)

	cur := store.Current()
	assert.True(t, cur.Loading)
	assert.Nil(t, cur.Identity)
	assert.Equal(t, domain.GateUndetermined, domain.Gate(cur))
}

func TestSessionStore_Initialize_AnonymousProbe(t *testing.T) {
	ctrl := gomock.NewController(t)
	providerMock := mocks.NewMockIdentityProvider(ctrl)
	providerMock.EXPECT().Subscribe(gomock.Any()).Return(func() {})
	providerMock.EXPECT().CurrentSession(gomock.Any()).Return(nil, nil)

	store := NewSessionStore(providerMock, time.Millisecond)
	require.NoError(t, store.Initialize(context.Background()))

	cur := store.Current()
	assert.False(t, cur.Loading)
	assert.Nil(t, cur.Identity)
	assert.Equal(t, domain.GateAnonymous, domain.Gate(cur))
}

func TestSessionStore_Initialize_SubscribesExactlyOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	providerMock := mocks.NewMockIdentityProvider(ctrl)
	providerMock.EXPECT().Subscribe(gomock.Any()).Return(func() {}).Times(1)
	providerMock.EXPECT().CurrentSession(gomock.Any()).Return(nil, nil).Times(1)

	store := NewSessionStore(providerMock, time.Millisecond)
	require.NoError(t, store.Initialize(context.Background()))
	require.NoError(t, store.Initialize(context.Background()))
}

func TestSessionStore_Initialize_ProbeFailureClearsLoading(t *testing.T) {
	ctrl := gomock.NewController(t)
	providerMock := mocks.NewMockIdentityProvider(ctrl)
	providerMock.EXPECT().Subscribe(gomock.Any()).Return(func() {})
	providerMock.EXPECT().CurrentSession(gomock.Any()).Return(nil, errors.New("provider unreachable"))

	store := NewSessionStore(providerMock, time.Millisecond)
	err := store.Initialize(context.Background())
	require.Error(t, err)

	cur := store.Current()
	assert.False(t, cur.Loading, "a failed probe must still settle the gate")
	assert.Nil(t, cur.Identity)
}

func TestSessionStore_Initialize_SignedInProbe_SchedulesDeferredLoginEvent(t *testing.T) {
	ctrl := gomock.NewController(t)
	providerMock := mocks.NewMockIdentityProvider(ctrl)
	providerMock.EXPECT().Subscribe(gomock.Any()).Return(func() {})
	providerMock.EXPECT().CurrentSession(gomock.Any()).Return(&domain.ProviderSession{
		Identity: &domain.Identity{ID: "u-1", Email: "u@example.com"},
		Provider: "google",
	}, nil)

	repo := cache.NewMemoryActivityStore()
	store := NewSessionStore(providerMock, 20*time.Millisecond)
	store.AttachTracker(NewActivityRecorder(store, repo, openWindow{}))

	require.NoError(t, store.Initialize(context.Background()))

	// Identity is visible immediately; the login event is not.
	cur := store.Current()
	require.NotNil(t, cur.Identity)
	assert.Equal(t, "u-1", cur.Identity.ID)
	assert.Zero(t, repo.Count())

	require.Eventually(t, func() bool {
		return len(eventsOfType(t, repo, "u-1", domain.ActivityLogin)) == 1
	}, time.Second, 5*time.Millisecond)

	login := eventsOfType(t, repo, "u-1", domain.ActivityLogin)[0]
	assert.Equal(t, "google", login.Details["provider"])
	assert.Equal(t, "u-1", login.OwnerID)
}

func TestSessionStore_SignIn_CancellationIsNotFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	providerMock := mocks.NewMockIdentityProvider(ctrl)
	providerMock.EXPECT().SignIn(gomock.Any(), gomock.Any()).Return(nil, autherr.ErrFlowCancelled)

	store := NewSessionStore(providerMock, time.Millisecond)
	err := store.SignInWithProvider(context.Background(), domain.SignInRequest{Provider: "google"})

	require.NoError(t, err)
	assert.Nil(t, store.Current().Identity)
}

func TestSessionStore_SignIn_AdapterErrorBecomesAuthError(t *testing.T) {
	ctrl := gomock.NewController(t)
	providerMock := mocks.NewMockIdentityProvider(ctrl)
	providerMock.EXPECT().SignIn(gomock.Any(), gomock.Any()).Return(nil, errors.New("network down"))

	store := NewSessionStore(providerMock, time.Millisecond)
	err := store.SignInWithProvider(context.Background(), domain.SignInRequest{Provider: "google"})

	var authErr *autherr.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "sign_in", authErr.Op)
	assert.Equal(t, "google", authErr.Provider)
}

func TestSessionStore_SignOut_AdapterErrorBecomesAuthError(t *testing.T) {
	ctrl := gomock.NewController(t)
	providerMock := mocks.NewMockIdentityProvider(ctrl)
	providerMock.EXPECT().SignOut(gomock.Any()).Return(errors.New("adapter rejected"))

	store := NewSessionStore(providerMock, time.Millisecond)
	err := store.SignOut(context.Background())

	var authErr *autherr.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "sign_out", authErr.Op)
}

func TestSessionStore_SignOut_RecordsLogoutBeforeInvalidation(t *testing.T) {
	local := provider.NewLocalBackend()
	_, err := local.Register(context.Background(), "u@example.com", "secret", "U")
	require.NoError(t, err)

	hub := provider.NewHub(local)
	repo := cache.NewMemoryActivityStore()
	// Long login delay keeps the deferred login event out of the assertions.
	store := NewSessionStore(hub, time.Hour)
	store.AttachTracker(NewActivityRecorder(store, repo, openWindow{}))
	require.NoError(t, store.Initialize(context.Background()))
	defer store.Close()

	require.NoError(t, store.SignInWithProvider(context.Background(), domain.SignInRequest{
		Provider: "email", Email: "u@example.com", Password: "secret",
	}))
	cur := store.Current()
	require.NotNil(t, cur.Identity)
	userID := cur.Identity.ID

	require.NoError(t, store.SignOut(context.Background()))

	// The logout event carries the pre-sign-out identity even though
	// the session is gone by now.
	assert.Nil(t, store.Current().Identity)
	logouts := eventsOfType(t, repo, userID, domain.ActivityLogout)
	require.Len(t, logouts, 1)
	assert.Equal(t, userID, logouts[0].OwnerID)
	assert.Equal(t, "email", logouts[0].Details["provider"])
}

func TestSessionStore_SameIdentityNotificationDoesNotRescheduleLogin(t *testing.T) {
	local := provider.NewLocalBackend()
	_, err := local.Register(context.Background(), "u@example.com", "secret", "U")
	require.NoError(t, err)

	hub := provider.NewHub(local)
	repo := cache.NewMemoryActivityStore()
	store := NewSessionStore(hub, 5*time.Millisecond)
	store.AttachTracker(NewActivityRecorder(store, repo, openWindow{}))
	require.NoError(t, store.Initialize(context.Background()))
	defer store.Close()

	req := domain.SignInRequest{Provider: "email", Email: "u@example.com", Password: "secret"}
	require.NoError(t, store.SignInWithProvider(context.Background(), req))
	userID := store.Current().Identity.ID
	require.NoError(t, store.SignInWithProvider(context.Background(), req))

	require.Eventually(t, func() bool {
		return len(eventsOfType(t, repo, userID, domain.ActivityLogin)) == 1
	}, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Len(t, eventsOfType(t, repo, userID, domain.ActivityLogin), 1)
}

func TestSessionStore_OnChange_NotifiesAfterCommit(t *testing.T) {
	local := provider.NewLocalBackend()
	_, err := local.Register(context.Background(), "u@example.com", "secret", "U")
	require.NoError(t, err)

	hub := provider.NewHub(local)
	store := NewSessionStore(hub, time.Hour)
	require.NoError(t, store.Initialize(context.Background()))
	defer store.Close()

	var observed []domain.Session
	cancel := store.OnChange(func(s domain.Session) {
		// The committed snapshot must match what observers receive.
		assert.Equal(t, s, store.Current())
		observed = append(observed, s)
	})
	defer cancel()

	require.NoError(t, store.SignInWithProvider(context.Background(), domain.SignInRequest{
		Provider: "email", Email: "u@example.com", Password: "secret",
	}))
	require.NoError(t, store.SignOut(context.Background()))

	require.Len(t, observed, 2)
	assert.NotNil(t, observed[0].Identity)
	assert.Nil(t, observed[1].Identity)
}
