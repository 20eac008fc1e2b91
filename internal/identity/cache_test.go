package identity_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Aditya2073/agrisample/internal/identity"
	"github.com/Aditya2073/agrisample/internal/profile"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeRemote struct {
	mu       sync.Mutex
	session  func(ctx context.Context) (*identity.SessionInfo, error)
	profiles map[uuid.UUID]*profile.Profile
	fetchErr error
	signOuts int
	events   chan identity.Event
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		profiles: make(map[uuid.UUID]*profile.Profile),
		session:  func(context.Context) (*identity.SessionInfo, error) { return nil, nil },
		events:   make(chan identity.Event),
	}
}

func (r *fakeRemote) signedInAs(p *profile.Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[p.ID] = p
	r.session = func(context.Context) (*identity.SessionInfo, error) {
		return &identity.SessionInfo{UserID: p.ID}, nil
	}
}

func (r *fakeRemote) CurrentSession(ctx context.Context) (*identity.SessionInfo, error) {
	r.mu.Lock()
	fn := r.session
	r.mu.Unlock()
	return fn(ctx)
}

func (r *fakeRemote) FetchProfile(_ context.Context, id uuid.UUID) (*profile.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fetchErr != nil {
		return nil, r.fetchErr
	}
	p, ok := r.profiles[id]
	if !ok {
		return nil, profile.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeRemote) SignOut(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.signOuts++
	r.session = func(context.Context) (*identity.SessionInfo, error) { return nil, nil }
	return nil
}

func (r *fakeRemote) Subscribe() (<-chan identity.Event, func()) {
	return r.events, func() {}
}

func testProfile(name string) *profile.Profile {
	return &profile.Profile{
		ID:    uuid.Must(uuid.NewV4()),
		Name:  name,
		Email: name + "@example.com",
		Role:  profile.RoleBuyer,
	}
}

func persist(t *testing.T, s identity.Storage, p *profile.Profile) {
	t.Helper()
	raw, err := json.Marshal(map[string]any{"user": p})
	require.NoError(t, err)
	require.NoError(t, s.Set(context.Background(), identity.StorageKey, raw))
}

func storedUser(t *testing.T, s identity.Storage) *profile.Profile {
	t.Helper()
	raw, err := s.Get(context.Background(), identity.StorageKey)
	require.NoError(t, err)
	var payload struct {
		User *profile.Profile `json:"user"`
	}
	require.NoError(t, json.Unmarshal(raw, &payload))
	return payload.User
}

func TestCache_NoSession(t *testing.T) {
	remote := newFakeRemote()
	storage := identity.NewMemoryStorage()
	c := identity.New(context.Background(), remote, storage)

	assert.False(t, c.Initialized())
	c.Initialize(context.Background())

	assert.True(t, c.Initialized())
	assert.False(t, c.IsAuthenticated())
	assert.Nil(t, c.User())
	assert.Nil(t, storedUser(t, storage))
}

func TestCache_RehydratedIsProvisional(t *testing.T) {
	remote := newFakeRemote()
	storage := identity.NewMemoryStorage()
	u := testProfile("meera")
	persist(t, storage, u)
	remote.signedInAs(u)

	c := identity.New(context.Background(), remote, storage)
	require.NotNil(t, c.User())
	assert.Equal(t, u.ID, c.User().ID)
	assert.False(t, c.Initialized())
	assert.False(t, c.IsAuthenticated(), "rehydrated identity is not trusted before revalidation")

	c.Initialize(context.Background())
	assert.True(t, c.IsAuthenticated())
	assert.Equal(t, u.Name, c.User().Name)
}

func TestCache_StaleProfileWithoutSession(t *testing.T) {
	remote := newFakeRemote()
	storage := identity.NewMemoryStorage()
	persist(t, storage, testProfile("stale"))

	c := identity.New(context.Background(), remote, storage)
	c.Initialize(context.Background())

	assert.False(t, c.IsAuthenticated())
	assert.Nil(t, c.User())
	assert.Nil(t, storedUser(t, storage), "stale identity is cleared from storage")
}

func TestCache_SessionWithoutProfileForcesSignOut(t *testing.T) {
	remote := newFakeRemote()
	ghost := uuid.Must(uuid.NewV4())
	remote.session = func(context.Context) (*identity.SessionInfo, error) {
		return &identity.SessionInfo{UserID: ghost}, nil
	}

	c := identity.New(context.Background(), remote, identity.NewMemoryStorage())
	c.Initialize(context.Background())

	assert.False(t, c.IsAuthenticated())
	assert.Equal(t, 1, remote.signOuts)
}

func TestCache_RemoteFailureDegradesToSignedOut(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(r *fakeRemote, u *profile.Profile)
	}{
		{
			name: "session_lookup_fails",
			prepare: func(r *fakeRemote, _ *profile.Profile) {
				r.session = func(context.Context) (*identity.SessionInfo, error) { return nil, errors.New("network down") }
			},
		},
		{
			name: "profile_fetch_fails",
			prepare: func(r *fakeRemote, u *profile.Profile) {
				r.signedInAs(u)
				r.fetchErr = errors.New("timeout")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remote := newFakeRemote()
			u := testProfile("ravi")
			tt.prepare(remote, u)
			storage := identity.NewMemoryStorage()
			persist(t, storage, u)

			c := identity.New(context.Background(), remote, storage)
			c.Initialize(context.Background())

			assert.True(t, c.Initialized())
			assert.False(t, c.IsAuthenticated())
			assert.Nil(t, c.User())
			assert.Zero(t, remote.signOuts, "only a missing profile forces sign-out")
		})
	}
}

func TestCache_SetUser(t *testing.T) {
	storage := identity.NewMemoryStorage()
	c := identity.New(context.Background(), newFakeRemote(), storage)
	u := testProfile("asha")

	c.SetUser(context.Background(), u)
	assert.True(t, c.IsAuthenticated())
	assert.Equal(t, u.ID, storedUser(t, storage).ID)

	// callers cannot mutate the cached profile
	got := c.User()
	got.Name = "changed"
	assert.Equal(t, "asha", c.User().Name)

	c.SetUser(context.Background(), nil)
	assert.False(t, c.IsAuthenticated())
	assert.Nil(t, storedUser(t, storage))
}

func TestCache_LatestInitializeWins(t *testing.T) {
	remote := newFakeRemote()
	first, second := testProfile("first"), testProfile("second")
	remote.profiles[first.ID] = first
	remote.profiles[second.ID] = second

	release := make(chan struct{})
	entered := make(chan struct{})
	var calls int
	remote.session = func(context.Context) (*identity.SessionInfo, error) {
		remote.mu.Lock()
		calls++
		n := calls
		remote.mu.Unlock()
		if n == 1 {
			close(entered)
			<-release
			return &identity.SessionInfo{UserID: first.ID}, nil
		}
		return &identity.SessionInfo{UserID: second.ID}, nil
	}

	storage := identity.NewMemoryStorage()
	c := identity.New(context.Background(), remote, storage)

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.Initialize(context.Background())
	}()
	<-entered

	c.Initialize(context.Background())
	require.Equal(t, second.ID, c.User().ID)

	close(release)
	<-done

	assert.Equal(t, second.ID, c.User().ID, "older call finishing later must not overwrite")
	assert.Equal(t, second.ID, storedUser(t, storage).ID)
}

func TestCache_SetUserBeatsInflightInitialize(t *testing.T) {
	remote := newFakeRemote()
	stale := testProfile("stale")
	remote.profiles[stale.ID] = stale

	release := make(chan struct{})
	entered := make(chan struct{})
	remote.session = func(context.Context) (*identity.SessionInfo, error) {
		close(entered)
		<-release
		return &identity.SessionInfo{UserID: stale.ID}, nil
	}

	c := identity.New(context.Background(), remote, identity.NewMemoryStorage())
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.Initialize(context.Background())
	}()
	<-entered

	fresh := testProfile("fresh")
	c.SetUser(context.Background(), fresh)
	close(release)
	<-done

	assert.Equal(t, fresh.ID, c.User().ID)
}

func TestCache_WatchReinitializesOnEvents(t *testing.T) {
	remote := newFakeRemote()
	c := identity.New(context.Background(), remote, identity.NewMemoryStorage())
	c.Initialize(context.Background())
	require.False(t, c.IsAuthenticated())

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		c.Watch(ctx)
	}()

	u := testProfile("lakshmi")
	remote.signedInAs(u)
	remote.events <- identity.Event{Kind: identity.EventSignedIn, UserID: u.ID}
	assert.Eventually(t, c.IsAuthenticated, time.Second, 5*time.Millisecond)

	require.NoError(t, remote.SignOut(context.Background()))
	remote.events <- identity.Event{Kind: identity.EventSignedOut, UserID: u.ID}
	assert.Eventually(t, func() bool { return !c.IsAuthenticated() }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Watch did not stop after cancel")
	}
}

func TestCache_WatchStopsWhenSubscriptionCloses(t *testing.T) {
	remote := newFakeRemote()
	c := identity.New(context.Background(), remote, identity.NewMemoryStorage())

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		c.Watch(context.Background())
	}()
	close(remote.events)

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Watch did not stop after the subscription closed")
	}
}

func TestCache_WatchCancelKeepsIdentity(t *testing.T) {
	remote := newFakeRemote()
	c := identity.New(context.Background(), remote, identity.NewMemoryStorage())
	u := testProfile("meena")
	c.SetUser(context.Background(), u)
	require.True(t, c.IsAuthenticated())

	entered := make(chan struct{})
	remote.mu.Lock()
	remote.session = func(ctx context.Context) (*identity.SessionInfo, error) {
		close(entered)
		<-ctx.Done()
		return nil, ctx.Err()
	}
	remote.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		c.Watch(ctx)
	}()

	remote.events <- identity.Event{Kind: identity.EventSignedIn, UserID: u.ID}
	<-entered
	cancel()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Watch did not stop after cancel")
	}
	assert.True(t, c.IsAuthenticated(), "cancelling the watcher must not clear the identity")
	require.NotNil(t, c.User())
	assert.Equal(t, u.ID, c.User().ID)
}
