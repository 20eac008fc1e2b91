// Package identity keeps the signed-in user's profile on the client and keeps it
// consistent with the remote auth subsystem.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/Aditya2073/agrisample/internal/profile"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

// StorageKey is where the cached profile lives in Storage.
const StorageKey = "auth-storage"

type EventKind string

const (
	EventSignedIn  EventKind = "signed_in"
	EventSignedOut EventKind = "signed_out"
)

type Event struct {
	Kind   EventKind
	UserID uuid.UUID
}

type SessionInfo struct {
	UserID uuid.UUID
}

// Remote is the auth side of the remote data store.
type Remote interface {
	// CurrentSession returns nil and no error when there is no active session.
	CurrentSession(ctx context.Context) (*SessionInfo, error)
	// FetchProfile returns profile.ErrNotFound when no profile matches.
	FetchProfile(ctx context.Context, id uuid.UUID) (*profile.Profile, error)
	SignOut(ctx context.Context) error
	// Subscribe delivers auth change events until the returned cancel is called.
	Subscribe() (<-chan Event, func())
}

type persisted struct {
	User *profile.Profile `json:"user"`
}

// Cache holds at most one authenticated identity.
type Cache struct {
	remote  Remote
	storage Storage

	mu          sync.RWMutex
	user        *profile.Profile
	initialized bool

	// generation orders Initialize and SetUser calls; applied is the newest one
	// whose result is visible.
	genMu      sync.Mutex
	generation uint64
	applied    uint64
}

// New rehydrates the cache from storage. A persisted profile is provisional:
// it is visible through User but IsAuthenticated stays false until Initialize.
func New(ctx context.Context, remote Remote, storage Storage) *Cache {
	c := &Cache{remote: remote, storage: storage}

	raw, err := storage.Get(ctx, StorageKey)
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		log.Warn().Err(err).Msg("identity: failed to read persisted identity")
	default:
		var p persisted
		if err := json.Unmarshal(raw, &p); err != nil {
			log.Warn().Err(err).Msg("identity: discarding unreadable persisted identity")
		} else {
			c.user = p.User
		}
	}
	return c
}

func (c *Cache) User() *profile.Profile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.user == nil {
		return nil
	}
	u := *c.user
	return &u
}

// IsAuthenticated is true only for a profile revalidated by Initialize or set by SetUser.
func (c *Cache) IsAuthenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.initialized && c.user != nil
}

func (c *Cache) Initialized() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.initialized
}

func (c *Cache) next() uint64 {
	c.genMu.Lock()
	defer c.genMu.Unlock()
	c.generation++
	return c.generation
}

// SetUser replaces the cached identity and persists it.
func (c *Cache) SetUser(ctx context.Context, p *profile.Profile) {
	c.apply(ctx, c.next(), p)
}

// Initialize revalidates the identity against the remote store. Any failure leaves
// the cache unauthenticated. When calls overlap, the one started last wins.
func (c *Cache) Initialize(ctx context.Context) {
	c.initialize(ctx, false)
}

// initialize with keepOnCancel set leaves the cache untouched when ctx ends mid-flight,
// so shutting down a watcher does not sign the user out.
func (c *Cache) initialize(ctx context.Context, keepOnCancel bool) {
	gen := c.next()

	user, err := c.resolve(ctx)
	if keepOnCancel && ctx.Err() != nil {
		log.Debug().Uint64("generation", gen).Msg("identity: watcher stopped during initialization, keeping identity")
		return
	}
	if err != nil {
		log.Warn().Err(err).Uint64("generation", gen).Msg("identity: initialization failed, treating as signed out")
		user = nil
	}
	c.apply(ctx, gen, user)
}

func (c *Cache) resolve(ctx context.Context) (*profile.Profile, error) {
	sess, err := c.remote.CurrentSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("identity: session lookup: %w", err)
	}
	if sess == nil {
		return nil, nil
	}

	p, err := c.remote.FetchProfile(ctx, sess.UserID)
	if errors.Is(err, profile.ErrNotFound) {
		// сессия без профиля считается повреждённой
		log.Warn().Stringer("user_id", sess.UserID).Msg("identity: session has no profile, signing out")
		if err := c.remote.SignOut(ctx); err != nil {
			log.Error().Err(err).Msg("identity: forced sign-out failed")
		}
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("identity: fetch profile: %w", err)
	}
	return p, nil
}

func (c *Cache) apply(ctx context.Context, gen uint64, user *profile.Profile) {
	c.genMu.Lock()
	if gen < c.applied {
		c.genMu.Unlock()
		log.Debug().Uint64("generation", gen).Uint64("applied", c.applied).Msg("identity: dropping stale result")
		return
	}
	c.applied = gen

	c.mu.Lock()
	c.user = user
	c.initialized = true
	c.mu.Unlock()

	// Запись под genMu, чтобы порядок в хранилище совпадал с порядком поколений.
	c.persist(ctx, user)
	c.genMu.Unlock()
}

func (c *Cache) persist(ctx context.Context, user *profile.Profile) {
	raw, err := json.Marshal(persisted{User: user})
	if err != nil {
		log.Error().Err(err).Msg("identity: failed to encode identity")
		return
	}
	if err := c.storage.Set(ctx, StorageKey, raw); err != nil {
		log.Error().Err(err).Msg("identity: failed to persist identity")
	}
}

// Watch re-initializes on every auth event until ctx is done or the
// subscription closes.
func (c *Cache) Watch(ctx context.Context) {
	events, cancel := c.remote.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			log.Debug().Str("event", string(ev.Kind)).Stringer("user_id", ev.UserID).Msg("identity: auth event")
			c.initialize(ctx, true)
		}
	}
}
