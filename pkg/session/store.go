// Package session is the single source of truth for who is logged in.
//
// The Store keeps the user and bearer token in memory and mirrors them to a
// kvstore.Store under two keys, auth_token and auth_user (JSON), so a later
// process can Restore them without a new login.
//
//	kv, _ := kvstore.Open(ctx)
//	sess := session.NewStore(kv)
//	sess.Restore(ctx)
//	if !sess.IsAuthenticated() { ... prompt for login ... }
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/shashiranjanraj/vendordesk/app/models"
	"github.com/shashiranjanraj/vendordesk/pkg/event"
	"github.com/shashiranjanraj/vendordesk/pkg/kvstore"
	"github.com/shashiranjanraj/vendordesk/pkg/logger"
)

// Storage keys of the persisted mirror.
const (
	TokenKey = "auth_token"
	UserKey  = "auth_user"
)

// Events fired on the store's bus after each successful transition. The
// payload is the new State.
const (
	EventRestored = "session.restored"
	EventSet      = "session.set"
	EventCleared  = "session.cleared"
)

// ErrInvalidSession is returned by SetAndPersist for an empty token or a
// user that fails validation.
var ErrInvalidSession = errors.New("session: invalid user or token")

// Store holds the current session. All methods are safe for concurrent use.
type Store struct {
	kv  kvstore.Store
	bus *event.Bus

	// opMu serialises the persisting operations so two writers never
	// interleave their key writes.
	opMu sync.Mutex

	mu    sync.RWMutex
	state State
}

// Option configures a Store.
type Option func(*Store)

// WithBus shares an existing event bus.
func WithBus(b *event.Bus) Option { return func(s *Store) { s.bus = b } }

// NewStore returns an empty, unauthenticated store over kv.
func NewStore(kv kvstore.Store, opts ...Option) *Store {
	s := &Store{kv: kv}
	for _, o := range opts {
		o(s)
	}
	if s.bus == nil {
		s.bus = event.New()
	}
	return s
}

// ─── Reads ───────────────────────────────────────────────────────────────────

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.state
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	return st
}

func (s *Store) IsAuthenticated() bool { return s.Snapshot().IsAuthenticated() }

// User returns a copy of the session user, or nil.
func (s *Store) User() *models.User { return s.Snapshot().User }

// Token returns the current bearer token, or "". It satisfies
// http.TokenSource, so every request reads the token as it is built.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Token
}

func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.IsLoading
}

// ─── Lifecycle ───────────────────────────────────────────────────────────────

// Restore loads the persisted session. It never fails: a missing, corrupt
// or unreadable mirror leaves the store unauthenticated. IsLoading is true
// while Restore runs.
func (s *Store) Restore(ctx context.Context) State {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.StartLoading()
	log := logger.WithCtx(ctx)

	token := s.read(ctx, TokenKey)
	user := s.read(ctx, UserKey)
	next := reduceRestore(token, user)
	if !next.IsAuthenticated() && (token != "" || user != "") {
		log.Warn("session: persisted session is incomplete or malformed, ignoring it")
	}

	s.mu.Lock()
	s.state = reduceLoading(next, false)
	s.mu.Unlock()

	snap := s.Snapshot()
	s.bus.Fire(EventRestored, snap)
	return snap
}

func (s *Store) read(ctx context.Context, key string) string {
	v, err := s.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			logger.WithCtx(ctx).Warn("session: storage read failed", "key", key, "error", err)
		}
		return ""
	}
	return v
}

// SetAndPersist stores user and token and then makes them the current
// session. If either write fails the previous mirror is put back (best
// effort), the in-memory session is untouched and the error is returned.
func (s *Store) SetAndPersist(ctx context.Context, user *models.User, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("%w: empty token", ErrInvalidSession)
	}
	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("session: encode user: %w", err)
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	prev := s.Snapshot()

	if err := s.kv.Set(ctx, TokenKey, token); err != nil {
		s.rollback(ctx, prev)
		return fmt.Errorf("session: persist token: %w", err)
	}
	if err := s.kv.Set(ctx, UserKey, string(raw)); err != nil {
		s.rollback(ctx, prev)
		return fmt.Errorf("session: persist user: %w", err)
	}

	s.mu.Lock()
	s.state = reduceSet(s.state, user, token)
	s.mu.Unlock()

	s.bus.Fire(EventSet, s.Snapshot())
	return nil
}

// rollback rewrites the mirror of prev, the last state known to be
// persisted.
func (s *Store) rollback(ctx context.Context, prev State) {
	log := logger.WithCtx(ctx)

	if !prev.IsAuthenticated() {
		for _, k := range []string{TokenKey, UserKey} {
			if err := s.kv.Delete(ctx, k); err != nil {
				log.Error("session: rollback failed", "key", k, "error", err)
			}
		}
		return
	}

	raw, _ := json.Marshal(prev.User)
	if err := s.kv.Set(ctx, TokenKey, prev.Token); err != nil {
		log.Error("session: rollback failed", "key", TokenKey, "error", err)
	}
	if err := s.kv.Set(ctx, UserKey, string(raw)); err != nil {
		log.Error("session: rollback failed", "key", UserKey, "error", err)
	}
}

// ClearAndPersist removes the mirror and then the in-memory session.
// Clearing an empty session succeeds. On a storage error the in-memory
// session is kept and keys already removed are written back.
func (s *Store) ClearAndPersist(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	prev := s.Snapshot()
	for _, k := range []string{TokenKey, UserKey} {
		if err := s.kv.Delete(ctx, k); err != nil {
			s.rollback(ctx, prev)
			return fmt.Errorf("session: remove %s: %w", k, err)
		}
	}

	s.mu.Lock()
	s.state = reduceClear(s.state)
	s.mu.Unlock()

	s.bus.Fire(EventCleared, s.Snapshot())
	return nil
}

// StartLoading marks a session-affecting operation as in progress.
func (s *Store) StartLoading() {
	s.mu.Lock()
	s.state = reduceLoading(s.state, true)
	s.mu.Unlock()
}

// StopLoading clears the loading marker.
func (s *Store) StopLoading() {
	s.mu.Lock()
	s.state = reduceLoading(s.state, false)
	s.mu.Unlock()
}

// ─── Listeners ───────────────────────────────────────────────────────────────

// Subscribe calls fn with the new State after every successful restore, set
// or clear. The returned function removes the listener.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	h := func(p interface{}) {
		if st, ok := p.(State); ok {
			fn(st)
		}
	}
	offs := []func(){
		s.bus.Listen(EventRestored, h),
		s.bus.Listen(EventSet, h),
		s.bus.Listen(EventCleared, h),
	}
	return func() {
		for _, off := range offs {
			off()
		}
	}
}

// OnCleared calls fn after every successful logout.
func (s *Store) OnCleared(fn func()) (unsubscribe func()) {
	return s.bus.Listen(EventCleared, func(interface{}) { fn() })
}
