// Package store owns the session-scoped entitlement collection for "the
// current user" and its refresh lifecycle. It is the only component that
// writes the collection; the resolver functions in the entitlements package
// borrow it read-only per call.
package store

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/open-rails/accesskit/entitlements"
)

// AuthEvent describes an ambient authentication change: sign-in, sign-out,
// or a token refresh that changed the effective identity.
type AuthEvent struct {
	UserID   uuid.UUID
	SignedIn bool
}

// AuthProvider supplies the current identity and change notifications.
// Implementations live in the session package or with the host application.
type AuthProvider interface {
	// CurrentUserID returns the authenticated user, or false when nobody
	// is signed in.
	CurrentUserID(ctx context.Context) (uuid.UUID, bool)
	// Subscribe registers fn for auth changes and returns an unsubscribe
	// function. Implementations must tolerate unsubscribe being called
	// more than once.
	Subscribe(fn func(AuthEvent)) (unsubscribe func())
}

// Fetcher reads a user's entitlements from the backing store.
//
// FetchEffective is the primary shape: a resolved "effective entitlements"
// projection. FetchBase reads the raw entitlement table and is attempted
// only after FetchEffective reports an error (deployments without the
// effective view are the expected failure mode, not an anomaly).
type Fetcher interface {
	FetchEffective(ctx context.Context, userID uuid.UUID) ([]entitlements.Entitlement, error)
	FetchBase(ctx context.Context, userID uuid.UUID) ([]entitlements.Entitlement, error)
}

// State distinguishes "still loading", "loaded" and "load failed" so callers
// never collapse them into a single boolean.
type State int

const (
	StateLoading State = iota
	StateReady
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	}
	return "unknown"
}

// Snapshot is a point-in-time view of the held collection. Err is set only
// when State is StateError; the collection is always empty in that case so
// every scope check fails closed.
type Snapshot struct {
	Entitlements []entitlements.Entitlement
	State        State
	Err          error
}

// Store holds the current user's entitlement collection and refreshes it on
// demand and on auth-state change. All dependencies are injected; the Store
// never reaches into process-wide state.
type Store struct {
	fetcher Fetcher
	auth    AuthProvider
	log     logrus.FieldLogger

	mu   sync.Mutex
	snap Snapshot
	// gen counts issued loads; a completion whose generation is no longer
	// current is dropped, so the last-issued load always wins.
	gen         uint64
	unsubscribe func()
}

// New builds a Store. A nil logger falls back to the logrus standard logger.
func New(fetcher Fetcher, auth AuthProvider, log logrus.FieldLogger) *Store {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Store{fetcher: fetcher, auth: auth, log: log}
}

// Start subscribes to auth-state changes and performs the initial load.
// Auth events re-run Load with the context given here. Call Close to tear
// the subscription down.
func (s *Store) Start(ctx context.Context) {
	s.unsubscribe = s.auth.Subscribe(func(AuthEvent) {
		_ = s.Load(ctx)
	})
	_ = s.Load(ctx)
}

// Close removes the auth subscription. The held collection stays readable.
func (s *Store) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}

// Load replaces the held collection with a freshly fetched one. It is safe
// to call repeatedly and concurrently; when calls overlap, the collection
// visible after all of them settle is the last-issued call's result.
//
// No authenticated user yields an empty, ready collection. A primary fetch
// error triggers the fallback exactly once, and the fallback's outcome is
// final. When both fail the collection becomes empty, the error is recorded
// on the snapshot, and the same error is returned for convenience.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.snap.State = StateLoading
	s.snap.Err = nil
	s.mu.Unlock()

	userID, ok := s.auth.CurrentUserID(ctx)
	if !ok {
		s.commit(gen, Snapshot{State: StateReady})
		return nil
	}

	list, err := s.fetcher.FetchEffective(ctx, userID)
	if err != nil {
		s.log.WithError(err).WithField("user_id", userID).
			Debug("effective entitlement fetch failed, falling back to base table")
		list, err = s.fetcher.FetchBase(ctx, userID)
	}
	if err != nil {
		s.log.WithError(err).WithField("user_id", userID).
			Warn("entitlement load failed")
		s.commit(gen, Snapshot{State: StateError, Err: err})
		return err
	}
	s.commit(gen, Snapshot{Entitlements: list, State: StateReady})
	return nil
}

// commit installs a load result unless a newer load was issued meanwhile.
func (s *Store) commit(gen uint64, snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}
	s.snap = snap
}

// Snapshot returns a copy of the current state. The returned slice is the
// caller's to keep.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.snap
	out.Entitlements = append([]entitlements.Entitlement(nil), s.snap.Entitlements...)
	return out
}

// HasEntitlement reports whether the currently held collection satisfies
// scope. Until a load has landed (and whenever the last load failed) only
// the empty scope is satisfied.
func (s *Store) HasEntitlement(scope entitlements.Scope) bool {
	snap := s.Snapshot()
	if snap.State != StateReady {
		return entitlements.IsSatisfied(scope, nil)
	}
	return entitlements.IsSatisfied(scope, snap.Entitlements)
}
