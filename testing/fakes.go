// Package testing provides fakes for applications (and this module's own
// tests) that exercise the store without a real database or auth backend.
//
// Example usage:
//
//	auth := testing.NewAuth(userID)
//	fetcher := testing.NewFetcher()
//	fetcher.SetEffective(userID, grants)
//
//	st := store.New(fetcher, auth, nil)
//	st.Start(ctx)
package testing

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/open-rails/accesskit/entitlements"
	"github.com/open-rails/accesskit/store"
)

// Auth is a scriptable store.AuthProvider. Events dispatch synchronously,
// so a SignIn followed by an assertion observes the resulting reload.
type Auth struct {
	mu     sync.Mutex
	userID uuid.UUID
	next   int
	subs   map[int]func(store.AuthEvent)
}

// NewAuth returns a provider signed in as userID (uuid.Nil = signed out).
func NewAuth(userID uuid.UUID) *Auth {
	return &Auth{userID: userID, subs: make(map[int]func(store.AuthEvent))}
}

func (a *Auth) CurrentUserID(_ context.Context) (uuid.UUID, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.userID, a.userID != uuid.Nil
}

func (a *Auth) Subscribe(fn func(store.AuthEvent)) func() {
	a.mu.Lock()
	id := a.next
	a.next++
	a.subs[id] = fn
	a.mu.Unlock()
	return func() {
		a.mu.Lock()
		delete(a.subs, id)
		a.mu.Unlock()
	}
}

// SignIn switches the current identity and notifies subscribers.
func (a *Auth) SignIn(userID uuid.UUID) {
	a.mu.Lock()
	a.userID = userID
	fns := subscribers(a.subs)
	a.mu.Unlock()
	for _, fn := range fns {
		fn(store.AuthEvent{UserID: userID, SignedIn: userID != uuid.Nil})
	}
}

// SignOut clears the current identity and notifies subscribers.
func (a *Auth) SignOut() { a.SignIn(uuid.Nil) }

func subscribers(m map[int]func(store.AuthEvent)) []func(store.AuthEvent) {
	out := make([]func(store.AuthEvent), 0, len(m))
	for _, fn := range m {
		out = append(out, fn)
	}
	return out
}

// Fetcher is a scriptable store.Fetcher. Each read shape can be given data
// or an error per user; call counters let tests assert fallback sequencing.
type Fetcher struct {
	mu sync.Mutex

	effective map[uuid.UUID][]entitlements.Entitlement
	base      map[uuid.UUID][]entitlements.Entitlement

	EffectiveErr error
	BaseErr      error

	EffectiveCalls int
	BaseCalls      int
}

func NewFetcher() *Fetcher {
	return &Fetcher{
		effective: make(map[uuid.UUID][]entitlements.Entitlement),
		base:      make(map[uuid.UUID][]entitlements.Entitlement),
	}
}

// SetEffective scripts the primary read for one user.
func (f *Fetcher) SetEffective(userID uuid.UUID, list []entitlements.Entitlement) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.effective[userID] = list
}

// SetBase scripts the fallback read for one user.
func (f *Fetcher) SetBase(userID uuid.UUID, list []entitlements.Entitlement) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.base[userID] = list
}

func (f *Fetcher) FetchEffective(_ context.Context, userID uuid.UUID) ([]entitlements.Entitlement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.EffectiveCalls++
	if f.EffectiveErr != nil {
		return nil, f.EffectiveErr
	}
	return f.effective[userID], nil
}

func (f *Fetcher) FetchBase(_ context.Context, userID uuid.UUID) ([]entitlements.Entitlement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.BaseCalls++
	if f.BaseErr != nil {
		return nil, f.BaseErr
	}
	return f.base[userID], nil
}
