// Package memorystore provides an in-memory store.Fetcher for tests and
// single-binary deployments that configure grants statically.
package memorystore

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/open-rails/accesskit/entitlements"
)

// Fetcher serves entitlement lists from memory. Both read shapes return the
// same data; there is no effective/base distinction without a database.
type Fetcher struct {
	mu     sync.Mutex
	byUser map[uuid.UUID][]entitlements.Entitlement
}

func NewFetcher() *Fetcher {
	return &Fetcher{byUser: make(map[uuid.UUID][]entitlements.Entitlement)}
}

// Set replaces the stored list for one user.
func (f *Fetcher) Set(userID uuid.UUID, list []entitlements.Entitlement) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byUser[userID] = append([]entitlements.Entitlement(nil), list...)
}

// Add appends one entitlement to a user's list.
func (f *Fetcher) Add(e entitlements.Entitlement) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byUser[e.UserID] = append(f.byUser[e.UserID], e)
}

func (f *Fetcher) FetchEffective(_ context.Context, userID uuid.UUID) ([]entitlements.Entitlement, error) {
	return f.get(userID), nil
}

func (f *Fetcher) FetchBase(_ context.Context, userID uuid.UUID) ([]entitlements.Entitlement, error) {
	return f.get(userID), nil
}

func (f *Fetcher) get(userID uuid.UUID) []entitlements.Entitlement {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]entitlements.Entitlement(nil), f.byUser[userID]...)
}
