// Package gate is the reusable access decision point the rest of the
// application consults before exposing protected content. It is the only
// place the store and the resolver are composed.
package gate

import (
	"context"

	"github.com/open-rails/accesskit/entitlements"
	"github.com/open-rails/accesskit/store"
)

// Status is the outcome of an access check. Pending is distinct from Denied
// so callers can show a waiting indicator instead of flashing a denial while
// the first load is in flight.
type Status int

const (
	Pending Status = iota
	Allowed
	Denied
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Allowed:
		return "allowed"
	case Denied:
		return "denied"
	}
	return "unknown"
}

// Decision is the result of CheckAccess. BestMatch is populated only on
// Denied, when the user holds some related grant worth mentioning in upsell
// messaging; it is informational and never flips the decision.
type Decision struct {
	Status    Status
	BestMatch *entitlements.Entitlement
}

// Gate evaluates required scopes against a Store's current collection.
type Gate struct {
	store *store.Store
}

func New(st *store.Store) *Gate {
	return &Gate{store: st}
}

// CheckAccess decides whether the current user may access content guarded by
// required. While the store is loading the decision is Pending. A failed
// load left the collection empty, so every non-empty requirement is Denied
// (fail closed) and the empty requirement stays Allowed.
func (g *Gate) CheckAccess(required entitlements.Scope) Decision {
	snap := g.store.Snapshot()
	if snap.State == store.StateLoading {
		return Decision{Status: Pending}
	}
	if entitlements.IsSatisfied(required, snap.Entitlements) {
		return Decision{Status: Allowed}
	}
	return Decision{
		Status:    Denied,
		BestMatch: entitlements.BestMatch(required, snap.Entitlements),
	}
}

// Refresh re-runs the store's load, e.g. after a voucher redemption or plan
// purchase completes. Subsequent CheckAccess calls see the new collection.
func (g *Gate) Refresh(ctx context.Context) error {
	return g.store.Load(ctx)
}
