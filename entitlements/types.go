// Package entitlements holds the access-grant data model and the pure
// scope-matching and resolution rules built on top of it. Nothing in this
// package performs IO; fetching and lifecycle live in the store package.
package entitlements

import (
	"time"

	"github.com/google/uuid"
)

// Scope is a colon-delimited hierarchical access token, e.g.
// "challenge_pack:intro", "cert:*", "redvsblue:unlimited". Scopes are
// case-sensitive and compared without any normalization.
type Scope string

// Source records where a grant came from. Informational only; matching
// ignores it.
type Source string

const (
	SourceSubscription Source = "subscription"
	SourceVoucher      Source = "voucher"
	SourceGrant        Source = "grant"
)

// Entitlement is one access grant owned by exactly one user.
//
// Active is the sole authoritative eligibility gate: an inactive
// entitlement never satisfies anything, regardless of scope or window.
// StartsAt/EndsAt are carried for display and for the expiry sweeper that
// maintains Active; the matching path does not re-check them.
type Entitlement struct {
	ID       uuid.UUID  `json:"id"`
	UserID   uuid.UUID  `json:"user_id"`
	Scope    Scope      `json:"scope"`
	Source   Source     `json:"source,omitempty"`
	Active   bool       `json:"active"`
	StartsAt *time.Time `json:"starts_at,omitempty"`
	EndsAt   *time.Time `json:"ends_at,omitempty"`
}
