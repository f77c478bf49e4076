package entitlements

import "strings"

// Specificity tiers used by BestMatch. A concrete non-exact match outranks
// wildcards; "redvsblue:unlimited" ranks below plain wildcards because it is
// the broadest possible grant and should only be surfaced as "the reason you
// have access" when nothing narrower exists.
const (
	scoreExact     = 100
	scoreConcrete  = 50
	scoreWildcard  = 10
	scoreUnlimited = 5
)

// IsSatisfied reports whether required is covered by at least one active
// entitlement. An empty required scope means "no restriction" and is always
// satisfied, even by a nil collection.
func IsSatisfied(required Scope, list []Entitlement) bool {
	if required == "" {
		return true
	}
	for i := range list {
		if list[i].Active && Matches(required, list[i].Scope) {
			return true
		}
	}
	return false
}

// BestMatch returns the single active entitlement that most specifically
// explains why required is satisfied, or nil when none qualifies. Callers
// use it for display ("you currently have: X"), not for access decisions.
//
// Ties break toward the earliest entry in collection order, so repeated
// calls over the same slice are deterministic.
func BestMatch(required Scope, list []Entitlement) *Entitlement {
	var best *Entitlement
	bestScore := 0
	for i := range list {
		e := &list[i]
		if !e.Active || !Matches(required, e.Scope) {
			continue
		}
		if s := specificity(required, e.Scope); s > bestScore {
			best, bestScore = e, s
		}
	}
	return best
}

func specificity(required, owned Scope) int {
	switch {
	case owned == required:
		return scoreExact
	case owned == ScopeUnlimited:
		return scoreUnlimited
	case strings.ContainsRune(string(owned), '*'):
		return scoreWildcard
	}
	// Non-exact, non-wildcard, non-unlimited: no current matching rule
	// produces this, but future partial-match rules would land here.
	return scoreConcrete
}
