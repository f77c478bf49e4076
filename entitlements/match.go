package entitlements

import "strings"

// Well-known scopes and prefixes recognized by the wildcard rules.
const (
	ScopeCertAll   Scope = "cert:*"
	ScopeOpsAll    Scope = "redvsblue:ops:*"
	ScopeUnlimited Scope = "redvsblue:unlimited"

	prefixCert   = "cert:"
	prefixOp     = "redvsblue:op:"
	prefixSeason = "redvsblue:season:"
	prefixRvB    = "redvsblue:"
)

// Matches reports whether one owned scope satisfies one required scope.
//
// Beyond exact equality, only three owned scopes grant anything broader:
// "cert:*" covers every cert:<id>, "redvsblue:ops:*" covers operations and
// seasons, and "redvsblue:unlimited" covers the whole redvsblue namespace.
// Any other pair of scopes is unrelated; there is no substring search, case
// folding, or trimming.
func Matches(required, owned Scope) bool {
	if required == owned {
		return true
	}
	switch owned {
	case ScopeCertAll:
		return strings.HasPrefix(string(required), prefixCert)
	case ScopeOpsAll:
		return strings.HasPrefix(string(required), prefixOp) ||
			strings.HasPrefix(string(required), prefixSeason)
	case ScopeUnlimited:
		return strings.HasPrefix(string(required), prefixRvB)
	}
	return false
}
