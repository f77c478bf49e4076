package entitlements

import (
	"testing"

	"github.com/google/uuid"
)

func grant(scope Scope, active bool) Entitlement {
	return Entitlement{ID: uuid.New(), Scope: scope, Active: active}
}

func TestIsSatisfiedEmptyRequirement(t *testing.T) {
	if !IsSatisfied("", nil) {
		t.Error("empty requirement should be satisfied by a nil collection")
	}
	if !IsSatisfied("", []Entitlement{}) {
		t.Error("empty requirement should be satisfied by an empty collection")
	}
	if !IsSatisfied("", []Entitlement{grant("app", false)}) {
		t.Error("empty requirement should be satisfied regardless of contents")
	}
}

func TestIsSatisfiedEmptyCollection(t *testing.T) {
	if IsSatisfied("app", nil) {
		t.Error("nil collection should not satisfy a requirement")
	}
	if IsSatisfied("app", []Entitlement{}) {
		t.Error("empty collection should not satisfy a requirement")
	}
}

func TestIsSatisfiedExcludesInactive(t *testing.T) {
	list := []Entitlement{grant("challenge_pack:intro", false)}
	if IsSatisfied("challenge_pack:intro", list) {
		t.Error("inactive entitlement must not satisfy even with a matching scope")
	}
	list = append(list, grant("challenge_pack:intro", true))
	if !IsSatisfied("challenge_pack:intro", list) {
		t.Error("active matching entitlement should satisfy")
	}
}

func TestIsSatisfiedThroughWildcard(t *testing.T) {
	list := []Entitlement{grant("cert:*", true)}
	if !IsSatisfied("cert:oscp", list) {
		t.Error("cert:* should satisfy cert:oscp")
	}
	if IsSatisfied("challenges:all", list) {
		t.Error("cert:* should not satisfy challenges:all")
	}
}

func TestBestMatchPrefersNarrowerWildcard(t *testing.T) {
	list := []Entitlement{
		grant(ScopeUnlimited, true),
		grant(ScopeOpsAll, true),
	}
	got := BestMatch("redvsblue:op:alpha", list)
	if got == nil {
		t.Fatal("expected a best match")
	}
	if got.Scope != ScopeOpsAll {
		t.Errorf("best match = %q, want %q (unlimited is the broadest grant and ranks last)", got.Scope, ScopeOpsAll)
	}
}

func TestBestMatchExactBeatsWildcard(t *testing.T) {
	list := []Entitlement{
		grant("cert:pentest+", true),
		grant("cert:*", true),
	}
	got := BestMatch("cert:pentest+", list)
	if got == nil {
		t.Fatal("expected a best match")
	}
	if got.Scope != "cert:pentest+" {
		t.Errorf("best match = %q, want the exact scope", got.Scope)
	}
}

func TestBestMatchExcludesInactiveAndUnrelated(t *testing.T) {
	list := []Entitlement{
		grant("cert:*", false),
		grant("challenges:all", true),
	}
	if got := BestMatch("cert:oscp", list); got != nil {
		t.Errorf("best match = %q, want none", got.Scope)
	}
}

func TestBestMatchTieBreaksOnCollectionOrder(t *testing.T) {
	first := grant("cert:*", true)
	second := grant("cert:*", true)
	list := []Entitlement{first, second}
	got := BestMatch("cert:oscp", list)
	if got == nil {
		t.Fatal("expected a best match")
	}
	if got.ID != first.ID {
		t.Error("equal scores should keep the first-seen entitlement")
	}
}

func TestBestMatchDeterministic(t *testing.T) {
	list := []Entitlement{
		grant(ScopeUnlimited, true),
		grant(ScopeOpsAll, true),
		grant("redvsblue:op:alpha", true),
	}
	want := BestMatch("redvsblue:op:alpha", list)
	for i := 0; i < 10; i++ {
		if got := BestMatch("redvsblue:op:alpha", list); got.ID != want.ID {
			t.Fatal("repeated calls over the same collection must return the same entitlement")
		}
	}
	if want.Scope != "redvsblue:op:alpha" {
		t.Errorf("best match = %q, want the exact scope", want.Scope)
	}
}
