package grants

import (
	"context"

	"github.com/open-rails/accesskit/entitlements"
)

// AuditLogger records issued grants to an external sink (e.g., ClickHouse).
// Implementations should be non-blocking and best-effort.
type AuditLogger interface {
	LogGrant(ctx context.Context, e entitlements.Entitlement) error
}
