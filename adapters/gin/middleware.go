// Package accessgin exposes the kit over gin: an identity-resolving
// middleware, a scope gate for protected routes, and the entitlement/voucher
// handlers.
package accessgin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/open-rails/accesskit/entitlements"
	"github.com/open-rails/accesskit/gate"
	"github.com/open-rails/accesskit/session"
	"github.com/open-rails/accesskit/store"
)

// RateLimiter matches the limiter packages' AllowNamed shape. A nil limiter
// disables limiting.
type RateLimiter interface {
	AllowNamed(bucket, key string) (bool, error)
}

// Rate-limit bucket names used by the handlers.
const (
	RLVoucherRedeem = "voucher_redeem"
)

// Identify resolves the current user through the auth provider and stashes
// the id in the request context for downstream handlers. Unauthenticated
// requests pass through unchanged.
func Identify(auth store.AuthProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id, ok := auth.CurrentUserID(c.Request.Context()); ok {
			c.Request = c.Request.WithContext(session.WithUserID(c.Request.Context(), id))
		}
		c.Next()
	}
}

// RequireScope gates a route on an access scope. A pending store yields 202
// so clients can retry instead of rendering a denial; a denial carries the
// best related grant (if any) for upsell messaging.
func RequireScope(g *gate.Gate, required entitlements.Scope) gin.HandlerFunc {
	return func(c *gin.Context) {
		d := g.CheckAccess(required)
		switch d.Status {
		case gate.Pending:
			c.AbortWithStatusJSON(http.StatusAccepted, gin.H{"status": "pending"})
		case gate.Denied:
			body := gin.H{"error": "entitlement_required", "required": required}
			if d.BestMatch != nil {
				body["current"] = d.BestMatch.Scope
			}
			c.AbortWithStatusJSON(http.StatusForbidden, body)
		default:
			c.Next()
		}
	}
}
