package accessgin

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/open-rails/accesskit/session"
	"github.com/open-rails/accesskit/store"
	"github.com/open-rails/accesskit/voucher"
)

// HandleEntitlementsGET returns the current user's entitlement snapshot.
// While a load is in flight the response is 202 so clients can poll.
func HandleEntitlementsGET(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap := st.Snapshot()
		switch snap.State {
		case store.StateLoading:
			c.JSON(http.StatusAccepted, gin.H{"status": "pending"})
		case store.StateError:
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "entitlements_unavailable"})
		default:
			c.JSON(http.StatusOK, gin.H{"entitlements": snap.Entitlements})
		}
	}
}

// HandleVoucherRedeemPOST redeems a code for the authenticated caller and
// refreshes their entitlement collection so the new grant is visible as soon
// as the issuance job lands. Redemption attempts are rate limited per user
// to slow code guessing.
func HandleVoucherRedeemPOST(svc *voucher.Service, st *store.Store, rl RateLimiter) gin.HandlerFunc {
	type redeemRequest struct {
		Code string `json:"code" binding:"required"`
	}
	return func(c *gin.Context) {
		userID, ok := session.UserIDFromContext(c.Request.Context())
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication_required"})
			return
		}
		if rl != nil {
			allowed, err := rl.AllowNamed(RLVoucherRedeem, userID.String())
			if err != nil || !allowed {
				c.JSON(http.StatusTooManyRequests, gin.H{"error": "rate_limited"})
				return
			}
		}
		var req redeemRequest
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Code) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing_code"})
			return
		}
		grant, err := svc.Redeem(c.Request.Context(), userID, req.Code)
		if err != nil {
			switch {
			case errors.Is(err, voucher.ErrMalformedCode), errors.Is(err, voucher.ErrCodeMismatch):
				c.JSON(http.StatusNotFound, gin.H{"error": "invalid_code"})
			case errors.Is(err, voucher.ErrExhausted):
				c.JSON(http.StatusConflict, gin.H{"error": "code_exhausted"})
			case errors.Is(err, voucher.ErrExpired):
				c.JSON(http.StatusGone, gin.H{"error": "code_expired"})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "redeem_failed"})
			}
			return
		}
		_ = st.Load(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"ok": true, "scope": grant.Scope})
	}
}
