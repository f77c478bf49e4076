package voucher

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/open-rails/accesskit/entitlements"
)

// Store looks up and updates voucher rows.
type Store interface {
	// GetByPrefix returns the voucher with the given lookup prefix, or
	// nil when none exists.
	GetByPrefix(ctx context.Context, prefix string) (*Voucher, error)
	// MarkRedeemed increments the voucher's redemption count.
	MarkRedeemed(ctx context.Context, id uuid.UUID) error
}

// Issuer hands the resulting grant to the issuance pipeline. The grants
// package provides a queue-backed implementation.
type Issuer interface {
	IssueGrant(ctx context.Context, e entitlements.Entitlement) error
}

// Service validates presented codes and turns them into grants.
type Service struct {
	store  Store
	issuer Issuer
	log    logrus.FieldLogger
	now    func() time.Time
}

func NewService(store Store, issuer Issuer, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{store: store, issuer: issuer, log: log, now: time.Now}
}

// Redeem validates code for userID and, on success, issues the grant and
// records the redemption. An unknown prefix and a hash mismatch both return
// ErrCodeMismatch so callers cannot probe which prefixes exist.
func (s *Service) Redeem(ctx context.Context, userID uuid.UUID, code string) (entitlements.Entitlement, error) {
	prefix, err := LookupPrefix(code)
	if err != nil {
		return entitlements.Entitlement{}, err
	}
	v, err := s.store.GetByPrefix(ctx, prefix)
	if err != nil {
		return entitlements.Entitlement{}, err
	}
	if v == nil {
		return entitlements.Entitlement{}, ErrCodeMismatch
	}
	ok, err := VerifyCode(v.CodeHash, code)
	if err != nil {
		return entitlements.Entitlement{}, err
	}
	if !ok {
		return entitlements.Entitlement{}, ErrCodeMismatch
	}
	now := s.now()
	if err := v.Redeemable(now); err != nil {
		return entitlements.Entitlement{}, err
	}
	grant := v.Grant(userID, now)
	if err := s.issuer.IssueGrant(ctx, grant); err != nil {
		return entitlements.Entitlement{}, err
	}
	if err := s.store.MarkRedeemed(ctx, v.ID); err != nil {
		// The grant is already enqueued; log and report the bookkeeping
		// failure so operators can reconcile counts.
		s.log.WithError(err).WithField("voucher_id", v.ID).
			Warn("failed to record voucher redemption")
		return grant, err
	}
	s.log.WithFields(logrus.Fields{
		"voucher_id": v.ID,
		"user_id":    userID,
		"scope":      grant.Scope,
	}).Info("voucher redeemed")
	return grant, nil
}
