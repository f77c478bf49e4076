package pgstore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/open-rails/accesskit/voucher"
)

// VoucherStore implements voucher.Store over the platform schema.
type VoucherStore struct {
	pg     *pgxpool.Pool
	schema string
}

func NewVoucherStore(pg *pgxpool.Pool, schema string) *VoucherStore {
	s := schema
	if s == "" {
		s = "access"
	}
	return &VoucherStore{pg: pg, schema: s}
}

func (s *VoucherStore) table() string { return s.schema + ".vouchers" }

func (s *VoucherStore) GetByPrefix(ctx context.Context, prefix string) (*voucher.Voucher, error) {
	if s.pg == nil || prefix == "" {
		return nil, nil
	}
	var v voucher.Voucher
	var grantSeconds int64
	err := s.pg.QueryRow(ctx,
		`SELECT id, code_prefix, code_hash, scope, grant_seconds, max_redemptions, redeemed, expires_at, created_at
		 FROM `+s.table()+` WHERE code_prefix=$1 LIMIT 1`, prefix).
		Scan(&v.ID, &v.CodePrefix, &v.CodeHash, &v.Scope, &grantSeconds,
			&v.MaxRedemptions, &v.Redeemed, &v.ExpiresAt, &v.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	v.GrantFor = time.Duration(grantSeconds) * time.Second
	return &v, nil
}

func (s *VoucherStore) MarkRedeemed(ctx context.Context, id uuid.UUID) error {
	if s.pg == nil || id == uuid.Nil {
		return nil
	}
	_, err := s.pg.Exec(ctx,
		`UPDATE `+s.table()+` SET redeemed = redeemed + 1 WHERE id=$1`, id)
	return err
}

// Create persists a new voucher row. Used by admin tooling; the redemption
// path never writes vouchers.
func (s *VoucherStore) Create(ctx context.Context, v voucher.Voucher) error {
	if s.pg == nil {
		return nil
	}
	_, err := s.pg.Exec(ctx,
		`INSERT INTO `+s.table()+` (id, code_prefix, code_hash, scope, grant_seconds, max_redemptions, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		v.ID, v.CodePrefix, v.CodeHash, v.Scope, int64(v.GrantFor/time.Second),
		v.MaxRedemptions, v.ExpiresAt)
	return err
}
