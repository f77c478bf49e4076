// Package pgstore provides the Postgres-backed entitlement reads.
package pgstore

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/open-rails/accesskit/entitlements"
)

// Fetcher reads entitlement rows from the platform schema. It implements
// store.Fetcher: the primary read targets the effective_entitlements view,
// the fallback reads the base table directly. Deployments without the view
// surface an undefined-relation error on the primary path, which is the
// expected trigger for the fallback.
type Fetcher struct {
	pg     *pgxpool.Pool
	schema string
}

func NewFetcher(pg *pgxpool.Pool, schema string) *Fetcher {
	s := strings.TrimSpace(schema)
	if s == "" {
		s = "access"
	}
	return &Fetcher{pg: pg, schema: s}
}

func (f *Fetcher) effectiveView() string { return f.schema + ".effective_entitlements" }
func (f *Fetcher) baseTable() string     { return f.schema + ".entitlements" }

// FetchEffective reads the resolved entitlement projection for one user.
func (f *Fetcher) FetchEffective(ctx context.Context, userID uuid.UUID) ([]entitlements.Entitlement, error) {
	return f.fetch(ctx, f.effectiveView(), userID)
}

// FetchBase reads the raw entitlement table for one user.
func (f *Fetcher) FetchBase(ctx context.Context, userID uuid.UUID) ([]entitlements.Entitlement, error) {
	return f.fetch(ctx, f.baseTable(), userID)
}

func (f *Fetcher) fetch(ctx context.Context, rel string, userID uuid.UUID) ([]entitlements.Entitlement, error) {
	if f.pg == nil || userID == uuid.Nil {
		return nil, nil
	}
	rows, err := f.pg.Query(ctx,
		`SELECT id, user_id, scope, source, active, starts_at, ends_at FROM `+rel+` WHERE user_id=$1`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []entitlements.Entitlement
	for rows.Next() {
		var e entitlements.Entitlement
		if err := rows.Scan(&e.ID, &e.UserID, &e.Scope, &e.Source, &e.Active, &e.StartsAt, &e.EndsAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
