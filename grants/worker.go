// Package grants is the issuance side of the entitlement pipeline: purchase
// webhooks and voucher redemptions enqueue a job here instead of writing
// entitlement rows inline on the request path. The read-side packages never
// write; this is the only producer in the module.
package grants

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/sirupsen/logrus"

	"github.com/open-rails/accesskit/entitlements"
)

// IssueArgs is the job payload for inserting one entitlement row.
type IssueArgs struct {
	GrantID  uuid.UUID           `json:"grant_id"`
	UserID   uuid.UUID           `json:"user_id"`
	Scope    entitlements.Scope  `json:"scope"`
	Source   entitlements.Source `json:"source"`
	StartsAt *time.Time          `json:"starts_at,omitempty"`
	EndsAt   *time.Time          `json:"ends_at,omitempty"`
}

func (IssueArgs) Kind() string { return "entitlement_issue" }

// IssueWorker inserts the entitlement row for one grant. The insert is
// keyed on the grant id so job retries are idempotent.
type IssueWorker struct {
	river.WorkerDefaults[IssueArgs]
	pg     *pgxpool.Pool
	schema string
	audit  AuditLogger
	log    logrus.FieldLogger
}

// NewIssueWorker builds the worker. audit may be nil; a nil logger falls
// back to the logrus standard logger.
func NewIssueWorker(pg *pgxpool.Pool, schema string, audit AuditLogger, log logrus.FieldLogger) *IssueWorker {
	if schema == "" {
		schema = "access"
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &IssueWorker{pg: pg, schema: schema, audit: audit, log: log}
}

func (w *IssueWorker) Work(ctx context.Context, job *river.Job[IssueArgs]) error {
	a := job.Args
	_, err := w.pg.Exec(ctx,
		`INSERT INTO `+w.schema+`.entitlements (id, user_id, scope, source, active, starts_at, ends_at)
		 VALUES ($1, $2, $3, $4, true, $5, $6)
		 ON CONFLICT (id) DO NOTHING`,
		a.GrantID, a.UserID, a.Scope, a.Source, a.StartsAt, a.EndsAt)
	if err != nil {
		return err
	}
	if w.audit != nil {
		_ = w.audit.LogGrant(ctx, entitlements.Entitlement{
			ID: a.GrantID, UserID: a.UserID, Scope: a.Scope, Source: a.Source,
			Active: true, StartsAt: a.StartsAt, EndsAt: a.EndsAt,
		})
	}
	w.log.WithFields(logrus.Fields{
		"grant_id": a.GrantID,
		"user_id":  a.UserID,
		"scope":    a.Scope,
		"source":   a.Source,
	}).Info("entitlement issued")
	return nil
}

// NewClient builds a River client over the given pool with the issue worker
// registered. The caller owns Start/Stop.
func NewClient(pool *pgxpool.Pool, w *IssueWorker) (*river.Client[pgx.Tx], error) {
	workers := river.NewWorkers()
	if err := river.AddWorkerSafely(workers, w); err != nil {
		return nil, err
	}
	return river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues:  map[string]river.QueueConfig{river.QueueDefault: {MaxWorkers: 4}},
		Workers: workers,
	})
}

// QueueIssuer enqueues grants as background jobs. It implements
// voucher.Issuer.
type QueueIssuer struct {
	client *river.Client[pgx.Tx]
}

func NewQueueIssuer(client *river.Client[pgx.Tx]) *QueueIssuer {
	return &QueueIssuer{client: client}
}

func (q *QueueIssuer) IssueGrant(ctx context.Context, e entitlements.Entitlement) error {
	_, err := q.client.Insert(ctx, IssueArgs{
		GrantID:  e.ID,
		UserID:   e.UserID,
		Scope:    e.Scope,
		Source:   e.Source,
		StartsAt: e.StartsAt,
		EndsAt:   e.EndsAt,
	}, nil)
	return err
}
