// Package expiry keeps the entitlement Active flag in sync with the
// starts_at/ends_at window. The matching path trusts Active alone, so this
// sweep is the single place window expiry is enforced.
package expiry

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// DefaultSchedule runs the sweep every ten minutes.
const DefaultSchedule = "@every 10m"

// Sweeper periodically deactivates entitlements whose window has closed.
type Sweeper struct {
	pg     *pgxpool.Pool
	schema string
	log    logrus.FieldLogger
	cron   *cron.Cron
}

func NewSweeper(pg *pgxpool.Pool, schema string, log logrus.FieldLogger) *Sweeper {
	s := strings.TrimSpace(schema)
	if s == "" {
		s = "access"
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Sweeper{pg: pg, schema: s, log: log}
}

func (s *Sweeper) table() string { return s.schema + ".entitlements" }

// Start schedules the sweep. An empty schedule uses DefaultSchedule.
func (s *Sweeper) Start(schedule string) error {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		n, err := s.SweepOnce(context.Background())
		if err != nil {
			s.log.WithError(err).Warn("entitlement expiry sweep failed")
			return
		}
		if n > 0 {
			s.log.WithField("deactivated", n).Info("expired entitlements deactivated")
		}
	})
	if err != nil {
		return err
	}
	s.cron = c
	c.Start()
	return nil
}

// Stop halts the schedule and waits for an in-flight sweep to finish.
func (s *Sweeper) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
		s.cron = nil
	}
}

// SweepOnce deactivates every active entitlement whose end passed. It
// returns the number of rows flipped.
func (s *Sweeper) SweepOnce(ctx context.Context) (int64, error) {
	if s.pg == nil {
		return 0, nil
	}
	tag, err := s.pg.Exec(ctx,
		`UPDATE `+s.table()+` SET active = false, updated_at = NOW()
		 WHERE active AND ends_at IS NOT NULL AND ends_at < NOW()`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
