// Package jobs runs the periodic maintenance work on a river queue backed by
// the same Postgres database as the ledger.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"go.uber.org/zap"

	"github.com/vietanh2810/medal-board-api/internal/config"
	"github.com/vietanh2810/medal-board-api/internal/metrics"
)

const QueueMaintenance = "maintenance"

type Runner struct {
	client *river.Client[pgx.Tx]
}

// Migrate brings the river tables up to date.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return fmt.Errorf("rivermigrate.New -> %w", err)
	}

	res, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil)
	if err != nil {
		return fmt.Errorf("migrator.Migrate -> %w", err)
	}

	for _, v := range res.Versions {
		zap.L().Info("river migration applied", zap.Int("version", v.Version))
	}
	return nil
}

func NewRunner(pool *pgxpool.Pool, conf *config.JobsConfig, scoreboard Scoreboard, roster Roster, m *metrics.Metrics) (*Runner, error) {
	workers := river.NewWorkers()
	river.AddWorker(workers, &ScoreboardRefreshWorker{scoreboard: scoreboard, metrics: m})
	river.AddWorker(workers, &LedgerAuditWorker{scoreboard: scoreboard, metrics: m})
	river.AddWorker(workers, &DailySummaryWorker{scoreboard: scoreboard, roster: roster, metrics: m})

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			QueueMaintenance: {MaxWorkers: 2},
		},
		Workers:      workers,
		PeriodicJobs: PeriodicJobs(conf),
	})
	if err != nil {
		return nil, fmt.Errorf("river.NewClient -> %w", err)
	}

	return &Runner{client: client}, nil
}

// PeriodicJobs builds the schedule from conf.
func PeriodicJobs(conf *config.JobsConfig) []*river.PeriodicJob {
	return []*river.PeriodicJob{
		river.NewPeriodicJob(
			river.PeriodicInterval(conf.CacheRefreshInterval),
			func() (river.JobArgs, *river.InsertOpts) { return ScoreboardRefreshArgs{}, nil },
			&river.PeriodicJobOpts{RunOnStart: true},
		),
		river.NewPeriodicJob(
			river.PeriodicInterval(conf.LedgerAuditInterval),
			func() (river.JobArgs, *river.InsertOpts) { return LedgerAuditArgs{}, nil },
			&river.PeriodicJobOpts{RunOnStart: true},
		),
		river.NewPeriodicJob(
			DailyAt(conf.DailyReportHour),
			func() (river.JobArgs, *river.InsertOpts) { return DailySummaryArgs{}, nil },
			nil,
		),
	}
}

func (r *Runner) Start(ctx context.Context) error {
	if err := r.client.Start(ctx); err != nil {
		return fmt.Errorf("r.client.Start -> %w", err)
	}

	zap.L().Info("maintenance jobs started", zap.String("queue", QueueMaintenance))
	return nil
}

func (r *Runner) Stop(ctx context.Context) error {
	if err := r.client.Stop(ctx); err != nil {
		return fmt.Errorf("r.client.Stop -> %w", err)
	}

	return nil
}

// dailySchedule fires once a day at hour:00 UTC.
type dailySchedule struct {
	hour int
}

func DailyAt(hour int) river.PeriodicSchedule {
	return dailySchedule{hour: ((hour % 24) + 24) % 24}
}

func (s dailySchedule) Next(current time.Time) time.Time {
	current = current.UTC()
	next := time.Date(current.Year(), current.Month(), current.Day(), s.hour, 0, 0, 0, time.UTC)
	if !next.After(current) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
