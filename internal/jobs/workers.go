package jobs

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/riverqueue/river"
	"go.uber.org/zap"

	"github.com/vietanh2810/medal-board-api/internal/domain"
	"github.com/vietanh2810/medal-board-api/internal/metrics"
)

const maxLoggedViolations = 20

type Scoreboard interface {
	Refresh(ctx context.Context) ([]domain.Standing, error)
	Audit(ctx context.Context) ([]domain.Violation, error)
}

type Roster interface {
	RefreshRosterSize(ctx context.Context) (map[string]int, error)
}

type ScoreboardRefreshArgs struct{}

func (ScoreboardRefreshArgs) Kind() string { return "scoreboard_refresh" }

func (ScoreboardRefreshArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{Queue: QueueMaintenance}
}

type LedgerAuditArgs struct{}

func (LedgerAuditArgs) Kind() string { return "ledger_audit" }

func (LedgerAuditArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{Queue: QueueMaintenance}
}

type DailySummaryArgs struct{}

func (DailySummaryArgs) Kind() string { return "daily_summary" }

func (DailySummaryArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{Queue: QueueMaintenance}
}

// ScoreboardRefreshWorker rebuilds the cached standings and event results.
type ScoreboardRefreshWorker struct {
	river.WorkerDefaults[ScoreboardRefreshArgs]

	scoreboard Scoreboard
	metrics    *metrics.Metrics
}

func (w *ScoreboardRefreshWorker) Work(ctx context.Context, _ *river.Job[ScoreboardRefreshArgs]) error {
	standings, err := w.scoreboard.Refresh(ctx)
	w.metrics.JobRun(ScoreboardRefreshArgs{}.Kind(), err)
	if err != nil {
		return fmt.Errorf("w.scoreboard.Refresh -> %w", err)
	}

	zap.L().Debug("scoreboard refreshed", zap.Int("teams", len(standings)))
	return nil
}

// LedgerAuditWorker reports rows breaking the per-event rules. It never
// changes the ledger.
type LedgerAuditWorker struct {
	river.WorkerDefaults[LedgerAuditArgs]

	scoreboard Scoreboard
	metrics    *metrics.Metrics
}

func (w *LedgerAuditWorker) Work(ctx context.Context, _ *river.Job[LedgerAuditArgs]) error {
	violations, err := w.scoreboard.Audit(ctx)
	w.metrics.JobRun(LedgerAuditArgs{}.Kind(), err)
	if err != nil {
		return fmt.Errorf("w.scoreboard.Audit -> %w", err)
	}

	if len(violations) == 0 {
		zap.L().Debug("ledger audit clean")
		return nil
	}

	runID := uuid.NewString()
	for i, v := range violations {
		if i == maxLoggedViolations {
			break
		}
		zap.L().Warn("ledger violation",
			zap.String("audit_id", runID),
			zap.Uint("medal_id", v.MedalID),
			zap.Uint("event_id", v.EventID),
			zap.Uint("team_id", v.TeamID),
			zap.String("medal_type", string(v.MedalType)),
			zap.String("reason", v.Reason),
		)
	}
	zap.L().Warn("ledger audit found violations", zap.String("audit_id", runID), zap.Int("count", len(violations)))
	return nil
}

// DailySummaryWorker logs the leaders and refreshes the roster gauges.
type DailySummaryWorker struct {
	river.WorkerDefaults[DailySummaryArgs]

	scoreboard Scoreboard
	roster     Roster
	metrics    *metrics.Metrics
}

func (w *DailySummaryWorker) Work(ctx context.Context, _ *river.Job[DailySummaryArgs]) error {
	err := w.summarize(ctx)
	w.metrics.JobRun(DailySummaryArgs{}.Kind(), err)
	return err
}

func (w *DailySummaryWorker) summarize(ctx context.Context) error {
	size, err := w.roster.RefreshRosterSize(ctx)
	if err != nil {
		return fmt.Errorf("w.roster.RefreshRosterSize -> %w", err)
	}

	standings, err := w.scoreboard.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("w.scoreboard.Refresh -> %w", err)
	}

	leaders := make([]string, 0, 3)
	for _, s := range standings {
		if len(leaders) == cap(leaders) {
			break
		}
		leaders = append(leaders, fmt.Sprintf("#%d %s (%d)", s.Rank, s.TeamName, s.TotalPoints))
	}

	zap.L().Info("daily summary",
		zap.Int("teams", size["teams"]),
		zap.Int("events", size["events"]),
		zap.Int("categories", size["categories"]),
		zap.Strings("leaders", leaders),
	)
	return nil
}
