package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/vietanh2810/medal-board-api/internal/domain"
	"github.com/vietanh2810/medal-board-api/internal/eventbus"
	"github.com/vietanh2810/medal-board-api/internal/metrics"
)

type SubmissionRoster interface {
	FindEventByID(ctx context.Context, id uint) (domain.Event, error)
	FindTeamsByIDs(ctx context.Context, ids []uint) ([]domain.Team, error)
}

type StandingsReader interface {
	Standings(ctx context.Context) ([]domain.Standing, error)
}

type SubmissionResult struct {
	Event     domain.Event      `json:"event"`
	Medals    []domain.Medal    `json:"medals"`
	Standings []domain.Standing `json:"standings"`
}

// SubmissionService records a whole event outcome at once: every medal row
// and the COMPLETED status are written together or not at all.
type SubmissionService struct {
	roster     SubmissionRoster
	ledger     LedgerRepository
	settings   SettingsRepository
	scoreboard StandingsReader
	pub        ChangePublisher
	metrics    *metrics.Metrics
	maxUnits   int
}

func NewSubmissionService(
	roster SubmissionRoster,
	ledger LedgerRepository,
	settings SettingsRepository,
	scoreboard StandingsReader,
	pub ChangePublisher,
	m *metrics.Metrics,
	maxNonWinnerUnits int,
) *SubmissionService {
	return &SubmissionService{
		roster:     roster,
		ledger:     ledger,
		settings:   settings,
		scoreboard: scoreboard,
		pub:        pub,
		metrics:    m,
		maxUnits:   maxNonWinnerUnits,
	}
}

func eventCompleted(eventID uint) error {
	return domain.Conflict("status", "event %d is already COMPLETED; reopen it before submitting again", eventID).Because(ErrEventCompleted)
}

func (s *SubmissionService) Submit(ctx context.Context, sub domain.ResultSubmission) (SubmissionResult, error) {
	result, err := s.submit(ctx, sub)

	var se *domain.SubmissionError
	switch {
	case err == nil:
		s.metrics.Submission("accepted")
	case errors.As(err, &se), errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrNotFound):
		s.metrics.Submission("rejected")
	default:
		s.metrics.Submission("failed")
	}
	return result, err
}

func (s *SubmissionService) submit(ctx context.Context, sub domain.ResultSubmission) (SubmissionResult, error) {
	if err := sub.Validate(s.maxUnits); err != nil {
		return SubmissionResult{}, err
	}

	event, err := s.roster.FindEventByID(ctx, sub.EventID)
	if err != nil {
		return SubmissionResult{}, fmt.Errorf("s.roster.FindEventByID -> %w", err)
	}
	if event.IsCompleted() {
		return SubmissionResult{}, eventCompleted(event.ID)
	}

	if err = s.checkTeams(ctx, sub); err != nil {
		return SubmissionResult{}, err
	}

	// One settings read: every row of the batch snapshots the same values.
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return SubmissionResult{}, fmt.Errorf("s.settings.Get -> %w", err)
	}
	plan := sub.Plan(settings)

	event, medals, err := s.ledger.Submit(ctx, sub.EventID, plan, func(locked domain.Event, existing []domain.Medal) error {
		if locked.IsCompleted() {
			return eventCompleted(locked.ID)
		}
		return domain.CheckBatch(locked.ID, existing, plan)
	})
	if err != nil {
		return SubmissionResult{}, fmt.Errorf("s.ledger.Submit -> %w", err)
	}

	for _, m := range medals {
		s.metrics.MedalRecorded(string(m.MedalType))
	}
	publish(ctx, s.pub, eventbus.Change{Topic: eventbus.TopicLedger, Action: "results.submitted", EventID: event.ID})

	// The batch is committed; a failed read only leaves the standings out.
	standings, err := s.scoreboard.Standings(ctx)
	if err != nil {
		zap.L().Error("failed to read standings after submission",
			zap.Uint("event_id", event.ID),
			zap.Error(err),
		)
		standings = []domain.Standing{}
	}

	return SubmissionResult{Event: event, Medals: medals, Standings: standings}, nil
}

func (s *SubmissionService) checkTeams(ctx context.Context, sub domain.ResultSubmission) error {
	ids := sub.TeamIDs()
	found, err := s.roster.FindTeamsByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("s.roster.FindTeamsByIDs -> %w", err)
	}

	known := make(map[uint]struct{}, len(found))
	for _, t := range found {
		known[t.ID] = struct{}{}
	}

	var items []domain.ItemError
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			items = append(items, domain.NewItemError(sub.FieldFor(id), id, domain.NotFound("teamId", "team %d not found", id)))
		}
	}
	return domain.Reject(sub.EventID, items...)
}
