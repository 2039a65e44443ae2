package service

import (
	"context"
	"fmt"

	"github.com/vietanh2810/medal-board-api/internal/domain"
	"github.com/vietanh2810/medal-board-api/internal/eventbus"
	"github.com/vietanh2810/medal-board-api/internal/metrics"
	"github.com/vietanh2810/medal-board-api/internal/repository"
)

type LedgerRepository interface {
	Record(ctx context.Context, medal domain.Medal, check repository.LedgerCheck) (domain.Medal, error)
	Submit(ctx context.Context, eventID uint, medals []domain.Medal, check repository.LedgerCheck) (domain.Event, []domain.Medal, error)
	List(ctx context.Context, filter domain.MedalFilter) ([]domain.Medal, error)
	FindByID(ctx context.Context, id uint) (domain.Medal, error)
	Delete(ctx context.Context, id uint) (domain.Medal, error)
}

type PointsResolver interface {
	PointsFor(ctx context.Context, medalType domain.MedalType) (int, error)
}

type TeamFinder interface {
	FindTeamByID(ctx context.Context, id uint) (domain.Team, error)
}

// MedalRequest is one manually recorded medal. Nil Points means the value is
// taken from the current score settings.
type MedalRequest struct {
	EventID   uint
	TeamID    uint
	MedalType domain.MedalType
	Points    *int
}

type LedgerService struct {
	repo    LedgerRepository
	teams   TeamFinder
	points  PointsResolver
	pub     ChangePublisher
	metrics *metrics.Metrics
}

func NewLedgerService(repo LedgerRepository, teams TeamFinder, points PointsResolver, pub ChangePublisher, m *metrics.Metrics) *LedgerService {
	return &LedgerService{
		repo:    repo,
		teams:   teams,
		points:  points,
		pub:     pub,
		metrics: m,
	}
}

func (s *LedgerService) resolvePoints(ctx context.Context, req MedalRequest) (int, error) {
	if req.Points == nil {
		points, err := s.points.PointsFor(ctx, req.MedalType)
		if err != nil {
			return 0, fmt.Errorf("s.points.PointsFor -> %w", err)
		}
		return points, nil
	}

	points := *req.Points
	switch {
	case points < 0:
		return 0, domain.Validation("points", "must be a non-negative integer, got %d", points)
	case req.MedalType == domain.MedalNoEntry && points != domain.NoEntryPoints:
		return 0, domain.Validation("points", "NO_ENTRY medals carry %d points", domain.NoEntryPoints)
	}
	return points, nil
}

// Record appends one medal after checking the per-event rules against the
// ledger, with the event locked for the duration of the check.
func (s *LedgerService) Record(ctx context.Context, req MedalRequest) (domain.Medal, error) {
	if _, err := domain.ParseMedalType(string(req.MedalType)); err != nil {
		return domain.Medal{}, err
	}

	points, err := s.resolvePoints(ctx, req)
	if err != nil {
		return domain.Medal{}, err
	}

	if _, err = s.teams.FindTeamByID(ctx, req.TeamID); err != nil {
		return domain.Medal{}, fmt.Errorf("s.teams.FindTeamByID -> %w", err)
	}

	candidate := domain.Medal{
		EventID:   req.EventID,
		TeamID:    req.TeamID,
		MedalType: req.MedalType,
		Points:    points,
	}
	recorded, err := s.repo.Record(ctx, candidate, func(_ domain.Event, existing []domain.Medal) error {
		return domain.CheckMedal(existing, candidate)
	})
	if err != nil {
		return domain.Medal{}, fmt.Errorf("s.repo.Record -> %w", err)
	}

	s.metrics.MedalRecorded(string(recorded.MedalType))
	publish(ctx, s.pub, eventbus.Change{
		Topic:   eventbus.TopicLedger,
		Action:  "medal.recorded",
		EventID: recorded.EventID,
		TeamID:  recorded.TeamID,
	})
	return recorded, nil
}

func (s *LedgerService) List(ctx context.Context, filter domain.MedalFilter) ([]domain.Medal, error) {
	medals, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("s.repo.List -> %w", err)
	}

	return medals, nil
}

func (s *LedgerService) Get(ctx context.Context, id uint) (domain.Medal, error) {
	medal, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Medal{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return medal, nil
}

func (s *LedgerService) Delete(ctx context.Context, id uint) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	s.metrics.MedalDeleted()
	publish(ctx, s.pub, eventbus.Change{
		Topic:   eventbus.TopicLedger,
		Action:  "medal.deleted",
		EventID: deleted.EventID,
		TeamID:  deleted.TeamID,
	})
	return nil
}
