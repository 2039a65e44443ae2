package service

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/vietanh2810/medal-board-api/internal/domain"
	"github.com/vietanh2810/medal-board-api/internal/eventbus"
	"github.com/vietanh2810/medal-board-api/internal/metrics"
	"github.com/vietanh2810/medal-board-api/internal/repository/cache"
)

type ScoreboardRoster interface {
	ListTeams(ctx context.Context) ([]domain.Team, error)
	ListEvents(ctx context.Context) ([]domain.Event, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	FindEventByID(ctx context.Context, id uint) (domain.Event, error)
	FindCategoryByID(ctx context.Context, id uint) (domain.Category, error)
}

type MedalLister interface {
	List(ctx context.Context, filter domain.MedalFilter) ([]domain.Medal, error)
}

// ScoreboardService derives standings and event results from the ledger. Both
// views are cached whole and dropped on any change signal.
type ScoreboardService struct {
	roster  ScoreboardRoster
	medals  MedalLister
	cache   cache.ScoreboardCache
	metrics *metrics.Metrics

	mu        sync.RWMutex
	listeners []eventbus.Handler
}

func NewScoreboardService(roster ScoreboardRoster, medals MedalLister, c cache.ScoreboardCache, m *metrics.Metrics) *ScoreboardService {
	return &ScoreboardService{
		roster:  roster,
		medals:  medals,
		cache:   c,
		metrics: m,
	}
}

func (s *ScoreboardService) computeStandings(ctx context.Context) ([]domain.Standing, error) {
	teams, err := s.roster.ListTeams(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.roster.ListTeams -> %w", err)
	}

	medals, err := s.medals.List(ctx, domain.MedalFilter{})
	if err != nil {
		return nil, fmt.Errorf("s.medals.List -> %w", err)
	}

	return domain.ComputeStandings(teams, medals), nil
}

func (s *ScoreboardService) computeResults(ctx context.Context) ([]domain.EventResult, error) {
	events, err := s.roster.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.roster.ListEvents -> %w", err)
	}

	categories, err := s.roster.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.roster.ListCategories -> %w", err)
	}

	teams, err := s.roster.ListTeams(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.roster.ListTeams -> %w", err)
	}

	medals, err := s.medals.List(ctx, domain.MedalFilter{})
	if err != nil {
		return nil, fmt.Errorf("s.medals.List -> %w", err)
	}

	return domain.ComputeEventResults(events, categories, teams, medals), nil
}

func (s *ScoreboardService) Standings(ctx context.Context) ([]domain.Standing, error) {
	if s.cache == nil {
		return s.computeStandings(ctx)
	}

	standings, hit, err := cache.ReadThrough(ctx, s.cache, cache.KeyStandings, s.computeStandings)
	if err != nil {
		return nil, err
	}

	s.metrics.CacheLookup(hit)
	return standings, nil
}

func (s *ScoreboardService) EventResults(ctx context.Context) ([]domain.EventResult, error) {
	if s.cache == nil {
		return s.computeResults(ctx)
	}

	results, hit, err := cache.ReadThrough(ctx, s.cache, cache.KeyResults, s.computeResults)
	if err != nil {
		return nil, err
	}

	s.metrics.CacheLookup(hit)
	return results, nil
}

// EventResult reads one event straight from storage.
func (s *ScoreboardService) EventResult(ctx context.Context, eventID uint) (domain.EventResult, error) {
	event, err := s.roster.FindEventByID(ctx, eventID)
	if err != nil {
		return domain.EventResult{}, fmt.Errorf("s.roster.FindEventByID -> %w", err)
	}

	category, err := s.roster.FindCategoryByID(ctx, event.CategoryID)
	if err != nil {
		return domain.EventResult{}, fmt.Errorf("s.roster.FindCategoryByID -> %w", err)
	}

	teams, err := s.roster.ListTeams(ctx)
	if err != nil {
		return domain.EventResult{}, fmt.Errorf("s.roster.ListTeams -> %w", err)
	}

	medals, err := s.medals.List(ctx, domain.MedalFilter{EventID: &eventID})
	if err != nil {
		return domain.EventResult{}, fmt.Errorf("s.medals.List -> %w", err)
	}

	return domain.ComputeEventResult(event, category.Name, teams, medals), nil
}

// OnInvalidated registers fn to run after every Invalidate, once the cached
// views are gone. Readers called from fn see the change.
func (s *ScoreboardService) OnInvalidated(fn eventbus.Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Invalidate drops every cached view, then runs the OnInvalidated listeners.
// It is subscribed to the change topics.
func (s *ScoreboardService) Invalidate(ctx context.Context, change eventbus.Change) error {
	if err := s.dropCache(ctx); err != nil {
		return err
	}
	zap.L().Debug("scoreboard cache invalidated", zap.String("topic", change.Topic), zap.String("action", change.Action))

	s.mu.RLock()
	listeners := s.listeners
	s.mu.RUnlock()

	for _, fn := range listeners {
		if err := fn(ctx, change); err != nil {
			zap.L().Warn("scoreboard listener failed", zap.String("topic", change.Topic), zap.Error(err))
		}
	}
	return nil
}

func (s *ScoreboardService) dropCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}

	if err := s.cache.Invalidate(ctx); err != nil {
		return fmt.Errorf("s.cache.Invalidate -> %w", err)
	}
	return nil
}

// Refresh rebuilds both cached views from storage.
func (s *ScoreboardService) Refresh(ctx context.Context) ([]domain.Standing, error) {
	if err := s.dropCache(ctx); err != nil {
		return nil, err
	}

	if _, err := s.EventResults(ctx); err != nil {
		return nil, err
	}
	return s.Standings(ctx)
}

// Audit replays the whole ledger and reports rows breaking a per-event rule.
func (s *ScoreboardService) Audit(ctx context.Context) ([]domain.Violation, error) {
	medals, err := s.medals.List(ctx, domain.MedalFilter{})
	if err != nil {
		return nil, fmt.Errorf("s.medals.List -> %w", err)
	}

	violations := domain.AuditLedger(medals)
	s.metrics.SetLedgerViolations(len(violations))
	return violations, nil
}
