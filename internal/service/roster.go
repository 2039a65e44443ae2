package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/vietanh2810/medal-board-api/internal/domain"
	"github.com/vietanh2810/medal-board-api/internal/eventbus"
	"github.com/vietanh2810/medal-board-api/internal/metrics"
)

type RosterRepository interface {
	CreateCategory(ctx context.Context, category domain.Category) (domain.Category, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	FindCategoryByID(ctx context.Context, id uint) (domain.Category, error)
	DeleteCategory(ctx context.Context, id uint) error
	CreateTeam(ctx context.Context, team domain.Team) (domain.Team, error)
	ListTeams(ctx context.Context) ([]domain.Team, error)
	FindTeamByID(ctx context.Context, id uint) (domain.Team, error)
	FindTeamsByIDs(ctx context.Context, ids []uint) ([]domain.Team, error)
	UpdateTeam(ctx context.Context, team domain.Team) (domain.Team, error)
	DeleteTeam(ctx context.Context, id uint) error
	CreateEvent(ctx context.Context, event domain.Event) (domain.Event, error)
	ListEvents(ctx context.Context) ([]domain.Event, error)
	FindEventByID(ctx context.Context, id uint) (domain.Event, error)
	UpdateEvent(ctx context.Context, id uint, fn func(domain.Event) (domain.Event, error)) (domain.Event, error)
	DeleteEvent(ctx context.Context, id uint) error
	RosterSize(ctx context.Context) (map[string]int, error)
}

type RosterService struct {
	repo    RosterRepository
	pub     ChangePublisher
	metrics *metrics.Metrics
}

func NewRosterService(repo RosterRepository, pub ChangePublisher, m *metrics.Metrics) *RosterService {
	return &RosterService{
		repo:    repo,
		pub:     pub,
		metrics: m,
	}
}

func (s *RosterService) changed(ctx context.Context, action string, change eventbus.Change) {
	change.Topic = eventbus.TopicRoster
	change.Action = action
	publish(ctx, s.pub, change)
}

func (s *RosterService) CreateCategory(ctx context.Context, category domain.Category) (domain.Category, error) {
	category.Name = strings.TrimSpace(category.Name)
	if err := category.Validate(); err != nil {
		return domain.Category{}, err
	}

	created, err := s.repo.CreateCategory(ctx, category)
	if err != nil {
		return domain.Category{}, fmt.Errorf("s.repo.CreateCategory -> %w", err)
	}

	s.changed(ctx, "category.created", eventbus.Change{})
	return created, nil
}

func (s *RosterService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListCategories -> %w", err)
	}

	return categories, nil
}

func (s *RosterService) DeleteCategory(ctx context.Context, id uint) error {
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return fmt.Errorf("s.repo.DeleteCategory -> %w", err)
	}

	s.changed(ctx, "category.deleted", eventbus.Change{})
	return nil
}

func (s *RosterService) CreateTeam(ctx context.Context, team domain.Team) (domain.Team, error) {
	team.Name = strings.TrimSpace(team.Name)
	if err := team.Validate(); err != nil {
		return domain.Team{}, err
	}

	created, err := s.repo.CreateTeam(ctx, team)
	if err != nil {
		return domain.Team{}, fmt.Errorf("s.repo.CreateTeam -> %w", err)
	}

	s.changed(ctx, "team.created", eventbus.Change{TeamID: created.ID})
	return created, nil
}

func (s *RosterService) ListTeams(ctx context.Context) ([]domain.Team, error) {
	teams, err := s.repo.ListTeams(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListTeams -> %w", err)
	}

	return teams, nil
}

func (s *RosterService) GetTeam(ctx context.Context, id uint) (domain.Team, error) {
	team, err := s.repo.FindTeamByID(ctx, id)
	if err != nil {
		return domain.Team{}, fmt.Errorf("s.repo.FindTeamByID -> %w", err)
	}

	return team, nil
}

func (s *RosterService) UpdateTeam(ctx context.Context, id uint, patch domain.TeamPatch) (domain.Team, error) {
	current, err := s.repo.FindTeamByID(ctx, id)
	if err != nil {
		return domain.Team{}, fmt.Errorf("s.repo.FindTeamByID -> %w", err)
	}

	next, err := current.Apply(patch)
	if err != nil {
		return domain.Team{}, err
	}

	updated, err := s.repo.UpdateTeam(ctx, next)
	if err != nil {
		return domain.Team{}, fmt.Errorf("s.repo.UpdateTeam -> %w", err)
	}

	s.changed(ctx, "team.updated", eventbus.Change{TeamID: id})
	return updated, nil
}

// DeleteTeam refuses teams that still have medals; delete those first.
func (s *RosterService) DeleteTeam(ctx context.Context, id uint) error {
	if err := s.repo.DeleteTeam(ctx, id); err != nil {
		return fmt.Errorf("s.repo.DeleteTeam -> %w", err)
	}

	s.changed(ctx, "team.deleted", eventbus.Change{TeamID: id})
	return nil
}

// CreateEvent stores a new PENDING event. The category must exist.
func (s *RosterService) CreateEvent(ctx context.Context, event domain.Event) (domain.Event, error) {
	event.Name = strings.TrimSpace(event.Name)
	event.Status = domain.EventPending
	if err := event.Validate(); err != nil {
		return domain.Event{}, err
	}

	if _, err := s.repo.FindCategoryByID(ctx, event.CategoryID); err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.FindCategoryByID -> %w", err)
	}

	created, err := s.repo.CreateEvent(ctx, event)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.CreateEvent -> %w", err)
	}

	s.changed(ctx, "event.created", eventbus.Change{EventID: created.ID})
	return created, nil
}

func (s *RosterService) ListEvents(ctx context.Context) ([]domain.Event, error) {
	events, err := s.repo.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListEvents -> %w", err)
	}

	return events, nil
}

func (s *RosterService) GetEvent(ctx context.Context, id uint) (domain.Event, error) {
	event, err := s.repo.FindEventByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.FindEventByID -> %w", err)
	}

	return event, nil
}

func (s *RosterService) UpdateEvent(ctx context.Context, id uint, patch domain.EventPatch) (domain.Event, error) {
	if patch.CategoryID != nil {
		if _, err := s.repo.FindCategoryByID(ctx, *patch.CategoryID); err != nil {
			return domain.Event{}, fmt.Errorf("s.repo.FindCategoryByID -> %w", err)
		}
	}

	updated, err := s.repo.UpdateEvent(ctx, id, func(current domain.Event) (domain.Event, error) {
		return current.Apply(patch)
	})
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.UpdateEvent -> %w", err)
	}

	s.changed(ctx, "event.updated", eventbus.Change{EventID: id})
	return updated, nil
}

// SetEventStatus moves an event between PENDING and COMPLETED. Setting the
// current status again is a no-op.
func (s *RosterService) SetEventStatus(ctx context.Context, id uint, status domain.EventStatus) (domain.Event, error) {
	if _, err := domain.ParseEventStatus(string(status)); err != nil {
		return domain.Event{}, err
	}

	changed := false
	updated, err := s.repo.UpdateEvent(ctx, id, func(current domain.Event) (domain.Event, error) {
		changed = current.Status != status
		current.Status = status
		return current, nil
	})
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.UpdateEvent -> %w", err)
	}

	if changed {
		s.changed(ctx, "event.status", eventbus.Change{EventID: id})
	}
	return updated, nil
}

func (s *RosterService) DeleteEvent(ctx context.Context, id uint) error {
	if err := s.repo.DeleteEvent(ctx, id); err != nil {
		return fmt.Errorf("s.repo.DeleteEvent -> %w", err)
	}

	s.changed(ctx, "event.deleted", eventbus.Change{EventID: id})
	return nil
}

// RefreshRosterSize updates the roster gauges and returns the counts.
func (s *RosterService) RefreshRosterSize(ctx context.Context) (map[string]int, error) {
	size, err := s.repo.RosterSize(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.RosterSize -> %w", err)
	}

	for kind, n := range size {
		s.metrics.SetRosterSize(kind, n)
	}
	return size, nil
}
