package repository

import (
	"context"
	"fmt"

	"github.com/vietanh2810/medal-board-api/internal/domain"
	"github.com/vietanh2810/medal-board-api/internal/repository/dao"
)

var (
	ErrCategoryNotFound = dao.ErrCategoryNotFound
	ErrCategoryExists   = dao.ErrCategoryExists
	ErrCategoryInUse    = dao.ErrCategoryInUse
	ErrTeamNotFound     = dao.ErrTeamNotFound
	ErrTeamExists       = dao.ErrTeamExists
	ErrTeamInUse        = dao.ErrTeamInUse
	ErrEventNotFound    = dao.ErrEventNotFound
	ErrEventInUse       = dao.ErrEventInUse
)

type RosterDAO interface {
	InsertCategory(ctx context.Context, category dao.Category) (dao.Category, error)
	FindCategories(ctx context.Context) ([]dao.Category, error)
	FindCategoryByID(ctx context.Context, id uint) (dao.Category, error)
	DeleteCategory(ctx context.Context, id uint) error
	InsertTeam(ctx context.Context, team dao.Team) (dao.Team, error)
	FindTeams(ctx context.Context) ([]dao.Team, error)
	FindTeamByID(ctx context.Context, id uint) (dao.Team, error)
	FindTeamsByIDs(ctx context.Context, ids []uint) ([]dao.Team, error)
	UpdateTeam(ctx context.Context, team dao.Team) (dao.Team, error)
	DeleteTeam(ctx context.Context, id uint) error
	InsertEvent(ctx context.Context, event dao.Event) (dao.Event, error)
	FindEvents(ctx context.Context) ([]dao.Event, error)
	FindEventByID(ctx context.Context, id uint) (dao.Event, error)
	UpdateEvent(ctx context.Context, id uint, fn func(*dao.Event) error) (dao.Event, error)
	DeleteEvent(ctx context.Context, id uint) error
	CountRoster(ctx context.Context) (teams, events, categories int64, err error)
}

type RosterRepository struct {
	dao RosterDAO
}

func NewRosterRepository(dao RosterDAO) *RosterRepository {
	return &RosterRepository{
		dao: dao,
	}
}

func (r *RosterRepository) CreateCategory(ctx context.Context, category domain.Category) (domain.Category, error) {
	created, err := r.dao.InsertCategory(ctx, dao.Category{Name: category.Name})
	if err != nil {
		return domain.Category{}, fmt.Errorf("r.dao.InsertCategory -> %w", err)
	}

	return categoryToDomain(created), nil
}

func (r *RosterRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	found, err := r.dao.FindCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindCategories -> %w", err)
	}

	categories := make([]domain.Category, 0, len(found))
	for _, c := range found {
		categories = append(categories, categoryToDomain(c))
	}
	return categories, nil
}

func (r *RosterRepository) FindCategoryByID(ctx context.Context, id uint) (domain.Category, error) {
	found, err := r.dao.FindCategoryByID(ctx, id)
	if err != nil {
		return domain.Category{}, fmt.Errorf("r.dao.FindCategoryByID -> %w", err)
	}

	return categoryToDomain(found), nil
}

func (r *RosterRepository) DeleteCategory(ctx context.Context, id uint) error {
	if err := r.dao.DeleteCategory(ctx, id); err != nil {
		return fmt.Errorf("r.dao.DeleteCategory -> %w", err)
	}
	return nil
}

func (r *RosterRepository) CreateTeam(ctx context.Context, team domain.Team) (domain.Team, error) {
	created, err := r.dao.InsertTeam(ctx, teamToDAO(team))
	if err != nil {
		return domain.Team{}, fmt.Errorf("r.dao.InsertTeam -> %w", err)
	}

	return teamToDomain(created), nil
}

func (r *RosterRepository) ListTeams(ctx context.Context) ([]domain.Team, error) {
	found, err := r.dao.FindTeams(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindTeams -> %w", err)
	}

	return teamsToDomain(found), nil
}

func (r *RosterRepository) FindTeamByID(ctx context.Context, id uint) (domain.Team, error) {
	found, err := r.dao.FindTeamByID(ctx, id)
	if err != nil {
		return domain.Team{}, fmt.Errorf("r.dao.FindTeamByID -> %w", err)
	}

	return teamToDomain(found), nil
}

func (r *RosterRepository) FindTeamsByIDs(ctx context.Context, ids []uint) ([]domain.Team, error) {
	found, err := r.dao.FindTeamsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindTeamsByIDs -> %w", err)
	}

	return teamsToDomain(found), nil
}

func (r *RosterRepository) UpdateTeam(ctx context.Context, team domain.Team) (domain.Team, error) {
	updated, err := r.dao.UpdateTeam(ctx, teamToDAO(team))
	if err != nil {
		return domain.Team{}, fmt.Errorf("r.dao.UpdateTeam -> %w", err)
	}

	return teamToDomain(updated), nil
}

func (r *RosterRepository) DeleteTeam(ctx context.Context, id uint) error {
	if err := r.dao.DeleteTeam(ctx, id); err != nil {
		return fmt.Errorf("r.dao.DeleteTeam -> %w", err)
	}
	return nil
}

func (r *RosterRepository) CreateEvent(ctx context.Context, event domain.Event) (domain.Event, error) {
	created, err := r.dao.InsertEvent(ctx, eventToDAO(event))
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.InsertEvent -> %w", err)
	}

	return eventToDomain(created), nil
}

func (r *RosterRepository) ListEvents(ctx context.Context) ([]domain.Event, error) {
	found, err := r.dao.FindEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindEvents -> %w", err)
	}

	events := make([]domain.Event, 0, len(found))
	for _, e := range found {
		events = append(events, eventToDomain(e))
	}
	return events, nil
}

func (r *RosterRepository) FindEventByID(ctx context.Context, id uint) (domain.Event, error) {
	found, err := r.dao.FindEventByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.FindEventByID -> %w", err)
	}

	return eventToDomain(found), nil
}

// UpdateEvent hands fn the current event under a row lock and stores what it
// returns. An error from fn aborts the update.
func (r *RosterRepository) UpdateEvent(ctx context.Context, id uint, fn func(domain.Event) (domain.Event, error)) (domain.Event, error) {
	updated, err := r.dao.UpdateEvent(ctx, id, func(row *dao.Event) error {
		next, err := fn(eventToDomain(*row))
		if err != nil {
			return err
		}

		row.Name = next.Name
		row.CategoryID = next.CategoryID
		row.EventDate = next.EventDate
		row.Status = string(next.Status)
		return nil
	})
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.UpdateEvent -> %w", err)
	}

	return eventToDomain(updated), nil
}

func (r *RosterRepository) DeleteEvent(ctx context.Context, id uint) error {
	if err := r.dao.DeleteEvent(ctx, id); err != nil {
		return fmt.Errorf("r.dao.DeleteEvent -> %w", err)
	}
	return nil
}

// RosterSize counts rows per roster kind, keyed "teams", "events" and "categories".
func (r *RosterRepository) RosterSize(ctx context.Context) (map[string]int, error) {
	teams, events, categories, err := r.dao.CountRoster(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.CountRoster -> %w", err)
	}

	return map[string]int{
		"teams":      int(teams),
		"events":     int(events),
		"categories": int(categories),
	}, nil
}

func categoryToDomain(c dao.Category) domain.Category {
	return domain.Category{
		ID:        c.ID,
		Name:      c.Name,
		CreatedAt: c.CreatedAt,
	}
}

func teamToDAO(t domain.Team) dao.Team {
	return dao.Team{
		ID:        t.ID,
		Name:      t.Name,
		Icon:      t.Icon,
		Color:     t.Color,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func teamToDomain(t dao.Team) domain.Team {
	return domain.Team{
		ID:        t.ID,
		Name:      t.Name,
		Icon:      t.Icon,
		Color:     t.Color,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func teamsToDomain(teams []dao.Team) []domain.Team {
	out := make([]domain.Team, 0, len(teams))
	for _, t := range teams {
		out = append(out, teamToDomain(t))
	}
	return out
}

func eventToDAO(e domain.Event) dao.Event {
	return dao.Event{
		ID:         e.ID,
		Name:       e.Name,
		CategoryID: e.CategoryID,
		EventDate:  e.EventDate,
		Status:     string(e.Status),
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
}

func eventToDomain(e dao.Event) domain.Event {
	return domain.Event{
		ID:         e.ID,
		Name:       e.Name,
		CategoryID: e.CategoryID,
		EventDate:  e.EventDate,
		Status:     domain.EventStatus(e.Status),
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
}
