package repository

import (
	"context"
	"fmt"

	"github.com/vietanh2810/medal-board-api/internal/domain"
	"github.com/vietanh2810/medal-board-api/internal/repository/dao"
)

var (
	ErrMedalNotFound  = dao.ErrMedalNotFound
	ErrMedalDuplicate = dao.ErrMedalDuplicate
	ErrEventCompleted = dao.ErrEventCompleted
)

type LedgerDAO interface {
	Insert(ctx context.Context, medal dao.Medal, check dao.LedgerCheck) (dao.Medal, error)
	Submit(ctx context.Context, eventID uint, medals []dao.Medal, check dao.LedgerCheck) (dao.Event, []dao.Medal, error)
	Find(ctx context.Context, filter dao.MedalFilter) ([]dao.Medal, error)
	FindByID(ctx context.Context, id uint) (dao.Medal, error)
	Delete(ctx context.Context, id uint) (dao.Medal, error)
}

// LedgerCheck runs while the event row is locked. existing holds the medals
// already recorded for the event.
type LedgerCheck func(event domain.Event, existing []domain.Medal) error

type LedgerRepository struct {
	dao LedgerDAO
}

func NewLedgerRepository(dao LedgerDAO) *LedgerRepository {
	return &LedgerRepository{
		dao: dao,
	}
}

func (c LedgerCheck) toDAO() dao.LedgerCheck {
	return func(event dao.Event, existing []dao.Medal) error {
		return c(eventToDomain(event), medalsToDomain(existing))
	}
}

func (r *LedgerRepository) Record(ctx context.Context, medal domain.Medal, check LedgerCheck) (domain.Medal, error) {
	created, err := r.dao.Insert(ctx, medalToDAO(medal), check.toDAO())
	if err != nil {
		return domain.Medal{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return medalToDomain(created), nil
}

// Submit records every medal and completes the event, or records nothing.
func (r *LedgerRepository) Submit(ctx context.Context, eventID uint, medals []domain.Medal, check LedgerCheck) (domain.Event, []domain.Medal, error) {
	rows := make([]dao.Medal, 0, len(medals))
	for _, m := range medals {
		rows = append(rows, medalToDAO(m))
	}

	event, written, err := r.dao.Submit(ctx, eventID, rows, check.toDAO())
	if err != nil {
		return domain.Event{}, nil, fmt.Errorf("r.dao.Submit -> %w", err)
	}

	return eventToDomain(event), medalsToDomain(written), nil
}

func (r *LedgerRepository) List(ctx context.Context, filter domain.MedalFilter) ([]domain.Medal, error) {
	found, err := r.dao.Find(ctx, dao.MedalFilter{EventID: filter.EventID, TeamID: filter.TeamID})
	if err != nil {
		return nil, fmt.Errorf("r.dao.Find -> %w", err)
	}

	return medalsToDomain(found), nil
}

func (r *LedgerRepository) FindByID(ctx context.Context, id uint) (domain.Medal, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Medal{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return medalToDomain(found), nil
}

func (r *LedgerRepository) Delete(ctx context.Context, id uint) (domain.Medal, error) {
	deleted, err := r.dao.Delete(ctx, id)
	if err != nil {
		return domain.Medal{}, fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return medalToDomain(deleted), nil
}

func medalToDAO(m domain.Medal) dao.Medal {
	return dao.Medal{
		ID:        m.ID,
		EventID:   m.EventID,
		TeamID:    m.TeamID,
		MedalType: string(m.MedalType),
		Points:    m.Points,
		CreatedAt: m.CreatedAt,
	}
}

func medalToDomain(m dao.Medal) domain.Medal {
	return domain.Medal{
		ID:        m.ID,
		EventID:   m.EventID,
		TeamID:    m.TeamID,
		MedalType: domain.MedalType(m.MedalType),
		Points:    m.Points,
		CreatedAt: m.CreatedAt,
	}
}

func medalsToDomain(medals []dao.Medal) []domain.Medal {
	out := make([]domain.Medal, 0, len(medals))
	for _, m := range medals {
		out = append(out, medalToDomain(m))
	}
	return out
}
