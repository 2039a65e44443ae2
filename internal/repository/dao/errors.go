package dao

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/vietanh2810/medal-board-api/internal/domain"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryExists   = errors.New("category name already exists")
	ErrCategoryInUse    = errors.New("category is referenced by events")

	ErrTeamNotFound = errors.New("team not found")
	ErrTeamExists   = errors.New("team name already exists")
	ErrTeamInUse    = errors.New("team is referenced by medals")

	ErrEventNotFound  = errors.New("event not found")
	ErrEventInUse     = errors.New("event is referenced by medals")
	ErrEventCompleted = errors.New("event already completed")

	ErrMedalNotFound  = errors.New("medal not found")
	ErrMedalDuplicate = errors.New("medal violates a per-event uniqueness rule")
)

// Constraint and index names created by InitTables. Unique violations are
// told apart by these.
const (
	idxCategoriesName = "uni_categories_name"
	idxTeamsName      = "uni_teams_name"
	idxMedalsPodium   = "idx_medals_event_podium"
	idxMedalsNoEntry  = "idx_medals_event_no_entry"
	fkEventsCategory  = "fk_events_category"
	fkMedalsEvent     = "fk_medals_event"
	fkMedalsTeam      = "fk_medals_team"
)

func pgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// translate turns driver failures into domain errors. Errors that are already
// domain errors pass through untouched.
func translate(err error) error {
	if err == nil {
		return nil
	}

	var de *domain.Error
	if errors.As(err, &de) || errors.Is(err, domain.ErrStorage) {
		return err
	}

	pgErr, ok := pgError(err)
	if !ok {
		return domain.Storage(err)
	}

	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		switch {
		case strings.Contains(pgErr.ConstraintName, idxTeamsName):
			return domain.Conflict("name", "team name already exists").Because(ErrTeamExists)
		case strings.Contains(pgErr.ConstraintName, idxCategoriesName):
			return domain.Conflict("name", "category name already exists").Because(ErrCategoryExists)
		case strings.Contains(pgErr.ConstraintName, idxMedalsPodium):
			return domain.Conflict("medalType", "event already has this podium medal").Because(ErrMedalDuplicate)
		case strings.Contains(pgErr.ConstraintName, idxMedalsNoEntry):
			return domain.Conflict("teamId", "team is already marked NO_ENTRY for this event").Because(ErrMedalDuplicate)
		}
		return domain.Conflict("", "%s", pgErr.Message)
	case pgerrcode.ForeignKeyViolation:
		switch pgErr.ConstraintName {
		case fkMedalsTeam:
			return domain.NotFound("teamId", "team not found").Because(ErrTeamNotFound)
		case fkMedalsEvent:
			return domain.NotFound("eventId", "event not found").Because(ErrEventNotFound)
		case fkEventsCategory:
			return domain.NotFound("categoryId", "category not found").Because(ErrCategoryNotFound)
		}
		return domain.Conflict("", "%s", pgErr.Message)
	case pgerrcode.CheckViolation:
		return domain.Validation("", "%s", pgErr.Message)
	}

	return domain.Storage(fmt.Errorf("%s: %w", pgErr.Code, err))
}
