package dao

import (
	"context"
	"time"

	"github.com/jackc/pgerrcode"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vietanh2810/medal-board-api/internal/domain"
)

type Category struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"uniqueIndex:uni_categories_name;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

type Team struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"uniqueIndex:uni_teams_name;not null"`
	Icon      string
	Color     string    `gorm:"type:varchar(7)"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type Event struct {
	ID         uint     `gorm:"primaryKey"`
	Name       string   `gorm:"not null"`
	CategoryID uint     `gorm:"not null;index"`
	Category   Category `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
	EventDate  *time.Time
	Status     string    `gorm:"type:varchar(16);not null;default:'PENDING';check:chk_events_status,status IN ('PENDING','COMPLETED')"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

type RosterDAO struct {
	db *gorm.DB
}

func NewRosterDAO(db *gorm.DB) *RosterDAO {
	return &RosterDAO{
		db: db,
	}
}

func categoryNotFound(id uint) error {
	return domain.NotFound("categoryId", "category %d not found", id).Because(ErrCategoryNotFound)
}

func teamNotFound(id uint) error {
	return domain.NotFound("teamId", "team %d not found", id).Because(ErrTeamNotFound)
}

func eventNotFound(id uint) error {
	return domain.NotFound("eventId", "event %d not found", id).Because(ErrEventNotFound)
}

func medalNotFound(id uint) error {
	return domain.NotFound("id", "medal %d not found", id).Because(ErrMedalNotFound)
}

// Categories

func (d *RosterDAO) InsertCategory(ctx context.Context, category Category) (Category, error) {
	if err := d.db.WithContext(ctx).Create(&category).Error; err != nil {
		return Category{}, translate(err)
	}

	return category, nil
}

func (d *RosterDAO) FindCategories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := d.db.WithContext(ctx).Order("name, id").Find(&categories).Error; err != nil {
		return nil, translate(err)
	}

	return categories, nil
}

func (d *RosterDAO) FindCategoryByID(ctx context.Context, id uint) (Category, error) {
	var category Category
	if err := d.db.WithContext(ctx).First(&category, id).Error; err != nil {
		if isNotFound(err) {
			return Category{}, categoryNotFound(id)
		}
		return Category{}, translate(err)
	}

	return category, nil
}

func (d *RosterDAO) DeleteCategory(ctx context.Context, id uint) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var category Category
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&category, id).Error; err != nil {
			if isNotFound(err) {
				return categoryNotFound(id)
			}
			return translate(err)
		}

		var n int64
		if err := tx.Model(&Event{}).Where("category_id = ?", id).Count(&n).Error; err != nil {
			return translate(err)
		}
		if n > 0 {
			return domain.Conflict("id", "category %d is used by %d event(s)", id, n).Because(ErrCategoryInUse)
		}

		if err := tx.Delete(&Category{}, id).Error; err != nil {
			return inUse(err, domain.Conflict("id", "category %d is used by events", id).Because(ErrCategoryInUse))
		}
		return nil
	})
}

// Teams

func (d *RosterDAO) InsertTeam(ctx context.Context, team Team) (Team, error) {
	if err := d.db.WithContext(ctx).Create(&team).Error; err != nil {
		return Team{}, translate(err)
	}

	return team, nil
}

func (d *RosterDAO) FindTeams(ctx context.Context) ([]Team, error) {
	var teams []Team
	if err := d.db.WithContext(ctx).Order("name, id").Find(&teams).Error; err != nil {
		return nil, translate(err)
	}

	return teams, nil
}

func (d *RosterDAO) FindTeamByID(ctx context.Context, id uint) (Team, error) {
	var team Team
	if err := d.db.WithContext(ctx).First(&team, id).Error; err != nil {
		if isNotFound(err) {
			return Team{}, teamNotFound(id)
		}
		return Team{}, translate(err)
	}

	return team, nil
}

// FindTeamsByIDs returns the teams found; missing ids are simply absent.
func (d *RosterDAO) FindTeamsByIDs(ctx context.Context, ids []uint) ([]Team, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var teams []Team
	if err := d.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&teams).Error; err != nil {
		return nil, translate(err)
	}

	return teams, nil
}

func (d *RosterDAO) UpdateTeam(ctx context.Context, team Team) (Team, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current Team
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&current, team.ID).Error; err != nil {
			if isNotFound(err) {
				return teamNotFound(team.ID)
			}
			return translate(err)
		}

		team.CreatedAt = current.CreatedAt
		if err := tx.Save(&team).Error; err != nil {
			return translate(err)
		}
		return nil
	})
	if err != nil {
		return Team{}, err
	}

	return team, nil
}

func (d *RosterDAO) DeleteTeam(ctx context.Context, id uint) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var team Team
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&team, id).Error; err != nil {
			if isNotFound(err) {
				return teamNotFound(id)
			}
			return translate(err)
		}

		var n int64
		if err := tx.Model(&Medal{}).Where("team_id = ?", id).Count(&n).Error; err != nil {
			return translate(err)
		}
		if n > 0 {
			return domain.Conflict("id", "team %d is referenced by %d medal(s)", id, n).Because(ErrTeamInUse)
		}

		if err := tx.Delete(&Team{}, id).Error; err != nil {
			return inUse(err, domain.Conflict("id", "team %d is referenced by medals", id).Because(ErrTeamInUse))
		}
		return nil
	})
}

// Events

func (d *RosterDAO) InsertEvent(ctx context.Context, event Event) (Event, error) {
	if err := d.db.WithContext(ctx).Omit(clause.Associations).Create(&event).Error; err != nil {
		return Event{}, translate(err)
	}

	return event, nil
}

func (d *RosterDAO) FindEvents(ctx context.Context) ([]Event, error) {
	var events []Event
	if err := d.db.WithContext(ctx).Order("event_date NULLS LAST, id").Find(&events).Error; err != nil {
		return nil, translate(err)
	}

	return events, nil
}

func (d *RosterDAO) FindEventByID(ctx context.Context, id uint) (Event, error) {
	var event Event
	if err := d.db.WithContext(ctx).First(&event, id).Error; err != nil {
		if isNotFound(err) {
			return Event{}, eventNotFound(id)
		}
		return Event{}, translate(err)
	}

	return event, nil
}

// UpdateEvent applies fn to the locked row and saves the result.
func (d *RosterDAO) UpdateEvent(ctx context.Context, id uint, fn func(*Event) error) (Event, error) {
	var event Event
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&event, id).Error; err != nil {
			if isNotFound(err) {
				return eventNotFound(id)
			}
			return translate(err)
		}

		if err := fn(&event); err != nil {
			return err
		}

		if err := tx.Omit(clause.Associations).Save(&event).Error; err != nil {
			return translate(err)
		}
		return nil
	})
	if err != nil {
		return Event{}, err
	}

	return event, nil
}

func (d *RosterDAO) DeleteEvent(ctx context.Context, id uint) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event Event
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&event, id).Error; err != nil {
			if isNotFound(err) {
				return eventNotFound(id)
			}
			return translate(err)
		}

		var n int64
		if err := tx.Model(&Medal{}).Where("event_id = ?", id).Count(&n).Error; err != nil {
			return translate(err)
		}
		if n > 0 {
			return domain.Conflict("id", "event %d is referenced by %d medal(s)", id, n).Because(ErrEventInUse)
		}

		if err := tx.Delete(&Event{}, id).Error; err != nil {
			return inUse(err, domain.Conflict("id", "event %d is referenced by medals", id).Because(ErrEventInUse))
		}
		return nil
	})
}

// CountRoster returns the number of teams, events and categories.
func (d *RosterDAO) CountRoster(ctx context.Context) (teams, events, categories int64, err error) {
	db := d.db.WithContext(ctx)
	if err = db.Model(&Team{}).Count(&teams).Error; err != nil {
		return 0, 0, 0, translate(err)
	}
	if err = db.Model(&Event{}).Count(&events).Error; err != nil {
		return 0, 0, 0, translate(err)
	}
	if err = db.Model(&Category{}).Count(&categories).Error; err != nil {
		return 0, 0, 0, translate(err)
	}

	return teams, events, categories, nil
}

// inUse reports a foreign key violation raised by a delete as conflict.
func inUse(err error, conflict error) error {
	if pgErr, ok := pgError(err); ok && pgErr.Code == pgerrcode.ForeignKeyViolation {
		return conflict
	}
	return translate(err)
}
