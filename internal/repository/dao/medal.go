package dao

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const statusCompleted = "COMPLETED"

type Medal struct {
	ID        uint      `gorm:"primaryKey"`
	EventID   uint      `gorm:"not null;index"`
	Event     Event     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
	TeamID    uint      `gorm:"not null;index"`
	Team      Team      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
	MedalType string    `gorm:"type:varchar(16);not null;check:chk_medals_medal_type,medal_type IN ('GOLD','SILVER','BRONZE','NON_WINNER','NO_ENTRY')"`
	Points    int       `gorm:"not null;check:chk_medals_points,points >= 0"`
	CreatedAt time.Time `gorm:"not null"`
}

// LedgerCheck decides, with the event row locked, whether the pending rows may
// be written. existing holds every medal already recorded for the event.
type LedgerCheck func(event Event, existing []Medal) error

type MedalFilter struct {
	EventID *uint
	TeamID  *uint
}

type LedgerDAO struct {
	db *gorm.DB
}

func NewLedgerDAO(db *gorm.DB) *LedgerDAO {
	return &LedgerDAO{
		db: db,
	}
}

// lockEvent takes a row lock on the event so concurrent writers for the same
// event are serialized, then loads its medals.
func lockEvent(tx *gorm.DB, eventID uint) (Event, []Medal, error) {
	var event Event
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&event, eventID).Error; err != nil {
		if isNotFound(err) {
			return Event{}, nil, eventNotFound(eventID)
		}
		return Event{}, nil, translate(err)
	}

	var existing []Medal
	if err := tx.Where("event_id = ?", eventID).Order("id").Find(&existing).Error; err != nil {
		return Event{}, nil, translate(err)
	}

	return event, existing, nil
}

func (d *LedgerDAO) Insert(ctx context.Context, medal Medal, check LedgerCheck) (Medal, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		event, existing, err := lockEvent(tx, medal.EventID)
		if err != nil {
			return err
		}

		if err = check(event, existing); err != nil {
			return err
		}

		if err = tx.Omit(clause.Associations).Create(&medal).Error; err != nil {
			return translate(err)
		}
		return nil
	})
	if err != nil {
		return Medal{}, err
	}

	return medal, nil
}

// Submit writes medals and marks the event COMPLETED in one transaction.
// Nothing is written when check or any insert fails.
func (d *LedgerDAO) Submit(ctx context.Context, eventID uint, medals []Medal, check LedgerCheck) (Event, []Medal, error) {
	var event Event
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var (
			existing []Medal
			err      error
		)
		event, existing, err = lockEvent(tx, eventID)
		if err != nil {
			return err
		}

		if err = check(event, existing); err != nil {
			return err
		}

		if len(medals) > 0 {
			if err = tx.Omit(clause.Associations).Create(&medals).Error; err != nil {
				return translate(err)
			}
		}

		event.Status = statusCompleted
		if err = tx.Omit(clause.Associations).Save(&event).Error; err != nil {
			return translate(err)
		}
		return nil
	})
	if err != nil {
		return Event{}, nil, err
	}

	return event, medals, nil
}

func (d *LedgerDAO) Find(ctx context.Context, filter MedalFilter) ([]Medal, error) {
	q := d.db.WithContext(ctx).Order("event_id, id")
	if filter.EventID != nil {
		q = q.Where("event_id = ?", *filter.EventID)
	}
	if filter.TeamID != nil {
		q = q.Where("team_id = ?", *filter.TeamID)
	}

	var medals []Medal
	if err := q.Find(&medals).Error; err != nil {
		return nil, translate(err)
	}

	return medals, nil
}

func (d *LedgerDAO) FindByID(ctx context.Context, id uint) (Medal, error) {
	var medal Medal
	if err := d.db.WithContext(ctx).First(&medal, id).Error; err != nil {
		if isNotFound(err) {
			return Medal{}, medalNotFound(id)
		}
		return Medal{}, translate(err)
	}

	return medal, nil
}

// Delete removes the medal and returns the deleted row.
func (d *LedgerDAO) Delete(ctx context.Context, id uint) (Medal, error) {
	var medals []Medal
	result := d.db.WithContext(ctx).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		Delete(&medals)
	if result.Error != nil {
		return Medal{}, translate(result.Error)
	}
	if result.RowsAffected == 0 || len(medals) == 0 {
		return Medal{}, medalNotFound(id)
	}

	return medals[0], nil
}
