package dao

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const settingsID = 1

// ScoreSettings is a single row table. NO_ENTRY points are fixed at zero and
// not stored.
type ScoreSettings struct {
	ID              uint      `gorm:"primaryKey"`
	GoldPoints      int       `gorm:"not null;check:chk_score_settings_gold,gold_points >= 0"`
	SilverPoints    int       `gorm:"not null;check:chk_score_settings_silver,silver_points >= 0"`
	BronzePoints    int       `gorm:"not null;check:chk_score_settings_bronze,bronze_points >= 0"`
	NonWinnerPoints int       `gorm:"not null;check:chk_score_settings_non_winner,non_winner_points >= 0"`
	UpdatedAt       time.Time `gorm:"not null"`
}

type SettingsDAO struct {
	db       *gorm.DB
	defaults ScoreSettings
}

// NewSettingsDAO seeds the row with defaults the first time it is read.
func NewSettingsDAO(db *gorm.DB, defaults ScoreSettings) *SettingsDAO {
	defaults.ID = settingsID
	return &SettingsDAO{
		db:       db,
		defaults: defaults,
	}
}

func (d *SettingsDAO) Get(ctx context.Context) (ScoreSettings, error) {
	return get(d.db.WithContext(ctx), d.defaults)
}

func get(tx *gorm.DB, defaults ScoreSettings) (ScoreSettings, error) {
	var settings ScoreSettings
	err := tx.First(&settings, settingsID).Error
	if err == nil {
		return settings, nil
	}
	if !isNotFound(err) {
		return ScoreSettings{}, translate(err)
	}

	// Two first readers may race here; the loser's insert is a no-op.
	seed := defaults
	if err = tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return ScoreSettings{}, translate(err)
	}
	if err = tx.First(&settings, settingsID).Error; err != nil {
		return ScoreSettings{}, translate(err)
	}

	return settings, nil
}

// Update applies fn to the locked row. Concurrent updates are serialized and
// the last one wins.
func (d *SettingsDAO) Update(ctx context.Context, fn func(*ScoreSettings) error) (ScoreSettings, error) {
	var settings ScoreSettings
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := get(tx, d.defaults); err != nil {
			return err
		}

		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&settings, settingsID).Error; err != nil {
			return translate(err)
		}

		if err := fn(&settings); err != nil {
			return err
		}

		if err := tx.Save(&settings).Error; err != nil {
			return translate(err)
		}
		return nil
	})
	if err != nil {
		return ScoreSettings{}, err
	}

	return settings, nil
}
