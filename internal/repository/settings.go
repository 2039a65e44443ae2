package repository

import (
	"context"
	"fmt"

	"github.com/vietanh2810/medal-board-api/internal/domain"
	"github.com/vietanh2810/medal-board-api/internal/repository/dao"
)

type SettingsDAO interface {
	Get(ctx context.Context) (dao.ScoreSettings, error)
	Update(ctx context.Context, fn func(*dao.ScoreSettings) error) (dao.ScoreSettings, error)
}

type SettingsRepository struct {
	dao SettingsDAO
}

func NewSettingsRepository(dao SettingsDAO) *SettingsRepository {
	return &SettingsRepository{
		dao: dao,
	}
}

// SettingsDefaults converts domain defaults into the row used to seed the table.
func SettingsDefaults(s domain.ScoreSettings) dao.ScoreSettings {
	return settingsToDAO(s)
}

func (r *SettingsRepository) Get(ctx context.Context) (domain.ScoreSettings, error) {
	found, err := r.dao.Get(ctx)
	if err != nil {
		return domain.ScoreSettings{}, fmt.Errorf("r.dao.Get -> %w", err)
	}

	return settingsToDomain(found), nil
}

// Update merges patch into the stored settings under a row lock.
func (r *SettingsRepository) Update(ctx context.Context, patch domain.SettingsPatch) (domain.ScoreSettings, error) {
	updated, err := r.dao.Update(ctx, func(row *dao.ScoreSettings) error {
		next, err := settingsToDomain(*row).Apply(patch)
		if err != nil {
			return err
		}

		merged := settingsToDAO(next)
		row.GoldPoints = merged.GoldPoints
		row.SilverPoints = merged.SilverPoints
		row.BronzePoints = merged.BronzePoints
		row.NonWinnerPoints = merged.NonWinnerPoints
		return nil
	})
	if err != nil {
		return domain.ScoreSettings{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return settingsToDomain(updated), nil
}

func settingsToDAO(s domain.ScoreSettings) dao.ScoreSettings {
	return dao.ScoreSettings{
		GoldPoints:      s.GoldPoints,
		SilverPoints:    s.SilverPoints,
		BronzePoints:    s.BronzePoints,
		NonWinnerPoints: s.NonWinnerPoints,
		UpdatedAt:       s.UpdatedAt,
	}
}

func settingsToDomain(s dao.ScoreSettings) domain.ScoreSettings {
	return domain.ScoreSettings{
		GoldPoints:      s.GoldPoints,
		SilverPoints:    s.SilverPoints,
		BronzePoints:    s.BronzePoints,
		NonWinnerPoints: s.NonWinnerPoints,
		NoEntryPoints:   domain.NoEntryPoints,
		UpdatedAt:       s.UpdatedAt,
	}
}
