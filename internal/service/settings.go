package service

import (
	"context"
	"fmt"

	"github.com/vietanh2810/medal-board-api/internal/domain"
	"github.com/vietanh2810/medal-board-api/internal/eventbus"
)

type SettingsRepository interface {
	Get(ctx context.Context) (domain.ScoreSettings, error)
	Update(ctx context.Context, patch domain.SettingsPatch) (domain.ScoreSettings, error)
}

type SettingsService struct {
	repo SettingsRepository
	pub  ChangePublisher
}

func NewSettingsService(repo SettingsRepository, pub ChangePublisher) *SettingsService {
	return &SettingsService{
		repo: repo,
		pub:  pub,
	}
}

func (s *SettingsService) Get(ctx context.Context) (domain.ScoreSettings, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		return domain.ScoreSettings{}, fmt.Errorf("s.repo.Get -> %w", err)
	}

	return settings, nil
}

// Update merges patch into the stored settings. Medals already recorded keep
// the points they were written with.
func (s *SettingsService) Update(ctx context.Context, patch domain.SettingsPatch) (domain.ScoreSettings, error) {
	updated, err := s.repo.Update(ctx, patch)
	if err != nil {
		return domain.ScoreSettings{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	publish(ctx, s.pub, eventbus.Change{Topic: eventbus.TopicSettings, Action: "settings.updated"})
	return updated, nil
}

// PointsFor resolves the current value for medalType. NO_ENTRY is always 0.
func (s *SettingsService) PointsFor(ctx context.Context, medalType domain.MedalType) (int, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return 0, err
	}

	return settings.PointsFor(medalType), nil
}
