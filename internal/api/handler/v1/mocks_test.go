package v1

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/vietanh2810/medal-board-api/internal/domain"
	"github.com/vietanh2810/medal-board-api/internal/service"
)

type mockAuth struct{ mock.Mock }

func (m *mockAuth) Login(ctx context.Context, username, password string) (string, error) {
	args := m.Called(ctx, username, password)
	return args.String(0), args.Error(1)
}

type mockSettings struct{ mock.Mock }

func (m *mockSettings) Get(ctx context.Context) (domain.ScoreSettings, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.ScoreSettings), args.Error(1)
}

func (m *mockSettings) Update(ctx context.Context, patch domain.SettingsPatch) (domain.ScoreSettings, error) {
	args := m.Called(ctx, patch)
	return args.Get(0).(domain.ScoreSettings), args.Error(1)
}

type mockRoster struct{ mock.Mock }

func (m *mockRoster) CreateCategory(ctx context.Context, c domain.Category) (domain.Category, error) {
	args := m.Called(ctx, c)
	return args.Get(0).(domain.Category), args.Error(1)
}

func (m *mockRoster) ListCategories(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *mockRoster) DeleteCategory(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockRoster) CreateTeam(ctx context.Context, t domain.Team) (domain.Team, error) {
	args := m.Called(ctx, t)
	return args.Get(0).(domain.Team), args.Error(1)
}

func (m *mockRoster) ListTeams(ctx context.Context) ([]domain.Team, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Team), args.Error(1)
}

func (m *mockRoster) GetTeam(ctx context.Context, id uint) (domain.Team, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Team), args.Error(1)
}

func (m *mockRoster) UpdateTeam(ctx context.Context, id uint, patch domain.TeamPatch) (domain.Team, error) {
	args := m.Called(ctx, id, patch)
	return args.Get(0).(domain.Team), args.Error(1)
}

func (m *mockRoster) DeleteTeam(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockRoster) CreateEvent(ctx context.Context, e domain.Event) (domain.Event, error) {
	args := m.Called(ctx, e)
	return args.Get(0).(domain.Event), args.Error(1)
}

func (m *mockRoster) ListEvents(ctx context.Context) ([]domain.Event, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Event), args.Error(1)
}

func (m *mockRoster) GetEvent(ctx context.Context, id uint) (domain.Event, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Event), args.Error(1)
}

func (m *mockRoster) UpdateEvent(ctx context.Context, id uint, patch domain.EventPatch) (domain.Event, error) {
	args := m.Called(ctx, id, patch)
	return args.Get(0).(domain.Event), args.Error(1)
}

func (m *mockRoster) SetEventStatus(ctx context.Context, id uint, status domain.EventStatus) (domain.Event, error) {
	args := m.Called(ctx, id, status)
	return args.Get(0).(domain.Event), args.Error(1)
}

func (m *mockRoster) DeleteEvent(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

type mockLedger struct{ mock.Mock }

func (m *mockLedger) Record(ctx context.Context, req service.MedalRequest) (domain.Medal, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(domain.Medal), args.Error(1)
}

func (m *mockLedger) List(ctx context.Context, filter domain.MedalFilter) ([]domain.Medal, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Medal), args.Error(1)
}

func (m *mockLedger) Get(ctx context.Context, id uint) (domain.Medal, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Medal), args.Error(1)
}

func (m *mockLedger) Delete(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

type mockSubmission struct{ mock.Mock }

func (m *mockSubmission) Submit(ctx context.Context, sub domain.ResultSubmission) (service.SubmissionResult, error) {
	args := m.Called(ctx, sub)
	return args.Get(0).(service.SubmissionResult), args.Error(1)
}

type mockScoreboard struct{ mock.Mock }

func (m *mockScoreboard) Standings(ctx context.Context) ([]domain.Standing, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Standing), args.Error(1)
}

func (m *mockScoreboard) EventResults(ctx context.Context) ([]domain.EventResult, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.EventResult), args.Error(1)
}

func (m *mockScoreboard) EventResult(ctx context.Context, id uint) (domain.EventResult, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.EventResult), args.Error(1)
}
