package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietanh2810/medal-board-api/internal/domain"
	"github.com/vietanh2810/medal-board-api/internal/eventbus"
	"github.com/vietanh2810/medal-board-api/internal/repository/cache"
)

func intPtr(v int) *int { return &v }

type harness struct {
	store      *fakeStore
	pub        *recordingPublisher
	settings   *SettingsService
	roster     *RosterService
	ledger     *LedgerService
	scoreboard *ScoreboardService
	submission *SubmissionService
}

// newHarness wires the services the way the server does, with a real bus so
// cache invalidation happens before writes return.
func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	bus := eventbus.New()
	t.Cleanup(func() {
		cancel()
		_ = bus.Close()
	})

	h := &harness{store: newFakeStore(), pub: &recordingPublisher{}}
	pub := multiPublisher{bus, h.pub}

	h.scoreboard = NewScoreboardService(h.store, h.store, cache.NewMemoryCache(time.Minute), nil)
	require.NoError(t, bus.Subscribe(ctx, "scoreboard-cache", h.scoreboard.Invalidate, eventbus.Topics...))

	h.settings = NewSettingsService(h.store, pub)
	h.roster = NewRosterService(h.store, pub, nil)
	h.ledger = NewLedgerService(h.store, h.store, h.settings, pub, nil)
	h.submission = NewSubmissionService(h.store, h.store, h.store, h.scoreboard, pub, nil, domain.DefaultMaxNonWinnerUnits)
	return h
}

type multiPublisher []ChangePublisher

func (m multiPublisher) Publish(ctx context.Context, c eventbus.Change) error {
	for _, p := range m {
		if err := p.Publish(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func totals(standings []domain.Standing) map[uint]int {
	out := make(map[uint]int, len(standings))
	for _, s := range standings {
		out[s.TeamID] = s.TotalPoints
	}
	return out
}

func TestSettingsService(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	got, err := h.settings.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, got.GoldPoints)

	updated, err := h.settings.Update(ctx, domain.SettingsPatch{SilverPoints: intPtr(8)})
	require.NoError(t, err)
	assert.Equal(t, 8, updated.SilverPoints)
	assert.Equal(t, 10, updated.GoldPoints)
	assert.Equal(t, []string{eventbus.TopicSettings}, h.pub.topics())

	_, err = h.settings.Update(ctx, domain.SettingsPatch{GoldPoints: intPtr(-1)})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = h.settings.Update(ctx, domain.SettingsPatch{NoEntryPoints: intPtr(2)})
	assert.ErrorIs(t, err, domain.ErrValidation)

	points, err := h.settings.PointsFor(ctx, domain.MedalSilver)
	require.NoError(t, err)
	assert.Equal(t, 8, points)
	points, err = h.settings.PointsFor(ctx, domain.MedalNoEntry)
	require.NoError(t, err)
	assert.Equal(t, 0, points)
}

func TestRosterServiceTeams(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	red, err := h.roster.CreateTeam(ctx, domain.Team{Name: "  Red ", Color: "#FF0000"})
	require.NoError(t, err)
	assert.Equal(t, "Red", red.Name)

	_, err = h.roster.CreateTeam(ctx, domain.Team{Name: "Red"})
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.ErrorIs(t, err, ErrTeamExists)

	_, err = h.roster.CreateTeam(ctx, domain.Team{Name: "Blue", Color: "blue"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	renamed, err := h.roster.UpdateTeam(ctx, red.ID, domain.TeamPatch{Name: strPtr("Crimson")})
	require.NoError(t, err)
	assert.Equal(t, "Crimson", renamed.Name)

	_, err = h.roster.GetTeam(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, err, ErrTeamNotFound)

	require.NoError(t, h.roster.DeleteTeam(ctx, red.ID))
	assert.ErrorIs(t, h.roster.DeleteTeam(ctx, red.ID), domain.ErrNotFound)

	for _, topic := range h.pub.topics() {
		assert.Equal(t, eventbus.TopicRoster, topic)
	}
	assert.Len(t, h.pub.topics(), 3)
}

func strPtr(s string) *string { return &s }

func TestRosterServiceEvents(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	category, err := h.roster.CreateCategory(ctx, domain.Category{Name: "Track"})
	require.NoError(t, err)

	_, err = h.roster.CreateEvent(ctx, domain.Event{Name: "100m", CategoryID: 999})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	event, err := h.roster.CreateEvent(ctx, domain.Event{Name: "100m", CategoryID: category.ID, Status: domain.EventCompleted})
	require.NoError(t, err)
	assert.Equal(t, domain.EventPending, event.Status)

	completed, err := h.roster.SetEventStatus(ctx, event.ID, domain.EventCompleted)
	require.NoError(t, err)
	assert.True(t, completed.IsCompleted())

	published := len(h.pub.topics())
	_, err = h.roster.SetEventStatus(ctx, event.ID, domain.EventCompleted)
	require.NoError(t, err)
	assert.Len(t, h.pub.topics(), published, "same-status write publishes nothing")

	_, err = h.roster.SetEventStatus(ctx, event.ID, "DONE")
	assert.ErrorIs(t, err, domain.ErrValidation)

	reopened, err := h.roster.SetEventStatus(ctx, event.ID, domain.EventPending)
	require.NoError(t, err)
	assert.False(t, reopened.IsCompleted())

	day := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	updated, err := h.roster.UpdateEvent(ctx, event.ID, domain.EventPatch{EventDate: &day})
	require.NoError(t, err)
	require.NotNil(t, updated.EventDate)

	assert.ErrorIs(t, h.roster.DeleteCategory(ctx, category.ID), ErrCategoryInUse)
	require.NoError(t, h.roster.DeleteEvent(ctx, event.ID))
	require.NoError(t, h.roster.DeleteCategory(ctx, category.ID))

	size, err := h.roster.RefreshRosterSize(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, size["events"])
}

func TestLedgerServiceRecord(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	event := h.store.addEvent("100m")
	red, blue := h.store.addTeam("Red"), h.store.addTeam("Blue")

	gold, err := h.ledger.Record(ctx, MedalRequest{EventID: event.ID, TeamID: red.ID, MedalType: domain.MedalGold})
	require.NoError(t, err)
	assert.Equal(t, 10, gold.Points)

	custom, err := h.ledger.Record(ctx, MedalRequest{EventID: event.ID, TeamID: blue.ID, MedalType: domain.MedalSilver, Points: intPtr(9)})
	require.NoError(t, err)
	assert.Equal(t, 9, custom.Points)

	_, err = h.ledger.Record(ctx, MedalRequest{EventID: event.ID, TeamID: blue.ID, MedalType: domain.MedalGold})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = h.ledger.Record(ctx, MedalRequest{EventID: event.ID, TeamID: blue.ID, MedalType: domain.MedalNoEntry, Points: intPtr(1)})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = h.ledger.Record(ctx, MedalRequest{EventID: event.ID, TeamID: blue.ID, MedalType: domain.MedalBronze, Points: intPtr(-5)})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = h.ledger.Record(ctx, MedalRequest{EventID: event.ID, TeamID: blue.ID, MedalType: "PLATINUM"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = h.ledger.Record(ctx, MedalRequest{EventID: event.ID, TeamID: 999, MedalType: domain.MedalBronze})
	assert.ErrorIs(t, err, ErrTeamNotFound)

	_, err = h.ledger.Record(ctx, MedalRequest{EventID: 999, TeamID: red.ID, MedalType: domain.MedalBronze})
	assert.ErrorIs(t, err, ErrEventNotFound)

	medals, err := h.ledger.List(ctx, domain.MedalFilter{TeamID: &red.ID})
	require.NoError(t, err)
	assert.Len(t, medals, 1)
}

func TestLedgerDeleteDecreasesStanding(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	event := h.store.addEvent("100m")
	red, blue := h.store.addTeam("Red"), h.store.addTeam("Blue")

	gold, err := h.ledger.Record(ctx, MedalRequest{EventID: event.ID, TeamID: red.ID, MedalType: domain.MedalGold})
	require.NoError(t, err)
	_, err = h.ledger.Record(ctx, MedalRequest{EventID: event.ID, TeamID: blue.ID, MedalType: domain.MedalSilver})
	require.NoError(t, err)

	before, err := h.scoreboard.Standings(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[uint]int{red.ID: 10, blue.ID: 7}, totals(before))

	require.NoError(t, h.ledger.Delete(ctx, gold.ID))

	after, err := h.scoreboard.Standings(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[uint]int{red.ID: 0, blue.ID: 7}, totals(after))

	err = h.ledger.Delete(ctx, gold.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, err, ErrMedalNotFound)
}

func TestSubmissionScenario(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	event := h.store.addEvent("100m")
	a, b, c := h.store.addTeam("A"), h.store.addTeam("B"), h.store.addTeam("C")

	result, err := h.submission.Submit(ctx, domain.ResultSubmission{
		EventID:      event.ID,
		GoldTeamID:   &a.ID,
		SilverTeamID: &b.ID,
		BronzeTeamID: &c.ID,
		NonWinners:   map[uint]int{a.ID: 2},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.EventCompleted, result.Event.Status)
	require.Len(t, result.Medals, 5)
	assert.Equal(t, map[uint]int{a.ID: 12, b.ID: 7, c.ID: 5}, totals(result.Standings))
	assert.Equal(t, a.ID, result.Standings[0].TeamID)

	eventResult, err := h.scoreboard.EventResult(ctx, event.ID)
	require.NoError(t, err)
	require.NotNil(t, eventResult.GoldTeam)
	assert.Equal(t, "A", eventResult.GoldTeam.Name)
	assert.Equal(t, "100m category", eventResult.Category)

	_, err = h.submission.Submit(ctx, domain.ResultSubmission{EventID: event.ID, NonWinners: map[uint]int{c.ID: 1}})
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.ErrorIs(t, err, ErrEventCompleted)
}

func TestSubmissionCapsNonWinnerUnits(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	event := h.store.addEvent("100m")
	a := h.store.addTeam("A")

	_, err := h.submission.Submit(ctx, domain.ResultSubmission{
		EventID:    event.ID,
		NonWinners: map[uint]int{a.ID: 50_000_000},
	})
	var se *domain.SubmissionError
	require.ErrorAs(t, err, &se)
	assert.ErrorIs(t, err, domain.ErrValidation)
	require.Len(t, se.Items, 1)
	assert.Equal(t, fmt.Sprintf("nonWinners.%d", a.ID), se.Items[0].Field)

	medals, err := h.ledger.List(ctx, domain.MedalFilter{})
	require.NoError(t, err)
	assert.Empty(t, medals)
}

type failingStandings struct{}

func (failingStandings) Standings(context.Context) ([]domain.Standing, error) {
	return nil, domain.Storage(errors.New("connection reset"))
}

func TestSubmissionSucceedsWhenStandingsReadFails(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	event := h.store.addEvent("100m")
	a := h.store.addTeam("A")

	submission := NewSubmissionService(h.store, h.store, h.store, failingStandings{}, h.pub, nil, domain.DefaultMaxNonWinnerUnits)
	result, err := submission.Submit(ctx, domain.ResultSubmission{EventID: event.ID, GoldTeamID: &a.ID})
	require.NoError(t, err)

	assert.Equal(t, domain.EventCompleted, result.Event.Status)
	assert.Len(t, result.Medals, 1)
	assert.NotNil(t, result.Standings)
	assert.Empty(t, result.Standings)

	stored, err := h.ledger.List(ctx, domain.MedalFilter{EventID: &event.ID})
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestSubmissionIsAllOrNothing(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	event := h.store.addEvent("100m")
	a, b := h.store.addTeam("A"), h.store.addTeam("B")

	// A gold recorded by hand makes the submitted gold collide.
	_, err := h.ledger.Record(ctx, MedalRequest{EventID: event.ID, TeamID: a.ID, MedalType: domain.MedalGold})
	require.NoError(t, err)

	_, err = h.submission.Submit(ctx, domain.ResultSubmission{
		EventID:      event.ID,
		GoldTeamID:   &b.ID,
		SilverTeamID: &a.ID,
		NonWinners:   map[uint]int{b.ID: 1},
	})
	var se *domain.SubmissionError
	require.ErrorAs(t, err, &se)
	assert.ErrorIs(t, err, domain.ErrConflict)
	require.Len(t, se.Items, 1)
	assert.Equal(t, 0, *se.Items[0].Index)

	medals, err := h.ledger.List(ctx, domain.MedalFilter{EventID: &event.ID})
	require.NoError(t, err)
	assert.Len(t, medals, 1)

	stored, err := h.roster.GetEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EventPending, stored.Status)
}

func TestSubmissionRejectsBeforeStorage(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	event := h.store.addEvent("100m")
	a := h.store.addTeam("A")

	_, err := h.submission.Submit(ctx, domain.ResultSubmission{EventID: event.ID})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = h.submission.Submit(ctx, domain.ResultSubmission{EventID: event.ID, GoldTeamID: &a.ID, BronzeTeamID: &a.ID})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = h.submission.Submit(ctx, domain.ResultSubmission{EventID: 999, GoldTeamID: &a.ID})
	assert.ErrorIs(t, err, ErrEventNotFound)

	_, err = h.submission.Submit(ctx, domain.ResultSubmission{
		EventID:        event.ID,
		GoldTeamID:     &a.ID,
		NoEntryTeamIDs: []uint{41, 42},
	})
	var se *domain.SubmissionError
	require.ErrorAs(t, err, &se)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	require.Len(t, se.Items, 2)
	assert.Equal(t, uint(41), se.Items[0].TeamID)
	assert.Equal(t, "noEntryTeamIds", se.Items[0].Field)

	medals, err := h.ledger.List(ctx, domain.MedalFilter{})
	require.NoError(t, err)
	assert.Empty(t, medals)
}

func TestSettingsChangeKeepsSnapshots(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	first, second := h.store.addEvent("100m"), h.store.addEvent("200m")
	a := h.store.addTeam("A")

	_, err := h.submission.Submit(ctx, domain.ResultSubmission{EventID: first.ID, GoldTeamID: &a.ID})
	require.NoError(t, err)

	_, err = h.settings.Update(ctx, domain.SettingsPatch{GoldPoints: intPtr(15)})
	require.NoError(t, err)

	result, err := h.submission.Submit(ctx, domain.ResultSubmission{EventID: second.ID, GoldTeamID: &a.ID})
	require.NoError(t, err)
	assert.Equal(t, 25, totals(result.Standings)[a.ID])

	medals, err := h.ledger.List(ctx, domain.MedalFilter{EventID: &first.ID})
	require.NoError(t, err)
	require.Len(t, medals, 1)
	assert.Equal(t, 10, medals[0].Points)
}

func TestScoreboardCacheInvalidatedByWrites(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	event := h.store.addEvent("100m")
	a := h.store.addTeam("A")

	empty, err := h.scoreboard.Standings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, totals(empty)[a.ID])

	_, err = h.ledger.Record(ctx, MedalRequest{EventID: event.ID, TeamID: a.ID, MedalType: domain.MedalBronze})
	require.NoError(t, err)

	standings, err := h.scoreboard.Standings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, totals(standings)[a.ID])

	results, err := h.scoreboard.EventResults(ctx)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NotNil(t, results[0].BronzeTeam)
	assert.Nil(t, results[0].GoldTeam)
}

func TestScoreboardListenersSeeFreshStandings(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	event := h.store.addEvent("100m")
	a := h.store.addTeam("A")

	pushed := make(chan map[uint]int, 4)
	h.scoreboard.OnInvalidated(func(ctx context.Context, _ eventbus.Change) error {
		standings, err := h.scoreboard.Standings(ctx)
		if err != nil {
			return err
		}
		pushed <- totals(standings)
		return nil
	})

	primed, err := h.scoreboard.Standings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, totals(primed)[a.ID])

	gold, err := h.ledger.Record(ctx, MedalRequest{EventID: event.ID, TeamID: a.ID, MedalType: domain.MedalGold})
	require.NoError(t, err)
	require.Len(t, pushed, 1)
	assert.Equal(t, 10, (<-pushed)[a.ID])

	err = h.ledger.Delete(ctx, gold.ID)
	require.NoError(t, err)
	require.Len(t, pushed, 1)
	assert.Equal(t, 0, (<-pushed)[a.ID])
}

func TestScoreboardRefreshSkipsListeners(t *testing.T) {
	h := newHarness(t)
	calls := 0
	h.scoreboard.OnInvalidated(func(context.Context, eventbus.Change) error {
		calls++
		return nil
	})

	_, err := h.scoreboard.Refresh(context.Background())
	require.NoError(t, err)
	assert.Zero(t, calls)
}

func TestScoreboardStorageFailure(t *testing.T) {
	h := newHarness(t)
	h.store.fail = domain.Storage(errors.New("connection refused"))

	_, err := h.scoreboard.Standings(context.Background())
	assert.ErrorIs(t, err, domain.ErrStorage)
}

func TestScoreboardAudit(t *testing.T) {
	h := newHarness(t)
	event := h.store.addEvent("100m")
	a := h.store.addTeam("A")
	h.store.medals = []domain.Medal{
		{ID: 100, EventID: event.ID, TeamID: a.ID, MedalType: domain.MedalNoEntry},
		{ID: 101, EventID: event.ID, TeamID: a.ID, MedalType: domain.MedalGold, Points: 10},
	}

	violations, err := h.scoreboard.Audit(context.Background())
	require.NoError(t, err)
	require.Len(t, violations, 1)
	assert.Equal(t, uint(101), violations[0].MedalID)
}

func TestAuthService(t *testing.T) {
	_, err := NewAuthService("admin", "short1")
	assert.ErrorIs(t, err, ErrWeakPassword)
	_, err = NewAuthService("admin", "lettersonly")
	assert.ErrorIs(t, err, ErrWeakPassword)

	svc, err := NewAuthService("admin", "medals2026")
	require.NoError(t, err)

	subject, err := svc.Login(context.Background(), "admin", "medals2026")
	require.NoError(t, err)
	assert.Equal(t, "admin", subject)

	_, err = svc.Login(context.Background(), "admin", "medals2027")
	assert.ErrorIs(t, err, ErrWrongCredentials)
	_, err = svc.Login(context.Background(), "root", "medals2026")
	assert.ErrorIs(t, err, ErrWrongCredentials)
}
