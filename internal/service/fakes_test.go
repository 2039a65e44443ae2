package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vietanh2810/medal-board-api/internal/domain"
	"github.com/vietanh2810/medal-board-api/internal/eventbus"
	"github.com/vietanh2810/medal-board-api/internal/repository"
)

// fakeStore keeps roster, ledger and settings in memory with the same error
// contract as the gorm-backed repositories.
type fakeStore struct {
	mu         sync.Mutex
	nextID     uint
	categories map[uint]domain.Category
	teams      map[uint]domain.Team
	events     map[uint]domain.Event
	medals     []domain.Medal
	settings   domain.ScoreSettings
	fail       error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		categories: make(map[uint]domain.Category),
		teams:      make(map[uint]domain.Team),
		events:     make(map[uint]domain.Event),
		settings:   domain.DefaultScoreSettings(),
	}
}

func (f *fakeStore) id() uint {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) addTeam(name string) domain.Team {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := domain.Team{ID: f.id(), Name: name}
	f.teams[t.ID] = t
	return t
}

func (f *fakeStore) addEvent(name string) domain.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := domain.Category{ID: f.id(), Name: name + " category"}
	f.categories[c.ID] = c
	e := domain.Event{ID: f.id(), Name: name, CategoryID: c.ID, Status: domain.EventPending}
	f.events[e.ID] = e
	return e
}

func teamNotFound(id uint) error {
	return domain.NotFound("teamId", "team %d not found", id).Because(repository.ErrTeamNotFound)
}

func eventNotFound(id uint) error {
	return domain.NotFound("eventId", "event %d not found", id).Because(repository.ErrEventNotFound)
}

// Settings

func (f *fakeStore) Get(context.Context) (domain.ScoreSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return domain.ScoreSettings{}, f.fail
	}
	return f.settings, nil
}

func (f *fakeStore) Update(_ context.Context, patch domain.SettingsPatch) (domain.ScoreSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	next, err := f.settings.Apply(patch)
	if err != nil {
		return domain.ScoreSettings{}, err
	}
	next.UpdatedAt = time.Now()
	f.settings = next
	return next, nil
}

// Roster

func (f *fakeStore) CreateCategory(_ context.Context, c domain.Category) (domain.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.categories {
		if existing.Name == c.Name {
			return domain.Category{}, domain.Conflict("name", "category name already exists").Because(repository.ErrCategoryExists)
		}
	}
	c.ID = f.id()
	f.categories[c.ID] = c
	return c, nil
}

func (f *fakeStore) ListCategories(context.Context) ([]domain.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Category, 0, len(f.categories))
	for _, c := range f.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) FindCategoryByID(_ context.Context, id uint) (domain.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.categories[id]
	if !ok {
		return domain.Category{}, domain.NotFound("categoryId", "category %d not found", id).Because(repository.ErrCategoryNotFound)
	}
	return c, nil
}

func (f *fakeStore) DeleteCategory(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.categories[id]; !ok {
		return domain.NotFound("categoryId", "category %d not found", id).Because(repository.ErrCategoryNotFound)
	}
	for _, e := range f.events {
		if e.CategoryID == id {
			return domain.Conflict("id", "category %d is used by events", id).Because(repository.ErrCategoryInUse)
		}
	}
	delete(f.categories, id)
	return nil
}

func (f *fakeStore) CreateTeam(_ context.Context, t domain.Team) (domain.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.teams {
		if existing.Name == t.Name {
			return domain.Team{}, domain.Conflict("name", "team name already exists").Because(repository.ErrTeamExists)
		}
	}
	t.ID = f.id()
	f.teams[t.ID] = t
	return t, nil
}

func (f *fakeStore) ListTeams(context.Context) ([]domain.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	out := make([]domain.Team, 0, len(f.teams))
	for _, t := range f.teams {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) FindTeamByID(_ context.Context, id uint) (domain.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.teams[id]
	if !ok {
		return domain.Team{}, teamNotFound(id)
	}
	return t, nil
}

func (f *fakeStore) FindTeamsByIDs(_ context.Context, ids []uint) ([]domain.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Team
	for _, id := range ids {
		if t, ok := f.teams[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateTeam(_ context.Context, t domain.Team) (domain.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.teams[t.ID]; !ok {
		return domain.Team{}, teamNotFound(t.ID)
	}
	f.teams[t.ID] = t
	return t, nil
}

func (f *fakeStore) DeleteTeam(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.teams[id]; !ok {
		return teamNotFound(id)
	}
	for _, m := range f.medals {
		if m.TeamID == id {
			return domain.Conflict("id", "team %d is referenced by medals", id).Because(repository.ErrTeamInUse)
		}
	}
	delete(f.teams, id)
	return nil
}

func (f *fakeStore) CreateEvent(_ context.Context, e domain.Event) (domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e.ID = f.id()
	f.events[e.ID] = e
	return e, nil
}

func (f *fakeStore) ListEvents(context.Context) ([]domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Event, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) FindEventByID(_ context.Context, id uint) (domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[id]
	if !ok {
		return domain.Event{}, eventNotFound(id)
	}
	return e, nil
}

func (f *fakeStore) UpdateEvent(_ context.Context, id uint, fn func(domain.Event) (domain.Event, error)) (domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[id]
	if !ok {
		return domain.Event{}, eventNotFound(id)
	}
	next, err := fn(e)
	if err != nil {
		return domain.Event{}, err
	}
	f.events[id] = next
	return next, nil
}

func (f *fakeStore) DeleteEvent(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.events[id]; !ok {
		return eventNotFound(id)
	}
	for _, m := range f.medals {
		if m.EventID == id {
			return domain.Conflict("id", "event %d is referenced by medals", id).Because(repository.ErrEventInUse)
		}
	}
	delete(f.events, id)
	return nil
}

func (f *fakeStore) RosterSize(context.Context) (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return map[string]int{"teams": len(f.teams), "events": len(f.events), "categories": len(f.categories)}, nil
}

// Ledger

func (f *fakeStore) eventMedals(eventID uint) []domain.Medal {
	var out []domain.Medal
	for _, m := range f.medals {
		if m.EventID == eventID {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeStore) Record(_ context.Context, medal domain.Medal, check repository.LedgerCheck) (domain.Medal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	event, ok := f.events[medal.EventID]
	if !ok {
		return domain.Medal{}, eventNotFound(medal.EventID)
	}
	if err := check(event, f.eventMedals(medal.EventID)); err != nil {
		return domain.Medal{}, err
	}
	medal.ID = f.id()
	medal.CreatedAt = time.Now()
	f.medals = append(f.medals, medal)
	return medal, nil
}

func (f *fakeStore) Submit(_ context.Context, eventID uint, medals []domain.Medal, check repository.LedgerCheck) (domain.Event, []domain.Medal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	event, ok := f.events[eventID]
	if !ok {
		return domain.Event{}, nil, eventNotFound(eventID)
	}
	if err := check(event, f.eventMedals(eventID)); err != nil {
		return domain.Event{}, nil, err
	}

	written := make([]domain.Medal, 0, len(medals))
	for _, m := range medals {
		m.ID = f.id()
		written = append(written, m)
	}
	f.medals = append(f.medals, written...)
	event.Status = domain.EventCompleted
	f.events[eventID] = event
	return event, written, nil
}

func (f *fakeStore) List(_ context.Context, filter domain.MedalFilter) ([]domain.Medal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	var out []domain.Medal
	for _, m := range f.medals {
		if filter.Match(m) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeStore) FindByID(_ context.Context, id uint) (domain.Medal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.medals {
		if m.ID == id {
			return m, nil
		}
	}
	return domain.Medal{}, domain.NotFound("id", "medal %d not found", id).Because(repository.ErrMedalNotFound)
}

func (f *fakeStore) Delete(_ context.Context, id uint) (domain.Medal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, m := range f.medals {
		if m.ID == id {
			f.medals = append(f.medals[:i], f.medals[i+1:]...)
			return m, nil
		}
	}
	return domain.Medal{}, domain.NotFound("id", "medal %d not found", id).Because(repository.ErrMedalNotFound)
}

type recordingPublisher struct {
	mu      sync.Mutex
	changes []eventbus.Change
}

func (p *recordingPublisher) Publish(_ context.Context, c eventbus.Change) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changes = append(p.changes, c)
	return nil
}

func (p *recordingPublisher) topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.changes))
	for _, c := range p.changes {
		out = append(out, c.Topic)
	}
	return out
}
