package domain

import (
	"errors"
	"fmt"
	"sort"
)

// DefaultMaxNonWinnerUnits bounds the non-winner rows one submission may
// create when no other limit is configured.
const DefaultMaxNonWinnerUnits = 200

// ResultSubmission is a full set of outcomes for one event. Nil podium ids
// mean no winner for that rank.
type ResultSubmission struct {
	EventID        uint
	GoldTeamID     *uint
	SilverTeamID   *uint
	BronzeTeamID   *uint
	NonWinners     map[uint]int
	NoEntryTeamIDs []uint
}

// ItemError points at one rejected part of a submission. Index is the position
// in the planned medal rows when the failure is tied to a row.
type ItemError struct {
	Index     *int      `json:"index,omitempty"`
	Field     string    `json:"field,omitempty"`
	TeamID    uint      `json:"teamId,omitempty"`
	MedalType MedalType `json:"medalType,omitempty"`
	Reason    string    `json:"error"`

	kind error
}

type SubmissionError struct {
	EventID uint
	Items   []ItemError
}

func (e *SubmissionError) Error() string {
	if len(e.Items) == 0 {
		return fmt.Sprintf("submission for event %d rejected", e.EventID)
	}
	return fmt.Sprintf("submission for event %d rejected (%d item(s)): %s", e.EventID, len(e.Items), e.Items[0].Reason)
}

// Unwrap exposes the distinct error kinds of the items.
func (e *SubmissionError) Unwrap() []error {
	var kinds []error
	for _, it := range e.Items {
		seen := false
		for _, k := range kinds {
			if k == it.kind {
				seen = true
				break
			}
		}
		if !seen && it.kind != nil {
			kinds = append(kinds, it.kind)
		}
	}
	return kinds
}

func (e *SubmissionError) add(item ItemError) {
	e.Items = append(e.Items, item)
}

func (e *SubmissionError) addErr(index *int, m Medal, err error) {
	item := ItemError{Index: index, TeamID: m.TeamID, MedalType: m.MedalType, Reason: err.Error(), kind: ErrStorage}
	var de *Error
	if errors.As(err, &de) {
		item.Field = de.Field
		item.Reason = de.Reason
		item.kind = de.Kind
	}
	e.add(item)
}

func (e *SubmissionError) orNil() error {
	if len(e.Items) == 0 {
		return nil
	}
	return e
}

// NewItemError builds an item for failures found outside the domain checks,
// such as a team id missing from the roster.
func NewItemError(field string, teamID uint, err error) ItemError {
	item := ItemError{Field: field, TeamID: teamID, Reason: err.Error(), kind: ErrStorage}
	var de *Error
	if errors.As(err, &de) {
		item.Reason = de.Reason
		item.kind = de.Kind
	}
	return item
}

// Reject wraps items into a SubmissionError, or returns nil when items is empty.
func Reject(eventID uint, items ...ItemError) error {
	e := &SubmissionError{EventID: eventID, Items: items}
	return e.orNil()
}

type slot struct {
	field string
	team  *uint
	kind  MedalType
}

func (s ResultSubmission) podium() []slot {
	return []slot{
		{"goldTeamId", s.GoldTeamID, MedalGold},
		{"silverTeamId", s.SilverTeamID, MedalSilver},
		{"bronzeTeamId", s.BronzeTeamID, MedalBronze},
	}
}

// TeamIDs returns every team referenced by the submission, ascending.
func (s ResultSubmission) TeamIDs() []uint {
	set := make(map[uint]struct{})
	for _, p := range s.podium() {
		if p.team != nil {
			set[*p.team] = struct{}{}
		}
	}
	for id, n := range s.NonWinners {
		if n > 0 {
			set[id] = struct{}{}
		}
	}
	for _, id := range s.NoEntryTeamIDs {
		set[id] = struct{}{}
	}

	ids := make([]uint, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// FieldFor names the request field that first references teamID, or "" when
// the team is not part of the submission.
func (s ResultSubmission) FieldFor(teamID uint) string {
	for _, p := range s.podium() {
		if p.team != nil && *p.team == teamID {
			return p.field
		}
	}
	for _, id := range s.NoEntryTeamIDs {
		if id == teamID {
			return "noEntryTeamIds"
		}
	}
	if n, ok := s.NonWinners[teamID]; ok && n > 0 {
		return fmt.Sprintf("nonWinners.%d", teamID)
	}
	return ""
}

// Validate checks the submission on its own, without the ledger. A team may
// fill at most one of gold, silver, bronze and no-entry. Podium teams may also
// carry non-winner units; no-entry teams may not. Non-winner units are capped
// at maxUnits per submission; maxUnits <= 0 means DefaultMaxNonWinnerUnits.
func (s ResultSubmission) Validate(maxUnits int) error {
	if maxUnits <= 0 {
		maxUnits = DefaultMaxNonWinnerUnits
	}

	errs := &SubmissionError{EventID: s.EventID}
	role := make(map[uint]string)

	claim := func(field string, id uint, kind MedalType) {
		if id == 0 {
			errs.add(ItemError{Field: field, MedalType: kind, Reason: "team id must be a positive integer", kind: ErrValidation})
			return
		}
		if prev, ok := role[id]; ok {
			errs.add(ItemError{
				Field:     field,
				TeamID:    id,
				MedalType: kind,
				Reason:    fmt.Sprintf("team %d is already listed in %s", id, prev),
				kind:      ErrValidation,
			})
			return
		}
		role[id] = field
	}

	for _, p := range s.podium() {
		if p.team != nil {
			claim(p.field, *p.team, p.kind)
		}
	}
	for _, id := range s.NoEntryTeamIDs {
		claim("noEntryTeamIds", id, MedalNoEntry)
	}

	units := 0
	for _, id := range sortedKeys(s.NonWinners) {
		n := s.NonWinners[id]
		field := fmt.Sprintf("nonWinners.%d", id)
		switch {
		case id == 0:
			errs.add(ItemError{Field: field, MedalType: MedalNonWinner, Reason: "team id must be a positive integer", kind: ErrValidation})
		case n < 0:
			errs.add(ItemError{Field: field, TeamID: id, MedalType: MedalNonWinner, Reason: fmt.Sprintf("count must be non-negative, got %d", n), kind: ErrValidation})
		case n > maxUnits:
			errs.add(ItemError{Field: field, TeamID: id, MedalType: MedalNonWinner, Reason: fmt.Sprintf("count must be at most %d, got %d", maxUnits, n), kind: ErrValidation})
		case n > 0 && role[id] == "noEntryTeamIds":
			errs.add(ItemError{Field: field, TeamID: id, MedalType: MedalNonWinner, Reason: fmt.Sprintf("team %d is marked NO_ENTRY and cannot have non-winner units", id), kind: ErrValidation})
		default:
			units += n
		}
	}

	if units > maxUnits {
		errs.add(ItemError{Field: "nonWinners", MedalType: MedalNonWinner, Reason: fmt.Sprintf("at most %d non-winner units per submission, got %d", maxUnits, units), kind: ErrValidation})
	}

	if len(errs.Items) == 0 && len(role) == 0 && units == 0 {
		errs.add(ItemError{Reason: "submission contains no outcome", kind: ErrValidation})
	}

	return errs.orNil()
}

// Plan expands the submission into ledger rows, all snapshotting points from
// the same settings. Order: gold, silver, bronze, non-winner units by team id,
// no-entries as given. Callers run Validate first, which bounds the row count.
func (s ResultSubmission) Plan(settings ScoreSettings) []Medal {
	var medals []Medal
	for _, p := range s.podium() {
		if p.team != nil {
			medals = append(medals, Medal{EventID: s.EventID, TeamID: *p.team, MedalType: p.kind, Points: settings.PointsFor(p.kind)})
		}
	}
	for _, id := range sortedKeys(s.NonWinners) {
		for i := 0; i < s.NonWinners[id]; i++ {
			medals = append(medals, Medal{EventID: s.EventID, TeamID: id, MedalType: MedalNonWinner, Points: settings.PointsFor(MedalNonWinner)})
		}
	}
	for _, id := range s.NoEntryTeamIDs {
		medals = append(medals, Medal{EventID: s.EventID, TeamID: id, MedalType: MedalNoEntry, Points: NoEntryPoints})
	}
	return medals
}

// CheckBatch runs CheckMedal for each planned row against existing plus the
// rows planned before it, collecting every failure.
func CheckBatch(eventID uint, existing []Medal, plan []Medal) error {
	errs := &SubmissionError{EventID: eventID}
	accepted := make([]Medal, len(existing), len(existing)+len(plan))
	copy(accepted, existing)

	for i, m := range plan {
		if err := CheckMedal(accepted, m); err != nil {
			idx := i
			errs.addErr(&idx, m, err)
			continue
		}
		accepted = append(accepted, m)
	}

	return errs.orNil()
}

func sortedKeys(m map[uint]int) []uint {
	keys := make([]uint, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
