package domain

import (
	"sort"
	"time"
)

type MedalType string

const (
	MedalGold      MedalType = "GOLD"
	MedalSilver    MedalType = "SILVER"
	MedalBronze    MedalType = "BRONZE"
	MedalNonWinner MedalType = "NON_WINNER"
	MedalNoEntry   MedalType = "NO_ENTRY"
)

// MedalTypes lists every kind in display order.
var MedalTypes = []MedalType{MedalGold, MedalSilver, MedalBronze, MedalNonWinner, MedalNoEntry}

// ParseMedalType is case-sensitive; unknown names are rejected, never coerced.
func ParseMedalType(s string) (MedalType, error) {
	for _, t := range MedalTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", Validation("medalType", "unknown medal type %q", s)
}

// Rank orders kinds for display, 0 being the highest.
func (t MedalType) Rank() int {
	for i, k := range MedalTypes {
		if k == t {
			return i
		}
	}
	return len(MedalTypes)
}

// IsPodium reports whether at most one row of this kind may exist per event.
func (t MedalType) IsPodium() bool {
	return t == MedalGold || t == MedalSilver || t == MedalBronze
}

func (t MedalType) Label() string {
	switch t {
	case MedalGold:
		return "Gold"
	case MedalSilver:
		return "Silver"
	case MedalBronze:
		return "Bronze"
	case MedalNonWinner:
		return "Non-Winner"
	case MedalNoEntry:
		return "No Entry"
	}
	return string(t)
}

type Medal struct {
	ID        uint      `json:"id"`
	EventID   uint      `json:"eventId"`
	TeamID    uint      `json:"teamId"`
	MedalType MedalType `json:"medalType"`
	Points    int       `json:"points"`
	CreatedAt time.Time `json:"createdAt"`
}

type MedalFilter struct {
	EventID *uint
	TeamID  *uint
}

func (f MedalFilter) Match(m Medal) bool {
	if f.EventID != nil && m.EventID != *f.EventID {
		return false
	}
	if f.TeamID != nil && m.TeamID != *f.TeamID {
		return false
	}
	return true
}

// CheckMedal decides whether candidate may join the ledger next to existing.
// Rows of other events in existing are ignored.
func CheckMedal(existing []Medal, candidate Medal) error {
	for _, m := range existing {
		if m.EventID != candidate.EventID {
			continue
		}

		if candidate.MedalType.IsPodium() && m.MedalType == candidate.MedalType {
			return Conflict("medalType", "event %d already has a %s medal (team %d)", candidate.EventID, candidate.MedalType, m.TeamID)
		}

		if m.TeamID != candidate.TeamID {
			continue
		}

		switch {
		case candidate.MedalType == MedalNoEntry && m.MedalType == MedalNoEntry:
			return Conflict("teamId", "team %d is already marked NO_ENTRY for event %d", candidate.TeamID, candidate.EventID)
		case candidate.MedalType == MedalNoEntry:
			return Conflict("teamId", "team %d already holds %s in event %d and cannot be NO_ENTRY", candidate.TeamID, m.MedalType, candidate.EventID)
		case m.MedalType == MedalNoEntry:
			return Conflict("teamId", "team %d is marked NO_ENTRY for event %d and cannot hold %s", candidate.TeamID, candidate.EventID, candidate.MedalType)
		}
	}

	return nil
}

// Violation describes a ledger row that breaks the per-event invariants.
type Violation struct {
	MedalID   uint      `json:"medalId"`
	EventID   uint      `json:"eventId"`
	TeamID    uint      `json:"teamId"`
	MedalType MedalType `json:"medalType"`
	Reason    string    `json:"reason"`
}

// AuditLedger replays medals in id order and reports every row CheckMedal would
// have refused, plus rows with negative or mis-snapshotted NO_ENTRY points.
func AuditLedger(medals []Medal) []Violation {
	sorted := make([]Medal, len(medals))
	copy(sorted, medals)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	var (
		violations []Violation
		accepted   = make(map[uint][]Medal)
	)
	for _, m := range sorted {
		reason := ""
		switch {
		case m.Points < 0:
			reason = "negative points"
		case m.MedalType == MedalNoEntry && m.Points != 0:
			reason = "NO_ENTRY row carries points"
		default:
			if err := CheckMedal(accepted[m.EventID], m); err != nil {
				reason = err.(*Error).Reason
			}
		}

		if reason != "" {
			violations = append(violations, Violation{
				MedalID:   m.ID,
				EventID:   m.EventID,
				TeamID:    m.TeamID,
				MedalType: m.MedalType,
				Reason:    reason,
			})
			continue
		}
		accepted[m.EventID] = append(accepted[m.EventID], m)
	}

	return violations
}
