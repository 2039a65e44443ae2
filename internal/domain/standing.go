package domain

import (
	"sort"
	"time"
)

// Standing is derived from the ledger on every read and never stored.
type Standing struct {
	Rank        int    `json:"rank"`
	TeamID      uint   `json:"teamId"`
	TeamName    string `json:"teamName"`
	Icon        string `json:"icon,omitempty"`
	Color       string `json:"color,omitempty"`
	TotalPoints int    `json:"totalPoints"`
	Gold        int    `json:"gold"`
	Silver      int    `json:"silver"`
	Bronze      int    `json:"bronze"`
	NonWinner   int    `json:"nonWinner"`
	NoEntry     int    `json:"noEntry"`
}

// ComputeStandings sums snapshot points per team. Every roster team is listed,
// with zero when it has no medals. Ordering: total, gold, silver and bronze
// counts descending, then name and id ascending. Rank only looks at the total,
// so equal totals share a rank and the next rank is skipped (1, 1, 3).
func ComputeStandings(teams []Team, medals []Medal) []Standing {
	byTeam := make(map[uint]*Standing, len(teams))
	for _, t := range teams {
		byTeam[t.ID] = &Standing{TeamID: t.ID, TeamName: t.Name, Icon: t.Icon, Color: t.Color}
	}

	for _, m := range medals {
		s, ok := byTeam[m.TeamID]
		if !ok {
			s = &Standing{TeamID: m.TeamID}
			byTeam[m.TeamID] = s
		}

		s.TotalPoints += m.Points
		switch m.MedalType {
		case MedalGold:
			s.Gold++
		case MedalSilver:
			s.Silver++
		case MedalBronze:
			s.Bronze++
		case MedalNonWinner:
			s.NonWinner++
		case MedalNoEntry:
			s.NoEntry++
		}
	}

	standings := make([]Standing, 0, len(byTeam))
	for _, s := range byTeam {
		standings = append(standings, *s)
	}

	sort.Slice(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		switch {
		case a.TotalPoints != b.TotalPoints:
			return a.TotalPoints > b.TotalPoints
		case a.Gold != b.Gold:
			return a.Gold > b.Gold
		case a.Silver != b.Silver:
			return a.Silver > b.Silver
		case a.Bronze != b.Bronze:
			return a.Bronze > b.Bronze
		case a.TeamName != b.TeamName:
			return a.TeamName < b.TeamName
		}
		return a.TeamID < b.TeamID
	})

	for i := range standings {
		if i > 0 && standings[i].TotalPoints == standings[i-1].TotalPoints {
			standings[i].Rank = standings[i-1].Rank
			continue
		}
		standings[i].Rank = i + 1
	}

	return standings
}

type EventResult struct {
	ID         uint        `json:"id"`
	Name       string      `json:"name"`
	Category   string      `json:"category"`
	CategoryID uint        `json:"categoryId"`
	EventDate  *time.Time  `json:"eventDate,omitempty"`
	Status     EventStatus `json:"status"`
	GoldTeam   *TeamRef    `json:"goldTeam,omitempty"`
	SilverTeam *TeamRef    `json:"silverTeam,omitempty"`
	BronzeTeam *TeamRef    `json:"bronzeTeam,omitempty"`
}

// ComputeEventResult picks the podium rows of event out of medals. Winners
// whose team is missing from teams are still reported, by id only.
func ComputeEventResult(event Event, category string, teams []Team, medals []Medal) EventResult {
	result := EventResult{
		ID:         event.ID,
		Name:       event.Name,
		Category:   category,
		CategoryID: event.CategoryID,
		EventDate:  event.EventDate,
		Status:     event.Status,
	}

	names := make(map[uint]string, len(teams))
	for _, t := range teams {
		names[t.ID] = t.Name
	}

	for _, m := range medals {
		if m.EventID != event.ID || !m.MedalType.IsPodium() {
			continue
		}

		ref := &TeamRef{ID: m.TeamID, Name: names[m.TeamID]}
		switch m.MedalType {
		case MedalGold:
			result.GoldTeam = ref
		case MedalSilver:
			result.SilverTeam = ref
		case MedalBronze:
			result.BronzeTeam = ref
		}
	}

	return result
}

// ComputeEventResults returns one result per event ordered by date, undated
// events last, then by id.
func ComputeEventResults(events []Event, categories []Category, teams []Team, medals []Medal) []EventResult {
	categoryNames := make(map[uint]string, len(categories))
	for _, c := range categories {
		categoryNames[c.ID] = c.Name
	}

	byEvent := make(map[uint][]Medal)
	for _, m := range medals {
		byEvent[m.EventID] = append(byEvent[m.EventID], m)
	}

	sorted := make([]Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].EventDate, sorted[j].EventDate
		switch {
		case a != nil && b != nil && !a.Equal(*b):
			return a.Before(*b)
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		}
		return sorted[i].ID < sorted[j].ID
	})

	results := make([]EventResult, 0, len(sorted))
	for _, e := range sorted {
		results = append(results, ComputeEventResult(e, categoryNames[e.CategoryID], teams, byEvent[e.ID]))
	}
	return results
}
