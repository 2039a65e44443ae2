package domain

import "time"

// NoEntryPoints is fixed by rule and not configurable.
const NoEntryPoints = 0

type ScoreSettings struct {
	GoldPoints      int       `json:"goldPoints"`
	SilverPoints    int       `json:"silverPoints"`
	BronzePoints    int       `json:"bronzePoints"`
	NonWinnerPoints int       `json:"nonWinnerPoints"`
	NoEntryPoints   int       `json:"noEntryPoints"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// DefaultScoreSettings mirrors the values the admin screens were built around.
func DefaultScoreSettings() ScoreSettings {
	return ScoreSettings{
		GoldPoints:      10,
		SilverPoints:    7,
		BronzePoints:    5,
		NonWinnerPoints: 1,
	}
}

func (s ScoreSettings) PointsFor(t MedalType) int {
	switch t {
	case MedalGold:
		return s.GoldPoints
	case MedalSilver:
		return s.SilverPoints
	case MedalBronze:
		return s.BronzePoints
	case MedalNonWinner:
		return s.NonWinnerPoints
	}
	return NoEntryPoints
}

func (s ScoreSettings) Validate() error {
	fields := []struct {
		name  string
		value int
	}{
		{"goldPoints", s.GoldPoints},
		{"silverPoints", s.SilverPoints},
		{"bronzePoints", s.BronzePoints},
		{"nonWinnerPoints", s.NonWinnerPoints},
	}
	for _, f := range fields {
		if f.value < 0 {
			return Validation(f.name, "must be a non-negative integer, got %d", f.value)
		}
	}
	if s.NoEntryPoints != NoEntryPoints {
		return Validation("noEntryPoints", "is fixed at %d", NoEntryPoints)
	}
	return nil
}

// SettingsPatch holds the fields an update provides; nil means unchanged.
type SettingsPatch struct {
	GoldPoints      *int
	SilverPoints    *int
	BronzePoints    *int
	NonWinnerPoints *int
	NoEntryPoints   *int
}

// Apply merges p into s and validates the result. s is left untouched on error.
func (s ScoreSettings) Apply(p SettingsPatch) (ScoreSettings, error) {
	merged := s
	if p.GoldPoints != nil {
		merged.GoldPoints = *p.GoldPoints
	}
	if p.SilverPoints != nil {
		merged.SilverPoints = *p.SilverPoints
	}
	if p.BronzePoints != nil {
		merged.BronzePoints = *p.BronzePoints
	}
	if p.NonWinnerPoints != nil {
		merged.NonWinnerPoints = *p.NonWinnerPoints
	}
	merged.NoEntryPoints = NoEntryPoints
	if p.NoEntryPoints != nil {
		merged.NoEntryPoints = *p.NoEntryPoints
	}

	if err := merged.Validate(); err != nil {
		return s, err
	}
	return merged, nil
}
