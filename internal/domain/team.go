package domain

import (
	"regexp"
	"strings"
	"time"
)

// HexColor matches a #RRGGBB team color.
var HexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

type Team struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon,omitempty"`
	Color     string    `json:"color,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TeamRef is the compact form used inside event results.
type TeamRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// Validate checks a team before it is stored. Color, when set, is #RRGGBB.
func (t Team) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return Validation("name", "must not be blank")
	}
	if t.Color != "" && !HexColor.MatchString(t.Color) {
		return Validation("color", "must be a #RRGGBB hex color, got %q", t.Color)
	}
	return nil
}

type TeamPatch struct {
	Name  *string
	Icon  *string
	Color *string
}

func (t Team) Apply(p TeamPatch) (Team, error) {
	merged := t
	if p.Name != nil {
		merged.Name = strings.TrimSpace(*p.Name)
	}
	if p.Icon != nil {
		merged.Icon = *p.Icon
	}
	if p.Color != nil {
		merged.Color = *p.Color
	}

	if err := merged.Validate(); err != nil {
		return t, err
	}
	return merged, nil
}
