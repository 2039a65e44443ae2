package domain

import (
	"strings"
	"time"
)

type EventStatus string

const (
	EventPending   EventStatus = "PENDING"
	EventCompleted EventStatus = "COMPLETED"
)

// ParseEventStatus accepts the exact upper-case names only.
func ParseEventStatus(s string) (EventStatus, error) {
	switch EventStatus(s) {
	case EventPending, EventCompleted:
		return EventStatus(s), nil
	}
	return "", Validation("status", "unknown event status %q", s)
}

type Category struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type Event struct {
	ID         uint        `json:"id"`
	Name       string      `json:"name"`
	CategoryID uint        `json:"categoryId"`
	EventDate  *time.Time  `json:"eventDate,omitempty"`
	Status     EventStatus `json:"status"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

func (e Event) IsCompleted() bool {
	return e.Status == EventCompleted
}

func (e Event) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return Validation("name", "must not be blank")
	}
	if e.CategoryID == 0 {
		return Validation("categoryId", "is required")
	}
	if _, err := ParseEventStatus(string(e.Status)); err != nil {
		return err
	}
	return nil
}

// EventPatch holds the fields an update provides. ClearDate removes the date
// and wins over EventDate.
type EventPatch struct {
	Name       *string
	CategoryID *uint
	EventDate  *time.Time
	ClearDate  bool
}

func (e Event) Apply(p EventPatch) (Event, error) {
	merged := e
	if p.Name != nil {
		merged.Name = strings.TrimSpace(*p.Name)
	}
	if p.CategoryID != nil {
		merged.CategoryID = *p.CategoryID
	}
	if p.EventDate != nil {
		d := *p.EventDate
		merged.EventDate = &d
	}
	if p.ClearDate {
		merged.EventDate = nil
	}

	if err := merged.Validate(); err != nil {
		return e, err
	}
	return merged, nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return Validation("name", "must not be blank")
	}
	return nil
}
