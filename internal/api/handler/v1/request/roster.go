package request

import (
	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/vietanh2810/medal-board-api/internal/domain"
)

type CreateCategoryRequest struct {
	Name string `json:"name"`
}

func (req *CreateCategoryRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 100)),
	)
}

type CreateTeamRequest struct {
	Name  string `json:"name"`
	Icon  string `json:"icon,omitempty"`
	Color string `json:"color,omitempty"`
}

func (req *CreateTeamRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.Icon, validation.Length(0, 255)),
		validation.Field(&req.Color, validation.Match(domain.HexColor)),
	)
}

// UpdateTeamRequest changes only the fields present in the body.
type UpdateTeamRequest struct {
	Name  *string `json:"name,omitempty"`
	Icon  *string `json:"icon,omitempty"`
	Color *string `json:"color,omitempty"`
}

func (req *UpdateTeamRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.NilOrNotEmpty, validation.Length(1, 100)),
		validation.Field(&req.Icon, validation.Length(0, 255)),
		validation.Field(&req.Color, validation.Match(domain.HexColor)),
	)
}

type CreateEventRequest struct {
	Name       string `json:"name"`
	CategoryID uint   `json:"categoryId"`
	EventDate  *Date  `json:"eventDate,omitempty" swaggertype:"string" example:"2026-06-01"`
}

func (req *CreateEventRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 150)),
		validation.Field(&req.CategoryID, validation.Required),
	)
}

// UpdateEventRequest changes only the fields present in the body.
// ClearEventDate removes the date.
type UpdateEventRequest struct {
	Name           *string `json:"name,omitempty"`
	CategoryID     *uint   `json:"categoryId,omitempty"`
	EventDate      *Date   `json:"eventDate,omitempty" swaggertype:"string" example:"2026-06-01"`
	ClearEventDate bool    `json:"clearEventDate,omitempty"`
}

func (req *UpdateEventRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.NilOrNotEmpty, validation.Length(1, 150)),
		validation.Field(&req.CategoryID, validation.NilOrNotEmpty),
	)
}

type EventStatusRequest struct {
	Status string `json:"status" example:"COMPLETED"`
}

func (req *EventStatusRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Status, validation.Required),
	)
}
