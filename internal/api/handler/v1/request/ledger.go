package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

// CreateMedalRequest records one medal. Points are taken from the score
// settings when omitted.
type CreateMedalRequest struct {
	EventID   uint   `json:"eventId"`
	TeamID    uint   `json:"teamId"`
	MedalType string `json:"medalType" example:"GOLD"`
	Points    *int   `json:"points,omitempty"`
}

func (req *CreateMedalRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.EventID, validation.Required),
		validation.Field(&req.TeamID, validation.Required),
		validation.Field(&req.MedalType, validation.Required),
		validation.Field(&req.Points, validation.Min(0)),
	)
}

type UpdateSettingsRequest struct {
	GoldPoints      *int `json:"goldPoints,omitempty"`
	SilverPoints    *int `json:"silverPoints,omitempty"`
	BronzePoints    *int `json:"bronzePoints,omitempty"`
	NonWinnerPoints *int `json:"nonWinnerPoints,omitempty"`
	NoEntryPoints   *int `json:"noEntryPoints,omitempty"`
}

func (req *UpdateSettingsRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.GoldPoints, validation.Min(0)),
		validation.Field(&req.SilverPoints, validation.Min(0)),
		validation.Field(&req.BronzePoints, validation.Min(0)),
		validation.Field(&req.NonWinnerPoints, validation.Min(0)),
	)
}

// SubmitResultsRequest is the full outcome of one event. NonWinners maps a
// team id to its number of non-winner units.
type SubmitResultsRequest struct {
	GoldTeamID     *uint        `json:"goldTeamId,omitempty"`
	SilverTeamID   *uint        `json:"silverTeamId,omitempty"`
	BronzeTeamID   *uint        `json:"bronzeTeamId,omitempty"`
	NonWinners     map[uint]int `json:"nonWinners,omitempty"`
	NoEntryTeamIDs []uint       `json:"noEntryTeamIds,omitempty"`
}
