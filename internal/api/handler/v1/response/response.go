package response

import (
	"time"

	"github.com/vietanh2810/medal-board-api/internal/domain"
)

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type Health struct {
	Status string `json:"status"`
}

// LiveMessage is pushed to live scoreboard subscribers.
type LiveMessage struct {
	Type      string            `json:"type"`
	Reason    string            `json:"reason,omitempty"`
	Standings []domain.Standing `json:"standings"`
	At        time.Time         `json:"at"`
}
