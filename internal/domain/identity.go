package domain

import (
	"math"
	"strings"
)

// Identity is the authenticated portal user returned by the identity exchange.
type Identity struct {
	ID             int64   `json:"id"`
	RobloxID       *int64  `json:"roblox_id,omitempty"`
	TelegramID     *int64  `json:"telegram_id,omitempty"`
	RobloxUsername string  `json:"roblox_username,omitempty"`
	Username       string  `json:"username"`
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name,omitempty"`
	PhotoURL       string  `json:"photo_url"`
	Wins           int     `json:"wins"`
	Losses         int     `json:"losses"`
	Rating         int     `json:"rating"`
	TeamName       *string `json:"team_name"`
}

// Valid reports whether the identity is usable as a session owner.
func (i Identity) Valid() bool {
	return i.ID > 0
}

// DisplayName joins first and last name, falling back to the username.
func (i Identity) DisplayName() string {
	name := strings.TrimSpace(i.FirstName + " " + i.LastName)
	if name == "" {
		return i.Username
	}
	return name
}

// WinRate returns the rounded win percentage, 0 when no games were played.
func (i Identity) WinRate() int {
	total := i.Wins + i.Losses
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(i.Wins) / float64(total) * 100))
}
