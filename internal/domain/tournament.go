package domain

// TournamentStatus is the lifecycle phase reported by the backend.
type TournamentStatus string

const (
	TournamentRegistration TournamentStatus = "registration"
	TournamentInProgress   TournamentStatus = "in_progress"
)

// Accepted tournament size range.
const (
	MinTournamentPlayers = 2
	MaxTournamentPlayers = 1000
)

// Creator is the summary of the user that created a tournament.
type Creator struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
}

// Tournament is a row of the tournament list endpoint.
type Tournament struct {
	ID              int64            `json:"id"`
	Name            string           `json:"name"`
	Game            string           `json:"game"`
	RobloxServerURL string           `json:"robloxServerUrl"`
	MaxPlayers      int              `json:"maxPlayers"`
	Players         int              `json:"players"`
	Prize           int64            `json:"prize"`
	Status          TournamentStatus `json:"status"`
	StartDate       *Timestamp       `json:"startDate,omitempty"`
	CreatedAt       Timestamp        `json:"createdAt"`
	Creator         *Creator         `json:"creator,omitempty"`
}

// IsFull reports whether every slot is taken.
func (t Tournament) IsFull() bool {
	return t.MaxPlayers > 0 && t.Players >= t.MaxPlayers
}

// Fill returns the occupied share of slots in [0, 1].
func (t Tournament) Fill() float64 {
	if t.MaxPlayers <= 0 {
		return 0
	}
	f := float64(t.Players) / float64(t.MaxPlayers)
	if f > 1 {
		return 1
	}
	return f
}
