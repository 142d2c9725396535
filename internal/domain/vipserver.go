package domain

// VipServer is a user-shared private game server link.
type VipServer struct {
	ID            int64     `json:"id"`
	GameName      string    `json:"game_name"`
	ServerURL     string    `json:"server_url"`
	OnlinePlayers int       `json:"online_players"`
	MaxPlayers    int       `json:"max_players"`
	CreatedAt     Timestamp `json:"created_at"`
	CreatorName   string    `json:"creator_name"`
}
