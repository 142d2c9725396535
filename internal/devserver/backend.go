package devserver

import (
	"fmt"
	"sync"
	"time"

	"github.com/wintercup/portal/internal/domain"
)

// Defaults recorded for a VIP server whose live player counts are unknown.
const (
	defaultVipMaxPlayers = 50
	recentReportsLimit   = 50
)

type tournamentRow struct {
	domain.Tournament
	creatorID int64
}

type vipServerRow struct {
	domain.VipServer
	creatorID int64
}

type reportRow struct {
	domain.ReportRecord
	reporterID int64
}

// Backend is the in-memory state behind the dev server. All lists are
// returned newest first.
type Backend struct {
	mu  sync.RWMutex
	now func() time.Time

	users       map[int64]domain.Identity
	byRoblox    map[int64]int64
	byTelegram  map[int64]int64
	tournaments []tournamentRow
	vipServers  []vipServerRow
	reports     []reportRow

	nextUserID       int64
	nextTournamentID int64
	nextVipServerID  int64
	nextReportID     int64
}

// NewBackend creates an empty backend.
func NewBackend() *Backend {
	return &Backend{
		now:        time.Now,
		users:      make(map[int64]domain.Identity),
		byRoblox:   make(map[int64]int64),
		byTelegram: make(map[int64]int64),
	}
}

// RobloxProfile is the identity data the Roblox exchange receives.
type RobloxProfile struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}

// TelegramProfile is the identity data the Telegram exchange receives.
type TelegramProfile struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
	PhotoURL  string
}

// UpsertRobloxUser creates or refreshes the user linked to a Roblox account.
func (b *Backend) UpsertRobloxUser(p RobloxProfile) domain.Identity {
	b.mu.Lock()
	defer b.mu.Unlock()

	first := p.DisplayName
	if first == "" {
		first = p.Name
	}
	robloxID := p.ID

	id, ok := b.byRoblox[p.ID]
	user := b.users[id]
	if !ok {
		b.nextUserID++
		id = b.nextUserID
		b.byRoblox[p.ID] = id
		user = domain.Identity{ID: id, Rating: 1000}
	}
	user.RobloxID = &robloxID
	user.RobloxUsername = p.Name
	user.Username = p.Name
	user.FirstName = first
	user.PhotoURL = fmt.Sprintf("https://www.roblox.com/headshot-thumbnail/image?userId=%d&width=150&height=150&format=png", p.ID)
	b.users[id] = user
	return user
}

// UpsertTelegramUser creates or refreshes the user linked to a Telegram account.
func (b *Backend) UpsertTelegramUser(p TelegramProfile) domain.Identity {
	b.mu.Lock()
	defer b.mu.Unlock()

	telegramID := p.ID
	id, ok := b.byTelegram[p.ID]
	user := b.users[id]
	if !ok {
		b.nextUserID++
		id = b.nextUserID
		b.byTelegram[p.ID] = id
		user = domain.Identity{ID: id, Rating: 1000}
	}
	user.TelegramID = &telegramID
	user.Username = p.Username
	user.FirstName = p.FirstName
	user.LastName = p.LastName
	user.PhotoURL = p.PhotoURL
	b.users[id] = user
	return user
}

// User looks a user up by portal id.
func (b *Backend) User(id int64) (domain.Identity, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	u, ok := b.users[id]
	return u, ok
}

// Tournaments lists every tournament with its creator summary.
func (b *Backend) Tournaments() []domain.Tournament {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]domain.Tournament, 0, len(b.tournaments))
	for i := len(b.tournaments) - 1; i >= 0; i-- {
		row := b.tournaments[i]
		t := row.Tournament
		if u, ok := b.users[row.creatorID]; ok {
			t.Creator = &domain.Creator{FirstName: u.FirstName, LastName: u.LastName, Username: u.Username}
		}
		out = append(out, t)
	}
	return out
}

// NewTournament is a validated tournament create request.
type NewTournament struct {
	Name            string
	GameName        string
	RobloxServerURL string
	MaxPlayers      int
	PrizeRobux      int64
	StartDate       *domain.Timestamp
	CreatorID       int64
}

// AddTournament stores a tournament in the registration phase.
func (b *Backend) AddTournament(n NewTournament) domain.Tournament {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextTournamentID++
	t := domain.Tournament{
		ID:              b.nextTournamentID,
		Name:            n.Name,
		Game:            n.GameName,
		RobloxServerURL: n.RobloxServerURL,
		MaxPlayers:      n.MaxPlayers,
		Prize:           n.PrizeRobux,
		Status:          domain.TournamentRegistration,
		StartDate:       n.StartDate,
		CreatedAt:       domain.Timestamp{Time: b.now().UTC()},
	}
	b.tournaments = append(b.tournaments, tournamentRow{Tournament: t, creatorID: n.CreatorID})
	return t
}

// VipServers lists every shared VIP server.
func (b *Backend) VipServers() []domain.VipServer {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]domain.VipServer, 0, len(b.vipServers))
	for i := len(b.vipServers) - 1; i >= 0; i-- {
		row := b.vipServers[i]
		v := row.VipServer
		v.CreatorName = b.creatorName(row.creatorID)
		out = append(out, v)
	}
	return out
}

func (b *Backend) creatorName(userID int64) string {
	u, ok := b.users[userID]
	switch {
	case !ok:
		return "Unknown"
	case u.RobloxUsername != "":
		return u.RobloxUsername
	case u.FirstName != "":
		return u.FirstName + " " + u.LastName
	default:
		return "Unknown"
	}
}

// AddVipServer stores a VIP server link.
func (b *Backend) AddVipServer(gameName, serverURL string, creatorID int64) domain.VipServer {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextVipServerID++
	v := domain.VipServer{
		ID:         b.nextVipServerID,
		GameName:   gameName,
		ServerURL:  serverURL,
		MaxPlayers: defaultVipMaxPlayers,
		CreatedAt:  domain.Timestamp{Time: b.now().UTC()},
	}
	b.vipServers = append(b.vipServers, vipServerRow{VipServer: v, creatorID: creatorID})
	return v
}

// Reports lists the reports filed by reporterID, or the most recent reports
// overall when reporterID is zero.
func (b *Backend) Reports(reporterID int64) []domain.ReportRecord {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]domain.ReportRecord, 0)
	for i := len(b.reports) - 1; i >= 0; i-- {
		row := b.reports[i]
		if reporterID != 0 && row.reporterID != reporterID {
			continue
		}
		out = append(out, row.ReportRecord)
		if reporterID == 0 && len(out) == recentReportsLimit {
			break
		}
	}
	return out
}

// AddReport stores a pending report.
func (b *Backend) AddReport(reporterID int64, player string, t domain.ReportType, description string) domain.ReportRecord {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextReportID++
	r := domain.ReportRecord{
		ID:             b.nextReportID,
		ReportedPlayer: player,
		Type:           t,
		Description:    description,
		Status:         "pending",
		CreatedAt:      domain.Timestamp{Time: b.now().UTC()},
	}
	b.reports = append(b.reports, reportRow{ReportRecord: r, reporterID: reporterID})
	return r
}

// Counts returns the number of stored rows per collection.
func (b *Backend) Counts() map[string]int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return map[string]int{
		"users":       len(b.users),
		"tournaments": len(b.tournaments),
		"vip_servers": len(b.vipServers),
		"reports":     len(b.reports),
	}
}
