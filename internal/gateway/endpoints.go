package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/wintercup/portal/internal/domain"
)

// Provider names an identity provider the backend can exchange credentials for.
type Provider string

const (
	ProviderRoblox   Provider = "roblox"
	ProviderTelegram Provider = "telegram"
)

// ExchangeIdentity posts provider data to the provider's exchange endpoint.
// It returns a nil identity (and nil error) when the backend answers without
// success or without a user.
func (c *Client) ExchangeIdentity(ctx context.Context, provider Provider, data any) (*domain.Identity, *Envelope, error) {
	var endpoint, key string
	switch provider {
	case ProviderRoblox:
		endpoint, key = c.endpoints.RobloxAuth, "roblox_data"
	case ProviderTelegram:
		endpoint, key = c.endpoints.TelegramAuth, "telegram_data"
	default:
		return nil, nil, fmt.Errorf("unknown identity provider: %s", provider)
	}

	env, err := c.Post(ctx, endpoint, map[string]any{key: data})
	if err != nil {
		return nil, nil, err
	}
	if !env.Success() || !env.Has("user") {
		return nil, env, nil
	}

	var user domain.Identity
	if err := env.Decode("user", &user); err != nil {
		return nil, env, domain.ErrNetwork("decode user", err)
	}
	return &user, env, nil
}

// ListTournaments fetches the tournament list. An absent list is empty.
func (c *Client) ListTournaments(ctx context.Context) ([]domain.Tournament, error) {
	var out []domain.Tournament
	err := c.list(ctx, c.endpoints.Tournaments, "tournaments", &out)
	return nonNil(out), err
}

// ListVipServers fetches the VIP server list. An absent list is empty.
func (c *Client) ListVipServers(ctx context.Context) ([]domain.VipServer, error) {
	var out []domain.VipServer
	err := c.list(ctx, c.endpoints.VipServers, "servers", &out)
	return nonNil(out), err
}

// ListReports fetches the reports filed by userID.
func (c *Client) ListReports(ctx context.Context, userID int64) ([]domain.ReportRecord, error) {
	u, err := url.Parse(c.endpoints.Reports)
	if err != nil {
		return nil, domain.ErrNetwork("parse reports endpoint", err)
	}
	q := u.Query()
	q.Set("user_id", strconv.FormatInt(userID, 10))
	u.RawQuery = q.Encode()

	var out []domain.ReportRecord
	err = c.list(ctx, u.String(), "reports", &out)
	return nonNil(out), err
}

func (c *Client) list(ctx context.Context, endpoint, field string, dst any) error {
	env, err := c.Call(ctx, endpoint, http.MethodGet, nil)
	if err != nil {
		return err
	}
	if !env.OK() {
		return domain.ErrNetwork(fmt.Sprintf("GET %s returned %d", endpoint, env.Status()), nil)
	}
	if err := env.Decode(field, dst); err != nil {
		return domain.ErrNetwork("decode list", err)
	}
	return nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

// CreateTournamentRequest is the tournament create body.
type CreateTournamentRequest struct {
	Name            string  `json:"name"`
	GameName        string  `json:"game_name"`
	RobloxServerURL string  `json:"roblox_server_url"`
	MaxPlayers      int     `json:"max_players"`
	PrizeRobux      int64   `json:"prize_robux"`
	StartDate       *string `json:"start_date,omitempty"`
	UserID          int64   `json:"user_id"`
}

// CreateVipServerRequest is the VIP server create body.
type CreateVipServerRequest struct {
	GameName  string `json:"game_name"`
	ServerURL string `json:"server_url"`
	UserID    int64  `json:"user_id"`
}

// SubmitReportRequest is the report submission body.
type SubmitReportRequest struct {
	ReportedPlayer string            `json:"reported_player"`
	ReportType     domain.ReportType `json:"report_type"`
	Description    string            `json:"description"`
	UserID         int64             `json:"user_id"`
}

// CreateTournament posts a new tournament. Success is read from the envelope.
func (c *Client) CreateTournament(ctx context.Context, req CreateTournamentRequest) (*Envelope, error) {
	return c.Post(ctx, c.endpoints.Tournaments, req)
}

// CreateVipServer posts a new VIP server.
func (c *Client) CreateVipServer(ctx context.Context, req CreateVipServerRequest) (*Envelope, error) {
	return c.Post(ctx, c.endpoints.VipServers, req)
}

// SubmitReport posts a player report.
func (c *Client) SubmitReport(ctx context.Context, req SubmitReportRequest) (*Envelope, error) {
	return c.Post(ctx, c.endpoints.Reports, req)
}
