package submission

import (
	"strings"

	"github.com/wintercup/portal/internal/domain"
	"github.com/wintercup/portal/internal/gateway"
)

// Draft is in-progress form data for one create action.
type Draft interface {
	// Validate checks required fields locally.
	Validate() error
	// Payload is the request body with the owner's user id attached.
	Payload(userID int64) any
	// Label names the record kind in user-visible notices.
	Label() string
}

// TournamentDraft is the "create tournament" form.
type TournamentDraft struct {
	Name       string
	Game       string
	ServerURL  string
	MaxPlayers int
	PrizeRobux int64
	StartDate  string // optional, ISO 8601
}

// DefaultTournamentDraft is the shape the form resets to.
func DefaultTournamentDraft() TournamentDraft {
	return TournamentDraft{MaxPlayers: 16}
}

func (d TournamentDraft) Validate() error {
	return domain.RequireFields(
		domain.Field{Name: "tournament name", Value: d.Name},
		domain.Field{Name: "game", Value: d.Game},
		domain.Field{Name: "server url", Value: d.ServerURL},
	)
}

func (d TournamentDraft) Payload(userID int64) any {
	req := gateway.CreateTournamentRequest{
		Name:            strings.TrimSpace(d.Name),
		GameName:        strings.TrimSpace(d.Game),
		RobloxServerURL: strings.TrimSpace(d.ServerURL),
		MaxPlayers:      d.MaxPlayers,
		PrizeRobux:      d.PrizeRobux,
		UserID:          userID,
	}
	if s := strings.TrimSpace(d.StartDate); s != "" {
		req.StartDate = &s
	}
	return req
}

func (TournamentDraft) Label() string { return "tournament" }

// VipServerDraft is the "share a VIP server" form.
type VipServerDraft struct {
	GameName  string
	ServerURL string
}

// DefaultVipServerDraft is the shape the form resets to.
func DefaultVipServerDraft() VipServerDraft {
	return VipServerDraft{}
}

func (d VipServerDraft) Validate() error {
	return domain.RequireFields(
		domain.Field{Name: "game name", Value: d.GameName},
		domain.Field{Name: "server url", Value: d.ServerURL},
	)
}

func (d VipServerDraft) Payload(userID int64) any {
	return gateway.CreateVipServerRequest{
		GameName:  strings.TrimSpace(d.GameName),
		ServerURL: strings.TrimSpace(d.ServerURL),
		UserID:    userID,
	}
}

func (VipServerDraft) Label() string { return "VIP server" }

// ReportDraft is the player report / feedback form.
type ReportDraft struct {
	ReportedPlayer string
	Type           domain.ReportType
	Description    string
}

// DefaultReportDraft is the shape the form resets to.
func DefaultReportDraft() ReportDraft {
	return ReportDraft{Type: domain.ReportCheating}
}

func (d ReportDraft) Validate() error {
	if err := domain.RequireFields(
		domain.Field{Name: "player name", Value: d.ReportedPlayer},
		domain.Field{Name: "description", Value: d.Description},
	); err != nil {
		return err
	}
	return domain.ValidateReportType(d.Type)
}

func (d ReportDraft) Payload(userID int64) any {
	return gateway.SubmitReportRequest{
		ReportedPlayer: strings.TrimSpace(d.ReportedPlayer),
		ReportType:     d.Type,
		Description:    strings.TrimSpace(d.Description),
		UserID:         userID,
	}
}

func (ReportDraft) Label() string { return "report" }
