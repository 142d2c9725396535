package devserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/wintercup/portal/internal/domain"
	"github.com/wintercup/portal/internal/gateway"
)

// Handler serves the portal endpoints from a Backend.
type Handler struct {
	backend  *Backend
	botToken string
	logger   *slog.Logger
}

// NewHandler creates a Handler. An empty botToken skips Telegram signature checks.
func NewHandler(backend *Backend, botToken string, logger *slog.Logger) *Handler {
	return &Handler{backend: backend, botToken: botToken, logger: logger}
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, map[string]any{
		"status": "healthy",
		"counts": h.backend.Counts(),
	})
}

// RobloxAuth handles POST /auth/roblox.
func (h *Handler) RobloxAuth(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RobloxData RobloxProfile `json:"roblox_data"`
	}
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.RobloxData.ID == 0 {
		RespondError(w, http.StatusBadRequest, "Roblox ID required")
		return
	}

	user := h.backend.UpsertRobloxUser(req.RobloxData)
	h.logger.Info("roblox user signed in", "user_id", user.ID, "roblox_id", req.RobloxData.ID)
	RespondJSON(w, http.StatusOK, map[string]any{"success": true, "user": user})
}

// TelegramAuth handles POST /auth/telegram.
func (h *Handler) TelegramAuth(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TelegramData map[string]any `json:"telegram_data"`
	}
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	data := req.TelegramData
	num, _ := data["id"].(json.Number)
	telegramID, err := num.Int64()
	if err != nil || telegramID == 0 {
		RespondError(w, http.StatusBadRequest, "Telegram ID required")
		return
	}
	if h.botToken != "" && !VerifyTelegramAuth(data, h.botToken) {
		h.logger.Warn("telegram signature rejected", "telegram_id", telegramID)
		RespondError(w, http.StatusUnauthorized, "Invalid authentication")
		return
	}

	str := func(key string) string {
		s, _ := data[key].(string)
		return s
	}
	user := h.backend.UpsertTelegramUser(TelegramProfile{
		ID:        telegramID,
		Username:  str("username"),
		FirstName: str("first_name"),
		LastName:  str("last_name"),
		PhotoURL:  str("photo_url"),
	})
	h.logger.Info("telegram user signed in", "user_id", user.ID, "telegram_id", telegramID)
	RespondJSON(w, http.StatusOK, map[string]any{"success": true, "user": user})
}

// ListTournaments handles GET /tournaments.
func (h *Handler) ListTournaments(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, map[string]any{"tournaments": h.backend.Tournaments()})
}

// CreateTournament handles POST /tournaments.
func (h *Handler) CreateTournament(w http.ResponseWriter, r *http.Request) {
	var req gateway.CreateTournamentRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	n := NewTournament{
		Name:            strings.TrimSpace(req.Name),
		GameName:        strings.TrimSpace(req.GameName),
		RobloxServerURL: strings.TrimSpace(req.RobloxServerURL),
		MaxPlayers:      req.MaxPlayers,
		PrizeRobux:      req.PrizeRobux,
		CreatorID:       req.UserID,
	}
	if err := domain.RequireFields(
		domain.Field{Name: "name", Value: n.Name},
		domain.Field{Name: "game_name", Value: n.GameName},
		domain.Field{Name: "roblox_server_url", Value: n.RobloxServerURL},
	); err != nil {
		RespondError(w, http.StatusBadRequest, "All fields are required")
		return
	}
	if err := domain.ValidateMaxPlayers(n.MaxPlayers); err != nil {
		RespondError(w, http.StatusBadRequest, "Max players must be between 2 and 1000")
		return
	}
	if n.PrizeRobux < 0 {
		RespondError(w, http.StatusBadRequest, "Prize must not be negative")
		return
	}
	if req.StartDate != nil && *req.StartDate != "" {
		ts, err := domain.ParseTimestamp(*req.StartDate)
		if err != nil {
			RespondError(w, http.StatusBadRequest, "Invalid start date")
			return
		}
		n.StartDate = &ts
	}

	t := h.backend.AddTournament(n)
	h.logger.Info("tournament created", "tournament_id", t.ID, "user_id", req.UserID)
	RespondJSON(w, http.StatusCreated, map[string]any{"success": true, "tournament": t})
}

// ListVipServers handles GET /vip-servers.
func (h *Handler) ListVipServers(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, map[string]any{"servers": h.backend.VipServers()})
}

// CreateVipServer handles POST /vip-servers.
func (h *Handler) CreateVipServer(w http.ResponseWriter, r *http.Request) {
	var req gateway.CreateVipServerRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	gameName := strings.TrimSpace(req.GameName)
	serverURL := strings.TrimSpace(req.ServerURL)
	if err := domain.RequireFields(
		domain.Field{Name: "game_name", Value: gameName},
		domain.Field{Name: "server_url", Value: serverURL},
	); err != nil {
		RespondError(w, http.StatusBadRequest, "Game name and server URL are required")
		return
	}
	if err := domain.ValidateRobloxURL(serverURL); err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid Roblox server URL")
		return
	}

	v := h.backend.AddVipServer(gameName, serverURL, req.UserID)
	h.logger.Info("vip server added", "server_id", v.ID, "user_id", req.UserID)
	RespondJSON(w, http.StatusCreated, map[string]any{
		"success":        true,
		"server_id":      v.ID,
		"online_players": v.OnlinePlayers,
		"max_players":    v.MaxPlayers,
	})
}

// ListReports handles GET /reports, filtered by ?user_id= when present.
func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	var reporterID int64
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			RespondError(w, http.StatusBadRequest, "Invalid user_id")
			return
		}
		reporterID = id
	}
	RespondJSON(w, http.StatusOK, map[string]any{"reports": h.backend.Reports(reporterID)})
}

// SubmitReport handles POST /reports.
func (h *Handler) SubmitReport(w http.ResponseWriter, r *http.Request) {
	var req gateway.SubmitReportRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	player := strings.TrimSpace(req.ReportedPlayer)
	description := strings.TrimSpace(req.Description)
	if req.UserID == 0 || domain.RequireFields(
		domain.Field{Name: "reported_player", Value: player},
		domain.Field{Name: "report_type", Value: string(req.ReportType)},
		domain.Field{Name: "description", Value: description},
	) != nil {
		RespondError(w, http.StatusBadRequest, "All fields are required")
		return
	}

	rep := h.backend.AddReport(req.UserID, player, req.ReportType, description)
	h.logger.Info("report submitted", "report_id", rep.ID, "user_id", req.UserID, "type", req.ReportType)
	RespondJSON(w, http.StatusCreated, map[string]any{
		"success":   true,
		"report_id": rep.ID,
		"message":   "Report submitted successfully",
	})
}

// MethodNotAllowed answers unsupported methods on known paths.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	RespondError(w, http.StatusMethodNotAllowed, "Method not allowed")
}
