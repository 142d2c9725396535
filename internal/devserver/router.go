package devserver

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
)

// RouterDeps holds all dependencies needed by NewRouter.
type RouterDeps struct {
	Backend  *Backend
	BotToken string
	Logger   *slog.Logger
}

// NewRouter assembles the chi.Router with all routes and middleware.
func NewRouter(deps RouterDeps) chi.Router {
	h := NewHandler(deps.Backend, deps.BotToken, deps.Logger)

	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(Recovery(deps.Logger))
	r.Use(RequestID)
	r.Use(RequestLogger(deps.Logger))
	r.Use(CORS)
	r.Use(JSONContentType)

	r.MethodNotAllowed(h.MethodNotAllowed)

	r.Get("/health", h.Health)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/roblox", h.RobloxAuth)
		r.Post("/telegram", h.TelegramAuth)
	})

	r.Get("/tournaments", h.ListTournaments)
	r.Post("/tournaments", h.CreateTournament)

	r.Get("/vip-servers", h.ListVipServers)
	r.Post("/vip-servers", h.CreateVipServer)

	r.Get("/reports", h.ListReports)
	r.Post("/reports", h.SubmitReport)

	return r
}
