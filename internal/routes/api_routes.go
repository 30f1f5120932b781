package routes

import (
	"github.com/go-chi/chi/v5"

	"surfari/boardwalk/internal/api"
	"surfari/boardwalk/internal/middleware"
)

// RegisterAPIRoutes wires every handler into its route group. Auth is
// group-scoped: ingest routes want the game key, dashboard routes want a
// session, auth routes are public.
func RegisterAPIRoutes(r *chi.Mux, deps *api.Dependencies) {
	cfg := deps.Config
	svcs := deps.Services

	r.Get("/healthCheck", api.HealthCheckHandler(deps.Store.SQL, deps.UpSince))

	// Game ingest, shared-secret auth.
	r.Route("/ingest/session", func(r chi.Router) {
		r.Use(middleware.GameKeyMiddleware(cfg.GameIngestKey))
		r.Post("/start", api.SessionStartHandler(svcs.Ledger))
		r.Post("/heartbeat", api.SessionHeartbeatHandler(svcs.Ledger))
		r.Post("/end", api.SessionEndHandler(svcs.Ledger))
	})

	// Dashboard stats, session auth.
	r.Route("/stats", func(r chi.Router) {
		r.Use(middleware.DashboardAuthMiddleware(svcs.Sessions))
		r.Get("/summary", api.StatsSummaryHandler(svcs.Quota))
		r.Get("/recent", api.RecentSessionsHandler(svcs.Quota))
		r.Get("/leaderboard", api.LeaderboardHandler(svcs.Quota))
		r.Get("/progress", api.ProgressHandler(svcs.Quota))
		r.Get("/quota/summary", api.QuotaSummaryHandler(svcs.Quota))
		r.Get("/quota/list", api.QuotaListHandler(svcs.Quota))
		r.Get("/quota/user/{userId}", api.QuotaUserHandler(svcs.Quota))
	})

	// Claim board. Reads are public so the bot can embed the schedule;
	// writes need a dashboard session.
	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", api.ListSessionsHandler(svcs.Calendar))
		r.Group(func(r chi.Router) {
			r.Use(middleware.DashboardAuthMiddleware(svcs.Sessions))
			r.Post("/publish", api.PublishSessionsHandler(svcs.Calendar))
			r.Post("/claim", api.ClaimSessionHandler(svcs.Calendar))
			r.Post("/unclaim", api.UnclaimSessionHandler(svcs.Calendar))
		})
	})

	// Bot-verify OAuth flow.
	r.Route("/auth", func(r chi.Router) {
		r.Get("/roblox", api.RobloxAuthStartHandler(svcs.Verification))
		r.Get("/callback", api.RobloxAuthCallbackHandler(svcs.Verification))
		r.Get("/redeem", api.DashboardRedeemHandler(
			svcs.Signer, svcs.Sessions, deps.Repos.Links,
			cfg.FallbackGuildID, cfg.DashboardBaseURL))
		r.Post("/logout", api.LogoutHandler(svcs.Sessions))
		r.Group(func(r chi.Router) {
			r.Use(middleware.DashboardAuthMiddleware(svcs.Sessions))
			r.Get("/me", api.MeHandler())
		})
	})

	// Site login and bot-facing API.
	r.Route("/api", func(r chi.Router) {
		r.Get("/discord/oauth/start", api.DiscordLoginStartHandler(svcs.Verification))
		r.Get("/discord/oauth/callback", api.DiscordLoginCallbackHandler(
			svcs.Verification, svcs.Sessions, cfg.DashboardBaseURL))
		r.Post("/dashboard/link", api.DashboardLinkHandler(
			svcs.Signer, cfg.DashboardSecret, cfg.DashboardBaseURL))
	})

	// Cached Roblox proxy.
	r.Route("/roblox", func(r chi.Router) {
		r.Get("/users", api.RobloxUsersHandler(svcs.RobloxUsers, deps.Cache, deps.Metrics))
		r.Get("/thumbs", api.RobloxThumbsHandler(svcs.RobloxUsers, deps.Cache, deps.Metrics))
	})
}
