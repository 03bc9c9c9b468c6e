// Package api assembles the HTTP surface: REST routes, middleware, and
// the websocket upgrade endpoint.
package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/cityrunners/server/internal/api/handler"
	apimiddleware "github.com/cityrunners/server/internal/api/middleware"
	"github.com/cityrunners/server/internal/api/response"
	"github.com/cityrunners/server/internal/middleware"
	"github.com/cityrunners/server/internal/registry"
	"github.com/cityrunners/server/internal/services/auth"
	"github.com/cityrunners/server/internal/session"
)

// ServerName and ServerVersion identify the server on the root banner
const (
	ServerName    = "cityrunners"
	ServerVersion = "0.3.0"
)

// NewRouter builds the full route table. The websocket endpoint hangs
// off the bare router: the logging middleware's response wrapper does
// not implement http.Hijacker, so it must not front the upgrade.
func NewRouter(h *handler.Handler, sessions *session.Handler, authService *auth.Service, reg *registry.Game, logger *slog.Logger) *mux.Router {
	r := mux.NewRouter()

	recovery := middleware.Recovery(logger, apimiddleware.PanicHandler)
	logging := middleware.Logging(logger)
	authed := apimiddleware.Auth(authService, reg)

	r.Use(recovery)

	// Session transport, query-string token auth
	r.Handle("/ws", sessions).Methods(http.MethodGet)

	// Public REST routes
	public := r.NewRoute().Subrouter()
	public.Use(logging)
	public.HandleFunc("/", banner).Methods(http.MethodGet)
	public.HandleFunc("/login", h.Login).Methods(http.MethodPost)

	// Authenticated REST routes
	api := r.NewRoute().Subrouter()
	api.Use(logging, authed)
	api.HandleFunc("/validate", h.Validate).Methods(http.MethodGet)
	api.HandleFunc("/ready", h.ToggleReady).Methods(http.MethodPost)
	api.HandleFunc("/timer", h.Timer).Methods(http.MethodGet)
	api.HandleFunc("/players", h.ListPlayers).Methods(http.MethodGet)
	api.HandleFunc("/players/{username}", h.GetPlayer).Methods(http.MethodGet)
	api.HandleFunc("/teams", h.ListTeams).Methods(http.MethodGet)
	api.HandleFunc("/teams/{name}", h.GetTeam).Methods(http.MethodGet)
	api.HandleFunc("/teams/{name}", h.CreateTeam).Methods(http.MethodPost)
	api.HandleFunc("/teams/{name}/join", h.JoinTeam).Methods(http.MethodPost)
	api.HandleFunc("/teams/{name}/leave", h.LeaveTeam).Methods(http.MethodPost)
	api.HandleFunc("/game/state", h.GameState).Methods(http.MethodGet)

	// Admin-only REST routes
	admin := r.NewRoute().Subrouter()
	admin.Use(logging, authed, apimiddleware.RequireAdmin)
	admin.HandleFunc("/game/start", h.StartGame).Methods(http.MethodPost)
	admin.HandleFunc("/teams/{name}", h.DeleteTeam).Methods(http.MethodDelete)
	admin.HandleFunc("/teams/{name}/role", h.SetTeamRole).Methods(http.MethodPost)
	admin.HandleFunc("/players/{username}", h.KickPlayer).Methods(http.MethodDelete)

	return r
}

// banner answers the root path with the server's identity
func banner(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{
		"name":    ServerName,
		"version": ServerVersion,
	})
}
