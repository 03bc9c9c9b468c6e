package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/cityrunners/server/internal/api/apierr"
	"github.com/cityrunners/server/internal/api/middleware"
	"github.com/cityrunners/server/internal/api/response"
)

// ListPlayers handles GET /players
func (h *Handler) ListPlayers(w http.ResponseWriter, _ *http.Request) {
	players := h.registry.Players()
	out := make([]response.Player, 0, len(players))
	for _, p := range players {
		out = append(out, response.FromPlayer(p))
	}
	response.JSON(w, http.StatusOK, out)
}

// GetPlayer handles GET /players/{username}
func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	player, err := h.registry.GetPlayer(username)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.FromPlayer(player))
}

// ToggleReady handles POST /ready and returns the caller's new flag
func (h *Handler) ToggleReady(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		apierr.WriteError(w, apierr.NewUnauthorizedError())
		return
	}

	ready, err := h.registry.ToggleReady(identity.Subject)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.Ready{Ready: ready})
}

// KickPlayer handles DELETE /players/{username} (admin only). The
// player's session, team membership, and live record all go.
func (h *Handler) KickPlayer(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	if err := h.registry.RemovePlayer(username); err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.NoContent(w)
}
