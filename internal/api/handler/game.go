package handler

import (
	"net/http"

	"github.com/cityrunners/server/internal/api/apierr"
	"github.com/cityrunners/server/internal/api/response"
	"github.com/cityrunners/server/internal/model"
	"github.com/cityrunners/server/internal/phase"
)

// GameState handles GET /game/state
func (h *Handler) GameState(w http.ResponseWriter, _ *http.Request) {
	p := h.registry.Phase()
	out := response.Phase{State: string(p.Kind)}
	if p.HasDeadline() {
		deadline := p.Deadline
		out.Deadline = &deadline
	}
	response.JSON(w, http.StatusOK, out)
}

// Timer handles GET /timer. Phases without a dwell deadline report
// null remaining seconds.
func (h *Handler) Timer(w http.ResponseWriter, _ *http.Request) {
	p := h.registry.Phase()
	out := response.Timer{}
	if p.HasDeadline() {
		remaining := int64(p.Deadline.Sub(h.clock.Now()).Seconds())
		if remaining < 0 {
			remaining = 0
		}
		out.RemainingSeconds = &remaining
	}
	response.JSON(w, http.StatusOK, out)
}

// StartGame handles POST /game/start (admin only). It asks the phase
// machine for the Lobby to Hide edge; the machine itself decides
// whether the edge is legal right now.
func (h *Handler) StartGame(w http.ResponseWriter, _ *http.Request) {
	if h.registry.Phase().Kind != model.PhaseLobby {
		apierr.WriteError(w, apierr.NewInvalidRequestError("Game is already in progress"))
		return
	}

	select {
	case h.commands <- phase.CommandToHide:
	default:
		apierr.WriteError(w, apierr.NewInternalError())
		return
	}

	response.JSON(w, http.StatusAccepted, map[string]string{"status": "starting"})
}
