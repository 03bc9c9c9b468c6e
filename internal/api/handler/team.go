package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/cityrunners/server/internal/api/apierr"
	"github.com/cityrunners/server/internal/api/middleware"
	"github.com/cityrunners/server/internal/api/response"
	"github.com/cityrunners/server/internal/model"
)

// ListTeams handles GET /teams
func (h *Handler) ListTeams(w http.ResponseWriter, _ *http.Request) {
	teams := h.registry.Teams()
	out := make([]response.Team, 0, len(teams))
	for _, t := range teams {
		out = append(out, response.FromTeam(t))
	}
	response.JSON(w, http.StatusOK, out)
}

// GetTeam handles GET /teams/{name}
func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	team, err := h.registry.GetTeam(name)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.FromTeam(team))
}

// CreateTeam handles POST /teams/{name}. The caller becomes the first
// member.
func (h *Handler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		apierr.WriteError(w, apierr.NewUnauthorizedError())
		return
	}
	name := mux.Vars(r)["name"]
	if name == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("Team name is required"))
		return
	}

	if err := h.registry.CreateTeam(name, identity.Subject); err != nil {
		apierr.WriteError(w, err)
		return
	}

	team, err := h.registry.GetTeam(name)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, response.FromTeam(team))
}

// JoinTeam handles POST /teams/{name}/join
func (h *Handler) JoinTeam(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		apierr.WriteError(w, apierr.NewUnauthorizedError())
		return
	}
	name := mux.Vars(r)["name"]

	if err := h.registry.JoinTeam(identity.Subject, name); err != nil {
		apierr.WriteError(w, err)
		return
	}

	team, err := h.registry.GetTeam(name)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.FromTeam(team))
}

// LeaveTeam handles POST /teams/{name}/leave
func (h *Handler) LeaveTeam(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		apierr.WriteError(w, apierr.NewUnauthorizedError())
		return
	}
	name := mux.Vars(r)["name"]

	if err := h.registry.LeaveTeam(identity.Subject, name); err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.NoContent(w)
}

// DeleteTeam handles DELETE /teams/{name} (admin only)
func (h *Handler) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if err := h.registry.RemoveTeam(name); err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.NoContent(w)
}

// SetTeamRole handles POST /teams/{name}/role (admin only). It decides
// which side of the round the team plays on.
func (h *Handler) SetTeamRole(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var req struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("Invalid request body"))
		return
	}

	role := model.TeamRole(req.Role)
	switch role {
	case model.TeamSeeker, model.TeamHider, model.TeamSpectator:
	default:
		apierr.WriteError(w, apierr.NewInvalidRequestError("Unknown team role"))
		return
	}

	if err := h.registry.SetTeamRole(name, role); err != nil {
		apierr.WriteError(w, err)
		return
	}

	team, err := h.registry.GetTeam(name)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.FromTeam(team))
}
