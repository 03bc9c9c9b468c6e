package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cityrunners/server/internal/api/apierr"
	"github.com/cityrunners/server/internal/api/middleware"
	"github.com/cityrunners/server/internal/api/request"
	"github.com/cityrunners/server/internal/api/response"
	"github.com/cityrunners/server/internal/model"
)

// Login handles POST /login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.Login
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("Invalid request body"))
		return
	}
	if req.Username == "" || req.Password == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("Username and password are required"))
		return
	}

	session, err := h.auth.Login(r.Context(), req.Username, req.Password, req.GameCode)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	// A fresh login supersedes any previously issued token for this
	// player, so refresh the live record.
	h.registry.EnsurePlayer(session.Identity.Subject)
	if err := h.registry.SetToken(session.Identity.Subject, session.Token, session.Identity.ExpiresAt); err != nil {
		apierr.WriteError(w, err)
		return
	}
	if session.Identity.IsAdmin {
		if err := h.registry.SetRole(session.Identity.Subject, model.RoleAdmin); err != nil {
			apierr.WriteError(w, err)
			return
		}
	}

	response.JSON(w, http.StatusOK, response.Login{
		Token:     session.Token,
		ExpiresAt: session.Identity.ExpiresAt,
		Admin:     session.Identity.IsAdmin,
	})
}

// Validate handles GET /validate. Reaching it at all means the auth
// middleware accepted the token.
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		apierr.WriteError(w, apierr.NewUnauthorizedError())
		return
	}

	h.logger.Debug("token validated", slog.String("player", identity.Subject))
	response.JSON(w, http.StatusOK, map[string]any{
		"username": identity.Subject,
		"admin":    identity.IsAdmin,
	})
}
