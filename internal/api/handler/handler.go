// Package handler implements the REST surface: login, teams, player
// readiness, and the read-only and administrative match endpoints.
package handler

import (
	"log/slog"

	"github.com/cityrunners/server/internal/dependencies/clock"
	"github.com/cityrunners/server/internal/phase"
	"github.com/cityrunners/server/internal/registry"
	"github.com/cityrunners/server/internal/services/auth"
)

// Handler holds the dependencies shared by all REST endpoints
type Handler struct {
	registry *registry.Game
	auth     *auth.Service
	clock    clock.Clock
	commands chan<- phase.Command
	logger   *slog.Logger
}

// New creates a new REST handler
func New(reg *registry.Game, authService *auth.Service, clk clock.Clock, commands chan<- phase.Command, logger *slog.Logger) *Handler {
	return &Handler{
		registry: reg,
		auth:     authService,
		clock:    clk,
		commands: commands,
		logger:   logger.With(slog.String("component", "api")),
	}
}
