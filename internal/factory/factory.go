// Package factory wires the application's components together.
package factory

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/cityrunners/server/internal/dependencies/clock"
	"github.com/cityrunners/server/internal/model"
	"github.com/cityrunners/server/internal/phase"
	"github.com/cityrunners/server/internal/registry"
	"github.com/cityrunners/server/internal/services/auth"
	"github.com/cityrunners/server/internal/session"
	"github.com/cityrunners/server/internal/storage"
	"github.com/cityrunners/server/internal/storage/memory"
	redisstorage "github.com/cityrunners/server/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock clock.Clock

	// Core state and services
	Registry    *registry.Game
	AuthService *auth.Service
	Machine     *phase.Machine
	Sessions    *session.Handler
}

// Config holds configuration for the application factory
type Config struct {
	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
	// PhaseConfig holds the match timings (optional)
	// If zero value, defaults to phase.DefaultConfig()
	PhaseConfig phase.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	clk := clock.New()

	authCfg := cfg.AuthConfig
	if authCfg.TokenLifetime == 0 {
		authCfg.TokenLifetime = auth.DefaultConfig().TokenLifetime
	}

	phaseCfg := cfg.PhaseConfig
	if phaseCfg.TickInterval == 0 {
		phaseCfg = phase.DefaultConfig()
	}

	return newWithDependencies(store, clk, authCfg, phaseCfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, authCfg auth.Config, phaseCfg phase.Config, logger *slog.Logger) *App {
	reg := registry.New(logger)
	authService := auth.New(store, clk, authCfg, logger)
	machine := phase.New(reg, clk, phaseCfg, nil, logger)
	sessions := session.NewHandler(reg, authService, clk, logger)

	return &App{
		Storage:     store,
		Clock:       clk,
		Registry:    reg,
		AuthService: authService,
		Machine:     machine,
		Sessions:    sessions,
	}
}

// SeedRoster loads every persisted roster entry into the live registry
// so known players exist before their first login of the day. Admins
// get their role back immediately.
func (a *App) SeedRoster(ctx context.Context) (int, error) {
	entries, err := a.Storage.ListPlayers(ctx)
	if err != nil {
		return 0, err
	}
	for _, e := range entries {
		a.Registry.EnsurePlayer(e.Username)
		if e.Admin {
			if err := a.Registry.SetRole(e.Username, model.RoleAdmin); err != nil {
				return 0, err
			}
		}
	}
	return len(entries), nil
}
