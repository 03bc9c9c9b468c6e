// Package auth handles login, token issuance, and token validation.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/cityrunners/server/internal/dependencies/clock"
	"github.com/cityrunners/server/internal/model"
	"github.com/cityrunners/server/internal/storage"
)

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// Identity is the decoded result of a successful token check. Callers
// granting session access must additionally verify the subject's live
// registry record carries the same token.
type Identity struct {
	Subject   string
	ExpiresAt time.Time
	IsAdmin   bool
}

// Session pairs an issued token with its identity
type Session struct {
	Token    string
	Identity Identity
}

// Config holds configuration for the auth service
type Config struct {
	// TokenLifetime is how long issued tokens stay valid
	TokenLifetime time.Duration
	// GameCode admits never-seen identities on first login
	GameCode string
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		TokenLifetime: 5 * 24 * time.Hour,
	}
}

// Service authenticates players and manages issued tokens
type Service struct {
	storage storage.Storage
	clock   clock.Clock

	mu     sync.RWMutex
	tokens map[string]Identity

	cfg    Config
	logger *slog.Logger
}

// New creates a new auth service
func New(store storage.Storage, clk clock.Clock, cfg Config, logger *slog.Logger) *Service {
	if cfg.TokenLifetime == 0 {
		cfg.TokenLifetime = DefaultConfig().TokenLifetime
	}
	return &Service{
		storage: store,
		clock:   clk,
		tokens:  make(map[string]Identity),
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "auth")),
	}
}

// Login verifies credentials and issues a fresh token. A username that
// has never been seen is registered and persisted, provided the game
// code matches; an existing username must present its password.
func (s *Service) Login(ctx context.Context, username, password, gameCode string) (*Session, error) {
	entry, err := s.storage.GetPlayer(ctx, username)
	switch {
	case errors.Is(err, model.ErrPlayerNotFound):
		entry, err = s.register(ctx, username, password, gameCode)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		if bcrypt.CompareHashAndPassword([]byte(entry.PasswordHash), []byte(password)) != nil {
			return nil, ErrInvalidCredentials
		}
	}

	token := generateToken()
	identity := Identity{
		Subject:   username,
		ExpiresAt: s.clock.Now().Add(s.cfg.TokenLifetime),
		IsAdmin:   entry.Admin,
	}

	s.mu.Lock()
	s.tokens[token] = identity
	s.mu.Unlock()

	s.logger.Info("login", slog.String("player", username), slog.Bool("admin", entry.Admin))

	return &Session{Token: token, Identity: identity}, nil
}

// Authenticate checks a bearer token and returns its identity
func (s *Service) Authenticate(token string) (Identity, error) {
	s.mu.RLock()
	identity, ok := s.tokens[token]
	s.mu.RUnlock()

	if !ok {
		return Identity{}, ErrInvalidToken
	}

	if s.clock.Now().After(identity.ExpiresAt) {
		s.mu.Lock()
		delete(s.tokens, token)
		s.mu.Unlock()
		return Identity{}, ErrInvalidToken
	}

	return identity, nil
}

// Invalidate revokes a token
func (s *Service) Invalidate(token string) {
	s.mu.Lock()
	delete(s.tokens, token)
	s.mu.Unlock()
}

// CleanExpiredTokens removes expired tokens (call periodically)
func (s *Service) CleanExpiredTokens() {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	for token, identity := range s.tokens {
		if now.After(identity.ExpiresAt) {
			delete(s.tokens, token)
		}
	}
}

// register persists a first-time identity admitted by game code
func (s *Service) register(ctx context.Context, username, password, gameCode string) (*model.RosterEntry, error) {
	if s.cfg.GameCode == "" ||
		subtle.ConstantTimeCompare([]byte(gameCode), []byte(s.cfg.GameCode)) != 1 {
		return nil, ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	entry := &model.RosterEntry{
		Username:     username,
		PasswordHash: string(hash),
		Admin:        false,
		CreatedAt:    s.clock.Now(),
	}

	if err := s.storage.SavePlayer(ctx, entry); err != nil {
		return nil, err
	}

	s.logger.Info("registered new player", slog.String("player", username))
	return entry, nil
}

// generateToken generates a random bearer token
func generateToken() string {
	b := make([]byte, 24)
	_, _ = rand.Read(b)
	return "cr_" + base64.RawURLEncoding.EncodeToString(b)
}
