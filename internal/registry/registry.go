// Package registry holds the single shared game state: players, teams,
// and the current phase. One Game instance exists per process; every
// session and the phase machine share it by pointer.
package registry

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/cityrunners/server/internal/model"
)

// Game is the aggregate match state, guarded by a reader/writer lock.
// The lock is held only for the synchronous mutation or read; outbound
// sends never happen under it (see Broadcast).
type Game struct {
	mu      sync.RWMutex
	players map[string]*model.Player
	teams   map[string]*model.Team
	phase   model.Phase
	logger  *slog.Logger
}

// New creates an empty registry in the Lobby phase
func New(logger *slog.Logger) *Game {
	return &Game{
		players: make(map[string]*model.Player),
		teams:   make(map[string]*model.Team),
		phase:   model.Phase{Kind: model.PhaseLobby},
		logger:  logger.With(slog.String("component", "registry")),
	}
}

// Player operations

// GetPlayer returns a snapshot of the player's current record
func (g *Game) GetPlayer(username string) (model.Player, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	p, ok := g.players[username]
	if !ok {
		return model.Player{}, model.ErrPlayerNotFound
	}
	return *p, nil
}

// Players returns a snapshot of all player records, sorted by username
func (g *Game) Players() []model.Player {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]model.Player, 0, len(g.players))
	for _, p := range g.players {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out
}

// CreatePlayer adds a new disconnected player record
func (g *Game) CreatePlayer(username string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.players[username]; ok {
		return model.ErrPlayerExists
	}
	g.players[username] = model.NewPlayer(username)
	return nil
}

// EnsurePlayer adds the player record if it does not already exist.
// Used when seeding from the roster and when a known identity logs in.
func (g *Game) EnsurePlayer(username string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.players[username]; !ok {
		g.players[username] = model.NewPlayer(username)
	}
}

// RemovePlayer deletes the player and removes it from every team
func (g *Game) RemovePlayer(username string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.players[username]
	if !ok {
		return model.ErrPlayerNotFound
	}
	for _, t := range g.teams {
		t.RemoveMember(username)
	}
	if p.Sink != nil {
		_ = p.Sink.Close()
	}
	delete(g.players, username)
	return nil
}

// SetToken refreshes the player's credential token
func (g *Game) SetToken(username, token string, expiry time.Time) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.players[username]
	if !ok {
		return model.ErrPlayerNotFound
	}
	p.Token = token
	p.TokenExpiry = expiry
	return nil
}

// SetRole changes the player's round role
func (g *Game) SetRole(username string, role model.PlayerRole) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.players[username]
	if !ok {
		return model.ErrPlayerNotFound
	}
	p.Role = role
	return nil
}

// ToggleReady flips the player's ready flag and returns the new value
func (g *Game) ToggleReady(username string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.players[username]
	if !ok {
		return false, model.ErrPlayerNotFound
	}
	p.Ready = !p.Ready
	return p.Ready, nil
}

// SetLocation records the player's last reported position
func (g *Game) SetLocation(username string, loc model.Location) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.players[username]
	if !ok {
		return model.ErrPlayerNotFound
	}
	p.Location = &loc
	return nil
}

// AttachSink marks the player connected and attaches its outbound sink.
// Fails if the player already has a live session.
func (g *Game) AttachSink(username string, sink model.Sink) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.players[username]
	if !ok {
		return model.ErrPlayerNotFound
	}
	if p.Connected {
		return model.ErrAlreadyConnected
	}
	p.Sink = sink
	p.Connected = true
	return nil
}

// DetachSink marks the player disconnected and clears its sink.
// Team membership and identity persist across disconnects.
func (g *Game) DetachSink(username string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.players[username]
	if !ok {
		return
	}
	p.Sink = nil
	p.Connected = false
}

// Team operations

// GetTeam returns a snapshot of the team's current record
func (g *Game) GetTeam(name string) (model.Team, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	t, ok := g.teams[name]
	if !ok {
		return model.Team{}, model.ErrTeamNotFound
	}
	return copyTeam(t), nil
}

// Teams returns a snapshot of all team records, sorted by name
func (g *Game) Teams() []model.Team {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]model.Team, 0, len(g.teams))
	for _, t := range g.teams {
		out = append(out, copyTeam(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// CreateTeam creates a team with the creator as its first member.
// The creator must exist and must not already be on a team.
func (g *Game) CreateTeam(name, creator string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.players[creator]
	if !ok {
		return model.ErrPlayerNotFound
	}
	if _, ok := g.teams[name]; ok {
		return model.ErrTeamExists
	}
	if p.Team != "" {
		return model.ErrAlreadyOnTeam
	}
	t := model.NewTeam(name)
	t.AddMember(creator)
	p.Team = name
	g.teams[name] = t
	return nil
}

// JoinTeam adds the player to the team, keeping both sides of the
// membership consistent under one lock acquisition
func (g *Game) JoinTeam(username, name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.players[username]
	if !ok {
		return model.ErrPlayerNotFound
	}
	t, ok := g.teams[name]
	if !ok {
		return model.ErrTeamNotFound
	}
	if p.Team != "" {
		return model.ErrAlreadyOnTeam
	}
	t.AddMember(username)
	p.Team = name
	return nil
}

// LeaveTeam removes the player from the team and clears its reference
func (g *Game) LeaveTeam(username, name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.players[username]
	if !ok {
		return model.ErrPlayerNotFound
	}
	t, ok := g.teams[name]
	if !ok {
		return model.ErrTeamNotFound
	}
	if !t.HasMember(username) {
		return model.ErrNotAMember
	}
	t.RemoveMember(username)
	p.Team = ""
	return nil
}

// RemoveTeam deletes the team and clears every member's reference
func (g *Game) RemoveTeam(name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	t, ok := g.teams[name]
	if !ok {
		return model.ErrTeamNotFound
	}
	for _, m := range t.Members {
		if p, ok := g.players[m]; ok {
			p.Team = ""
		}
	}
	delete(g.teams, name)
	return nil
}

// SetTeamRole changes which side of the round a team plays on
func (g *Game) SetTeamRole(name string, role model.TeamRole) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	t, ok := g.teams[name]
	if !ok {
		return model.ErrTeamNotFound
	}
	t.Role = role
	return nil
}

// Phase operations

// Phase returns the current phase
func (g *Game) Phase() model.Phase {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.phase
}

// SetPhase replaces the current phase
func (g *Game) SetPhase(p model.Phase) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.phase = p
}

// ClearRound resets every player's role and readiness at round end
func (g *Game) ClearRound() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, p := range g.players {
		if p.Role != model.RoleAdmin {
			p.Role = model.RoleSpectator
		}
		p.Ready = false
	}
}

// Broadcast delivers the payload to every connected player's sink and
// returns the number of failed deliveries. The registry lock is dropped
// before any send; per-sink serialization is the sink's own job, so one
// slow client cannot stall the registry or other deliveries.
func (g *Game) Broadcast(payload []byte) int {
	type target struct {
		username string
		sink     model.Sink
	}

	g.mu.RLock()
	targets := make([]target, 0, len(g.players))
	for _, p := range g.players {
		if p.Connected && p.Sink != nil {
			targets = append(targets, target{username: p.Username, sink: p.Sink})
		}
	}
	g.mu.RUnlock()

	failures := 0
	for _, t := range targets {
		if err := t.sink.Send(payload); err != nil {
			failures++
			g.logger.Warn("broadcast delivery failed",
				slog.String("player", t.username),
				slog.String("error", err.Error()))
		}
	}
	return failures
}

// copyTeam snapshots a team so callers cannot mutate shared state
func copyTeam(t *model.Team) model.Team {
	out := *t
	out.Members = append([]string(nil), t.Members...)
	return out
}
