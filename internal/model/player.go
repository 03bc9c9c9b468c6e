package model

import "time"

// PlayerRole describes what a player does during a round
type PlayerRole string

const (
	RoleHider           PlayerRole = "hider"
	RolePrimarySeeker   PlayerRole = "primary_seeker"
	RoleSecondarySeeker PlayerRole = "secondary_seeker"
	RoleAdmin           PlayerRole = "admin"
	RoleSpectator       PlayerRole = "spectator"
)

// Sink is the outbound half of a player's live connection.
// Implementations must serialize concurrent Send calls internally.
type Sink interface {
	Send(payload []byte) error
	Close() error
}

// Location is a player's last reported position
type Location struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
}

// Player represents a participant in the match.
// Invariant: Connected is true iff Sink is non-nil.
type Player struct {
	Username    string
	Token       string // current bearer token, refreshed on login
	TokenExpiry time.Time
	Connected   bool
	Role        PlayerRole
	Sink        Sink
	Location    *Location // nil until the first location report
	Team        string    // team name, empty when not on a team
	Ready       bool
}

// NewPlayer creates a disconnected spectator with no credentials
func NewPlayer(username string) *Player {
	return &Player{
		Username: username,
		Role:     RoleSpectator,
	}
}

// IsAdmin reports whether the player holds the admin role
func (p *Player) IsAdmin() bool {
	return p.Role == RoleAdmin
}
