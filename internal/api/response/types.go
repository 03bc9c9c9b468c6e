package response

import (
	"time"

	"github.com/cityrunners/server/internal/model"
)

// Login is the response body for POST /login
type Login struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Admin     bool      `json:"admin"`
}

// Player is the public view of a player record
type Player struct {
	Username  string          `json:"username"`
	Connected bool            `json:"connected"`
	Role      string          `json:"role"`
	Ready     bool            `json:"ready"`
	Team      string          `json:"team,omitempty"`
	Location  *model.Location `json:"location,omitempty"`
}

// Team is the public view of a team record
type Team struct {
	Name    string   `json:"name"`
	Role    string   `json:"role"`
	Members []string `json:"members"`
}

// Phase reports the current match phase
type Phase struct {
	State    string     `json:"state"`
	Deadline *time.Time `json:"deadline,omitempty"`
}

// Ready reports a player's readiness after toggling
type Ready struct {
	Ready bool `json:"ready"`
}

// Timer reports the seconds left on the current dwell deadline;
// RemainingSeconds is null when the phase has no timer
type Timer struct {
	RemainingSeconds *int64 `json:"remaining_seconds"`
}

// FromPlayer converts a registry snapshot to its public view
func FromPlayer(p model.Player) Player {
	return Player{
		Username:  p.Username,
		Connected: p.Connected,
		Role:      string(p.Role),
		Ready:     p.Ready,
		Team:      p.Team,
		Location:  p.Location,
	}
}

// FromTeam converts a registry snapshot to its public view
func FromTeam(t model.Team) Team {
	members := t.Members
	if members == nil {
		members = []string{}
	}
	return Team{
		Name:    t.Name,
		Role:    string(t.Role),
		Members: members,
	}
}
