package model

// TeamRole describes which side of the round a team plays on
type TeamRole string

const (
	TeamSeeker    TeamRole = "seeker"
	TeamHider     TeamRole = "hider"
	TeamSpectator TeamRole = "spectator"
)

// Team is a named group of players.
// Invariant: every member's Player.Team names this team.
type Team struct {
	Name    string
	Members []string
	Role    TeamRole
}

// NewTeam creates an empty spectator team
func NewTeam(name string) *Team {
	return &Team{
		Name: name,
		Role: TeamSpectator,
	}
}

// HasMember reports whether the username is on the team
func (t *Team) HasMember(username string) bool {
	for _, m := range t.Members {
		if m == username {
			return true
		}
	}
	return false
}

// AddMember appends the username to the member list
func (t *Team) AddMember(username string) {
	t.Members = append(t.Members, username)
}

// RemoveMember drops the username from the member list
func (t *Team) RemoveMember(username string) {
	for i, m := range t.Members {
		if m == username {
			t.Members = append(t.Members[:i], t.Members[i+1:]...)
			return
		}
	}
}
