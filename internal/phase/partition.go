package phase

import (
	"github.com/cityrunners/server/internal/model"
	"github.com/cityrunners/server/internal/registry"
)

// Partitioner decides who hides and who seeks when the hide phase
// begins. The policy is pluggable; the machine only guarantees it runs
// before the phase-change notification goes out.
type Partitioner interface {
	Partition(g *registry.Game)
}

// TeamRolePartitioner assigns player roles from their team's role: the
// first member of a seeker team becomes the primary seeker and the rest
// secondary, hider-team members become hiders, and everyone else
// spectates. Admins keep their role.
type TeamRolePartitioner struct{}

// Partition applies the team-role policy to every player
func (TeamRolePartitioner) Partition(g *registry.Game) {
	for _, t := range g.Teams() {
		for i, username := range t.Members {
			p, err := g.GetPlayer(username)
			if err != nil || p.IsAdmin() {
				continue
			}
			role := model.RoleSpectator
			switch t.Role {
			case model.TeamHider:
				role = model.RoleHider
			case model.TeamSeeker:
				if i == 0 {
					role = model.RolePrimarySeeker
				} else {
					role = model.RoleSecondarySeeker
				}
			}
			_ = g.SetRole(username, role)
		}
	}
}
