package model

import "time"

// RosterEntry is a player identity as persisted in storage.
// Only identity and credentials are persisted; live match state
// (connectivity, team, readiness) exists solely in the registry.
type RosterEntry struct {
	Username     string
	PasswordHash string // bcrypt hash
	Admin        bool
	CreatedAt    time.Time
}
