package storage

import (
	"context"

	"github.com/cityrunners/server/internal/model"
)

// Storage defines the interface for roster persistence. The live match
// state never touches storage; only player identities and credentials do.
type Storage interface {
	// SavePlayer upserts a roster entry
	SavePlayer(ctx context.Context, entry *model.RosterEntry) error
	// GetPlayer fetches a roster entry by username
	GetPlayer(ctx context.Context, username string) (*model.RosterEntry, error)
	// ListPlayers returns the full roster, used once at startup to seed
	// the registry
	ListPlayers(ctx context.Context) ([]*model.RosterEntry, error)
	// DeletePlayer removes a roster entry
	DeletePlayer(ctx context.Context, username string) error
}
