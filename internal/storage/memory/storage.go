package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/cityrunners/server/internal/model"
	"github.com/cityrunners/server/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu      sync.RWMutex
	players map[string]*model.RosterEntry
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players: make(map[string]*model.RosterEntry),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) SavePlayer(ctx context.Context, entry *model.RosterEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[entry.Username] = entry
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, username string) (*model.RosterEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.players[username]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return entry, nil
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.RosterEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.RosterEntry, 0, len(s.players))
	for _, entry := range s.players {
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (s *Storage) DeletePlayer(ctx context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.players, username)
	return nil
}
