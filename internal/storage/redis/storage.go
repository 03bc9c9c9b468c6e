package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cityrunners/server/internal/model"
	"github.com/cityrunners/server/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) SavePlayer(ctx context.Context, entry *model.RosterEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	// Pipeline the entry write and the index update
	pipe := s.client.Pipeline()
	pipe.Set(ctx, playerKey(entry.Username), data, 0)
	pipe.SAdd(ctx, playersIndexKey(), entry.Username)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetPlayer(ctx context.Context, username string) (*model.RosterEntry, error) {
	data, err := s.client.Get(ctx, playerKey(username)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	var entry model.RosterEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.RosterEntry, error) {
	usernames, err := s.client.SMembers(ctx, playersIndexKey()).Result()
	if err != nil {
		return nil, err
	}

	out := make([]*model.RosterEntry, 0, len(usernames))
	for _, username := range usernames {
		entry, err := s.GetPlayer(ctx, username)
		if err != nil {
			if errors.Is(err, model.ErrPlayerNotFound) {
				// Index can briefly outlive a deleted entry
				continue
			}
			return nil, err
		}
		out = append(out, entry)
	}
	return out, nil
}

func (s *Storage) DeletePlayer(ctx context.Context, username string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, playerKey(username))
	pipe.SRem(ctx, playersIndexKey(), username)
	_, err := pipe.Exec(ctx)
	return err
}
