package factory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/cityrunners/server/internal/model"
)

type FactorySuite struct {
	suite.Suite
}

func TestFactorySuite(t *testing.T) {
	suite.Run(t, new(FactorySuite))
}

func (s *FactorySuite) TestNewDefaultsToMemoryStorage() {
	app, err := New(Config{})
	s.Require().NoError(err)
	s.NotNil(app.Storage)
	s.NotNil(app.Registry)
	s.NotNil(app.AuthService)
	s.NotNil(app.Machine)
	s.NotNil(app.Sessions)
}

func (s *FactorySuite) TestNewRejectsUnknownStorageType() {
	_, err := New(Config{StorageType: "etcd"})
	s.Error(err)
}

func (s *FactorySuite) TestNewRequiresRedisConfig() {
	_, err := New(Config{StorageType: StorageTypeRedis})
	s.Error(err)
}

func (s *FactorySuite) TestSeedRosterLoadsPlayersAndAdmins() {
	app := NewTestApp()
	ctx := context.Background()

	s.Require().NoError(app.Storage.SavePlayer(ctx, &model.RosterEntry{Username: "alice"}))
	s.Require().NoError(app.Storage.SavePlayer(ctx, &model.RosterEntry{Username: "root", Admin: true}))

	seeded, err := app.SeedRoster(ctx)
	s.Require().NoError(err)
	s.Equal(2, seeded)

	alice, err := app.Registry.GetPlayer("alice")
	s.Require().NoError(err)
	s.Equal(model.RoleSpectator, alice.Role)

	admin, err := app.Registry.GetPlayer("root")
	s.Require().NoError(err)
	s.Equal(model.RoleAdmin, admin.Role)
}
