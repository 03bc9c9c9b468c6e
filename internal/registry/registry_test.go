package registry

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/cityrunners/server/internal/model"
	"github.com/cityrunners/server/internal/testutil"
)

// fakeSink records deliveries and can be told to fail
type fakeSink struct {
	sent   [][]byte
	fail   bool
	closed bool
}

func (f *fakeSink) Send(payload []byte) error {
	if f.fail {
		return errors.New("send failed")
	}
	f.sent = append(f.sent, payload)
	return nil
}

func (f *fakeSink) Close() error {
	f.closed = true
	return nil
}

type GameSuite struct {
	suite.Suite
	game *Game
}

func TestGameSuite(t *testing.T) {
	suite.Run(t, new(GameSuite))
}

func (s *GameSuite) SetupTest() {
	s.game = New(testutil.NopLogger())
}

// Player tests

func (s *GameSuite) TestCreateAndGetPlayer() {
	err := s.game.CreatePlayer("alice")
	s.Require().NoError(err)

	p, err := s.game.GetPlayer("alice")
	s.Require().NoError(err)
	s.Equal("alice", p.Username)
	s.Equal(model.RoleSpectator, p.Role)
	s.False(p.Connected)
}

func (s *GameSuite) TestCreatePlayerFailsIfExists() {
	_ = s.game.CreatePlayer("alice")

	err := s.game.CreatePlayer("alice")
	s.ErrorIs(err, model.ErrPlayerExists)
}

func (s *GameSuite) TestGetPlayerNotFound() {
	_, err := s.game.GetPlayer("nobody")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *GameSuite) TestEnsurePlayerIsIdempotent() {
	s.game.EnsurePlayer("alice")
	_ = s.game.SetRole("alice", model.RoleHider)

	s.game.EnsurePlayer("alice")

	p, err := s.game.GetPlayer("alice")
	s.Require().NoError(err)
	s.Equal(model.RoleHider, p.Role)
}

func (s *GameSuite) TestPlayersSortedByUsername() {
	_ = s.game.CreatePlayer("carol")
	_ = s.game.CreatePlayer("alice")
	_ = s.game.CreatePlayer("bob")

	players := s.game.Players()
	s.Require().Len(players, 3)
	s.Equal("alice", players[0].Username)
	s.Equal("bob", players[1].Username)
	s.Equal("carol", players[2].Username)
}

func (s *GameSuite) TestRemovePlayerRemovesTeamMembership() {
	_ = s.game.CreatePlayer("alice")
	_ = s.game.CreateTeam("reds", "alice")

	err := s.game.RemovePlayer("alice")
	s.Require().NoError(err)

	team, err := s.game.GetTeam("reds")
	s.Require().NoError(err)
	s.Empty(team.Members)
}

func (s *GameSuite) TestRemovePlayerClosesSink() {
	_ = s.game.CreatePlayer("alice")
	sink := &fakeSink{}
	_ = s.game.AttachSink("alice", sink)

	err := s.game.RemovePlayer("alice")
	s.Require().NoError(err)
	s.True(sink.closed)
}

func (s *GameSuite) TestSetLocation() {
	_ = s.game.CreatePlayer("alice")

	loc := model.Location{Latitude: 22.3, Longitude: 114.2, Timestamp: time.Now()}
	err := s.game.SetLocation("alice", loc)
	s.Require().NoError(err)

	p, _ := s.game.GetPlayer("alice")
	s.Require().NotNil(p.Location)
	s.Equal(22.3, p.Location.Latitude)
	s.Equal(114.2, p.Location.Longitude)
}

func (s *GameSuite) TestToggleReady() {
	_ = s.game.CreatePlayer("alice")

	ready, err := s.game.ToggleReady("alice")
	s.Require().NoError(err)
	s.True(ready)

	ready, err = s.game.ToggleReady("alice")
	s.Require().NoError(err)
	s.False(ready)
}

// Sink attach/detach tests

func (s *GameSuite) TestAttachSinkMarksConnected() {
	_ = s.game.CreatePlayer("alice")

	err := s.game.AttachSink("alice", &fakeSink{})
	s.Require().NoError(err)

	p, _ := s.game.GetPlayer("alice")
	s.True(p.Connected)
	s.NotNil(p.Sink)
}

func (s *GameSuite) TestAttachSinkFailsWhenAlreadyConnected() {
	_ = s.game.CreatePlayer("alice")
	_ = s.game.AttachSink("alice", &fakeSink{})

	err := s.game.AttachSink("alice", &fakeSink{})
	s.ErrorIs(err, model.ErrAlreadyConnected)
}

func (s *GameSuite) TestDetachSinkPreservesIdentityAndTeam() {
	_ = s.game.CreatePlayer("alice")
	_ = s.game.CreateTeam("reds", "alice")
	_ = s.game.AttachSink("alice", &fakeSink{})

	s.game.DetachSink("alice")

	p, err := s.game.GetPlayer("alice")
	s.Require().NoError(err)
	s.False(p.Connected)
	s.Nil(p.Sink)
	s.Equal("reds", p.Team)
}

// Team tests

func (s *GameSuite) TestCreateTeamAutoJoinsCreator() {
	_ = s.game.CreatePlayer("alice")

	err := s.game.CreateTeam("reds", "alice")
	s.Require().NoError(err)

	team, err := s.game.GetTeam("reds")
	s.Require().NoError(err)
	s.Equal([]string{"alice"}, team.Members)

	p, _ := s.game.GetPlayer("alice")
	s.Equal("reds", p.Team)
}

func (s *GameSuite) TestCreateTeamFailsIfNameTaken() {
	_ = s.game.CreatePlayer("alice")
	_ = s.game.CreatePlayer("bob")
	_ = s.game.CreateTeam("reds", "alice")

	err := s.game.CreateTeam("reds", "bob")
	s.ErrorIs(err, model.ErrTeamExists)
}

func (s *GameSuite) TestCreateTeamFailsIfCreatorOnTeam() {
	_ = s.game.CreatePlayer("alice")
	_ = s.game.CreateTeam("reds", "alice")

	err := s.game.CreateTeam("blues", "alice")
	s.ErrorIs(err, model.ErrAlreadyOnTeam)

	// No half-created team left behind
	_, err = s.game.GetTeam("blues")
	s.ErrorIs(err, model.ErrTeamNotFound)
}

func (s *GameSuite) TestJoinTeamKeepsMembershipConsistent() {
	_ = s.game.CreatePlayer("alice")
	_ = s.game.CreatePlayer("bob")
	_ = s.game.CreateTeam("reds", "alice")

	err := s.game.JoinTeam("bob", "reds")
	s.Require().NoError(err)

	team, _ := s.game.GetTeam("reds")
	s.Contains(team.Members, "bob")

	p, _ := s.game.GetPlayer("bob")
	s.Equal("reds", p.Team)
}

func (s *GameSuite) TestJoinTeamFailsWhenAlreadyOnATeam() {
	_ = s.game.CreatePlayer("alice")
	_ = s.game.CreatePlayer("bob")
	_ = s.game.CreateTeam("reds", "alice")
	_ = s.game.CreateTeam("blues", "bob")

	err := s.game.JoinTeam("bob", "reds")
	s.ErrorIs(err, model.ErrAlreadyOnTeam)

	// Membership unchanged on both sides
	reds, _ := s.game.GetTeam("reds")
	s.NotContains(reds.Members, "bob")
	p, _ := s.game.GetPlayer("bob")
	s.Equal("blues", p.Team)
}

func (s *GameSuite) TestLeaveTeamFailsWhenNotAMember() {
	_ = s.game.CreatePlayer("alice")
	_ = s.game.CreatePlayer("bob")
	_ = s.game.CreateTeam("reds", "alice")

	err := s.game.LeaveTeam("bob", "reds")
	s.ErrorIs(err, model.ErrNotAMember)
}

func (s *GameSuite) TestLeaveTeamClearsPlayerReference() {
	_ = s.game.CreatePlayer("alice")
	_ = s.game.CreateTeam("reds", "alice")

	err := s.game.LeaveTeam("alice", "reds")
	s.Require().NoError(err)

	p, _ := s.game.GetPlayer("alice")
	s.Empty(p.Team)
}

func (s *GameSuite) TestRemoveTeamClearsAllMembers() {
	_ = s.game.CreatePlayer("alice")
	_ = s.game.CreatePlayer("bob")
	_ = s.game.CreateTeam("reds", "alice")
	_ = s.game.JoinTeam("bob", "reds")

	err := s.game.RemoveTeam("reds")
	s.Require().NoError(err)

	for _, username := range []string{"alice", "bob"} {
		p, err := s.game.GetPlayer(username)
		s.Require().NoError(err)
		s.Empty(p.Team)
	}
}

func (s *GameSuite) TestTeamSnapshotIsACopy() {
	_ = s.game.CreatePlayer("alice")
	_ = s.game.CreateTeam("reds", "alice")

	team, _ := s.game.GetTeam("reds")
	team.Members[0] = "mallory"

	fresh, _ := s.game.GetTeam("reds")
	s.Equal([]string{"alice"}, fresh.Members)
}

// Phase tests

func (s *GameSuite) TestInitialPhaseIsLobby() {
	s.Equal(model.PhaseLobby, s.game.Phase().Kind)
}

func (s *GameSuite) TestClearRoundResetsRolesAndReadiness() {
	_ = s.game.CreatePlayer("alice")
	_ = s.game.CreatePlayer("root")
	_ = s.game.SetRole("alice", model.RoleHider)
	_ = s.game.SetRole("root", model.RoleAdmin)
	_, _ = s.game.ToggleReady("alice")

	s.game.ClearRound()

	alice, _ := s.game.GetPlayer("alice")
	s.Equal(model.RoleSpectator, alice.Role)
	s.False(alice.Ready)

	// Admins keep their role
	admin, _ := s.game.GetPlayer("root")
	s.Equal(model.RoleAdmin, admin.Role)
}

// Broadcast tests

func (s *GameSuite) TestBroadcastReachesOnlyConnectedPlayers() {
	_ = s.game.CreatePlayer("alice")
	_ = s.game.CreatePlayer("bob")
	_ = s.game.CreatePlayer("carol")

	aliceSink := &fakeSink{}
	bobSink := &fakeSink{}
	_ = s.game.AttachSink("alice", aliceSink)
	_ = s.game.AttachSink("bob", bobSink)
	// carol stays disconnected

	failures := s.game.Broadcast([]byte("hello"))
	s.Zero(failures)

	s.Len(aliceSink.sent, 1)
	s.Len(bobSink.sent, 1)
}

func (s *GameSuite) TestBroadcastCountsFailures() {
	_ = s.game.CreatePlayer("alice")
	_ = s.game.CreatePlayer("bob")

	good := &fakeSink{}
	bad := &fakeSink{fail: true}
	_ = s.game.AttachSink("alice", good)
	_ = s.game.AttachSink("bob", bad)

	failures := s.game.Broadcast([]byte("hello"))
	s.Equal(1, failures)

	// The failed delivery never blocks the good one
	s.Len(good.sent, 1)
}

func (s *GameSuite) TestBroadcastToEmptyRegistry() {
	s.Zero(s.game.Broadcast([]byte("hello")))
}
