package phase

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/cityrunners/server/internal/dependencies/mocks"
	"github.com/cityrunners/server/internal/model"
	"github.com/cityrunners/server/internal/registry"
	"github.com/cityrunners/server/internal/testutil"
)

// captureSink collects broadcast frames for assertions
type captureSink struct {
	frames [][]byte
}

func (c *captureSink) Send(payload []byte) error {
	c.frames = append(c.frames, payload)
	return nil
}

func (c *captureSink) Close() error { return nil }

func (c *captureSink) states() []string {
	var out []string
	for _, f := range c.frames {
		var frame struct {
			Op    string `json:"op"`
			State string `json:"state"`
		}
		if err := json.Unmarshal(f, &frame); err == nil && frame.Op == "state" {
			out = append(out, frame.State)
		}
	}
	return out
}

type MachineSuite struct {
	suite.Suite
	game    *registry.Game
	clock   *mocks.MockClock
	machine *Machine
}

func TestMachineSuite(t *testing.T) {
	suite.Run(t, new(MachineSuite))
}

func (s *MachineSuite) SetupTest() {
	s.game = registry.New(testutil.NopLogger())
	s.clock = mocks.NewMockClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	s.machine = New(s.game, s.clock, DefaultConfig(), nil, testutil.NopLogger())
}

func (s *MachineSuite) TestStartCommandEntersHide() {
	s.machine.handleCommand(CommandToHide)

	p := s.game.Phase()
	s.Equal(model.PhaseHide, p.Kind)
	s.True(p.HasDeadline())
	s.Equal(s.clock.Now().Add(30*time.Minute), p.Deadline)
}

func (s *MachineSuite) TestOutOfOrderCommandIgnored() {
	// Seek is not the successor of Lobby
	s.machine.handleCommand(CommandToSeek)
	s.Equal(model.PhaseLobby, s.game.Phase().Kind)

	s.machine.handleCommand(CommandToRoundEnd)
	s.Equal(model.PhaseLobby, s.game.Phase().Kind)
}

func (s *MachineSuite) TestRepeatedStartCommandIgnored() {
	s.machine.handleCommand(CommandToHide)
	deadline := s.game.Phase().Deadline

	s.clock.Advance(time.Minute)
	s.machine.handleCommand(CommandToHide)

	// Still in Hide with the original deadline
	p := s.game.Phase()
	s.Equal(model.PhaseHide, p.Kind)
	s.Equal(deadline, p.Deadline)
}

func (s *MachineSuite) TestTickBeforeDeadlineDoesNothing() {
	s.machine.handleCommand(CommandToHide)

	s.clock.Advance(29 * time.Minute)
	s.machine.tick()

	s.Equal(model.PhaseHide, s.game.Phase().Kind)
}

func (s *MachineSuite) TestFullRoundCycle() {
	sink := &captureSink{}
	s.game.EnsurePlayer("alice")
	s.Require().NoError(s.game.AttachSink("alice", sink))

	s.machine.handleCommand(CommandToHide)

	s.clock.Advance(30 * time.Minute)
	s.machine.tick()
	s.Equal(model.PhaseSeek, s.game.Phase().Kind)

	s.clock.Advance(60 * time.Minute)
	s.machine.tick()
	s.Equal(model.PhaseRoundEnd, s.game.Phase().Kind)

	s.clock.Advance(5 * time.Minute)
	s.machine.tick()
	s.Equal(model.PhaseLobby, s.game.Phase().Kind)

	// Each transition announced exactly once, in order
	s.Equal([]string{"Hide", "Seek", "RoundEnd", "Lobby"}, sink.states())
}

func (s *MachineSuite) TestExpiredDeadlineAdvancesExactlyOnce() {
	s.machine.handleCommand(CommandToHide)

	// Long overdue still moves one edge, not several
	s.clock.Advance(3 * time.Hour)
	s.machine.tick()
	s.Equal(model.PhaseSeek, s.game.Phase().Kind)
}

func (s *MachineSuite) TestLobbyEntryClearsRound() {
	s.game.EnsurePlayer("alice")
	_, _ = s.game.ToggleReady("alice")
	s.Require().NoError(s.game.SetRole("alice", model.RoleHider))

	s.machine.enter(model.PhaseLobby)

	p, _ := s.game.GetPlayer("alice")
	s.Equal(model.RoleSpectator, p.Role)
	s.False(p.Ready)
}

func (s *MachineSuite) TestLobbyHasNoDeadline() {
	s.machine.enter(model.PhaseLobby)
	s.False(s.game.Phase().HasDeadline())
}

func (s *MachineSuite) TestHideEntryPartitionsRoles() {
	s.game.EnsurePlayer("alice")
	s.game.EnsurePlayer("bob")
	s.game.EnsurePlayer("carol")
	s.Require().NoError(s.game.CreateTeam("foxes", "alice"))
	s.Require().NoError(s.game.CreateTeam("hounds", "bob"))
	s.Require().NoError(s.game.JoinTeam("carol", "hounds"))
	s.Require().NoError(s.game.SetTeamRole("foxes", model.TeamHider))
	s.Require().NoError(s.game.SetTeamRole("hounds", model.TeamSeeker))

	s.machine.handleCommand(CommandToHide)

	alice, _ := s.game.GetPlayer("alice")
	s.Equal(model.RoleHider, alice.Role)

	bob, _ := s.game.GetPlayer("bob")
	s.Equal(model.RolePrimarySeeker, bob.Role)

	carol, _ := s.game.GetPlayer("carol")
	s.Equal(model.RoleSecondarySeeker, carol.Role)
}

func (s *MachineSuite) TestPartitionSkipsAdminsAndTeamless() {
	s.game.EnsurePlayer("root")
	s.game.EnsurePlayer("drifter")
	s.Require().NoError(s.game.SetRole("root", model.RoleAdmin))

	s.machine.handleCommand(CommandToHide)

	admin, _ := s.game.GetPlayer("root")
	s.Equal(model.RoleAdmin, admin.Role)

	drifter, _ := s.game.GetPlayer("drifter")
	s.Equal(model.RoleSpectator, drifter.Role)
}
