// Package phase drives match progression through the
// Lobby -> Hide -> Seek -> RoundEnd cycle.
package phase

import (
	"context"
	"log/slog"
	"time"

	"github.com/cityrunners/server/internal/dependencies/clock"
	"github.com/cityrunners/server/internal/model"
	"github.com/cityrunners/server/internal/protocol"
	"github.com/cityrunners/server/internal/registry"
)

// Command is an external request to advance the match to a named phase.
// Only the edge to the current phase's successor is honored; anything
// else is logged and ignored.
type Command int

const (
	CommandToLobby Command = iota
	CommandToHide
	CommandToSeek
	CommandToRoundEnd
)

// Target returns the phase the command asks for
func (c Command) Target() model.PhaseKind {
	switch c {
	case CommandToHide:
		return model.PhaseHide
	case CommandToSeek:
		return model.PhaseSeek
	case CommandToRoundEnd:
		return model.PhaseRoundEnd
	}
	return model.PhaseLobby
}

func (c Command) String() string {
	return "to_" + string(c.Target())
}

// Config holds the tick interval and per-phase dwell durations
type Config struct {
	TickInterval     time.Duration
	HideDuration     time.Duration
	SeekDuration     time.Duration
	RoundEndDuration time.Duration
}

// DefaultConfig returns the standard match timings
func DefaultConfig() Config {
	return Config{
		TickInterval:     time.Second,
		HideDuration:     30 * time.Minute,
		SeekDuration:     60 * time.Minute,
		RoundEndDuration: 5 * time.Minute,
	}
}

// Machine owns the current phase and advances it on timer expiry or
// external command. It is the only writer of the registry's phase field.
type Machine struct {
	registry    *registry.Game
	clock       clock.Clock
	cfg         Config
	partitioner Partitioner
	commands    chan Command
	logger      *slog.Logger
}

// New creates a phase machine. A nil partitioner uses the default
// team-role partitioning.
func New(reg *registry.Game, clk clock.Clock, cfg Config, partitioner Partitioner, logger *slog.Logger) *Machine {
	if cfg.TickInterval == 0 {
		cfg.TickInterval = DefaultConfig().TickInterval
	}
	if partitioner == nil {
		partitioner = TeamRolePartitioner{}
	}
	return &Machine{
		registry:    reg,
		clock:       clk,
		cfg:         cfg,
		partitioner: partitioner,
		commands:    make(chan Command, 8),
		logger:      logger.With(slog.String("component", "phase")),
	}
}

// Commands returns the channel the administrative surface sends on
func (m *Machine) Commands() chan<- Command {
	return m.commands
}

// Run ticks the machine until the context is cancelled. It is expected
// to run for the lifetime of the process.
func (m *Machine) Run(ctx context.Context) {
	m.logger.Info("phase machine started",
		slog.String("phase", string(m.registry.Phase().Kind)))

	ticker := time.NewTicker(m.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("phase machine stopped")
			return
		case cmd := <-m.commands:
			m.handleCommand(cmd)
		case <-ticker.C:
			m.tick()
		}
	}
}

// handleCommand advances to the commanded phase if it is the legal
// successor of the current one
func (m *Machine) handleCommand(cmd Command) {
	current := m.registry.Phase().Kind
	target := cmd.Target()
	if target != current.Next() {
		m.logger.Warn("ignoring out-of-order phase command",
			slog.String("command", cmd.String()),
			slog.String("phase", string(current)))
		return
	}
	m.enter(target)
}

// tick advances the phase when its dwell deadline has elapsed, and
// otherwise runs the per-phase update (currently a no-op, reserved for
// per-phase logic such as proximity checks during Seek)
func (m *Machine) tick() {
	p := m.registry.Phase()
	if p.HasDeadline() && !m.clock.Now().Before(p.Deadline) {
		m.enter(p.Kind.Next())
		return
	}
	m.update(p.Kind)
}

// enter performs the entry actions for the new phase: mutate the
// registry, then announce the change to every connected player. A
// failed delivery never rolls the transition back.
func (m *Machine) enter(kind model.PhaseKind) {
	previous := m.registry.Phase().Kind
	next := model.Phase{Kind: kind}

	switch kind {
	case model.PhaseLobby:
		m.registry.ClearRound()
	case model.PhaseHide:
		m.partitioner.Partition(m.registry)
		next.Deadline = m.clock.Now().Add(m.cfg.HideDuration)
	case model.PhaseSeek:
		next.Deadline = m.clock.Now().Add(m.cfg.SeekDuration)
	case model.PhaseRoundEnd:
		next.Deadline = m.clock.Now().Add(m.cfg.RoundEndDuration)
	}

	m.registry.SetPhase(next)

	m.logger.Info("phase changed",
		slog.String("from", string(previous)),
		slog.String("to", string(kind)))

	if failures := m.registry.Broadcast(protocol.EncodeState(kind)); failures > 0 {
		m.logger.Warn("phase notification not delivered to all players",
			slog.String("phase", string(kind)),
			slog.Int("failures", failures))
	}
}

// update is the per-tick phase-local work while no transition is due
func (m *Machine) update(kind model.PhaseKind) {
	switch kind {
	case model.PhaseLobby, model.PhaseHide, model.PhaseSeek, model.PhaseRoundEnd:
		// no per-tick work yet
	}
}
