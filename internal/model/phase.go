package model

import "time"

// PhaseKind identifies a stage of the match
type PhaseKind string

const (
	PhaseLobby    PhaseKind = "Lobby"
	PhaseHide     PhaseKind = "Hide"
	PhaseSeek     PhaseKind = "Seek"
	PhaseRoundEnd PhaseKind = "RoundEnd"
)

// Next returns the successor stage in the match cycle
func (k PhaseKind) Next() PhaseKind {
	switch k {
	case PhaseLobby:
		return PhaseHide
	case PhaseHide:
		return PhaseSeek
	case PhaseSeek:
		return PhaseRoundEnd
	case PhaseRoundEnd:
		return PhaseLobby
	}
	return PhaseLobby
}

// Phase is the current stage of the match plus its dwell deadline.
// A zero Deadline means the stage has no timer (Lobby waits for the
// administrative start command).
type Phase struct {
	Kind     PhaseKind
	Deadline time.Time
}

// HasDeadline reports whether the phase transitions on a timer
func (p Phase) HasDeadline() bool {
	return !p.Deadline.IsZero()
}
