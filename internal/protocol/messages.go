// Package protocol defines the JSON frames exchanged over a session's
// websocket connection and the closed set of client operations.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cityrunners/server/internal/model"
)

// Operation discriminators
const (
	OpLocation = "location"
	OpChat     = "chat"
	OpState    = "state"
)

var (
	// ErrMalformedFrame indicates the frame was not valid JSON; the client
	// gets a structured error reply and the connection stays open.
	ErrMalformedFrame = errors.New("malformed frame")
	// ErrInvalidLocation indicates a location report with missing or
	// non-numeric coordinates; the single message is dropped.
	ErrInvalidLocation = errors.New("invalid location report")
)

// ClientMessage is one decoded client operation
type ClientMessage interface {
	clientMessage()
}

// LocationReport is a client position update
type LocationReport struct {
	Latitude  float64
	Longitude float64
}

// Chat is a client chat message for fanout to all connected players
type Chat struct {
	Msg string
}

// Unknown carries an unrecognized op; it is logged and ignored
type Unknown struct {
	Op string
}

func (LocationReport) clientMessage() {}
func (Chat) clientMessage()           {}
func (Unknown) clientMessage()        {}

// DecodeClient parses one inbound frame into its operation variant
func DecodeClient(data []byte) (ClientMessage, error) {
	var env struct {
		Op string `json:"op"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}

	switch env.Op {
	case OpLocation:
		var body struct {
			Latitude  *float64 `json:"latitude"`
			Longitude *float64 `json:"longitude"`
		}
		if err := json.Unmarshal(data, &body); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidLocation, err)
		}
		if body.Latitude == nil || body.Longitude == nil {
			return nil, fmt.Errorf("%w: missing coordinates", ErrInvalidLocation)
		}
		return LocationReport{Latitude: *body.Latitude, Longitude: *body.Longitude}, nil

	case OpChat:
		var body struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(data, &body); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
		}
		return Chat{Msg: body.Msg}, nil

	default:
		return Unknown{Op: env.Op}, nil
	}
}

// ChatFrame is the server-to-client chat fanout frame
type ChatFrame struct {
	Op  string `json:"op"`
	Msg string `json:"msg"`
	Who string `json:"who"`
}

// StateFrame announces a phase change to all connected players
type StateFrame struct {
	Op    string `json:"op"`
	State string `json:"state"`
}

// ErrorFrame is the structured reply for malformed client input
type ErrorFrame struct {
	Error string `json:"error"`
}

// EncodeChat builds the fanout frame for a chat message
func EncodeChat(msg, who string) []byte {
	data, _ := json.Marshal(ChatFrame{Op: OpChat, Msg: msg, Who: who})
	return data
}

// EncodeState builds the phase-change notification frame
func EncodeState(kind model.PhaseKind) []byte {
	data, _ := json.Marshal(StateFrame{Op: OpState, State: string(kind)})
	return data
}

// EncodeError builds a structured error reply
func EncodeError(message string) []byte {
	data, _ := json.Marshal(ErrorFrame{Error: message})
	return data
}
