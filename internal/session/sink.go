package session

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cityrunners/server/internal/model"
)

const (
	// Time allowed to complete one write to the peer
	writeWait = 10 * time.Second
)

// Sink wraps one websocket connection's outbound half behind its own
// mutex. Broadcasts and direct replies racing for the same connection
// serialize here, never through the registry lock, so one slow client
// only ever delays its own writes.
type Sink struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

// Ensure Sink satisfies the registry's sink contract
var _ model.Sink = (*Sink)(nil)

// NewSink wraps a websocket connection
func NewSink(conn *websocket.Conn) *Sink {
	return &Sink{conn: conn}
}

// Send writes one text frame, holding the sink's lock for the duration
// of the write only
func (s *Sink) Send(payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.TextMessage, payload)
}

// Ping sends a liveness probe
func (s *Sink) Ping() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteControl(websocket.PingMessage, []byte{1}, time.Now().Add(writeWait))
}

// Close closes the underlying connection
func (s *Sink) Close() error {
	return s.conn.Close()
}
