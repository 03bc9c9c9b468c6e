// Package session owns one client connection end to end: authentication,
// the connection upgrade, the read loop, and teardown.
package session

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/cityrunners/server/internal/dependencies/clock"
	"github.com/cityrunners/server/internal/model"
	"github.com/cityrunners/server/internal/protocol"
	"github.com/cityrunners/server/internal/registry"
	"github.com/cityrunners/server/internal/services/auth"
)

// Handler upgrades authenticated requests to websocket sessions
type Handler struct {
	registry *registry.Game
	auth     *auth.Service
	clock    clock.Clock
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHandler creates the websocket session handler
func NewHandler(reg *registry.Game, authService *auth.Service, clk clock.Clock, logger *slog.Logger) *Handler {
	return &Handler{
		registry: reg,
		auth:     authService,
		clock:    clk,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Clients are native apps, not browsers; there is no
			// meaningful origin to check.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger.With(slog.String("component", "session")),
	}
}

// ServeHTTP authenticates the bearer token, upgrades the connection,
// registers the player's sink, and runs the read loop until the
// connection closes
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")

	identity, err := h.auth.Authenticate(token)
	if err != nil {
		writeReject(w, http.StatusUnauthorized, "invalid token")
		return
	}

	// A decoded token is not enough on its own: the subject must have a
	// live registry record carrying this exact token, still unexpired.
	player, err := h.registry.GetPlayer(identity.Subject)
	if err != nil {
		writeReject(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if player.Token != token || h.clock.Now().After(player.TokenExpiry) {
		writeReject(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if player.Connected {
		writeReject(w, http.StatusConflict, "already connected")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed",
			slog.String("player", identity.Subject),
			slog.String("error", err.Error()))
		return
	}

	sink := NewSink(conn)

	// Liveness probe before registering: if we cannot even ping, the
	// session never opens.
	if err := sink.Ping(); err != nil {
		h.logger.Error("liveness probe failed",
			slog.String("player", identity.Subject),
			slog.String("error", err.Error()))
		_ = conn.Close()
		return
	}

	if err := h.registry.AttachSink(identity.Subject, sink); err != nil {
		// Lost a race with a concurrent connection for the same subject
		h.logger.Warn("session registration rejected",
			slog.String("player", identity.Subject),
			slog.String("error", err.Error()))
		_ = conn.Close()
		return
	}

	h.logger.Info("session opened", slog.String("player", identity.Subject))

	h.readLoop(conn, sink, identity.Subject)

	h.registry.DetachSink(identity.Subject)
	_ = conn.Close()
	h.logger.Info("session closed", slog.String("player", identity.Subject))
}

// readLoop dispatches inbound frames until the connection fails or the
// client closes it. Protocol errors are answered and survived; only
// transport errors end the session.
func (h *Handler) readLoop(conn *websocket.Conn, sink *Sink, username string) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warn("connection error",
					slog.String("player", username),
					slog.String("error", err.Error()))
			}
			return
		}

		msg, err := protocol.DecodeClient(data)
		if err != nil {
			if errors.Is(err, protocol.ErrInvalidLocation) {
				h.logger.Warn("dropping invalid location report",
					slog.String("player", username),
					slog.String("error", err.Error()))
				continue
			}
			if serr := sink.Send(protocol.EncodeError(err.Error())); serr != nil {
				h.logger.Warn("failed to send error reply",
					slog.String("player", username),
					slog.String("error", serr.Error()))
			}
			continue
		}

		h.dispatch(username, msg)
	}
}

// dispatch applies one decoded client operation
func (h *Handler) dispatch(username string, msg protocol.ClientMessage) {
	switch m := msg.(type) {
	case protocol.LocationReport:
		loc := model.Location{
			Latitude:  m.Latitude,
			Longitude: m.Longitude,
			Timestamp: h.clock.Now(),
		}
		if err := h.registry.SetLocation(username, loc); err != nil {
			h.logger.Warn("location update failed",
				slog.String("player", username),
				slog.String("error", err.Error()))
		}

	case protocol.Chat:
		if failures := h.registry.Broadcast(protocol.EncodeChat(m.Msg, username)); failures > 0 {
			h.logger.Warn("chat not delivered to all players",
				slog.String("player", username),
				slog.Int("failures", failures))
		}

	case protocol.Unknown:
		h.logger.Warn("ignoring unknown operation",
			slog.String("player", username),
			slog.String("op", m.Op))
	}
}

// writeReject answers a connection attempt that never gets upgraded
func writeReject(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(protocol.ErrorFrame{Error: message})
}
