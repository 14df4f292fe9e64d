package websocket

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/SARVESHVARADKAR123/courtroom/internal/observability"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Handler struct {
	hub *Hub
}

func NewHandler(hub *Hub) *Handler {
	return &Handler{hub: hub}
}

// ServeHTTP upgrades the connection, sends the current snapshot and then
// streams a frame per core event until the viewer goes away.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := observability.GetLogger(r.Context())
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("upgrade error", zap.Error(err))
		return
	}

	session := NewSession(uuid.NewString(), conn)

	initial, err := h.hub.frame(nil)
	if err != nil {
		log.Error("initial snapshot encode failed", zap.Error(err))
		session.Close()
		return
	}
	session.TrySend(initial)

	h.hub.Add(session)
	session.Start()
	observability.WebSocketConnections.Inc()
	log.Info("viewer connected", zap.String("session_id", session.ID))

	conn.SetReadLimit(4096)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	go h.readLoop(session)
}

// readLoop only watches for the viewer closing the connection.
func (h *Handler) readLoop(s *Session) {
	defer func() {
		h.hub.Remove(s)
		s.Close()
		observability.WebSocketConnections.Dec()
	}()

	for {
		if _, _, err := s.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				observability.GetLogger(context.Background()).Warn("viewer read error", zap.String("session_id", s.ID), zap.Error(err))
			}
			return
		}
	}
}
