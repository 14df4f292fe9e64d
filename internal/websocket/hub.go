package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/SARVESHVARADKAR123/courtroom/internal/application"
)

// SnapshotSource is the read side of the courtroom state.
type SnapshotSource interface {
	Snapshot() application.Snapshot
}

// Frame is what viewers receive: the triggering event, if any, and the
// state right after it.
type Frame struct {
	Event    *application.Event   `json:"event,omitempty"`
	Snapshot application.Snapshot `json:"snapshot"`
}

// Hub tracks connected sessions and pushes a fresh snapshot to each of them
// whenever the core emits an event.
type Hub struct {
	source SnapshotSource

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewHub(source SnapshotSource) *Hub {
	return &Hub{source: source, sessions: make(map[string]*Session)}
}

func (h *Hub) Add(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions[s.ID] = s
}

// Remove drops s only if it is still the registered session for its id.
func (h *Hub) Remove(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if cur, ok := h.sessions[s.ID]; ok && cur == s {
		delete(h.sessions, s.ID)
	}
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Broadcast sends one frame to every session and returns how many accepted it.
func (h *Hub) Broadcast(payload []byte) int {
	h.mu.RLock()
	targets := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		targets = append(targets, s)
	}
	h.mu.RUnlock()

	sent := 0
	for _, s := range targets {
		if s.TrySend(payload) {
			sent++
		}
	}
	return sent
}

func (h *Hub) frame(ev *application.Event) ([]byte, error) {
	return json.Marshal(Frame{Event: ev, Snapshot: h.source.Snapshot()})
}

func (h *Hub) Name() string { return "websocket_hub" }

func (h *Hub) HandleEvent(ctx context.Context, ev application.Event) error {
	if h.Len() == 0 {
		return nil
	}
	payload, err := h.frame(&ev)
	if err != nil {
		return err
	}
	h.Broadcast(payload)
	return nil
}

func (h *Hub) CloseAll() {
	h.mu.Lock()
	sessions := h.sessions
	h.sessions = make(map[string]*Session)
	h.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
