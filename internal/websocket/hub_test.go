package websocket

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SARVESHVARADKAR123/courtroom/internal/application"
	"github.com/SARVESHVARADKAR123/courtroom/internal/domain"
)

type staticSource struct {
	snap application.Snapshot
}

func (s *staticSource) Snapshot() application.Snapshot { return s.snap }

func TestHubRemoveKeepsReplacement(t *testing.T) {
	h := NewHub(&staticSource{})

	s1 := NewSession("s1", nil)
	h.Add(s1)
	replacement := NewSession("s1", nil)
	h.Add(replacement)

	h.Remove(s1)
	assert.Equal(t, 1, h.Len())

	h.Remove(replacement)
	assert.Equal(t, 0, h.Len())
}

func TestHubBroadcast(t *testing.T) {
	src := &staticSource{snap: application.Snapshot{Locked: true}}
	h := NewHub(src)
	s1, s2 := NewSession("s1", nil), NewSession("s2", nil)
	h.Add(s1)
	h.Add(s2)

	require.NoError(t, h.HandleEvent(context.Background(), application.Event{Type: application.EventLocked}))

	for _, s := range []*Session{s1, s2} {
		require.Len(t, s.SendQueue, 1)
		var f Frame
		require.NoError(t, json.Unmarshal(<-s.SendQueue, &f))
		require.NotNil(t, f.Event)
		assert.Equal(t, application.EventLocked, f.Event.Type)
		assert.True(t, f.Snapshot.Locked)
	}
}

func TestSessionBackpressure(t *testing.T) {
	s := NewSession("slow", nil)
	for i := 0; i < SendQueueSize; i++ {
		require.True(t, s.TrySend([]byte("x")))
	}

	assert.False(t, s.TrySend([]byte("overflow")))
	select {
	case <-s.Done():
	default:
		t.Fatal("slow session should be closed")
	}
	assert.False(t, s.TrySend([]byte("after close")))
}

func TestHandlerStreamsFrames(t *testing.T) {
	src := &staticSource{snap: application.Snapshot{
		Messages: []domain.Message{{ID: "coding-1", Text: "Fix User login", Severity: domain.SeverityInfo}},
	}}
	hub := NewHub(src)
	srv := httptest.NewServer(NewHandler(hub))
	defer srv.Close()
	defer hub.CloseAll()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	read := func() Frame {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		var f Frame
		require.NoError(t, json.Unmarshal(data, &f))
		return f
	}

	first := read()
	assert.Nil(t, first.Event)
	require.Len(t, first.Snapshot.Messages, 1)
	assert.Equal(t, "coding-1", first.Snapshot.Messages[0].ID)

	require.Eventually(t, func() bool { return hub.Len() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, hub.HandleEvent(context.Background(), application.Event{Type: application.EventReset}))

	next := read()
	require.NotNil(t, next.Event)
	assert.Equal(t, application.EventReset, next.Event.Type)
}
