package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/SARVESHVARADKAR123/courtroom/internal/consequence"
	"github.com/SARVESHVARADKAR123/courtroom/internal/domain"
	"github.com/SARVESHVARADKAR123/courtroom/internal/injector"
	"github.com/SARVESHVARADKAR123/courtroom/internal/observability"
)

type EventType string

const (
	EventMessageCreated    EventType = "message.created"
	EventMessageEscalated  EventType = "message.escalated"
	EventMessageResolved   EventType = "message.resolved"
	EventMessageTerminated EventType = "message.terminated"
	EventLocked            EventType = "courtroom.locked"
	EventReset             EventType = "courtroom.reset"
	EventStageSelected     EventType = "courtroom.stage_selected"
	EventCountdownStarted  EventType = "countdown.started"
	EventCountdownStopped  EventType = "countdown.stopped"
	EventCountdownFinished EventType = "countdown.finished"
	EventVerdictDismissed  EventType = "verdict.dismissed"
)

type ResolutionMethod string

const (
	ResolvedManually    ResolutionMethod = "manual"
	ResolvedByChallenge ResolutionMethod = "challenge"
	ResolvedByTerminal  ResolutionMethod = "terminal"
)

// Event describes one state change. Message and Verdict are copies.
type Event struct {
	Type       EventType            `json:"type"`
	OccurredAt time.Time            `json:"occurred_at"`
	Message    *domain.Message      `json:"message,omitempty"`
	Verdict    *consequence.Verdict `json:"verdict,omitempty"`
	Policy     injector.Policy      `json:"policy,omitempty"`
	Method     ResolutionMethod     `json:"method,omitempty"`
	StageIndex *int                 `json:"stage_index,omitempty"`
}

// Key is the partition key for the event: the message id when there is one.
func (e Event) Key() string {
	if e.Message != nil {
		return e.Message.ID
	}
	return string(e.Type)
}

// Listener receives events after the state lock has been released.
type Listener interface {
	Name() string
	HandleEvent(ctx context.Context, ev Event) error
}

type listenerFunc struct {
	name string
	fn   func(ctx context.Context, ev Event) error
}

func (l listenerFunc) Name() string { return l.name }

func (l listenerFunc) HandleEvent(ctx context.Context, ev Event) error { return l.fn(ctx, ev) }

// ListenerFunc adapts a function to a Listener.
func ListenerFunc(name string, fn func(ctx context.Context, ev Event) error) Listener {
	return listenerFunc{name: name, fn: fn}
}

func messageEvent(t EventType, m domain.Message, at time.Time) Event {
	return Event{Type: t, OccurredAt: at, Message: &m}
}

// Subscribe registers a listener. Listeners are called in registration order.
func (s *Service) Subscribe(l Listener) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.listeners = append(s.listeners, l)
}

// emit delivers events to every listener. A failing listener is logged and counted;
// it never affects state or the remaining listeners.
func (s *Service) emit(ctx context.Context, events []Event) {
	if len(events) == 0 {
		return
	}
	s.listenersMu.RLock()
	listeners := append([]Listener(nil), s.listeners...)
	s.listenersMu.RUnlock()

	log := observability.GetLogger(ctx)
	for _, ev := range events {
		for _, l := range listeners {
			if err := l.HandleEvent(ctx, ev); err != nil {
				observability.ListenerFailuresTotal.WithLabelValues(l.Name()).Inc()
				log.Error("event listener failed",
					zap.String("listener", l.Name()),
					zap.String("event", string(ev.Type)),
					zap.Error(err),
				)
			}
		}
	}
}
