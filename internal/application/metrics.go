package application

import (
	"context"

	"github.com/SARVESHVARADKAR123/courtroom/internal/observability"
)

// metricsListener turns events into prometheus counters.
type metricsListener struct{}

func (metricsListener) Name() string { return "metrics" }

func (metricsListener) HandleEvent(ctx context.Context, ev Event) error {
	switch ev.Type {
	case EventMessageCreated:
		observability.MessagesInjectedTotal.WithLabelValues(string(ev.Policy)).Inc()
	case EventMessageEscalated:
		observability.EscalationsTotal.WithLabelValues(string(ev.Message.Severity)).Inc()
	case EventMessageTerminated:
		observability.ConsequencesTotal.WithLabelValues(string(ev.Verdict.Kind)).Inc()
		observability.ResolutionsTotal.WithLabelValues(string(ResolvedByTerminal)).Inc()
	case EventMessageResolved:
		observability.ResolutionsTotal.WithLabelValues(string(ev.Method)).Inc()
	}
	return nil
}
