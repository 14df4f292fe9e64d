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

// TickResult lists what one tick changed. Messages are copies taken after the tick.
type TickResult struct {
	Injected   []domain.Message
	Escalated  []domain.Message
	Terminated []domain.Message
	Verdicts   []consequence.Verdict
	Skipped    bool
}

// Tick runs one scheduler step at now.
//
// Phase 1 injects from the active stage (only while the countdown runs) and then evaluates
// escalation over the retained messages that existed before the tick. Phase 2 presents every
// terminated message once the collection is no longer being traversed. While the
// insolvency lockout is active the tick does nothing.
func (s *Service) Tick(ctx context.Context, now time.Time) TickResult {
	observability.TicksTotal.Inc()

	s.mu.Lock()
	if s.locked {
		s.mu.Unlock()
		return TickResult{Skipped: true}
	}

	var (
		res    TickResult
		events []Event
	)

	injected := make(map[string]struct{})
	if s.countdown.running {
		for _, inj := range s.injector.Inject(s.stageLocked(), s.history, now) {
			s.insertLocked(inj.Message)
			injected[inj.Message.ID] = struct{}{}
			c := inj.Message.Clone()
			res.Injected = append(res.Injected, c)
			ev := messageEvent(EventMessageCreated, c, now)
			ev.Policy = inj.Policy
			events = append(events, ev)
		}
	}

	// Messages evicted by the retention cap during injection no longer escalate.
	existing := make([]*domain.Message, 0, len(s.messages))
	for _, m := range s.messages {
		if _, ok := injected[m.ID]; !ok {
			existing = append(existing, m)
		}
	}

	if !s.cfg.GateEscalation || s.countdown.running {
		out := s.engine.Evaluate(existing, now)
		res.Escalated = out.Escalated
		res.Terminated = out.Terminated
		for _, m := range out.Escalated {
			events = append(events, messageEvent(EventMessageEscalated, m, now))
		}
	}

	for _, m := range res.Terminated {
		v := consequence.Present(m)
		res.Verdicts = append(res.Verdicts, v)

		ev := messageEvent(EventMessageTerminated, m, now)
		ev.Verdict = &v
		ev.Method = ResolvedByTerminal
		events = append(events, ev)

		// A lockout verdict stays on screen over any later non-lockout verdict.
		if s.verdict == nil || !s.verdict.DisablesApplication || v.DisablesApplication {
			shown := v
			s.verdict = &shown
		}
		if v.DisablesApplication && !s.locked {
			s.locked = true
			s.stopCountdownLocked(now)
			lv := v
			events = append(events, Event{Type: EventLocked, OccurredAt: now, Verdict: &lv})
		}
	}

	s.observeLocked()
	locked := s.locked
	s.mu.Unlock()

	if len(res.Terminated) > 0 {
		s.log.Info("messages terminated", zap.Int("count", len(res.Terminated)), zap.Bool("locked", locked))
	}
	s.emit(ctx, events)
	return res
}

// CountdownTick finishes the countdown once its deadline has passed and adds the
// "Timer finished" system message.
func (s *Service) CountdownTick(ctx context.Context, now time.Time) bool {
	s.mu.Lock()
	if !s.countdown.running || s.locked || now.Before(s.countdown.endsAt) {
		s.mu.Unlock()
		return false
	}

	s.countdown.running = false
	s.countdown.remaining = 0

	events := []Event{{Type: EventCountdownFinished, OccurredAt: now}}
	if m := s.injector.System(TimerFinishedText, s.stageLocked(), now); m != nil {
		s.insertLocked(m)
		ev := messageEvent(EventMessageCreated, m.Clone(), now)
		ev.Policy = injector.PolicySystem
		events = append(events, ev)
	}
	s.observeLocked()
	s.mu.Unlock()

	s.emit(ctx, events)
	return true
}
