package escalation

import (
	"time"

	"github.com/SARVESHVARADKAR123/courtroom/internal/domain"
)

// DefaultEscalateWait is the delay between the two escalation steps and before the terminal action.
const DefaultEscalateWait = 120 * time.Second

type Outcome int

const (
	OutcomeUnchanged Outcome = iota
	OutcomeEscalated
	OutcomeTerminated
)

// Engine advances messages along the info -> warning -> urgent -> terminated ladder.
type Engine struct {
	EscalateWait time.Duration
}

func NewEngine(wait time.Duration) *Engine {
	if wait <= 0 {
		wait = DefaultEscalateWait
	}
	return &Engine{EscalateWait: wait}
}

// Step applies at most one timer-driven transition to m.
func (e *Engine) Step(m *domain.Message, now time.Time) Outcome {
	if m.Resolved {
		return OutcomeUnchanged
	}

	if m.TerminalAt != nil {
		if now.Before(*m.TerminalAt) {
			return OutcomeUnchanged
		}
		m.Resolve()
		return OutcomeTerminated
	}

	if m.NextReminderAt == nil || now.Before(*m.NextReminderAt) {
		return OutcomeUnchanged
	}

	next := now.Add(e.EscalateWait)
	switch m.EscalationCount + 1 {
	case 1:
		m.EscalationCount = 1
		m.Severity = domain.SeverityForEscalations(1)
		m.NextReminderAt = &next
	case 2:
		m.EscalationCount = 2
		m.Severity = domain.SeverityForEscalations(2)
		m.NextReminderAt = nil
		m.TerminalAt = &next
	default:
		// Unreachable while the terminal timer supersedes further reminders.
		return OutcomeUnchanged
	}
	return OutcomeEscalated
}

// Result holds copies of the messages changed by one evaluation, taken after mutation.
type Result struct {
	Escalated  []domain.Message
	Terminated []domain.Message
}

func (r Result) Empty() bool {
	return len(r.Escalated) == 0 && len(r.Terminated) == 0
}

// Evaluate steps every message once. Terminated messages are returned rather than presented
// so callers can run side effects after the whole collection has been updated.
func (e *Engine) Evaluate(msgs []*domain.Message, now time.Time) Result {
	var res Result
	for _, m := range msgs {
		switch e.Step(m, now) {
		case OutcomeEscalated:
			res.Escalated = append(res.Escalated, m.Clone())
		case OutcomeTerminated:
			res.Terminated = append(res.Terminated, m.Clone())
		}
	}
	return res
}
