package application

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/SARVESHVARADKAR123/courtroom/internal/challenge"
	"github.com/SARVESHVARADKAR123/courtroom/internal/domain"
)

// StartCountdown starts (or restarts) the countdown. Negative durations count as zero.
func (s *Service) StartCountdown(ctx context.Context, seconds int) (CountdownView, error) {
	if seconds < 0 {
		seconds = 0
	}

	s.mu.Lock()
	if s.locked {
		s.mu.Unlock()
		return CountdownView{}, domain.ErrLocked
	}
	now := s.clock.Now()
	s.countdown = countdown{
		running:   true,
		endsAt:    now.Add(time.Duration(seconds) * time.Second),
		remaining: seconds,
	}
	s.injector.Arm(now)
	s.signalCountdown()
	view := s.countdownViewLocked(now)
	s.mu.Unlock()

	s.log.Info("countdown started", zap.Int("seconds", seconds))
	s.emit(ctx, []Event{{Type: EventCountdownStarted, OccurredAt: now}})
	return view, nil
}

func (s *Service) StopCountdown(ctx context.Context) (CountdownView, error) {
	s.mu.Lock()
	if s.locked {
		s.mu.Unlock()
		return CountdownView{}, domain.ErrLocked
	}
	now := s.clock.Now()
	stopped := s.stopCountdownLocked(now)
	view := s.countdownViewLocked(now)
	s.mu.Unlock()

	if stopped {
		s.emit(ctx, []Event{{Type: EventCountdownStopped, OccurredAt: now}})
	}
	return view, nil
}

// ResetAll clears messages, timers, history, the verdict and the lockout. It is the only
// action accepted while locked.
func (s *Service) ResetAll(ctx context.Context) Snapshot {
	s.mu.Lock()
	now := s.clock.Now()
	s.countdown = countdown{}
	s.messages = nil
	s.verdict = nil
	s.locked = false
	s.history.Clear()
	s.injector.Reset()
	s.signalCountdown()
	s.observeLocked()
	snap := s.snapshotLocked(now)
	s.mu.Unlock()

	s.log.Info("courtroom reset")
	s.emit(ctx, []Event{{Type: EventReset, OccurredAt: now}})
	return snap
}

// SelectStage changes the pool used by future injections. Existing timers are untouched.
func (s *Service) SelectStage(ctx context.Context, index int) (StageView, error) {
	st, err := s.catalog.GetStage(index)
	if err != nil {
		return StageView{}, err
	}

	s.mu.Lock()
	if s.locked {
		s.mu.Unlock()
		return StageView{}, domain.ErrLocked
	}
	now := s.clock.Now()
	s.stageIndex = index
	s.mu.Unlock()

	idx := index
	s.emit(ctx, []Event{{Type: EventStageSelected, OccurredAt: now, StageIndex: &idx}})
	return StageView{Index: index, Name: st.Name}, nil
}

// resolveLocked marks m resolved and records its text in the resolved-history.
func (s *Service) resolveLocked(m *domain.Message, method ResolutionMethod, now time.Time) Event {
	m.Resolve()
	s.history.Add(m.Text)
	s.observeLocked()
	ev := messageEvent(EventMessageResolved, m.Clone(), now)
	ev.Method = method
	return ev
}

func (s *Service) lookupLocked(id string) (*domain.Message, error) {
	m := s.findLocked(id)
	if m == nil {
		return nil, fmt.Errorf("%w: message %s", domain.ErrNotFound, id)
	}
	if m.Resolved {
		return nil, fmt.Errorf("%w: message %s", domain.ErrAlreadyResolved, id)
	}
	return m, nil
}

// ResolveMessage resolves a message regardless of its pending timers.
func (s *Service) ResolveMessage(ctx context.Context, id string) (domain.Message, error) {
	s.mu.Lock()
	if s.locked {
		s.mu.Unlock()
		return domain.Message{}, domain.ErrLocked
	}
	m, err := s.lookupLocked(id)
	if err != nil {
		s.mu.Unlock()
		return domain.Message{}, err
	}
	ev := s.resolveLocked(m, ResolvedManually, s.clock.Now())
	s.mu.Unlock()

	s.emit(ctx, []Event{ev})
	return *ev.Message, nil
}

// ChallengeView is what the presentation layer shows when debugging starts.
type ChallengeView struct {
	MessageID   string `json:"message_id"`
	Description string `json:"description"`
	BrokenCode  string `json:"broken_code"`
	Hint        string `json:"hint"`
}

// BeginCodeChallenge returns the challenge matching the message text.
func (s *Service) BeginCodeChallenge(ctx context.Context, id string) (ChallengeView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.lookupLocked(id)
	if err != nil {
		return ChallengeView{}, err
	}
	c, ok := s.registry.Find(m.Text)
	if !ok {
		return ChallengeView{}, fmt.Errorf("%w: message %s", domain.ErrNoChallenge, id)
	}
	return ChallengeView{
		MessageID:   m.ID,
		Description: c.Description,
		BrokenCode:  c.BrokenCode,
		Hint:        c.Hint,
	}, nil
}

// Submission is the outcome of a code-challenge attempt.
type Submission struct {
	Accepted bool            `json:"accepted"`
	Hint     string          `json:"hint,omitempty"`
	Message  *domain.Message `json:"message,omitempty"`
}

// SubmitCodeChallenge resolves the message when code matches the canonical solution
// after normalization; otherwise it returns the hint and leaves the message alone.
func (s *Service) SubmitCodeChallenge(ctx context.Context, id, code string) (Submission, error) {
	s.mu.Lock()
	if s.locked {
		s.mu.Unlock()
		return Submission{}, domain.ErrLocked
	}
	m, err := s.lookupLocked(id)
	if err != nil {
		s.mu.Unlock()
		return Submission{}, err
	}
	c, ok := s.registry.Find(m.Text)
	if !ok {
		s.mu.Unlock()
		return Submission{}, fmt.Errorf("%w: message %s", domain.ErrNoChallenge, id)
	}
	if !challenge.Validate(c, code) {
		s.mu.Unlock()
		return Submission{Accepted: false, Hint: c.Hint}, nil
	}
	ev := s.resolveLocked(m, ResolvedByChallenge, s.clock.Now())
	s.mu.Unlock()

	s.emit(ctx, []Event{ev})
	return Submission{Accepted: true, Message: ev.Message}, nil
}

// ShowAnswer returns the canonical solution of the message's challenge.
func (s *Service) ShowAnswer(ctx context.Context, id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.findLocked(id)
	if m == nil {
		return "", fmt.Errorf("%w: message %s", domain.ErrNotFound, id)
	}
	c, ok := s.registry.Find(m.Text)
	if !ok {
		return "", fmt.Errorf("%w: message %s", domain.ErrNoChallenge, id)
	}
	return c.Solution, nil
}

// DismissVerdict hides the current verdict. A lockout verdict can only be cleared by a reset.
func (s *Service) DismissVerdict(ctx context.Context) error {
	s.mu.Lock()
	if s.locked {
		s.mu.Unlock()
		return domain.ErrLocked
	}
	had := s.verdict != nil
	s.verdict = nil
	now := s.clock.Now()
	s.mu.Unlock()

	if had {
		s.emit(ctx, []Event{{Type: EventVerdictDismissed, OccurredAt: now}})
	}
	return nil
}
