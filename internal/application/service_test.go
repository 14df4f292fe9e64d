package application

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/SARVESHVARADKAR123/courtroom/internal/catalog"
	"github.com/SARVESHVARADKAR123/courtroom/internal/challenge"
	"github.com/SARVESHVARADKAR123/courtroom/internal/domain"
)

func TestInjectionGatedByCountdown(t *testing.T) {
	h := newHarness(t, defaultConfig())
	ctx := context.Background()

	assert.Empty(t, h.tickAt(20*time.Second).Injected)
	assert.Empty(t, h.tickAt(60*time.Second).Injected)

	h.clock.Set(t0.Add(60 * time.Second))
	_, err := h.svc.StartCountdown(ctx, 3600)
	require.NoError(t, err)

	assert.Empty(t, h.tickAt(79*time.Second).Injected)

	res := h.tickAt(80 * time.Second)
	require.Len(t, res.Injected, 1)
	m := res.Injected[0]
	assert.Equal(t, "coding-1", m.ID)
	assert.Equal(t, "Fix User login", m.Text)
	assert.Equal(t, "payment", m.Origin)
	assert.Equal(t, domain.SeverityInfo, m.Severity)
	assert.Equal(t, domain.ConsequenceInsolvency, m.Consequence)
	require.NotNil(t, m.NextReminderAt)
	assert.Equal(t, t0.Add(100*time.Second), *m.NextReminderAt)

	_, err = h.svc.StopCountdown(ctx)
	require.NoError(t, err)
	assert.Empty(t, h.tickAt(200*time.Second).Injected)
}

func TestAmbientInjection(t *testing.T) {
	h := newHarness(t, defaultConfig())
	ctx := context.Background()

	_, err := h.svc.StartCountdown(ctx, 3600)
	require.NoError(t, err)

	h.rnd.roll = 0
	res := h.tickAt(time.Second)
	require.Len(t, res.Injected, 1)
	assert.Equal(t, "auto-1", res.Injected[0].ID)
	assert.Equal(t, "Are you done with sprint 1?", res.Injected[0].Text)
}

func TestEscalationToInsolvencyLockout(t *testing.T) {
	h := newHarness(t, defaultConfig())
	ctx := context.Background()

	_, err := h.svc.StartCountdown(ctx, 3600)
	require.NoError(t, err)
	require.Len(t, h.tickAt(20*time.Second).Injected, 1)
	_, err = h.svc.StopCountdown(ctx)
	require.NoError(t, err)

	// Escalation keeps running while the countdown is stopped.
	res := h.tickAt(40 * time.Second)
	require.Len(t, res.Escalated, 1)
	assert.Equal(t, domain.SeverityWarning, res.Escalated[0].Severity)
	assert.Equal(t, t0.Add(160*time.Second), *res.Escalated[0].NextReminderAt)

	res = h.tickAt(160 * time.Second)
	require.Len(t, res.Escalated, 1)
	assert.Equal(t, domain.SeverityUrgent, res.Escalated[0].Severity)
	assert.Nil(t, res.Escalated[0].NextReminderAt)
	assert.Equal(t, t0.Add(280*time.Second), *res.Escalated[0].TerminalAt)

	assert.Empty(t, h.tickAt(279*time.Second).Terminated)

	res = h.tickAt(280 * time.Second)
	require.Len(t, res.Terminated, 1)
	require.Len(t, res.Verdicts, 1)
	assert.Equal(t, "Bankruptcy Notice", res.Verdicts[0].Title)
	assert.True(t, res.Verdicts[0].DisablesApplication)
	assert.True(t, res.Terminated[0].Resolved)

	snap := h.svc.Snapshot()
	assert.True(t, snap.Locked)
	require.NotNil(t, snap.Verdict)
	assert.Equal(t, domain.ConsequenceInsolvency, snap.Verdict.Kind)
	assert.Contains(t, h.rec.types(), EventLocked)
	assert.Contains(t, h.rec.types(), EventMessageTerminated)

	t.Run("Mutating actions are rejected", func(t *testing.T) {
		_, err := h.svc.StartCountdown(ctx, 10)
		assert.ErrorIs(t, err, domain.ErrLocked)
		_, err = h.svc.StopCountdown(ctx)
		assert.ErrorIs(t, err, domain.ErrLocked)
		_, err = h.svc.ResolveMessage(ctx, "coding-1")
		assert.ErrorIs(t, err, domain.ErrLocked)
		_, err = h.svc.SelectStage(ctx, 1)
		assert.ErrorIs(t, err, domain.ErrLocked)
		_, err = h.svc.SubmitCodeChallenge(ctx, "coding-1", "x")
		assert.ErrorIs(t, err, domain.ErrLocked)
		assert.ErrorIs(t, h.svc.DismissVerdict(ctx), domain.ErrLocked)
	})

	t.Run("Ticks do nothing", func(t *testing.T) {
		h.rnd.roll = 0
		res := h.tickAt(time.Hour)
		assert.True(t, res.Skipped)
		assert.Empty(t, res.Injected)
		assert.Len(t, h.svc.Snapshot().Messages, 1)
	})

	t.Run("Reset clears everything", func(t *testing.T) {
		snap := h.svc.ResetAll(ctx)
		assert.False(t, snap.Locked)
		assert.Nil(t, snap.Verdict)
		assert.Empty(t, snap.Messages)
		assert.Empty(t, snap.ResolvedHistory)
		assert.False(t, snap.Countdown.Running)
		assert.Zero(t, snap.Countdown.RemainingSeconds)

		_, err := h.svc.StartCountdown(ctx, 10)
		assert.NoError(t, err)
	})
}

func TestResolveMessage(t *testing.T) {
	h := newHarness(t, defaultConfig())
	ctx := context.Background()

	_, err := h.svc.StartCountdown(ctx, 3600)
	require.NoError(t, err)
	require.Len(t, h.tickAt(20*time.Second).Injected, 1)

	m, err := h.svc.ResolveMessage(ctx, "coding-1")
	require.NoError(t, err)
	assert.True(t, m.Resolved)
	assert.Nil(t, m.NextReminderAt)
	assert.Nil(t, m.TerminalAt)
	assert.Zero(t, m.EscalationCount)
	assert.Equal(t, []string{"Fix User login"}, h.svc.Snapshot().ResolvedHistory)

	_, err = h.svc.ResolveMessage(ctx, "coding-1")
	assert.ErrorIs(t, err, domain.ErrAlreadyResolved)
	_, err = h.svc.ResolveMessage(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	before := h.svc.Snapshot().Messages
	for d := 40 * time.Second; d <= 20*time.Minute; d += 20 * time.Second {
		res := h.tickAt(d)
		for _, inj := range res.Injected {
			assert.NotEqual(t, "Fix User login", inj.Text)
		}
	}
	after := h.svc.Snapshot().Messages
	require.Len(t, after, 1)
	if diff := cmp.Diff(before, after); diff != "" {
		t.Fatalf("resolved message changed (-before +after):\n%s", diff)
	}
}

func TestCodeChallenge(t *testing.T) {
	h := newHarness(t, defaultConfig())
	ctx := context.Background()

	_, err := h.svc.StartCountdown(ctx, 3600)
	require.NoError(t, err)
	require.Len(t, h.tickAt(20*time.Second).Injected, 1)

	view, err := h.svc.BeginCodeChallenge(ctx, "coding-1")
	require.NoError(t, err)
	assert.Equal(t, "coding-1", view.MessageID)
	assert.Equal(t, "Fix authentication logic (missing password check)", view.Description)
	assert.Contains(t, view.BrokenCode, "function login(username)")

	sub, err := h.svc.SubmitCodeChallenge(ctx, "coding-1", view.BrokenCode)
	require.NoError(t, err)
	assert.False(t, sub.Accepted)
	assert.Equal(t, "Login should require both username AND password", sub.Hint)
	assert.False(t, h.svc.Snapshot().Messages[0].Resolved)

	answer, err := h.svc.ShowAnswer(ctx, "coding-1")
	require.NoError(t, err)
	assert.Contains(t, answer, "username && password")

	messy := "\n\n   function login(username, password) {\n\t\tif (username && password) {\n return true;\n}\n\n  return false;\n   }   \n"
	sub, err = h.svc.SubmitCodeChallenge(ctx, "coding-1", messy)
	require.NoError(t, err)
	assert.True(t, sub.Accepted)
	require.NotNil(t, sub.Message)
	assert.True(t, sub.Message.Resolved)
	assert.Equal(t, []string{"Fix User login"}, h.svc.Snapshot().ResolvedHistory)

	_, err = h.svc.SubmitCodeChallenge(ctx, "coding-1", messy)
	assert.ErrorIs(t, err, domain.ErrAlreadyResolved)
	_, err = h.svc.BeginCodeChallenge(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	h.rnd.roll = 0
	res := h.tickAt(21 * time.Second)
	require.Len(t, res.Injected, 1)
	plain := res.Injected[0].ID

	_, err = h.svc.BeginCodeChallenge(ctx, plain)
	assert.ErrorIs(t, err, domain.ErrNoChallenge)
	_, err = h.svc.SubmitCodeChallenge(ctx, plain, "anything")
	assert.ErrorIs(t, err, domain.ErrNoChallenge)
	_, err = h.svc.ShowAnswer(ctx, plain)
	assert.ErrorIs(t, err, domain.ErrNoChallenge)
}

func TestCountdown(t *testing.T) {
	h := newHarness(t, defaultConfig())
	ctx := context.Background()

	view, err := h.svc.StartCountdown(ctx, 5)
	require.NoError(t, err)
	assert.True(t, view.Running)
	assert.Equal(t, 5, view.RemainingSeconds)
	require.NotNil(t, view.EndsAt)
	assert.Equal(t, t0.Add(5*time.Second), *view.EndsAt)

	h.clock.Set(t0.Add(2500 * time.Millisecond))
	assert.Equal(t, 3, h.svc.Snapshot().Countdown.RemainingSeconds)

	assert.False(t, h.svc.CountdownTick(ctx, t0.Add(4*time.Second)))
	assert.True(t, h.svc.CountdownTick(ctx, t0.Add(5*time.Second)))
	assert.False(t, h.svc.CountdownTick(ctx, t0.Add(6*time.Second)))

	snap := h.svc.Snapshot()
	assert.False(t, snap.Countdown.Running)
	assert.Zero(t, snap.Countdown.RemainingSeconds)
	require.Len(t, snap.Messages, 1)
	assert.Equal(t, "sys-1", snap.Messages[0].ID)
	assert.Equal(t, TimerFinishedText, snap.Messages[0].Text)
	assert.Equal(t, "system", snap.Messages[0].Origin)
	assert.Equal(t, domain.ConsequenceNone, snap.Messages[0].Consequence)
	assert.Contains(t, h.rec.types(), EventCountdownFinished)

	t.Run("Stop keeps the remaining time", func(t *testing.T) {
		h.clock.Set(t0.Add(10 * time.Second))
		_, err := h.svc.StartCountdown(ctx, 10)
		require.NoError(t, err)
		h.clock.Set(t0.Add(13 * time.Second))
		view, err := h.svc.StopCountdown(ctx)
		require.NoError(t, err)
		assert.False(t, view.Running)
		assert.Equal(t, 7, view.RemainingSeconds)
		assert.False(t, h.svc.CountdownTick(ctx, t0.Add(time.Hour)))
	})

	t.Run("Negative duration counts as zero", func(t *testing.T) {
		view, err := h.svc.StartCountdown(ctx, -3)
		require.NoError(t, err)
		assert.True(t, view.Running)
		assert.Zero(t, view.RemainingSeconds)
	})
}

func TestGateEscalation(t *testing.T) {
	cfg := defaultConfig()
	cfg.GateEscalation = true
	h := newHarness(t, cfg)
	ctx := context.Background()

	h.put(pendingMessage(t, "m1", "Fix User login", domain.ConsequenceInsolvency, t0))

	assert.Empty(t, h.tickAt(time.Second).Escalated)

	_, err := h.svc.StartCountdown(ctx, 3600)
	require.NoError(t, err)
	assert.Len(t, h.tickAt(time.Second).Escalated, 1)
}

func TestSelectStage(t *testing.T) {
	h := newHarness(t, defaultConfig())
	ctx := context.Background()

	remind := t0.Add(time.Hour)
	h.put(pendingMessage(t, "m1", "Fix User login", domain.ConsequenceInsolvency, remind))

	for _, idx := range []int{-1, 2} {
		_, err := h.svc.SelectStage(ctx, idx)
		assert.ErrorIs(t, err, domain.ErrOutOfRange)
	}
	assert.Equal(t, 0, h.svc.Snapshot().Stage.Index)

	view, err := h.svc.SelectStage(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, StageView{Index: 1, Name: "Other"}, view)

	snap := h.svc.Snapshot()
	assert.Equal(t, view, snap.Stage)
	assert.Equal(t, remind, *snap.Messages[0].NextReminderAt)

	_, err = h.svc.StartCountdown(ctx, 3600)
	require.NoError(t, err)
	res := h.tickAt(20 * time.Second)
	require.Len(t, res.Injected, 1)
	assert.Equal(t, "Fix alt in img1", res.Injected[0].Text)
	assert.Equal(t, t0.Add(21*time.Second), *res.Injected[0].NextReminderAt)
}

func TestVerdicts(t *testing.T) {
	ctx := context.Background()

	t.Run("Dismiss a non-lockout verdict", func(t *testing.T) {
		h := newHarness(t, defaultConfig())
		h.put(terminalMessage(t, "m1", "Fix alt in img1", domain.ConsequenceAccessibility, t0))

		res := h.tickAt(time.Second)
		require.Len(t, res.Verdicts, 1)
		snap := h.svc.Snapshot()
		require.NotNil(t, snap.Verdict)
		assert.Equal(t, "Accessibility Hearing", snap.Verdict.Title)
		assert.False(t, snap.Locked)

		require.NoError(t, h.svc.DismissVerdict(ctx))
		assert.Nil(t, h.svc.Snapshot().Verdict)
		assert.Contains(t, h.rec.types(), EventVerdictDismissed)
	})

	t.Run("Lockout verdict wins within a tick", func(t *testing.T) {
		h := newHarness(t, defaultConfig())
		h.put(terminalMessage(t, "m1", "Fix User login", domain.ConsequenceInsolvency, t0))
		h.put(terminalMessage(t, "m2", "Fix alt in img1", domain.ConsequenceAccessibility, t0))

		res := h.tickAt(time.Second)
		assert.Len(t, res.Verdicts, 2)
		snap := h.svc.Snapshot()
		assert.True(t, snap.Locked)
		assert.Equal(t, domain.ConsequenceInsolvency, snap.Verdict.Kind)
	})
}

func TestInsertDedupesAndCaps(t *testing.T) {
	cfg := defaultConfig()
	cfg.MaxRetained = 3
	h := newHarness(t, cfg)

	for _, id := range []string{"a", "b", "c", "d"} {
		h.put(pendingMessage(t, id, "text "+id, domain.ConsequenceNone, t0.Add(time.Hour)))
	}
	ids := func() []string {
		var out []string
		for _, m := range h.svc.Snapshot().Messages {
			out = append(out, m.ID)
		}
		return out
	}
	assert.Equal(t, []string{"d", "c", "b"}, ids())

	h.put(pendingMessage(t, "c", "replaced", domain.ConsequenceNone, t0.Add(time.Hour)))
	assert.Equal(t, []string{"c", "d", "b"}, ids())
	assert.Equal(t, "replaced", h.svc.Snapshot().Messages[0].Text)
}

func TestFailingListenerDoesNotStopEmission(t *testing.T) {
	h := newHarness(t, defaultConfig())
	h.svc.listeners = nil
	h.svc.Subscribe(ListenerFunc("broken", func(ctx context.Context, ev Event) error {
		return assert.AnError
	}))
	h.svc.Subscribe(h.rec)

	_, err := h.svc.StartCountdown(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []EventType{EventCountdownStarted}, h.rec.types())
}

// TestInvariantsUnderRandomRun drives the default catalog with a seeded source and
// random user resolutions, checking the message invariants after every tick.
func TestInvariantsUnderRandomRun(t *testing.T) {
	ctx := context.Background()
	clock := &manualClock{now: t0}
	svc := New(Config{
		EscalateWait:       10 * time.Second,
		ChallengeInterval:  20 * time.Second,
		AmbientProbability: 0.3,
	}, catalog.Default(), challenge.Default(), rand.New(rand.NewSource(1)), zap.NewNop(),
		WithClock(clock), WithIDFunc(counterIDs()))

	user := rand.New(rand.NewSource(2))
	_, err := svc.StartCountdown(ctx, 1_000_000)
	require.NoError(t, err)

	resolved := map[string]domain.Message{}
	for i := 1; i <= 1500; i++ {
		now := t0.Add(time.Duration(i) * time.Second)
		clock.Set(now)

		history := map[string]bool{}
		for _, text := range svc.Snapshot().ResolvedHistory {
			history[text] = true
		}

		res := svc.Tick(ctx, now)
		for _, m := range res.Injected {
			assert.False(t, history[m.Text], "re-injected resolved text %q", m.Text)
		}

		snap := svc.Snapshot()
		for _, m := range snap.Messages {
			assert.False(t, m.NextReminderAt != nil && m.TerminalAt != nil, "both timers set on %s", m.ID)
			if m.Resolved {
				assert.Nil(t, m.NextReminderAt)
				assert.Nil(t, m.TerminalAt)
				if prev, ok := resolved[m.ID]; ok {
					assert.Empty(t, cmp.Diff(prev, m), "resolved message %s changed", m.ID)
				}
				resolved[m.ID] = m
				continue
			}
			assert.Equal(t, domain.SeverityForEscalations(m.EscalationCount), m.Severity)
		}

		if snap.Locked {
			svc.ResetAll(ctx)
			resolved = map[string]domain.Message{}
			_, err := svc.StartCountdown(ctx, 1_000_000)
			require.NoError(t, err)
			continue
		}

		for _, m := range snap.Messages {
			if !m.Resolved && user.Float64() < 0.02 {
				_, err := svc.ResolveMessage(ctx, m.ID)
				require.NoError(t, err)
			}
		}
	}
}

func TestEvictedMessagesDoNotEscalate(t *testing.T) {
	cfg := defaultConfig()
	cfg.MaxRetained = 1
	h := newHarness(t, cfg)
	h.put(terminalMessage(t, "old", "Fix User login", domain.ConsequenceInsolvency, t0.Add(10*time.Second)))

	_, err := h.svc.StartCountdown(context.Background(), 3600)
	require.NoError(t, err)

	res := h.tickAt(20 * time.Second)
	require.Len(t, res.Injected, 1)
	assert.Empty(t, res.Terminated)
	assert.Empty(t, res.Verdicts)

	snap := h.svc.Snapshot()
	require.Len(t, snap.Messages, 1)
	assert.Equal(t, "coding-1", snap.Messages[0].ID)
	assert.False(t, snap.Locked)
	assert.Nil(t, snap.Verdict)
	assert.NotContains(t, h.rec.types(), EventMessageTerminated)
	assert.NotContains(t, h.rec.types(), EventLocked)
}

func TestInjectedMessageWaitsForNextTick(t *testing.T) {
	instant := domain.Stage{
		Name: "Instant",
		Templates: []domain.Template{
			{Text: "Fix User login", Origin: "payment", Consequence: domain.ConsequenceInsolvency},
		},
	}
	clock := &manualClock{now: t0}
	svc := New(defaultConfig(), catalog.New(instant), challenge.Default(), &fixedRand{roll: 0.99}, zap.NewNop(),
		WithClock(clock), WithIDFunc(counterIDs()))
	ctx := context.Background()

	_, err := svc.StartCountdown(ctx, 3600)
	require.NoError(t, err)

	clock.Set(t0.Add(20 * time.Second))
	res := svc.Tick(ctx, clock.Now())
	require.Len(t, res.Injected, 1)
	require.NotNil(t, res.Injected[0].NextReminderAt)
	assert.Equal(t, clock.Now(), *res.Injected[0].NextReminderAt)
	assert.Empty(t, res.Escalated)

	clock.Set(t0.Add(21 * time.Second))
	res = svc.Tick(ctx, clock.Now())
	require.Len(t, res.Escalated, 1)
	assert.Equal(t, "coding-1", res.Escalated[0].ID)
	assert.Equal(t, domain.SeverityWarning, res.Escalated[0].Severity)
}
