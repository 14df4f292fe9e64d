package application

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/SARVESHVARADKAR123/courtroom/internal/catalog"
	"github.com/SARVESHVARADKAR123/courtroom/internal/challenge"
	"github.com/SARVESHVARADKAR123/courtroom/internal/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var t0 = time.Date(2025, 10, 15, 9, 0, 0, 0, time.UTC)

const testStages = `
stages:
  - name: Test
    reminder_min_ms: 20000
    reminder_max_ms: 20000
    messages:
      - text: Fix User login
        from: payment
        consequence: insolvency
      - text: Are you done with sprint 1?
        from: boss
        consequence: none
  - name: Other
    reminder_min_ms: 1000
    reminder_max_ms: 1000
    messages:
      - text: Fix alt in img1
        from: agile
        consequence: accessibility
`

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// fixedRand always picks the first candidate and the shortest reminder.
type fixedRand struct {
	roll float64
}

func (r *fixedRand) Float64() float64     { return r.roll }
func (r *fixedRand) Int63n(n int64) int64 { return 0 }
func (r *fixedRand) Intn(n int) int       { return 0 }

func counterIDs() func(string) string {
	var mu sync.Mutex
	n := 0
	return func(prefix string) string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Name() string { return "recorder" }

func (r *recorder) HandleEvent(ctx context.Context, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) types() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventType, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

type harness struct {
	svc   *Service
	clock *manualClock
	rnd   *fixedRand
	rec   *recorder
}

func defaultConfig() Config {
	return Config{
		EscalateWait:       120 * time.Second,
		ChallengeInterval:  20 * time.Second,
		AmbientProbability: 0.03,
	}
}

func newHarness(t *testing.T, cfg Config) *harness {
	t.Helper()
	cat, err := catalog.Parse([]byte(testStages))
	require.NoError(t, err)

	h := &harness{
		clock: &manualClock{now: t0},
		rnd:   &fixedRand{roll: 0.99},
		rec:   &recorder{},
	}
	h.svc = New(cfg, cat, challenge.Default(), h.rnd, zap.NewNop(), WithClock(h.clock), WithIDFunc(counterIDs()))
	h.svc.Subscribe(h.rec)
	return h
}

// tickAt moves the clock and runs one tick.
func (h *harness) tickAt(d time.Duration) TickResult {
	h.clock.Set(t0.Add(d))
	return h.svc.Tick(context.Background(), h.clock.Now())
}

// put inserts a message directly into the store.
func (h *harness) put(m *domain.Message) {
	h.svc.mu.Lock()
	defer h.svc.mu.Unlock()
	h.svc.insertLocked(m)
}

func pendingMessage(t *testing.T, id, text string, kind domain.ConsequenceKind, remindAt time.Time) *domain.Message {
	t.Helper()
	m, err := domain.NewMessage(id, domain.Template{Text: text, Origin: "test", Consequence: kind}, t0, 0)
	require.NoError(t, err)
	m.NextReminderAt = &remindAt
	return m
}

func terminalMessage(t *testing.T, id, text string, kind domain.ConsequenceKind, at time.Time) *domain.Message {
	t.Helper()
	m := pendingMessage(t, id, text, kind, at)
	m.NextReminderAt = nil
	m.TerminalAt = &at
	m.EscalationCount = 2
	m.Severity = domain.SeverityUrgent
	return m
}
