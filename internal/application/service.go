package application

import (
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/SARVESHVARADKAR123/courtroom/internal/catalog"
	"github.com/SARVESHVARADKAR123/courtroom/internal/challenge"
	"github.com/SARVESHVARADKAR123/courtroom/internal/consequence"
	"github.com/SARVESHVARADKAR123/courtroom/internal/domain"
	"github.com/SARVESHVARADKAR123/courtroom/internal/escalation"
	"github.com/SARVESHVARADKAR123/courtroom/internal/injector"
	"github.com/SARVESHVARADKAR123/courtroom/internal/observability"
)

const (
	DefaultMaxRetained = 200
	TimerFinishedText  = "Timer finished"
)

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

var SystemClock Clock = systemClock{}

type Config struct {
	EscalateWait       time.Duration
	ChallengeInterval  time.Duration
	AmbientProbability float64
	MaxRetained        int
	// GateEscalation pauses escalation while the countdown is stopped.
	GateEscalation bool
}

type Option func(*Service)

func WithClock(c Clock) Option {
	return func(s *Service) { s.clock = c }
}

func WithIDFunc(f injector.IDFunc) Option {
	return func(s *Service) { s.newID = f }
}

type countdown struct {
	running   bool
	endsAt    time.Time
	remaining int // seconds left when stopped
}

// Service is the courtroom state store. Every mutation happens under mu; listeners
// are called after mu is released.
type Service struct {
	mu sync.Mutex

	cfg      Config
	catalog  *catalog.Catalog
	registry *challenge.Registry
	engine   *escalation.Engine
	injector *injector.Injector
	clock    Clock
	newID    injector.IDFunc
	log      *zap.Logger

	messages   []*domain.Message // newest first
	stageIndex int
	countdown  countdown
	verdict    *consequence.Verdict
	locked     bool
	history    *injector.History

	countdownChanged chan struct{}

	listenersMu sync.RWMutex
	listeners   []Listener
}

func New(cfg Config, cat *catalog.Catalog, reg *challenge.Registry, rnd injector.Rand, log *zap.Logger, opts ...Option) *Service {
	if cfg.MaxRetained <= 0 {
		cfg.MaxRetained = DefaultMaxRetained
	}
	if log == nil {
		log = zap.NewNop()
	}

	s := &Service{
		cfg:              cfg,
		catalog:          cat,
		registry:         reg,
		engine:           escalation.NewEngine(cfg.EscalateWait),
		clock:            SystemClock,
		log:              log,
		history:          injector.NewHistory(),
		countdownChanged: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.injector = injector.New(injector.Config{
		ChallengeInterval:  cfg.ChallengeInterval,
		AmbientProbability: cfg.AmbientProbability,
	}, reg, rnd, s.newID)

	s.Subscribe(metricsListener{})
	return s
}

func (s *Service) Catalog() *catalog.Catalog { return s.catalog }

func (s *Service) Now() time.Time { return s.clock.Now() }

// insertLocked prepends m, replacing any entry with the same id, and evicts the oldest
// entries beyond the retention cap.
func (s *Service) insertLocked(m *domain.Message) {
	out := make([]*domain.Message, 0, len(s.messages)+1)
	out = append(out, m)
	for _, x := range s.messages {
		if x.ID != m.ID {
			out = append(out, x)
		}
	}
	if len(out) > s.cfg.MaxRetained {
		out = out[:s.cfg.MaxRetained]
	}
	s.messages = out
}

func (s *Service) findLocked(id string) *domain.Message {
	for _, m := range s.messages {
		if m.ID == id {
			return m
		}
	}
	return nil
}

func (s *Service) stageLocked() domain.Stage {
	st, err := s.catalog.GetStage(s.stageIndex)
	if err != nil {
		// stageIndex is only assigned after a successful lookup.
		panic(err)
	}
	return st
}

func (s *Service) remainingLocked(now time.Time) int {
	if !s.countdown.running {
		return s.countdown.remaining
	}
	left := s.countdown.endsAt.Sub(now).Seconds()
	if left <= 0 {
		return 0
	}
	return int(math.Ceil(left))
}

func (s *Service) stopCountdownLocked(now time.Time) bool {
	if !s.countdown.running {
		return false
	}
	s.countdown.remaining = s.remainingLocked(now)
	s.countdown.running = false
	s.signalCountdown()
	return true
}

func (s *Service) signalCountdown() {
	select {
	case s.countdownChanged <- struct{}{}:
	default:
	}
}

func (s *Service) countdownDeadline() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countdown.endsAt, s.countdown.running
}

func (s *Service) observeLocked() {
	active := 0
	for _, m := range s.messages {
		if !m.Resolved {
			active++
		}
	}
	observability.ActiveMessages.Set(float64(active))
	if s.locked {
		observability.Lockout.Set(1)
	} else {
		observability.Lockout.Set(0)
	}
}

type StageView struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
}

type CountdownView struct {
	Running          bool       `json:"running"`
	RemainingSeconds int        `json:"remaining_seconds"`
	EndsAt           *time.Time `json:"ends_at,omitempty"`
}

// Snapshot is a consistent copy of the courtroom state.
type Snapshot struct {
	Messages        []domain.Message     `json:"messages"`
	Stage           StageView            `json:"stage"`
	Countdown       CountdownView        `json:"countdown"`
	Verdict         *consequence.Verdict `json:"verdict,omitempty"`
	Locked          bool                 `json:"locked"`
	ResolvedHistory []string             `json:"resolved_history"`
	TakenAt         time.Time            `json:"taken_at"`
}

func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(s.clock.Now())
}

func (s *Service) snapshotLocked(now time.Time) Snapshot {
	msgs := make([]domain.Message, 0, len(s.messages))
	for _, m := range s.messages {
		msgs = append(msgs, m.Clone())
	}

	snap := Snapshot{
		Messages:        msgs,
		Stage:           StageView{Index: s.stageIndex, Name: s.stageLocked().Name},
		Countdown:       s.countdownViewLocked(now),
		Locked:          s.locked,
		ResolvedHistory: s.history.List(),
		TakenAt:         now,
	}
	if s.verdict != nil {
		v := *s.verdict
		snap.Verdict = &v
	}
	return snap
}

func (s *Service) countdownViewLocked(now time.Time) CountdownView {
	v := CountdownView{
		Running:          s.countdown.running,
		RemainingSeconds: s.remainingLocked(now),
	}
	if s.countdown.running {
		end := s.countdown.endsAt
		v.EndsAt = &end
	}
	return v
}

// Locked reports whether the insolvency lockout is active.
func (s *Service) Locked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locked
}
