package injector

import (
	"time"

	"github.com/google/uuid"

	"github.com/SARVESHVARADKAR123/courtroom/internal/domain"
)

const (
	DefaultChallengeInterval  = 20 * time.Second
	DefaultAmbientProbability = 0.03
)

// Policy names the injection path that produced a message.
type Policy string

const (
	PolicyScheduled Policy = "scheduled"
	PolicyAmbient   Policy = "ambient"
	PolicySystem    Policy = "system"
)

// Id prefixes per policy.
const (
	PrefixScheduled = "coding"
	PrefixAmbient   = "auto"
	PrefixSystem    = "sys"
	PrefixManual    = "msg"
)

// Rand is the random source used for picks, intervals and the ambient roll.
// *math/rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	Int63n(n int64) int64
	Intn(n int) int
}

// Matcher reports whether a template text has a code challenge.
type Matcher interface {
	Matches(text string) bool
}

type IDFunc func(prefix string) string

func NewID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

type Config struct {
	ChallengeInterval  time.Duration
	AmbientProbability float64
}

// Injected is a message created by one tick, tagged with the policy that created it.
type Injected struct {
	Message *domain.Message
	Policy  Policy
}

// Injector creates messages from a stage's pool. It is not safe for concurrent use;
// the owner serializes calls.
type Injector struct {
	cfg     Config
	matcher Matcher
	rnd     Rand
	newID   IDFunc

	lastChallengeAt time.Time
}

func New(cfg Config, matcher Matcher, rnd Rand, newID IDFunc) *Injector {
	if cfg.ChallengeInterval <= 0 {
		cfg.ChallengeInterval = DefaultChallengeInterval
	}
	if cfg.AmbientProbability < 0 {
		cfg.AmbientProbability = 0
	}
	if newID == nil {
		newID = NewID
	}
	return &Injector{cfg: cfg, matcher: matcher, rnd: rnd, newID: newID}
}

// Arm starts the scheduled-challenge clock at now if it has never been started.
func (in *Injector) Arm(now time.Time) {
	if in.lastChallengeAt.IsZero() {
		in.lastChallengeAt = now
	}
}

// Reset clears the scheduled-challenge clock.
func (in *Injector) Reset() {
	in.lastChallengeAt = time.Time{}
}

func (in *Injector) LastChallengeAt() time.Time { return in.lastChallengeAt }

// Inject runs the scheduled then the ambient policy once. Templates whose text is in
// history are never picked.
func (in *Injector) Inject(stage domain.Stage, history *History, now time.Time) []Injected {
	var out []Injected

	if now.Sub(in.lastChallengeAt) >= in.cfg.ChallengeInterval {
		pool := in.filter(stage.Templates, history, true)
		if len(pool) > 0 {
			tpl := pool[in.rnd.Intn(len(pool))]
			if m := in.create(PrefixScheduled, tpl, stage, now); m != nil {
				out = append(out, Injected{Message: m, Policy: PolicyScheduled})
				in.lastChallengeAt = now
			}
		}
	}

	if in.rnd.Float64() < in.cfg.AmbientProbability {
		pool := in.filter(stage.Templates, history, false)
		if len(pool) > 0 {
			tpl := pool[in.rnd.Intn(len(pool))]
			if m := in.create(PrefixAmbient, tpl, stage, now); m != nil {
				out = append(out, Injected{Message: m, Policy: PolicyAmbient})
			}
		}
	}

	return out
}

// System builds a synthetic system message outside the stage pool.
func (in *Injector) System(text string, stage domain.Stage, now time.Time) *domain.Message {
	return in.create(PrefixSystem, domain.Template{Text: text, Origin: "system", Consequence: domain.ConsequenceNone}, stage, now)
}

// Manual builds a message from an arbitrary template.
func (in *Injector) Manual(tpl domain.Template, stage domain.Stage, now time.Time) (*domain.Message, error) {
	return domain.NewMessage(in.newID(PrefixManual), tpl, now, in.ReminderDelay(stage))
}

func (in *Injector) filter(templates []domain.Template, history *History, withChallenge bool) []domain.Template {
	var pool []domain.Template
	for _, tpl := range templates {
		if in.matcher.Matches(tpl.Text) != withChallenge {
			continue
		}
		if history.Has(tpl.Text) {
			continue
		}
		pool = append(pool, tpl)
	}
	return pool
}

func (in *Injector) create(prefix string, tpl domain.Template, stage domain.Stage, now time.Time) *domain.Message {
	m, err := domain.NewMessage(in.newID(prefix), tpl, now, in.ReminderDelay(stage))
	if err != nil {
		return nil
	}
	return m
}

// ReminderDelay draws a uniform delay in [MinReminder, MaxReminder] at millisecond resolution.
func (in *Injector) ReminderDelay(stage domain.Stage) time.Duration {
	lo := stage.MinReminder.Milliseconds()
	hi := stage.MaxReminder.Milliseconds()
	if hi <= lo {
		return stage.MinReminder
	}
	return time.Duration(lo+in.rnd.Int63n(hi-lo+1)) * time.Millisecond
}
