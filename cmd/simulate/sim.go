package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/SARVESHVARADKAR123/courtroom/internal/application"
	"github.com/SARVESHVARADKAR123/courtroom/internal/catalog"
	"github.com/SARVESHVARADKAR123/courtroom/internal/challenge"
	"github.com/SARVESHVARADKAR123/courtroom/internal/domain"
)

// simStart is the fixed origin of simulated time, so runs are reproducible.
var simStart = time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

type simOptions struct {
	Seed               int64
	Duration           time.Duration
	Step               time.Duration
	Stage              int
	Countdown          int
	ResolveProbability float64
	ResetOnLock        bool
	Core               application.Config
}

type simSummary struct {
	Ticks      int
	Created    int
	Escalated  int
	Resolved   int
	Terminated int
	Lockouts   int
	Final      application.Snapshot
}

type simClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *simClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *simClock) advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

// sequentialIDs keeps ids stable across runs with the same seed.
func sequentialIDs() func(string) string {
	n := 0
	return func(prefix string) string {
		n++
		return fmt.Sprintf("%s-%04d", prefix, n)
	}
}

// simulate runs the core for opts.Duration of simulated time, writing one line
// per event to out. A simulated player resolves the oldest open message with
// probability ResolveProbability per step, using the code challenge when one exists.
func simulate(ctx context.Context, stages *catalog.Catalog, challenges *challenge.Registry, opts simOptions, out io.Writer) (simSummary, error) {
	if opts.Step <= 0 {
		opts.Step = time.Second
	}

	clock := &simClock{now: simStart}
	core := application.New(opts.Core, stages, challenges, rand.New(rand.NewSource(opts.Seed)), zap.NewNop(),
		application.WithClock(clock),
		application.WithIDFunc(sequentialIDs()),
	)

	var sum simSummary
	core.Subscribe(application.ListenerFunc("simulate_printer", func(ctx context.Context, ev application.Event) error {
		offset := ev.OccurredAt.Sub(simStart)
		switch ev.Type {
		case application.EventMessageCreated:
			sum.Created++
			fmt.Fprintf(out, "%8s  created     %-10s %-9s %q\n", offset, ev.Message.ID, ev.Policy, ev.Message.Text)
		case application.EventMessageEscalated:
			sum.Escalated++
			fmt.Fprintf(out, "%8s  escalated   %-10s -> %s\n", offset, ev.Message.ID, ev.Message.Severity)
		case application.EventMessageResolved:
			sum.Resolved++
			fmt.Fprintf(out, "%8s  resolved    %-10s (%s)\n", offset, ev.Message.ID, ev.Method)
		case application.EventMessageTerminated:
			sum.Terminated++
			fmt.Fprintf(out, "%8s  verdict     %-10s %s\n", offset, ev.Message.ID, ev.Verdict.Title)
		case application.EventLocked:
			sum.Lockouts++
			fmt.Fprintf(out, "%8s  LOCKED\n", offset)
		case application.EventReset:
			fmt.Fprintf(out, "%8s  reset\n", offset)
		case application.EventCountdownFinished:
			fmt.Fprintf(out, "%8s  countdown finished\n", offset)
		}
		return nil
	}))

	if _, err := core.SelectStage(ctx, opts.Stage); err != nil {
		return sum, err
	}
	if _, err := core.StartCountdown(ctx, opts.Countdown); err != nil {
		return sum, err
	}

	player := rand.New(rand.NewSource(opts.Seed + 1))
	for elapsed := time.Duration(0); elapsed < opts.Duration; elapsed += opts.Step {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		now := clock.advance(opts.Step)
		sum.Ticks++

		core.CountdownTick(ctx, now)
		core.Tick(ctx, now)

		if core.Locked() {
			if !opts.ResetOnLock {
				break
			}
			core.ResetAll(ctx)
			if _, err := core.StartCountdown(ctx, opts.Countdown); err != nil {
				return sum, err
			}
			continue
		}

		if player.Float64() < opts.ResolveProbability {
			if err := play(ctx, core); err != nil {
				return sum, err
			}
		}
	}

	sum.Final = core.Snapshot()
	return sum, nil
}

// play resolves the oldest open message.
func play(ctx context.Context, core *application.Service) error {
	msgs := core.Snapshot().Messages
	for i := len(msgs) - 1; i >= 0; i-- {
		m := msgs[i]
		if m.Resolved {
			continue
		}
		answer, err := core.ShowAnswer(ctx, m.ID)
		switch {
		case err == nil:
			_, err = core.SubmitCodeChallenge(ctx, m.ID, answer)
		case isNoChallenge(err):
			_, err = core.ResolveMessage(ctx, m.ID)
		}
		return err
	}
	return nil
}

func isNoChallenge(err error) bool {
	return err != nil && errors.Is(err, domain.ErrNoChallenge)
}
