package application

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const DefaultTickInterval = time.Second

// Scheduler drives the two periodic tasks over one Service: the escalation/injection
// tick, which runs for the scheduler's whole lifetime, and the countdown, which only
// waits while a countdown is running.
type Scheduler struct {
	svc      *Service
	interval time.Duration
}

func NewScheduler(svc *Service, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Scheduler{svc: svc, interval: interval}
}

// Run blocks until ctx is cancelled.
func (sc *Scheduler) Run(ctx context.Context) error {
	sc.svc.log.Info("scheduler started", zap.Duration("tick_interval", sc.interval))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sc.runTicks(ctx) })
	g.Go(func() error { return sc.runCountdown(ctx) })
	err := g.Wait()

	sc.svc.log.Info("scheduler stopped")
	return err
}

func (sc *Scheduler) runTicks(ctx context.Context) error {
	ticker := time.NewTicker(sc.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			sc.tick(ctx)
		}
	}
}

// tick isolates a single step so a panic in one tick cannot stop the loop.
func (sc *Scheduler) tick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			sc.svc.log.Error("tick panicked", zap.Any("panic", r))
		}
	}()
	sc.svc.Tick(ctx, sc.svc.clock.Now())
}

func (sc *Scheduler) runCountdown(ctx context.Context) error {
	for {
		var (
			timer *time.Timer
			fire  <-chan time.Time
		)
		if endsAt, running := sc.svc.countdownDeadline(); running {
			timer = time.NewTimer(max(endsAt.Sub(sc.svc.clock.Now()), 0))
			fire = timer.C
		}

		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case <-sc.svc.countdownChanged:
		case <-fire:
			sc.svc.CountdownTick(ctx, sc.svc.clock.Now())
		}
		if timer != nil {
			timer.Stop()
		}
	}
}
