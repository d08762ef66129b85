// Package scheduler decides when sync cycles run. Cycles run once at startup,
// then on a fixed interval. A failed cycle is retried after a short delay
// instead of waiting for the next interval. Requests to start a cycle while
// one is already running are dropped.
package scheduler

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	syncpkg "github.com/sidkik/mediasync/pkg/sync"
)

// DefaultRetryDelay is how long to wait before retrying a failed cycle.
const DefaultRetryDelay = 10 * time.Second

// Runner runs a single sync cycle.
type Runner interface {
	RunCycle(ctx context.Context) (syncpkg.CycleResult, error)
}

// Scheduler triggers cycles on a Runner.
type Scheduler struct {
	syncCtx  *SyncContext
	runner   Runner
	interval time.Duration
	retry    backoff.BackOff
	clock    clockwork.Clock
	log      logrus.FieldLogger
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock sets the clock that drives the interval and retry timers.
func WithClock(clock clockwork.Clock) Option {
	return func(s *Scheduler) {
		s.clock = clock
	}
}

// WithRetryDelay overrides DefaultRetryDelay.
func WithRetryDelay(d time.Duration) Option {
	return func(s *Scheduler) {
		s.retry = backoff.NewConstantBackOff(d)
	}
}

// WithLogger sets the logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Scheduler) {
		s.log = log
	}
}

// New returns a Scheduler that runs cycles every
// `syncCtx.Config.CheckInterval()`.
func New(syncCtx *SyncContext, runner Runner, opts ...Option) *Scheduler {
	s := &Scheduler{
		syncCtx:  syncCtx,
		runner:   runner,
		interval: syncCtx.Config.CheckInterval(),
		retry:    backoff.NewConstantBackOff(DefaultRetryDelay),
		clock:    clockwork.NewRealClock(),
		log:      logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type outcome struct {
	result syncpkg.CycleResult
	err    error
}

// Run starts a cycle immediately, and then keeps triggering cycles until ctx
// is cancelled. When ctx is cancelled, Run waits for the cycle in flight (if
// any) to stop before returning.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	var retryTimer clockwork.Timer
	var retryC <-chan time.Time
	defer func() {
		if retryTimer != nil {
			retryTimer.Stop()
		}
	}()

	done := make(chan outcome, 1)
	start := func(trigger string) {
		log := s.log.WithField("trigger", trigger)
		if !s.syncCtx.tryStart() {
			log.Info("A sync is already in progress. Skipping.")
			return
		}

		log.Debug("Starting sync")
		go func() {
			res, err := s.runner.RunCycle(ctx)
			done <- outcome{res, err}
		}()
	}

	s.log.WithField("interval", s.interval).Info("Starting media sync")
	start("startup")
	for {
		select {
		case <-ctx.Done():
			if s.syncCtx.Running() {
				out := <-done
				s.syncCtx.finish(out.result, out.err, s.clock.Now())
			}
			return nil

		case <-ticker.Chan():
			start("interval")

		case <-retryC:
			retryC = nil
			start("retry")

		case out := <-done:
			// The guard is cleared before the retry delay starts so that an
			// interval tick during the delay can start a cycle.
			s.syncCtx.finish(out.result, out.err, s.clock.Now())
			if out.err == nil || ctx.Err() != nil {
				continue
			}

			delay := s.retry.NextBackOff()
			s.log.WithError(out.err).Warnf("Sync failed. Retrying in %s.", delay)
			if retryTimer == nil {
				retryTimer = s.clock.NewTimer(delay)
			} else {
				retryTimer.Reset(delay)
			}
			retryC = retryTimer.Chan()
		}
	}
}
