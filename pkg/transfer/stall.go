package transfer

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// StallTimer fires once if it isn't reset within its window. It's bound to a
// single transfer: it's created when the transfer starts, reset whenever data
// arrives, and stopped when the transfer ends.
type StallTimer struct {
	timer   clockwork.Timer
	window  time.Duration
	onStall func()

	stalled  chan struct{}
	stop     chan struct{}
	stopOnce sync.Once
}

// NewStallTimer starts a timer that calls `onStall` after `window` passes
// without a call to Reset.
func NewStallTimer(clock clockwork.Clock, window time.Duration, onStall func()) *StallTimer {
	t := &StallTimer{
		timer:   clock.NewTimer(window),
		window:  window,
		onStall: onStall,
		stalled: make(chan struct{}),
		stop:    make(chan struct{}),
	}
	go t.watch()
	return t
}

func (t *StallTimer) watch() {
	select {
	case <-t.timer.Chan():
		close(t.stalled)
		if t.onStall != nil {
			t.onStall()
		}
	case <-t.stop:
	}
}

// Reset restarts the inactivity window. It has no effect after the timer has
// fired or been stopped.
func (t *StallTimer) Reset() {
	select {
	case <-t.stalled:
		return
	case <-t.stop:
		return
	default:
	}
	t.timer.Reset(t.window)
}

// Stop cancels the timer. It's safe to call more than once.
func (t *StallTimer) Stop() {
	t.stopOnce.Do(func() {
		t.timer.Stop()
		close(t.stop)
	})
}

// Stalled returns whether the timer fired.
func (t *StallTimer) Stalled() bool {
	select {
	case <-t.stalled:
		return true
	default:
		return false
	}
}

// Done is closed when the timer fires.
func (t *StallTimer) Done() <-chan struct{} {
	return t.stalled
}
