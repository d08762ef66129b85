package scheduler

import (
	"sync"
	"time"

	"github.com/sidkik/mediasync/pkg/config"
	syncpkg "github.com/sidkik/mediasync/pkg/sync"
)

// SyncContext is the state shared by everything that triggers cycles. It
// holds the single-flight guard: at most one cycle runs at a time.
type SyncContext struct {
	Config config.Agent

	lock       sync.Mutex
	running    bool
	lastResult syncpkg.CycleResult
	lastErr    error
	lastEnd    time.Time
}

// NewSyncContext returns a SyncContext for `cfg` with no cycle in flight.
func NewSyncContext(cfg config.Agent) *SyncContext {
	return &SyncContext{Config: cfg}
}

// Running returns whether a cycle is in flight.
func (sc *SyncContext) Running() bool {
	sc.lock.Lock()
	defer sc.lock.Unlock()
	return sc.running
}

// LastResult returns the outcome of the most recently finished cycle, and
// when it finished. The time is zero if no cycle has finished yet.
func (sc *SyncContext) LastResult() (syncpkg.CycleResult, time.Time, error) {
	sc.lock.Lock()
	defer sc.lock.Unlock()
	return sc.lastResult, sc.lastEnd, sc.lastErr
}

// tryStart sets the guard. It returns false if a cycle is already running.
func (sc *SyncContext) tryStart() bool {
	sc.lock.Lock()
	defer sc.lock.Unlock()
	if sc.running {
		return false
	}
	sc.running = true
	return true
}

// finish records the cycle's outcome and clears the guard.
func (sc *SyncContext) finish(res syncpkg.CycleResult, err error, end time.Time) {
	sc.lock.Lock()
	defer sc.lock.Unlock()
	sc.running = false
	sc.lastResult = res
	sc.lastErr = err
	sc.lastEnd = end
}
