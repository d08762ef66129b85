package transfer

import (
	"math"
)

// progressStep is how many percentage points a transfer must advance before
// progress is reported again.
const progressStep = 10.0

// ProgressFunc is notified as a transfer advances. `total` is -1 when the
// server didn't declare a content length, in which case ProgressFunc isn't
// called at all.
type ProgressFunc func(resource string, received, total int64, percent float64)

type progressTracker struct {
	resource    string
	received    int64
	total       int64
	lastPercent float64
	report      ProgressFunc
}

func newProgressTracker(resource string, total int64, report ProgressFunc) *progressTracker {
	return &progressTracker{resource: resource, total: total, report: report}
}

func (p *progressTracker) add(n int) {
	p.received += int64(n)

	// Without a declared size there's no meaningful percentage.
	if p.total <= 0 || p.report == nil {
		return
	}

	percent := math.Round(10000*float64(p.received)/float64(p.total)) / 100
	if percent-p.lastPercent > progressStep {
		p.lastPercent = percent
		p.report(p.resource, p.received, p.total, percent)
	}
}
