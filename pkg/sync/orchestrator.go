package sync

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/sidkik/mediasync/pkg/errors"
	"github.com/sidkik/mediasync/pkg/manifest"
	"github.com/sidkik/mediasync/pkg/metrics"
	"github.com/sidkik/mediasync/pkg/transfer"
)

// CycleResult summarizes a completed cycle.
type CycleResult struct {
	Downloaded int
	Failed     int
	Skipped    int
	Duration   time.Duration
}

// Attempted is the number of entries that needed a download, whether or not
// the download succeeded.
func (res CycleResult) Attempted() int {
	return res.Downloaded + res.Failed
}

// cycleState is the bookkeeping for the cycle in progress. It's discarded
// when the cycle ends.
type cycleState struct {
	currentIndex int
	downloaded   int
	failed       int
	skipped      int
}

// Orchestrator runs sync cycles.
type Orchestrator struct {
	fetcher      manifest.Fetcher
	checker      Checker
	engine       transfer.Engine
	baseURL      string
	outputFolder string
	metrics      *metrics.Metrics

	clock clockwork.Clock
	log   logrus.FieldLogger
}

// NewOrchestrator returns an Orchestrator that downloads missing manifest
// entries from `baseURL` into `outputFolder`. `m` may be nil.
func NewOrchestrator(fetcher manifest.Fetcher, checker Checker, engine transfer.Engine,
	baseURL, outputFolder string, m *metrics.Metrics) *Orchestrator {
	return &Orchestrator{
		fetcher:      fetcher,
		checker:      checker,
		engine:       engine,
		baseURL:      baseURL,
		outputFolder: outputFolder,
		metrics:      m,
		clock:        clockwork.NewRealClock(),
		log:          logrus.StandardLogger(),
	}
}

// RunCycle fetches the manifest and downloads every entry that doesn't exist
// locally. It returns an error if the manifest couldn't be retrieved, or if
// `ctx` was cancelled before all entries were processed. Individual download
// failures are counted in the result but don't fail the cycle.
func (o *Orchestrator) RunCycle(ctx context.Context) (CycleResult, error) {
	start := o.clock.Now()

	o.log.Info("Checking for new media")
	m, err := o.fetcher.Fetch(ctx)
	if err != nil {
		kind := manifest.ErrorKind(err)
		o.metrics.RecordManifestError(kind)
		o.metrics.RecordCycle(metrics.ResultAborted, o.clock.Since(start))
		o.log.WithError(err).WithField("kind", kind).Error("Failed to retrieve manifest")
		return CycleResult{Duration: o.clock.Since(start)}, errors.WithContext(err, "get manifest")
	}

	var state cycleState
	for state.currentIndex = 0; state.currentIndex < len(m.Multimedia); state.currentIndex++ {
		if err := ctx.Err(); err != nil {
			res := state.result(o.clock.Since(start))
			o.metrics.RecordCycle(metrics.ResultAborted, res.Duration)
			return res, err
		}
		o.processEntry(ctx, &state, m.Multimedia[state.currentIndex])
	}

	res := state.result(o.clock.Since(start))
	o.metrics.RecordCycle(metrics.ResultCompleted, res.Duration)
	o.log.WithFields(logrus.Fields{
		"downloaded": res.Downloaded,
		"failed":     res.Failed,
		"skipped":    res.Skipped,
		"attempted":  res.Attempted(),
		"duration":   res.Duration,
	}).Info("Media up to date")
	return res, nil
}

func (o *Orchestrator) processEntry(ctx context.Context, state *cycleState, item manifest.MediaItem) {
	log := o.log.WithField("index", state.currentIndex)
	if item.ResourceURL == "" {
		log.Warn("Manifest entry has no resource_url")
		state.failed++
		o.metrics.RecordFile(metrics.ResultFailed)
		return
	}

	log = log.WithField("resource", item.ResourceURL)
	if !withinFolder(o.outputFolder, item.ResourceURL) {
		log.Warn("Manifest entry points outside the output folder")
		state.failed++
		o.metrics.RecordFile(metrics.ResultFailed)
		return
	}

	if !o.checker.NeedsDownload(item.ResourceURL) {
		log.Debug("File already exists")
		state.skipped++
		o.metrics.RecordFile(metrics.ResultSkipped)
		return
	}

	if err := o.engine.Download(ctx, o.baseURL, item.ResourceURL, o.outputFolder); err != nil {
		log.WithError(err).Warn("Failed to download file")
		state.failed++
		o.metrics.RecordFile(metrics.ResultFailed)
		return
	}
	state.downloaded++
	o.metrics.RecordFile(metrics.ResultDownloaded)
}

// withinFolder returns whether `resourceURL` resolves to a path inside
// `folder` once joined to it.
func withinFolder(folder, resourceURL string) bool {
	path := filepath.Join(folder, filepath.FromSlash(resourceURL))
	rel, err := filepath.Rel(folder, path)
	if err != nil || rel == "." {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func (state cycleState) result(duration time.Duration) CycleResult {
	return CycleResult{
		Downloaded: state.downloaded,
		Failed:     state.failed,
		Skipped:    state.skipped,
		Duration:   duration,
	}
}
