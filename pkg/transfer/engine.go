// Package transfer downloads single files from the media server. Transfers
// are aborted if the server stops sending data for longer than the stall
// window.
package transfer

//go:generate mockery -name Engine

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/sidkik/mediasync/pkg/errors"
	"github.com/sidkik/mediasync/pkg/metrics"
	"github.com/sidkik/mediasync/pkg/version"
)

const (
	// DefaultStallTimeout is how long a transfer may go without receiving
	// data before it's aborted.
	DefaultStallTimeout = 10 * time.Second

	chunkSize = 32 * 1024
)

// Engine downloads a file from the media server into the output folder.
type Engine interface {
	// Download fetches `baseURL/resourceName` into
	// `outputFolder/resourceName`, overwriting any existing content. It
	// doesn't create intermediate directories.
	Download(ctx context.Context, baseURL, resourceName, outputFolder string) error
}

type engine struct {
	client       *http.Client
	fs           afero.Fs
	clock        clockwork.Clock
	stallTimeout time.Duration
	progress     ProgressFunc
	metrics      *metrics.Metrics
	log          logrus.FieldLogger
}

// Option configures an Engine.
type Option func(*engine)

// WithHTTPClient sets the client used for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(e *engine) {
		e.client = client
	}
}

// WithFs sets the filesystem that files are written to.
func WithFs(fs afero.Fs) Option {
	return func(e *engine) {
		e.fs = fs
	}
}

// WithClock sets the clock that drives the stall timer.
func WithClock(clock clockwork.Clock) Option {
	return func(e *engine) {
		e.clock = clock
	}
}

// WithStallTimeout overrides DefaultStallTimeout.
func WithStallTimeout(d time.Duration) Option {
	return func(e *engine) {
		e.stallTimeout = d
	}
}

// WithProgress sets the function notified as transfers advance.
func WithProgress(fn ProgressFunc) Option {
	return func(e *engine) {
		e.progress = fn
	}
}

// WithMetrics records downloaded bytes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *engine) {
		e.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(e *engine) {
		e.log = log
	}
}

// New returns an Engine. By default it writes to the OS filesystem, uses the
// real clock, and logs progress.
func New(opts ...Option) Engine {
	e := &engine{
		client:       http.DefaultClient,
		fs:           afero.NewOsFs(),
		clock:        clockwork.NewRealClock(),
		stallTimeout: DefaultStallTimeout,
		log:          logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.progress == nil {
		e.progress = logProgress(e.log)
	}
	return e
}

func logProgress(log logrus.FieldLogger) ProgressFunc {
	return func(resource string, received, total int64, percent float64) {
		log.WithField("resource", resource).Infof(
			"Downloaded %.2f%% (%d of %d bytes)", percent, received, total)
	}
}

func (e *engine) Download(ctx context.Context, baseURL, resourceName, outputFolder string) error {
	dst := filepath.Join(outputFolder, filepath.FromSlash(resourceName))
	url := baseURL + "/" + resourceName
	log := e.log.WithField("resource", resourceName)

	file, err := e.fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return errors.WithContext(err, "open destination")
	}

	log.WithField("url", url).Info("Attempting to download")
	err = e.fetch(ctx, file, url, resourceName)
	if closeErr := file.Close(); err == nil && closeErr != nil {
		err = errors.WithContext(closeErr, "close destination")
	}

	if err != nil {
		// Don't leave a truncated file behind. Otherwise, the next cycle
		// would see that it exists and never retry it.
		if rmErr := e.fs.Remove(dst); rmErr != nil {
			log.WithError(rmErr).Warn("Failed to remove partially downloaded file")
		}
		return err
	}

	log.Info("File downloaded")
	return nil
}

// fetch streams the response for `url` into `dst`, failing if no data
// arrives for a full stall window.
func (e *engine) fetch(ctx context.Context, dst io.Writer, url, resourceName string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The stall window also covers waiting for the response headers.
	stall := NewStallTimer(e.clock, e.stallTimeout, cancel)
	defer stall.Stop()

	progress := newProgressTracker(resourceName, -1, e.progress)
	failed := func(err error) error {
		if stall.Stalled() {
			e.log.WithField("resource", resourceName).Error("Download timed out")
			return &TimeoutError{Resource: resourceName, Window: e.stallTimeout, Received: progress.received}
		}
		return &NetworkError{Resource: resourceName, Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &NetworkError{Resource: resourceName, Cause: err}
	}
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := e.client.Do(req)
	if err != nil {
		return failed(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &NetworkError{Resource: resourceName, Cause: fmt.Errorf("unexpected status %s", resp.Status)}
	}
	progress.total = resp.ContentLength

	buf := make([]byte, chunkSize)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			stall.Reset()
			if _, err := dst.Write(buf[:n]); err != nil {
				return errors.WithContext(err, "write destination")
			}
			e.metrics.AddBytes(n)
			progress.add(n)
		}

		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			return failed(readErr)
		}
	}
}
