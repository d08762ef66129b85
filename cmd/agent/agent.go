package agent

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sidkik/mediasync/cmd/util"
	"github.com/sidkik/mediasync/pkg/config"
	"github.com/sidkik/mediasync/pkg/errors"
	"github.com/sidkik/mediasync/pkg/manifest"
	"github.com/sidkik/mediasync/pkg/metrics"
	"github.com/sidkik/mediasync/pkg/scheduler"
	"github.com/sidkik/mediasync/pkg/sync"
	"github.com/sidkik/mediasync/pkg/transfer"
)

// manifestTimeout bounds the whole manifest request. Media transfers aren't
// bounded, and instead rely on the stall timeout.
const manifestTimeout = time.Minute

// New creates the command that runs the sync agent.
func New() *cobra.Command {
	var configPath, metricsAddress string
	cmd := &cobra.Command{
		Use:   "mediasync",
		Short: "Keep a local media folder in sync with a remote catalog.",
		Long: "Periodically fetch the media manifest and download any files " +
			"that don't exist in the output folder yet.\n\n" +
			"Files are never deleted or re-downloaded once they exist locally.",
		Args: cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			if err := run(ctx, configPath, metricsAddress); err != nil {
				util.HandleFatalError(err)
			}
		},
	}
	cmd.Flags().StringVar(&configPath, "config", config.DefaultPath,
		"Path to the agent's configuration file. Unknown keys in the file are "+
			"rejected so that typos aren't silently ignored.")
	cmd.Flags().StringVar(&metricsAddress, "metrics-address", "",
		"Address to serve Prometheus metrics on, such as `:9090`. "+
			"Metrics aren't served if empty.")
	return cmd
}

func run(ctx context.Context, configPath, metricsAddress string) error {
	cfg, err := config.Parse(configPath)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"manifest":     cfg.ManifestURL(),
		"mediaServer":  cfg.MediaServerBaseURL,
		"outputFolder": cfg.OutputFolder,
	}).Info("Loaded configuration")

	var m *metrics.Metrics
	if metricsAddress != "" {
		m = metrics.New()
		go func() {
			if err := m.Serve(ctx, metricsAddress); err != nil {
				log.WithError(err).Error("Metrics server crashed")
			}
		}()
	}

	fetcher := manifest.NewFetcher(&http.Client{Timeout: manifestTimeout}, cfg.ManifestURL())
	engine := transfer.New(transfer.WithMetrics(m))
	orchestrator := sync.NewOrchestrator(fetcher, sync.NewGate(cfg.OutputFolder), engine,
		cfg.MediaServerBaseURL, cfg.OutputFolder, m)

	syncCtx := scheduler.NewSyncContext(cfg)
	if err := scheduler.New(syncCtx, orchestrator).Run(ctx); err != nil {
		return errors.WithContext(err, "run scheduler")
	}

	res, end, lastErr := syncCtx.LastResult()
	shutdownLog := log.WithFields(log.Fields{
		"downloaded": res.Downloaded,
		"failed":     res.Failed,
		"skipped":    res.Skipped,
		"finishedAt": end,
	})
	if lastErr != nil {
		shutdownLog = shutdownLog.WithError(lastErr)
	}
	shutdownLog.Info("Shutting down")
	return nil
}
