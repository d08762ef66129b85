package cmd

import (
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/sidkik/mediasync/cmd/agent"
	"github.com/sidkik/mediasync/cmd/util"
	"github.com/sidkik/mediasync/cmd/version"
)

const (
	// verboseLogKey is the environment variable used to enable verbose
	// logging. When it's set to `true`, Debug events are logged, rather than
	// just Info and above.
	verboseLogKey = "MEDIASYNC_LOG_VERBOSE"

	// logFormatKey selects the log format. `json` is useful when the logs are
	// shipped somewhere. Anything else uses the text format.
	logFormatKey = "MEDIASYNC_LOG_FORMAT"
)

// Execute runs the main CLI process.
func Execute() {
	setupLogging()

	rootCmd := agent.New()
	rootCmd.SilenceUsage = true

	// The call to rootCmd.Execute prints the error, so we silence errors
	// here to avoid double printing.
	rootCmd.SilenceErrors = true
	rootCmd.AddCommand(version.New())

	if err := rootCmd.Execute(); err != nil {
		util.HandleFatalError(err)
	}
}

func setupLogging() {
	if os.Getenv(verboseLogKey) == "true" {
		log.SetLevel(log.DebugLevel)
	}

	if os.Getenv(logFormatKey) == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		// The agent runs unattended, so the full timestamp is more useful
		// than the time elapsed since startup.
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
