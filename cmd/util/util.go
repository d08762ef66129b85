package util

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"

	log "github.com/sirupsen/logrus"

	"github.com/sidkik/mediasync/pkg/errors"
)

// Overridden in tests.
var (
	exit             = os.Exit
	stderr io.Writer = os.Stderr
)

// HandleFatalError prints the error in a form suitable for operators and
// exits. The full error chain is logged at debug level.
func HandleFatalError(err error) {
	log.WithError(err).Debug("Fatal error")
	fmt.Fprintf(stderr, "Error: %s\n", errors.GetPrintableMessage(err))
	exit(1)
}

// HandlePanic logs a panic along with its stack trace, and then continues
// panicking. It must be deferred.
func HandlePanic() {
	if r := recover(); r != nil {
		log.WithField("stack", string(debug.Stack())).Errorf("Unexpected panic: %v", r)
		panic(r)
	}
}
