package sync

//go:generate mockery -name Checker

import (
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

var fs = afero.NewOsFs()

// Checker decides whether a manifest entry has to be downloaded.
type Checker interface {
	NeedsDownload(resourceURL string) bool
}

// Gate is a Checker that considers a file present if anything exists at its
// path in the output folder. It doesn't look at the file's contents.
type Gate struct {
	outputFolder string
}

// NewGate returns a Gate for `outputFolder`.
func NewGate(outputFolder string) Gate {
	return Gate{outputFolder: outputFolder}
}

// NeedsDownload returns true if `resourceURL` doesn't exist in the output
// folder. If the check itself fails, the file is assumed to be missing.
func (g Gate) NeedsDownload(resourceURL string) bool {
	path := filepath.Join(g.outputFolder, filepath.FromSlash(resourceURL))
	exists, err := afero.Exists(fs, path)
	if err != nil {
		log.WithError(err).WithField("path", path).Debug("Failed to check whether file exists")
		return true
	}
	return !exists
}
