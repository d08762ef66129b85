package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ghodss/yaml"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"

	"github.com/sidkik/mediasync/pkg/errors"
)

// DefaultPath is where the agent looks for its configuration, relative to the
// working directory.
const DefaultPath = "config.json"

// parseConfigErrTemplate is a template for when the agent fails to parse its
// configuration file. The JSON decoder constructs errors in a way that loses
// context, so we can only pass the error message on.
const parseConfigErrTemplate = "Configuration file could not be parsed. " +
	"Please review %q.\n" +
	"Common pitfalls include:\n" +
	" - Using the wrong types for fields (ports and intervals are numbers)\n" +
	" - Having extra fields inside the config file\n\n" +
	"For reference, here is the error from the parser:\n" +
	"%s"

// Agent is the startup configuration of the sync agent. It's read once when
// the process starts and is read-only afterwards.
type Agent struct {
	// MediaServerBaseURL is the prefix that resource URLs from the manifest
	// are appended to when downloading.
	MediaServerBaseURL string `json:"multimediaUrl"`

	ManifestHost string `json:"multimediaListHostName"`
	ManifestPort int    `json:"multimediaListPort"`
	ManifestPath string `json:"multimediaListPath"`

	// OutputFolder is the local directory that media files are mirrored
	// into.
	OutputFolder string `json:"outputFolder"`

	// CheckIntervalMinutes may be fractional, such as 0.5 for 30 seconds.
	CheckIntervalMinutes float64 `json:"checkIntervalInMinutes"`
}

// CheckInterval returns the period between scheduled sync cycles.
func (cfg Agent) CheckInterval() time.Duration {
	return time.Duration(cfg.CheckIntervalMinutes * float64(time.Minute))
}

// ManifestURL returns the full URL of the manifest document.
func (cfg Agent) ManifestURL() string {
	path := cfg.ManifestPath
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return "http://" + net.JoinHostPort(cfg.ManifestHost, strconv.Itoa(cfg.ManifestPort)) + path
}

// LoadError is returned when the configuration can't be used. The agent
// can't run without a configuration, so it's always fatal.
type LoadError struct {
	Path  string
	Cause error
}

func (err LoadError) Error() string {
	return fmt.Sprintf("load config %q: %s", err.Path, err.Cause)
}

func (err LoadError) Unwrap() error {
	return err.Cause
}

// FriendlyMessage lets friendly causes (such as parse errors) through
// unchanged.
func (err LoadError) FriendlyMessage() string {
	if friendly, ok := errors.RootCause(err.Cause).(errors.FriendlyError); ok {
		return friendly.FriendlyMessage()
	}
	return fmt.Sprintf("The configuration file %q is not usable: %s", err.Path, err.Cause)
}

// Overridden in tests.
var (
	fs            = afero.NewOsFs()
	homedirExpand = homedir.Expand
)

// Parse reads and validates the agent configuration at `path`.
func Parse(path string) (Agent, error) {
	var cfg Agent
	if err := parseConfig(path, &cfg); err != nil {
		return Agent{}, LoadError{Path: path, Cause: err}
	}

	if err := cfg.validate(); err != nil {
		return Agent{}, LoadError{Path: path, Cause: errors.WithContext(err, "validate")}
	}

	outputFolder, err := homedirExpand(cfg.OutputFolder)
	if err != nil {
		return Agent{}, LoadError{Path: path, Cause: errors.WithContext(err, "expand output folder")}
	}
	cfg.OutputFolder = filepath.Clean(outputFolder)
	return cfg, nil
}

func parseConfig(path string, config *Agent) error {
	configBytes, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.FileNotFound{Path: path}
		}
		return errors.WithContext(err, "read file")
	}

	// Do a strict unmarshal so that typos in field names are reported rather
	// than silently leaving the field empty.
	err = yaml.Unmarshal(configBytes, config, yaml.DisallowUnknownFields)
	if err != nil {
		return errors.NewFriendlyError(parseConfigErrTemplate, path, err)
	}
	return nil
}

func (cfg Agent) validate() error {
	required := []struct {
		field string
		value string
	}{
		{"multimediaUrl", cfg.MediaServerBaseURL},
		{"multimediaListHostName", cfg.ManifestHost},
		{"multimediaListPath", cfg.ManifestPath},
		{"outputFolder", cfg.OutputFolder},
	}
	for _, r := range required {
		if r.value == "" {
			return errors.MissingFieldError{Field: r.field}
		}
	}

	switch {
	case cfg.ManifestPort == 0:
		return errors.MissingFieldError{Field: "multimediaListPort"}
	case cfg.ManifestPort < 0 || cfg.ManifestPort > 65535:
		return errors.InvalidFieldError{Field: "multimediaListPort", Reason: "must be between 1 and 65535"}
	case cfg.CheckIntervalMinutes == 0:
		return errors.MissingFieldError{Field: "checkIntervalInMinutes"}
	case cfg.CheckInterval() <= 0:
		return errors.InvalidFieldError{Field: "checkIntervalInMinutes", Reason: "must be positive"}
	}
	return nil
}
