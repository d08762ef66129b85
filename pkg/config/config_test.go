package config

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidkik/mediasync/pkg/errors"
)

const validConfig = `{
  "multimediaListHostName": "catalog.local",
  "multimediaListPort": 8080,
  "multimediaListPath": "/api/multimedia",
  "multimediaUrl": "http://media.local/files",
  "outputFolder": "/media",
  "checkIntervalInMinutes": 5
}`

func TestParse(t *testing.T) {
	path := "config.json"
	homedirExpand = func(path string) (string, error) {
		return path, nil
	}

	tests := []struct {
		name      string
		input     string
		noFile    bool
		expConfig Agent
		expError  error
	}{
		{
			name:  "valid",
			input: validConfig,
			expConfig: Agent{
				MediaServerBaseURL:   "http://media.local/files",
				ManifestHost:         "catalog.local",
				ManifestPort:         8080,
				ManifestPath:         "/api/multimedia",
				OutputFolder:         "/media",
				CheckIntervalMinutes: 5,
			},
		},
		{
			name:     "missing file",
			noFile:   true,
			expError: LoadError{Path: path, Cause: errors.FileNotFound{Path: path}},
		},
		{
			name: "missing output folder",
			input: `{
  "multimediaListHostName": "catalog.local",
  "multimediaListPort": 8080,
  "multimediaListPath": "/api/multimedia",
  "multimediaUrl": "http://media.local/files",
  "checkIntervalInMinutes": 5
}`,
			expError: LoadError{Path: path, Cause: errors.WithContext(
				errors.MissingFieldError{Field: "outputFolder"}, "validate")},
		},
		{
			name: "missing interval",
			input: `{
  "multimediaListHostName": "catalog.local",
  "multimediaListPort": 8080,
  "multimediaListPath": "/api/multimedia",
  "multimediaUrl": "http://media.local/files",
  "outputFolder": "/media"
}`,
			expError: LoadError{Path: path, Cause: errors.WithContext(
				errors.MissingFieldError{Field: "checkIntervalInMinutes"}, "validate")},
		},
		{
			name: "negative port",
			input: `{
  "multimediaListHostName": "catalog.local",
  "multimediaListPort": -1,
  "multimediaListPath": "/api/multimedia",
  "multimediaUrl": "http://media.local/files",
  "outputFolder": "/media",
  "checkIntervalInMinutes": 5
}`,
			expError: LoadError{Path: path, Cause: errors.WithContext(
				errors.InvalidFieldError{Field: "multimediaListPort", Reason: "must be between 1 and 65535"},
				"validate")},
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			fs = afero.NewMemMapFs()
			if !test.noFile {
				require.NoError(t, afero.WriteFile(fs, path, []byte(test.input), 0644))
			}

			cfg, err := Parse(path)
			assert.Equal(t, test.expError, err)
			assert.Equal(t, test.expConfig, cfg)
		})
	}
}

func TestParseRejectsMalformedDocuments(t *testing.T) {
	path := "config.json"
	homedirExpand = func(path string) (string, error) {
		return path, nil
	}

	tests := []struct {
		name  string
		input string
	}{
		{"not json", `{"outputFolder": `},
		{"wrong type", `{"multimediaListPort": "8080"}`},
		{"unknown field", `{"outputFolder": "/media", "extra": true}`},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			fs = afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fs, path, []byte(test.input), 0644))

			_, err := Parse(path)
			require.Error(t, err)

			var loadErr LoadError
			require.True(t, errors.As(err, &loadErr))
			assert.Contains(t, loadErr.FriendlyMessage(), "Configuration file could not be parsed")
			assert.Contains(t, errors.GetPrintableMessage(err), path)
		})
	}
}

func TestParseExpandsOutputFolder(t *testing.T) {
	fs = afero.NewMemMapFs()
	homedirExpand = func(path string) (string, error) {
		if path == "~/media" {
			return "/home/kiosk/media", nil
		}
		return path, nil
	}
	input := `{
  "multimediaListHostName": "catalog.local",
  "multimediaListPort": 8080,
  "multimediaListPath": "/api/multimedia",
  "multimediaUrl": "http://media.local/files",
  "outputFolder": "~/media",
  "checkIntervalInMinutes": 1
}`
	require.NoError(t, afero.WriteFile(fs, "config.json", []byte(input), 0644))

	cfg, err := Parse("config.json")
	require.NoError(t, err)
	assert.Equal(t, "/home/kiosk/media", cfg.OutputFolder)
	assert.Equal(t, time.Minute, cfg.CheckInterval())
	assert.Equal(t, "http://catalog.local:8080/api/multimedia", cfg.ManifestURL())
}

func TestParseCheckInterval(t *testing.T) {
	homedirExpand = func(path string) (string, error) {
		return path, nil
	}

	tests := []struct {
		name        string
		interval    string
		expInterval time.Duration
		expError    error
	}{
		{
			name:        "whole minutes",
			interval:    "5",
			expInterval: 5 * time.Minute,
		},
		{
			name:        "fractional minutes",
			interval:    "0.5",
			expInterval: 30 * time.Second,
		},
		{
			name:     "negative",
			interval: "-1.5",
			expError: errors.InvalidFieldError{Field: "checkIntervalInMinutes", Reason: "must be positive"},
		},
		{
			name:     "rounds to zero",
			interval: "1e-12",
			expError: errors.InvalidFieldError{Field: "checkIntervalInMinutes", Reason: "must be positive"},
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			fs = afero.NewMemMapFs()
			input := `{
  "multimediaListHostName": "catalog.local",
  "multimediaListPort": 8080,
  "multimediaListPath": "/api/multimedia",
  "multimediaUrl": "http://media.local/files",
  "outputFolder": "/media",
  "checkIntervalInMinutes": ` + test.interval + `
}`
			require.NoError(t, afero.WriteFile(fs, "config.json", []byte(input), 0644))

			cfg, err := Parse("config.json")
			if test.expError != nil {
				assert.Equal(t, LoadError{Path: "config.json",
					Cause: errors.WithContext(test.expError, "validate")}, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.expInterval, cfg.CheckInterval())
		})
	}
}
