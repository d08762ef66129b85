package util

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	logrusTest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidkik/mediasync/pkg/config"
	"github.com/sidkik/mediasync/pkg/errors"
)

func TestHandleFatalError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		expOut string
	}{
		{
			name:   "friendly error",
			err:    errors.WithContext(errors.NewFriendlyError("config.json is missing"), "start agent"),
			expOut: "Error: config.json is missing\n",
		},
		{
			name: "config error",
			err: config.LoadError{
				Path:  "/etc/mediasync/config.json",
				Cause: errors.MissingFieldError{Field: "outputFolder"},
			},
			expOut: "Error: The configuration file \"/etc/mediasync/config.json\" " +
				"is not usable: missing required field: outputFolder\n",
		},
		{
			name:   "unfriendly error",
			err:    errors.WithContext(errors.New("connection refused"), "serve metrics"),
			expOut: "Error: serve metrics: connection refused\n",
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			var out bytes.Buffer
			var exitCode int
			stderr = &out
			exit = func(code int) { exitCode = code }

			HandleFatalError(test.err)
			assert.Equal(t, test.expOut, out.String())
			assert.Equal(t, 1, exitCode)
		})
	}
}

func TestHandlePanic(t *testing.T) {
	hook := logrusTest.NewGlobal()
	defer hook.Reset()

	assert.PanicsWithValue(t, "boom", func() {
		defer HandlePanic()
		panic("boom")
	})

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "Unexpected panic: boom", entry.Message)
	assert.Contains(t, entry.Data["stack"], "TestHandlePanic")
}
