package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		name      string
		verbosity int
		wantLevel zerolog.Level
	}{
		{"default warn level", 0, zerolog.WarnLevel},
		{"info level", 1, zerolog.InfoLevel},
		{"debug level", 2, zerolog.DebugLevel},
		{"trace level", 3, zerolog.TraceLevel},
		{"high verbosity defaults to trace", 5, zerolog.TraceLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			t.Setenv("XDG_STATE_HOME", tempDir)

			SetupLogger(tt.verbosity)

			assert.Equal(t, tt.wantLevel, zerolog.GlobalLevel())

			logPath := filepath.Join(tempDir, "rpp", "rpp.log")
			_, err := os.Stat(logPath)
			assert.NoError(t, err, "log file should exist at %s", logPath)
		})
	}
}

func TestSetupWritesConsoleAndFile(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", tempDir)

	var console bytes.Buffer
	Setup(&console, 1)
	logger := GetLogger("packer")
	logger.Info().Msg("Located pack")

	assert.Contains(t, console.String(), "Located pack")
	data, err := os.ReadFile(filepath.Join(tempDir, "rpp", "rpp.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"component":"packer"`)
}

func TestGetLogFilePath(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/custom/state")
	assert.Equal(t, filepath.Join("/custom/state", "rpp", "rpp.log"), LogFilePath())
}

func TestForBuild(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	logger := ForPatchFile(ForBuild(base, "Stay True", "Default"), "connected_glass")
	logger.Info().Msg("Completed patch [1/2]")

	out := buf.String()
	assert.Contains(t, out, `"pack":"Stay True"`)
	assert.Contains(t, out, `"config":"Default"`)
	assert.Contains(t, out, `"patch_file":"connected_glass"`)
	assert.Contains(t, out, "Completed patch [1/2]")
}

func TestLogOperationStart(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	var buf bytes.Buffer
	done := LogOperationStart(zerolog.New(&buf), "zip")
	done()

	out := buf.String()
	require.Contains(t, out, "Operation started")
	assert.Contains(t, out, "Operation completed")
	assert.Contains(t, out, `"duration"`)
}

func TestGetLogger(t *testing.T) {
	logger := GetLogger("packer")
	assert.NotNil(t, logger)
}
