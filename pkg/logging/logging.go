// Package logging configures zerolog for rpp. The CLI calls SetupLogger once;
// libraries take a zerolog.Logger and narrow it with ForBuild and
// ForPatchFile.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SetupLogger points the global logger at stderr and the log file.
func SetupLogger(verbosity int) {
	Setup(os.Stderr, verbosity)
}

// Setup sets the global level from verbosity and writes human readable
// lines to console and JSON lines to the append-only log file. A log file
// that cannot be opened is reported and skipped.
func Setup(console io.Writer, verbosity int) {
	zerolog.SetGlobalLevel(LevelFor(verbosity))

	logPath := LogFilePath()
	file, fileErr := openLogFile(logPath)

	out := io.Writer(zerolog.ConsoleWriter{Out: console, TimeFormat: time.Kitchen})
	if fileErr == nil {
		out = zerolog.MultiLevelWriter(out, file)
	}

	ctx := zerolog.New(out).With().Timestamp()
	if verbosity >= 2 {
		ctx = ctx.Caller()
	}
	log.Logger = ctx.Logger()

	if fileErr != nil {
		log.Warn().Err(fileErr).Str("path", logPath).Msg("Failed to create log file, logging to console only")
	}
	log.Debug().Int("verbosity", verbosity).Str("logFile", logPath).Msg("Logger initialized")
}

// LevelFor maps the -v count to a zerolog level.
func LevelFor(verbosity int) zerolog.Level {
	switch {
	case verbosity <= 0:
		return zerolog.WarnLevel
	case verbosity == 1:
		return zerolog.InfoLevel
	case verbosity == 2:
		return zerolog.DebugLevel
	default:
		return zerolog.TraceLevel
	}
}

// GetLogger returns the global logger tagged with a component.
func GetLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// ForBuild returns the logger owned by a single config build. Every line it
// writes carries the pack and config names so interleaved parallel builds
// stay readable.
func ForBuild(base zerolog.Logger, pack, config string) zerolog.Logger {
	return base.With().Str("pack", pack).Str("config", config).Logger()
}

// ForPatchFile narrows a build logger to one patch file.
func ForPatchFile(base zerolog.Logger, patchFile string) zerolog.Logger {
	return base.With().Str("patch_file", patchFile).Logger()
}

// LogFilePath is $XDG_STATE_HOME/rpp/rpp.log. The variable is read at call
// time so tests and wrappers can move it.
func LogFilePath() string {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		stateHome = xdg.StateHome
	}
	if stateHome == "" {
		return "rpp.log"
	}
	return filepath.Join(stateHome, "rpp", "rpp.log")
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

// LogOperationStart logs at debug level and returns a func logging the
// elapsed time when the operation is done.
func LogOperationStart(logger zerolog.Logger, operation string) func() {
	start := time.Now()
	logger.Debug().Str("operation", operation).Msg("Operation started")
	return func() {
		logger.Debug().
			Str("operation", operation).
			Dur("duration", time.Since(start)).
			Msg("Operation completed")
	}
}
