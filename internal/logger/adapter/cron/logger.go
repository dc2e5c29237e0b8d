// Package cron adapts zerolog to the robfig/cron logger interface.
package cron

import (
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger implements cron.Logger.
type Logger struct {
	logger zerolog.Logger
	// verbose forwards cron's chatty info messages (wake, run, schedule) at debug level.
	verbose bool
}

var _ cron.Logger = (*Logger)(nil)

// New returns a cron logger on top of the global zerolog logger.
func New(verbose bool) *Logger {
	return NewWithLogger(log.Logger.With().Str("component", "cron").Logger(), verbose)
}

// NewWithLogger is New with an explicit zerolog logger.
func NewWithLogger(l zerolog.Logger, verbose bool) *Logger {
	return &Logger{logger: l, verbose: verbose}
}

// Info logs routine scheduler messages.
func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	if !l.verbose {
		return
	}

	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

// Error logs job failures and recovered panics.
func (l *Logger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
