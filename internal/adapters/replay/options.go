package replay

import (
	"time"

	"github.com/example/leaguedesk/pkg/logger"
)

// Option configures a MetadataExtractor.
type Option func(*MetadataExtractor)

// WithCommand sets the external parser command.
func WithCommand(command string) Option {
	return func(e *MetadataExtractor) {
		e.command = command
	}
}

// WithTimeout bounds a single parser invocation.
func WithTimeout(d time.Duration) Option {
	return func(e *MetadataExtractor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithLogger overrides the package logger.
func WithLogger(log logger.Logger) Option {
	return func(e *MetadataExtractor) {
		if log != nil {
			e.log = log
		}
	}
}
