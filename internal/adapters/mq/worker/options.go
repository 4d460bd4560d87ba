package worker

import (
	"github.com/example/leaguedesk/pkg/logger"
)

// Option applies a configuration option to an ExtractWorker.
type Option func(*ExtractWorker)

// WithName sets the worker name used in logs.
func WithName(name string) Option {
	return func(w *ExtractWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) Option {
	return func(w *ExtractWorker) {
		if log != nil {
			w.log = log
		}
	}
}
