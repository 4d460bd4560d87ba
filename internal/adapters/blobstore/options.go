package blobstore

import (
	"github.com/example/leaguedesk/internal/domain/dedupe"
	"github.com/example/leaguedesk/pkg/logger"
)

// Option configures an FSStore.
type Option func(*FSStore)

// WithCache swaps the digest cache, e.g. for a differently bounded one.
func WithCache(c dedupe.Cache) Option {
	return func(s *FSStore) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithLogger overrides the package logger.
func WithLogger(log logger.Logger) Option {
	return func(s *FSStore) {
		if log != nil {
			s.log = log
		}
	}
}
