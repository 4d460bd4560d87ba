package repository

import (
	"github.com/jmoiron/sqlx"

	"github.com/example/leaguedesk/pkg/logger"
)

// Option configures a SQLStore.
type Option func(*SQLStore)

// WithDB injects an existing connection pool, used by tests to supply a mock.
// When set, the DSN passed to New is ignored.
func WithDB(db *sqlx.DB) Option {
	return func(s *SQLStore) {
		s.db = db
	}
}

// WithLogger overrides the package logger.
func WithLogger(log logger.Logger) Option {
	return func(s *SQLStore) {
		if log != nil {
			s.log = log
		}
	}
}
