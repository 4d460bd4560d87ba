package app

import (
	"github.com/example/leaguedesk/internal/adapters/blobstore"
	jobqueue "github.com/example/leaguedesk/internal/adapters/mq/queue"
	"github.com/example/leaguedesk/internal/adapters/replay"
	"github.com/example/leaguedesk/internal/adapters/repository"
	"github.com/example/leaguedesk/internal/config"
	"github.com/example/leaguedesk/internal/domain/match"
	"github.com/example/leaguedesk/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithConfig applies the loaded runtime configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg == nil {
			return
		}
		s.dsn = cfg.DatabaseURL
		s.dataDir = cfg.DataDir
		s.parserCmd = cfg.ParserCommand
		s.migrate = cfg.Migrate
		if cfg.QueueSize > 0 {
			s.queueSize = cfg.QueueSize
		}
		if cfg.WorkerCount > 0 {
			s.workerCount = cfg.WorkerCount
		}
		if cfg.DedupeSize > 0 {
			s.dedupeSize = cfg.DedupeSize
		}
	}
}

// WithWorkDir overrides the replay archive directory.
func WithWorkDir(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.dataDir = dir
		}
	}
}

// WithStore injects a store, used by tests to supply a fake.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithBlobStore injects a blob store.
func WithBlobStore(blobs blobstore.Store) Option {
	return func(s *Service) {
		s.blobs = blobs
	}
}

// WithExtractor injects a replay metadata extractor.
func WithExtractor(e replay.Extractor) Option {
	return func(s *Service) {
		s.extractor = e
	}
}

// WithQueue injects a job queue.
func WithQueue(q jobqueue.Queue) Option {
	return func(s *Service) {
		s.queue = q
	}
}

// WithResolver swaps the batch resolver.
func WithResolver(r *match.BatchResolver) Option {
	return func(s *Service) {
		if r != nil {
			s.resolver = r
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}
