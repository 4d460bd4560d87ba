// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults; Load layers file and env.
// - External errors are wrapped via this package's sentinel kinds.
package config

import "runtime"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DatabaseURL is the Postgres DSN the store connects to.
	DatabaseURL string `koanf:"database_url"`

	// DataDir holds content-addressed replay blobs.
	DataDir string `koanf:"data_dir"`

	// ParserCommand is the external replay parser invoked per file.
	// Empty means only JSON-prefixed replays can be extracted.
	ParserCommand string `koanf:"parser_command"`

	// QueueSize bounds the in-memory resolution job queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of resolution workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize bounds the replay digest cache.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxUploadBytes caps a single multipart replay upload.
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`

	// Migrate runs embedded schema migrations on startup when true.
	Migrate bool `koanf:"migrate"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		Addr:           ":9080",
		DatabaseURL:    "postgres://localhost:5432/leaguedesk?sslmode=disable",
		DataDir:        "data",
		ParserCommand:  "",
		QueueSize:      1024,
		WorkerCount:    runtime.NumCPU() * 2,
		DedupeSize:     50_000,
		MaxUploadBytes: 32 << 20,
		Migrate:        true,
	}
}
