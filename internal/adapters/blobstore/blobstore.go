// Package blobstore archives replay files on disk, addressed by the SHA-1 of
// their contents. Writes are if-absent only: two uploads of the same bytes
// land on the same path and the second is a no-op, which makes concurrent
// duplicate uploads harmless.
package blobstore

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/example/leaguedesk/internal/domain/dedupe"
	"github.com/example/leaguedesk/pkg/logger"
	"github.com/example/leaguedesk/pkg/metrics"
)

const fileSuffix = ".SC2Replay"

var digestPattern = regexp.MustCompile(`^[0-9a-f]{40}$`)

// Store archives and retrieves content-addressed replay blobs.
type Store interface {
	// Put archives raw bytes and returns their digest. Repeat uploads of
	// identical content succeed without a second write.
	Put(ctx context.Context, raw []byte) (string, error)

	// Get returns the blob for a digest, ErrNotFound if absent.
	Get(ctx context.Context, digest string) ([]byte, error)
}

// FSStore is the filesystem Store. A digest cache in front of it short-cuts
// the disk stat for recently seen uploads.
type FSStore struct {
	dir   string
	cache dedupe.Cache
	log   logger.Logger
}

// New creates the storage directory if needed.
func New(dir string, opts ...Option) (*FSStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: empty directory", ErrBadDir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadDir, err)
	}

	s := &FSStore{
		dir:   dir,
		cache: dedupe.NewDigestCache(),
		log:   logger.Named("blobstore"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Digest returns the hex SHA-1 of raw.
func Digest(raw []byte) string {
	sum := sha1.Sum(raw)
	return hex.EncodeToString(sum[:])
}

func (s *FSStore) path(digest string) string {
	return filepath.Join(s.dir, digest+fileSuffix)
}

func (s *FSStore) Put(ctx context.Context, raw []byte) (string, error) {
	digest := Digest(raw)

	if s.cache.SeenAndRecord(ctx, digest) {
		metrics.RecordBlobDuplicate()
		return digest, nil
	}

	path := s.path(digest)
	if _, err := os.Stat(path); err == nil {
		metrics.RecordBlobDuplicate()
		return digest, nil
	}

	// Write to a temp file first so a crashed upload never leaves a
	// partial blob at the addressed path.
	tmp, err := os.CreateTemp(s.dir, "upload-*")
	if err != nil {
		s.cache.Unrecord(ctx, digest)
		return "", fmt.Errorf("%w: %w", ErrWrite, err)
	}
	tmpName := tmp.Name()
	if _, err = tmp.Write(raw); err == nil {
		err = tmp.Close()
	} else {
		_ = tmp.Close()
	}
	if err == nil {
		err = os.Rename(tmpName, path)
	}
	if err != nil {
		_ = os.Remove(tmpName)
		s.cache.Unrecord(ctx, digest)
		return "", fmt.Errorf("%w: %w", ErrWrite, err)
	}

	metrics.RecordBlobWrite()
	s.log.Debug(ctx, "archived replay",
		logger.String("digest", digest),
		logger.Int("bytes", len(raw)))
	return digest, nil
}

func (s *FSStore) Get(_ context.Context, digest string) ([]byte, error) {
	if !digestPattern.MatchString(digest) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDigest, digest)
	}

	raw, err := os.ReadFile(s.path(digest))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, digest)
		}
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	return raw, nil
}
