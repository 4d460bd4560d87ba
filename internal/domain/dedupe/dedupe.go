// Package dedupe tracks recently seen replay digests so repeat uploads skip
// the blob store entirely. The blob store itself is content-addressed and
// write-if-absent, so the cache is an optimization, never a correctness
// requirement: evicted digests just fall through to a stat on disk.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/example/leaguedesk/pkg/metrics"
)

// Cache records seen content digests.
type Cache interface {
	// SeenAndRecord atomically checks whether digest was seen and records
	// it if not. Returns true when the digest was already present.
	SeenAndRecord(ctx context.Context, digest string) bool

	// Unrecord removes a digest, used when a recorded digest failed to
	// reach durable storage and must be retried.
	Unrecord(ctx context.Context, digest string)

	Size() int64
}

// digestCache is a bounded in-memory Cache with FIFO eviction. A maxSize of
// zero or less means unbounded.
type digestCache struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	order   []string
	maxSize int
	size    atomic.Int64
}

// NewDigestCache builds a Cache. Default bound is 50000 digests.
func NewDigestCache(opts ...Option) Cache {
	c := &digestCache{maxSize: 50_000}
	for _, opt := range opts {
		opt(c)
	}
	c.seen = make(map[string]struct{})
	if c.maxSize > 0 {
		c.order = make([]string, 0, c.maxSize)
	}
	return c
}

func (c *digestCache) SeenAndRecord(_ context.Context, digest string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.seen[digest]; ok {
		return true
	}

	if c.maxSize > 0 && len(c.seen) >= c.maxSize {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.seen, oldest)
		c.size.Add(-1)
	}

	c.seen[digest] = struct{}{}
	if c.maxSize > 0 {
		c.order = append(c.order, digest)
	}
	c.size.Add(1)
	metrics.UpdateDedupeSize(c.size.Load())
	return false
}

func (c *digestCache) Unrecord(_ context.Context, digest string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.seen[digest]; !ok {
		return
	}
	delete(c.seen, digest)
	for i, d := range c.order {
		if d == digest {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	c.size.Add(-1)
	metrics.UpdateDedupeSize(c.size.Load())
}

func (c *digestCache) Size() int64 {
	return c.size.Load()
}
