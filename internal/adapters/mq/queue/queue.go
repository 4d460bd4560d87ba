// Package queue holds the bounded job queue feeding the extraction workers.
// Uploads are fanned out through it so a large batch cannot hold more than
// worker-count parsers open at once; a full queue is backpressure surfaced to
// the uploader.
package queue

import (
	"context"
	"sync"

	"github.com/example/leaguedesk/internal/domain/match"
	"github.com/example/leaguedesk/pkg/metrics"
)

const defaultCapacity = 1024

// Job is one uploaded replay awaiting archival and extraction. Reply
// receives exactly one item; it is buffered by the enqueuer so workers never
// block on delivery.
type Job struct {
	Name  string
	Raw   []byte
	Reply chan<- match.Item
}

// Queue provides non-blocking enqueue and channel-based dequeue.
type Queue interface {
	// Enqueue adds a job. Returns false when the queue is full or closed.
	Enqueue(ctx context.Context, j Job) bool

	// Dequeue returns the channel workers read from. Closed when the
	// queue closes.
	Dequeue(ctx context.Context) <-chan Job

	Len(ctx context.Context) int

	// Close stops intake and closes the dequeue channel once drained.
	Close() error

	IsClosed() bool
}

// InMemoryQueue implements Queue on a buffered channel.
type InMemoryQueue struct {
	jobs     chan Job
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue builds a queue with the configured capacity.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.jobs = make(chan Job, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	return q
}

func (q *InMemoryQueue) Enqueue(ctx context.Context, j Job) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		return false
	}

	select {
	case q.jobs <- j:
		metrics.RecordQueueEnqueue()
		metrics.UpdateQueueSize(len(q.jobs))
		return true
	case <-ctx.Done():
		metrics.RecordQueueEnqueueError()
		return false
	default:
		metrics.RecordQueueEnqueueError()
		return false
	}
}

func (q *InMemoryQueue) Dequeue(_ context.Context) <-chan Job {
	return q.jobs
}

func (q *InMemoryQueue) Len(_ context.Context) int {
	return len(q.jobs)
}

func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	q.closed = true
	close(q.jobs)
	return nil
}

func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
