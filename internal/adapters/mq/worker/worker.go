// Package worker runs the extraction workers: each job's replay bytes are
// archived and parsed, and the outcome is delivered on the job's reply
// channel. Parallelism lives here so uploads of dozens of replays do not
// serialize on the external parser.
package worker

import (
	"context"
	"fmt"

	"github.com/example/leaguedesk/internal/adapters/mq/queue"
	"github.com/example/leaguedesk/internal/domain/match"
	"github.com/example/leaguedesk/internal/domain/model"
	"github.com/example/leaguedesk/pkg/logger"
	"github.com/example/leaguedesk/pkg/metrics"
)

// Archiver stores replay bytes and returns their content digest.
type Archiver interface {
	Put(ctx context.Context, raw []byte) (string, error)
}

// Extractor parses replay bytes into metadata.
type Extractor interface {
	Extract(ctx context.Context, raw []byte) (model.ReplayMetadata, error)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Worker processes jobs until stopped.
type Worker interface {
	Run(ctx context.Context)
	Shutdown(ctx context.Context) error
}

// ExtractWorker implements Worker.
type ExtractWorker struct {
	queue     Queue
	archiver  Archiver
	extractor Extractor
	name      string

	shutdown chan struct{}
	done     chan struct{}

	log logger.Logger
}

// NewExtractWorker builds a worker reading from q.
func NewExtractWorker(q Queue, archiver Archiver, extractor Extractor, opts ...Option) *ExtractWorker {
	w := &ExtractWorker{
		queue:     q,
		archiver:  archiver,
		extractor: extractor,
		name:      "worker",
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.log == nil {
		w.log = logger.Named(w.name)
	}
	return w
}

// Run processes jobs until the context is canceled, Shutdown is called, or
// the queue closes.
func (w *ExtractWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			metrics.RecordQueueDequeue()
			w.process(ctx, job)
		}
	}
}

// Shutdown stops the worker, waiting for the in-flight job.
func (w *ExtractWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.log.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("worker shutdown: %w", ctx.Err())
	}
}

// process archives and extracts one job, then replies. The reply channel is
// buffered by the enqueuer, so the send cannot block.
func (w *ExtractWorker) process(ctx context.Context, job queue.Job) {
	item := match.Item{Name: job.Name}

	digest, err := w.archiver.Put(ctx, job.Raw)
	if err != nil {
		metrics.RecordWorkerError()
		w.log.Error(ctx, "archive failed",
			logger.String("replay", job.Name),
			logger.Error(err))
		item.Err = err
	} else {
		item.Digest = digest
		metrics.RecordReplayIngested()
	}

	if item.Err == nil {
		md, exErr := w.extractor.Extract(ctx, job.Raw)
		if exErr != nil {
			item.Err = exErr
		} else {
			item.Metadata = md
		}
	}

	if job.Reply != nil {
		job.Reply <- item
	}
}
