package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"

	"github.com/example/leaguedesk/pkg/metrics"
)

// Pool runs a fixed set of workers over one queue.
type Pool struct {
	workers []*ExtractWorker
	wg      sync.WaitGroup
}

// NewPool builds count workers; count < 1 falls back to 2 per CPU.
func NewPool(q Queue, archiver Archiver, extractor Extractor, count int) *Pool {
	if count < 1 {
		count = runtime.NumCPU() * 2
	}

	p := &Pool{workers: make([]*ExtractWorker, 0, count)}
	for i := 0; i < count; i++ {
		p.workers = append(p.workers, NewExtractWorker(q, archiver, extractor,
			WithName("worker-"+strconv.Itoa(i))))
	}
	return p
}

// Start launches every worker.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		p.wg.Add(1)
		go func(w *ExtractWorker) {
			defer p.wg.Done()
			w.Run(ctx)
		}(w)
	}
	metrics.UpdateWorkerCount(len(p.workers))
}

// Shutdown stops all workers, waiting up to ctx for in-flight jobs.
func (p *Pool) Shutdown(ctx context.Context) error {
	var firstErr error
	for _, w := range p.workers {
		if err := w.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("pool shutdown: %w", err)
		}
	}
	p.wg.Wait()
	metrics.UpdateWorkerCount(0)
	return firstErr
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}
