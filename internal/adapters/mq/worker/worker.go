// Package worker defines the pool that drains the mint queue and runs
// render-and-publish pipelines.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/matchmint/matchmint/internal/adapters/mq/queue"
	"github.com/matchmint/matchmint/internal/domain/model"
	"github.com/matchmint/matchmint/pkg/logger"
	"github.com/matchmint/matchmint/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	workerShutdownTimeout   = 5 * time.Second
	poolShutdownTimeout     = 30 * time.Second
)

// Minter runs one full render-and-publish pipeline for a ticket and returns
// the token's gateway URL.
type Minter interface {
	Mint(ctx context.Context, t *model.Ticket) (string, error)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Worker processes mint jobs until stopped.
type Worker struct {
	queue  Queue
	minter Minter
	name   string

	// active tracks busy workers pool-wide; nil when the worker runs alone.
	active *atomic.Int64

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewWorker creates a worker with configuration options.
func NewWorker(q Queue, m Minter, opts ...Option) *Worker {
	w := &Worker{
		queue:    q,
		minter:   m,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop until ctx is canceled or Shutdown is called.
func (w *Worker) Run(ctx context.Context) {
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
			w.process(ctx, job)
		}
	}
}

// Shutdown stops the worker and waits for the in-flight job to finish.
func (w *Worker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// process runs one job and delivers the outcome to the waiting request.
func (w *Worker) process(ctx context.Context, job queue.Job) {
	if w.active != nil {
		metrics.UpdateWorkerActiveCount(int(w.active.Add(1)))
		defer func() {
			metrics.UpdateWorkerActiveCount(int(w.active.Add(-1)))
		}()
	}

	uri, err := w.minter.Mint(ctx, &job.Ticket)
	if err != nil {
		w.logger.Error(ctx, "mint failed",
			logger.String("jobID", job.ID),
			logger.String("ticketID", job.Ticket.ID),
			logger.Error(err),
		)
	}

	// Reply is buffered; an abandoned request must not wedge the worker.
	select {
	case job.Reply <- queue.Result{TokenURI: uri, Err: err}:
	default:
		w.logger.Warn(ctx, "dropping result for abandoned job",
			logger.String("jobID", job.ID),
		)
	}
}

// Pool manages a fixed set of workers draining one queue.
type Pool struct {
	workers []*Worker
	queue   Queue
	minter  Minter
	active  atomic.Int64

	logger logger.Logger
}

// NewPool creates a pool of workerCount workers. A non-positive count falls
// back to a CPU-derived default.
func NewPool(workerCount int, q Queue, m Minter) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	p := &Pool{
		workers: make([]*Worker, workerCount),
		queue:   q,
		minter:  m,
		logger:  logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		p.workers[i] = NewWorker(q, m,
			WithName("worker-"+strconv.Itoa(i)),
			withActiveCounter(&p.active),
		)
	}

	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerActiveCount(0)

	return p
}

// Start launches all workers.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Size returns the number of workers in the pool.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Shutdown stops all workers, waiting up to the pool shutdown timeout. The
// queue should be closed first so no new jobs arrive.
func (p *Pool) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		if err := w.Shutdown(shutdownCtx); err != nil {
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	return nil
}

// Stop stops all workers with a per-worker timeout, without a caller context.
func (p *Pool) Stop() {
	for _, w := range p.workers {
		ctx, cancel := context.WithTimeout(context.Background(), workerShutdownTimeout)
		_ = w.Shutdown(ctx)
		cancel()
	}
}
