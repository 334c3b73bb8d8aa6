// Package worker defines the pool that drains the mint queue.
package worker

import (
	"sync/atomic"

	"github.com/matchmint/matchmint/pkg/logger"
)

// Option applies a configuration option to the Worker.
type Option func(*Worker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *Worker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *Worker) {
		if l != nil {
			w.logger = l
		}
	}
}

// withActiveCounter shares the pool-wide busy counter with a worker.
func withActiveCounter(c *atomic.Int64) Option {
	return func(w *Worker) {
		w.active = c
	}
}
