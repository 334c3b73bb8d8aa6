package service

import (
	"context"
	"os"
	"sync"

	"github.com/matchmint/matchmint/pkg/logger"
	"github.com/matchmint/matchmint/pkg/metrics"
)

// tempSet tracks the temporary files one pipeline run creates so nothing
// outlives the run. Happy-path removal happens as soon as a stage no longer
// needs a file; sweep catches whatever an early failure left behind.
type tempSet struct {
	mu     sync.Mutex
	paths  map[string]struct{}
	logger logger.Logger
}

func newTempSet(l logger.Logger) *tempSet {
	return &tempSet{
		paths:  make(map[string]struct{}, 4),
		logger: l,
	}
}

// add registers a file for cleanup. Empty paths are ignored so callers can
// pass through the result of a failed stage unconditionally.
func (ts *tempSet) add(path string) {
	if path == "" {
		return
	}
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if _, ok := ts.paths[path]; ok {
		return
	}
	ts.paths[path] = struct{}{}
	metrics.AddTempFiles(1)
}

// remove deletes a tracked file from disk. A removal failure is logged and
// counted but never fails the pipeline.
func (ts *tempSet) remove(ctx context.Context, path string) {
	if path == "" {
		return
	}
	ts.mu.Lock()
	_, tracked := ts.paths[path]
	delete(ts.paths, path)
	ts.mu.Unlock()
	if !tracked {
		return
	}

	metrics.AddTempFiles(-1)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		metrics.RecordCleanupFailure()
		ts.logger.Warn(ctx, "failed to remove temporary file",
			logger.String("path", path),
			logger.Error(err),
		)
	}
}

// sweep removes everything still tracked. Run deferred so files never
// survive an early pipeline exit.
func (ts *tempSet) sweep(ctx context.Context) {
	ts.mu.Lock()
	leftovers := make([]string, 0, len(ts.paths))
	for p := range ts.paths {
		leftovers = append(leftovers, p)
	}
	ts.mu.Unlock()

	for _, p := range leftovers {
		ts.remove(ctx, p)
	}
}
