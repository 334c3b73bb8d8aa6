// Package inflight serializes pipelines that share the hash-keyed temporary
// file namespace.
//
// Temporary files are named by content digest in one shared work directory,
// so two concurrent requests with identical ticket content would otherwise
// race on the same paths. The registry hands out a per-digest lock; holders
// of distinct digests never contend.
package inflight

import "sync"

type entry struct {
	sem  chan struct{}
	refs int
}

// Registry tracks in-flight digests. Entries are reference-counted and
// removed when the last holder releases, so the map stays bounded by the
// number of concurrently running pipelines.
type Registry struct {
	mu    sync.Mutex
	locks map[uint64]*entry
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{locks: make(map[uint64]*entry)}
}

// Acquire blocks until key is free, claims it, and returns the release
// function. Release is idempotent.
func (r *Registry) Acquire(key uint64) (release func()) {
	r.mu.Lock()
	e, ok := r.locks[key]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		r.locks[key] = e
	}
	e.refs++
	r.mu.Unlock()

	e.sem <- struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.sem
			r.mu.Lock()
			e.refs--
			if e.refs == 0 {
				delete(r.locks, key)
			}
			r.mu.Unlock()
		})
	}
}

// Len returns the number of digests currently tracked.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.locks)
}
