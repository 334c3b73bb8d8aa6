package service

import "errors"

var (
	// ErrNotStarted is returned when a ticket is submitted before Start.
	ErrNotStarted = errors.New("service not started")
	// ErrNoPublisher is returned by Start when no storage client was configured.
	ErrNoPublisher = errors.New("storage publisher is required")
	// ErrBackpressure is returned when the mint queue is full or closed.
	ErrBackpressure = errors.New("mint queue rejected the job")
)
