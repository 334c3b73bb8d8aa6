package fetch

import "errors"

// Sentinel kinds for asset download errors.
var (
	ErrFetch = errors.New("asset fetch failed")
	ErrWrite = errors.New("asset write failed")
)
