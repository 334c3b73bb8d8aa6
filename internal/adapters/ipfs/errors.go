package ipfs

import "errors"

// Sentinel kinds for storage errors.
var (
	ErrPublish = errors.New("publish failed")
)
