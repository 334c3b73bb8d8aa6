package token

import "errors"

// Sentinel kinds for token document errors.
var (
	ErrSerialize = errors.New("token serialization failed")
	ErrWrite     = errors.New("token write failed")
)
