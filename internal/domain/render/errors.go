package render

import "errors"

// Sentinel kinds for composition errors.
var (
	ErrDecode = errors.New("logo decode failed")
	ErrRender = errors.New("render failed")
)
