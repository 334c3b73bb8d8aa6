package model

import "errors"

// Sentinel kinds for ticket parsing and formatting errors.
var (
	ErrInvalidStatus    = errors.New("invalid ticket status")
	ErrInvalidTimestamp = errors.New("invalid timestamp")
)
