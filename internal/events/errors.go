package events

import "errors"

var (
	// ErrAlreadyAttached is returned when Attach is called more than once.
	ErrAlreadyAttached = errors.New("events: dispatcher already attached")
)
