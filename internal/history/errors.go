package history

import "errors"

var (
	// ErrInvalidEntry is returned when an entry is missing required fields.
	ErrInvalidEntry = errors.New("history: invalid entry")

	// ErrInvalidRetention is returned by Prune for a non-positive window.
	ErrInvalidRetention = errors.New("history: retention must be positive")
)
