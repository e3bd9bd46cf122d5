package nvx

import "errors"

// Domain errors for the NVX bridge package.
var (
	// ErrNotConnected is returned when a command needs the broker and the
	// client is offline.
	ErrNotConnected = errors.New("nvx: mqtt not connected")

	// ErrUnknownModel is returned for a model missing from the catalog.
	ErrUnknownModel = errors.New("nvx: unknown model")

	// ErrModelMismatch is returned when the configured kind contradicts
	// the catalog entry for the model.
	ErrModelMismatch = errors.New("nvx: model does not match kind")

	// ErrInvalidEvent is returned for an event payload that cannot be used.
	ErrInvalidEvent = errors.New("nvx: invalid event")
)
