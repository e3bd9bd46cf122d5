package fleet

import "errors"

// Domain errors for the fleet package.
var (
	// ErrConfiguration is returned when the endpoint list is malformed.
	// It is fatal at startup.
	ErrConfiguration = errors.New("fleet: configuration error")

	// ErrDuplicateID is wrapped by ErrConfiguration when two configs share an id.
	ErrDuplicateID = errors.New("fleet: duplicate endpoint id")

	// ErrRegistrySealed is returned by AddAll after RegisterAll has run.
	ErrRegistrySealed = errors.New("fleet: registry sealed")
)
