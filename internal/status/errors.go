package status

import (
	"errors"

	"github.com/nerrad567/nvx-fleet/internal/endpoint"
)

var (
	// ErrEndpointNotFound is returned by ReaffirmConfiguration for unknown ids.
	ErrEndpointNotFound = errors.New("status: endpoint not found")

	// ErrNotRegistered is returned when reaffirming an endpoint that never
	// registered.
	ErrNotRegistered = endpoint.ErrNotRegistered
)
