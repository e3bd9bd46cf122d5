package endpoint

import "errors"

// Domain errors for the endpoint package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, endpoint.ErrNoSuchInput) {
//	    // input index out of range
//	}
var (
	// ErrNoSuchInput is returned when an HDMI input index is out of range or
	// the endpoint has no HDMI capability.
	ErrNoSuchInput = errors.New("endpoint: no such input")

	// ErrRegistrationFailed wraps the driver's reason for a failed registration.
	ErrRegistrationFailed = errors.New("endpoint: registration failed")

	// ErrNotRegistered is returned when reaffirming an endpoint that is not
	// Registered.
	ErrNotRegistered = errors.New("endpoint: not registered")

	// ErrReaffirmHeld is returned by ReaffirmRegistered when the request
	// waits for an in-flight Register.
	ErrReaffirmHeld = errors.New("endpoint: reaffirm held until registration completes")

	// ErrInvalidConfig is returned when an endpoint configuration is malformed.
	ErrInvalidConfig = errors.New("endpoint: invalid config")

	// ErrInvalidID is returned when an identifier cannot be parsed.
	ErrInvalidID = errors.New("endpoint: invalid id")
)
