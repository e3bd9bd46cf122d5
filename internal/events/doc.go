// Package events turns endpoint driver callbacks into a uniform stream of
// Records.
//
// The Dispatcher subscribes once to every endpoint in the fleet: base,
// name change, IP information change and online status change events, plus
// per-input stream changes for endpoints with HDMI inputs. Each driver event
// becomes one Record, delivered synchronously to every observer in
// subscription order on the driver's goroutine. Observers must not block;
// see the sinks package for queued observers.
//
// When an endpoint comes online the Dispatcher asks its Reaffirmer to write
// the endpoint's configuration back before the Record is fanned out.
package events
