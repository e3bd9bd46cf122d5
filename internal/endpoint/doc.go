// Package endpoint models a single DM-NVX class AV-over-IP device.
//
// An Endpoint is a capability-typed handle over a device driver. Every
// endpoint has identity (name, multicast address) and connectivity (online,
// IP address); encoders, and any device whose driver exposes physical
// inputs, additionally carry the HDMI input capability.
//
// The driver owns all cached hardware state. The Endpoint only reads it,
// with two exceptions: Register, which binds the driver to the physical
// device exactly once, and Reaffirm, which writes feedback values back into
// the control properties after a reconnect.
//
// Registration lifecycle:
//
//	unregistered --bind--> registered
//	unregistered --fail--> failed
//
// The transition happens once. Later Register calls return the recorded
// Result without contacting the driver.
package endpoint
