// Package status answers sync-status and identity queries against the fleet.
//
// All queries are read-only. The single write operation,
// ReaffirmConfiguration, is explicit and named so read paths never mutate
// device state.
//
// A lookup miss is not an error: SyncStatus reports SyncNotFound and the
// other queries return false. NotFound is kept distinct from an endpoint
// that exists but has no HDMI inputs, which yields an empty SyncSingle.
package status
