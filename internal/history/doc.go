// Package history persists endpoint event records to SQLite.
//
// Records are append-only rows in endpoint_events, keyed by the record's
// uuid so a replayed record is stored once. Queries return newest first
// and are capped at 200 rows. Prune removes rows past the retention window.
package history
