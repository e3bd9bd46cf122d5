// Package audit records operator actions taken against the fleet, such as
// a configuration reaffirm requested through the status API.
//
// Entries live in the audit_logs table and are never updated. List returns
// newest first with a total count for paging.
package audit
