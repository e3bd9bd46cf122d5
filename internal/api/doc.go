// Package api provides the HTTP status API and WebSocket event stream for
// the NVX fleet supervisor.
//
// The server follows the same lifecycle pattern as other infrastructure
// components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Routes live under /api/v1. When a JWT secret is configured every route
// except /health requires a bearer token whose role meets the route's
// access level; reaffirming configuration needs administrator.
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api
