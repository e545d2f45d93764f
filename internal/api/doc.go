// Package api implements the local HTTP status API for the deck bridge.
//
// This package provides:
//   - GET /api/v1/health for liveness probes
//   - GET /api/v1/status with relay, profile, and button family state
//   - GET /api/v1/events with paginated journal entries
//   - Middleware stack (request ID, logging, recovery, bearer auth)
//
// # Concurrency
//
// Deck state is owned by the event loop. Handlers never read it directly:
// every read is marshalled onto the loop with Caller.Call, so a slow or
// stalled loop shows up as a request timeout rather than a data race.
//
// The API is read-only and disabled by default. Setting api.jwt_secret
// requires an HS256 bearer token on everything except health; see
// cmd/ulcdeck-token.
package api
