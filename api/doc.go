// Package api provides the HTTP surface of the duelgrid server.
//
// The api package implements:
//   - Read-only REST endpoints over game sessions
//   - WebSocket upgrade handling with identity resolution
//   - An optional /mcp mount for the inspection tools
//
// Endpoints:
//
// Sessions (read-only):
//   - GET /api/sessions - List sessions, optionally filtered by ?state=
//   - GET /api/sessions/{id} - Get one session snapshot
//   - GET /api/sessions/{id}/history - Get a session's move history
//
// Realtime:
//   - GET /ws - WebSocket endpoint for queueing and gameplay
//
// Operational:
//   - GET /healthz - Liveness probe
//   - POST /mcp - MCP inspection endpoint (when mounted)
//
// Gameplay state is mutated only through the WebSocket protocol; the
// REST endpoints exist for dashboards, debugging, and spectating.
package api
