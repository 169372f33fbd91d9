// Package mcp exposes read-only game inspection over the Model Context
// Protocol.
//
// The package implements:
//   - MCP server with tool definitions for session inspection
//   - Text rendering of boards, clocks, and move history
//   - Stdio and HTTP transport modes
//
// MCP Tools:
//   - list_sessions: List sessions, optionally filtered by state
//   - game_state: Board, clocks, and turn for one session
//   - move_history: Ordered move audit trail for one session
//
// The tools are strictly read-only. Agents that want to play connect to
// the WebSocket endpoint like any other client; MCP is for observing
// and debugging sessions.
//
// Usage:
//
//	// HTTP mode: mount at /mcp
//	inspector := mcp.NewInspector(gameService)
//	router.Handle("/mcp", inspector)
//
//	// Stdio mode
//	server.ServeStdio(inspector.Server())
package mcp
