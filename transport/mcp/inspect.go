package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/duelgrid/duelgrid/game/service"
)

// Inspector exposes read-only game inspection tools over MCP. It calls
// the game service directly; agents observe sessions but play through
// the same WebSocket protocol as everyone else.
type Inspector struct {
	svc       service.GameService
	mcpServer *server.MCPServer
}

// NewInspector creates the MCP server and registers all tools.
func NewInspector(svc service.GameService) *Inspector {
	i := &Inspector{svc: svc}
	i.initMCPServer()
	return i
}

func (i *Inspector) initMCPServer() {
	i.mcpServer = server.NewMCPServer(
		"duelgrid",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`duelgrid - MCP Inspection Interface

Two-player turn-based board games (tictactoe, connect4) with per-player
chess clocks. These tools are read-only: moves are made over the
WebSocket protocol, not through MCP.

AVAILABLE TOOLS:
- list_sessions: List sessions, optionally filtered by state
- game_state: Get one session's board, clocks, and turn
- move_history: Get a session's move audit trail

BOARD LEGEND:
- . empty cell
- X player 1
- O player 2`),
	)

	i.registerTools()
}

func (i *Inspector) registerTools() {
	i.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List game sessions with their state and players",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"state": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"WAITING", "ACTIVE", "PLAYER1_WIN", "PLAYER2_WIN", "DRAW"},
					"description": "Only return sessions in this state (optional)",
				},
			},
		},
	}, i.handleListSessions)

	i.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current state of a session: board, clocks, and whose turn it is",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, i.handleGameState)

	i.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "Get the ordered move history of a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, i.handleMoveHistory)
}

// Server returns the underlying MCP server for stdio serving.
func (i *Inspector) Server() *server.MCPServer {
	return i.mcpServer
}

// ServeHTTP handles a JSON-RPC message POSTed to /mcp.
func (i *Inspector) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	response := i.mcpServer.HandleMessage(r.Context(), body)

	w.Header().Set("Content-Type", "application/json")
	responseData, err := json.Marshal(response)
	if err != nil {
		http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
		return
	}
	w.Write(responseData)
}

// Tool handlers

func (i *Inspector) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	stateFilter, _ := args["state"].(string)

	snapshots := i.svc.ListSnapshots(ctx, stateFilter)

	var b strings.Builder
	fmt.Fprintf(&b, "Sessions (%d):\n\n", len(snapshots))
	for _, snap := range snapshots {
		fmt.Fprintf(&b, "- %s [%s] %s: %s vs %s\n",
			snap.SessionID, snap.GameType, snap.State, snap.Player1Name, snap.Player2Name)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (i *Inspector) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	snap, err := i.svc.GetSnapshot(ctx, sessionID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSnapshot(snap)), nil
}

func (i *Inspector) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	history, err := i.svc.MoveHistory(ctx, sessionID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Move History (%d moves):\n\n", len(history))
	for n, entry := range history {
		fmt.Fprintf(&b, "%3d. player %d -> position %d (%s)\n",
			n+1, entry.PlayerNumber, entry.Position, entry.PlayedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

// Formatting helpers

var cellGlyphs = [...]string{".", "X", "O"}

func formatSnapshot(snap *service.Snapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Session: %s\n", snap.SessionID)
	fmt.Fprintf(&b, "Game: %s\n", snap.GameType)
	fmt.Fprintf(&b, "State: %s\n", snap.State)
	fmt.Fprintf(&b, "Players: %s (X) vs %s (O)\n", snap.Player1Name, snap.Player2Name)
	fmt.Fprintf(&b, "Clocks: %.1fs / %.1fs\n", snap.Player1TimeRemaining, snap.Player2TimeRemaining)

	if snap.Winner != nil {
		fmt.Fprintf(&b, "Winner: %s\n", *snap.Winner)
	} else if snap.NextPlayer != 0 {
		fmt.Fprintf(&b, "Next: player %d\n", snap.NextPlayer)
	}

	b.WriteString("\nBoard:\n")
	for _, row := range snap.Board {
		for c, cell := range row {
			if c > 0 {
				b.WriteString(" ")
			}
			if cell >= 0 && cell < len(cellGlyphs) {
				b.WriteString(cellGlyphs[cell])
			} else {
				b.WriteString("?")
			}
		}
		b.WriteString("\n")
	}

	return b.String()
}
