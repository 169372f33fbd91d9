package websocket

import "encoding/json"

// Inbound message types.
const (
	TypeJoinQueue   = "join-queue"
	TypeLeaveQueue  = "leave-queue"
	TypeJoinSession = "join-session"
	TypeMakeMove    = "make-move"
)

// Outbound event types.
const (
	EventQueued      = "queued"
	EventMatchFound  = "match-found"
	EventStateUpdate = "state-update"
	EventTimeExpired = "time-expired"
	EventError       = "error"
)

// Inbound is the envelope for client requests.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Outbound is the envelope for server events.
type Outbound struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

type joinQueuePayload struct {
	GameType string `json:"game_type"`
}

type leaveQueuePayload struct {
	GameType string `json:"game_type"`
}

type joinSessionPayload struct {
	SessionID string `json:"session_id"`
}

type makeMovePayload struct {
	SessionID string `json:"session_id"`
	Position  int    `json:"position"`
}

// errorPayload is delivered only to the originating connection.
type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
