package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/duelgrid/duelgrid/game/engine"
	"github.com/duelgrid/duelgrid/game/service"
)

// handleMessage dispatches one inbound request. Every rejection produces
// an explicit error event to this caller only; nothing is silently
// dropped.
func (c *Client) handleMessage(raw []byte) {
	var msg Inbound
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError("BAD_REQUEST", "malformed message")
		return
	}

	ctx := context.Background()

	switch msg.Type {
	case TypeJoinQueue:
		c.handleJoinQueue(ctx, msg.Data)
	case TypeLeaveQueue:
		c.handleLeaveQueue(ctx, msg.Data)
	case TypeJoinSession:
		c.handleJoinSession(ctx, msg.Data)
	case TypeMakeMove:
		c.handleMakeMove(ctx, msg.Data)
	default:
		c.sendError("BAD_REQUEST", "unknown message type "+msg.Type)
	}
}

func (c *Client) handleJoinQueue(ctx context.Context, data json.RawMessage) {
	var payload joinQueuePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		c.sendError("BAD_REQUEST", "malformed join-queue payload")
		return
	}
	gt, err := engine.ParseGameType(payload.GameType)
	if err != nil {
		c.sendError("BAD_REQUEST", err.Error())
		return
	}

	res, err := c.hub.svc.JoinQueue(ctx, gt, c.userID, c.displayName, c.connID)
	if err != nil {
		c.sendServiceError(err)
		return
	}
	if res == nil {
		c.hub.send(c, Outbound{Type: EventQueued, Data: payload})
		return
	}

	// Pairing notices go to each connection individually; neither player
	// has joined the session's room yet.
	for _, notice := range res.Notices {
		c.hub.SendToConn(notice.ConnID, Outbound{Type: EventMatchFound, Data: notice})
	}
}

func (c *Client) handleLeaveQueue(ctx context.Context, data json.RawMessage) {
	var payload leaveQueuePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		c.sendError("BAD_REQUEST", "malformed leave-queue payload")
		return
	}
	gt, err := engine.ParseGameType(payload.GameType)
	if err != nil {
		c.sendError("BAD_REQUEST", err.Error())
		return
	}
	// No reply owed.
	c.hub.svc.LeaveQueue(ctx, gt, c.userID)
}

func (c *Client) handleJoinSession(ctx context.Context, data json.RawMessage) {
	var payload joinSessionPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		c.sendError("BAD_REQUEST", "malformed join-session payload")
		return
	}

	snap, err := c.hub.svc.JoinSession(ctx, payload.SessionID, c.userID)
	if err != nil {
		c.sendServiceError(err)
		return
	}

	// Reply to the joiner before attaching so a reconnecting player
	// always sees current state exactly once, then let the room converge
	// on the same snapshot.
	c.hub.send(c, Outbound{Type: EventStateUpdate, Data: snap})
	c.hub.Attach(c, payload.SessionID)
	c.hub.BroadcastState(snap)
}

func (c *Client) handleMakeMove(ctx context.Context, data json.RawMessage) {
	var payload makeMovePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		c.sendError("BAD_REQUEST", "malformed make-move payload")
		return
	}

	out, err := c.hub.svc.MakeMove(ctx, payload.SessionID, c.userID, payload.Position)
	if err != nil {
		c.sendServiceError(err)
		return
	}

	if out.Expired != nil {
		c.hub.BroadcastExpiry(out.Expired)
		return
	}
	c.hub.BroadcastState(out.Snapshot)
}

// sendServiceError maps a service error to the caller-scoped error event.
func (c *Client) sendServiceError(err error) {
	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		c.sendError(svcErr.Code, svcErr.Message)
		return
	}
	log.Printf("internal error for user %s: %v", c.userID, err)
	c.sendError("INTERNAL", "internal error")
}

func (c *Client) sendError(code, message string) {
	c.hub.send(c, Outbound{Type: EventError, Data: errorPayload{Code: code, Message: message}})
}
