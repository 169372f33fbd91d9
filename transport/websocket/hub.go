package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/duelgrid/duelgrid/auth"
	"github.com/duelgrid/duelgrid/game/service"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins in development
		// TODO: Configure this for production
		return true
	},
}

// Hub maintains the set of connected clients and the per-session rooms,
// and fans out events. Delivery is fire-and-forget: a client whose send
// buffer is full is dropped, and any missed broadcast is superseded by
// the next full-state snapshot.
type Hub struct {
	svc service.GameService

	mu      sync.RWMutex
	clients map[string]*Client          // by connection id
	rooms   map[string]map[*Client]bool // session id -> members
}

// NewHub creates a hub bound to the game service.
func NewHub(svc service.GameService) *Hub {
	return &Hub{
		svc:     svc,
		clients: make(map[string]*Client),
		rooms:   make(map[string]map[*Client]bool),
	}
}

// ServeWS upgrades an identity-resolved request into a gameplay
// connection and starts its pumps.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, identity auth.Identity) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		hub:         h,
		conn:        conn,
		send:        make(chan []byte, 256),
		connID:      uuid.NewString(),
		userID:      identity.UserID,
		displayName: identity.DisplayName,
		rooms:       make(map[string]bool),
	}

	h.register(client)
	log.Printf("user %s connected (conn %s)", client.userID, client.connID)

	go client.writePump()
	go client.readPump()
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c.connID] = c
	h.mu.Unlock()
}

// unregister detaches the client from every room and tells the game
// service to drop its queue entries. It never ends an active session.
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c.connID]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c.connID)
	for sessionID := range c.rooms {
		if members, ok := h.rooms[sessionID]; ok {
			delete(members, c)
			if len(members) == 0 {
				delete(h.rooms, sessionID)
			}
		}
	}
	close(c.send)
	h.mu.Unlock()

	h.svc.DropConnection(context.Background(), c.connID)
	log.Printf("user %s disconnected (conn %s)", c.userID, c.connID)
}

// Attach adds the client to a session's room. Rooms are sets, so
// re-attachment is a no-op and broadcasts are never duplicated.
func (h *Hub) Attach(c *Client, sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c.rooms[sessionID] {
		return
	}
	c.rooms[sessionID] = true
	if h.rooms[sessionID] == nil {
		h.rooms[sessionID] = make(map[*Client]bool)
	}
	h.rooms[sessionID][c] = true
}

// RoomSize reports the current membership of a session's room.
func (h *Hub) RoomSize(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[sessionID])
}

// BroadcastState sends the full snapshot to every member of the
// session's room.
func (h *Hub) BroadcastState(snap *service.Snapshot) {
	h.broadcast(snap.SessionID, Outbound{Type: EventStateUpdate, Data: snap})
}

// BroadcastExpiry announces a time loss: the distinct time-expired event
// first, then the accompanying state update.
func (h *Hub) BroadcastExpiry(exp *service.Expiry) {
	h.broadcast(exp.SessionID, Outbound{Type: EventTimeExpired, Data: exp})
	h.broadcast(exp.SessionID, Outbound{Type: EventStateUpdate, Data: exp.Snapshot})
}

// SendToConn delivers an event to a single connection, if it is still
// around. Used for pairing notices before room membership exists.
func (h *Hub) SendToConn(connID string, event Outbound) {
	h.mu.RLock()
	c, ok := h.clients[connID]
	h.mu.RUnlock()
	if ok {
		h.send(c, event)
	}
}

// broadcast fans out under the read lock. The send channel is closed
// only under the write lock, so an enqueue can never hit a closed
// channel; clients that cannot keep up are cut loose afterwards.
func (h *Hub) broadcast(sessionID string, event Outbound) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("failed to marshal %s event: %v", event.Type, err)
		return
	}

	var stalled []*Client
	h.mu.RLock()
	for c := range h.rooms[sessionID] {
		if !h.enqueueLocked(c, data) {
			stalled = append(stalled, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range stalled {
		h.unregister(c)
	}
}

func (h *Hub) send(c *Client, event Outbound) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("failed to marshal %s event: %v", event.Type, err)
		return
	}

	h.mu.RLock()
	delivered := h.enqueueLocked(c, data)
	h.mu.RUnlock()

	if !delivered {
		h.unregister(c)
	}
}

// enqueueLocked enqueues without blocking; a full buffer reports false so
// the caller can drop the client rather than backpressure game logic.
// Caller holds the hub lock; unregistered clients count as delivered.
func (h *Hub) enqueueLocked(c *Client, data []byte) bool {
	if _, ok := h.clients[c.connID]; !ok {
		return true
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}
