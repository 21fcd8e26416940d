package ws

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Presence messages sent to the admin of a session. Session lifecycle
// messages carry the session event type as their MessageType.
const (
	MsgPlayerConnected    MessageType = "player_connected"
	MsgPlayerDisconnected MessageType = "player_disconnected"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub manages WebSocket connections per session
type Hub struct {
	adminConns  map[string]*Connection
	playerConns map[string]map[string]*Connection // sessionID -> playerID -> conn

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
	done       chan struct{}
	closeOnce  sync.Once

	log zerolog.Logger
}

// Connection represents a WebSocket connection
type Connection struct {
	ID        string
	SessionID string
	PlayerID  string // Empty for admin connections
	IsAdmin   bool
	Send      chan []byte
}

// BroadcastMessage is a message to broadcast. Disconnect closes every
// connection of the session after earlier messages were queued.
type BroadcastMessage struct {
	SessionID  string
	ToAdmin    bool
	ToPlayer   string // Empty means all players, specific ID means one player
	Disconnect bool
	Message    *Message
}

// NewHub creates a new WebSocket hub
func NewHub(log zerolog.Logger) *Hub {
	h := &Hub{
		adminConns:  make(map[string]*Connection),
		playerConns: make(map[string]map[string]*Connection),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		broadcast:   make(chan *BroadcastMessage, 256),
		done:        make(chan struct{}),
		log:         log.With().Str("component", "ws").Logger(),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for id := range h.adminConns {
				h.dropSession(id)
			}
			for id := range h.playerConns {
				h.dropSession(id)
			}
			h.mu.Unlock()
			return

		case conn := <-h.register:
			h.mu.Lock()
			if conn.IsAdmin {
				if old, ok := h.adminConns[conn.SessionID]; ok {
					close(old.Send)
				}
				h.adminConns[conn.SessionID] = conn
				h.log.Debug().Str("session", conn.SessionID).Msg("admin connected")
			} else {
				if h.playerConns[conn.SessionID] == nil {
					h.playerConns[conn.SessionID] = make(map[string]*Connection)
				}
				if old, ok := h.playerConns[conn.SessionID][conn.PlayerID]; ok {
					close(old.Send)
				}
				h.playerConns[conn.SessionID][conn.PlayerID] = conn
				h.log.Debug().Str("session", conn.SessionID).Str("player", conn.PlayerID).Msg("player connected")
				h.notifyAdmin(conn.SessionID, MsgPlayerConnected, conn.PlayerID)
			}
			h.mu.Unlock()

		case conn := <-h.unregister:
			h.mu.Lock()
			if conn.IsAdmin {
				if existing, ok := h.adminConns[conn.SessionID]; ok && existing == conn {
					delete(h.adminConns, conn.SessionID)
					close(conn.Send)
					h.log.Debug().Str("session", conn.SessionID).Msg("admin disconnected")
				}
			} else if players, ok := h.playerConns[conn.SessionID]; ok {
				if existing, ok := players[conn.PlayerID]; ok && existing == conn {
					delete(players, conn.PlayerID)
					if len(players) == 0 {
						delete(h.playerConns, conn.SessionID)
					}
					close(conn.Send)
					h.log.Debug().Str("session", conn.SessionID).Str("player", conn.PlayerID).Msg("player disconnected")
					h.notifyAdmin(conn.SessionID, MsgPlayerDisconnected, conn.PlayerID)
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			if msg.Disconnect {
				h.mu.Lock()
				h.dropSession(msg.SessionID)
				h.mu.Unlock()
				continue
			}

			h.mu.RLock()
			data, err := json.Marshal(msg.Message)
			if err != nil {
				h.mu.RUnlock()
				h.log.Error().Err(err).Str("session", msg.SessionID).Msg("failed to encode message")
				continue
			}

			if msg.ToAdmin {
				if conn, ok := h.adminConns[msg.SessionID]; ok {
					h.send(conn, data)
				}
			} else if msg.ToPlayer != "" {
				if conn, ok := h.playerConns[msg.SessionID][msg.ToPlayer]; ok {
					h.send(conn, data)
				}
			} else {
				for _, conn := range h.playerConns[msg.SessionID] {
					h.send(conn, data)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// send drops the message if the connection's buffer is full
func (h *Hub) send(conn *Connection, data []byte) {
	select {
	case conn.Send <- data:
	default:
		h.log.Warn().Str("session", conn.SessionID).Str("conn", conn.ID).Msg("send buffer full, dropping message")
	}
}

// dropSession closes every connection of a session; callers hold mu
func (h *Hub) dropSession(sessionID string) {
	if conn, ok := h.adminConns[sessionID]; ok {
		close(conn.Send)
		delete(h.adminConns, sessionID)
	}
	for _, conn := range h.playerConns[sessionID] {
		close(conn.Send)
	}
	delete(h.playerConns, sessionID)
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	select {
	case h.register <- conn:
	case <-h.done:
		close(conn.Send)
	}
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// Close disconnects everyone and stops the hub
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// Connections returns the number of admin and player connections of a session
func (h *Hub) Connections(sessionID string) (admins, players int) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.adminConns[sessionID]; ok {
		admins = 1
	}
	return admins, len(h.playerConns[sessionID])
}

func (h *Hub) enqueue(msg *BroadcastMessage) {
	select {
	case h.broadcast <- msg:
	case <-h.done:
	}
}

func (h *Hub) message(msgType string, payload interface{}) *Message {
	data, err := json.Marshal(payload)
	if err != nil {
		h.log.Error().Err(err).Str("type", msgType).Msg("failed to encode payload")
		data = json.RawMessage("null")
	}
	return &Message{Type: MessageType(msgType), Payload: data}
}

// BroadcastToAdmin sends a message to the session admin (implements service.Broadcaster)
func (h *Hub) BroadcastToAdmin(sessionID string, msgType string, payload interface{}) {
	h.enqueue(&BroadcastMessage{SessionID: sessionID, ToAdmin: true, Message: h.message(msgType, payload)})
}

// BroadcastToPlayer sends a message to a specific player (implements service.Broadcaster)
func (h *Hub) BroadcastToPlayer(sessionID, playerID string, msgType string, payload interface{}) {
	h.enqueue(&BroadcastMessage{SessionID: sessionID, ToPlayer: playerID, Message: h.message(msgType, payload)})
}

// BroadcastToAllPlayers sends a message to all players in a session (implements service.Broadcaster)
func (h *Hub) BroadcastToAllPlayers(sessionID string, msgType string, payload interface{}) {
	h.enqueue(&BroadcastMessage{SessionID: sessionID, Message: h.message(msgType, payload)})
}

// DisconnectSession closes all connections of a session once queued messages are out (implements service.Broadcaster)
func (h *Hub) DisconnectSession(sessionID string) {
	h.enqueue(&BroadcastMessage{SessionID: sessionID, Disconnect: true})
}

// notifyAdmin is called from run with mu held
func (h *Hub) notifyAdmin(sessionID string, msgType MessageType, playerID string) {
	conn, ok := h.adminConns[sessionID]
	if !ok {
		return
	}
	payload, _ := json.Marshal(map[string]string{"playerId": playerID})
	data, err := json.Marshal(&Message{Type: msgType, Payload: payload})
	if err != nil {
		return
	}
	h.send(conn, data)
}
