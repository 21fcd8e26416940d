package ws

import (
	"bigbrain/internal/service"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler handles WebSocket connections
type Handler struct {
	hub        *Hub
	authSvc    *service.AuthService
	sessionSvc *service.SessionService
	playerSvc  *service.PlayerService
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, authSvc *service.AuthService, sessionSvc *service.SessionService, playerSvc *service.PlayerService) *Handler {
	return &Handler{
		hub:        hub,
		authSvc:    authSvc,
		sessionSvc: sessionSvc,
		playerSvc:  playerSvc,
	}
}

// AdminWS handles GET /ws/admin/session/{sessionid}?token=
func (h *Handler) AdminWS(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionid"]

	email, err := h.authSvc.Authenticate(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}
	if err := h.sessionSvc.AssertOwnsSession(r.Context(), email, sessionID); err != nil {
		status := http.StatusInternalServerError
		if service.IsInputError(err) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	h.serve(w, r, &Connection{SessionID: sessionID, IsAdmin: true})
}

// PlayerWS handles GET /ws/play/{playerid}
func (h *Handler) PlayerWS(w http.ResponseWriter, r *http.Request) {
	playerID := mux.Vars(r)["playerid"]

	sessionID, err := h.playerSvc.SessionOf(r.Context(), playerID)
	if err != nil {
		status := http.StatusInternalServerError
		if service.IsInputError(err) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	h.serve(w, r, &Connection{SessionID: sessionID, PlayerID: playerID})
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request, conn *Connection) {
	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.hub.log.Warn().Err(err).Str("session", conn.SessionID).Msg("websocket upgrade failed")
		return
	}

	conn.ID = uuid.NewString()
	conn.Send = make(chan []byte, 256)
	h.hub.Register(conn)

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn)
}

func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection) {
	defer func() {
		h.hub.Unregister(conn)
		wsConn.Close()
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		// clients only listen; anything they send is discarded
		if _, _, err := wsConn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.hub.log.Debug().Err(err).Str("conn", conn.ID).Msg("websocket closed")
			}
			return
		}
	}
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := wsConn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
