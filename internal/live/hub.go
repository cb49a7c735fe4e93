// Package live pushes reload notifications to connected pages over
// WebSocket, standing in for the page reload after a submission.
package live

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ziadkadry99/ecoform/internal/form"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

const writeWait = 5 * time.Second

// Message is the outgoing WebSocket message format.
type Message struct {
	Type    string `json:"type"` // "hello" or "reload"
	Session string `json:"session"`
}

type client struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *client) send(msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(msg)
}

// Hub tracks sockets per session.
type Hub struct {
	logger *zap.Logger

	mu      sync.Mutex
	clients map[string]map[*client]struct{}
}

// NewHub creates an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{logger: logger, clients: map[string]map[*client]struct{}{}}
}

// Reloader returns the form.Reloader for one session: after the delay every
// socket of that session receives a reload message.
func (h *Hub) Reloader(sessionID string) form.Reloader {
	return form.ReloaderFunc(func(delay time.Duration) {
		time.AfterFunc(delay, func() {
			n := h.Broadcast(sessionID, Message{Type: "reload", Session: sessionID})
			h.logger.Debug("reload pushed", zap.String("session", sessionID), zap.Int("clients", n))
		})
	})
}

// Broadcast sends msg to every socket of the session and returns how many
// received it. Sockets that fail are dropped.
func (h *Hub) Broadcast(sessionID string, msg Message) int {
	h.mu.Lock()
	targets := make([]*client, 0, len(h.clients[sessionID]))
	for c := range h.clients[sessionID] {
		targets = append(targets, c)
	}
	h.mu.Unlock()

	sent := 0
	for _, c := range targets {
		if err := c.send(msg); err != nil {
			h.logger.Warn("websocket write", zap.String("session", sessionID), zap.Error(err))
			h.remove(sessionID, c)
			c.conn.Close()
			continue
		}
		sent++
	}
	return sent
}

// Count reports the sockets open for a session.
func (h *Hub) Count(sessionID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[sessionID])
}

func (h *Hub) add(sessionID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[sessionID] == nil {
		h.clients[sessionID] = map[*client]struct{}{}
	}
	h.clients[sessionID][c] = struct{}{}
}

func (h *Hub) remove(sessionID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients[sessionID], c)
	if len(h.clients[sessionID]) == 0 {
		delete(h.clients, sessionID)
	}
}

// sessionOf reads the session from the header, the cookie or the "session"
// query parameter, since browsers cannot set headers on a WebSocket handshake.
func sessionOf(r *http.Request) string {
	if id := r.Header.Get(form.SessionHeader); id != "" {
		return id
	}
	if c, err := r.Cookie(form.SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	return r.URL.Query().Get("session")
}

// ServeHTTP upgrades the request and holds the socket until the peer closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sessionID := sessionOf(r)
	if sessionID == "" {
		http.Error(w, "session is required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade", zap.Error(err))
		return
	}
	c := &client{conn: conn}
	h.add(sessionID, c)
	defer func() {
		h.remove(sessionID, c)
		conn.Close()
	}()

	if err := c.send(Message{Type: "hello", Session: sessionID}); err != nil {
		return
	}

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket read", zap.String("session", sessionID), zap.Error(err))
			}
			return
		}
	}
}
