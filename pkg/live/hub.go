package live

import (
	"context"
	"encoding/json"
	"io"
	"maps"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/matzehuels/bracketview/pkg/errors"
)

// Message types sent to clients.
const (
	MessageBracketUpdated = "BRACKET_UPDATED"
)

// Message is one JSON frame sent to every client of a room.
type Message struct {
	Type    string `json:"type"`
	Room    int    `json:"room"`
	Payload any    `json:"payload,omitempty"`
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 16
)

// ErrHubClosed is returned by [Hub.Serve] once [Hub.Run] has returned.
var ErrHubClosed = errors.New(errors.ErrCodeInternal, "live hub is shut down")

// Hub fans messages out to websocket clients grouped in rooms, one room per
// championship. Run must be running for clients to join or leave, and is
// called once.
type Hub struct {
	upgrader   websocket.Upgrader
	logger     *log.Logger
	register   chan *client
	unregister chan *client
	done       chan struct{} // closed when Run returns

	mu    sync.RWMutex
	rooms map[int]map[*client]struct{}
}

// HubOption configures a [Hub].
type HubOption func(*Hub)

// WithHubLogger sets the hub's logger. The default discards.
func WithHubLogger(l *log.Logger) HubOption {
	return func(h *Hub) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithCheckOrigin sets the websocket origin check. The default accepts
// every origin; the API restricts it to its CORS origins.
func WithCheckOrigin(fn func(r *http.Request) bool) HubOption {
	return func(h *Hub) { h.upgrader.CheckOrigin = fn }
}

// NewHub creates a hub. Start it with [Hub.Run].
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger:     log.New(io.Discard),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
		rooms:      make(map[int]map[*client]struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run processes joins and leaves until ctx is done, then disconnects every
// client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			if h.rooms[c.room] == nil {
				h.rooms[c.room] = make(map[*client]struct{})
			}
			h.rooms[c.room][c] = struct{}{}
			n := len(h.rooms[c.room])
			h.mu.Unlock()
			h.logger.Debug("client joined", "room", c.room, "clients", n)

		case c := <-h.unregister:
			h.remove(c)

		case <-ctx.Done():
			h.mu.Lock()
			for room, clients := range h.rooms {
				for c := range clients {
					close(c.send)
				}
				delete(h.rooms, room)
			}
			h.mu.Unlock()
			return
		}
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients, ok := h.rooms[c.room]
	if !ok {
		return
	}
	if _, ok := clients[c]; !ok {
		return
	}
	close(c.send)
	delete(clients, c)
	if len(clients) == 0 {
		delete(h.rooms, c.room)
	}
	h.logger.Debug("client left", "room", c.room, "clients", len(clients))
}

// Rooms returns the rooms that have at least one client, ascending.
func (h *Hub) Rooms() []int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Sorted(maps.Keys(h.rooms))
}

// Clients returns the number of clients in a room.
func (h *Hub) Clients(room int) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// Broadcast sends msg to every client of room and returns how many clients
// it was queued for. Clients whose send buffer is full miss the message.
func (h *Hub) Broadcast(room int, msg Message) (int, error) {
	msg.Room = room
	data, err := json.Marshal(msg)
	if err != nil {
		return 0, err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	sent := 0
	for c := range h.rooms[room] {
		select {
		case c.send <- data:
			sent++
		default:
			h.logger.Warn("client send buffer full, dropping message", "room", room)
		}
	}
	return sent, nil
}

// Serve upgrades the request to a websocket and joins the client to room.
// If initial is non-nil it is the first message the client receives.
// Serve returns once the client is registered; pumps run in the background.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, room int, initial *Message) error {
	select {
	case <-h.done:
		http.Error(w, "live updates unavailable", http.StatusServiceUnavailable)
		return ErrHubClosed
	default:
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &client{hub: h, conn: conn, room: room, send: make(chan []byte, sendBuffer)}
	if initial != nil {
		initial.Room = room
		if data, err := json.Marshal(initial); err == nil {
			c.send <- data
		}
	}

	select {
	case h.register <- c:
	case <-h.done:
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait))
		conn.Close()
		return ErrHubClosed
	case <-r.Context().Done():
		conn.Close()
		return r.Context().Err()
	}

	go c.writePump()
	go c.readPump()
	return nil
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	room int
	send chan []byte
}

// readPump discards incoming frames and keeps the read deadline moving on
// pongs. It unregisters the client when the connection ends.
func (c *client) readPump() {
	defer func() {
		c.hub.unregisterAsync(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug("websocket closed", "room", c.room, "err", err)
			}
			return
		}
	}
}

// writePump writes queued messages and pings until the send channel is
// closed by the hub or a write fails.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// unregisterAsync hands c to Run without blocking a pump if Run has exited.
func (h *Hub) unregisterAsync(c *client) {
	go func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
	}()
}
