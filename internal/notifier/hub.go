package notifier

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"IdleTycoon/internal/model"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Envelope is the JSON frame sent to feed subscribers.
type Envelope struct {
	Type string `json:"type"` // "state" or "reward"
	Data any    `json:"data"`
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub broadcasts the presentation feed to websocket subscribers. Slow clients
// are dropped rather than allowed to stall the simulation.
type Hub struct {
	clients    map[*client]bool
	broadcast  chan []byte
	register   chan *client
	unregister chan *client
	upgrader   websocket.Upgrader

	mu        sync.Mutex
	lastState []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *client),
		unregister: make(chan *client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Run serves registrations and broadcasts until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			log.Println("[INFO] feed hub stopped")
			return
		case c := <-h.register:
			h.clients[c] = true
			h.mu.Lock()
			last := h.lastState
			h.mu.Unlock()
			if last != nil {
				c.send <- last
			}
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					close(c.send)
					delete(h.clients, c)
				}
			}
		}
	}
}

func (h *Hub) PublishState(st model.State) {
	msg, ok := encode("state", st)
	if !ok {
		return
	}
	h.mu.Lock()
	h.lastState = msg
	h.mu.Unlock()
	h.enqueue(msg)
}

func (h *Hub) PublishReward(r model.RewardNotice) {
	if msg, ok := encode("reward", r); ok {
		h.enqueue(msg)
	}
}

func (h *Hub) enqueue(msg []byte) {
	select {
	case h.broadcast <- msg:
	default:
		// hub is behind; the next state frame supersedes this one
	}
}

// ServeWS upgrades the request and subscribes the connection to the feed.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WARN] websocket upgrade: %v", err)
		return
	}
	c := &client{hub: h, conn: conn, send: make(chan []byte, 256)}
	select {
	case h.register <- c:
	case <-time.After(writeWait):
		log.Println("[WARN] feed hub not running, dropping subscriber")
		conn.Close()
		return
	}
	go c.writePump()
	go c.readPump()
}

func encode(kind string, data any) ([]byte, bool) {
	msg, err := json.Marshal(Envelope{Type: kind, Data: data})
	if err != nil {
		log.Printf("[ERROR] encode %s frame: %v", kind, err)
		return nil, false
	}
	return msg, true
}

// readPump drains the connection so pongs and close frames are processed.
// The feed is read-only; inbound messages are ignored.
func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-time.After(time.Second):
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WARN] feed client: %v", err)
			}
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
