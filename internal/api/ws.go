package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/canhigher/ing-hubs-case/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

// orderEvent is the wire format of one lifecycle notification.
type orderEvent struct {
	Event string        `json:"event"`
	Order *domain.Order `json:"order"`
	At    time.Time     `json:"at"`
}

// Hub fans order lifecycle events out to connected websocket clients. It
// implements domain.OrderEventPublisher; publishing never blocks the
// order services.
type Hub struct {
	mu        sync.Mutex
	clients   map[*wsClient]bool
	broadcast chan []byte
	log       *slog.Logger
}

// NewHub creates a new Hub. Call Run before serving connections.
func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		clients:   make(map[*wsClient]bool),
		broadcast: make(chan []byte, 256),
		log:       log,
	}
}

// Run delivers broadcasts until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Client send buffer full, disconnect
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// PublishOrderEvent queues an event for broadcast, dropping it if the hub
// is saturated.
func (h *Hub) PublishOrderEvent(event string, o *domain.Order) {
	payload, err := json.Marshal(orderEvent{Event: event, Order: o, At: time.Now()})
	if err != nil {
		h.log.Error("failed to marshal order event", slog.Any("error", err))
		return
	}

	select {
	case h.broadcast <- payload:
	default:
		h.log.Warn("order event dropped, broadcast buffer full")
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeWS upgrades the request and attaches the client to the hub.
func (h *Hub) ServeWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error("websocket upgrade failed", slog.Any("error", err))
		return
	}

	client := &wsClient{hub: h, conn: conn, send: make(chan []byte, 64)}

	h.mu.Lock()
	h.clients[client] = true
	h.mu.Unlock()
	h.log.Info("websocket client connected", slog.Int("total", h.ClientCount()))

	go client.writePump()
	go client.readPump()
}

func (h *Hub) drop(client *wsClient) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	h.mu.Unlock()
}

type wsClient struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// readPump discards inbound messages; the stream is one-way. Its job is to
// notice the peer going away.
func (c *wsClient) readPump() {
	defer func() {
		c.hub.drop(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
