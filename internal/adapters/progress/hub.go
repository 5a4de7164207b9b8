package progress

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	sendBuffer   = 64
	writeTimeout = 5 * time.Second
)

// Hub is the server side of a push channel: it upgrades websocket clients and
// publishes named events to every connected client. Slow clients are dropped
// rather than allowed to block publishers.
type Hub struct {
	event    string
	upgrader websocket.Upgrader
	logger   *zap.Logger

	// Welcome, when set, produces the payload sent to a client right after it connects.
	Welcome func() any

	mu      sync.Mutex
	clients map[*hubClient]struct{}
	closed  bool
}

type hubClient struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *hubClient) close() {
	c.once.Do(func() {
		close(c.send)
	})
}

func NewHub(event string, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		event:  event,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[*hubClient]struct{}),
	}
}

// ServeHTTP upgrades the request and holds the connection until the client
// goes away or the hub is closed.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("hub: upgrade failed", zap.Error(err))
		return
	}

	c := &hubClient{conn: conn, send: make(chan []byte, sendBuffer)}
	// Queued before registering so it is always the first frame the client sees.
	if h.Welcome != nil {
		if msg, err := h.encode(h.Welcome()); err == nil {
			c.send <- msg
		}
	}
	if !h.register(c) {
		conn.Close()
		return
	}
	h.logger.Debug("hub: client connected", zap.String("event", h.event), zap.String("remote", r.RemoteAddr))

	go h.writer(c)
	h.reader(c)
}

func (h *Hub) register(c *hubClient) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *Hub) unregister(c *hubClient) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.close()
}

// reader drains client frames so control messages are processed and a
// disconnect is noticed.
func (h *Hub) reader(c *hubClient) {
	defer h.unregister(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writer(c *hubClient) {
	defer c.conn.Close()
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.logger.Debug("hub: write failed", zap.Error(err))
			return
		}
	}
	_ = c.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
}

func (h *Hub) encode(data any) ([]byte, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("hub: marshal %s payload: %w", h.event, err)
	}
	msg, err := json.Marshal(Envelope{Event: h.event, Data: payload})
	if err != nil {
		return nil, fmt.Errorf("hub: marshal envelope: %w", err)
	}
	return msg, nil
}

// Publish sends data to every connected client.
func (h *Hub) Publish(data any) error {
	msg, err := h.encode(data)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.logger.Warn("hub: dropping slow client", zap.String("event", h.event))
			delete(h.clients, c)
			c.close()
		}
	}
	return nil
}

// Clients reports how many clients are connected.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		c.close()
	}
}
