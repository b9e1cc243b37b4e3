package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/eapache/queue"
	"github.com/gorilla/websocket"
)

// frame is one observation snapshot pushed to viewers.
type frame struct {
	Step   int       `json:"step"`
	Envs   int       `json:"envs"`
	Drones int       `json:"drones"`
	Width  int       `json:"width"`
	Screen []float32 `json:"screen"`
}

// hub fans simulation frames out to websocket viewers. Frames are
// queued FIFO and dropped from the front when a slow viewer falls more
// than backlogCap behind, so the simulation loop never blocks on the
// network.
type hub struct {
	log      *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
}

const backlogCap = 32

type client struct {
	conn    *websocket.Conn
	backlog *queue.Queue
	wake    chan struct{}
	done    chan struct{}
	once    sync.Once
}

func newHub(log *slog.Logger) *hub {
	return &hub{
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// ServeHTTP upgrades a viewer connection and starts its writer.
func (h *hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("viewer upgrade failed", "err", err)
		return
	}
	c := &client{
		conn:    conn,
		backlog: queue.New(),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.log.Info("viewer connected", "remote", conn.RemoteAddr().String())

	go h.writer(c)
	go h.reader(c)
}

// Broadcast queues a frame for every connected viewer.
func (h *hub) Broadcast(f *frame) {
	payload, err := json.Marshal(f)
	if err != nil {
		h.log.Warn("frame marshal failed", "err", err)
		return
	}
	h.mu.Lock()
	for c := range h.clients {
		c.backlog.Add(payload)
		for c.backlog.Length() > backlogCap {
			c.backlog.Remove()
		}
		select {
		case c.wake <- struct{}{}:
		default:
		}
	}
	h.mu.Unlock()
}

// Close disconnects all viewers.
func (h *hub) Close() {
	h.mu.Lock()
	for c := range h.clients {
		c.close()
	}
	h.clients = make(map[*client]struct{})
	h.mu.Unlock()
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// writer drains a client's backlog onto its connection.
func (h *hub) writer(c *client) {
	defer h.drop(c)
	for {
		select {
		case <-c.done:
			return
		case <-c.wake:
		}
		for {
			h.mu.Lock()
			if c.backlog.Length() == 0 {
				h.mu.Unlock()
				break
			}
			payload := c.backlog.Remove().([]byte)
			h.mu.Unlock()

			c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		}
	}
}

// reader discards viewer messages and notices disconnects.
func (h *hub) reader(c *client) {
	defer h.drop(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *hub) drop(c *client) {
	c.close()
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}
