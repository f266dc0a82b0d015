// Package status broadcasts renderer log lines and per-frame draw
// statistics to websocket clients.
package status

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mogaika/cubism_renderer/render"
)

const (
	INFO = iota
	ERROR
	FRAME
)

type Message struct {
	Text  string            `json:"text,omitempty"`
	Time  time.Time         `json:"time"`
	Type  int               `json:"type"`
	Frame uint64            `json:"frame,omitempty"`
	Stats *render.DrawStats `json:"stats,omitempty"`
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

func (c *client) writePump() {
	ticker := time.NewTicker(time.Second * 30)
	defer func() {
		ticker.Stop()
		c.hub.unregister(c)
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(40 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Printf("[status] ws write msg error: %v", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(40 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[status] ws write ping error: %v", err)
				return
			}
		}
	}
}

// readPump drains control frames so pings get answered and a closed
// connection is noticed.
func (c *client) readPump() {
	defer c.hub.unregister(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Hub fans messages out to every connected client. New clients first
// receive the last log line and the last frame stats.
type Hub struct {
	broadcast chan *Message
	done      chan struct{}

	lock      sync.Mutex
	clients   map[*client]bool
	lastText  []byte
	lastFrame []byte
	closed    bool
}

func NewHub() *Hub {
	h := &Hub{
		broadcast: make(chan *Message, 64),
		done:      make(chan struct{}),
		clients:   make(map[*client]bool),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case m := <-h.broadcast:
			data, err := json.Marshal(m)
			if err != nil {
				log.Printf("[status] marshal error: %v", err)
				continue
			}
			h.lock.Lock()
			if m.Type == FRAME {
				h.lastFrame = data
			} else {
				h.lastText = data
			}
			for c := range h.clients {
				select {
				case c.send <- data:
				default:
					// slow client, it picks up the next frame
				}
			}
			h.lock.Unlock()
		case <-h.done:
			return
		}
	}
}

func (h *Hub) register(c *client) {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.clients[c] = true
	for _, last := range [][]byte{h.lastText, h.lastFrame} {
		if last != nil {
			c.send <- last
		}
	}
}

func (h *Hub) unregister(c *client) {
	h.lock.Lock()
	defer h.lock.Unlock()
	if h.clients[c] {
		delete(h.clients, c)
		close(c.send)
	}
}

// Attach starts serving conn. The connection is closed when a write fails
// or the peer goes away.
func (h *Hub) Attach(conn *websocket.Conn) {
	c := &client{hub: h, conn: conn, send: make(chan []byte, 32)}
	h.register(c)
	go c.writePump()
	go c.readPump()
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[status] upgrade error: %v", err)
		return
	}
	h.Attach(conn)
}

func (h *Hub) Clients() int {
	h.lock.Lock()
	defer h.lock.Unlock()
	return len(h.clients)
}

// Close disconnects every client and stops the broadcaster.
func (h *Hub) Close() {
	h.lock.Lock()
	defer h.lock.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	close(h.done)
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) post(m *Message) {
	m.Time = time.Now()
	select {
	case h.broadcast <- m:
	case <-h.done:
	}
}

func (h *Hub) Info(format string, a ...interface{}) {
	h.post(&Message{Text: fmt.Sprintf(format, a...), Type: INFO})
}

func (h *Hub) Error(format string, a ...interface{}) {
	h.post(&Message{Text: fmt.Sprintf(format, a...), Type: ERROR})
}

func (h *Hub) Frame(frame uint64, stats render.DrawStats) {
	h.post(&Message{Frame: frame, Stats: &stats, Type: FRAME})
}

// Log is a render.Options.Log sink: the message goes to the standard
// logger and to the clients.
func (h *Hub) Log(message string) {
	log.Printf("[cubism] %s", message)
	h.Info("%s", message)
}
