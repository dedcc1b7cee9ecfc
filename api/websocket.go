package api

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins for development
		return true
	},
}

// Client is one websocket subscriber to a session's event stream
type Client struct {
	sessionID string
	conn      *websocket.Conn
	send      chan Event
}

// Broadcaster fans session events out to websocket subscribers
type Broadcaster struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{} // sessionID -> clients
}

// NewBroadcaster creates an empty broadcaster
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		clients: make(map[string]map[*Client]struct{}),
	}
}

// Subscribe upgrades an HTTP request to a websocket and registers the
// client for a session's events.
func (b *Broadcaster) Subscribe(w http.ResponseWriter, r *http.Request, sessionID string) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := &Client{
		sessionID: sessionID,
		conn:      conn,
		send:      make(chan Event, 64),
	}

	b.mu.Lock()
	if b.clients[sessionID] == nil {
		b.clients[sessionID] = make(map[*Client]struct{})
	}
	b.clients[sessionID][client] = struct{}{}
	b.mu.Unlock()

	go client.writePump(b)
	go client.readPump(b)
	return nil
}

// Broadcast pushes an event to every subscriber of a session. Slow
// clients are dropped rather than blocking execution.
func (b *Broadcaster) Broadcast(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for client := range b.clients[event.SessionID] {
		select {
		case client.send <- event:
		default:
			go b.remove(client)
		}
	}
}

// CloseSession disconnects every subscriber of a session
func (b *Broadcaster) CloseSession(sessionID string) {
	b.mu.Lock()
	clients := b.clients[sessionID]
	delete(b.clients, sessionID)
	b.mu.Unlock()

	for client := range clients {
		close(client.send)
	}
}

func (b *Broadcaster) remove(client *Client) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if clients, ok := b.clients[client.sessionID]; ok {
		if _, present := clients[client]; present {
			delete(clients, client)
			close(client.send)
		}
	}
}

// writePump forwards events to the websocket, with keepalive pings
func (c *Client) writePump(b *Broadcaster) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(event); err != nil {
				log.Printf("websocket write failed: %v", err)
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

// readPump discards client messages and notices disconnects
func (c *Client) readPump(b *Broadcaster) {
	defer b.remove(c)

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
