package realtime

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// public display pages are served from other origins
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is one connected live display, optionally bound to a division
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan *Message

	stageID    string
	divisionID string
	key        string // empty = all divisions
}

// trySend queues a message without blocking; false when the buffer is full
func (c *Client) trySend(m *Message) bool {
	select {
	case c.send <- m:
		return true
	default:
		return false
	}
}

// readPump drains the connection to process pings and close frames (단방향 통신)
func (c *Client) readPump() {
	defer func() {
		c.hub.leave(c)
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
				c.hub.logger.WithError(err).WithField("division", c.key).Warn("WebSocket read error")
			}
			return
		}
	}
}

// writePump forwards hub messages to the connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub가 채널을 닫음
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(message)
			if err != nil {
				c.hub.logger.WithError(err).Error("Failed to marshal message")
				continue
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
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

// ServeWs upgrades the request and subscribes the client to stageID/divisionID
// (both empty = every division)
func ServeWs(hub *Hub, w http.ResponseWriter, r *http.Request, stageID, divisionID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		hub.logger.WithError(err).Warn("Failed to upgrade WebSocket connection")
		return
	}

	client := &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan *Message, 16),
		stageID:    stageID,
		divisionID: divisionID,
	}
	if stageID != "" {
		client.key = DivisionKey(stageID, divisionID)
	}

	if !hub.join(client) {
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
