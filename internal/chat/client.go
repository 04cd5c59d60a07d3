package chat

import (
	"encoding/json"

	"github.com/gofiber/contrib/websocket"
)

// ConnLike is the subset of a websocket connection the client pumps need.
type ConnLike interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(int, []byte) error
	Close() error
}

type Client struct {
	ID   string
	Name string
	Conn ConnLike
	Send chan []byte

	mgr *Manager
}

// NewClient wraps a websocket connection into a client bound to this
// manager. The caller owns the pumps: run WritePump in a goroutine and
// ReadPump on the connection's handler goroutine.
func (m *Manager) NewClient(id, name string, conn ConnLike) *Client {
	return &Client{
		ID:   id,
		Name: name,
		Conn: conn,
		Send: make(chan []byte, 16),
		mgr:  m,
	}
}

// ReadPump reads messages off the connection and hands them to the
// manager until the connection errors. The caller unregisters the client
// when ReadPump returns.
func (c *Client) ReadPump() {
	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			return
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		msg.OriginId = c.ID
		msg.OriginName = c.Name
		c.mgr.Deliver(&msg)
	}
}

// WritePump drains the send channel onto the connection.
func (c *Client) WritePump() {
	for data := range c.Send {
		_ = c.Conn.WriteMessage(websocket.TextMessage, data)
	}
}
