package realtime

import (
	"sync"
	"time"

	"groupchat/internal/entity"

	"github.com/gorilla/websocket"
)

const (
	readLimit  = 4096
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	writeWait  = 10 * time.Second
)

// Client is one websocket connection with an authenticated user behind it.
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	dispatcher *Dispatcher
	send       chan []byte

	user entity.User

	mu        sync.Mutex
	isClosing bool
}

func NewClient(conn *websocket.Conn, hub *Hub, dispatcher *Dispatcher, user entity.User) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		dispatcher: dispatcher,
		send:       make(chan []byte, 256),
		user:       user,
	}
}

func (c *Client) User() entity.User {
	return c.user
}

// SendChan exposes the outbound queue for tests.
func (c *Client) SendChan() chan []byte {
	return c.send
}

func (c *Client) HandleConnection() {
	defer func() {
		c.mu.Lock()
		c.isClosing = true
		c.mu.Unlock()
		c.hub.Disconnect(c)
		c.conn.Close()
	}()

	go c.writePump()
	c.readPump()
}

func (c *Client) readPump() {
	c.conn.SetReadLimit(readLimit)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.dispatcher.Logf("Websocket read error for user %d {%v}", c.user.ID, err)
			}
			break
		}
		c.dispatcher.Dispatch(c, raw)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.mu.Lock()
		if !c.isClosing {
			c.conn.Close()
		}
		c.mu.Unlock()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
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
