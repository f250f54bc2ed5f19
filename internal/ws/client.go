package ws

import (
	"time"

	"spot_difference/internal/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second

	maxMessageSize = 4096
	sendBuffer     = 64
)

// Client - одно websocket-соединение игрока
type Client struct {
	Username string
	Conn     *websocket.Conn
	Send     chan []byte

	Hub *Hub
}

func NewClient(username string, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		Username: username,
		Conn:     conn,
		Send:     make(chan []byte, sendBuffer),
		Hub:      hub,
	}
}

// Run регистрирует клиента и держит соединение до отключения
func (c *Client) Run() {
	c.Hub.Register(c)
	go c.writePump()

	// сразу отдаём текущее состояние, если раунд уже идёт
	c.Hub.sendState(c)

	c.readPump()
}

// read
func (c *Client) readPump() {
	defer func() {
		c.Hub.Unregister(c)
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("ws read failed", "username", c.Username, "error", err)
			}
			return
		}
		c.Hub.HandleMessage(c, msg)
	}
}

// write
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Debug("ws write failed", "username", c.Username, "error", err)
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
