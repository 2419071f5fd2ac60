package websocket

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 64 * 1024
)

// Client represents a single WebSocket connection
type Client struct {
	// The WebSocket connection
	conn *websocket.Conn

	// Hub that manages this client
	hub *Hub

	// Structured messages from the hub; closing it ends writePump
	send chan *Message

	// Pre-marshaled messages (broadcasts, replays, pongs)
	sendRaw chan []byte

	id string

	// Logger
	logger *logrus.Logger
}

// NewClient creates a new Client instance
func NewClient(conn *websocket.Conn, hub *Hub, id string, logger *logrus.Logger) *Client {
	return &Client{
		conn:    conn,
		hub:     hub,
		send:    make(chan *Message, 256),
		sendRaw: make(chan []byte, 256),
		id:      id,
		logger:  logger,
	}
}

func (c *Client) ID() string {
	return c.id
}

// readPump pumps messages from the WebSocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		c.hub.UnregisterClient(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.WithError(err).WithField("client_id", c.id).Warn("WebSocket read error")
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(message, &msg); err != nil {
			c.logger.WithError(err).WithField("client_id", c.id).Error("Failed to parse incoming message")
			continue
		}

		c.handleIncomingMessage(&msg)
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
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
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			messageBytes, err := json.Marshal(message)
			if err != nil {
				c.logger.WithError(err).Error("Failed to marshal message")
				continue
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, messageBytes); err != nil {
				c.logger.WithError(err).WithField("client_id", c.id).Error("Failed to write message")
				return
			}

		case messageBytes := <-c.sendRaw:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, messageBytes); err != nil {
				c.logger.WithError(err).WithField("client_id", c.id).Error("Failed to write raw message")
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

// handleIncomingMessage processes messages received from the client
func (c *Client) handleIncomingMessage(msg *Message) {
	switch msg.Type {
	case MessageTypePing:
		c.reply(MessageTypePong, nil)

	case MessageTypeWatch:
		var payload WatchPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			c.reply(MessageTypeError, ErrorPayload{Error: "invalid watch payload", Code: "BAD_REQUEST"})
			return
		}
		handler := c.hub.getWatchHandler()
		if handler == nil {
			c.reply(MessageTypeError, ErrorPayload{Error: "watching is not enabled", Code: "UNSUPPORTED"})
			return
		}
		c.logger.WithField("client_id", c.id).Info("Client changed watched wallets")
		handler(payload.Wallets)

	default:
		c.logger.WithField("type", msg.Type).Debug("Received message from client")
	}
}

func (c *Client) reply(msgType MessageType, payload interface{}) {
	message, err := NewMessage(msgType, payload)
	if err != nil {
		c.logger.WithError(err).Error("Failed to create reply message")
		return
	}
	data, err := json.Marshal(message)
	if err != nil {
		c.logger.WithError(err).Error("Failed to marshal reply message")
		return
	}
	c.SendRaw(data)
}

// Start begins the read and write pumps for this client
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}

// SendRaw sends a raw message to the client
func (c *Client) SendRaw(data []byte) {
	select {
	case c.sendRaw <- data:
	default:
		c.logger.WithField("client_id", c.id).Warn("Client sendRaw channel is full, message dropped")
	}
}
