package websocket

import (
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/balances"
)

// WatchHandler is called when a client asks for a different set of addresses
type WatchHandler func(wallets balances.Wallets)

// Hub maintains the set of active clients and broadcasts messages to them
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Outbound broadcasts
	broadcast chan *Message

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Last broadcast per type, replayed to new clients
	last map[MessageType][]byte

	// Mutex to protect clients and last
	mu sync.RWMutex

	watchHandler WatchHandler

	done     chan struct{}
	stopOnce sync.Once

	// Logger
	logger *logrus.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan *Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		last:       make(map[MessageType][]byte),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// SetWatchHandler installs the callback for wallets.watch requests
func (h *Hub) SetWatchHandler(handler WatchHandler) {
	h.mu.Lock()
	h.watchHandler = handler
	h.mu.Unlock()
}

func (h *Hub) getWatchHandler() WatchHandler {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.watchHandler
}

// Run starts the hub's main loop. It returns after Stop.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			replay := make([][]byte, 0, len(h.last))
			for _, data := range h.last {
				replay = append(replay, data)
			}
			count := len(h.clients)
			h.mu.Unlock()
			h.logger.WithField("client_id", client.id).Info("WebSocket client connected")
			h.logger.WithField("count", count).Debug("Active WebSocket clients")

			// Confirmation first, then the latest state
			connectedMsg, err := NewMessage(MessageTypeConnected, ConnectedPayload{
				Message:  "Connected to WebSocket server",
				ClientID: client.id,
			})
			if err == nil {
				if data, err := json.Marshal(connectedMsg); err == nil {
					client.SendRaw(data)
				}
			}
			for _, data := range replay {
				client.SendRaw(data)
			}

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.logger.WithField("client_id", client.id).Info("WebSocket client disconnected")
				h.logger.WithField("count", len(h.clients)).Debug("Active WebSocket clients")
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			// Marshal message to JSON once
			messageBytes, err := json.Marshal(message)
			if err != nil {
				h.logger.WithError(err).Error("Failed to marshal broadcast message")
				continue
			}

			h.mu.Lock()
			h.last[message.Type] = messageBytes
			clientCount := len(h.clients)
			h.mu.Unlock()

			if clientCount == 0 {
				continue
			}

			h.logger.WithFields(logrus.Fields{
				"type":         message.Type,
				"client_count": clientCount,
			}).Debug("Broadcasting message to clients")

			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.sendRaw <- messageBytes:
				default:
					// Client's send channel is full, close the connection
					go func(c *Client) {
						h.logger.WithField("client_id", c.id).Warn("Client send buffer full, closing connection")
						h.UnregisterClient(c)
					}(client)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Stop ends Run and closes every client
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.done)
	})
}

// Broadcast sends a message to all connected clients
func (h *Hub) Broadcast(message *Message) {
	select {
	case h.broadcast <- message:
	case <-h.done:
	}
}

// BroadcastPayload creates a message with the given type and payload, then broadcasts it
func (h *Hub) BroadcastPayload(msgType MessageType, payload interface{}) error {
	message, err := NewMessage(msgType, payload)
	if err != nil {
		return err
	}
	h.Broadcast(message)
	return nil
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// RegisterClient sends a client to the register channel
func (h *Hub) RegisterClient(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

// UnregisterClient sends a client to the unregister channel
func (h *Hub) UnregisterClient(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}
