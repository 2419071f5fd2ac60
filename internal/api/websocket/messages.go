package websocket

import (
	"encoding/json"
	"time"

	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/balances"
)

// MessageType represents the type of WebSocket message
type MessageType string

const (
	// Data update message types
	MessageTypeBalancesUpdated MessageType = "balances.updated"
	MessageTypePricesUpdated   MessageType = "prices.updated"

	// Client requests
	MessageTypeWatch MessageType = "wallets.watch"

	// Control message types
	MessageTypePing      MessageType = "ping"
	MessageTypePong      MessageType = "pong"
	MessageTypeError     MessageType = "error"
	MessageTypeConnected MessageType = "connected"
)

// Message is the base structure for all WebSocket messages
type Message struct {
	Type      MessageType     `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// NewMessage creates a new message with the given type and payload
func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      msgType,
		Payload:   payloadBytes,
		Timestamp: time.Now().Unix(),
	}, nil
}

// WatchPayload asks the server to poll a different set of addresses
type WatchPayload struct {
	Wallets balances.Wallets `json:"wallet"`
}

// ErrorPayload contains error information
type ErrorPayload struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// ConnectedPayload is sent when a client successfully connects
type ConnectedPayload struct {
	Message  string `json:"message"`
	ClientID string `json:"client_id"`
}
