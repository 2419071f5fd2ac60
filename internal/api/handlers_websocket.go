package api

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"

	ws "github.com/Trustflow-Network-Labs/sentient-wallet/internal/api/websocket"
)

// handleWebSocket upgrades the connection and registers it with the hub.
// The server binds to loopback by default, so connections are not authenticated.
func (s *APIServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error(fmt.Sprintf("WebSocket upgrade failed: %v", err), "api")
		return
	}

	client := ws.NewClient(conn, s.wsHub, uuid.New().String(), s.wsLogger)
	s.wsHub.RegisterClient(client)
	client.Start()
}
