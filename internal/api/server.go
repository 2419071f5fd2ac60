package api

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/aggregator"
	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/api/middleware"
	ws "github.com/Trustflow-Network-Labs/sentient-wallet/internal/api/websocket"
	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/balances"
	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/onramp"
	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/registry"
	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/utils"
)

// BalanceService is satisfied by *balances.Service
type BalanceService interface {
	Registry() *registry.Registry
	FetchAll(ctx context.Context, wallets balances.Wallets) map[registry.ChainID][]balances.Record
	FetchByType(ctx context.Context, t registry.ChainType, owner string) map[registry.ChainID][]balances.Record
}

// OnrampService is satisfied by *onramp.Client
type OnrampService interface {
	Enabled() bool
	CreateSessionToken(ctx context.Context, addresses []onramp.AddressEntry, assets []string) (*onramp.SessionToken, error)
	CreateOnrampSession(ctx context.Context, body json.RawMessage) (json.RawMessage, error)
}

// Services are the backends the API exposes. Poller and Onramp may be nil.
type Services struct {
	Balances BalanceService
	Prices   aggregator.PriceFetcher
	Poller   *aggregator.Poller
	Onramp   OnrampService
}

// APIServer serves the wallet's balance, price and on-ramp endpoints and the
// snapshot WebSocket
type APIServer struct {
	server     *http.Server
	listener   net.Listener
	port       string
	logger     *utils.LogsManager
	config     *utils.ConfigManager
	services   Services
	wsHub      *ws.Hub
	wsUpgrader websocket.Upgrader
	wsLogger   *logrus.Logger
	startTime  time.Time
	mutex      sync.RWMutex
}

// NewAPIServer creates a new API server instance
func NewAPIServer(config *utils.ConfigManager, logger *utils.LogsManager, services Services) *APIServer {
	wsLogger := logger.Logger()
	hub := ws.NewHub(wsLogger)
	if services.Poller != nil {
		hub.SetWatchHandler(services.Poller.Restart)
	}

	return &APIServer{
		logger:   logger,
		config:   config,
		services: services,
		wsHub:    hub,
		wsUpgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(config.GetConfigSlice("api_allowed_origins", nil)),
		},
		wsLogger:  wsLogger,
		startTime: time.Now(),
	}
}

// Hub returns the WebSocket hub snapshots are pushed through
func (s *APIServer) Hub() *ws.Hub {
	return s.wsHub
}

// Start initializes and starts the API server
func (s *APIServer) Start() error {
	apiPort := s.config.GetConfigWithDefault("api_port", "8088")
	s.logger.Info(fmt.Sprintf("Starting API server on port %s", apiPort), "api")

	fallbackPorts := parsePortList(s.config.GetConfigWithDefault("api_fallback_ports", "8089,8090"))
	ports := append([]string{apiPort}, fallbackPorts...)
	host := s.config.GetConfigWithDefault("api_host", "127.0.0.1")

	var listener net.Listener
	var err error
	for _, port := range ports {
		listener, err = net.Listen("tcp", net.JoinHostPort(host, port))
		if err == nil {
			s.mutex.Lock()
			s.listener = listener
			s.port = port
			s.mutex.Unlock()
			s.logger.Info(fmt.Sprintf("API server bound to %s:%s", host, port), "api")
			break
		}
	}

	if listener == nil {
		return fmt.Errorf("failed to bind API server to any port: %v", err)
	}

	s.server = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	useTLS := s.config.GetConfigBool("api_tls", false)
	if useTLS {
		cert, err := loadOrGenerateAPICertificates(s.config, utils.GetAppPaths(""), s.logger)
		if err != nil {
			listener.Close()
			return fmt.Errorf("failed to prepare API certificate: %v", err)
		}
		s.server.TLSConfig = &tls.Config{Certificates: []tls.Certificate{cert}, MinVersion: tls.VersionTLS12}
	}

	go s.wsHub.Run()

	go func() {
		var err error
		if useTLS {
			err = s.server.ServeTLS(listener, "", "")
		} else {
			err = s.server.Serve(listener)
		}
		if err != nil && err != http.ErrServerClosed {
			s.logger.Error(fmt.Sprintf("API server error: %v", err), "api")
		}
	}()

	s.logger.Info("API server started successfully", "api")
	return nil
}

// Handler returns the routed, CORS-wrapped handler
func (s *APIServer) Handler() http.Handler {
	mux := http.NewServeMux()
	s.registerRoutes(mux)
	return middleware.CORSMiddleware(mux, s.config.GetConfigSlice("api_allowed_origins", nil)...)
}

// registerRoutes sets up all HTTP routes
func (s *APIServer) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/health", s.handleHealth)

	// Balance routes
	mux.HandleFunc("/api/balances", s.handleBalances)
	mux.HandleFunc("/api/balances/", s.handleAddressBalances)

	// Price and aggregated asset routes
	mux.HandleFunc("/api/prices", s.handlePrices)
	mux.HandleFunc("/api/assets", s.handleAssets)
	mux.HandleFunc("/api/assets/", s.handleAssetBreakdown)

	// On-ramp routes
	mux.HandleFunc("/api/session", s.handleSessionToken)
	mux.HandleFunc("/api/quotes", s.handleQuotes)

	mux.HandleFunc("/ws", s.handleWebSocket)

	s.logger.Debug("API routes registered", "api")
}

// handleHealth returns API health status
func (s *APIServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"uptime":  int64(time.Since(s.startTime).Seconds()),
		"clients": s.wsHub.ClientCount(),
	})
}

// Stop gracefully shuts down the API server
func (s *APIServer) Stop() error {
	s.logger.Info("Stopping API server", "api")
	s.wsHub.Stop()

	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(ctx)
	}

	return nil
}

// GetPort returns the port the server is listening on
func (s *APIServer) GetPort() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.port
}

// originChecker admits WebSocket upgrades from the CORS allow-list. A nil
// result keeps gorilla's same-origin check.
func originChecker(allowedOrigins []string) func(r *http.Request) bool {
	if len(allowedOrigins) == 0 {
		return nil
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, allowed := range allowedOrigins {
			if strings.EqualFold(origin, allowed) {
				return true
			}
		}
		return false
	}
}

// parsePortList parses a comma-separated list of ports
func parsePortList(portList string) []string {
	if portList == "" {
		return []string{}
	}
	ports := strings.Split(portList, ",")
	result := make([]string, 0, len(ports))
	for _, port := range ports {
		port = strings.TrimSpace(port)
		if port != "" {
			result = append(result, port)
		}
	}
	return result
}
