package onramp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/utils"
)

// AddressEntry is one destination wallet and the networks it accepts
type AddressEntry struct {
	Address     string   `json:"address"`
	Blockchains []string `json:"blockchains"`
}

// SessionToken is the one-time token the hosted on-ramp widget is opened with
type SessionToken struct {
	Token     string `json:"token"`
	ChannelID string `json:"channel_id"`
}

type sessionTokenRequest struct {
	Addresses []AddressEntry `json:"addresses"`
	Assets    []string       `json:"assets,omitempty"`
}

type sessionTokenResponse struct {
	Token        string `json:"token"`
	ChannelID    string `json:"channelId"`
	ChannelIDAlt string `json:"channel_id"`
}

// Client proxies on-ramp calls to CDP, signing every request with a fresh JWT
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *utils.LogsManager
}

func NewClient(config Config, logger *utils.LogsManager) *Client {
	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

// Enabled reports whether CDP credentials are configured
func (c *Client) Enabled() bool {
	return c.config.HasCredentials()
}

// GenerateJWT signs a token for method + requestURL with the configured key
func (c *Client) GenerateJWT(method, requestURL string) (string, error) {
	return GenerateJWT(c.config.KeyID, c.config.Secret, method, requestURL)
}

// CreateSessionToken requests a session token for addresses
func (c *Client) CreateSessionToken(ctx context.Context, addresses []AddressEntry, assets []string) (*SessionToken, error) {
	if len(addresses) == 0 {
		return nil, ErrAddressesRequired
	}

	body, err := json.Marshal(sessionTokenRequest{Addresses: addresses, Assets: assets})
	if err != nil {
		return nil, err
	}

	data, err := c.post(ctx, c.config.TokenURL, body)
	if err != nil {
		return nil, err
	}

	var resp sessionTokenResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode session token: %w", err)
	}

	channelID := resp.ChannelID
	if channelID == "" {
		channelID = resp.ChannelIDAlt
	}

	c.logger.Info(fmt.Sprintf("Created on-ramp session token for %d address(es)", len(addresses)), "onramp")
	return &SessionToken{Token: resp.Token, ChannelID: channelID}, nil
}

// CreateOnrampSession forwards body to the sessions endpoint and returns the
// gateway's JSON response unchanged
func (c *Client) CreateOnrampSession(ctx context.Context, body json.RawMessage) (json.RawMessage, error) {
	if len(body) == 0 {
		body = json.RawMessage("{}")
	}

	data, err := c.post(ctx, c.config.SessionsURL, body)
	if err != nil {
		return nil, err
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("onramp gateway returned invalid JSON")
	}
	return json.RawMessage(data), nil
}

func (c *Client) post(ctx context.Context, requestURL string, body []byte) ([]byte, error) {
	token, err := c.GenerateJWT(http.MethodPost, requestURL)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, requestURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error(fmt.Sprintf("On-ramp request to %s failed: %v", requestURL, err), "onramp")
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		c.logger.Warn("On-ramp gateway rejected the API key", "onramp")
		return nil, ErrAuthenticationFailed
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		c.logger.Warn(fmt.Sprintf("On-ramp gateway returned %d", resp.StatusCode), "onramp")
		return nil, &APIError{Status: resp.StatusCode, Body: string(data)}
	}

	return data, nil
}
