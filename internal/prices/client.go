package prices

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/registry"
	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/utils"
)

const DefaultBaseURL = "https://coins.llama.fi"

// Client queries the DefiLlama current-prices endpoint
type Client struct {
	baseURL    string
	httpClient *http.Client
	registry   *registry.Registry
	logger     *utils.LogsManager
}

func NewClient(baseURL string, reg *registry.Registry, logger *utils.LogsManager) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		registry:   reg,
		logger:     logger,
	}
}

// NewClientFromConfig reads price_api_url and rpc_timeout
func NewClientFromConfig(cm *utils.ConfigManager, reg *registry.Registry, logger *utils.LogsManager) *Client {
	c := NewClient(cm.GetConfigWithDefault("price_api_url", DefaultBaseURL), reg, logger)
	c.httpClient.Timeout = cm.GetConfigDuration("rpc_timeout", 15*time.Second)
	return c
}

// Coins returns the chain-qualified ids to price: every OPTIMISM token
// (covering the EVM assets, ETH included), SOL on Solana and FUEL on Fuel.
func (c *Client) Coins() []string {
	var coins []string
	for _, ref := range c.registry.TokenRefs(registry.ChainOptimism) {
		coins = append(coins, "optimism:"+ref.Address)
	}
	if token, ok := c.registry.GetTokenBySymbol("SOL"); ok {
		if deployment, ok := token.On(registry.ChainSolana); ok {
			coins = append(coins, "solana:"+deployment.Address)
		}
	}
	if token, ok := c.registry.GetTokenBySymbol("FUEL"); ok {
		if deployment, ok := token.On(registry.ChainFuel); ok {
			coins = append(coins, "fuel:"+deployment.Address)
		}
	}
	return coins
}

type currentPricesResponse struct {
	Coins map[string]Quote `json:"coins"`
}

// FetchPrices returns one batched quote for every coin in Coins
func (c *Client) FetchPrices(ctx context.Context) (*Feed, error) {
	coins := c.Coins()
	url := fmt.Sprintf("%s/prices/current/%s", c.baseURL, strings.Join(coins, ","))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPriceFeedUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("%w: status %d: %s", ErrPriceFeedUnavailable, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out currentPricesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPriceFeedUnavailable, err)
	}
	if out.Coins == nil {
		out.Coins = map[string]Quote{}
	}

	c.logger.Debug(fmt.Sprintf("Fetched %d of %d prices", len(out.Coins), len(coins)), "prices")
	return NewFeed(out.Coins, coins, time.Now()), nil
}
