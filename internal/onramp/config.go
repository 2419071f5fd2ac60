package onramp

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/utils"
)

const (
	DefaultTokenURL    = "https://api.developer.coinbase.com/onramp/v1/token"
	DefaultSessionsURL = "https://api.cdp.coinbase.com/platform/v2/onramp/sessions"
)

// Config holds the CDP API key. Secrets come from the environment only.
type Config struct {
	KeyID       string `envconfig:"CDP_KEY_ID"`
	Secret      string `envconfig:"CDP_SECRET"`
	TokenURL    string `envconfig:"CDP_ONRAMP_TOKEN_URL" default:"https://api.developer.coinbase.com/onramp/v1/token"`
	SessionsURL string `envconfig:"CDP_ONRAMP_SESSIONS_URL" default:"https://api.cdp.coinbase.com/platform/v2/onramp/sessions"`
}

// LoadConfig reads envFiles (or ./.env when none are given) into the
// environment and then processes it. Missing .env files are not an error.
func LoadConfig(envFiles ...string) (*Config, error) {
	_ = godotenv.Load(envFiles...)

	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to load onramp config: %w", err)
	}
	return cfg, nil
}

// ApplyOverrides lets the configs file point the gateway at other endpoints
func (c *Config) ApplyOverrides(cm *utils.ConfigManager) {
	c.TokenURL = cm.GetConfigWithDefault("onramp_token_url", c.TokenURL)
	c.SessionsURL = cm.GetConfigWithDefault("onramp_sessions_url", c.SessionsURL)
}

func (c *Config) HasCredentials() bool {
	return c.KeyID != "" && c.Secret != ""
}
