package balances

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/registry"
	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/utils"
)

const fuelBalanceQuery = `query Balance($owner: Address!, $assetId: AssetId!) {
  balance(owner: $owner, assetId: $assetId) {
    amount
  }
}`

type graphQLRequest struct {
	Query     string            `json:"query"`
	Variables map[string]string `json:"variables"`
}

type fuelBalanceResponse struct {
	Data struct {
		Balance *struct {
			Amount string `json:"amount"`
		} `json:"balance"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// FuelFetcher queries the Fuel GraphQL endpoint once per asset id
type FuelFetcher struct {
	chain      registry.Chain
	httpClient *http.Client
	logger     *utils.LogsManager
}

func NewFuelFetcher(chain registry.Chain, logger *utils.LogsManager) *FuelFetcher {
	return &FuelFetcher{
		chain:      chain,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
}

func (f *FuelFetcher) chainType() registry.ChainType { return registry.ChainTypeFuel }

func (f *FuelFetcher) Close() error {
	f.httpClient.CloseIdleConnections()
	return nil
}

func (f *FuelFetcher) FetchBalances(ctx context.Context, owner string, tokens []registry.TokenRef) []Record {
	if !strings.HasPrefix(owner, "0x") || len(owner) != 66 {
		f.logger.Warn(fmt.Sprintf("%v %q on %s", ErrInvalidOwner, owner, f.chain.ID), "balances")
		return zeroRecords(f.chain.ID, tokens)
	}

	return fetchEach(ctx, f.chain.ID, tokens, f.logger, func(ctx context.Context, token registry.TokenRef) (Record, error) {
		balance, err := f.balance(ctx, owner, token.Address)
		if err != nil {
			return Record{}, err
		}
		return newRecord(f.chain.ID, token, balance), nil
	})
}

func (f *FuelFetcher) balance(ctx context.Context, owner, assetID string) (*big.Int, error) {
	body, err := json.Marshal(graphQLRequest{
		Query:     fuelBalanceQuery,
		Variables: map[string]string{"owner": owner, "assetId": assetID},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.chain.RPCURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("fuel graphql returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out fuelBalanceResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode fuel balance: %w", err)
	}
	if len(out.Errors) > 0 {
		return nil, fmt.Errorf("fuel graphql error: %s", out.Errors[0].Message)
	}
	if out.Data.Balance == nil {
		return new(big.Int), nil
	}

	amount, ok := new(big.Int).SetString(out.Data.Balance.Amount, 10)
	if !ok {
		return nil, fmt.Errorf("invalid fuel amount %q", out.Data.Balance.Amount)
	}
	return amount, nil
}
