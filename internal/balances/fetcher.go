package balances

import (
	"context"
	"fmt"

	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/registry"
	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/utils"
)

// Fetcher reads token balances from one chain. FetchBalances returns one
// record per token in input order; a token that cannot be read is zero.
//
// The set of implementations is closed: EvmFetcher, SolanaFetcher and FuelFetcher.
type Fetcher interface {
	FetchBalances(ctx context.Context, owner string, tokens []registry.TokenRef) []Record
	Close() error
	chainType() registry.ChainType
}

// NewFetcher picks the implementation for chain's type
func NewFetcher(chain registry.Chain, logger *utils.LogsManager) (Fetcher, error) {
	switch chain.Type {
	case registry.ChainTypeEVM:
		return NewEvmFetcher(chain, logger)
	case registry.ChainTypeSolana:
		return NewSolanaFetcher(chain, logger), nil
	case registry.ChainTypeFuel:
		return NewFuelFetcher(chain, logger), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedChain, chain.Type)
	}
}

// FetchTokenBalances is a one-shot fetch against chain. It never fails: an
// unreachable chain yields zero balances.
func FetchTokenBalances(ctx context.Context, chain registry.Chain, owner string, tokens []registry.TokenRef, logger *utils.LogsManager) []Record {
	fetcher, err := NewFetcher(chain, logger)
	if err != nil {
		logger.Error(fmt.Sprintf("Cannot fetch %s balances: %v", chain.ID, err), "balances")
		return zeroRecords(chain.ID, tokens)
	}
	defer fetcher.Close()

	return fetcher.FetchBalances(ctx, owner, tokens)
}

// fetchEach runs fetch for every token concurrently and keeps input order
func fetchEach(ctx context.Context, chain registry.ChainID, tokens []registry.TokenRef, logger *utils.LogsManager,
	fetch func(ctx context.Context, token registry.TokenRef) (Record, error)) []Record {
	records := make([]Record, len(tokens))
	done := make(chan struct{}, len(tokens))

	for i, token := range tokens {
		go func(i int, token registry.TokenRef) {
			defer func() { done <- struct{}{} }()

			record, err := fetch(ctx, token)
			if err != nil {
				logger.Warn(fmt.Sprintf("Failed to fetch %s balance on %s, using zero: %v", token.Symbol, chain, err), "balances")
				record = newRecord(chain, token, nil)
			}
			records[i] = record
		}(i, token)
	}

	for range tokens {
		<-done
	}
	return records
}
