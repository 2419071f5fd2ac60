package balances

import (
	"context"
	"fmt"
	"sync"

	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/keys"
	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/registry"
	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/utils"
	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/workers"
)

// Wallets holds at most one owner address per chain type
type Wallets struct {
	EVM    string `json:"EVM" yaml:"evm"`
	Solana string `json:"SOLANA" yaml:"solana"`
	Fuel   string `json:"FUEL" yaml:"fuel"`
}

func WalletsFromAddresses(addresses keys.Addresses) Wallets {
	return Wallets{EVM: addresses.EVM, Solana: addresses.Solana, Fuel: addresses.Fuel}
}

// AddressFor returns the owner for chains of type t, or "" when there is none
func (w Wallets) AddressFor(t registry.ChainType) string {
	switch t {
	case registry.ChainTypeEVM:
		return w.EVM
	case registry.ChainTypeSolana:
		return w.Solana
	case registry.ChainTypeFuel:
		return w.Fuel
	}
	return ""
}

func (w Wallets) Empty() bool {
	return w.EVM == "" && w.Solana == "" && w.Fuel == ""
}

// Service fetches balances for every registered chain, keeping one fetcher
// (and its RPC connection) per chain
type Service struct {
	registry   *registry.Registry
	pool       *workers.WorkerPool
	logger     *utils.LogsManager
	mu         sync.Mutex
	fetchers   map[registry.ChainID]Fetcher
	newFetcher func(registry.Chain, *utils.LogsManager) (Fetcher, error)
}

// NewService uses pool for per-chain concurrency; pool must be started
func NewService(reg *registry.Registry, pool *workers.WorkerPool, logger *utils.LogsManager) *Service {
	return &Service{
		registry:   reg,
		pool:       pool,
		logger:     logger,
		fetchers:   make(map[registry.ChainID]Fetcher),
		newFetcher: NewFetcher,
	}
}

func (s *Service) Registry() *registry.Registry {
	return s.registry
}

func (s *Service) fetcher(chain registry.Chain) (Fetcher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if f, ok := s.fetchers[chain.ID]; ok {
		return f, nil
	}
	f, err := s.newFetcher(chain, s.logger)
	if err != nil {
		return nil, err
	}
	s.fetchers[chain.ID] = f
	return f, nil
}

// FetchChain reads every registered token of chainID for owner
func (s *Service) FetchChain(ctx context.Context, chainID registry.ChainID, owner string) ([]Record, error) {
	chain, ok := s.registry.GetChain(chainID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownChain, chainID)
	}

	tokens := s.registry.TokenRefs(chainID)
	f, err := s.fetcher(chain)
	if err != nil {
		s.logger.Error(fmt.Sprintf("Cannot fetch %s balances: %v", chainID, err), "balances")
		return zeroRecords(chainID, tokens), nil
	}
	return f.FetchBalances(ctx, owner, tokens), nil
}

// FetchByType reads every chain of type t for owner, keyed by chain
func (s *Service) FetchByType(ctx context.Context, t registry.ChainType, owner string) map[registry.ChainID][]Record {
	var wallets Wallets
	switch t {
	case registry.ChainTypeEVM:
		wallets.EVM = owner
	case registry.ChainTypeSolana:
		wallets.Solana = owner
	case registry.ChainTypeFuel:
		wallets.Fuel = owner
	}
	return s.FetchAll(ctx, wallets)
}

// FetchAll reads every registered chain that wallets has an address for.
// Chains run concurrently on the pool and may finish in any order.
func (s *Service) FetchAll(ctx context.Context, wallets Wallets) map[registry.ChainID][]Record {
	result := make(map[registry.ChainID][]Record)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, chain := range s.registry.ListChains() {
		owner := wallets.AddressFor(chain.Type)
		if owner == "" {
			continue
		}

		chainID := chain.ID
		wg.Add(1)
		task := func() {
			defer wg.Done()
			records, err := s.FetchChain(ctx, chainID, owner)
			if err != nil {
				s.logger.Error(err.Error(), "balances")
				return
			}
			mu.Lock()
			result[chainID] = records
			mu.Unlock()
		}

		if err := s.pool.Submit(ctx, task); err != nil {
			wg.Done()
			s.logger.Warn(fmt.Sprintf("Skipping %s balances: %v", chainID, err), "balances")
			mu.Lock()
			result[chainID] = zeroRecords(chainID, s.registry.TokenRefs(chainID))
			mu.Unlock()
		}
	}

	wg.Wait()
	return result
}

// Close releases every cached fetcher
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, f := range s.fetchers {
		if err := f.Close(); err != nil {
			s.logger.Debug(fmt.Sprintf("Closing %s fetcher: %v", id, err), "balances")
		}
		delete(s.fetchers, id)
	}
}
