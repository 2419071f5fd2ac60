package balances

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/registry"
	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/utils"
	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/workers"
)

type stubFetcher struct {
	chain registry.ChainID
}

func (s *stubFetcher) FetchBalances(ctx context.Context, owner string, tokens []registry.TokenRef) []Record {
	records := make([]Record, len(tokens))
	for i, token := range tokens {
		records[i] = newRecord(s.chain, token, big.NewInt(int64(1)))
	}
	return records
}

func (s *stubFetcher) Close() error { return nil }

func (s *stubFetcher) chainType() registry.ChainType { return registry.ChainTypeEVM }

func newStubService(t *testing.T, created *[]registry.ChainID) *Service {
	t.Helper()
	logger := utils.NewDiscardLogsManager()
	pool := workers.NewWorkerPool(context.Background(), 3, logger)
	pool.Start()
	t.Cleanup(pool.Stop)

	var mu sync.Mutex
	svc := NewService(registry.Default(), pool, logger)
	svc.newFetcher = func(chain registry.Chain, _ *utils.LogsManager) (Fetcher, error) {
		mu.Lock()
		*created = append(*created, chain.ID)
		mu.Unlock()
		return &stubFetcher{chain: chain.ID}, nil
	}
	t.Cleanup(svc.Close)
	return svc
}

func TestFetchAllOnlyChainsWithAddress(t *testing.T) {
	var created []registry.ChainID
	svc := newStubService(t, &created)

	result := svc.FetchAll(context.Background(), Wallets{EVM: testEvmOwner, Fuel: testFuelOwner})

	if len(result) != 5 {
		t.Fatalf("Expected 5 chains, got %d", len(result))
	}
	if _, ok := result[registry.ChainSolana]; ok {
		t.Error("Expected SOLANA to be skipped without an address")
	}
	for chain, records := range result {
		if len(records) != len(registry.Default().TokenRefs(chain)) {
			t.Errorf("%s: expected one record per token, got %d", chain, len(records))
		}
	}

	svc.FetchAll(context.Background(), Wallets{EVM: testEvmOwner, Fuel: testFuelOwner})
	if len(created) != 5 {
		t.Errorf("Expected fetchers to be reused, created %d", len(created))
	}
}

func TestFetchAllEmptyWallets(t *testing.T) {
	var created []registry.ChainID
	svc := newStubService(t, &created)

	if result := svc.FetchAll(context.Background(), Wallets{}); len(result) != 0 {
		t.Errorf("Expected no chains, got %d", len(result))
	}
}

func TestFetchByType(t *testing.T) {
	var created []registry.ChainID
	svc := newStubService(t, &created)

	result := svc.FetchByType(context.Background(), registry.ChainTypeSolana, testSolanaOwner)
	if len(result) != 1 || len(result[registry.ChainSolana]) != 3 {
		t.Errorf("Expected only SOLANA with 3 tokens, got %v", result)
	}
}

func TestFetchChainUnknown(t *testing.T) {
	var created []registry.ChainID
	svc := newStubService(t, &created)

	if _, err := svc.FetchChain(context.Background(), "TRON", "T123"); !errors.Is(err, ErrUnknownChain) {
		t.Errorf("Expected ErrUnknownChain, got %v", err)
	}
}

func TestFetchChainDegradesWhenFetcherCannotBeBuilt(t *testing.T) {
	logger := utils.NewDiscardLogsManager()
	svc := NewService(registry.Default(), nil, logger)
	svc.newFetcher = func(registry.Chain, *utils.LogsManager) (Fetcher, error) {
		return nil, errors.New("dial failed")
	}

	records, err := svc.FetchChain(context.Background(), registry.ChainBase, testEvmOwner)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	for _, record := range records {
		if record.FormattedBalance != "0" {
			t.Errorf("%s: expected zero, got %s", record.Symbol, record.FormattedBalance)
		}
	}
}

func TestNewFetcherByChainType(t *testing.T) {
	logger := utils.NewDiscardLogsManager()

	f, err := NewFetcher(registry.Chain{ID: registry.ChainBase, Type: registry.ChainTypeEVM, RPCURL: "http://127.0.0.1:1"}, logger)
	if err != nil {
		t.Fatalf("NewFetcher failed: %v", err)
	}
	if _, ok := f.(*EvmFetcher); !ok {
		t.Errorf("Expected *EvmFetcher, got %T", f)
	}
	f.Close()

	f, _ = NewFetcher(registry.Chain{ID: registry.ChainFuel, Type: registry.ChainTypeFuel}, logger)
	if f.chainType() != registry.ChainTypeFuel {
		t.Errorf("Expected FUEL fetcher, got %s", f.chainType())
	}

	if _, err := NewFetcher(registry.Chain{ID: "TRON", Type: "TVM"}, logger); !errors.Is(err, ErrUnsupportedChain) {
		t.Errorf("Expected ErrUnsupportedChain, got %v", err)
	}
}

func TestWalletsAddressFor(t *testing.T) {
	w := Wallets{EVM: "0xa", Solana: "sol", Fuel: "0xf"}
	if w.AddressFor(registry.ChainTypeSolana) != "sol" || w.AddressFor("TVM") != "" {
		t.Error("Unexpected address lookup")
	}
	if !(Wallets{}).Empty() || w.Empty() {
		t.Error("Unexpected Empty result")
	}
}
