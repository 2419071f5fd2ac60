package aggregator

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/balances"
	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/prices"
	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/registry"
	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/utils"
)

// slowBalances holds the fetch for blockedOwner until its context is
// cancelled, then returns a result anyway, like an RPC answer that arrives
// after the caller moved on.
type slowBalances struct {
	blockedOwner string
	started      chan struct{}
}

func (s *slowBalances) FetchAll(ctx context.Context, wallets balances.Wallets) map[registry.ChainID][]balances.Record {
	if wallets.EVM == s.blockedOwner {
		close(s.started)
		<-ctx.Done()
		return map[registry.ChainID][]balances.Record{
			registry.ChainBase: {record(registry.ChainBase, "STALE", 6, 1_000_000)},
		}
	}
	return map[registry.ChainID][]balances.Record{
		registry.ChainBase: {record(registry.ChainBase, "USDC", 6, 2_000_000)},
	}
}

type staticPrices map[string]float64

func (s staticPrices) FetchPrices(ctx context.Context) (*prices.Feed, error) {
	return prices.StaticFeed(s), nil
}

func newTestPoller(source BalanceSource, priceFetcher PriceFetcher) *Poller {
	cm := utils.NewConfigManagerFromMap(utils.Config{
		"balance_refresh_interval": "1h",
		"price_refresh_interval":   "1h",
	})
	return NewPoller(New(source, priceFetcher, utils.NewDiscardLogsManager()), cm, utils.NewDiscardLogsManager())
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Timed out waiting for %s", what)
}

func TestPollerPricesSnapshot(t *testing.T) {
	source := &slowBalances{}
	p := newTestPoller(source, staticPrices{"USDC": 1})

	var mu sync.Mutex
	var received []*Snapshot
	p.Subscribe(func(s *Snapshot) {
		mu.Lock()
		received = append(received, s)
		mu.Unlock()
	})

	p.Start(context.Background(), balances.Wallets{EVM: "0xnew"})
	defer p.Stop()

	waitFor(t, "a priced snapshot", func() bool {
		latest := p.Latest()
		return latest != nil && almostEqual(latest.TotalUSDValue(), 2)
	})

	if p.Feed() == nil {
		t.Error("Expected the price feed to be kept")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(received) == 0 {
		t.Error("Expected subscribers to receive the snapshot")
	}
}

func TestPollerDiscardsStaleGeneration(t *testing.T) {
	source := &slowBalances{blockedOwner: "0xold", started: make(chan struct{})}
	p := newTestPoller(source, staticPrices{"USDC": 1, "STALE": 100})

	var mu sync.Mutex
	var symbols []string
	p.Subscribe(func(s *Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		for _, g := range s.Groups {
			symbols = append(symbols, g.Symbol)
		}
	})

	p.Start(context.Background(), balances.Wallets{EVM: "0xold"})
	<-source.started

	p.Restart(balances.Wallets{EVM: "0xnew"})
	defer p.Stop()

	waitFor(t, "the new generation's snapshot", func() bool {
		latest := p.Latest()
		return latest != nil && latest.Wallets.EVM == "0xnew"
	})

	latest := p.Latest()
	if len(latest.Groups) != 1 || latest.Groups[0].Symbol != "USDC" {
		t.Errorf("Expected only the new USDC balance, got %+v", latest.Groups)
	}

	mu.Lock()
	defer mu.Unlock()
	for _, symbol := range symbols {
		if symbol == "STALE" {
			t.Fatal("Stale generation result reached a subscriber")
		}
	}
}

func TestPollerConcurrentRestarts(t *testing.T) {
	p := newTestPoller(&slowBalances{}, staticPrices{"USDC": 1})
	p.Start(context.Background(), balances.Wallets{EVM: "0xstart"})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p.Restart(balances.Wallets{EVM: fmt.Sprintf("0x%02d", i)})
		}(i)
	}
	wg.Wait()

	stopped := make(chan struct{})
	go func() {
		p.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(3 * time.Second):
		t.Fatal("Stop did not return after concurrent restarts")
	}
}

func TestPollerStopIsIdempotent(t *testing.T) {
	p := newTestPoller(&slowBalances{}, staticPrices{})
	p.Stop()

	p.Start(context.Background(), balances.Wallets{})
	p.Stop()
	p.Stop()

	if p.Latest() != nil {
		t.Error("Expected no snapshot without wallets")
	}
}

func TestPollerIntervalsFromConfig(t *testing.T) {
	agg := New(&slowBalances{}, staticPrices{}, utils.NewDiscardLogsManager())

	p := NewPoller(agg, utils.NewConfigManagerFromMap(utils.Config{}), utils.NewDiscardLogsManager())
	if p.balanceInterval != DefaultBalanceInterval || p.priceInterval != DefaultPriceInterval {
		t.Errorf("Unexpected default intervals %v / %v", p.balanceInterval, p.priceInterval)
	}

	p = NewPoller(agg, utils.NewConfigManagerFromMap(utils.Config{"balance_refresh_interval": "10s"}), utils.NewDiscardLogsManager())
	if p.balanceInterval != 10*time.Second {
		t.Errorf("Expected 10s, got %v", p.balanceInterval)
	}
}
