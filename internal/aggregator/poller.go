package aggregator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/balances"
	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/prices"
	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/registry"
	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/utils"
)

const (
	DefaultBalanceInterval = 50 * time.Second
	DefaultPriceInterval   = 3 * time.Minute
)

// Poller keeps a snapshot fresh with two independent loops: balances on a
// short interval and prices on a long one. Every run carries the generation
// it was started with; results of an older generation are discarded.
type Poller struct {
	agg             *Aggregator
	logger          *utils.LogsManager
	balanceInterval time.Duration
	priceInterval   time.Duration

	// serializes Restart and Stop so old loops are gone before new ones start
	restartMu sync.Mutex

	mu              sync.RWMutex
	parent          context.Context
	cancel          context.CancelFunc
	wg              sync.WaitGroup
	generation      uint64
	running         bool
	wallets         balances.Wallets
	byChain         map[registry.ChainID][]balances.Record
	feed            *prices.Feed
	latest          *Snapshot
	lastFingerprint string

	subsMu        sync.RWMutex
	snapshotSubs  []func(*Snapshot)
	priceFeedSubs []func(*prices.Feed)
}

// NewPoller reads balance_refresh_interval and price_refresh_interval
func NewPoller(agg *Aggregator, cm *utils.ConfigManager, logger *utils.LogsManager) *Poller {
	return &Poller{
		agg:             agg,
		logger:          logger,
		balanceInterval: cm.GetConfigDuration("balance_refresh_interval", DefaultBalanceInterval),
		priceInterval:   cm.GetConfigDuration("price_refresh_interval", DefaultPriceInterval),
	}
}

// Subscribe registers fn for every snapshot whose content changed. fn runs on
// a polling goroutine and must not call Restart or Stop.
func (p *Poller) Subscribe(fn func(*Snapshot)) {
	p.subsMu.Lock()
	p.snapshotSubs = append(p.snapshotSubs, fn)
	p.subsMu.Unlock()
}

// SubscribePrices registers fn for every fetched price feed
func (p *Poller) SubscribePrices(fn func(*prices.Feed)) {
	p.subsMu.Lock()
	p.priceFeedSubs = append(p.priceFeedSubs, fn)
	p.subsMu.Unlock()
}

// Start begins polling for wallets. A running poller is restarted.
func (p *Poller) Start(ctx context.Context, wallets balances.Wallets) {
	p.mu.Lock()
	p.parent = ctx
	p.mu.Unlock()

	p.Restart(wallets)
}

// Restart cancels the current loops, drops their state and polls wallets
// instead. Used when the active addresses change.
func (p *Poller) Restart(wallets balances.Wallets) {
	p.restartMu.Lock()
	defer p.restartMu.Unlock()

	p.stopLoops()

	p.mu.Lock()
	defer p.mu.Unlock()

	parent := p.parent
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	p.generation++
	gen := p.generation
	p.cancel = cancel
	p.running = true
	p.wallets = wallets
	p.byChain = nil
	p.latest = nil
	p.lastFingerprint = ""

	if wallets.Empty() {
		p.logger.Debug("Poller idle: no wallet addresses", "aggregator")
	} else {
		p.wg.Add(1)
		go p.loop(ctx, gen, p.balanceInterval, p.refreshBalances)
	}
	p.wg.Add(1)
	go p.loop(ctx, gen, p.priceInterval, p.refreshPrices)

	p.logger.Info(fmt.Sprintf("Poller generation %d started (balances every %v, prices every %v)", gen, p.balanceInterval, p.priceInterval), "aggregator")
}

// Stop cancels both loops and waits for them to return
func (p *Poller) Stop() {
	p.restartMu.Lock()
	defer p.restartMu.Unlock()

	p.stopLoops()
}

func (p *Poller) stopLoops() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.generation++
	p.running = false
	p.cancel()
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *Poller) loop(ctx context.Context, gen uint64, interval time.Duration, run func(context.Context, uint64)) {
	defer p.wg.Done()

	run(ctx, gen)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			run(ctx, gen)
		case <-ctx.Done():
			return
		}
	}
}

func (p *Poller) refreshBalances(ctx context.Context, gen uint64) {
	p.mu.RLock()
	wallets := p.wallets
	p.mu.RUnlock()

	byChain := p.agg.balances.FetchAll(ctx, wallets)

	p.mu.Lock()
	if gen != p.generation {
		p.mu.Unlock()
		p.logger.Debug(fmt.Sprintf("Discarding balances of stale generation %d", gen), "aggregator")
		return
	}
	p.byChain = byChain
	snapshot := p.rebuildLocked()
	p.mu.Unlock()

	p.publish(snapshot)
}

func (p *Poller) refreshPrices(ctx context.Context, gen uint64) {
	feed := p.agg.FetchPrices(ctx)
	if feed == nil {
		return
	}

	p.mu.Lock()
	if gen != p.generation {
		p.mu.Unlock()
		p.logger.Debug(fmt.Sprintf("Discarding prices of stale generation %d", gen), "aggregator")
		return
	}
	p.feed = feed
	var snapshot *Snapshot
	if p.byChain != nil {
		snapshot = p.rebuildLocked()
	}
	p.mu.Unlock()

	p.subsMu.RLock()
	subs := append([]func(*prices.Feed){}, p.priceFeedSubs...)
	p.subsMu.RUnlock()
	for _, fn := range subs {
		fn(feed)
	}

	p.publish(snapshot)
}

// rebuildLocked returns the new snapshot, or nil when nothing changed
func (p *Poller) rebuildLocked() *Snapshot {
	snapshot := BuildSnapshot(p.agg.chains, p.wallets, p.byChain, priceSource(p.feed))
	p.latest = snapshot

	fingerprint := snapshot.Fingerprint()
	if fingerprint != "" && fingerprint == p.lastFingerprint {
		return nil
	}
	p.lastFingerprint = fingerprint
	return snapshot
}

func (p *Poller) publish(snapshot *Snapshot) {
	if snapshot == nil {
		return
	}

	p.subsMu.RLock()
	subs := append([]func(*Snapshot){}, p.snapshotSubs...)
	p.subsMu.RUnlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}

// Latest returns the most recent snapshot of the current generation, or nil
func (p *Poller) Latest() *Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.latest
}

// Feed returns the most recent price feed, kept across restarts
func (p *Poller) Feed() *prices.Feed {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.feed
}

func (p *Poller) Wallets() balances.Wallets {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.wallets
}
