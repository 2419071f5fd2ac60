package aggregator

import (
	"context"
	"fmt"
	"time"

	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/balances"
	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/keys"
	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/prices"
	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/registry"
	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/utils"
)

// BalanceSource is satisfied by *balances.Service
type BalanceSource interface {
	FetchAll(ctx context.Context, wallets balances.Wallets) map[registry.ChainID][]balances.Record
}

// PriceFetcher is satisfied by *prices.Client
type PriceFetcher interface {
	FetchPrices(ctx context.Context) (*prices.Feed, error)
}

// Snapshot is one priced view of a set of wallets
type Snapshot struct {
	Wallets   balances.Wallets                       `json:"wallet"`
	Balances  map[registry.ChainID][]balances.Record `json:"balances"`
	Rows      []Row                                  `json:"rows"`
	Groups    []Group                                `json:"groups"`
	UpdatedAt time.Time                              `json:"updatedAt"`
}

// BuildSnapshot prices and groups already fetched balances, rows in the chain
// order of reg
func BuildSnapshot(reg *registry.Registry, wallets balances.Wallets, byChain map[registry.ChainID][]balances.Record, feed PriceSource) *Snapshot {
	rows := PriceRows(reg, byChain, feed)
	return &Snapshot{
		Wallets:   wallets,
		Balances:  byChain,
		Rows:      rows,
		Groups:    GroupRows(rows),
		UpdatedAt: time.Now(),
	}
}

func (s *Snapshot) NonZero() []Group {
	return NonZero(s.Groups)
}

func (s *Snapshot) Breakdown(symbol string) []Row {
	return ChainBreakdown(s.Rows, symbol)
}

// TotalUSDValue sums every group
func (s *Snapshot) TotalUSDValue() float64 {
	var total float64
	for _, group := range s.Groups {
		total += group.TotalUSDValue
	}
	return total
}

// Fingerprint identifies the content of a snapshot, ignoring its timestamp
func (s *Snapshot) Fingerprint() string {
	hash, err := utils.HashJSON(struct {
		Wallets balances.Wallets
		Groups  []Group
	}{s.Wallets, s.Groups})
	if err != nil {
		return ""
	}
	return hash
}

// Aggregator composes balance fetching, pricing and grouping
type Aggregator struct {
	balances BalanceSource
	chains   *registry.Registry
	prices   PriceFetcher
	logger   *utils.LogsManager
}

func New(balanceSource BalanceSource, priceFetcher PriceFetcher, logger *utils.LogsManager) *Aggregator {
	return &Aggregator{balances: balanceSource, chains: registryOf(balanceSource), prices: priceFetcher, logger: logger}
}

// registryOf returns the registry a balance source reads, nil when it does not expose one
func registryOf(source BalanceSource) *registry.Registry {
	if withRegistry, ok := source.(interface{ Registry() *registry.Registry }); ok {
		return withRegistry.Registry()
	}
	return nil
}

// FetchPrices returns nil when the feed is unreachable; every price is then 0
func (a *Aggregator) FetchPrices(ctx context.Context) *prices.Feed {
	feed, err := a.prices.FetchPrices(ctx)
	if err != nil {
		a.logger.Warn(fmt.Sprintf("Pricing without a feed: %v", err), "aggregator")
		return nil
	}
	return feed
}

// Snapshot fetches balances and prices for wallets
func (a *Aggregator) Snapshot(ctx context.Context, wallets balances.Wallets) *Snapshot {
	byChain := a.balances.FetchAll(ctx, wallets)
	feed := a.FetchPrices(ctx)
	return BuildSnapshot(a.chains, wallets, byChain, priceSource(feed))
}

// GetAccountBalances prices every chain the bundle holds an address for
func (a *Aggregator) GetAccountBalances(ctx context.Context, bundle *keys.Bundle) (*Snapshot, error) {
	if bundle == nil {
		return nil, ErrNoWallets
	}
	return a.Snapshot(ctx, balances.WalletsFromAddresses(bundle.Addresses())), nil
}

// a nil *prices.Feed must not become a non-nil PriceSource
func priceSource(feed *prices.Feed) PriceSource {
	if feed == nil {
		return nil
	}
	return feed
}
