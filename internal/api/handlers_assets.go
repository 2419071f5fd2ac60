package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/aggregator"
	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/balances"
	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/prices"
)

// AssetsResponse is the grouped, priced view of a set of wallets
type AssetsResponse struct {
	Wallet        balances.Wallets   `json:"wallet"`
	Groups        []aggregator.Group `json:"groups"`
	TotalUSDValue float64            `json:"totalUsdValue"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

// AssetBreakdown is one symbol across every chain it is held on
type AssetBreakdown struct {
	Symbol        string           `json:"symbol"`
	TotalBalance  string           `json:"totalBalance"`
	TotalUSDValue float64          `json:"totalUsdValue"`
	Chains        []aggregator.Row `json:"chains"`
}

// currentFeed prefers the poller's feed and falls back to a live fetch.
// A nil feed prices everything at zero.
func (s *APIServer) currentFeed(ctx context.Context) *prices.Feed {
	if s.services.Poller != nil {
		if feed := s.services.Poller.Feed(); feed != nil {
			return feed
		}
	}
	if s.services.Prices == nil {
		return nil
	}

	feed, err := s.services.Prices.FetchPrices(ctx)
	if err != nil {
		s.logger.Warn(fmt.Sprintf("Price feed unavailable: %v", err), "api")
		return nil
	}
	return feed
}

// snapshotFor reuses the poller's snapshot when it tracks the same wallets
func (s *APIServer) snapshotFor(ctx context.Context, wallets balances.Wallets) *aggregator.Snapshot {
	if s.services.Poller != nil && s.services.Poller.Wallets() == wallets {
		if latest := s.services.Poller.Latest(); latest != nil {
			return latest
		}
	}

	byChain := s.services.Balances.FetchAll(ctx, wallets)

	var source aggregator.PriceSource
	if feed := s.currentFeed(ctx); feed != nil {
		source = feed
	}
	return aggregator.BuildSnapshot(s.services.Balances.Registry(), wallets, byChain, source)
}

func (s *APIServer) handlePrices(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	feed := s.currentFeed(r.Context())
	if feed == nil {
		writeError(w, http.StatusServiceUnavailable, "Price feed unavailable")
		return
	}
	writeJSON(w, http.StatusOK, feed)
}

// handleAssets serves /api/assets?evm=&sol=&fuel=[&nonzero=1]
func (s *APIServer) handleAssets(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	wallets := walletsFromQuery(r)
	if wallets.Empty() {
		writeError(w, http.StatusBadRequest, "At least one of evm, sol or fuel is required")
		return
	}

	snapshot := s.snapshotFor(r.Context(), wallets)
	groups := snapshot.Groups
	if nonZero(r) {
		groups = snapshot.NonZero()
	}
	if groups == nil {
		groups = []aggregator.Group{}
	}

	writeJSON(w, http.StatusOK, AssetsResponse{
		Wallet:        wallets,
		Groups:        groups,
		TotalUSDValue: snapshot.TotalUSDValue(),
		UpdatedAt:     snapshot.UpdatedAt,
	})
}

// handleAssetBreakdown serves /api/assets/{symbol}, the per-chain rows of one
// token ordered by USD value
func (s *APIServer) handleAssetBreakdown(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	symbol := strings.ToUpper(strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/assets/"), "/"))
	if _, ok := s.services.Balances.Registry().GetTokenBySymbol(symbol); !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Unknown token %q", symbol))
		return
	}

	wallets := walletsFromQuery(r)
	if wallets.Empty() {
		writeError(w, http.StatusBadRequest, "At least one of evm, sol or fuel is required")
		return
	}

	snapshot := s.snapshotFor(r.Context(), wallets)
	breakdown := AssetBreakdown{Symbol: symbol, TotalBalance: "0", Chains: []aggregator.Row{}}
	for _, group := range snapshot.Groups {
		if group.Symbol == symbol {
			breakdown.TotalBalance = group.TotalBalance
			breakdown.TotalUSDValue = group.TotalUSDValue
			break
		}
	}
	if rows := snapshot.Breakdown(symbol); rows != nil {
		breakdown.Chains = rows
	}

	writeJSON(w, http.StatusOK, breakdown)
}

func nonZero(r *http.Request) bool {
	switch strings.ToLower(r.URL.Query().Get("nonzero")) {
	case "1", "true", "yes":
		return true
	}
	return false
}
