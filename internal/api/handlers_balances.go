package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/balances"
	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/registry"
	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/utils"
)

// BalancesResponse is the per-chain balance map for a set of wallets
type BalancesResponse struct {
	Balances map[registry.ChainID][]balances.Record `json:"balances"`
	Wallet   balances.Wallets                       `json:"wallet"`
}

// ChainBalances is one entry of the single-address response
type ChainBalances struct {
	Chain    registry.ChainID   `json:"chain"`
	Balances []balances.Record `json:"balances"`
}

// handleBalances returns balances for the evm, sol and fuel addresses. The
// response is cacheable for balances_cache_ttl seconds and carries an ETag.
func (s *APIServer) handleBalances(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	wallets := walletsFromQuery(r)
	byChain := s.services.Balances.FetchAll(r.Context(), wallets)
	if byChain == nil {
		byChain = map[registry.ChainID][]balances.Record{}
	}

	body, err := json.Marshal(BalancesResponse{Balances: byChain, Wallet: wallets})
	if err != nil {
		s.logger.Error(fmt.Sprintf("Failed to encode balances: %v", err), "api")
		writeError(w, http.StatusInternalServerError, "Failed to encode balances")
		return
	}

	etag := `"` + utils.HashBytes(body) + `"`
	ttl := s.config.GetConfigInt("balances_cache_ttl", 60, 0, 86400)
	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", ttl))
	w.Header().Set("ETag", etag)

	if match := r.Header.Get("If-None-Match"); match != "" && etagMatches(match, etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func etagMatches(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}

// handleAddressBalances serves /api/balances/{address}?chainType=EVM|SOLANA|FUEL
func (s *APIServer) handleAddressBalances(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	address := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/balances/"), "/")
	if address == "" {
		writeError(w, http.StatusBadRequest, "Address is required")
		return
	}

	chainType, ok := registry.ParseChainType(strings.ToUpper(r.URL.Query().Get("chainType")))
	if !ok {
		writeError(w, http.StatusBadRequest, "chainType must be one of EVM, SOLANA, FUEL")
		return
	}

	byChain := s.services.Balances.FetchByType(r.Context(), chainType, address)

	response := []ChainBalances{}
	for _, chain := range s.services.Balances.Registry().ChainsByType(chainType) {
		if records, ok := byChain[chain.ID]; ok {
			response = append(response, ChainBalances{Chain: chain.ID, Balances: records})
		}
	}

	s.logger.Debug(fmt.Sprintf("API /balances/%s: %d %s chain(s)", address, len(response), chainType), "api")
	writeJSON(w, http.StatusOK, response)
}
