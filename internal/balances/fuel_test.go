package balances

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/registry"
	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/utils"
)

const testFuelOwner = "0xd3cecadfed9eb22edad82ecf986837a3c972acf6c8bb49311eb4ddbc78f1e41e"

func newFakeFuelNode(t *testing.T, amounts map[string]string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req graphQLRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if !strings.Contains(req.Query, "balance(owner: $owner, assetId: $assetId)") {
			t.Errorf("Unexpected query: %s", req.Query)
		}
		if req.Variables["owner"] != testFuelOwner {
			t.Errorf("Unexpected owner %s", req.Variables["owner"])
		}

		w.Header().Set("Content-Type", "application/json")
		amount, ok := amounts[req.Variables["assetId"]]
		if !ok {
			w.Write([]byte(`{"data":null,"errors":[{"message":"asset not found"}]}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{"balance": map[string]string{"amount": amount}},
		})
	}))
}

func TestFuelFetcher(t *testing.T) {
	tokens := registry.Default().TokenRefs(registry.ChainFuel)
	amounts := map[string]string{
		tokens[0].Address: "5000000",
		tokens[2].Address: "123000000000",
		tokens[3].Address: "1000000",
	}
	srv := newFakeFuelNode(t, amounts)
	defer srv.Close()

	f := NewFuelFetcher(registry.Chain{ID: registry.ChainFuel, Type: registry.ChainTypeFuel, RPCURL: srv.URL}, utils.NewDiscardLogsManager())
	defer f.Close()

	records := f.FetchBalances(context.Background(), testFuelOwner, tokens)

	want := []string{"5", "0", "123", "0.001"}
	for i, record := range records {
		if record.Symbol != tokens[i].Symbol {
			t.Errorf("Expected record %d to be %s, got %s", i, tokens[i].Symbol, record.Symbol)
		}
		if record.FormattedBalance != want[i] {
			t.Errorf("%s: expected %s, got %s", record.Symbol, want[i], record.FormattedBalance)
		}
	}
}

func TestFuelFetcherServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	records := FetchTokenBalances(context.Background(),
		registry.Chain{ID: registry.ChainFuel, Type: registry.ChainTypeFuel, RPCURL: srv.URL},
		testFuelOwner,
		registry.Default().TokenRefs(registry.ChainFuel),
		utils.NewDiscardLogsManager(),
	)

	if len(records) != 4 {
		t.Fatalf("Expected 4 records, got %d", len(records))
	}
	for _, record := range records {
		if record.Balance.Sign() != 0 {
			t.Errorf("%s: expected zero after server error", record.Symbol)
		}
	}
}
