package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/balances"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return false
	}
	return true
}

// walletsFromQuery reads the evm, sol and fuel query parameters
func walletsFromQuery(r *http.Request) balances.Wallets {
	query := r.URL.Query()
	return balances.Wallets{
		EVM:    strings.TrimSpace(query.Get("evm")),
		Solana: strings.TrimSpace(query.Get("sol")),
		Fuel:   strings.TrimSpace(query.Get("fuel")),
	}
}
