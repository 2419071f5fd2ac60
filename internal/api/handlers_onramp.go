package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/onramp"
)

const maxOnrampBody = 64 * 1024

// SessionTokenRequest is the body of POST /api/session
type SessionTokenRequest struct {
	Addresses []onramp.AddressEntry `json:"addresses"`
	Assets    []string              `json:"assets,omitempty"`
}

func (s *APIServer) onrampAvailable(w http.ResponseWriter) bool {
	if s.services.Onramp == nil || !s.services.Onramp.Enabled() {
		writeError(w, http.StatusServiceUnavailable, "On-ramp is not configured")
		return false
	}
	return true
}

// handleSessionToken exchanges destination addresses for an on-ramp session token
func (s *APIServer) handleSessionToken(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req SessionTokenRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxOnrampBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Addresses) == 0 {
		writeError(w, http.StatusBadRequest, "Addresses parameter is required")
		return
	}
	if !s.onrampAvailable(w) {
		return
	}

	token, err := s.services.Onramp.CreateSessionToken(r.Context(), req.Addresses, req.Assets)
	if err != nil {
		s.writeOnrampError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, token)
}

// handleQuotes forwards the body to the on-ramp sessions endpoint as is
func (s *APIServer) handleQuotes(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxOnrampBody))
	if err != nil || (len(body) > 0 && !json.Valid(body)) {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !s.onrampAvailable(w) {
		return
	}

	resp, err := s.services.Onramp.CreateOnrampSession(r.Context(), body)
	if err != nil {
		s.writeOnrampError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(resp)
}

func (s *APIServer) writeOnrampError(w http.ResponseWriter, err error) {
	var apiErr *onramp.APIError
	switch {
	case errors.Is(err, onramp.ErrAddressesRequired):
		writeError(w, http.StatusBadRequest, "Addresses parameter is required")
	case errors.Is(err, onramp.ErrAuthenticationFailed):
		writeError(w, http.StatusUnauthorized, "Authentication failed")
	case errors.As(err, &apiErr):
		s.logger.Warn(fmt.Sprintf("On-ramp gateway error: %v", err), "api")
		writeError(w, http.StatusBadGateway, fmt.Sprintf("On-ramp gateway returned %d", apiErr.Status))
	default:
		s.logger.Error(fmt.Sprintf("On-ramp request failed: %v", err), "api")
		writeError(w, http.StatusInternalServerError, "Failed to reach on-ramp gateway")
	}
}
