package onramp

import (
	"errors"
	"fmt"
)

var (
	ErrMissingCredentials   = errors.New("CDP_KEY_ID and CDP_SECRET must be set")
	ErrAddressesRequired    = errors.New("addresses parameter is required")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrUnsupportedKey       = errors.New("CDP secret is neither a PEM EC key nor a base64 Ed25519 key")
)

// APIError carries a non-2xx response from the gateway
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("onramp gateway returned %d: %s", e.Status, e.Body)
}
