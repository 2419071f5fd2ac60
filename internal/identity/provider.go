package identity

import "context"

// SignStatus mirrors the provider's success/error tag
type SignStatus string

const (
	StatusSuccess SignStatus = "success"
	StatusError   SignStatus = "error"
)

// SignResult is the tagged outcome of a signature request
type SignResult struct {
	Status    SignStatus
	Signature string
	Reason    string
}

func (r SignResult) OK() bool {
	return r.Status == StatusSuccess && r.Signature != ""
}

// Provider is the external identity the wallet authenticates with. It proves an
// address and signs messages on its behalf.
type Provider interface {
	Address() string
	IsConnected() bool
	SignIn(ctx context.Context) error
	SignOut(ctx context.Context) error
	SignMessage(ctx context.Context, message string) SignResult
}
