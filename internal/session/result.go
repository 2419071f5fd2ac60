package session

import (
	"context"
	"errors"

	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/crypto"
	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/envelope"
	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/identity"
	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/keys"
)

// ErrorKind classifies why a PIN attempt failed. Every kind is retryable.
type ErrorKind string

const (
	ErrNone             ErrorKind = ""
	ErrNotConnected     ErrorKind = "NotConnected"
	ErrNoWallet         ErrorKind = "NoWallet"
	ErrSignatureFailed  ErrorKind = "SignatureFailed"
	ErrInvalidPIN       ErrorKind = "InvalidPIN"
	ErrWalletMismatch   ErrorKind = "WalletMismatch"
	ErrInvalidPinFormat ErrorKind = "InvalidPinFormat"
	ErrUnknown          ErrorKind = "Unknown"
)

// Result is the outcome of one SubmitPin call. Stale marks an attempt that was
// superseded by a newer one and therefore changed nothing.
type Result struct {
	Err       ErrorKind      `json:"error,omitempty"`
	Stale     bool           `json:"stale,omitempty"`
	Created   bool           `json:"created,omitempty"`
	Addresses keys.Addresses `json:"addresses"`
	Cause     error          `json:"-"`
}

func (r Result) OK() bool {
	return r.Err == ErrNone && !r.Stale
}

func (r Result) String() string {
	if r.OK() {
		return "ok"
	}
	if r.Stale {
		return "stale"
	}
	if r.Cause != nil {
		return string(r.Err) + ": " + r.Cause.Error()
	}
	return string(r.Err)
}

// UserMessage is the text shown to the user. A wrong PIN and a signature from a
// different key read the same, so the message does not tell them apart.
func (r Result) UserMessage() string {
	switch {
	case r.OK():
		return ""
	case r.Stale:
		return "This attempt was replaced by a newer one."
	}

	switch r.Err {
	case ErrNotConnected:
		return "Sign in to continue."
	case ErrSignatureFailed:
		return "The signature request was declined. Please try again."
	case ErrInvalidPinFormat:
		return "Enter a 4-digit PIN."
	default:
		return "Could not unlock the wallet. Check your PIN and try again."
	}
}

func failure(kind ErrorKind, cause error) Result {
	return Result{Err: kind, Cause: cause}
}

// kindOf maps package errors onto the session taxonomy
func kindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ErrNone
	case errors.Is(err, crypto.ErrInvalidPinFormat):
		return ErrInvalidPinFormat
	case errors.Is(err, crypto.ErrDecryptionFailed):
		return ErrInvalidPIN
	case errors.Is(err, envelope.ErrNotFound):
		return ErrNoWallet
	case errors.Is(err, identity.ErrNotSignedIn):
		return ErrNotConnected
	case errors.Is(err, identity.ErrInvalidSignature), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ErrSignatureFailed
	default:
		return ErrUnknown
	}
}
