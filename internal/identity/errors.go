package identity

import "errors"

var (
	ErrNotSignedIn      = errors.New("identity provider is not signed in")
	ErrInvalidSignature = errors.New("invalid signature")
)
