package keys

import "errors"

var (
	ErrInvalidSeedLength = errors.New("seed must be 32 bytes")
	ErrInvalidEvmKey     = errors.New("seed is not a valid secp256k1 private key")
)
