package registry

import "errors"

var (
	// ErrInvalidSymbol marks a corrupt static registry, not a user error
	ErrInvalidSymbol  = errors.New("InvalidSymbol")
	ErrInvalidAddress = errors.New("invalid token address for chain")
)
