package balances

import "errors"

var (
	ErrUnknownChain     = errors.New("chain is not registered")
	ErrUnsupportedChain = errors.New("unsupported chain type")
	ErrInvalidOwner     = errors.New("invalid owner address")
	ErrInvalidAmount    = errors.New("invalid decimal amount")
	ErrTooManyDecimals  = errors.New("amount has more fractional digits than the token")
	ErrMulticallFailed  = errors.New("multicall failed")
)
