package registry

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/mr-tron/base58"
)

// Validate checks every token deployment against its chain's address format.
// Native entries only need a non-empty sentinel.
func (r *Registry) Validate() error {
	for _, token := range r.tokens {
		for _, deployment := range token.Chains {
			chain, ok := r.GetChain(deployment.Chain)
			if !ok {
				return fmt.Errorf("%w: token %s references unknown chain %s", ErrInvalidSymbol, token.Symbol, deployment.Chain)
			}
			if err := validAddress(chain.Type, deployment); err != nil {
				return fmt.Errorf("%s on %s: %w", token.Symbol, chain.ID, err)
			}
		}
	}
	return nil
}

func validAddress(chainType ChainType, deployment TokenChain) error {
	if deployment.Address == "" {
		return ErrInvalidAddress
	}
	if deployment.IsNative {
		return nil
	}

	switch chainType {
	case ChainTypeEVM:
		if !common.IsHexAddress(deployment.Address) || !strings.HasPrefix(deployment.Address, "0x") {
			return fmt.Errorf("%w: %s is not a 20-byte hex address", ErrInvalidAddress, deployment.Address)
		}
	case ChainTypeFuel:
		raw, err := hexutil.Decode(deployment.Address)
		if err != nil || len(raw) != 32 {
			return fmt.Errorf("%w: %s is not a 32-byte asset id", ErrInvalidAddress, deployment.Address)
		}
	case ChainTypeSolana:
		raw, err := base58.Decode(deployment.Address)
		if err != nil || len(raw) != 32 {
			return fmt.Errorf("%w: %s is not a base58 public key", ErrInvalidAddress, deployment.Address)
		}
	default:
		return fmt.Errorf("unknown chain type %q", chainType)
	}
	return nil
}
