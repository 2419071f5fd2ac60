package registry

// ChainID is the registry key of a supported network
type ChainID string

const (
	ChainWorld    ChainID = "WORLD"
	ChainBase     ChainID = "BASE"
	ChainArbitrum ChainID = "ARBITRUM"
	ChainOptimism ChainID = "OPTIMISM"
	ChainFuel     ChainID = "FUEL"
	ChainSolana   ChainID = "SOLANA"
)

// ChainType selects the RPC dialect of a chain
type ChainType string

const (
	ChainTypeEVM    ChainType = "EVM"
	ChainTypeSolana ChainType = "SOLANA"
	ChainTypeFuel   ChainType = "FUEL"
)

// ParseChainType accepts the wire names EVM, SOLANA and FUEL
func ParseChainType(s string) (ChainType, bool) {
	switch ChainType(s) {
	case ChainTypeEVM, ChainTypeSolana, ChainTypeFuel:
		return ChainType(s), true
	}
	return "", false
}

// Chain describes one network
type Chain struct {
	ID            ChainID   `json:"id" yaml:"id"`
	Name          string    `json:"name" yaml:"name"`
	Type          ChainType `json:"chainType" yaml:"chainType"`
	RPCURL        string    `json:"rpcURL" yaml:"rpcURL"`
	Icon          string    `json:"iconImage" yaml:"iconImage"`
	NativeChainID uint64    `json:"nativeChainId,omitempty" yaml:"nativeChainId,omitempty"`
}

// TokenChain is a token's deployment on one chain
type TokenChain struct {
	Chain    ChainID `json:"chain" yaml:"chain"`
	Address  string  `json:"address" yaml:"address"`
	Decimals int     `json:"decimals" yaml:"decimals"`
	IsNative bool    `json:"isNative,omitempty" yaml:"isNative,omitempty"`
}

// Token describes one asset and the chains it exists on, in registry order
type Token struct {
	Symbol string       `json:"symbol" yaml:"symbol"`
	Name   string       `json:"name" yaml:"name"`
	Icon   string       `json:"iconImage" yaml:"iconImage"`
	Chains []TokenChain `json:"chains" yaml:"chains"`
}

// On returns the token's deployment on chain
func (t Token) On(chain ChainID) (TokenChain, bool) {
	for _, c := range t.Chains {
		if c.Chain == chain {
			return c, true
		}
	}
	return TokenChain{}, false
}

// TokenRef is what a balance fetcher needs to know about a token on one chain
type TokenRef struct {
	Symbol   string
	Address  string
	Decimals int
	IsNative bool
}
