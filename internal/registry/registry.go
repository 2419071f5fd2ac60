package registry

import (
	"fmt"
	"strings"

	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/utils"
)

// Registry is a read-only view of the supported chains and tokens
type Registry struct {
	chains []Chain
	tokens []Token
}

// Default returns the built-in registry
func Default() *Registry {
	return &Registry{chains: chains, tokens: tokens}
}

// New builds a registry from custom tables, mostly for tests
func New(chainList []Chain, tokenList []Token) *Registry {
	return &Registry{chains: chainList, tokens: tokenList}
}

// WithRPCOverrides returns a copy whose RPC URLs are replaced by the
// rpc_<chain> settings that are set
func (r *Registry) WithRPCOverrides(cm *utils.ConfigManager) *Registry {
	overridden := make([]Chain, len(r.chains))
	for i, chain := range r.chains {
		chain.RPCURL = cm.GetConfigWithDefault("rpc_"+strings.ToLower(string(chain.ID)), chain.RPCURL)
		overridden[i] = chain
	}
	return &Registry{chains: overridden, tokens: r.tokens}
}

// ListChains returns all chains in registry order
func (r *Registry) ListChains() []Chain {
	out := make([]Chain, len(r.chains))
	copy(out, r.chains)
	return out
}

func (r *Registry) GetChain(id ChainID) (Chain, bool) {
	for _, chain := range r.chains {
		if chain.ID == id {
			return chain, true
		}
	}
	return Chain{}, false
}

// ChainsByType returns the chains of one type in registry order
func (r *Registry) ChainsByType(chainType ChainType) []Chain {
	var out []Chain
	for _, chain := range r.chains {
		if chain.Type == chainType {
			out = append(out, chain)
		}
	}
	return out
}

// ListTokens returns all tokens in registry order
func (r *Registry) ListTokens() []Token {
	out := make([]Token, len(r.tokens))
	copy(out, r.tokens)
	return out
}

// ListTokensForChain returns the tokens deployed on chain, in token order
func (r *Registry) ListTokensForChain(id ChainID) []Token {
	var out []Token
	for _, token := range r.tokens {
		if _, ok := token.On(id); ok {
			out = append(out, token)
		}
	}
	return out
}

// TokenRefs flattens ListTokensForChain into what a balance fetcher consumes
func (r *Registry) TokenRefs(id ChainID) []TokenRef {
	var refs []TokenRef
	for _, token := range r.ListTokensForChain(id) {
		deployment, _ := token.On(id)
		refs = append(refs, TokenRef{
			Symbol:   token.Symbol,
			Address:  deployment.Address,
			Decimals: deployment.Decimals,
			IsNative: deployment.IsNative,
		})
	}
	return refs
}

// ListChainsForToken returns the chains symbol is deployed on. It panics with
// ErrInvalidSymbol when the symbol or one of its chains is not registered.
func (r *Registry) ListChainsForToken(symbol string) []Chain {
	token, ok := r.GetTokenBySymbol(symbol)
	if !ok {
		panic(fmt.Errorf("%w: unknown token %q", ErrInvalidSymbol, symbol))
	}

	out := make([]Chain, 0, len(token.Chains))
	for _, deployment := range token.Chains {
		chain, ok := r.GetChain(deployment.Chain)
		if !ok {
			panic(fmt.Errorf("%w: token %s references unknown chain %s", ErrInvalidSymbol, symbol, deployment.Chain))
		}
		out = append(out, chain)
	}
	return out
}

func (r *Registry) GetTokenBySymbol(symbol string) (Token, bool) {
	for _, token := range r.tokens {
		if token.Symbol == symbol {
			return token, true
		}
	}
	return Token{}, false
}
