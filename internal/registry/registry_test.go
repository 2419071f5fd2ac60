package registry

import (
	"errors"
	"testing"

	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/utils"
)

func chainIDs(list []Chain) []ChainID {
	ids := make([]ChainID, len(list))
	for i, c := range list {
		ids[i] = c.ID
	}
	return ids
}

func equalIDs(a, b []ChainID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestListChainsOrder(t *testing.T) {
	got := chainIDs(Default().ListChains())
	want := []ChainID{ChainWorld, ChainBase, ChainArbitrum, ChainOptimism, ChainFuel, ChainSolana}

	if !equalIDs(got, want) {
		t.Errorf("Expected chain order %v, got %v", want, got)
	}
}

func TestListTokensForChain(t *testing.T) {
	reg := Default()

	cases := map[ChainID][]string{
		ChainWorld:    {"WLD", "USDC", "ETH"},
		ChainOptimism: {"WLD", "USDC", "USDT", "ETH"},
		ChainSolana:   {"USDC", "USDT", "SOL"},
		ChainFuel:     {"USDC", "USDT", "FUEL", "ETH"},
		"UNKNOWN":     nil,
	}

	for chain, want := range cases {
		tokens := reg.ListTokensForChain(chain)
		if len(tokens) != len(want) {
			t.Errorf("%s: expected %d tokens, got %d", chain, len(want), len(tokens))
			continue
		}
		for i, token := range tokens {
			if token.Symbol != want[i] {
				t.Errorf("%s: expected token %d to be %s, got %s", chain, i, want[i], token.Symbol)
			}
		}
	}
}

func TestListChainsForToken(t *testing.T) {
	reg := Default()

	got := chainIDs(reg.ListChainsForToken("WLD"))
	if !equalIDs(got, []ChainID{ChainWorld, ChainOptimism}) {
		t.Errorf("Unexpected WLD chains: %v", got)
	}

	got = chainIDs(reg.ListChainsForToken("USDC"))
	want := []ChainID{ChainArbitrum, ChainBase, ChainFuel, ChainOptimism, ChainSolana, ChainWorld}
	if !equalIDs(got, want) {
		t.Errorf("Expected USDC chains %v, got %v", want, got)
	}
}

func expectInvalidSymbolPanic(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("Expected panic")
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrInvalidSymbol) {
			t.Errorf("Expected ErrInvalidSymbol panic, got %v", r)
		}
	}()
	fn()
}

func TestListChainsForTokenFailsLoudly(t *testing.T) {
	expectInvalidSymbolPanic(t, func() { Default().ListChainsForToken("DOGE") })

	broken := New(
		[]Chain{{ID: ChainWorld, Type: ChainTypeEVM}},
		[]Token{{Symbol: "WLD", Chains: []TokenChain{{Chain: ChainOptimism, Address: "0x1"}}}},
	)
	expectInvalidSymbolPanic(t, func() { broken.ListChainsForToken("WLD") })
}

func TestGetTokenBySymbol(t *testing.T) {
	reg := Default()

	token, ok := reg.GetTokenBySymbol("SOL")
	if !ok {
		t.Fatal("Expected SOL to be registered")
	}
	deployment, ok := token.On(ChainSolana)
	if !ok || !deployment.IsNative || deployment.Decimals != 9 {
		t.Errorf("Unexpected SOL deployment: %+v", deployment)
	}

	if _, ok := reg.GetTokenBySymbol("DOGE"); ok {
		t.Error("Expected DOGE to be unknown")
	}
}

func TestTokenRefs(t *testing.T) {
	refs := Default().TokenRefs(ChainFuel)
	if len(refs) != 4 {
		t.Fatalf("Expected 4 Fuel tokens, got %d", len(refs))
	}

	eth := refs[3]
	if eth.Symbol != "ETH" || eth.Decimals != 9 || !eth.IsNative {
		t.Errorf("Unexpected Fuel ETH ref: %+v", eth)
	}
}

func TestDefaultRegistryIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Expected built-in registry to validate, got %v", err)
	}
}

func TestValidateRejectsWrongAddressFormat(t *testing.T) {
	cases := []TokenChain{
		{Chain: ChainWorld, Address: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", Decimals: 6},
		{Chain: ChainFuel, Address: "0x2cFc85d8E48F8EAB294be644d9E25C3030863003", Decimals: 6},
		{Chain: ChainSolana, Address: "0x2cFc85d8E48F8EAB294be644d9E25C3030863003", Decimals: 6},
	}

	for _, deployment := range cases {
		reg := New(Default().ListChains(), []Token{{Symbol: "BAD", Chains: []TokenChain{deployment}}})
		if err := reg.Validate(); !errors.Is(err, ErrInvalidAddress) {
			t.Errorf("%s: expected ErrInvalidAddress, got %v", deployment.Chain, err)
		}
	}
}

func TestWithRPCOverrides(t *testing.T) {
	cm := utils.NewConfigManagerFromMap(utils.Config{
		"rpc_base":   "http://localhost:8545",
		"rpc_solana": "",
	})

	reg := Default().WithRPCOverrides(cm)

	base, _ := reg.GetChain(ChainBase)
	if base.RPCURL != "http://localhost:8545" {
		t.Errorf("Expected overridden BASE rpc, got %s", base.RPCURL)
	}
	solana, _ := reg.GetChain(ChainSolana)
	if solana.RPCURL != "https://api.mainnet-beta.solana.com" {
		t.Errorf("Expected default SOLANA rpc, got %s", solana.RPCURL)
	}

	original, _ := Default().GetChain(ChainBase)
	if original.RPCURL != "https://base.meowrpc.com" {
		t.Error("Expected default registry to be unchanged")
	}
}

func TestChainsByType(t *testing.T) {
	evm := Default().ChainsByType(ChainTypeEVM)
	if len(evm) != 4 {
		t.Errorf("Expected 4 EVM chains, got %d", len(evm))
	}
	if _, ok := ParseChainType("COSMOS"); ok {
		t.Error("Expected COSMOS to be rejected")
	}
}
