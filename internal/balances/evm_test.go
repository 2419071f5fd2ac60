package balances

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/registry"
	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/utils"
)

const testEvmOwner = "0x7E5F4552091A69125d5DfCb7b8C2659029395Bdf"

type rpcRequest struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

func writeRPCResult(w http.ResponseWriter, id json.RawMessage, result interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"jsonrpc": "2.0", "id": id, "result": result})
}

func writeRPCError(w http.ResponseWriter, id json.RawMessage, message string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      id,
		"error":   map[string]interface{}{"code": -32000, "message": message},
	})
}

type fakeEvmNode struct {
	native        *big.Int
	tokens        map[common.Address]*big.Int
	failMulticall bool
	multicalls    int32
	t             *testing.T
}

func (n *fakeEvmNode) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	switch req.Method {
	case "eth_getBalance":
		var owner string
		json.Unmarshal(req.Params[0], &owner)
		if !strings.EqualFold(owner, testEvmOwner) {
			n.t.Errorf("Unexpected owner %s", owner)
		}
		writeRPCResult(w, req.ID, hexutil.EncodeBig(n.native))

	case "eth_call":
		atomic.AddInt32(&n.multicalls, 1)
		if n.failMulticall {
			writeRPCError(w, req.ID, "execution reverted")
			return
		}
		result, err := n.aggregate3(req.Params[0])
		if err != nil {
			writeRPCError(w, req.ID, err.Error())
			return
		}
		writeRPCResult(w, req.ID, hexutil.Encode(result))

	default:
		writeRPCError(w, req.ID, "method not found: "+req.Method)
	}
}

func (n *fakeEvmNode) aggregate3(rawArg json.RawMessage) ([]byte, error) {
	var arg map[string]string
	if err := json.Unmarshal(rawArg, &arg); err != nil {
		return nil, err
	}
	if !strings.EqualFold(arg["to"], multicall3Address.Hex()) {
		return nil, fmt.Errorf("call sent to %s", arg["to"])
	}
	input := arg["input"]
	if input == "" {
		input = arg["data"]
	}
	data, err := hexutil.Decode(input)
	if err != nil {
		return nil, err
	}

	method := multicall3ABI.Methods["aggregate3"]
	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, err
	}
	calls := *abi.ConvertType(args[0], new([]call3)).(*[]call3)

	balanceOf := erc20ABI.Methods["balanceOf"]
	results := make([]call3Result, len(calls))
	for i, call := range calls {
		if !call.AllowFailure {
			n.t.Errorf("Expected allowFailure on every call")
		}
		if string(call.CallData[:4]) != string(balanceOf.ID) {
			n.t.Errorf("Expected balanceOf selector, got %x", call.CallData[:4])
		}
		amount, ok := n.tokens[call.Target]
		if !ok {
			continue
		}
		ret, err := balanceOf.Outputs.Pack(amount)
		if err != nil {
			return nil, err
		}
		results[i] = call3Result{Success: true, ReturnData: ret}
	}

	return method.Outputs.Pack(results)
}

func ether(whole int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(whole), big.NewInt(1_000_000_000_000_000_000))
}

func newTestEvmFetcher(t *testing.T, node *fakeEvmNode) *EvmFetcher {
	t.Helper()
	node.t = t
	srv := httptest.NewServer(node)
	t.Cleanup(srv.Close)

	f, err := NewEvmFetcher(registry.Chain{ID: registry.ChainOptimism, Type: registry.ChainTypeEVM, RPCURL: srv.URL}, utils.NewDiscardLogsManager())
	if err != nil {
		t.Fatalf("NewEvmFetcher failed: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func TestEvmFetcherMulticallAndNative(t *testing.T) {
	tokens := registry.Default().TokenRefs(registry.ChainOptimism)
	node := &fakeEvmNode{
		native: big.NewInt(1_500_000_000_000_000_000),
		tokens: map[common.Address]*big.Int{
			common.HexToAddress(tokens[0].Address): ether(10),
			common.HexToAddress(tokens[1].Address): big.NewInt(2_500_000),
		},
	}
	f := newTestEvmFetcher(t, node)

	records := f.FetchBalances(context.Background(), testEvmOwner, tokens)

	want := map[string]string{"WLD": "10", "USDC": "2.5", "USDT": "0", "ETH": "1.5"}
	if len(records) != len(tokens) {
		t.Fatalf("Expected %d records, got %d", len(tokens), len(records))
	}
	for i, record := range records {
		if record.Symbol != tokens[i].Symbol {
			t.Errorf("Expected record %d to be %s, got %s", i, tokens[i].Symbol, record.Symbol)
		}
		if record.FormattedBalance != want[record.Symbol] {
			t.Errorf("%s: expected %s, got %s", record.Symbol, want[record.Symbol], record.FormattedBalance)
		}
		if record.ChainID != registry.ChainOptimism {
			t.Errorf("%s: expected chain OPTIMISM, got %s", record.Symbol, record.ChainID)
		}
	}

	if calls := atomic.LoadInt32(&node.multicalls); calls != 1 {
		t.Errorf("Expected a single multicall, got %d", calls)
	}
}

func TestEvmFetcherDegradesFailedMulticallToZero(t *testing.T) {
	tokens := registry.Default().TokenRefs(registry.ChainOptimism)
	node := &fakeEvmNode{native: ether(2), failMulticall: true}
	f := newTestEvmFetcher(t, node)

	records := f.FetchBalances(context.Background(), testEvmOwner, tokens)

	for _, record := range records {
		want := "0"
		if record.Symbol == "ETH" {
			want = "2"
		}
		if record.FormattedBalance != want {
			t.Errorf("%s: expected %s, got %s", record.Symbol, want, record.FormattedBalance)
		}
		if record.Balance == nil {
			t.Errorf("%s: expected a non-nil balance", record.Symbol)
		}
	}
}

func TestEvmFetcherRejectsInvalidOwner(t *testing.T) {
	node := &fakeEvmNode{native: ether(1)}
	f := newTestEvmFetcher(t, node)

	records := f.FetchBalances(context.Background(), "not-an-address", registry.Default().TokenRefs(registry.ChainBase))
	for _, record := range records {
		if record.Balance.Sign() != 0 {
			t.Errorf("%s: expected zero balance", record.Symbol)
		}
	}
	if atomic.LoadInt32(&node.multicalls) != 0 {
		t.Error("Expected no RPC traffic for an invalid owner")
	}
}
