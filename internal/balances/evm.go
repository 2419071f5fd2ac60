package balances

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/registry"
	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/utils"
)

// Multicall3 is deployed at the same address on every supported EVM chain
var multicall3Address = common.HexToAddress("0xcA11bde05977b3631167028862bE2a173976CA11")

const multicall3JSON = `[{"inputs":[{"components":[{"internalType":"address","name":"target","type":"address"},{"internalType":"bool","name":"allowFailure","type":"bool"},{"internalType":"bytes","name":"callData","type":"bytes"}],"internalType":"struct Multicall3.Call3[]","name":"calls","type":"tuple[]"}],"name":"aggregate3","outputs":[{"components":[{"internalType":"bool","name":"success","type":"bool"},{"internalType":"bytes","name":"returnData","type":"bytes"}],"internalType":"struct Multicall3.Result[]","name":"returnData","type":"tuple[]"}],"stateMutability":"payable","type":"function"}]`

const erc20BalanceOfJSON = `[{"constant":true,"inputs":[{"name":"owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"}]`

var (
	multicall3ABI = mustParseABI(multicall3JSON)
	erc20ABI      = mustParseABI(erc20BalanceOfJSON)
)

func mustParseABI(definition string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(definition))
	if err != nil {
		panic(err)
	}
	return parsed
}

type call3 struct {
	Target       common.Address
	AllowFailure bool
	CallData     []byte
}

type call3Result struct {
	Success    bool
	ReturnData []byte
}

// EvmFetcher reads ERC-20 balances through one Multicall3 aggregate3 call and
// native balances through eth_getBalance
type EvmFetcher struct {
	chain  registry.Chain
	client *ethclient.Client
	logger *utils.LogsManager
}

func NewEvmFetcher(chain registry.Chain, logger *utils.LogsManager) (*EvmFetcher, error) {
	client, err := ethclient.Dial(chain.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s rpc: %w", chain.ID, err)
	}
	return &EvmFetcher{chain: chain, client: client, logger: logger}, nil
}

func (f *EvmFetcher) chainType() registry.ChainType { return registry.ChainTypeEVM }

func (f *EvmFetcher) Close() error {
	f.client.Close()
	return nil
}

func (f *EvmFetcher) FetchBalances(ctx context.Context, owner string, tokens []registry.TokenRef) []Record {
	records := zeroRecords(f.chain.ID, tokens)
	if !common.IsHexAddress(owner) {
		f.logger.Warn(fmt.Sprintf("%v %q on %s", ErrInvalidOwner, owner, f.chain.ID), "balances")
		return records
	}
	ownerAddress := common.HexToAddress(owner)

	var batched []int
	for i, token := range tokens {
		if !token.IsNative {
			batched = append(batched, i)
			continue
		}

		balance, err := f.client.BalanceAt(ctx, ownerAddress, nil)
		if err != nil {
			f.logger.Warn(fmt.Sprintf("Failed to fetch native %s balance on %s, using zero: %v", token.Symbol, f.chain.ID, err), "balances")
			continue
		}
		records[i] = newRecord(f.chain.ID, token, balance)
	}

	if len(batched) == 0 {
		return records
	}

	batch := make([]registry.TokenRef, len(batched))
	for j, i := range batched {
		batch[j] = tokens[i]
	}

	amounts, err := f.balanceOfBatch(ctx, ownerAddress, batch)
	if err != nil {
		f.logger.Warn(fmt.Sprintf("Multicall on %s failed, using zero for %d tokens: %v", f.chain.ID, len(batch), err), "balances")
		return records
	}

	for j, i := range batched {
		if amounts[j] == nil {
			f.logger.Debug(fmt.Sprintf("balanceOf %s on %s reverted, using zero", tokens[i].Symbol, f.chain.ID), "balances")
			continue
		}
		records[i] = newRecord(f.chain.ID, tokens[i], amounts[j])
	}
	return records
}

// balanceOfBatch returns one amount per token; nil marks a reverted call
func (f *EvmFetcher) balanceOfBatch(ctx context.Context, owner common.Address, tokens []registry.TokenRef) ([]*big.Int, error) {
	callData, err := erc20ABI.Pack("balanceOf", owner)
	if err != nil {
		return nil, err
	}

	calls := make([]call3, len(tokens))
	for i, token := range tokens {
		calls[i] = call3{
			Target:       common.HexToAddress(token.Address),
			AllowFailure: true,
			CallData:     callData,
		}
	}

	input, err := multicall3ABI.Pack("aggregate3", calls)
	if err != nil {
		return nil, err
	}

	output, err := f.client.CallContract(ctx, ethereum.CallMsg{To: &multicall3Address, Data: input}, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMulticallFailed, err)
	}

	unpacked, err := multicall3ABI.Unpack("aggregate3", output)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMulticallFailed, err)
	}
	results := *abi.ConvertType(unpacked[0], new([]call3Result)).(*[]call3Result)
	if len(results) != len(tokens) {
		return nil, fmt.Errorf("%w: expected %d results, got %d", ErrMulticallFailed, len(tokens), len(results))
	}

	amounts := make([]*big.Int, len(results))
	for i, result := range results {
		if !result.Success {
			continue
		}
		values, err := erc20ABI.Unpack("balanceOf", result.ReturnData)
		if err != nil || len(values) == 0 {
			continue
		}
		if amount, ok := values[0].(*big.Int); ok {
			amounts[i] = amount
		}
	}
	return amounts, nil
}
