package balances

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/registry"
	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/utils"
)

// SolanaFetcher reads lamports for the native asset and SPL token accounts
// for mints
type SolanaFetcher struct {
	chain  registry.Chain
	client *rpc.Client
	logger *utils.LogsManager
}

func NewSolanaFetcher(chain registry.Chain, logger *utils.LogsManager) *SolanaFetcher {
	return &SolanaFetcher{
		chain:  chain,
		client: rpc.New(chain.RPCURL),
		logger: logger,
	}
}

func (f *SolanaFetcher) chainType() registry.ChainType { return registry.ChainTypeSolana }

func (f *SolanaFetcher) Close() error {
	return f.client.Close()
}

func (f *SolanaFetcher) FetchBalances(ctx context.Context, owner string, tokens []registry.TokenRef) []Record {
	ownerKey, err := solana.PublicKeyFromBase58(owner)
	if err != nil {
		f.logger.Warn(fmt.Sprintf("%v %q on %s", ErrInvalidOwner, owner, f.chain.ID), "balances")
		return zeroRecords(f.chain.ID, tokens)
	}

	return fetchEach(ctx, f.chain.ID, tokens, f.logger, func(ctx context.Context, token registry.TokenRef) (Record, error) {
		var balance *big.Int
		var err error
		if token.IsNative {
			balance, err = f.nativeBalance(ctx, ownerKey)
		} else {
			balance, err = f.splBalance(ctx, ownerKey, token.Address)
		}
		if err != nil {
			return Record{}, err
		}
		return newRecord(f.chain.ID, token, balance), nil
	})
}

func (f *SolanaFetcher) nativeBalance(ctx context.Context, owner solana.PublicKey) (*big.Int, error) {
	out, err := f.client.GetBalance(ctx, owner, rpc.CommitmentConfirmed)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetUint64(out.Value), nil
}

// splBalance resolves the mint's token program (Token or Token-2022) and reads
// the first token account of owner held under it. No account is a zero balance.
func (f *SolanaFetcher) splBalance(ctx context.Context, owner solana.PublicKey, mintAddress string) (*big.Int, error) {
	mint, err := solana.PublicKeyFromBase58(mintAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid mint %q: %w", mintAddress, err)
	}

	info, err := f.client.GetAccountInfo(ctx, mint)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve token program of %s: %w", mintAddress, err)
	}
	program := info.Value.Owner

	accounts, err := f.client.GetTokenAccountsByOwner(ctx, owner,
		&rpc.GetTokenAccountsConfig{Mint: &mint},
		&rpc.GetTokenAccountsOpts{Encoding: solana.EncodingJSONParsed},
	)
	if err != nil {
		return nil, err
	}

	for _, account := range accounts.Value {
		if account == nil || account.Account.Data == nil {
			continue
		}
		if !account.Account.Owner.Equals(program) {
			continue
		}
		return parsedTokenAmount(account.Account.Data.GetRawJSON())
	}

	return new(big.Int), nil
}

type parsedTokenAccount struct {
	Parsed struct {
		Info struct {
			TokenAmount struct {
				Amount string `json:"amount"`
			} `json:"tokenAmount"`
		} `json:"info"`
	} `json:"parsed"`
}

func parsedTokenAmount(raw json.RawMessage) (*big.Int, error) {
	var account parsedTokenAccount
	if err := json.Unmarshal(raw, &account); err != nil {
		return nil, fmt.Errorf("failed to decode token account: %w", err)
	}

	amount, ok := new(big.Int).SetString(account.Parsed.Info.TokenAmount.Amount, 10)
	if !ok {
		return nil, fmt.Errorf("invalid token amount %q", account.Parsed.Info.TokenAmount.Amount)
	}
	return amount, nil
}
