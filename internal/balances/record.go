package balances

import (
	"encoding/json"
	"math/big"

	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/registry"
)

// Record is the balance of one token on one chain at fetch time
type Record struct {
	ChainID          registry.ChainID
	TokenAddress     string
	Symbol           string
	Decimals         int
	Balance          *big.Int
	FormattedBalance string
}

// RecordView is the wire form of a Record
type RecordView struct {
	ChainID          registry.ChainID `json:"chainId"`
	TokenAddress     string           `json:"tokenAddress"`
	Symbol           string           `json:"symbol"`
	Decimals         int              `json:"decimals"`
	RawBalance       string           `json:"rawBalance"`
	FormattedBalance string           `json:"formattedBalance"`
}

// View encodes the raw balance as a decimal string
func (r Record) View() RecordView {
	raw := "0"
	if r.Balance != nil {
		raw = r.Balance.String()
	}
	return RecordView{
		ChainID:          r.ChainID,
		TokenAddress:     r.TokenAddress,
		Symbol:           r.Symbol,
		Decimals:         r.Decimals,
		RawBalance:       raw,
		FormattedBalance: r.FormattedBalance,
	}
}

func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.View())
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var in RecordView
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	balance, ok := new(big.Int).SetString(in.RawBalance, 10)
	if !ok {
		balance = new(big.Int)
	}
	*r = Record{
		ChainID:          in.ChainID,
		TokenAddress:     in.TokenAddress,
		Symbol:           in.Symbol,
		Decimals:         in.Decimals,
		Balance:          balance,
		FormattedBalance: in.FormattedBalance,
	}
	return nil
}

func newRecord(chain registry.ChainID, token registry.TokenRef, balance *big.Int) Record {
	if balance == nil {
		balance = new(big.Int)
	}
	return Record{
		ChainID:          chain,
		TokenAddress:     token.Address,
		Symbol:           token.Symbol,
		Decimals:         token.Decimals,
		Balance:          balance,
		FormattedBalance: FormatUnits(balance, token.Decimals),
	}
}

func zeroRecords(chain registry.ChainID, tokens []registry.TokenRef) []Record {
	records := make([]Record, len(tokens))
	for i, token := range tokens {
		records[i] = newRecord(chain, token, nil)
	}
	return records
}
