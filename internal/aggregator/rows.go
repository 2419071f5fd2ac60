package aggregator

import (
	"encoding/json"
	"math/big"
	"sort"
	"strconv"
	"strings"

	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/balances"
	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/registry"
)

// PriceSource prices a token symbol in USD, 0 when unknown
type PriceSource interface {
	Price(symbol string) float64
}

// Row is a balance record annotated with its USD value
type Row struct {
	balances.Record
	USDValue float64
}

func (r Row) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		balances.RecordView
		USDValue float64 `json:"usdValue"`
	}{r.Record.View(), r.USDValue})
}

// Group is the per-symbol total across chains
type Group struct {
	Symbol        string  `json:"symbol"`
	TotalBalance  string  `json:"totalBalance"`
	TotalUSDValue float64 `json:"totalUsdValue"`
	Rows          []Row   `json:"chains"`
}

// PriceRows flattens per-chain balances in the chain order of reg, drops
// records without a symbol and prices the rest. Chains reg does not know come
// last, by name. A nil reg orders every chain by name.
func PriceRows(reg *registry.Registry, byChain map[registry.ChainID][]balances.Record, feed PriceSource) []Row {
	var rows []Row
	for _, chainID := range chainOrder(reg, byChain) {
		for _, record := range byChain[chainID] {
			if record.Symbol == "" {
				continue
			}
			rows = append(rows, Row{Record: record, USDValue: usdValue(record.FormattedBalance, record.Symbol, feed)})
		}
	}
	return rows
}

func chainOrder(reg *registry.Registry, byChain map[registry.ChainID][]balances.Record) []registry.ChainID {
	known := make(map[registry.ChainID]bool)
	var order []registry.ChainID
	if reg != nil {
		for _, chain := range reg.ListChains() {
			known[chain.ID] = true
			if _, ok := byChain[chain.ID]; ok {
				order = append(order, chain.ID)
			}
		}
	}

	var extra []registry.ChainID
	for id := range byChain {
		if !known[id] {
			extra = append(extra, id)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(order, extra...)
}

func usdValue(formatted, symbol string, feed PriceSource) float64 {
	if feed == nil {
		return 0
	}
	price := feed.Price(symbol)
	if price <= 0 {
		return 0
	}
	amount, err := strconv.ParseFloat(formatted, 64)
	if err != nil || amount <= 0 {
		return 0
	}
	return amount * price
}

// GroupRows sums rows per symbol and sorts the groups by USD value, highest
// first. Equal values keep first-seen order.
func GroupRows(rows []Row) []Group {
	var groups []Group
	totals := make(map[string]*big.Rat)
	index := make(map[string]int)

	for _, row := range rows {
		i, ok := index[row.Symbol]
		if !ok {
			i = len(groups)
			index[row.Symbol] = i
			groups = append(groups, Group{Symbol: row.Symbol})
			totals[row.Symbol] = new(big.Rat)
		}
		groups[i].Rows = append(groups[i].Rows, row)
		groups[i].TotalUSDValue += row.USDValue
		if amount, ok := new(big.Rat).SetString(row.FormattedBalance); ok {
			totals[row.Symbol].Add(totals[row.Symbol], amount)
		}
	}

	for i := range groups {
		groups[i].TotalBalance = formatRat(totals[groups[i].Symbol])
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].TotalUSDValue > groups[j].TotalUSDValue
	})
	return groups
}

// formatRat prints an exact decimal; balances never need more than 18 places
func formatRat(r *big.Rat) string {
	s := r.FloatString(18)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	if s == "-0" {
		return "0"
	}
	return s
}

// NonZero keeps groups holding a positive balance
func NonZero(groups []Group) []Group {
	var out []Group
	for _, group := range groups {
		if amount, ok := new(big.Rat).SetString(group.TotalBalance); ok && amount.Sign() > 0 {
			out = append(out, group)
		}
	}
	return out
}

// ChainBreakdown lists the rows of symbol, highest USD value first
func ChainBreakdown(rows []Row, symbol string) []Row {
	symbol = strings.ToUpper(symbol)
	var out []Row
	for _, row := range rows {
		if strings.ToUpper(row.Symbol) == symbol {
			out = append(out, row)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].USDValue > out[j].USDValue
	})
	return out
}
