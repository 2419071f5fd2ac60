package prices

import (
	"strings"
	"time"
)

// Quote is one DefiLlama coin entry
type Quote struct {
	Price      float64 `json:"price"`
	Symbol     string  `json:"symbol"`
	Decimals   int     `json:"decimals"`
	Confidence float64 `json:"confidence"`
	Timestamp  int64   `json:"timestamp"`
}

// Feed is a USD price snapshot indexed by upper-case symbol
type Feed struct {
	Coins     map[string]Quote `json:"coins"`
	UpdatedAt time.Time        `json:"updatedAt"`
	bySymbol  map[string]Quote
}

// NewFeed indexes coins by symbol. When two coin ids carry the same symbol the
// first one in order wins.
func NewFeed(coins map[string]Quote, order []string, updatedAt time.Time) *Feed {
	feed := &Feed{Coins: coins, UpdatedAt: updatedAt, bySymbol: make(map[string]Quote)}

	for _, id := range order {
		if quote, ok := coins[id]; ok {
			feed.index(quote)
		}
	}
	for _, quote := range coins {
		feed.index(quote)
	}
	return feed
}

// StaticFeed builds a feed from fixed symbol prices
func StaticFeed(prices map[string]float64) *Feed {
	coins := make(map[string]Quote, len(prices))
	for symbol, price := range prices {
		coins["static:"+symbol] = Quote{Price: price, Symbol: symbol, Confidence: 1}
	}
	return NewFeed(coins, nil, time.Now())
}

func (f *Feed) index(quote Quote) {
	symbol := strings.ToUpper(quote.Symbol)
	if _, seen := f.bySymbol[symbol]; !seen && symbol != "" {
		f.bySymbol[symbol] = quote
	}
}

// Price returns the USD price of symbol, or 0 when it is unknown. ETH is
// priced through WETH when the feed carries it.
func (f *Feed) Price(symbol string) float64 {
	if f == nil {
		return 0
	}

	symbol = strings.ToUpper(symbol)
	if symbol == "ETH" {
		if quote, ok := f.bySymbol["WETH"]; ok {
			return nonNegative(quote.Price)
		}
	}
	return nonNegative(f.bySymbol[symbol].Price)
}

func nonNegative(price float64) float64 {
	if price < 0 {
		return 0
	}
	return price
}

// Symbols lists the symbols the feed can price
func (f *Feed) Symbols() []string {
	out := make([]string, 0, len(f.bySymbol))
	for symbol := range f.bySymbol {
		out = append(out, symbol)
	}
	return out
}
