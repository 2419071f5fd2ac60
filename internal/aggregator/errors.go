package aggregator

import "errors"

var ErrNoWallets = errors.New("no wallet addresses to aggregate")
