package prices

import "errors"

var ErrPriceFeedUnavailable = errors.New("price feed unavailable")
