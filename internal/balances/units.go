package balances

import (
	"fmt"
	"math/big"
	"strings"
)

// FormatUnits renders value / 10^decimals as a decimal string without
// trailing fractional zeros, e.g. 1500000 with 6 decimals is "1.5".
func FormatUnits(value *big.Int, decimals int) string {
	if value == nil {
		return "0"
	}

	digits := new(big.Int).Abs(value).String()
	negative := value.Sign() < 0

	if decimals > 0 {
		if len(digits) <= decimals {
			digits = strings.Repeat("0", decimals-len(digits)+1) + digits
		}
		point := len(digits) - decimals
		integer, fraction := digits[:point], strings.TrimRight(digits[point:], "0")
		digits = integer
		if fraction != "" {
			digits += "." + fraction
		}
	}

	if negative {
		return "-" + digits
	}
	return digits
}

// ParseUnits is the inverse of FormatUnits: "1.5" with 6 decimals is 1500000
func ParseUnits(amount string, decimals int) (*big.Int, error) {
	amount = strings.TrimSpace(amount)
	negative := strings.HasPrefix(amount, "-")
	amount = strings.TrimPrefix(amount, "-")

	integer, fraction, _ := strings.Cut(amount, ".")
	if integer == "" && fraction == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
	}
	if len(fraction) > decimals {
		if strings.Trim(fraction[decimals:], "0") != "" {
			return nil, fmt.Errorf("%w: %q (%d decimals)", ErrTooManyDecimals, amount, decimals)
		}
		fraction = fraction[:decimals]
	}

	digits := integer + fraction + strings.Repeat("0", decimals-len(fraction))
	if digits == "" {
		digits = "0"
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
		}
	}

	value, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
	}
	if negative {
		value.Neg(value)
	}
	return value, nil
}
