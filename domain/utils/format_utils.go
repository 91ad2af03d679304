package utils

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// LamportsPerSOL is the number of base units in one whole token
const LamportsPerSOL = 1_000_000_000

// FormatShortNotation formats a number using short notation (e.g., 50k instead of 50000)
func FormatShortNotation(value int64) string {
	absValue := value
	sign := ""
	if value < 0 {
		absValue = -value
		sign = "-"
	}

	switch {
	case absValue >= 1_000_000_000_000:
		return fmt.Sprintf("%s%.2fT", sign, float64(absValue)/1_000_000_000_000)
	case absValue >= 1_000_000_000:
		return fmt.Sprintf("%s%.2fB", sign, float64(absValue)/1_000_000_000)
	case absValue >= 1_000_000:
		return fmt.Sprintf("%s%.2fM", sign, float64(absValue)/1_000_000)
	case absValue >= 10_000:
		return fmt.Sprintf("%s%dk", sign, absValue/1_000)
	case absValue >= 1_000:
		return fmt.Sprintf("%s%.1fk", sign, float64(absValue)/1_000)
	default:
		return fmt.Sprintf("%s%d", sign, absValue)
	}
}

// FormatSOL renders a lamport amount as whole tokens without float rounding,
// trimming trailing zeros but keeping at least two decimals.
func FormatSOL(lamports int64) string {
	d := decimal.New(lamports, -9)
	if d.Equal(d.Round(2)) {
		return d.StringFixed(2) + " SOL"
	}
	return d.String() + " SOL"
}

// FormatBps renders a basis-point fee as a percentage
func FormatBps(bps int64) string {
	return decimal.New(bps, -2).StringFixed(2) + "%"
}

// ShareOf returns part/whole as a percentage rounded to one decimal, or "0.0%" when whole is zero
func ShareOf(part, whole int64) string {
	if whole == 0 {
		return "0.0%"
	}
	return decimal.NewFromInt(part).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(whole)).
		StringFixed(1) + "%"
}
