// Package utils provides common utility functions for investdash.
package utils

import (
	"fmt"
	"math"

	"github.com/Rhymond/go-money"
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// NA is rendered in place of a value the data provider did not supply.
const NA = "N/A"

// FormatUSD formats an amount as US dollars with two decimals ($1,234.56).
func FormatUSD(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return NA
	}
	cents := decimal.NewFromFloat(amount).Shift(2).Round(0).IntPart()
	return money.New(cents, money.USD).Display()
}

// FormatUSDWhole formats an amount as whole US dollars ($3,000,000,000).
func FormatUSDWhole(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return NA
	}
	return "$" + humanize.Comma(decimal.NewFromFloat(amount).Round(0).IntPart())
}

// FormatUSDCompact formats an amount in compact notation.
// e.g., 1500000 → "$1.50M", 394328000000 → "$394.33B"
func FormatUSDCompact(amount float64) string {
	negative := amount < 0
	amount = math.Abs(amount)

	prefix := "$"
	if negative {
		prefix = "-$"
	}

	switch {
	case amount >= 1e12:
		return fmt.Sprintf("%s%.2fT", prefix, amount/1e12)
	case amount >= 1e9:
		return fmt.Sprintf("%s%.2fB", prefix, amount/1e9)
	case amount >= 1e6:
		return fmt.Sprintf("%s%.2fM", prefix, amount/1e6)
	case amount >= 1e3:
		return fmt.Sprintf("%s%.2fK", prefix, amount/1e3)
	default:
		return fmt.Sprintf("%s%.2f", prefix, amount)
	}
}

// FormatPercent formats a value that is already a percentage (12.34 → "12.34%").
func FormatPercent(pct float64) string {
	return fmt.Sprintf("%.2f%%", pct)
}

// FormatRatioPercent formats a fraction as a percentage (0.0044 → "0.44%").
func FormatRatioPercent(ratio float64) string {
	return FormatPercent(ratio * 100)
}

// FormatRatio formats a plain number with two decimals (28.5 → "28.50").
func FormatRatio(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// FormatSignedPercent is FormatPercent with an explicit "+" for gains.
func FormatSignedPercent(pct float64) string {
	if pct > 0 {
		return "+" + FormatPercent(pct)
	}
	return FormatPercent(pct)
}

// OrNA applies format to v when ok is true and returns NA otherwise.
func OrNA(v float64, ok bool, format func(float64) string) string {
	if !ok {
		return NA
	}
	return format(v)
}
