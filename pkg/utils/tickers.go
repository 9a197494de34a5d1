package utils

import (
	"strings"
)

// NormalizeTicker trims whitespace and a leading "$" and upper-cases the symbol.
func NormalizeTicker(input string) string {
	s := strings.TrimSpace(input)
	s = strings.TrimPrefix(s, "$")
	return strings.ToUpper(strings.TrimSpace(s))
}

// ParseTickers splits a comma-separated ticker list into normalized symbols.
// Empty tokens are dropped, order is preserved and duplicates are kept.
func ParseTickers(raw string) []string {
	parts := strings.Split(raw, ",")
	tickers := make([]string, 0, len(parts))
	for _, p := range parts {
		t := NormalizeTicker(p)
		if t == "" {
			continue
		}
		tickers = append(tickers, t)
	}
	return tickers
}

// JoinTickers is the inverse of ParseTickers for display in the input form.
func JoinTickers(tickers []string) string {
	return strings.Join(tickers, ", ")
}
