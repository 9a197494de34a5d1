// Package performance computes derived price metrics for a fetched symbol.
// All functions are pure and recompute on every call.
package performance

import (
	"math"

	"github.com/seenimoa/investdash/pkg/models"
)

// Metrics holds the derived values shown for one symbol.
type Metrics struct {
	CurrentPrice  float64 `json:"current_price"`
	PreviousClose float64 `json:"previous_close"`
	ChangeAbs     float64 `json:"change_abs"`
	ChangePct     float64 `json:"change_pct"`

	StartPrice float64 `json:"start_price"`
	EndPrice   float64 `json:"end_price"`
	Points     int     `json:"points"`

	TotalReturnPct float64 `json:"total_return_pct"`
	HasTotalReturn bool    `json:"has_total_return"`
	Volatility     float64 `json:"volatility"`
	HasVolatility  bool    `json:"has_volatility"`
}

// Compute derives all metrics for a snapshot.
func Compute(s *models.SymbolSnapshot) Metrics {
	closes := s.Closes()
	m := Metrics{
		CurrentPrice:  CurrentPrice(s),
		PreviousClose: s.Info.FloatOr("previousClose", 0),
		Points:        len(closes),
	}
	m.ChangeAbs = m.CurrentPrice - m.PreviousClose
	m.ChangePct = ChangePct(m.CurrentPrice, m.PreviousClose)
	if len(closes) > 0 {
		m.StartPrice = closes[0]
		m.EndPrice = closes[len(closes)-1]
	}
	m.TotalReturnPct, m.HasTotalReturn = TotalReturnPct(closes)
	m.Volatility, m.HasVolatility = Volatility(closes)
	return m
}

// CurrentPrice prefers the quoted current price and falls back to the last
// close when the quote has none (or zero).
func CurrentPrice(s *models.SymbolSnapshot) float64 {
	if p, ok := s.Info.Float("currentPrice"); ok && p != 0 {
		return p
	}
	if n := len(s.History); n > 0 {
		return s.History[n-1].Close
	}
	return 0
}

// ChangePct returns the percentage change from previousClose to current.
// It is 0 when previousClose is not positive.
func ChangePct(current, previousClose float64) float64 {
	if previousClose <= 0 {
		return 0
	}
	return (current - previousClose) / previousClose * 100
}

// TotalReturnPct returns the percentage change from the first to the last
// close. ok is false with fewer than two points or a zero first close.
func TotalReturnPct(closes []float64) (pct float64, ok bool) {
	if len(closes) < 2 || closes[0] == 0 {
		return 0, false
	}
	first, last := closes[0], closes[len(closes)-1]
	return (last - first) / first * 100, true
}

// Volatility returns the sample standard deviation (n-1) of the closes.
// ok is false with fewer than two points.
func Volatility(closes []float64) (sd float64, ok bool) {
	n := len(closes)
	if n < 2 {
		return 0, false
	}
	var sum float64
	for _, c := range closes {
		sum += c
	}
	mean := sum / float64(n)

	var sumSq float64
	for _, c := range closes {
		d := c - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(n-1)), true
}
