// Package models defines the core data structures used throughout investdash.
package models

import (
	"fmt"
	"time"

	"github.com/seenimoa/investdash/pkg/utils"
)

// Period is the lookback window of an analysis.
type Period string

const (
	Period1Y  Period = "1Y"
	Period2Y  Period = "2Y"
	Period3Y  Period = "3Y"
	Period5Y  Period = "5Y"
	PeriodYTD Period = "YTD"
)

// AllPeriods returns the selectable periods in display order.
func AllPeriods() []Period {
	return []Period{Period1Y, Period2Y, Period3Y, Period5Y, PeriodYTD}
}

var periodLabels = map[Period]string{
	Period1Y:  "1 Year",
	Period2Y:  "2 Years",
	Period3Y:  "3 Years",
	Period5Y:  "5 Years",
	PeriodYTD: "Year-to-Date",
}

// Label returns the human-readable label shown in the period selector.
func (p Period) Label() string {
	if l, ok := periodLabels[p]; ok {
		return l
	}
	return string(p)
}

// Code returns the provider period code ("1y", "ytd", ...).
func (p Period) Code() string {
	switch p {
	case Period1Y:
		return "1y"
	case Period2Y:
		return "2y"
	case Period3Y:
		return "3y"
	case Period5Y:
		return "5y"
	case PeriodYTD:
		return "ytd"
	default:
		return ""
	}
}

// Start returns the first instant covered by the period, relative to now.
func (p Period) Start(now time.Time) time.Time {
	switch p {
	case Period2Y:
		return now.AddDate(-2, 0, 0)
	case Period3Y:
		return now.AddDate(-3, 0, 0)
	case Period5Y:
		return now.AddDate(-5, 0, 0)
	case PeriodYTD:
		return utils.StartOfYear(now)
	default:
		return now.AddDate(-1, 0, 0)
	}
}

// PeriodFromLabel maps a selector label to its Period.
func PeriodFromLabel(label string) (Period, error) {
	for p, l := range periodLabels {
		if l == label {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPeriod, label)
}

// --- Sentinel errors ---

// ErrNoSymbols is returned when the ticker input contains no symbols.
var ErrNoSymbols = fmt.Errorf("please enter at least one stock ticker")

// ErrUnknownPeriod is returned for a period label outside the fixed table.
var ErrUnknownPeriod = fmt.Errorf("unknown analysis period")

// AnalysisRequest is the normalized input of one analysis run.
type AnalysisRequest struct {
	Symbols []string `json:"symbols"`
	Period  Period   `json:"period"`
}

// ParseRequest builds an AnalysisRequest from the raw ticker text and the
// selected period label. Symbols keep their input order and are not deduplicated.
func ParseRequest(rawTickers, periodLabel string) (AnalysisRequest, error) {
	period, err := PeriodFromLabel(periodLabel)
	if err != nil {
		return AnalysisRequest{}, err
	}
	symbols := utils.ParseTickers(rawTickers)
	if len(symbols) == 0 {
		return AnalysisRequest{}, ErrNoSymbols
	}
	return AnalysisRequest{Symbols: symbols, Period: period}, nil
}
