package models

import (
	"time"
)

// QuoteInfo is a flat mapping of descriptive and pricing fields for a symbol.
// Values are float64 or string; a key is absent when the provider has no value.
type QuoteInfo map[string]any

// Float returns the numeric value stored under key.
func (q QuoteInfo) Float(key string) (float64, bool) {
	switch v := q[key].(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}

// FloatOr returns the numeric value under key, or def when absent.
func (q QuoteInfo) FloatOr(key string, def float64) float64 {
	if v, ok := q.Float(key); ok {
		return v
	}
	return def
}

// String returns the string value stored under key.
func (q QuoteInfo) String(key string) (string, bool) {
	s, ok := q[key].(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// PriceBar represents a single daily bar of price data.
type PriceBar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// StatementPeriod is one reporting period of a financial statement.
type StatementPeriod struct {
	EndDate time.Time          `json:"end_date"`
	Values  map[string]float64 `json:"values"`
}

// Financials holds the statement snapshots of a symbol, most recent period first.
type Financials struct {
	IncomeStatement []StatementPeriod `json:"income_statement"`
	BalanceSheet    []StatementPeriod `json:"balance_sheet"`
}

// LatestIncome returns the most recent income statement period.
func (f Financials) LatestIncome() (StatementPeriod, bool) {
	if len(f.IncomeStatement) == 0 {
		return StatementPeriod{}, false
	}
	return f.IncomeStatement[0], true
}

// LatestBalance returns the most recent balance sheet period.
func (f Financials) LatestBalance() (StatementPeriod, bool) {
	if len(f.BalanceSheet) == 0 {
		return StatementPeriod{}, false
	}
	return f.BalanceSheet[0], true
}

// Headline is a news item related to a symbol.
type Headline struct {
	Title     string    `json:"title"`
	Link      string    `json:"link"`
	Summary   string    `json:"summary,omitempty"`
	Published time.Time `json:"published"`
}

// SymbolSnapshot is everything fetched for one symbol during an analysis run.
type SymbolSnapshot struct {
	Symbol     string     `json:"symbol"`
	Info       QuoteInfo  `json:"info"`
	History    []PriceBar `json:"history"`
	Financials Financials `json:"financials"`
	Headlines  []Headline `json:"headlines,omitempty"`
	FetchedAt  time.Time  `json:"fetched_at"`
}

// Name returns the short name of the security, falling back to the symbol.
func (s *SymbolSnapshot) Name() string {
	if n, ok := s.Info.String("shortName"); ok {
		return n
	}
	if n, ok := s.Info.String("longName"); ok {
		return n
	}
	return s.Symbol
}

// Closes returns the closing prices of the history in date order.
func (s *SymbolSnapshot) Closes() []float64 {
	closes := make([]float64, len(s.History))
	for i, b := range s.History {
		closes[i] = b.Close
	}
	return closes
}

// SnapshotSet is an insertion-ordered mapping of symbol to snapshot.
type SnapshotSet struct {
	order []string
	items map[string]*SymbolSnapshot
}

// NewSnapshotSet creates an empty set.
func NewSnapshotSet() *SnapshotSet {
	return &SnapshotSet{items: make(map[string]*SymbolSnapshot)}
}

// Put stores a snapshot. A symbol already present keeps its position.
func (s *SnapshotSet) Put(snap *SymbolSnapshot) {
	if s.items == nil {
		s.items = make(map[string]*SymbolSnapshot)
	}
	if _, ok := s.items[snap.Symbol]; !ok {
		s.order = append(s.order, snap.Symbol)
	}
	s.items[snap.Symbol] = snap
}

// Get returns the snapshot for symbol.
func (s *SnapshotSet) Get(symbol string) (*SymbolSnapshot, bool) {
	if s == nil {
		return nil, false
	}
	snap, ok := s.items[symbol]
	return snap, ok
}

// Len returns the number of symbols in the set.
func (s *SnapshotSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Symbols returns the symbols in insertion order.
func (s *SnapshotSet) Symbols() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// All returns the snapshots in insertion order.
func (s *SnapshotSet) All() []*SymbolSnapshot {
	if s == nil {
		return nil
	}
	out := make([]*SymbolSnapshot, 0, len(s.order))
	for _, sym := range s.order {
		out = append(out, s.items[sym])
	}
	return out
}
