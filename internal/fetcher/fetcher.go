// Package fetcher runs the per-symbol market data loop of an analysis.
package fetcher

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/seenimoa/investdash/internal/datasource"
	"github.com/seenimoa/investdash/internal/metrics"
	"github.com/seenimoa/investdash/pkg/models"
)

// EventKind identifies a fetch progress event.
type EventKind string

const (
	EventProgress EventKind = "progress"
	EventWarning  EventKind = "warning"
	EventDone     EventKind = "done"
)

// Event is emitted to the observer while symbols are fetched.
type Event struct {
	Kind      EventKind `json:"kind"`
	Symbol    string    `json:"symbol,omitempty"`
	Index     int       `json:"index,omitempty"` // 1-based
	Total     int       `json:"total,omitempty"`
	Message   string    `json:"message"`
	Succeeded int       `json:"succeeded,omitempty"`
	Failed    int       `json:"failed,omitempty"`
}

// Observer receives fetch events. It is called synchronously from the fetch loop.
type Observer func(Event)

// Pacer delays the loop between symbols.
type Pacer interface {
	Wait(ctx context.Context) error
}

// FixedPacer waits the same interval after every symbol.
type FixedPacer struct {
	Interval time.Duration
}

// Wait blocks for the interval or until ctx is done.
func (p FixedPacer) Wait(ctx context.Context) error {
	if p.Interval <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(p.Interval)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Result is the outcome of one FetchAll call.
type Result struct {
	Snapshots *models.SnapshotSet
	Warnings  []string
}

// TotalFailure reports whether no symbol could be fetched.
func (r Result) TotalFailure() bool {
	return r.Snapshots.Len() == 0
}

// Fetcher fetches every symbol of a request from a Provider.
type Fetcher struct {
	provider  datasource.Provider
	news      datasource.HeadlineSource
	newsLimit int
	pacer     Pacer
	metrics   *metrics.Recorder
	log       zerolog.Logger
	now       func() time.Time
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHeadlines attaches headlines from src to each fetched symbol.
func WithHeadlines(src datasource.HeadlineSource, limit int) Option {
	return func(f *Fetcher) {
		f.news = src
		f.newsLimit = limit
	}
}

// WithMetrics records per-symbol outcomes on m.
func WithMetrics(m *metrics.Recorder) Option {
	return func(f *Fetcher) { f.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(f *Fetcher) { f.log = l }
}

// New creates a Fetcher.
func New(p datasource.Provider, pacer Pacer, opts ...Option) *Fetcher {
	if pacer == nil {
		pacer = FixedPacer{}
	}
	f := &Fetcher{
		provider: p,
		pacer:    pacer,
		log:      zerolog.Nop(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// FetchAll fetches the symbols of req in order, one at a time, waiting one
// pacing interval after each. A symbol is kept only when its quote info and
// history are both non-empty and no upstream call failed. Every other symbol
// produces one warning. An empty result set means total failure.
func (f *Fetcher) FetchAll(ctx context.Context, req models.AnalysisRequest, observe Observer) Result {
	if observe == nil {
		observe = func(Event) {}
	}
	res := Result{Snapshots: models.NewSnapshotSet()}
	total := len(req.Symbols)
	failed := 0

	for i, sym := range req.Symbols {
		observe(Event{
			Kind:    EventProgress,
			Symbol:  sym,
			Index:   i + 1,
			Total:   total,
			Message: fmt.Sprintf("Fetching data for %s... (%d/%d)", sym, i+1, total),
		})

		snap, warning := f.fetchOne(ctx, sym, req.Period)
		if warning != "" {
			failed++
			res.Warnings = append(res.Warnings, warning)
			f.metrics.RecordSymbolFetch(metrics.OutcomeSkipped)
			observe(Event{Kind: EventWarning, Symbol: sym, Index: i + 1, Total: total, Message: warning})
		} else {
			res.Snapshots.Put(snap)
			f.metrics.RecordSymbolFetch(metrics.OutcomeOK)
			if p, ok := snap.Info.Float("currentPrice"); ok {
				f.metrics.RecordLastPrice(sym, p)
			}
		}

		if err := f.pacer.Wait(ctx); err != nil {
			f.log.Warn().Err(err).Msg("fetch loop interrupted")
			break
		}
	}

	observe(Event{
		Kind:      EventDone,
		Total:     total,
		Succeeded: res.Snapshots.Len(),
		Failed:    failed,
		Message:   fmt.Sprintf("Fetched %d of %d symbols", res.Snapshots.Len(), total),
	})
	f.log.Info().
		Int("requested", total).
		Int("succeeded", res.Snapshots.Len()).
		Int("failed", failed).
		Msg("fetch complete")
	return res
}

// fetchOne returns the snapshot for sym, or a non-empty warning.
func (f *Fetcher) fetchOne(ctx context.Context, sym string, period models.Period) (*models.SymbolSnapshot, string) {
	log := f.log.With().Str("symbol", sym).Logger()

	info, err := f.provider.QuoteInfo(ctx, sym)
	if err != nil {
		log.Warn().Err(err).Msg("quote info failed")
		return nil, fmt.Sprintf("Could not fetch data for %s: %v", sym, err)
	}
	history, err := f.provider.History(ctx, sym, period)
	if err != nil {
		log.Warn().Err(err).Msg("history failed")
		return nil, fmt.Sprintf("Could not fetch data for %s: %v", sym, err)
	}
	fin, err := f.provider.Financials(ctx, sym)
	if err != nil {
		log.Warn().Err(err).Msg("financials failed")
		return nil, fmt.Sprintf("Could not fetch data for %s: %v", sym, err)
	}
	if len(info) == 0 || len(history) == 0 {
		log.Warn().Int("info_fields", len(info)).Int("bars", len(history)).Msg("empty upstream data")
		return nil, fmt.Sprintf("No data available for %s", sym)
	}

	snap := &models.SymbolSnapshot{
		Symbol:     sym,
		Info:       info,
		History:    history,
		Financials: fin,
		FetchedAt:  f.now(),
	}

	if f.news != nil {
		headlines, err := f.news.Headlines(ctx, sym, f.newsLimit)
		if err != nil {
			log.Warn().Err(err).Msg("headlines unavailable")
		} else {
			snap.Headlines = headlines
		}
	}

	log.Debug().Int("bars", len(history)).Msg("symbol fetched")
	return snap, ""
}
