package fetcher

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/seenimoa/investdash/internal/metrics"
	"github.com/seenimoa/investdash/pkg/models"
)

// fakeProvider returns canned data per symbol and records call order.
type fakeProvider struct {
	info    map[string]models.QuoteInfo
	history map[string][]models.PriceBar
	finErr  map[string]error
	calls   []string
}

func (p *fakeProvider) QuoteInfo(_ context.Context, sym string) (models.QuoteInfo, error) {
	p.calls = append(p.calls, "info:"+sym)
	info, ok := p.info[sym]
	if !ok {
		return nil, errors.New("ticker not found")
	}
	return info, nil
}

func (p *fakeProvider) History(_ context.Context, sym string, _ models.Period) ([]models.PriceBar, error) {
	p.calls = append(p.calls, "history:"+sym)
	return p.history[sym], nil
}

func (p *fakeProvider) Financials(_ context.Context, sym string) (models.Financials, error) {
	p.calls = append(p.calls, "financials:"+sym)
	return models.Financials{}, p.finErr[sym]
}

type fakeNews struct{ err error }

func (n fakeNews) Headlines(_ context.Context, sym string, limit int) ([]models.Headline, error) {
	if n.err != nil {
		return nil, n.err
	}
	return []models.Headline{{Title: sym + " headline"}}, nil
}

type countingPacer struct{ waits int }

func (p *countingPacer) Wait(context.Context) error {
	p.waits++
	return nil
}

func bars(closes ...float64) []models.PriceBar {
	out := make([]models.PriceBar, len(closes))
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		out[i] = models.PriceBar{Date: start.AddDate(0, 0, i), Close: c}
	}
	return out
}

func newProvider() *fakeProvider {
	return &fakeProvider{
		info: map[string]models.QuoteInfo{
			"AAPL":  {"currentPrice": 190.0, "shortName": "Apple Inc."},
			"MSFT":  {"currentPrice": 410.0},
			"EMPTY": {},
			"NOHIS": {"currentPrice": 5.0},
			"FINX":  {"currentPrice": 7.0},
		},
		history: map[string][]models.PriceBar{
			"AAPL":  bars(180, 185, 190),
			"MSFT":  bars(400, 410),
			"EMPTY": bars(1, 2),
			"FINX":  bars(7, 7),
		},
		finErr: map[string]error{"FINX": errors.New("statements unavailable")},
	}
}

func TestFetchAllOrderAndPacing(t *testing.T) {
	p := newProvider()
	pacer := &countingPacer{}
	m := metrics.New()
	f := New(p, pacer, WithMetrics(m))

	var events []Event
	req := models.AnalysisRequest{Symbols: []string{"MSFT", "AAPL"}, Period: models.Period1Y}
	res := f.FetchAll(context.Background(), req, func(e Event) { events = append(events, e) })

	if res.TotalFailure() {
		t.Fatal("expected success")
	}
	syms := res.Snapshots.Symbols()
	if len(syms) != 2 || syms[0] != "MSFT" || syms[1] != "AAPL" {
		t.Errorf("snapshot order = %v, want [MSFT AAPL]", syms)
	}
	if pacer.waits != 2 {
		t.Errorf("pacer waits = %d, want one per symbol", pacer.waits)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", res.Warnings)
	}

	wantCalls := []string{"info:MSFT", "history:MSFT", "financials:MSFT", "info:AAPL", "history:AAPL", "financials:AAPL"}
	if strings.Join(p.calls, ",") != strings.Join(wantCalls, ",") {
		t.Errorf("calls = %v, want %v", p.calls, wantCalls)
	}

	if len(events) != 3 {
		t.Fatalf("events = %d, want 3", len(events))
	}
	if events[0].Message != "Fetching data for MSFT... (1/2)" {
		t.Errorf("progress message = %q", events[0].Message)
	}
	last := events[len(events)-1]
	if last.Kind != EventDone || last.Succeeded != 2 || last.Failed != 0 {
		t.Errorf("done event = %+v", last)
	}
}

func TestFetchAllSkipsFailures(t *testing.T) {
	p := newProvider()
	pacer := &countingPacer{}
	f := New(p, pacer)

	req := models.AnalysisRequest{
		Symbols: []string{"AAPL", "ZZZZ", "EMPTY", "NOHIS", "FINX"},
		Period:  models.Period1Y,
	}
	var warnings []Event
	res := f.FetchAll(context.Background(), req, func(e Event) {
		if e.Kind == EventWarning {
			warnings = append(warnings, e)
		}
	})

	if res.Snapshots.Len() != 1 {
		t.Fatalf("snapshots = %v, want only AAPL", res.Snapshots.Symbols())
	}
	if len(res.Warnings) != 4 || len(warnings) != 4 {
		t.Fatalf("warnings = %v, want one per failed symbol", res.Warnings)
	}
	if !strings.HasPrefix(res.Warnings[0], "Could not fetch data for ZZZZ") {
		t.Errorf("warning[0] = %q", res.Warnings[0])
	}
	if res.Warnings[1] != "No data available for EMPTY" {
		t.Errorf("warning[1] = %q", res.Warnings[1])
	}
	if res.Warnings[2] != "No data available for NOHIS" {
		t.Errorf("warning[2] = %q", res.Warnings[2])
	}
	if !strings.Contains(res.Warnings[3], "statements unavailable") {
		t.Errorf("warning[3] = %q", res.Warnings[3])
	}
	if pacer.waits != 5 {
		t.Errorf("pacer waits = %d, want 5", pacer.waits)
	}
	for _, s := range res.Snapshots.All() {
		if len(s.Info) == 0 || len(s.History) == 0 {
			t.Errorf("snapshot %s has empty info or history", s.Symbol)
		}
	}
}

func TestFetchAllTotalFailure(t *testing.T) {
	f := New(newProvider(), &countingPacer{})
	req := models.AnalysisRequest{Symbols: []string{"ZZZZ", "YYYY"}, Period: models.Period1Y}

	res := f.FetchAll(context.Background(), req, nil)
	if !res.TotalFailure() {
		t.Error("expected total failure")
	}
	if len(res.Warnings) != 2 {
		t.Errorf("warnings = %d, want 2", len(res.Warnings))
	}
}

func TestFetchAllDuplicateSymbols(t *testing.T) {
	p := newProvider()
	f := New(p, &countingPacer{})
	req := models.AnalysisRequest{Symbols: []string{"AAPL", "MSFT", "AAPL"}, Period: models.Period1Y}

	res := f.FetchAll(context.Background(), req, nil)
	syms := res.Snapshots.Symbols()
	if len(syms) != 2 || syms[0] != "AAPL" {
		t.Errorf("symbols = %v, want [AAPL MSFT]", syms)
	}
	if len(p.calls) != 9 {
		t.Errorf("duplicates are fetched again: calls = %d, want 9", len(p.calls))
	}
}

func TestFetchAllHeadlines(t *testing.T) {
	req := models.AnalysisRequest{Symbols: []string{"AAPL"}, Period: models.Period1Y}

	f := New(newProvider(), &countingPacer{}, WithHeadlines(fakeNews{}, 3))
	res := f.FetchAll(context.Background(), req, nil)
	snap, _ := res.Snapshots.Get("AAPL")
	if len(snap.Headlines) != 1 || snap.Headlines[0].Title != "AAPL headline" {
		t.Errorf("headlines = %+v", snap.Headlines)
	}

	// A news failure never drops the symbol.
	f = New(newProvider(), &countingPacer{}, WithHeadlines(fakeNews{err: errors.New("feed down")}, 3))
	res = f.FetchAll(context.Background(), req, nil)
	if res.Snapshots.Len() != 1 || len(res.Warnings) != 0 {
		t.Errorf("news failure affected result: %v %v", res.Snapshots.Symbols(), res.Warnings)
	}
}

func TestFixedPacer(t *testing.T) {
	start := time.Now()
	if err := (FixedPacer{Interval: 20 * time.Millisecond}).Wait(context.Background()); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if time.Since(start) < 20*time.Millisecond {
		t.Error("Wait returned early")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := (FixedPacer{Interval: time.Hour}).Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled Wait: err = %v", err)
	}
}
