package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorderCounters(t *testing.T) {
	r := New()
	r.RecordSymbolFetch(OutcomeOK)
	r.RecordSymbolFetch(OutcomeOK)
	r.RecordSymbolFetch(OutcomeSkipped)
	r.RecordLogin(false)
	r.RecordLogin(true)
	r.RecordRun(ResultPartial)
	r.RecordLastPrice("AAPL", 190.25)

	if got := testutil.ToFloat64(r.symbolFetches.WithLabelValues(OutcomeOK)); got != 2 {
		t.Errorf("symbol fetch ok: got %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.symbolFetches.WithLabelValues(OutcomeSkipped)); got != 1 {
		t.Errorf("symbol fetch skipped: got %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.logins.WithLabelValues(ResultFailure)); got != 1 {
		t.Errorf("login failure: got %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.runs.WithLabelValues(ResultPartial)); got != 1 {
		t.Errorf("runs partial: got %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.lastPrice.WithLabelValues("AAPL")); got != 190.25 {
		t.Errorf("last price: got %v", got)
	}
}

func TestRecorderHandler(t *testing.T) {
	r := New()
	r.ObserveUpstream("history", 150*time.Millisecond)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `investdash_upstream_request_seconds_count{call="history"} 1`) {
		t.Errorf("histogram missing from exposition:\n%s", rec.Body.String())
	}
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder
	r.RecordSymbolFetch(OutcomeOK)
	r.ObserveUpstream("quote", time.Second)
	r.RecordLogin(true)
	r.RecordRun(ResultSuccess)
	r.RecordLastPrice("X", 1)
	if r.Registry() != nil {
		t.Error("nil recorder should have no registry")
	}
}
