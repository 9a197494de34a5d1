// Package metrics exposes Prometheus instruments for the dashboard.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeOK      = "ok"
	OutcomeSkipped = "skipped"

	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultPartial = "partial"
)

// Recorder records dashboard metrics on its own registry.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry      *prometheus.Registry
	symbolFetches *prometheus.CounterVec
	upstream      *prometheus.HistogramVec
	logins        *prometheus.CounterVec
	runs          *prometheus.CounterVec
	lastPrice     *prometheus.GaugeVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Recorder{
		registry: reg,
		symbolFetches: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "investdash_symbol_fetch_total",
				Help: "Symbols processed by the market data fetcher",
			},
			[]string{"outcome"},
		),
		upstream: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "investdash_upstream_request_seconds",
				Help:    "Duration of upstream market data calls in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"call"},
		),
		logins: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "investdash_login_attempts_total",
				Help: "Access gate attempts",
			},
			[]string{"result"},
		),
		runs: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "investdash_analysis_runs_total",
				Help: "Completed analysis runs",
			},
			[]string{"result"},
		),
		lastPrice: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "investdash_last_price",
				Help: "Last current price seen for a symbol",
			},
			[]string{"symbol"},
		),
	}
}

// RecordSymbolFetch records one symbol leaving the fetcher.
func (r *Recorder) RecordSymbolFetch(outcome string) {
	if r == nil {
		return
	}
	r.symbolFetches.WithLabelValues(outcome).Inc()
}

// ObserveUpstream records the latency of one upstream call.
func (r *Recorder) ObserveUpstream(call string, d time.Duration) {
	if r == nil {
		return
	}
	r.upstream.WithLabelValues(call).Observe(d.Seconds())
}

// RecordLogin records an access gate attempt.
func (r *Recorder) RecordLogin(ok bool) {
	if r == nil {
		return
	}
	result := ResultFailure
	if ok {
		result = ResultSuccess
	}
	r.logins.WithLabelValues(result).Inc()
}

// RecordRun records a finished analysis run.
func (r *Recorder) RecordRun(result string) {
	if r == nil {
		return
	}
	r.runs.WithLabelValues(result).Inc()
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	if r == nil {
		return
	}
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
