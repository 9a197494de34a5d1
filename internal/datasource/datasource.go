// Package datasource fetches market data for the dashboard. It defines the
// Provider interface consumed by the fetcher and implements it for Yahoo
// Finance, plus an RSS headline source.
package datasource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/seenimoa/investdash/pkg/models"
)

// Provider is the upstream market data source. Every call re-fetches.
type Provider interface {
	// QuoteInfo returns the flat descriptive and pricing fields of a symbol.
	// Fields the upstream has no value for are absent from the map.
	QuoteInfo(ctx context.Context, symbol string) (models.QuoteInfo, error)

	// History returns daily bars covering period, oldest first.
	History(ctx context.Context, symbol string, period models.Period) ([]models.PriceBar, error)

	// Financials returns the annual income statement and balance sheet.
	Financials(ctx context.Context, symbol string) (models.Financials, error)
}

// HeadlineSource returns recent news for a symbol.
type HeadlineSource interface {
	Headlines(ctx context.Context, symbol string, limit int) ([]models.Headline, error)
}

// LatencyObserver receives the duration of each upstream call.
type LatencyObserver interface {
	ObserveUpstream(call string, d time.Duration)
}

// --- Sentinel errors ---

// ErrTickerNotFound is returned when a ticker cannot be resolved.
var ErrTickerNotFound = fmt.Errorf("ticker not found")

// ErrNoData is returned when the upstream answers without usable data.
var ErrNoData = fmt.Errorf("no data returned")

// ErrRateLimited is returned when a source rate-limits the request.
var ErrRateLimited = fmt.Errorf("rate limited by data source")

// ErrHTTP wraps an HTTP error with status code.
type ErrHTTP struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *ErrHTTP) Error() string {
	return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.Status, e.Body)
}

// --- Shared HTTP client helpers ---

// DefaultUserAgent is the user agent string used for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// httpGetter performs GETs with browser-like headers and maps error statuses.
type httpGetter struct {
	client    *http.Client
	userAgent string
	observer  LatencyObserver
}

// get performs a GET request and returns the response body. call labels the
// request for latency metrics.
func (g *httpGetter) get(ctx context.Context, call, url string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	ua := g.userAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "application/json, text/html, */*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := g.client.Do(req)
	if g.observer != nil {
		g.observer.ObserveUpstream(call, time.Since(start))
	}
	if err != nil {
		return nil, fmt.Errorf("HTTP GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		io.Copy(io.Discard, resp.Body) //nolint:errcheck // drain body
		return nil, ErrTickerNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		io.Copy(io.Discard, resp.Body) //nolint:errcheck // drain body
		return nil, ErrRateLimited
	case resp.StatusCode >= 400:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &ErrHTTP{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(body),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return data, nil
}
