package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/seenimoa/investdash/pkg/models"
)

const summaryAAPL = `{"quoteSummary":{"result":[{
  "price":{"shortName":"Apple Inc.","longName":"Apple Inc.","currency":"USD"},
  "summaryDetail":{
    "previousClose":{"raw":188.5,"fmt":"188.50"},
    "marketCap":{"raw":3000000000000,"fmt":"3T"},
    "trailingPE":{"raw":28.5,"fmt":"28.50"},
    "forwardPE":{},
    "dividendYield":{"raw":0.0044,"fmt":"0.44%"},
    "beta":{"raw":1.29},
    "fiftyTwoWeekHigh":{"raw":199.62},
    "fiftyTwoWeekLow":{"raw":164.08},
    "averageVolume":{"raw":55000000}
  },
  "defaultKeyStatistics":{"priceToBook":{"raw":47.1},"netIncomeToCommon":{"raw":97000000000}},
  "financialData":{"currentPrice":{"raw":190.25},"totalRevenue":{"raw":383000000000},"operatingMargins":{"raw":0.3}},
  "assetProfile":{"sector":"Technology","industry":""}
}],"error":null}}`

const chartAAPL = `{"chart":{"result":[{
  "timestamp":[1700000000,1700086400,1700172800],
  "indicators":{"quote":[{
    "open":[100,101,null],
    "high":[105,106,null],
    "low":[98,99,null],
    "close":[103,104,null],
    "volume":[1000,2000,null]
  }]}
}],"error":null}}`

const financialsAAPL = `{"quoteSummary":{"result":[{
  "incomeStatementHistory":{"incomeStatementHistory":[
    {"maxAge":1,"endDate":{"raw":1664582400},"totalRevenue":{"raw":394328000000},"netIncome":{"raw":99803000000}},
    {"maxAge":1,"endDate":{"raw":1696118400},"totalRevenue":{"raw":383285000000},"netIncome":{"raw":96995000000},"ebit":{}}
  ]},
  "balanceSheetHistory":{"balanceSheetStatements":[
    {"endDate":{"raw":1696118400},"totalAssets":{"raw":352583000000}}
  ]}
}],"error":null}}`

// fakeYahoo serves the endpoints the client uses and counts crumb requests.
func fakeYahoo(t *testing.T) (*httptest.Server, *int32) {
	t.Helper()
	var crumbCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/cookie", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "A3", Value: "session", Path: "/"})
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/v1/test/getcrumb", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&crumbCalls, 1)
		if _, err := r.Cookie("A3"); err != nil {
			http.Error(w, "no cookie", http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, "abc123")
	})
	mux.HandleFunc("/v10/finance/quoteSummary/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("crumb") != "abc123" {
			http.Error(w, `{"finance":{"error":{"code":"Unauthorized"}}}`, http.StatusUnauthorized)
			return
		}
		sym := strings.TrimPrefix(r.URL.Path, "/v10/finance/quoteSummary/")
		if sym != "AAPL" {
			http.Error(w, `{"quoteSummary":{"result":null,"error":{"code":"Not Found"}}}`, http.StatusNotFound)
			return
		}
		if strings.Contains(r.URL.Query().Get("modules"), "incomeStatementHistory") {
			fmt.Fprint(w, financialsAAPL)
			return
		}
		fmt.Fprint(w, summaryAAPL)
	})
	mux.HandleFunc("/v8/finance/chart/", func(w http.ResponseWriter, r *http.Request) {
		sym := strings.TrimPrefix(r.URL.Path, "/v8/finance/chart/")
		switch sym {
		case "AAPL":
			if r.URL.Query().Get("interval") != "1d" || r.URL.Query().Get("period1") == "" {
				http.Error(w, "bad query", http.StatusBadRequest)
				return
			}
			fmt.Fprint(w, chartAAPL)
		case "LIMIT":
			w.WriteHeader(http.StatusTooManyRequests)
		default:
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`)
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &crumbCalls
}

func newTestClient(srv *httptest.Server, obs LatencyObserver) *YFinance {
	y := NewYFinance(YFinanceOptions{
		BaseURL:   srv.URL,
		CookieURL: srv.URL + "/cookie",
		Timeout:   5 * time.Second,
		Observer:  obs,
	})
	y.now = func() time.Time { return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC) }
	return y
}

type latencies struct{ calls []string }

func (l *latencies) ObserveUpstream(call string, _ time.Duration) { l.calls = append(l.calls, call) }

func TestYFinanceQuoteInfo(t *testing.T) {
	srv, crumbCalls := fakeYahoo(t)
	obs := &latencies{}
	y := newTestClient(srv, obs)

	info, err := y.QuoteInfo(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("QuoteInfo: %v", err)
	}

	if v, _ := info.Float("currentPrice"); v != 190.25 {
		t.Errorf("currentPrice = %v, want 190.25", v)
	}
	if v, _ := info.Float("marketCap"); v != 3e12 {
		t.Errorf("marketCap = %v, want 3e12", v)
	}
	if s, _ := info.String("shortName"); s != "Apple Inc." {
		t.Errorf("shortName = %q", s)
	}
	if s, _ := info.String("sector"); s != "Technology" {
		t.Errorf("sector = %q", s)
	}
	// Empty objects and empty strings are absent keys.
	for _, key := range []string{"forwardPE", "industry", "debtToEquity"} {
		if _, ok := info[key]; ok {
			t.Errorf("%s should be absent, got %v", key, info[key])
		}
	}

	// The crumb is fetched once and reused.
	if _, err := y.QuoteInfo(context.Background(), "AAPL"); err != nil {
		t.Fatalf("second QuoteInfo: %v", err)
	}
	if got := atomic.LoadInt32(crumbCalls); got != 1 {
		t.Errorf("crumb calls = %d, want 1", got)
	}
	if len(obs.calls) == 0 || obs.calls[0] != "crumb" {
		t.Errorf("observer calls = %v", obs.calls)
	}
}

func TestYFinanceQuoteInfoUnknown(t *testing.T) {
	srv, _ := fakeYahoo(t)
	y := newTestClient(srv, nil)

	_, err := y.QuoteInfo(context.Background(), "ZZZZ")
	if !errors.Is(err, ErrTickerNotFound) {
		t.Errorf("err = %v, want ErrTickerNotFound", err)
	}
}

func TestYFinanceHistory(t *testing.T) {
	srv, _ := fakeYahoo(t)
	y := newTestClient(srv, nil)

	bars, err := y.History(context.Background(), "AAPL", models.Period1Y)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars (null close dropped), got %d", len(bars))
	}
	if bars[0].Close != 103 || bars[1].Close != 104 {
		t.Errorf("closes = %v, %v", bars[0].Close, bars[1].Close)
	}
	if bars[1].Volume != 2000 {
		t.Errorf("volume = %d, want 2000", bars[1].Volume)
	}
	if !bars[0].Date.Before(bars[1].Date) {
		t.Error("bars should be oldest first")
	}
}

func TestYFinanceHistoryErrors(t *testing.T) {
	srv, _ := fakeYahoo(t)
	y := newTestClient(srv, nil)

	if _, err := y.History(context.Background(), "NOPE", models.Period1Y); !errors.Is(err, ErrTickerNotFound) {
		t.Errorf("unknown symbol: err = %v, want ErrTickerNotFound", err)
	}
	if _, err := y.History(context.Background(), "LIMIT", models.Period1Y); !errors.Is(err, ErrRateLimited) {
		t.Errorf("rate limited: err = %v, want ErrRateLimited", err)
	}
}

func TestYFinanceFinancials(t *testing.T) {
	srv, _ := fakeYahoo(t)
	y := newTestClient(srv, nil)

	fin, err := y.Financials(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("Financials: %v", err)
	}
	if len(fin.IncomeStatement) != 2 {
		t.Fatalf("income periods = %d, want 2", len(fin.IncomeStatement))
	}
	latest, _ := fin.LatestIncome()
	if latest.Values["totalRevenue"] != 383285000000 {
		t.Errorf("latest revenue = %v, want the 2023 value", latest.Values["totalRevenue"])
	}
	if _, ok := latest.Values["ebit"]; ok {
		t.Error("empty values should be skipped")
	}
	if _, ok := latest.Values["maxAge"]; ok {
		t.Error("maxAge should not be a statement value")
	}
	bal, ok := fin.LatestBalance()
	if !ok || bal.Values["totalAssets"] != 352583000000 {
		t.Errorf("balance sheet = %+v", bal)
	}
}

func TestYFinanceCrumbDroppedOnUnauthorized(t *testing.T) {
	srv, crumbCalls := fakeYahoo(t)
	y := newTestClient(srv, nil)
	y.crumb = "stale"

	if _, err := y.QuoteInfo(context.Background(), "AAPL"); err == nil {
		t.Fatal("stale crumb should fail")
	}
	if y.crumb != "" {
		t.Fatal("crumb should be dropped after 401")
	}
	if _, err := y.QuoteInfo(context.Background(), "AAPL"); err != nil {
		t.Fatalf("QuoteInfo after refresh: %v", err)
	}
	if got := atomic.LoadInt32(crumbCalls); got != 1 {
		t.Errorf("crumb calls = %d, want 1", got)
	}
}

func TestFlattenInfoEmpty(t *testing.T) {
	var doc any
	if err := json.Unmarshal([]byte(`{"price":{}}`), &doc); err != nil {
		t.Fatal(err)
	}
	if info := flattenInfo(doc); len(info) != 0 {
		t.Errorf("expected empty info, got %v", info)
	}
}

func TestParseYFBarsEmpty(t *testing.T) {
	if bars := parseYFBars(yfChartResult{}); bars != nil {
		t.Fatalf("expected nil bars for empty result, got %d", len(bars))
	}
}

func TestErrHTTPError(t *testing.T) {
	err := &ErrHTTP{StatusCode: 500, Status: "500 Internal Server Error", Body: "boom"}
	if !strings.Contains(err.Error(), "HTTP 500") {
		t.Errorf("Error() = %q", err.Error())
	}
}
