package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/PaesslerAG/jsonpath"

	"github.com/seenimoa/investdash/pkg/models"
)

const (
	infoModules       = "price,summaryDetail,defaultKeyStatistics,financialData,assetProfile"
	financialsModules = "incomeStatementHistory,balanceSheetHistory"
)

// infoPaths maps QuoteInfo keys to their location inside a quoteSummary result.
var infoPaths = []struct {
	Key  string
	Path string
}{
	{"shortName", "$.price.shortName"},
	{"longName", "$.price.longName"},
	{"currency", "$.price.currency"},
	{"currentPrice", "$.financialData.currentPrice.raw"},
	{"previousClose", "$.summaryDetail.previousClose.raw"},
	{"marketCap", "$.summaryDetail.marketCap.raw"},
	{"trailingPE", "$.summaryDetail.trailingPE.raw"},
	{"forwardPE", "$.summaryDetail.forwardPE.raw"},
	{"priceToBook", "$.defaultKeyStatistics.priceToBook.raw"},
	{"dividendYield", "$.summaryDetail.dividendYield.raw"},
	{"beta", "$.summaryDetail.beta.raw"},
	{"fiftyTwoWeekHigh", "$.summaryDetail.fiftyTwoWeekHigh.raw"},
	{"fiftyTwoWeekLow", "$.summaryDetail.fiftyTwoWeekLow.raw"},
	{"averageVolume", "$.summaryDetail.averageVolume.raw"},
	{"sector", "$.assetProfile.sector"},
	{"industry", "$.assetProfile.industry"},
	{"totalRevenue", "$.financialData.totalRevenue.raw"},
	{"netIncomeToCommon", "$.defaultKeyStatistics.netIncomeToCommon.raw"},
	{"operatingMargins", "$.financialData.operatingMargins.raw"},
	{"profitMargins", "$.financialData.profitMargins.raw"},
	{"returnOnEquity", "$.financialData.returnOnEquity.raw"},
	{"debtToEquity", "$.financialData.debtToEquity.raw"},
	{"currentRatio", "$.financialData.currentRatio.raw"},
	{"freeCashflow", "$.financialData.freeCashflow.raw"},
}

// YFinanceOptions configures the Yahoo Finance client.
type YFinanceOptions struct {
	BaseURL   string        // e.g. https://query1.finance.yahoo.com
	CookieURL string        // visited once to obtain session cookies; empty skips it
	Timeout   time.Duration // per request
	UserAgent string
	Observer  LatencyObserver
}

// YFinance implements Provider using the Yahoo Finance JSON API.
type YFinance struct {
	http      httpGetter
	baseURL   string
	cookieURL string
	now       func() time.Time

	mu    sync.Mutex
	crumb string
}

// NewYFinance creates a new Yahoo Finance data source.
func NewYFinance(opts YFinanceOptions) *YFinance {
	jar, _ := cookiejar.New(nil)
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &YFinance{
		http: httpGetter{
			client:    &http.Client{Timeout: timeout, Jar: jar},
			userAgent: opts.UserAgent,
			observer:  opts.Observer,
		},
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		cookieURL: opts.CookieURL,
		now:       time.Now,
	}
}

// --- Yahoo Finance API types ---

type yfChartResponse struct {
	Chart struct {
		Result []yfChartResult `json:"result"`
		Error  *yfError        `json:"error"`
	} `json:"chart"`
}

type yfChartResult struct {
	Timestamp  []int64      `json:"timestamp"`
	Indicators yfIndicators `json:"indicators"`
}

type yfIndicators struct {
	Quote []yfOHLCV `json:"quote"`
}

type yfOHLCV struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
}

type yfFinancialsResponse struct {
	QuoteSummary struct {
		Result []yfFinancialResult `json:"result"`
		Error  *yfError            `json:"error"`
	} `json:"quoteSummary"`
}

type yfFinancialResult struct {
	IncomeStatementHistory *struct {
		Statements []map[string]json.RawMessage `json:"incomeStatementHistory"`
	} `json:"incomeStatementHistory"`
	BalanceSheetHistory *struct {
		Statements []map[string]json.RawMessage `json:"balanceSheetStatements"`
	} `json:"balanceSheetHistory"`
}

type yfFinVal struct {
	Raw *float64 `json:"raw"`
}

type yfError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// --- Public methods ---

// QuoteInfo returns the flattened quoteSummary fields of symbol.
func (y *YFinance) QuoteInfo(ctx context.Context, symbol string) (models.QuoteInfo, error) {
	doc, err := y.quoteSummary(ctx, "quote", symbol, infoModules)
	if err != nil {
		return nil, err
	}
	return flattenInfo(doc), nil
}

// History returns daily bars from the chart API.
func (y *YFinance) History(ctx context.Context, symbol string, period models.Period) ([]models.PriceBar, error) {
	now := y.now()
	u := fmt.Sprintf(
		"%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d&events=div%%2Csplits",
		y.baseURL, url.PathEscape(symbol), period.Start(now).Unix(), now.Unix(),
	)

	data, err := y.http.get(ctx, "history", u, map[string]string{"Accept": "application/json"})
	if err != nil {
		return nil, fmt.Errorf("yfinance chart %s: %w", symbol, err)
	}

	var resp yfChartResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parse yfinance chart: %w", err)
	}
	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("yfinance chart error: %s", resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, symbol)
	}
	return parseYFBars(resp.Chart.Result[0]), nil
}

// Financials returns the annual income statement and balance sheet.
func (y *YFinance) Financials(ctx context.Context, symbol string) (models.Financials, error) {
	if err := y.ensureCrumb(ctx); err != nil {
		return models.Financials{}, err
	}

	data, err := y.http.get(ctx, "financials", y.summaryURL(symbol, financialsModules), map[string]string{"Accept": "application/json"})
	if err != nil {
		y.dropCrumbOnAuthError(err)
		return models.Financials{}, fmt.Errorf("yfinance financials %s: %w", symbol, err)
	}

	var resp yfFinancialsResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return models.Financials{}, fmt.Errorf("parse yfinance financials: %w", err)
	}
	if resp.QuoteSummary.Error != nil {
		return models.Financials{}, fmt.Errorf("yfinance API error: %s", resp.QuoteSummary.Error.Description)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return models.Financials{}, fmt.Errorf("%w: %s", ErrTickerNotFound, symbol)
	}

	r := resp.QuoteSummary.Result[0]
	var fin models.Financials
	if r.IncomeStatementHistory != nil {
		fin.IncomeStatement = parseStatements(r.IncomeStatementHistory.Statements)
	}
	if r.BalanceSheetHistory != nil {
		fin.BalanceSheet = parseStatements(r.BalanceSheetHistory.Statements)
	}
	return fin, nil
}

// --- Helpers ---

func (y *YFinance) summaryURL(symbol, modules string) string {
	y.mu.Lock()
	crumb := y.crumb
	y.mu.Unlock()

	q := url.Values{}
	q.Set("modules", modules)
	if crumb != "" {
		q.Set("crumb", crumb)
	}
	return fmt.Sprintf("%s/v10/finance/quoteSummary/%s?%s", y.baseURL, url.PathEscape(symbol), q.Encode())
}

// quoteSummary fetches the given modules and returns the first result as a
// generic JSON document.
func (y *YFinance) quoteSummary(ctx context.Context, call, symbol, modules string) (any, error) {
	if err := y.ensureCrumb(ctx); err != nil {
		return nil, err
	}

	data, err := y.http.get(ctx, call, y.summaryURL(symbol, modules), map[string]string{"Accept": "application/json"})
	if err != nil {
		y.dropCrumbOnAuthError(err)
		return nil, fmt.Errorf("yfinance quoteSummary %s: %w", symbol, err)
	}

	var resp struct {
		QuoteSummary struct {
			Result []any    `json:"result"`
			Error  *yfError `json:"error"`
		} `json:"quoteSummary"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parse yfinance quoteSummary: %w", err)
	}
	if resp.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("yfinance API error: %s", resp.QuoteSummary.Error.Description)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, symbol)
	}
	return resp.QuoteSummary.Result[0], nil
}

// ensureCrumb obtains the session cookie and crumb the quoteSummary API
// requires. The crumb is reused until the upstream rejects it.
func (y *YFinance) ensureCrumb(ctx context.Context) error {
	y.mu.Lock()
	defer y.mu.Unlock()
	if y.crumb != "" {
		return nil
	}

	if y.cookieURL != "" {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, y.cookieURL, nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", DefaultUserAgent)
		req.Header.Set("Accept", "text/html,application/xhtml+xml")
		resp, err := y.http.client.Do(req)
		if err != nil {
			return fmt.Errorf("fetch yahoo cookies: %w", err)
		}
		// The cookie endpoint answers with an error status but still sets the cookie.
		io.Copy(io.Discard, resp.Body) //nolint:errcheck // drain body
		resp.Body.Close()
	}

	data, err := y.http.get(ctx, "crumb", y.baseURL+"/v1/test/getcrumb", map[string]string{"Accept": "text/plain"})
	if err != nil {
		return fmt.Errorf("fetch yahoo crumb: %w", err)
	}
	crumb := strings.TrimSpace(string(data))
	if crumb == "" || strings.HasPrefix(crumb, "<") {
		return fmt.Errorf("fetch yahoo crumb: %w", ErrNoData)
	}
	y.crumb = crumb
	return nil
}

func (y *YFinance) dropCrumbOnAuthError(err error) {
	var httpErr *ErrHTTP
	if errors.As(err, &httpErr) && (httpErr.StatusCode == http.StatusUnauthorized || httpErr.StatusCode == http.StatusForbidden) {
		y.mu.Lock()
		y.crumb = ""
		y.mu.Unlock()
	}
}

// flattenInfo extracts the known QuoteInfo keys from a quoteSummary result.
func flattenInfo(doc any) models.QuoteInfo {
	info := make(models.QuoteInfo, len(infoPaths))
	for _, p := range infoPaths {
		v, err := jsonpath.Get(p.Path, doc)
		if err != nil {
			continue
		}
		// jsonpath may wrap a single answer in a list
		if list, ok := v.([]any); ok {
			if len(list) == 0 {
				continue
			}
			v = list[0]
		}
		switch val := v.(type) {
		case float64:
			info[p.Key] = val
		case string:
			if strings.TrimSpace(val) != "" {
				info[p.Key] = val
			}
		}
	}
	return info
}

// parseYFBars converts a chart result into bars, dropping rows without a close.
func parseYFBars(result yfChartResult) []models.PriceBar {
	if len(result.Indicators.Quote) == 0 {
		return nil
	}

	q := result.Indicators.Quote[0]
	bars := make([]models.PriceBar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(q.Close) || q.Close[i] == nil {
			continue
		}
		b := models.PriceBar{
			Date:  time.Unix(ts, 0).UTC(),
			Close: *q.Close[i],
		}
		if i < len(q.Open) && q.Open[i] != nil {
			b.Open = *q.Open[i]
		}
		if i < len(q.High) && q.High[i] != nil {
			b.High = *q.High[i]
		}
		if i < len(q.Low) && q.Low[i] != nil {
			b.Low = *q.Low[i]
		}
		if i < len(q.Volume) && q.Volume[i] != nil {
			b.Volume = *q.Volume[i]
		}
		bars = append(bars, b)
	}
	return bars
}

// parseStatements converts raw statement entries into periods, most recent first.
func parseStatements(raw []map[string]json.RawMessage) []models.StatementPeriod {
	periods := make([]models.StatementPeriod, 0, len(raw))
	for _, entry := range raw {
		sp := models.StatementPeriod{Values: make(map[string]float64)}
		for key, msg := range entry {
			var v yfFinVal
			if err := json.Unmarshal(msg, &v); err != nil || v.Raw == nil {
				continue
			}
			switch key {
			case "maxAge":
			case "endDate":
				sp.EndDate = time.Unix(int64(*v.Raw), 0).UTC()
			default:
				sp.Values[key] = *v.Raw
			}
		}
		if sp.EndDate.IsZero() && len(sp.Values) == 0 {
			continue
		}
		periods = append(periods, sp)
	}
	slices.SortStableFunc(periods, func(a, b models.StatementPeriod) int {
		return b.EndDate.Compare(a.EndDate)
	})
	return periods
}
