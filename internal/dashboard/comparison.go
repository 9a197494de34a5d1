package dashboard

import (
	"fmt"
	"html/template"

	"github.com/seenimoa/investdash/pkg/models"
	"github.com/seenimoa/investdash/pkg/utils"
)

// comparisonMetric is one column of the side-by-side comparison.
type comparisonMetric struct {
	Key    string
	Header string
}

var comparisonMetrics = []comparisonMetric{
	{"currentPrice", "Current Price"},
	{"marketCap", "Market Cap"},
	{"trailingPE", "P/E Ratio (TTM)"},
	{"forwardPE", "Forward P/E"},
	{"priceToBook", "Price/Book"},
	{"dividendYield", "Dividend Yield"},
	{"beta", "Beta"},
	{"fiftyTwoWeekHigh", "52W High"},
	{"fiftyTwoWeekLow", "52W Low"},
	{"averageVolume", "Avg Volume"},
}

// P/E values outside (0, maxChartPE) are left off the valuation chart.
const maxChartPE = 100

// ComparisonView is the side-by-side table and P/E chart.
type ComparisonView struct {
	Table   Table         `json:"table"` // first column is the ticker
	PEChart template.HTML `json:"pe_chart_svg"`
	PE      []BarValue    `json:"pe"`
}

// ComparisonColumns returns the headers of the comparison metrics.
func ComparisonColumns() []string {
	cols := make([]string, len(comparisonMetrics))
	for i, m := range comparisonMetrics {
		cols[i] = m.Header
	}
	return cols
}

// BuildComparison builds one row per snapshot with the fixed comparison
// metrics, and a P/E chart of the symbols with a plausible trailing P/E.
func BuildComparison(snaps []*models.SymbolSnapshot, cfg ChartConfig) ComparisonView {
	v := ComparisonView{Table: Table{Columns: append([]string{"Ticker"}, ComparisonColumns()...)}}

	var bars []BarItem
	for _, s := range snaps {
		row := make([]string, 0, len(comparisonMetrics)+1)
		row = append(row, s.Symbol)
		for _, m := range comparisonMetrics {
			row = append(row, formatComparisonValue(m.Key, s.Info[m.Key]))
		}
		v.Table.Rows = append(v.Table.Rows, row)

		if pe, ok := s.Info.Float("trailingPE"); ok && pe > 0 && pe < maxChartPE {
			v.PE = append(v.PE, BarValue{Symbol: s.Symbol, Value: pe})
			bars = append(bars, BarItem{Label: s.Symbol, Value: pe})
		}
	}

	if len(bars) > 0 {
		cfg.Title = "P/E Ratio Comparison"
		cfg.XLabel = "Ticker"
		cfg.YLabel = "P/E Ratio"
		v.PEChart = template.HTML(BarChart(bars, cfg)) //nolint:gosec // generated SVG, labels escaped
	}
	return v
}

// formatComparisonValue renders market cap as whole dollars, dividend yield
// as a percentage and other numbers with two decimals. Strings pass through.
func formatComparisonValue(key string, v any) string {
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case int64:
		f = float64(val)
	case int:
		f = float64(val)
	case string:
		if val == "" {
			return utils.NA
		}
		return val
	case nil:
		return utils.NA
	default:
		return fmt.Sprint(val)
	}

	switch key {
	case "marketCap":
		return utils.FormatUSDWhole(f)
	case "dividendYield":
		return utils.FormatRatioPercent(f)
	default:
		return utils.FormatRatio(f)
	}
}
