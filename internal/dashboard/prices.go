package dashboard

import (
	"html/template"

	"github.com/seenimoa/investdash/internal/analysis/performance"
	"github.com/seenimoa/investdash/pkg/models"
	"github.com/seenimoa/investdash/pkg/utils"
)

// PerformanceColumns are the headers of the performance summary table.
var PerformanceColumns = []string{"Ticker", "Start Price", "Current Price", "Total Return", "Volatility (Std Dev)"}

// PricesView is the price comparison chart and performance summary.
type PricesView struct {
	Title       string        `json:"title"`
	Chart       template.HTML `json:"chart_svg"`
	Series      []SeriesInfo  `json:"series"`
	Performance Table         `json:"performance"`
}

// SeriesInfo describes one line of the price chart.
type SeriesInfo struct {
	Symbol string `json:"symbol"`
	Points int    `json:"points"`
	Color  string `json:"color"`
}

// BuildPrices draws one close-price line per snapshot and a performance row
// for every snapshot with at least two points.
func BuildPrices(snaps []*models.SymbolSnapshot, period models.Period, cfg ChartConfig) PricesView {
	v := PricesView{
		Title:       "Stock Price Comparison - " + period.Label(),
		Performance: Table{Columns: PerformanceColumns},
	}

	series := make([]TimeSeries, 0, len(snaps))
	for i, s := range snaps {
		if len(s.History) == 0 {
			continue
		}
		ts := TimeSeries{Name: s.Symbol, Color: seriesColor(i)}
		for _, b := range s.History {
			ts.Points = append(ts.Points, TimePoint{Date: b.Date, Value: b.Close})
		}
		series = append(series, ts)
		v.Series = append(v.Series, SeriesInfo{Symbol: s.Symbol, Points: len(ts.Points), Color: ts.Color})

		m := performance.Compute(s)
		if m.Points < 2 {
			continue
		}
		v.Performance.Rows = append(v.Performance.Rows, []string{
			s.Symbol,
			utils.FormatUSD(m.StartPrice),
			utils.FormatUSD(m.EndPrice),
			utils.OrNA(m.TotalReturnPct, m.HasTotalReturn, utils.FormatPercent),
			utils.OrNA(m.Volatility, m.HasVolatility, utils.FormatRatio),
		})
	}

	cfg.Title = v.Title
	cfg.XLabel = "Date"
	cfg.YLabel = "Price ($)"
	v.Chart = template.HTML(TimeSeriesChart(series, cfg)) //nolint:gosec // generated SVG, labels escaped
	return v
}
