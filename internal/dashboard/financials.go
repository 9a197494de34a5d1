package dashboard

import (
	"html/template"

	"github.com/seenimoa/investdash/pkg/models"
	"github.com/seenimoa/investdash/pkg/utils"
)

// FinancialColumns are the headers of the key financial metrics table.
var FinancialColumns = []string{
	"Ticker", "Revenue", "Net Income", "Operating Margin", "Profit Margin",
	"ROE", "Debt/Equity", "Current Ratio", "Free Cash Flow",
}

// ReportedColumns are the headers of the latest fiscal year statement table.
var ReportedColumns = []string{
	"Ticker", "Period End", "Total Revenue", "Net Income",
	"Total Assets", "Total Liabilities", "Stockholders' Equity",
}

// FinancialsView is the financial metrics table and revenue chart.
type FinancialsView struct {
	Metrics      Table         `json:"metrics"`
	Reported     Table         `json:"reported"`
	RevenueChart template.HTML `json:"revenue_chart_svg"`
	Revenue      []BarValue    `json:"revenue"`
}

// BarValue is one plotted bar.
type BarValue struct {
	Symbol string  `json:"symbol"`
	Value  float64 `json:"value"`
}

// BuildFinancials builds the metrics table, the reported statement table and
// the revenue chart. Missing revenue is plotted as zero.
func BuildFinancials(snaps []*models.SymbolSnapshot, cfg ChartConfig) FinancialsView {
	v := FinancialsView{
		Metrics:  Table{Columns: FinancialColumns},
		Reported: Table{Columns: ReportedColumns},
	}

	bars := make([]BarItem, 0, len(snaps))
	for _, s := range snaps {
		info := s.Info
		v.Metrics.Rows = append(v.Metrics.Rows, []string{
			s.Symbol,
			infoFloat(info, "totalRevenue", utils.FormatUSDWhole),
			infoFloat(info, "netIncomeToCommon", utils.FormatUSDWhole),
			infoFloat(info, "operatingMargins", utils.FormatRatioPercent),
			infoFloat(info, "profitMargins", utils.FormatRatioPercent),
			infoFloat(info, "returnOnEquity", utils.FormatRatioPercent),
			infoFloat(info, "debtToEquity", utils.FormatRatio),
			infoFloat(info, "currentRatio", utils.FormatRatio),
			infoFloat(info, "freeCashflow", utils.FormatUSDWhole),
		})

		if row, ok := reportedRow(s); ok {
			v.Reported.Rows = append(v.Reported.Rows, row)
		}

		rev := info.FloatOr("totalRevenue", 0)
		v.Revenue = append(v.Revenue, BarValue{Symbol: s.Symbol, Value: rev})
		bars = append(bars, BarItem{Label: s.Symbol, Value: rev, Display: utils.FormatUSDCompact(rev)})
	}

	cfg.Title = "Total Revenue Comparison"
	cfg.XLabel = "Ticker"
	cfg.YLabel = "Revenue ($)"
	v.RevenueChart = template.HTML(BarChart(bars, cfg)) //nolint:gosec // generated SVG, labels escaped
	return v
}

// reportedRow summarises the latest annual statements of s.
func reportedRow(s *models.SymbolSnapshot) ([]string, bool) {
	inc, hasInc := s.Financials.LatestIncome()
	bal, hasBal := s.Financials.LatestBalance()
	if !hasInc && !hasBal {
		return nil, false
	}

	end := inc.EndDate
	if end.IsZero() {
		end = bal.EndDate
	}
	period := utils.NA
	if !end.IsZero() {
		period = utils.FormatDate(end)
	}

	return []string{
		s.Symbol,
		period,
		statementValue(inc, "totalRevenue"),
		statementValue(inc, "netIncome"),
		statementValue(bal, "totalAssets"),
		statementValue(bal, "totalLiab"),
		statementValue(bal, "totalStockholderEquity"),
	}, true
}

func statementValue(p models.StatementPeriod, key string) string {
	v, ok := p.Values[key]
	return utils.OrNA(v, ok, utils.FormatUSDCompact)
}
