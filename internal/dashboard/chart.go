package dashboard

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// ════════════════════════════════════════════════════════════════════
// SVG Chart Generator
// ════════════════════════════════════════════════════════════════════

// ChartConfig holds rendering parameters for SVG charts.
type ChartConfig struct {
	Width        int    // SVG width in pixels (default: 900)
	Height       int    // SVG height in pixels (default: 500)
	MarginTop    int    // top margin
	MarginRight  int    // right margin
	MarginBottom int    // bottom margin
	MarginLeft   int    // left margin
	BgColor      string // background color
	GridColor    string // grid line color
	TextColor    string // axis label color
	FontSize     int    // axis label font size
	Title        string // chart title
	XLabel       string // x-axis title (optional)
	YLabel       string // y-axis title (optional)
}

// DefaultChartConfig returns sensible defaults for chart rendering.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:        900,
		Height:       500,
		MarginTop:    50,
		MarginRight:  30,
		MarginBottom: 60,
		MarginLeft:   90,
		BgColor:      "#ffffff",
		GridColor:    "#e8e8e8",
		TextColor:    "#333333",
		FontSize:     11,
	}
}

// plotArea returns the usable drawing area dimensions.
func (c ChartConfig) plotArea() (x, y, w, h int) {
	return c.MarginLeft, c.MarginTop,
		c.Width - c.MarginLeft - c.MarginRight,
		c.Height - c.MarginTop - c.MarginBottom
}

// seriesColors is the palette assigned to series and bars in order.
var seriesColors = []string{"#636efa", "#ef553b", "#00cc96", "#ab63fa", "#ffa15a", "#19d3f3", "#ff6692", "#b6e880"}

func seriesColor(i int) string {
	return seriesColors[i%len(seriesColors)]
}

// ════════════════════════════════════════════════════════════════════
// Time Series Line Chart
// ════════════════════════════════════════════════════════════════════

// TimePoint is one observation of a time series.
type TimePoint struct {
	Date  time.Time
	Value float64
}

// TimeSeries is a named line on a TimeSeriesChart.
type TimeSeries struct {
	Name   string
	Points []TimePoint
	Color  string // hex color (optional, auto-assigned if empty)
}

// TimeSeriesChart draws every series against a shared date axis. Series may
// cover different date ranges.
func TimeSeriesChart(series []TimeSeries, cfg ChartConfig) string {
	if cfg.Width == 0 {
		title, xl, yl := cfg.Title, cfg.XLabel, cfg.YLabel
		cfg = DefaultChartConfig()
		cfg.Title, cfg.XLabel, cfg.YLabel = title, xl, yl
	}
	if len(series) == 0 {
		return emptySVG(cfg, "No data")
	}

	// Global time and value ranges
	var minT, maxT time.Time
	minVal, maxVal := math.MaxFloat64, -math.MaxFloat64
	points := 0
	for _, s := range series {
		for _, p := range s.Points {
			if math.IsNaN(p.Value) {
				continue
			}
			if points == 0 || p.Date.Before(minT) {
				minT = p.Date
			}
			if points == 0 || p.Date.After(maxT) {
				maxT = p.Date
			}
			minVal = math.Min(minVal, p.Value)
			maxVal = math.Max(maxVal, p.Value)
			points++
		}
	}
	if points == 0 {
		return emptySVG(cfg, "No data points")
	}

	px, py, pw, ph := cfg.plotArea()

	vRange := maxVal - minVal
	if vRange < 0.001 {
		vRange = 1
	}
	minVal -= vRange * 0.05
	maxVal += vRange * 0.05
	vRange = maxVal - minVal

	tRange := maxT.Sub(minT).Seconds()
	if tRange <= 0 {
		tRange = 1
	}
	toX := func(t time.Time) float64 {
		return float64(px) + t.Sub(minT).Seconds()/tRange*float64(pw)
	}
	toY := func(v float64) float64 {
		return float64(py+ph) - (v-minVal)/vRange*float64(ph)
	}

	var sb strings.Builder
	sb.WriteString(svgHeader(cfg))
	sb.WriteString(fmt.Sprintf(`<rect x="0" y="0" width="%d" height="%d" fill="%s"/>`,
		cfg.Width, cfg.Height, cfg.BgColor))
	writeTitles(&sb, cfg)

	// Y-axis grid
	gridLines := 5
	for i := 0; i <= gridLines; i++ {
		val := minVal + vRange*float64(i)/float64(gridLines)
		y := py + ph - int(float64(ph)*float64(i)/float64(gridLines))
		sb.WriteString(fmt.Sprintf(`<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-dasharray="3,3"/>`,
			px, y, px+pw, y, cfg.GridColor))
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" font-size="%d" fill="%s" text-anchor="end">%.2f</text>`,
			px-5, y+4, cfg.FontSize, cfg.TextColor, val))
	}

	// X-axis date labels
	ticks := 6
	for i := 0; i <= ticks; i++ {
		t := minT.Add(time.Duration(float64(maxT.Sub(minT)) * float64(i) / float64(ticks)))
		x := toX(t)
		sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%d" font-size="%d" fill="%s" text-anchor="middle">%s</text>`,
			x, py+ph+18, cfg.FontSize-1, cfg.TextColor, t.Format("Jan 2006")))
	}

	// Draw series
	for si, s := range series {
		color := s.Color
		if color == "" {
			color = seriesColor(si)
		}

		var pathParts []string
		for _, p := range s.Points {
			if math.IsNaN(p.Value) {
				continue
			}
			cmd := "L"
			if len(pathParts) == 0 {
				cmd = "M"
			}
			pathParts = append(pathParts, fmt.Sprintf("%s%.1f,%.1f", cmd, toX(p.Date), toY(p.Value)))
		}
		if len(pathParts) > 0 {
			sb.WriteString(fmt.Sprintf(`<path class="series" data-series="%s" d="%s" fill="none" stroke="%s" stroke-width="2"/>`,
				escapeXML(s.Name), strings.Join(pathParts, " "), color))
		}

		// Legend
		ly := py + 10 + si*16
		sb.WriteString(fmt.Sprintf(`<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-width="2"/>`,
			px+10, ly, px+30, ly, color))
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" font-size="10" fill="%s">%s</text>`,
			px+35, ly+4, cfg.TextColor, escapeXML(s.Name)))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// ════════════════════════════════════════════════════════════════════
// Bar Chart (Vertical)
// ════════════════════════════════════════════════════════════════════

// BarItem represents a single bar in a bar chart.
type BarItem struct {
	Label   string
	Value   float64
	Display string // value label; defaults to %.2f
	Color   string // optional
}

// BarChart generates an SVG vertical bar chart with one colored bar per item.
func BarChart(items []BarItem, cfg ChartConfig) string {
	if cfg.Width == 0 {
		title, xl, yl := cfg.Title, cfg.XLabel, cfg.YLabel
		cfg = DefaultChartConfig()
		cfg.Title, cfg.XLabel, cfg.YLabel = title, xl, yl
	}
	if len(items) == 0 {
		return emptySVG(cfg, "No data")
	}

	px, py, pw, ph := cfg.plotArea()

	maxVal, minVal := 0.0, 0.0
	for _, item := range items {
		maxVal = math.Max(maxVal, item.Value)
		minVal = math.Min(minVal, item.Value)
	}
	valRange := maxVal - minVal
	if valRange < 0.001 {
		valRange = 1
	}
	toY := func(v float64) float64 {
		return float64(py+ph) - (v-minVal)/valRange*float64(ph)
	}
	zeroY := toY(0)

	slot := float64(pw) / float64(len(items))
	barW := slot * 0.6
	if barW > 80 {
		barW = 80
	}

	var sb strings.Builder
	sb.WriteString(svgHeader(cfg))
	sb.WriteString(fmt.Sprintf(`<rect x="0" y="0" width="%d" height="%d" fill="%s"/>`,
		cfg.Width, cfg.Height, cfg.BgColor))
	writeTitles(&sb, cfg)

	sb.WriteString(fmt.Sprintf(`<line x1="%d" y1="%.1f" x2="%d" y2="%.1f" stroke="#999" stroke-width="1"/>`,
		px, zeroY, px+pw, zeroY))

	for i, item := range items {
		color := item.Color
		if color == "" {
			color = seriesColor(i)
		}
		cx := float64(px) + slot*float64(i) + slot/2
		top, bottom := toY(item.Value), zeroY
		if item.Value < 0 {
			top, bottom = zeroY, toY(item.Value)
		}
		sb.WriteString(fmt.Sprintf(`<rect class="bar" data-label="%s" x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" rx="2"/>`,
			escapeXML(item.Label), cx-barW/2, top, barW, bottom-top, color))

		display := item.Display
		if display == "" {
			display = fmt.Sprintf("%.2f", item.Value)
		}
		sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" font-size="%d" fill="%s" text-anchor="middle">%s</text>`,
			cx, top-5, cfg.FontSize, cfg.TextColor, escapeXML(display)))
		sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%d" font-size="%d" fill="%s" text-anchor="middle">%s</text>`,
			cx, py+ph+18, cfg.FontSize, cfg.TextColor, escapeXML(item.Label)))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// ════════════════════════════════════════════════════════════════════
// SVG Helpers
// ════════════════════════════════════════════════════════════════════

func svgHeader(cfg ChartConfig) string {
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="100%%" viewBox="0 0 %d %d" font-family="sans-serif" role="img">`,
		cfg.Width, cfg.Height)
}

func writeTitles(sb *strings.Builder, cfg ChartConfig) {
	if cfg.Title != "" {
		sb.WriteString(fmt.Sprintf(`<text class="chart-title" x="%d" y="24" font-size="15" font-weight="bold" fill="%s" text-anchor="middle">%s</text>`,
			cfg.Width/2, cfg.TextColor, escapeXML(cfg.Title)))
	}
	px, py, pw, ph := cfg.plotArea()
	if cfg.XLabel != "" {
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" font-size="%d" fill="%s" text-anchor="middle">%s</text>`,
			px+pw/2, py+ph+45, cfg.FontSize+1, cfg.TextColor, escapeXML(cfg.XLabel)))
	}
	if cfg.YLabel != "" {
		cy := py + ph/2
		sb.WriteString(fmt.Sprintf(`<text x="20" y="%d" font-size="%d" fill="%s" text-anchor="middle" transform="rotate(-90,20,%d)">%s</text>`,
			cy, cfg.FontSize+1, cfg.TextColor, cy, escapeXML(cfg.YLabel)))
	}
}

func emptySVG(cfg ChartConfig, msg string) string {
	if cfg.Width == 0 {
		cfg.Width = 400
	}
	if cfg.Height == 0 {
		cfg.Height = 200
	}
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="100%%" viewBox="0 0 %d %d"><rect width="%d" height="%d" fill="#f5f5f5"/><text x="%d" y="%d" text-anchor="middle" fill="#999" font-size="14">%s</text></svg>`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height, cfg.Width/2, cfg.Height/2, escapeXML(msg))
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	return s
}
