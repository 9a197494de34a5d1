package dashboard

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
)

func parseSVG(t *testing.T, svg string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(svg))
	if err != nil {
		t.Fatalf("parse svg: %v", err)
	}
	return doc
}

func TestTimeSeriesChart(t *testing.T) {
	start := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	mk := func(name string, vals ...float64) TimeSeries {
		ts := TimeSeries{Name: name}
		for i, v := range vals {
			ts.Points = append(ts.Points, TimePoint{Date: start.AddDate(0, 0, i), Value: v})
		}
		return ts
	}

	cfg := DefaultChartConfig()
	cfg.Title = "Stock Price Comparison - 1 Year"
	svg := TimeSeriesChart([]TimeSeries{mk("AAPL", 100, 101, 102), mk("MSFT", 300, 305)}, cfg)

	doc := parseSVG(t, svg)
	paths := doc.Find("path.series")
	if paths.Length() != 2 {
		t.Fatalf("series paths = %d, want 2", paths.Length())
	}
	if got, _ := paths.First().Attr("data-series"); got != "AAPL" {
		t.Errorf("first series = %q, want AAPL", got)
	}
	if got := doc.Find("text.chart-title").Text(); got != cfg.Title {
		t.Errorf("title = %q", got)
	}
}

func TestTimeSeriesChart_Empty(t *testing.T) {
	svg := TimeSeriesChart(nil, ChartConfig{})
	if !strings.Contains(svg, "No data") {
		t.Errorf("empty chart should say No data: %s", svg)
	}
}

func TestBarChart(t *testing.T) {
	svg := BarChart([]BarItem{
		{Label: "AAPL", Value: 28.5},
		{Label: "MSFT", Value: 35.1},
		{Label: "LOSS", Value: -4},
	}, ChartConfig{Title: "P/E"})

	doc := parseSVG(t, svg)
	bars := doc.Find("rect.bar")
	if bars.Length() != 3 {
		t.Fatalf("bars = %d, want 3", bars.Length())
	}
	var labels []string
	bars.Each(func(_ int, s *goquery.Selection) {
		l, _ := s.Attr("data-label")
		labels = append(labels, l)
	})
	if strings.Join(labels, ",") != "AAPL,MSFT,LOSS" {
		t.Errorf("labels = %v", labels)
	}
	if !strings.Contains(svg, "28.50") {
		t.Error("default bar label should use two decimals")
	}
}

func TestEscapeXML(t *testing.T) {
	got := escapeXML(`A&B <"x">`)
	want := "A&amp;B &lt;&quot;x&quot;&gt;"
	if got != want {
		t.Errorf("escapeXML = %q, want %q", got, want)
	}
}
