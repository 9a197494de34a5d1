// Package dashboard turns fetched snapshots into the four dashboard views
// (overview, prices, financials, comparison) and renders them as HTML or
// Markdown.
package dashboard

import (
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/investdash/pkg/models"
)

// Options controls view building.
type Options struct {
	GridColumns int         // max overview columns (default: 3)
	Chart       ChartConfig // chart size and colors
	Now         time.Time   // generation timestamp (default: time.Now)
}

// DefaultOptions returns the default build options.
func DefaultOptions() Options {
	return Options{GridColumns: 3, Chart: DefaultChartConfig()}
}

// Dashboard holds every view built from one analysis run.
type Dashboard struct {
	Request     models.AnalysisRequest `json:"request"`
	PeriodLabel string                 `json:"period_label"`
	GeneratedAt time.Time              `json:"generated_at"`
	Symbols     []string               `json:"symbols"`

	Overview   OverviewView   `json:"overview"`
	Prices     PricesView     `json:"prices"`
	Financials FinancialsView `json:"financials"`
	Comparison ComparisonView `json:"comparison"`
}

// Table is a header row plus string cells, ready for display.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Build runs the four view builders concurrently over snaps. Builders only
// read the snapshots.
func Build(req models.AnalysisRequest, snaps *models.SnapshotSet, opts Options) (*Dashboard, error) {
	if snaps == nil || snaps.Len() == 0 {
		return nil, fmt.Errorf("build dashboard: no snapshots")
	}
	if opts.GridColumns <= 0 {
		opts.GridColumns = 3
	}
	if opts.Chart.Width == 0 {
		opts.Chart = DefaultChartConfig()
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	all := snaps.All()
	d := &Dashboard{
		Request:     req,
		PeriodLabel: req.Period.Label(),
		GeneratedAt: opts.Now,
		Symbols:     snaps.Symbols(),
	}

	var g errgroup.Group
	g.Go(func() error {
		d.Overview = BuildOverview(all, opts.GridColumns)
		return nil
	})
	g.Go(func() error {
		d.Prices = BuildPrices(all, req.Period, opts.Chart)
		return nil
	})
	g.Go(func() error {
		d.Financials = BuildFinancials(all, opts.Chart)
		return nil
	})
	g.Go(func() error {
		d.Comparison = BuildComparison(all, opts.Chart)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("build dashboard: %w", err)
	}
	return d, nil
}
