package dashboard

import (
	"github.com/seenimoa/investdash/internal/analysis/performance"
	"github.com/seenimoa/investdash/pkg/models"
	"github.com/seenimoa/investdash/pkg/utils"
)

// OverviewView is the grid of summary cards.
type OverviewView struct {
	Columns int    `json:"columns"`
	Cards   []Card `json:"cards"`
}

// Card summarises one symbol.
type Card struct {
	Symbol        string            `json:"symbol"`
	Name          string            `json:"name"`
	Price         string            `json:"price"`
	Change        string            `json:"change"`
	ChangePct     string            `json:"change_pct"`
	Direction     string            `json:"direction"` // up, down or flat
	MarketCap     string            `json:"market_cap"`
	PE            string            `json:"pe"`
	DividendYield string            `json:"dividend_yield"`
	High52        string            `json:"high_52w"`
	Low52         string            `json:"low_52w"`
	Sector        string            `json:"sector"`
	Headlines     []models.Headline `json:"headlines,omitempty"`
}

// BuildOverview builds one card per snapshot in order, laid out in
// min(len(snaps), maxColumns) columns.
func BuildOverview(snaps []*models.SymbolSnapshot, maxColumns int) OverviewView {
	v := OverviewView{Columns: min(len(snaps), maxColumns)}
	for _, s := range snaps {
		v.Cards = append(v.Cards, buildCard(s))
	}
	return v
}

func buildCard(s *models.SymbolSnapshot) Card {
	m := performance.Compute(s)
	info := s.Info

	c := Card{
		Symbol:        s.Symbol,
		Name:          s.Name(),
		Price:         utils.FormatUSD(m.CurrentPrice),
		Change:        utils.FormatUSD(m.ChangeAbs),
		ChangePct:     utils.FormatSignedPercent(m.ChangePct),
		Direction:     "flat",
		MarketCap:     infoFloat(info, "marketCap", utils.FormatUSDWhole),
		PE:            infoFloat(info, "trailingPE", utils.FormatRatio),
		DividendYield: infoFloat(info, "dividendYield", utils.FormatRatioPercent),
		High52:        infoFloat(info, "fiftyTwoWeekHigh", utils.FormatUSD),
		Low52:         infoFloat(info, "fiftyTwoWeekLow", utils.FormatUSD),
		Sector:        infoString(info, "sector"),
		Headlines:     s.Headlines,
	}
	switch {
	case m.ChangePct > 0:
		c.Direction = "up"
	case m.ChangePct < 0:
		c.Direction = "down"
	}
	return c
}

// infoFloat formats a numeric info field, or N/A when absent.
func infoFloat(info models.QuoteInfo, key string, format func(float64) string) string {
	v, ok := info.Float(key)
	return utils.OrNA(v, ok, format)
}

// infoString returns a string info field, or N/A when absent.
func infoString(info models.QuoteInfo, key string) string {
	if s, ok := info.String(key); ok {
		return s
	}
	return utils.NA
}
