package datasource

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/seenimoa/investdash/pkg/models"
)

// These tests call the live Yahoo Finance endpoints. They run only when
// INVESTDASH_LIVE=1 is set.
func liveClient(t *testing.T) *YFinance {
	t.Helper()
	if os.Getenv("INVESTDASH_LIVE") != "1" {
		t.Skip("set INVESTDASH_LIVE=1 to run live upstream tests")
	}
	return NewYFinance(YFinanceOptions{
		BaseURL:   "https://query1.finance.yahoo.com",
		CookieURL: "https://fc.yahoo.com",
		Timeout:   20 * time.Second,
	})
}

func TestLiveYFinance(t *testing.T) {
	y := liveClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	info, err := y.QuoteInfo(ctx, "AAPL")
	if err != nil {
		t.Fatalf("QuoteInfo: %v", err)
	}
	if _, ok := info.Float("marketCap"); !ok {
		t.Errorf("marketCap missing from %v", info)
	}

	bars, err := y.History(ctx, "AAPL", models.PeriodYTD)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(bars) == 0 {
		t.Error("no bars returned")
	}

	fin, err := y.Financials(ctx, "AAPL")
	if err != nil {
		t.Fatalf("Financials: %v", err)
	}
	if _, ok := fin.LatestIncome(); !ok {
		t.Error("no income statement returned")
	}
}

func TestLiveYFinance_UnknownSymbol(t *testing.T) {
	y := liveClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := y.QuoteInfo(ctx, "ZZZZZZZZ1"); err == nil {
		t.Error("expected an error for an unknown symbol")
	}
}
