package utils

import (
	"testing"
	"time"
)

func TestStartOfYear(t *testing.T) {
	in := time.Date(2026, time.October, 16, 14, 30, 0, 0, time.UTC)
	got := StartOfYear(in)
	want := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("StartOfYear = %v, want %v", got, want)
	}
}

func TestFormatDate(t *testing.T) {
	in := time.Date(2025, time.March, 7, 0, 0, 0, 0, time.UTC)
	if got := FormatDate(in); got != "2025-03-07" {
		t.Errorf("FormatDate = %q", got)
	}
	if got := FormatDateTime(in); got != "07 Mar 2025, 00:00 UTC" {
		t.Errorf("FormatDateTime = %q", got)
	}
}
