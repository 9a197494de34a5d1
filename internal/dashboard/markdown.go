package dashboard

import (
	"fmt"
	"strings"

	"github.com/seenimoa/investdash/pkg/utils"
)

// Markdown renders d as a Markdown report. Charts are summarised as tables
// since Markdown cannot carry the SVG.
func Markdown(d *Dashboard, title string, warnings []string) string {
	var sb strings.Builder

	if title == "" {
		title = "Investment Research Dashboard"
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)
	fmt.Fprintf(&sb, "_Period: %s. Symbols: %s. Generated %s._\n\n",
		d.PeriodLabel, strings.Join(d.Symbols, ", "), utils.FormatDateTime(d.GeneratedAt))

	if len(warnings) > 0 {
		sb.WriteString("> **Warnings**\n")
		for _, w := range warnings {
			fmt.Fprintf(&sb, "> - %s\n", w)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Overview\n\n")
	for _, c := range d.Overview.Cards {
		fmt.Fprintf(&sb, "### %s: %s\n\n", c.Symbol, c.Name)
		fmt.Fprintf(&sb, "- **Price:** %s (%s, %s)\n", c.Price, c.Change, c.ChangePct)
		fmt.Fprintf(&sb, "- **Market Cap:** %s\n", c.MarketCap)
		fmt.Fprintf(&sb, "- **P/E Ratio:** %s\n", c.PE)
		fmt.Fprintf(&sb, "- **Dividend Yield:** %s\n", c.DividendYield)
		fmt.Fprintf(&sb, "- **52W High:** %s\n", c.High52)
		fmt.Fprintf(&sb, "- **52W Low:** %s\n", c.Low52)
		fmt.Fprintf(&sb, "- **Sector:** %s\n", c.Sector)
		for _, h := range c.Headlines {
			fmt.Fprintf(&sb, "- [%s](%s)\n", escapeCell(h.Title), h.Link)
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "## %s\n\n", d.Prices.Title)
	writeTable(&sb, d.Prices.Performance)

	sb.WriteString("## Financial Metrics\n\n")
	writeTable(&sb, d.Financials.Metrics)
	if len(d.Financials.Reported.Rows) > 0 {
		sb.WriteString("### Reported (latest fiscal year)\n\n")
		writeTable(&sb, d.Financials.Reported)
	}

	sb.WriteString("## Side-by-Side Comparison\n\n")
	writeTable(&sb, d.Comparison.Table)
	if len(d.Comparison.PE) > 0 {
		sb.WriteString("### P/E Ratio\n\n")
		for _, pe := range d.Comparison.PE {
			fmt.Fprintf(&sb, "- %s: %s\n", pe.Symbol, utils.FormatRatio(pe.Value))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func writeTable(sb *strings.Builder, t Table) {
	if len(t.Rows) == 0 {
		sb.WriteString("_No data._\n\n")
		return
	}
	sb.WriteString("| " + strings.Join(escapeCells(t.Columns), " | ") + " |\n")
	sb.WriteString("|" + strings.Repeat(" --- |", len(t.Columns)) + "\n")
	for _, row := range t.Rows {
		sb.WriteString("| " + strings.Join(escapeCells(row), " | ") + " |\n")
	}
	sb.WriteString("\n")
}

func escapeCells(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = escapeCell(c)
	}
	return out
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
