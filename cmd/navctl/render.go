package main

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/nav-portal/internal/common"
	"github.com/bobmcallan/nav-portal/internal/dashboard"
	"github.com/bobmcallan/nav-portal/internal/metrics"
	"github.com/bobmcallan/nav-portal/internal/models"
)

const notAvailable = "n/a"

// SummaryMarkdown renders the overview cards, month change and movers.
func SummaryMarkdown(v *dashboard.View) string {
	var b strings.Builder
	s := v.Summary

	b.WriteString("# Portfolio Summary\n\n")
	b.WriteString("| Metric | Value |\n|---|---:|\n")
	fmt.Fprintf(&b, "| Portfolio value | %s |\n", common.FormatRupees(s.PortfolioValue))
	fmt.Fprintf(&b, "| Absolute gain | %s |\n", common.FormatSignedRupees(s.AbsoluteGain))
	fmt.Fprintf(&b, "| Day change | %s (%s) |\n", common.FormatSignedRupees(s.DayChange), signedPct(s.DayChangePct))
	fmt.Fprintf(&b, "| XIRR | %s |\n", common.FormatPct(s.XIRR.InexactFloat64()))
	fmt.Fprintf(&b, "| Nifty50 | %s (%s) |\n", common.FormatIndex(s.BenchmarkCurrent), signedPct(s.BenchmarkChangePct))
	if s.DrawdownAvailable() {
		fmt.Fprintf(&b, "| Current drawdown | %s |\n", common.FormatPct(s.CurrentDrawdownPct.InexactFloat64()))
	} else {
		fmt.Fprintf(&b, "| Current drawdown | %s |\n", notAvailable)
	}
	if v.MonthChange.Available {
		fmt.Fprintf(&b, "| Month change | %s (%s) |\n",
			common.FormatSignedRupees(decimal.NewFromFloat(v.MonthChange.Amount)),
			common.FormatSignedPct(v.MonthChange.Pct))
	} else {
		fmt.Fprintf(&b, "| Month change | %s |\n", notAvailable)
	}

	writeMovers(&b, "Top Gainers", v.Gainers)
	writeMovers(&b, "Top Losers", v.Losers)
	writeWarnings(&b, v.Warnings)

	if !v.LoadedAt.IsZero() {
		fmt.Fprintf(&b, "\n_Loaded %s_\n", v.LoadedAt.Format("2006-01-02 15:04:05"))
	}
	return b.String()
}

// PerformanceMarkdown renders the selected window and all window returns.
func PerformanceMarkdown(v *dashboard.View) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Performance: %s\n\n", v.Window)
	if v.NoData {
		fmt.Fprintf(&b, "%s\n", v.Message)
		return b.String()
	}

	fmt.Fprintf(&b, "Range **%s** to **%s**, %d rows.\n\n", v.Start.Format(dateLayout), v.End.Format(dateLayout), len(v.Series))
	fmt.Fprintf(&b, "**%s return:** %s\n\n", v.Window, windowText(v.Performance))

	b.WriteString("| Window | Return |\n|---|---:|\n")
	for _, r := range v.Returns {
		fmt.Fprintf(&b, "| %s | %s |\n", r.Kind, windowText(r))
	}
	writeWarnings(&b, v.Warnings)
	return b.String()
}

// TableMarkdown renders the model performance table, newest first.
func TableMarkdown(v *dashboard.View) string {
	var b strings.Builder

	b.WriteString("# Model Performance\n\n")
	if v.NoData {
		fmt.Fprintf(&b, "%s\n", v.Message)
		return b.String()
	}
	if len(v.Table) == 0 {
		b.WriteString("No dated rows in range.\n")
		return b.String()
	}

	b.WriteString("| Date | Strategy | Nifty50 |\n|---|---:|---:|\n")
	for _, r := range v.Table {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", r.DateLabel, r.StrategyText, r.BenchText)
	}
	return b.String()
}

// BenchmarkMarkdown renders a live benchmark reading.
func BenchmarkMarkdown(r models.BenchmarkReading) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Benchmark %s\n\n", r.Symbol)
	if r.PriceSource == "none" || r.PriceSource == "" {
		b.WriteString("No benchmark price available.\n")
	} else {
		b.WriteString("| Field | Value |\n|---|---:|\n")
		if !r.PreviousDate.IsZero() {
			fmt.Fprintf(&b, "| Previous close (%s) | %s |\n", r.PreviousDate.Format(metrics.DateLabelLayout), pointsf(r.PreviousClose))
		} else {
			fmt.Fprintf(&b, "| Previous close | %s |\n", pointsf(r.PreviousClose))
		}
		fmt.Fprintf(&b, "| Current (%s) | %s |\n", r.PriceSource, pointsf(r.Current))
		fmt.Fprintf(&b, "| Change | %s |\n", common.FormatSignedPct(r.ChangePct))
	}
	if r.Warning != "" {
		fmt.Fprintf(&b, "\n> %s\n", r.Warning)
	}
	return b.String()
}

func writeMovers(b *strings.Builder, title string, movers []models.Mover) {
	if len(movers) == 0 {
		return
	}
	fmt.Fprintf(b, "\n## %s\n\n| Name | Price | Change |\n|---|---:|---:|\n", title)
	for _, m := range movers {
		fmt.Fprintf(b, "| %s | %s | %s |\n", escapeCell(m.Name),
			common.FormatMoney(decimal.NewFromFloat(m.Price)), common.FormatSignedPct(m.ChangePct))
	}
}

func writeWarnings(b *strings.Builder, warnings []string) {
	for _, w := range warnings {
		fmt.Fprintf(b, "\n> %s\n", w)
	}
}

func windowText(r models.WindowedReturn) string {
	if !r.Available {
		return notAvailable
	}
	return common.FormatSignedPct(r.Value)
}

func signedPct(v decimal.Decimal) string {
	return common.FormatSignedPct(v.InexactFloat64())
}

func pointsf(v float64) string {
	return common.FormatIndex(decimal.NewFromFloat(v))
}

// escapeCell keeps sheet text from breaking the markdown table.
func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
