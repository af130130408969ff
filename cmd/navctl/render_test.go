package main

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/nav-portal/internal/dashboard"
	"github.com/bobmcallan/nav-portal/internal/models"
)

func sampleView() *dashboard.View {
	dd := decimal.NewFromFloat(-4.55)
	return &dashboard.View{
		Summary: models.SummaryMetrics{
			PortfolioValue:     decimal.NewFromInt(1000),
			PreviousValue:      decimal.NewFromInt(900),
			DayChange:          decimal.NewFromInt(100),
			DayChangePct:       decimal.NewFromFloat(11.11),
			AbsoluteGain:       decimal.NewFromInt(250),
			XIRR:               decimal.NewFromFloat(18.5),
			BenchmarkCurrent:   decimal.NewFromInt(24500),
			BenchmarkChangePct: decimal.NewFromFloat(0.41),
			CurrentDrawdownPct: &dd,
		},
		MonthChange: models.MonthChange{Amount: 40, Pct: 4.17, Available: true},
		Window:      models.WindowMonthly,
		Start:       time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
		End:         time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC),
		Performance: models.WindowedReturn{Kind: models.WindowMonthly},
		Returns: []models.WindowedReturn{
			{Kind: models.WindowInception, Value: 10, Available: true},
			{Kind: models.WindowMonthly},
		},
		Series: make([]models.PortfolioSnapshot, 5),
		Table: []models.PerformanceRow{
			{DateLabel: "07-03-2025", StrategyText: "+10.53%", BenchText: "+0.41%"},
			{DateLabel: "06-03-2025", StrategyText: "+11.11%", BenchText: "-0.41%"},
		},
		Gainers:  []models.Mover{{Name: "TCS|X", Price: 3500, ChangePct: 4.2}},
		Warnings: []string{"holdings block unreadable"},
	}
}

func TestSummaryMarkdown(t *testing.T) {
	md := SummaryMarkdown(sampleView())

	assert.Contains(t, md, "| Portfolio value | ₹1,000 |")
	assert.Contains(t, md, "| Day change | +₹100 (+11.11%) |")
	assert.Contains(t, md, "| Absolute gain | +₹250 |")
	assert.Contains(t, md, "| XIRR | 18.50% |")
	assert.Contains(t, md, "| Current drawdown | -4.55% |")
	assert.Contains(t, md, "| Month change | +₹40 (+4.17%) |")
	assert.Contains(t, md, `TCS\|X`)
	assert.Contains(t, md, "> holdings block unreadable")
	assert.NotContains(t, md, "Top Losers")
}

func TestSummaryMarkdown_MissingOptionalFigures(t *testing.T) {
	v := sampleView()
	v.Summary.CurrentDrawdownPct = nil
	v.MonthChange = models.MonthChange{}

	md := SummaryMarkdown(v)

	assert.Contains(t, md, "| Current drawdown | n/a |")
	assert.Contains(t, md, "| Month change | n/a |")
}

func TestPerformanceMarkdown(t *testing.T) {
	md := PerformanceMarkdown(sampleView())

	assert.Contains(t, md, "# Performance: Monthly")
	assert.Contains(t, md, "Range **2025-03-03** to **2025-03-07**, 5 rows.")
	assert.Contains(t, md, "**Monthly return:** n/a")
	assert.Contains(t, md, "| Inception | +10.00% |")
}

func TestPerformanceMarkdown_NoData(t *testing.T) {
	v := &dashboard.View{Window: models.WindowDaily, NoData: true, Message: "No data available for the selected date range."}

	md := PerformanceMarkdown(v)

	assert.Contains(t, md, "No data available")
	assert.NotContains(t, md, "| Window |")
}

func TestTableMarkdown(t *testing.T) {
	md := TableMarkdown(sampleView())

	first := strings.Index(md, "07-03-2025")
	second := strings.Index(md, "06-03-2025")
	require.True(t, first >= 0 && second >= 0)
	assert.Less(t, first, second, "newest row first")
	assert.Contains(t, md, "| 07-03-2025 | +10.53% | +0.41% |")
}

func TestBenchmarkMarkdown(t *testing.T) {
	r := models.BenchmarkReading{
		Symbol:        "^NSEI",
		PreviousDate:  time.Date(2025, 3, 6, 0, 0, 0, 0, time.UTC),
		PreviousClose: 24400,
		Current:       24500,
		ChangePct:     0.41,
		PriceSource:   "live",
	}

	md := BenchmarkMarkdown(r)

	assert.Contains(t, md, "| Previous close (06-03-2025) | 24,400 |")
	assert.Contains(t, md, "| Current (live) | 24,500 |")
	assert.Contains(t, md, "| Change | +0.41% |")
}

func TestBenchmarkMarkdown_Unavailable(t *testing.T) {
	md := BenchmarkMarkdown(models.BenchmarkReading{Symbol: "^NSEI", PriceSource: "none", Warning: "benchmark fetch failed"})

	assert.Contains(t, md, "No benchmark price available.")
	assert.Contains(t, md, "> benchmark fetch failed")
}

func TestParseQuery(t *testing.T) {
	q, err := parseQuery("2025-03-03", "2025-03-07")
	require.NoError(t, err)
	assert.Equal(t, 3, q.Start.Day())
	assert.Equal(t, 7, q.End.Day())

	_, err = parseQuery("03/03/2025", "")
	assert.Error(t, err)

	_, err = parseQuery("2025-03-07", "2025-03-03")
	assert.Error(t, err)
}
