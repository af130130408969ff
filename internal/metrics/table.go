package metrics

import (
	"fmt"
	"sort"

	"github.com/bobmcallan/nav-portal/internal/models"
)

// DateLabelLayout is the display format for performance table dates.
const DateLabelLayout = "02-01-2006"

// monthRows is the lookback, in rows, for the month change figure.
const monthRows = 30

// PerformanceTable lists daily strategy and benchmark changes, newest first.
func PerformanceTable(rows []models.PortfolioSnapshot) []models.PerformanceRow {
	out := make([]models.PerformanceRow, 0, len(rows))
	for _, r := range rows {
		if !r.HasDate {
			continue
		}
		out = append(out, models.PerformanceRow{
			Date:         r.Date,
			DateLabel:    r.Date.Format(DateLabelLayout),
			Strategy:     r.DayChangePct,
			Benchmark:    r.BenchmarkChangePct,
			StrategyText: fmt.Sprintf("%.2f", r.DayChangePct),
			BenchText:    fmt.Sprintf("%.2f", r.BenchmarkChangePct),
			StrategyTag:  tag(r.DayChangePct),
			BenchTag:     tag(r.BenchmarkChangePct),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}

func tag(v float64) string {
	if v > 0 {
		return models.TagPositive
	}
	return models.TagNegative
}

// MonthChange compares the latest current value with the value thirty rows
// back. Fewer than thirty-one rows leaves it unavailable.
func MonthChange(rows []models.PortfolioSnapshot) models.MonthChange {
	var out models.MonthChange
	if len(rows) <= monthRows {
		return out
	}
	latest := rows[len(rows)-1].CurrentValue
	base := rows[len(rows)-monthRows].CurrentValue
	out.Amount = latest - base
	if base != 0 {
		out.Pct = out.Amount / base * 100
	}
	out.Available = true
	return out
}
