// Package metrics derives dashboard figures from a loaded sheet table.
package metrics

import (
	"github.com/bobmcallan/nav-portal/internal/models"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Summarize computes the overview figures from the table's header cells and
// its latest dated row.
func Summarize(t *models.Table) models.SummaryMetrics {
	h := t.Header
	s := models.SummaryMetrics{
		PortfolioValue:   decimal.NewFromFloat(h.PortfolioValue),
		PreviousValue:    decimal.NewFromFloat(h.PreviousValue),
		AbsoluteGain:     decimal.NewFromFloat(h.AbsoluteGain),
		XIRR:             decimal.NewFromFloat(h.XIRR),
		BenchmarkCurrent: decimal.NewFromFloat(h.BenchmarkValue),
	}

	s.DayChange = s.PortfolioValue.Sub(s.PreviousValue)
	if !s.PreviousValue.IsZero() {
		s.DayChangePct = s.DayChange.Div(s.PreviousValue).Mul(hundred)
	}

	last, ok := latestRow(t)
	if ok {
		s.BenchmarkChangePct = decimal.NewFromFloat(last.BenchmarkChangePct)
		if t.HasDrawdown {
			dd := decimal.NewFromFloat(last.Drawdown)
			s.CurrentDrawdownPct = &dd
		}
	}

	return s
}

// latestRow returns the last dated row, or the last row when nothing is dated.
func latestRow(t *models.Table) (models.PortfolioSnapshot, bool) {
	for i := len(t.Rows) - 1; i >= 0; i-- {
		if t.Rows[i].HasDate {
			return t.Rows[i], true
		}
	}
	if n := len(t.Rows); n > 0 {
		return t.Rows[n-1], true
	}
	return models.PortfolioSnapshot{}, false
}
