package metrics

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bobmcallan/nav-portal/internal/models"
)

// ErrUnknownWindow is returned by ParseWindowKind for unrecognised names.
var ErrUnknownWindow = errors.New("unknown window")

// DefaultWindow is used when no window is requested.
const DefaultWindow = models.WindowYearly

// ParseWindowKind maps a case-insensitive name to a WindowKind. An empty
// name selects DefaultWindow.
func ParseWindowKind(s string) (models.WindowKind, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultWindow, nil
	}
	for _, k := range models.WindowKinds {
		if strings.EqualFold(s, string(k)) {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownWindow, s)
}

// FilterRange returns the dated rows with start <= date <= end, keeping
// their order. Zero bounds are open.
func FilterRange(rows []models.PortfolioSnapshot, start, end time.Time) []models.PortfolioSnapshot {
	out := make([]models.PortfolioSnapshot, 0, len(rows))
	for _, r := range rows {
		if !r.HasDate {
			continue
		}
		if !start.IsZero() && r.Date.Before(start) {
			continue
		}
		if !end.IsZero() && r.Date.After(end) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// DateBounds returns the earliest and latest dates among dated rows.
func DateBounds(rows []models.PortfolioSnapshot) (time.Time, time.Time, bool) {
	var lo, hi time.Time
	found := false
	for _, r := range rows {
		if !r.HasDate {
			continue
		}
		if !found || r.Date.Before(lo) {
			lo = r.Date
		}
		if !found || r.Date.After(hi) {
			hi = r.Date
		}
		found = true
	}
	return lo, hi, found
}

// CalculatePerformance returns the NAV return over the window for an
// ascending series. The result is unavailable when the series is too short
// for the window or a base NAV is zero.
func CalculatePerformance(kind models.WindowKind, rows []models.PortfolioSnapshot) models.WindowedReturn {
	out := models.WindowedReturn{Kind: kind}
	if len(rows) == 0 {
		return out
	}
	latest := rows[len(rows)-1].NAV

	switch kind {
	case models.WindowInception:
		return pctChange(out, rows[0].NAV, latest)

	case models.WindowYearly, models.WindowMonthly, models.WindowWeekly:
		_, maxDate, ok := DateBounds(rows)
		if !ok {
			return out
		}
		cutoff := windowStart(kind, maxDate)
		if rows[0].Date.After(cutoff) {
			return out
		}
		for _, r := range rows {
			if !r.Date.Before(cutoff) {
				return pctChange(out, r.NAV, latest)
			}
		}
		return out

	case models.WindowDaily:
		if len(rows) < 2 {
			return out
		}
		return pctChange(out, rows[len(rows)-2].NAV, latest)
	}

	return out
}

func pctChange(out models.WindowedReturn, base, latest float64) models.WindowedReturn {
	if base == 0 {
		return out
	}
	out.Value = (latest - base) / base * 100
	out.Available = true
	return out
}

// windowStart returns the cutoff date for a lookback window ending at end.
func windowStart(kind models.WindowKind, end time.Time) time.Time {
	switch kind {
	case models.WindowYearly:
		return SubtractMonths(end, 12)
	case models.WindowMonthly:
		return SubtractMonths(end, 1)
	case models.WindowWeekly:
		return end.AddDate(0, 0, -7)
	}
	return end
}

// SubtractMonths steps t back n calendar months, clamping the day to the
// end of the target month (Mar 31 - 1 month = Feb 28 or 29).
func SubtractMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m-time.Month(n), 1, 0, 0, 0, 0, t.Location())
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	hh, mm, ss := t.Clock()
	return time.Date(first.Year(), first.Month(), d, hh, mm, ss, t.Nanosecond(), t.Location())
}
