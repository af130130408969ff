package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// WindowKind names a lookback period for a windowed return.
type WindowKind string

const (
	WindowInception WindowKind = "Inception"
	WindowYearly    WindowKind = "Yearly"
	WindowMonthly   WindowKind = "Monthly"
	WindowWeekly    WindowKind = "Weekly"
	WindowDaily     WindowKind = "Daily"
)

// WindowKinds lists the windows in display order.
var WindowKinds = []WindowKind{WindowInception, WindowYearly, WindowMonthly, WindowWeekly, WindowDaily}

// SummaryMetrics holds the point-in-time figures shown in the overview strip.
type SummaryMetrics struct {
	PortfolioValue     decimal.Decimal `json:"portfolio_value"`
	PreviousValue      decimal.Decimal `json:"previous_value"`
	DayChange          decimal.Decimal `json:"day_change"`
	DayChangePct       decimal.Decimal `json:"day_change_pct"`
	AbsoluteGain       decimal.Decimal `json:"absolute_gain"`
	XIRR               decimal.Decimal `json:"xirr"`
	BenchmarkCurrent   decimal.Decimal `json:"benchmark_current"`
	BenchmarkChangePct decimal.Decimal `json:"benchmark_change_pct"`
	// CurrentDrawdownPct is nil when the sheet carries no drawdown data.
	CurrentDrawdownPct *decimal.Decimal `json:"current_drawdown_pct"`
}

// DrawdownAvailable reports whether a current drawdown could be derived.
func (s SummaryMetrics) DrawdownAvailable() bool {
	return s.CurrentDrawdownPct != nil
}

// WindowedReturn is the NAV return over a named window.
// Available is false when the return is undefined for the window.
type WindowedReturn struct {
	Kind      WindowKind `json:"kind"`
	Value     float64    `json:"value"`
	Available bool       `json:"available"`
}

// MonthChange is the change in current value over the last 30 rows.
type MonthChange struct {
	Amount    float64 `json:"amount"`
	Pct       float64 `json:"pct"`
	Available bool    `json:"available"`
}

// PerformanceRow is one line of the performance table.
type PerformanceRow struct {
	Date         time.Time `json:"date"`
	DateLabel    string    `json:"date_label"`
	Strategy     float64   `json:"strategy"`
	Benchmark    float64   `json:"benchmark"`
	StrategyText string    `json:"strategy_text"`
	BenchText    string    `json:"benchmark_text"`
	StrategyTag  string    `json:"strategy_tag"`
	BenchTag     string    `json:"benchmark_tag"`
}

// Tags applied to performance table cells.
const (
	TagPositive = "positive"
	TagNegative = "negative"
)

// BenchmarkReading is the independently fetched benchmark day change.
// It is never reconciled with the sheet-embedded benchmark figures.
type BenchmarkReading struct {
	Symbol        string    `json:"symbol"`
	PreviousDate  time.Time `json:"previous_date"`
	PreviousClose float64   `json:"previous_close"`
	Current       float64   `json:"current"`
	ChangePct     float64   `json:"change_pct"`
	// PriceSource is "live", "close" or "none".
	PriceSource string    `json:"price_source"`
	FetchedAt   time.Time `json:"fetched_at"`
	Warning     string    `json:"warning,omitempty"`
}
