package models

import "time"

// PortfolioSnapshot is one trading day of the portfolio sheet.
type PortfolioSnapshot struct {
	Date               time.Time `json:"date"`
	HasDate            bool      `json:"-"`
	NAV                float64   `json:"nav"`
	BenchmarkValue     float64   `json:"benchmark_value"`
	DayChangePct       float64   `json:"day_change_pct"`
	BenchmarkChangePct float64   `json:"benchmark_change_pct"`
	Drawdown           float64   `json:"drawdown"`
	BenchmarkDrawdown  float64   `json:"benchmark_drawdown"`
	CurrentValue       float64   `json:"current_value"`
}

// HeaderFigures holds the scalar summary cells carried by the sheet
// alongside the daily series.
type HeaderFigures struct {
	PortfolioValue float64 `json:"portfolio_value"`
	AbsoluteGain   float64 `json:"absolute_gain"`
	BenchmarkValue float64 `json:"benchmark_value"`
	XIRR           float64 `json:"xirr"`
	PreviousValue  float64 `json:"previous_value"`
}

// Holding is one tile of the day-change heatmap.
type Holding struct {
	Name      string  `json:"name"`
	ChangePct float64 `json:"change_pct"`
}

// Mover is one row of the top gainers or top losers table.
type Mover struct {
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	ChangePct float64 `json:"change_pct"`
}

// Table is the normalized result of one sheet load.
type Table struct {
	// Rows are sorted ascending by date; undated rows trail in source order.
	Rows    []PortfolioSnapshot `json:"rows"`
	Header  HeaderFigures       `json:"header"`
	Columns []string            `json:"columns"`

	HasDateColumn bool `json:"has_date_column"`
	HasDrawdown   bool `json:"has_drawdown"`

	Holdings []Holding `json:"holdings"`
	Gainers  []Mover   `json:"gainers"`
	Losers   []Mover   `json:"losers"`

	// Warnings are user-facing notes about optional data that could not be read.
	Warnings []string  `json:"warnings,omitempty"`
	LoadedAt time.Time `json:"loaded_at"`
}

// DatedRows returns the rows that carry a parseable date, in ascending order.
func (t *Table) DatedRows() []PortfolioSnapshot {
	out := make([]PortfolioSnapshot, 0, len(t.Rows))
	for _, r := range t.Rows {
		if r.HasDate {
			out = append(out, r)
		}
	}
	return out
}

// HasColumn reports whether the normalized column name is present.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}
