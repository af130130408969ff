package sheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/bobmcallan/nav-portal/internal/config"
	"github.com/bobmcallan/nav-portal/internal/models"
)

// ErrEmptySheet is returned when the CSV has no header row.
var ErrEmptySheet = errors.New("sheet is empty")

// Parse builds a normalized Table from CSV bytes.
func Parse(data []byte, cfg config.SheetConfig) (*models.Table, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptySheet
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	var records [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}
		records = append(records, rec)
	}

	cols := newColumnIndex(header)

	hdr, err := extractHeader(records, cols, cfg.Header)
	if err != nil {
		return nil, err
	}

	layouts := cfg.DateLayouts
	if len(layouts) == 0 {
		layouts = config.DefaultDateLayouts
	}

	t := &models.Table{
		Header:  hdr,
		Columns: cols.names,
	}
	t.Rows = buildRows(records, cols, cfg.Columns, NewDateParser(layouts), t)

	t.Holdings = holdingsFor(records, cols, cfg.Columns, t)
	t.Gainers = moversFor(records, len(header), cfg.Movers.GainersStart, "top gainers", t)
	t.Losers = moversFor(records, len(header), cfg.Movers.LosersStart, "top losers", t)

	return t, nil
}

// cell returns the value at col or "" when the column is absent or short.
func cell(rec []string, col int) string {
	if col < 0 || col >= len(rec) {
		return ""
	}
	return rec[col]
}

func buildRows(records [][]string, cols columnIndex, names config.ColumnsConfig, dates *DateParser, t *models.Table) []models.PortfolioSnapshot {
	dateCol := cols.firstContaining("date")
	t.HasDateColumn = dateCol >= 0

	navCol := cols.lookup(names.NAV)
	ddCol := cols.lookup(names.Drawdown)
	benchCol := cols.lookup(names.BenchmarkValue)
	benchDDCol := cols.lookup(names.BenchmarkDrawdown)
	dayPctCol := cols.lookup(names.DayChangePct)
	benchPctCol := cols.lookup(names.BenchmarkChangePct)
	currentCol := cols.lookup(names.CurrentValue)

	rows := make([]models.PortfolioSnapshot, 0, len(records))
	for _, rec := range records {
		s := models.PortfolioSnapshot{
			NAV:                ParseNumber(cell(rec, navCol)),
			BenchmarkValue:     ParseNumber(cell(rec, benchCol)),
			DayChangePct:       ParseNumber(cell(rec, dayPctCol)),
			BenchmarkChangePct: ParseNumber(cell(rec, benchPctCol)),
			Drawdown:           ParseNumber(cell(rec, ddCol)),
			BenchmarkDrawdown:  ParseNumber(cell(rec, benchDDCol)),
			CurrentValue:       ParseNumber(cell(rec, currentCol)),
		}
		if dateCol >= 0 {
			s.Date, s.HasDate = dates.Parse(cell(rec, dateCol))
		}
		rows = append(rows, s)
	}

	SortByDate(rows)

	switch {
	case ddCol >= 0:
		t.HasDrawdown = true
	case navCol >= 0:
		BackfillDrawdown(rows, func(s *models.PortfolioSnapshot) float64 { return s.NAV },
			func(s *models.PortfolioSnapshot, v float64) { s.Drawdown = v })
		t.HasDrawdown = true
	}
	if benchDDCol < 0 && benchCol >= 0 {
		BackfillDrawdown(rows, func(s *models.PortfolioSnapshot) float64 { return s.BenchmarkValue },
			func(s *models.PortfolioSnapshot, v float64) { s.BenchmarkDrawdown = v })
	}

	return rows
}

// SortByDate orders rows ascending by date. Undated rows keep their source
// order after all dated rows.
func SortByDate(rows []models.PortfolioSnapshot) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.HasDate != b.HasDate {
			return a.HasDate
		}
		if !a.HasDate {
			return false
		}
		return a.Date.Before(b.Date)
	})
}

// BackfillDrawdown sets each row's drawdown to value minus the running
// maximum of value, walking rows in their current order.
func BackfillDrawdown(rows []models.PortfolioSnapshot, value func(*models.PortfolioSnapshot) float64, set func(*models.PortfolioSnapshot, float64)) {
	var peak float64
	for i := range rows {
		v := value(&rows[i])
		if i == 0 || v > peak {
			peak = v
		}
		set(&rows[i], v-peak)
	}
}

func holdingsFor(records [][]string, cols columnIndex, names config.ColumnsConfig, t *models.Table) []models.Holding {
	nameCol := cols.lookup(names.HoldingName)
	changeCol := cols.lookup(names.HoldingChange)
	if nameCol < 0 || changeCol < 0 {
		t.Warnings = append(t.Warnings, fmt.Sprintf("Heatmap unavailable: columns %q and %q are required.",
			NormalizeColumn(names.HoldingName), NormalizeColumn(names.HoldingChange)))
		return nil
	}
	return extractHoldings(records, nameCol, changeCol)
}

func moversFor(records [][]string, width, start int, label string, t *models.Table) []models.Mover {
	movers, err := extractMovers(records, width, start)
	if err != nil {
		t.Warnings = append(t.Warnings, fmt.Sprintf("Could not read %s: %v.", label, err))
		return nil
	}
	return movers
}
