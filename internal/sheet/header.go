package sheet

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bobmcallan/nav-portal/internal/config"
	"github.com/bobmcallan/nav-portal/internal/models"
)

// ErrSchemaMismatch is returned when a configured header figure cannot be
// located in the sheet.
var ErrSchemaMismatch = errors.New("sheet schema mismatch")

// columnIndex maps normalized column names to their first position.
type columnIndex struct {
	names []string
	pos   map[string]int
}

func newColumnIndex(header []string) columnIndex {
	idx := columnIndex{names: make([]string, len(header)), pos: make(map[string]int, len(header))}
	for i, h := range header {
		n := NormalizeColumn(h)
		idx.names[i] = n
		if _, seen := idx.pos[n]; !seen && n != "" {
			idx.pos[n] = i
		}
	}
	return idx
}

// lookup returns the position of the named column, or -1.
func (c columnIndex) lookup(name string) int {
	if p, ok := c.pos[NormalizeColumn(name)]; ok {
		return p
	}
	return -1
}

// firstContaining returns the first column whose name contains sub, or -1.
func (c columnIndex) firstContaining(sub string) int {
	for i, n := range c.names {
		if strings.Contains(n, sub) {
			return i
		}
	}
	return -1
}

type namedField struct {
	name  string
	field config.HeaderField
	dest  *float64
}

// extractHeader reads every configured header figure. All problems are
// collected so a single error names every offending field.
func extractHeader(rows [][]string, cols columnIndex, cfg config.HeaderConfig) (models.HeaderFigures, error) {
	var h models.HeaderFigures
	fields := []namedField{
		{"portfolio_value", cfg.PortfolioValue, &h.PortfolioValue},
		{"absolute_gain", cfg.AbsoluteGain, &h.AbsoluteGain},
		{"benchmark_value", cfg.BenchmarkValue, &h.BenchmarkValue},
		{"xirr", cfg.XIRR, &h.XIRR},
		{"previous_value", cfg.PreviousValue, &h.PreviousValue},
	}

	var problems []string
	for _, f := range fields {
		col, desc := resolveColumn(cols, f.field)
		if col < 0 {
			problems = append(problems, fmt.Sprintf("%s: %s", f.name, desc))
			continue
		}
		if f.field.Row < 0 || f.field.Row >= len(rows) {
			problems = append(problems, fmt.Sprintf("%s: row %d out of range (%d data rows)", f.name, f.field.Row, len(rows)))
			continue
		}
		row := rows[f.field.Row]
		if col >= len(row) {
			problems = append(problems, fmt.Sprintf("%s: row %d has no column %d", f.name, f.field.Row, col))
			continue
		}
		*f.dest = ParseNumber(row[col])
	}

	if len(problems) > 0 {
		return h, fmt.Errorf("%w: %s", ErrSchemaMismatch, strings.Join(problems, "; "))
	}
	return h, nil
}

// resolveColumn finds the column for a header field. A named column takes
// precedence; Index pins a position when no name is configured.
func resolveColumn(cols columnIndex, f config.HeaderField) (int, string) {
	if f.Column != "" {
		p := cols.lookup(f.Column)
		if p < 0 {
			return -1, fmt.Sprintf("column %q not found", NormalizeColumn(f.Column))
		}
		return p, ""
	}
	if f.Index < 0 {
		return -1, "no column configured"
	}
	if f.Index >= len(cols.names) {
		return -1, fmt.Sprintf("column index %d out of range (%d columns)", f.Index, len(cols.names))
	}
	return f.Index, ""
}
