package sheet

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// NormalizeColumn trims and lowercases a column name.
func NormalizeColumn(name string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
}

// ParseNumber coerces a sheet cell to a float. Thousands separators and
// percent signs are stripped; anything unparseable reads as 0.
func ParseNumber(cell string) float64 {
	s := strings.ReplaceAll(cell, ",", "")
	s = strings.ReplaceAll(s, "%", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// DateParser parses date cells against an ordered list of layouts.
type DateParser struct {
	layouts []string
}

// NewDateParser creates a parser trying layouts in order.
func NewDateParser(layouts []string) *DateParser {
	return &DateParser{layouts: layouts}
}

// Parse returns the calendar date (UTC midnight) of cell. The first matching
// layout wins, so ambiguous numeric dates follow the layout order.
func (p *DateParser) Parse(cell string) (time.Time, bool) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range p.layouts {
		t, err := time.ParseInLocation(layout, s, time.UTC)
		if err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}
