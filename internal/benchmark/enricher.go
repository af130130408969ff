package benchmark

import (
	"context"
	"time"

	"github.com/bobmcallan/nav-portal/internal/common"
	"github.com/bobmcallan/nav-portal/internal/config"
	"github.com/bobmcallan/nav-portal/internal/models"
	"github.com/bobmcallan/nav-portal/internal/telemetry"
)

// Price sources reported on a reading.
const (
	SourceLive  = "live"
	SourceClose = "close"
	SourceNone  = "none"
)

// ChartSource supplies daily bars for a symbol.
type ChartSource interface {
	Chart(ctx context.Context, symbol string, loc *time.Location) (*Chart, error)
}

// Enricher produces the live benchmark reading shown beside the sheet figures.
type Enricher struct {
	source  ChartSource
	symbol  string
	enabled bool
	loc     *time.Location
	logger  *common.Logger
	metrics *telemetry.Metrics
}

// NewEnricher creates an Enricher reading cfg.Symbol from source.
func NewEnricher(cfg config.BenchmarkConfig, source ChartSource, logger *common.Logger, metrics *telemetry.Metrics) *Enricher {
	return &Enricher{
		source:  source,
		symbol:  cfg.Symbol,
		enabled: cfg.Enabled,
		loc:     cfg.Location(),
		logger:  logger,
		metrics: metrics,
	}
}

// PreviousTradingDay returns the weekday before day, stepping back over
// weekends. Holidays are not considered.
func PreviousTradingDay(day time.Time) time.Time {
	prev := day.AddDate(0, 0, -1)
	switch prev.Weekday() {
	case time.Saturday:
		return prev.AddDate(0, 0, -1)
	case time.Sunday:
		return prev.AddDate(0, 0, -2)
	}
	return prev
}

// Reading returns the benchmark day change as of now. Failures never
// propagate: they yield a zero reading carrying a warning. A disabled
// enricher returns a zero reading without one.
func (e *Enricher) Reading(ctx context.Context, now time.Time) models.BenchmarkReading {
	today := dateOf(now.In(e.loc))
	prevDay := PreviousTradingDay(today)

	reading := models.BenchmarkReading{
		Symbol:       e.symbol,
		PreviousDate: prevDay,
		PriceSource:  SourceNone,
		FetchedAt:    now,
	}

	if !e.enabled || e.source == nil {
		return reading
	}

	start := time.Now()
	chart, err := e.source.Chart(ctx, e.symbol, e.loc)
	e.metrics.RecordBenchmarkFetch(time.Since(start), err)
	if err != nil {
		e.logger.Warn().Str("symbol", e.symbol).Err(err).Msg("Benchmark fetch failed")
		reading.Warning = "Live benchmark unavailable; showing zero."
		return reading
	}

	reading.PreviousClose = previousClose(chart.Bars, prevDay, today)

	switch {
	case chart.LivePrice > 0:
		reading.Current = chart.LivePrice
		reading.PriceSource = SourceLive
	default:
		if c, ok := closeOn(chart.Bars, today); ok {
			reading.Current = c
			reading.PriceSource = SourceClose
		}
	}

	if reading.PreviousClose != 0 {
		reading.ChangePct = (reading.Current - reading.PreviousClose) / reading.PreviousClose * 100
	}

	e.logger.Debug().Str("symbol", e.symbol).Float64("current", reading.Current).
		Float64("previous", reading.PreviousClose).Str("source", reading.PriceSource).Msg("Benchmark reading")
	return reading
}

// previousClose returns the close on prevDay, else the latest close before
// today, else 0.
func previousClose(bars []Bar, prevDay, today time.Time) float64 {
	if c, ok := closeOn(bars, prevDay); ok {
		return c
	}
	var latest Bar
	found := false
	for _, b := range bars {
		if b.Date.Before(today) && (!found || b.Date.After(latest.Date)) {
			latest = b
			found = true
		}
	}
	if found {
		return latest.Close
	}
	return 0
}

func closeOn(bars []Bar, day time.Time) (float64, bool) {
	for i := len(bars) - 1; i >= 0; i-- {
		if bars[i].Date.Equal(day) {
			return bars[i].Close, true
		}
	}
	return 0, false
}
