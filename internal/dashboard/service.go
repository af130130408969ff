// Package dashboard joins the sheet, the derived metrics and the live
// benchmark into one view per request.
package dashboard

import (
	"context"
	"time"

	"github.com/bobmcallan/nav-portal/internal/common"
	"github.com/bobmcallan/nav-portal/internal/metrics"
	"github.com/bobmcallan/nav-portal/internal/models"
	"github.com/bobmcallan/nav-portal/internal/telemetry"
)

// NoDataMessage is shown when the selected range holds no dated rows.
const NoDataMessage = "No data available for the selected date range."

// TableLoader supplies the normalized sheet.
type TableLoader interface {
	Load(ctx context.Context) (*models.Table, error)
}

// BenchmarkReader supplies the live benchmark reading.
type BenchmarkReader interface {
	Reading(ctx context.Context, now time.Time) models.BenchmarkReading
}

// Query selects the range and window of a view. Zero dates default to the
// sheet's first and last dates; an empty window selects the default window.
type Query struct {
	Start  time.Time
	End    time.Time
	Window models.WindowKind
}

// View is everything the dashboard, the API and the CLI render.
type View struct {
	Summary     models.SummaryMetrics `json:"summary"`
	MonthChange models.MonthChange    `json:"month_change"`

	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	MinDate time.Time `json:"min_date"`
	MaxDate time.Time `json:"max_date"`

	Window      models.WindowKind       `json:"window"`
	Performance models.WindowedReturn   `json:"performance"`
	Returns     []models.WindowedReturn `json:"returns"`

	Series   []models.PortfolioSnapshot `json:"series"`
	Table    []models.PerformanceRow    `json:"table"`
	Holdings []models.Holding           `json:"holdings"`
	Gainers  []models.Mover             `json:"gainers"`
	Losers   []models.Mover             `json:"losers"`

	// Benchmark is the live reading; the sheet's own benchmark figures stay
	// in Summary and are never merged with it.
	Benchmark models.BenchmarkReading `json:"benchmark"`

	NoData   bool      `json:"no_data"`
	Message  string    `json:"message,omitempty"`
	Warnings []string  `json:"warnings,omitempty"`
	LoadedAt time.Time `json:"loaded_at"`
}

// Service builds views.
type Service struct {
	loader    TableLoader
	benchmark BenchmarkReader
	logger    *common.Logger
	metrics   *telemetry.Metrics
	now       func() time.Time
}

// NewService creates a Service. benchmark may be nil.
func NewService(loader TableLoader, benchmark BenchmarkReader, logger *common.Logger, m *telemetry.Metrics) *Service {
	return &Service{
		loader:    loader,
		benchmark: benchmark,
		logger:    logger,
		metrics:   m,
		now:       time.Now,
	}
}

// Build loads the sheet and derives a view for q. Loader errors are
// returned; an empty range is reported through View.NoData.
func (s *Service) Build(ctx context.Context, q Query) (*View, error) {
	now := s.now()

	table, err := s.loader.Load(ctx)
	s.metrics.RecordDashboardBuild(err)
	if err != nil {
		s.logger.Error().Err(err).Msg("Dashboard build failed")
		return nil, err
	}

	window := q.Window
	if window == "" {
		window = metrics.DefaultWindow
	}

	v := &View{
		Summary:     metrics.Summarize(table),
		MonthChange: metrics.MonthChange(table.Rows),
		Window:      window,
		Holdings:    table.Holdings,
		Gainers:     table.Gainers,
		Losers:      table.Losers,
		Warnings:    append([]string(nil), table.Warnings...),
		LoadedAt:    table.LoadedAt,
	}

	v.MinDate, v.MaxDate, _ = metrics.DateBounds(table.Rows)
	v.Start, v.End = q.Start, q.End
	if v.Start.IsZero() {
		v.Start = v.MinDate
	}
	if v.End.IsZero() {
		v.End = v.MaxDate
	}

	if table.HasDateColumn {
		v.Series = metrics.FilterRange(table.Rows, v.Start, v.End)
	}

	v.Performance = models.WindowedReturn{Kind: window}
	if len(v.Series) == 0 {
		v.NoData = true
		v.Message = NoDataMessage
		if !table.HasDateColumn {
			v.Warnings = append(v.Warnings, "No date column found in the sheet.")
		}
	} else {
		v.Performance = metrics.CalculatePerformance(window, v.Series)
		for _, k := range models.WindowKinds {
			v.Returns = append(v.Returns, metrics.CalculatePerformance(k, v.Series))
		}
		v.Table = metrics.PerformanceTable(v.Series)
	}

	// The benchmark is fetched only once the sheet has loaded.
	v.Benchmark = models.BenchmarkReading{PriceSource: "none"}
	if s.benchmark != nil {
		v.Benchmark = s.benchmark.Reading(ctx, now)
	}
	if v.Benchmark.Warning != "" {
		v.Warnings = append(v.Warnings, v.Benchmark.Warning)
	}

	s.logger.Debug().Int("rows", len(v.Series)).Str("window", string(window)).Bool("no_data", v.NoData).Msg("Dashboard built")
	return v, nil
}
