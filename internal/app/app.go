package app

import (
	"fmt"

	"github.com/bobmcallan/nav-portal/internal/auth"
	"github.com/bobmcallan/nav-portal/internal/benchmark"
	"github.com/bobmcallan/nav-portal/internal/cache"
	"github.com/bobmcallan/nav-portal/internal/common"
	"github.com/bobmcallan/nav-portal/internal/config"
	"github.com/bobmcallan/nav-portal/internal/dashboard"
	"github.com/bobmcallan/nav-portal/internal/handlers"
	"github.com/bobmcallan/nav-portal/internal/mcp"
	"github.com/bobmcallan/nav-portal/internal/sheet"
	"github.com/bobmcallan/nav-portal/internal/telemetry"
)

// App holds all application components and dependencies.
type App struct {
	Config  *config.Config
	Logger  *common.Logger
	Metrics *telemetry.Metrics

	*Pipeline
	Gate *auth.Gate

	// HTTP handlers
	HealthHandler    *handlers.HealthHandler
	VersionHandler   *handlers.VersionHandler
	AuthHandler      *handlers.AuthHandler
	DashboardHandler *handlers.DashboardHandler
	APIHandler       *handlers.APIHandler
	MCPHandler       *mcp.Handler
}

// New initializes the application with all dependencies.
func New(cfg *config.Config, logger *common.Logger) (*App, error) {
	a := &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: telemetry.NewMetrics("nav_portal"),
	}

	pipeline, err := NewPipeline(cfg, logger, a.Metrics)
	if err != nil {
		return nil, err
	}
	a.Pipeline = pipeline

	gate, err := auth.NewGate(cfg.Auth, logger, a.Metrics)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init auth: %w", err)
	}
	a.Gate = gate

	a.initHandlers()

	logger.Info().Msg("application initialization complete")

	return a, nil
}

// Pipeline is the load-derive-enrich chain shared by the portal and navctl.
type Pipeline struct {
	Store     cache.Store
	Loader    *sheet.Loader
	Benchmark *benchmark.Enricher
	Dashboard *dashboard.Service
}

// NewPipeline wires the loader, the benchmark enricher and the dashboard service.
// The fetch cache is only opened when sheet.cache_ttl is positive.
func NewPipeline(cfg *config.Config, logger *common.Logger, m *telemetry.Metrics) (*Pipeline, error) {
	p := &Pipeline{}

	opts := []sheet.Option{sheet.WithMetrics(m)}
	if cfg.Sheet.CacheTTL.Std() > 0 {
		store, err := cache.New(cfg.Cache)
		if err != nil {
			return nil, fmt.Errorf("init cache: %w", err)
		}
		p.Store = store
		opts = append(opts, sheet.WithStore(store))
		logger.Info().Str("backend", cfg.Cache.Backend).Str("ttl", cfg.Sheet.CacheTTL.String()).Msg("Sheet cache enabled")
	} else {
		logger.Debug().Msg("Sheet cache disabled; every request fetches the sheet")
	}

	if cfg.Sheet.URL == "" {
		logger.Warn().Msg("sheet.url is not set; the dashboard will report no source")
	}
	p.Loader = sheet.NewLoader(cfg.Sheet, logger, opts...)

	var source benchmark.ChartSource
	if cfg.Benchmark.Enabled {
		source = benchmark.NewClient(cfg.Benchmark.BaseURL, cfg.Benchmark.Timeout.Std())
	}
	p.Benchmark = benchmark.NewEnricher(cfg.Benchmark, source, logger, m)

	p.Dashboard = dashboard.NewService(p.Loader, p.Benchmark, logger, m)
	return p, nil
}

// Close releases the fetch cache.
func (p *Pipeline) Close() error {
	if p.Store != nil {
		return p.Store.Close()
	}
	return nil
}

// initHandlers initializes all HTTP handlers.
func (a *App) initHandlers() {
	a.HealthHandler = handlers.NewHealthHandler(a.Logger)
	a.VersionHandler = handlers.NewVersionHandler(a.Logger)
	a.AuthHandler = handlers.NewAuthHandler(a.Logger, a.Gate)
	a.DashboardHandler = handlers.NewDashboardHandler(a.Logger, a.Dashboard)
	a.APIHandler = handlers.NewAPIHandler(a.Logger, a.Dashboard, a.Benchmark)
	a.MCPHandler = mcp.NewHandler(a.Dashboard, a.Benchmark, a.Gate, a.Logger)

	a.Logger.Debug().Msg("HTTP handlers initialized")
}

// Close closes all application resources.
func (a *App) Close() error {
	if a.Pipeline != nil {
		return a.Pipeline.Close()
	}
	return nil
}
