package handlers

import (
	"context"
	"html/template"
	"net/http"

	"github.com/bobmcallan/nav-portal/internal/auth"
	"github.com/bobmcallan/nav-portal/internal/common"
	"github.com/bobmcallan/nav-portal/internal/config"
	"github.com/bobmcallan/nav-portal/internal/dashboard"
	"github.com/bobmcallan/nav-portal/internal/models"
)

// ViewBuilder builds dashboard views.
type ViewBuilder interface {
	Build(ctx context.Context, q dashboard.Query) (*dashboard.View, error)
}

// chartPoint is one x/y pair handed to the chart script.
type chartPoint struct {
	Date      string  `json:"date"`
	NAV       float64 `json:"nav"`
	Benchmark float64 `json:"benchmark"`
	DD        float64 `json:"dd"`
	BenchDD   float64 `json:"bench_dd"`
}

// DashboardHandler serves the dashboard page.
type DashboardHandler struct {
	logger    *common.Logger
	templates *template.Template
	builder   ViewBuilder
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(logger *common.Logger, builder ViewBuilder) *DashboardHandler {
	return &DashboardHandler{
		logger:    logger,
		templates: loadTemplates(),
		builder:   builder,
	}
}

// ServeHTTP handles GET / and GET /dashboard.
func (h *DashboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	q, err := ParseQuery(r)
	if err != nil {
		http.Error(w, "Bad request: "+err.Error(), http.StatusBadRequest)
		return
	}

	view, err := h.builder.Build(r.Context(), q)
	if err != nil {
		if h.logger != nil {
			h.logger.Error().Err(err).Msg("failed to build dashboard")
		}
		http.Error(w, "Portfolio sheet unavailable: "+err.Error(), loadErrorStatus(err))
		return
	}

	data := map[string]interface{}{
		"Page":          "dashboard",
		"View":          view,
		"Windows":       models.WindowKinds,
		"Chart":         chartSeries(view.Series),
		"CSRF":          CSRFToken(r.Context()),
		"PortalVersion": config.GetVersion(),
	}
	if sess, ok := auth.SessionFromContext(r.Context()); ok {
		data["Username"] = sess.Username
	}

	render(w, h.logger, h.templates, "dashboard.html", data)
}

func chartSeries(rows []models.PortfolioSnapshot) []chartPoint {
	out := make([]chartPoint, 0, len(rows))
	for _, r := range rows {
		out = append(out, chartPoint{
			Date:      r.Date.Format(QueryDateLayout),
			NAV:       r.NAV,
			Benchmark: r.BenchmarkValue,
			DD:        r.Drawdown,
			BenchDD:   r.BenchmarkDrawdown,
		})
	}
	return out
}
