package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/bobmcallan/nav-portal/internal/common"
	"github.com/bobmcallan/nav-portal/internal/models"
)

// BenchmarkReader supplies the live benchmark reading.
type BenchmarkReader interface {
	Reading(ctx context.Context, now time.Time) models.BenchmarkReading
}

// PerformanceResponse is the body of GET /api/performance.
type PerformanceResponse struct {
	Window      models.WindowKind     `json:"window"`
	Start       time.Time             `json:"start"`
	End         time.Time             `json:"end"`
	Performance models.WindowedReturn `json:"performance"`
	NoData      bool                  `json:"no_data"`
	Message     string                `json:"message,omitempty"`
}

// APIHandler serves the dashboard data as JSON.
type APIHandler struct {
	logger    *common.Logger
	builder   ViewBuilder
	benchmark BenchmarkReader
	now       func() time.Time
}

// NewAPIHandler creates a new API handler.
func NewAPIHandler(logger *common.Logger, builder ViewBuilder, benchmark BenchmarkReader) *APIHandler {
	return &APIHandler{
		logger:    logger,
		builder:   builder,
		benchmark: benchmark,
		now:       time.Now,
	}
}

// HandleDashboard handles GET /api/dashboard.
func (h *APIHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	q, err := ParseQuery(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	view, err := h.builder.Build(r.Context(), q)
	if err != nil {
		h.logError(err, "/api/dashboard")
		WriteError(w, loadErrorStatus(err), err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, view)
}

// HandlePerformance handles GET /api/performance.
func (h *APIHandler) HandlePerformance(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	q, err := ParseQuery(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	view, err := h.builder.Build(r.Context(), q)
	if err != nil {
		h.logError(err, "/api/performance")
		WriteError(w, loadErrorStatus(err), err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, PerformanceResponse{
		Window:      view.Window,
		Start:       view.Start,
		End:         view.End,
		Performance: view.Performance,
		NoData:      view.NoData,
		Message:     view.Message,
	})
}

// HandleBenchmark handles GET /api/benchmark.
func (h *APIHandler) HandleBenchmark(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	if h.benchmark == nil {
		WriteError(w, http.StatusServiceUnavailable, "benchmark disabled")
		return
	}

	WriteJSON(w, http.StatusOK, h.benchmark.Reading(r.Context(), h.now()))
}

func (h *APIHandler) logError(err error, route string) {
	if h.logger != nil {
		h.logger.Error().Err(err).Str("route", route).Msg("API request failed")
	}
}
