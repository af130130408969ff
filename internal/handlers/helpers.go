package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bobmcallan/nav-portal/internal/dashboard"
	"github.com/bobmcallan/nav-portal/internal/metrics"
	"github.com/bobmcallan/nav-portal/internal/sheet"
)

// QueryDateLayout is the layout of the start and end query parameters.
const QueryDateLayout = "2006-01-02"

// RequireMethod validates that the HTTP request uses the specified method.
// Returns true if the method matches, false otherwise (and writes error response).
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method || (method == http.MethodGet && r.Method == http.MethodHead) {
		return true
	}
	http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	return false
}

// WriteJSON writes a JSON response with the specified status code and data.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteError writes a standard error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, message string) error {
	return WriteJSON(w, statusCode, map[string]string{
		"status": "error",
		"error":  message,
	})
}

// ParseQuery reads start, end and window from the request query.
func ParseQuery(r *http.Request) (dashboard.Query, error) {
	var q dashboard.Query
	values := r.URL.Query()

	var err error
	if q.Start, err = parseQueryDate(values.Get("start")); err != nil {
		return q, fmt.Errorf("start: %w", err)
	}
	if q.End, err = parseQueryDate(values.Get("end")); err != nil {
		return q, fmt.Errorf("end: %w", err)
	}
	if !q.Start.IsZero() && !q.End.IsZero() && q.End.Before(q.Start) {
		return q, errors.New("end is before start")
	}
	if w := values.Get("window"); w != "" {
		if q.Window, err = metrics.ParseWindowKind(w); err != nil {
			return q, err
		}
	}
	return q, nil
}

func parseQueryDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(QueryDateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected YYYY-MM-DD, got %q", s)
	}
	return t, nil
}

// loadErrorStatus maps a dashboard build error to an HTTP status.
func loadErrorStatus(err error) int {
	switch {
	case errors.Is(err, sheet.ErrNoSource):
		return http.StatusServiceUnavailable
	case errors.Is(err, sheet.ErrSchemaMismatch), errors.Is(err, sheet.ErrEmptySheet):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}
