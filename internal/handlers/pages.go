package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/nav-portal/internal/common"
	"github.com/bobmcallan/nav-portal/internal/metrics"
	"github.com/bobmcallan/nav-portal/internal/models"
)

// FindPagesDir locates the pages directory.
func FindPagesDir() string {
	dirs := []string{
		"./pages",
		"../pages",
		"../../pages",
		".",
	}

	for _, dir := range dirs {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			abs, _ := filepath.Abs(dir)
			return abs
		}
	}

	return "."
}

// loadTemplates parses the page and partial templates with the display helpers.
func loadTemplates() *template.Template {
	pagesDir := FindPagesDir()

	templates := template.Must(template.New("").Funcs(templateFuncs).ParseGlob(filepath.Join(pagesDir, "*.html")))
	template.Must(templates.ParseGlob(filepath.Join(pagesDir, "partials", "*.html")))
	return templates
}

var templateFuncs = template.FuncMap{
	"rupees":       common.FormatRupees,
	"signedRupees": common.FormatSignedRupees,
	"rupeesf":      func(v float64) string { return common.FormatRupees(decimal.NewFromFloat(v)) },
	"moneyf":       func(v float64) string { return common.FormatMoney(decimal.NewFromFloat(v)) },
	"points":       common.FormatIndex,
	"pointsf":      func(v float64) string { return common.FormatIndex(decimal.NewFromFloat(v)) },
	"pct":          func(v interface{}) string { return common.FormatPct(toFloat(v)) },
	"signedPct":    func(v interface{}) string { return common.FormatSignedPct(toFloat(v)) },
	"tone":         func(v interface{}) string { return tone(toFloat(v)) },
	"isoDate":      func(t time.Time) string { return dateOrEmpty(t, QueryDateLayout) },
	"dayDate":      func(t time.Time) string { return dateOrEmpty(t, metrics.DateLabelLayout) },
	"stamp":        func(t time.Time) string { return dateOrEmpty(t, "2006-01-02 15:04:05") },
	"lower":        strings.ToLower,
	"json":         toJSON,
}

func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case decimal.Decimal:
		return n.InexactFloat64()
	case *decimal.Decimal:
		if n == nil {
			return 0
		}
		return n.InexactFloat64()
	case int:
		return float64(n)
	default:
		return 0
	}
}

func tone(v float64) string {
	if v > 0 {
		return models.TagPositive
	}
	return models.TagNegative
}

func dateOrEmpty(t time.Time, layout string) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(layout)
}

// toJSON embeds v in a script block; json.Marshal escapes <, > and &.
func toJSON(v interface{}) (template.JS, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("template json: %w", err)
	}
	return template.JS(b), nil
}

// render executes a page template, logging and answering 500 on failure.
func render(w http.ResponseWriter, logger *common.Logger, templates *template.Template, name string, data map[string]interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.ExecuteTemplate(w, name, data); err != nil {
		if logger != nil {
			logger.Error().Str("template", name).Str("error", err.Error()).Msg("failed to render page")
		}
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// StaticFileHandler serves static files (CSS, JS, images).
func StaticFileHandler(w http.ResponseWriter, r *http.Request) {
	staticDir := filepath.Join(FindPagesDir(), "static")

	path := strings.TrimPrefix(r.URL.Path, "/static/")
	fullPath := filepath.Join(staticDir, path)

	// prevent directory traversal
	absStaticDir, _ := filepath.Abs(staticDir)
	absFullPath, _ := filepath.Abs(fullPath)
	if !strings.HasPrefix(absFullPath, absStaticDir+string(filepath.Separator)) {
		http.NotFound(w, r)
		return
	}

	http.ServeFile(w, r, fullPath)
}

type csrfContextKey struct{}

// WithCSRFToken returns a context carrying the request's CSRF token.
func WithCSRFToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, csrfContextKey{}, token)
}

// CSRFToken returns the token attached by WithCSRFToken.
func CSRFToken(ctx context.Context) string {
	token, _ := ctx.Value(csrfContextKey{}).(string)
	return token
}
