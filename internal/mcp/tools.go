package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/nav-portal/internal/config"
	"github.com/bobmcallan/nav-portal/internal/dashboard"
	"github.com/bobmcallan/nav-portal/internal/metrics"
	"github.com/bobmcallan/nav-portal/internal/models"
)

// dateLayout is the layout of the start and end tool arguments.
const dateLayout = "2006-01-02"

// ViewBuilder builds dashboard views.
type ViewBuilder interface {
	Build(ctx context.Context, q dashboard.Query) (*dashboard.View, error)
}

// BenchmarkReader supplies the live benchmark reading.
type BenchmarkReader interface {
	Reading(ctx context.Context, now time.Time) models.BenchmarkReading
}

// summaryResult is the payload of get_summary.
type summaryResult struct {
	Summary       models.SummaryMetrics   `json:"summary"`
	MonthChange   models.MonthChange      `json:"month_change"`
	LiveBenchmark models.BenchmarkReading `json:"live_benchmark"`
	Warnings      []string                `json:"warnings,omitempty"`
	LoadedAt      time.Time               `json:"loaded_at"`
}

// performanceResult is the payload of get_performance.
type performanceResult struct {
	Window      models.WindowKind       `json:"window"`
	Start       string                  `json:"start"`
	End         string                  `json:"end"`
	Performance models.WindowedReturn   `json:"performance"`
	Returns     []models.WindowedReturn `json:"returns"`
	Rows        int                     `json:"rows"`
	NoData      bool                    `json:"no_data"`
	Message     string                  `json:"message,omitempty"`
}

// RegisterTools adds the dashboard tools to s.
func RegisterTools(s *server.MCPServer, builder ViewBuilder, bench BenchmarkReader) {
	s.AddTool(SummaryTool(), SummaryToolHandler(builder))
	s.AddTool(PerformanceTool(), PerformanceToolHandler(builder))
	s.AddTool(BenchmarkTool(), BenchmarkToolHandler(bench))
	s.AddTool(VersionTool(), VersionToolHandler())
}

// SummaryTool returns the get_summary tool definition.
func SummaryTool() mcp.Tool {
	return mcp.NewTool("get_summary",
		mcp.WithDescription("Get the portfolio overview: value, absolute gain, day change, XIRR, sheet benchmark, drawdown and month change."),
	)
}

// SummaryToolHandler returns the get_summary handler.
func SummaryToolHandler(builder ViewBuilder) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		view, err := builder.Build(ctx, dashboard.Query{})
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return jsonResult(summaryResult{
			Summary:       view.Summary,
			MonthChange:   view.MonthChange,
			LiveBenchmark: view.Benchmark,
			Warnings:      view.Warnings,
			LoadedAt:      view.LoadedAt,
		}), nil
	}
}

// PerformanceTool returns the get_performance tool definition.
func PerformanceTool() mcp.Tool {
	windows := make([]string, 0, len(models.WindowKinds))
	for _, k := range models.WindowKinds {
		windows = append(windows, string(k))
	}
	return mcp.NewTool("get_performance",
		mcp.WithDescription("Get the NAV return over a window for an optional date range. Returns are undefined when the range does not cover the window."),
		mcp.WithString("window", mcp.Description("Return window; defaults to Yearly"), mcp.Enum(windows...)),
		mcp.WithString("start", mcp.Description("Range start, YYYY-MM-DD; defaults to the first sheet date")),
		mcp.WithString("end", mcp.Description("Range end, YYYY-MM-DD; defaults to the last sheet date")),
	)
}

// PerformanceToolHandler returns the get_performance handler.
func PerformanceToolHandler(builder ViewBuilder) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var q dashboard.Query
		var err error

		if w := r.GetString("window", ""); w != "" {
			if q.Window, err = metrics.ParseWindowKind(w); err != nil {
				return errorResult(fmt.Sprintf("Error: %v", err)), nil
			}
		}
		if q.Start, err = parseDate(r.GetString("start", "")); err != nil {
			return errorResult(fmt.Sprintf("Error: start: %v", err)), nil
		}
		if q.End, err = parseDate(r.GetString("end", "")); err != nil {
			return errorResult(fmt.Sprintf("Error: end: %v", err)), nil
		}

		view, err := builder.Build(ctx, q)
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return jsonResult(performanceResult{
			Window:      view.Window,
			Start:       formatDate(view.Start),
			End:         formatDate(view.End),
			Performance: view.Performance,
			Returns:     view.Returns,
			Rows:        len(view.Series),
			NoData:      view.NoData,
			Message:     view.Message,
		}), nil
	}
}

// BenchmarkTool returns the get_benchmark tool definition.
func BenchmarkTool() mcp.Tool {
	return mcp.NewTool("get_benchmark",
		mcp.WithDescription("Get the live benchmark index reading: previous trading day close, current price and day change. Independent of the sheet's benchmark columns."),
	)
}

// BenchmarkToolHandler returns the get_benchmark handler.
func BenchmarkToolHandler(bench BenchmarkReader) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if bench == nil {
			return errorResult("Error: benchmark disabled"), nil
		}
		return jsonResult(bench.Reading(ctx, time.Now())), nil
	}
}

// VersionTool returns the get_version tool definition.
func VersionTool() mcp.Tool {
	return mcp.NewTool("get_version",
		mcp.WithDescription("Get nav-portal version information. Use this to verify connectivity."),
	)
}

// VersionToolHandler returns the get_version handler.
func VersionToolHandler() server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(config.Info()), nil
	}
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected YYYY-MM-DD, got %q", s)
	}
	return t, nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

// errorResult creates an MCP error result.
func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}

// jsonResult marshals v into a text result.
func jsonResult(v interface{}) *mcp.CallToolResult {
	out, err := json.Marshal(v)
	if err != nil {
		return errorResult("failed to marshal result")
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(string(out))},
	}
}
