package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"

	"github.com/bobmcallan/nav-portal/internal/dashboard"
	"github.com/bobmcallan/nav-portal/internal/metrics"
)

const dateLayout = "2006-01-02"

// buildView runs one load-and-derive pass for q.
func buildView(ctx context.Context, q dashboard.Query) (*dashboard.View, error) {
	p, err := openPipeline()
	if err != nil {
		return nil, err
	}
	defer p.Close()
	return p.Dashboard.Build(ctx, q)
}

// printMarkdown renders md for the terminal, or prints it as is with -raw.
func printMarkdown(md string) {
	if *rawOutput {
		fmt.Print(md)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err == nil {
		var out string
		if out, err = r.Render(md); err == nil {
			fmt.Print(out)
			return
		}
	}
	fmt.Print(md)
}

func fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return subcommands.ExitFailure
}

type summaryCmd struct{}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display the portfolio overview" }
func (*summaryCmd) Usage() string {
	return `navctl summary

  Displays portfolio value, gains, XIRR, drawdown, month change and movers.
`
}
func (*summaryCmd) SetFlags(*flag.FlagSet) {}

func (*summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	view, err := buildView(ctx, dashboard.Query{})
	if err != nil {
		return fail(err)
	}
	printMarkdown(SummaryMarkdown(view))
	return subcommands.ExitSuccess
}

type performanceCmd struct {
	window string
	start  string
	end    string
}

func (*performanceCmd) Name() string     { return "performance" }
func (*performanceCmd) Synopsis() string { return "display the NAV return over a window" }
func (*performanceCmd) Usage() string {
	return `navctl performance [-window <Inception|Yearly|Monthly|Weekly|Daily>] [-start <date>] [-end <date>]

  Displays the return for the selected window and every other window.
`
}

func (c *performanceCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.window, "window", "", "Return window (defaults to Yearly)")
	f.StringVar(&c.start, "start", "", "Range start, YYYY-MM-DD")
	f.StringVar(&c.end, "end", "", "Range end, YYYY-MM-DD")
}

func (c *performanceCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	q, err := parseQuery(c.start, c.end)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if q.Window, err = metrics.ParseWindowKind(c.window); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	view, err := buildView(ctx, q)
	if err != nil {
		return fail(err)
	}
	printMarkdown(PerformanceMarkdown(view))
	return subcommands.ExitSuccess
}

type tableCmd struct {
	start string
	end   string
}

func (*tableCmd) Name() string     { return "table" }
func (*tableCmd) Synopsis() string { return "display daily strategy and benchmark changes" }
func (*tableCmd) Usage() string {
	return `navctl table [-start <date>] [-end <date>]

  Displays the model performance table, newest first.
`
}

func (c *tableCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.start, "start", "", "Range start, YYYY-MM-DD")
	f.StringVar(&c.end, "end", "", "Range end, YYYY-MM-DD")
}

func (c *tableCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	q, err := parseQuery(c.start, c.end)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	view, err := buildView(ctx, q)
	if err != nil {
		return fail(err)
	}
	printMarkdown(TableMarkdown(view))
	return subcommands.ExitSuccess
}

type benchmarkCmd struct{}

func (*benchmarkCmd) Name() string     { return "benchmark" }
func (*benchmarkCmd) Synopsis() string { return "display the live benchmark reading" }
func (*benchmarkCmd) Usage() string {
	return `navctl benchmark

  Displays the benchmark's previous trading day close, current price and change.
`
}
func (*benchmarkCmd) SetFlags(*flag.FlagSet) {}

func (*benchmarkCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	p, err := openPipeline()
	if err != nil {
		return fail(err)
	}
	defer p.Close()

	printMarkdown(BenchmarkMarkdown(p.Benchmark.Reading(ctx, time.Now())))
	return subcommands.ExitSuccess
}

// parseQuery reads the optional -start and -end flags.
func parseQuery(start, end string) (dashboard.Query, error) {
	var q dashboard.Query
	var err error
	if start != "" {
		if q.Start, err = time.Parse(dateLayout, start); err != nil {
			return q, fmt.Errorf("-start: expected YYYY-MM-DD, got %q", start)
		}
	}
	if end != "" {
		if q.End, err = time.Parse(dateLayout, end); err != nil {
			return q, fmt.Errorf("-end: expected YYYY-MM-DD, got %q", end)
		}
	}
	if !q.Start.IsZero() && !q.End.IsZero() && q.End.Before(q.Start) {
		return q, fmt.Errorf("-end %s is before -start %s", end, start)
	}
	return q, nil
}
