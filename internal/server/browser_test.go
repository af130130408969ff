//go:build browser

package server

import (
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// Run with: go test -tags browser ./internal/server/ (needs a local Chrome).

func newBrowser(t *testing.T) (context.Context, context.CancelFunc) {
	t.Helper()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	ctx, ctxCancel := chromedp.NewContext(allocCtx)
	ctx, timeoutCancel := context.WithTimeout(ctx, 30*time.Second)

	return ctx, func() {
		timeoutCancel()
		ctxCancel()
		allocCancel()
	}
}

// jsErrors collects uncaught exceptions and console.error calls.
type jsErrors struct {
	mu   sync.Mutex
	errs []string
}

func collectJSErrors(ctx context.Context) *jsErrors {
	c := &jsErrors{}
	chromedp.ListenTarget(ctx, func(ev interface{}) {
		c.mu.Lock()
		defer c.mu.Unlock()

		switch e := ev.(type) {
		case *runtime.EventExceptionThrown:
			desc := e.ExceptionDetails.Text
			if e.ExceptionDetails.Exception != nil && e.ExceptionDetails.Exception.Description != "" {
				desc = e.ExceptionDetails.Exception.Description
			}
			c.errs = append(c.errs, fmt.Sprintf("EXCEPTION: %s", desc))
		case *runtime.EventConsoleAPICalled:
			if e.Type != runtime.APITypeError {
				return
			}
			var parts []string
			for _, arg := range e.Args {
				if arg.Value != nil {
					parts = append(parts, string(arg.Value))
				}
			}
			msg := strings.Join(parts, " ")
			if msg != "" && !strings.Contains(msg, "favicon") {
				c.errs = append(c.errs, "console.error: "+msg)
			}
		}
	})
	return c
}

func (c *jsErrors) list() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.errs...)
}

func startBrowserServer(t *testing.T) string {
	t.Helper()
	ts := httptest.NewServer(New(newTestApp(t)).Handler())
	t.Cleanup(ts.Close)
	return ts.URL
}

func browserLogin(ctx context.Context, base string) error {
	return chromedp.Run(ctx,
		chromedp.Navigate(base+"/"),
		chromedp.WaitVisible("#login-form", chromedp.ByQuery),
		chromedp.SendKeys(`input[name="username"]`, "admin", chromedp.ByQuery),
		chromedp.SendKeys(`input[name="password"]`, "s3cret", chromedp.ByQuery),
		chromedp.Submit("#login-form", chromedp.ByQuery),
		chromedp.WaitVisible("#metric-value", chromedp.ByQuery),
	)
}

func TestBrowser_LoginShowsDashboard(t *testing.T) {
	base := startBrowserServer(t)
	ctx, cancel := newBrowser(t)
	defer cancel()

	if err := browserLogin(ctx, base); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	var value string
	if err := chromedp.Run(ctx, chromedp.Text("#metric-value", &value, chromedp.ByQuery)); err != nil {
		t.Fatalf("read metric: %v", err)
	}
	if !strings.Contains(value, "₹") {
		t.Errorf("expected rupee-formatted portfolio value, got %q", value)
	}
}

func TestBrowser_BadPasswordShowsError(t *testing.T) {
	base := startBrowserServer(t)
	ctx, cancel := newBrowser(t)
	defer cancel()

	var msg string
	err := chromedp.Run(ctx,
		chromedp.Navigate(base+"/login"),
		chromedp.WaitVisible("#login-form", chromedp.ByQuery),
		chromedp.SendKeys(`input[name="username"]`, "admin", chromedp.ByQuery),
		chromedp.SendKeys(`input[name="password"]`, "nope", chromedp.ByQuery),
		chromedp.Submit("#login-form", chromedp.ByQuery),
		chromedp.WaitVisible("#login-error", chromedp.ByQuery),
		chromedp.Text("#login-error", &msg, chromedp.ByQuery),
	)
	if err != nil {
		t.Fatalf("login attempt failed: %v", err)
	}
	if !strings.Contains(msg, "Invalid") {
		t.Errorf("expected invalid credentials message, got %q", msg)
	}
}

func TestBrowser_TableSortsByColumn(t *testing.T) {
	base := startBrowserServer(t)
	ctx, cancel := newBrowser(t)
	defer cancel()

	if err := browserLogin(ctx, base); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	var before, after string
	err := chromedp.Run(ctx,
		chromedp.Text("#performance-table tbody tr:first-child td:first-child", &before, chromedp.ByQuery),
		chromedp.Click("#performance-table thead th:first-child", chromedp.ByQuery),
		chromedp.Sleep(200*time.Millisecond),
		chromedp.Text("#performance-table tbody tr:first-child td:first-child", &after, chromedp.ByQuery),
	)
	if err != nil {
		t.Fatalf("sort table: %v", err)
	}
	if before == after {
		t.Errorf("expected first row to change after sorting, still %q", after)
	}
}

func TestBrowser_DashboardNoJSErrors(t *testing.T) {
	base := startBrowserServer(t)
	ctx, cancel := newBrowser(t)
	defer cancel()

	errs := collectJSErrors(ctx)
	if err := browserLogin(ctx, base); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	_ = chromedp.Run(ctx, chromedp.Sleep(500*time.Millisecond))

	if list := errs.list(); len(list) > 0 {
		t.Errorf("JS errors on dashboard:\n  %s", strings.Join(list, "\n  "))
	}
}
