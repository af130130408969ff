// Package benchmark fetches the live benchmark index reading.
package benchmark

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/cenkalti/backoff/v4"
)

const (
	userAgent  = "Mozilla/5.0 (compatible; nav-portal/1.0)"
	retryDelay = 500 * time.Millisecond
)

// JSONPath expressions into the chart response.
const (
	pathPrice      = "$.chart.result[0].meta.regularMarketPrice"
	pathTimestamps = "$.chart.result[0].timestamp"
	pathCloses     = "$.chart.result[0].indicators.quote[0].close"
	pathError      = "$.chart.error.description"
)

// Bar is one daily close.
type Bar struct {
	Date  time.Time
	Close float64
}

// Chart is the parsed chart response.
type Chart struct {
	// LivePrice is zero when the feed has no regular market price.
	LivePrice float64
	// Bars are in feed order (ascending), dated in the exchange timezone.
	Bars []Bar
}

// Client reads daily bars from a Yahoo-style chart endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retries    int
}

// NewClient creates a client against baseURL. Each attempt is bounded by timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		retries:    1,
	}
}

// Chart fetches the last five daily bars for symbol.
func (c *Client) Chart(ctx context.Context, symbol string, loc *time.Location) (*Chart, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?range=5d&interval=1d", c.baseURL, url.PathEscape(symbol))

	var body []byte
	op := func() error {
		var err error
		body, err = c.get(ctx, endpoint)
		return err
	}
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(retryDelay), uint64(c.retries)), ctx)
	if err := backoff.Retry(op, b); err != nil {
		return nil, err
	}

	return ParseChart(body, loc)
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach chart feed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("chart feed returned %d", resp.StatusCode)
		if resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}
	return body, nil
}

// ParseChart extracts the live price and daily bars from a chart response.
func ParseChart(body []byte, loc *time.Location) (*Chart, error) {
	if loc == nil {
		loc = time.UTC
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse chart response: %w", err)
	}

	if desc, err := jsonpath.Get(pathError, doc); err == nil {
		if s, ok := desc.(string); ok && s != "" {
			return nil, fmt.Errorf("chart feed error: %s", s)
		}
	}

	chart := &Chart{}
	if v, err := jsonpath.Get(pathPrice, doc); err == nil {
		if f, ok := v.(float64); ok {
			chart.LivePrice = f
		}
	}

	rawTS, err := jsonpath.Get(pathTimestamps, doc)
	if err != nil {
		return nil, fmt.Errorf("chart response has no timestamps: %w", err)
	}
	rawClose, err := jsonpath.Get(pathCloses, doc)
	if err != nil {
		return nil, fmt.Errorf("chart response has no closes: %w", err)
	}
	timestamps, _ := rawTS.([]any)
	closes, _ := rawClose.([]any)

	for i, ts := range timestamps {
		sec, ok := ts.(float64)
		if !ok || i >= len(closes) {
			continue
		}
		// null closes mark bars without a settled price
		cl, ok := closes[i].(float64)
		if !ok {
			continue
		}
		local := time.Unix(int64(sec), 0).In(loc)
		chart.Bars = append(chart.Bars, Bar{Date: dateOf(local), Close: cl})
	}

	return chart, nil
}

// dateOf returns the calendar date of t as UTC midnight.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
