// Package sheet loads the published portfolio sheet into a normalized table.
package sheet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/bobmcallan/nav-portal/internal/cache"
	"github.com/bobmcallan/nav-portal/internal/common"
	"github.com/bobmcallan/nav-portal/internal/config"
	"github.com/bobmcallan/nav-portal/internal/models"
	"github.com/bobmcallan/nav-portal/internal/telemetry"
	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/singleflight"
)

// ErrNoSource is returned when no sheet URL or path is configured.
var ErrNoSource = errors.New("no sheet source configured")

const (
	userAgent     = "nav-portal/1.0"
	maxSheetBytes = 32 << 20
	retryDelay    = 500 * time.Millisecond
)

// Loader fetches and parses the configured sheet.
type Loader struct {
	cfg     config.SheetConfig
	store   cache.Store
	client  *http.Client
	logger  *common.Logger
	metrics *telemetry.Metrics
	group   singleflight.Group
	now     func() time.Time
}

// Option configures a Loader.
type Option func(*Loader)

// WithStore enables the fetch cache when cfg.CacheTTL is positive.
func WithStore(s cache.Store) Option {
	return func(l *Loader) { l.store = s }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(l *Loader) { l.client = c }
}

// WithMetrics records fetch telemetry.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(l *Loader) { l.metrics = m }
}

// NewLoader creates a Loader for cfg.
func NewLoader(cfg config.SheetConfig, logger *common.Logger, opts ...Option) *Loader {
	l := &Loader{
		cfg:    cfg,
		client: &http.Client{},
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Source returns the configured sheet location.
func (l *Loader) Source() string {
	return l.cfg.URL
}

// Load fetches the sheet and returns the normalized table.
func (l *Loader) Load(ctx context.Context) (*models.Table, error) {
	if strings.TrimSpace(l.cfg.URL) == "" {
		return nil, ErrNoSource
	}

	data, err := l.fetch(ctx)
	if err != nil {
		return nil, err
	}

	table, err := Parse(data, l.cfg)
	if err != nil {
		l.logger.Error().Str("source", l.cfg.URL).Err(err).Msg("Failed to parse sheet")
		return nil, err
	}
	table.LoadedAt = l.now()

	for _, w := range table.Warnings {
		l.logger.Warn().Str("source", l.cfg.URL).Msg(w)
	}
	l.metrics.SetSheetRows(len(table.Rows))

	l.logger.Debug().Int("rows", len(table.Rows)).Bool("dated", table.HasDateColumn).Msg("Sheet loaded")
	return table, nil
}

// fetch returns the raw sheet bytes. Concurrent calls share one fetch.
func (l *Loader) fetch(ctx context.Context) ([]byte, error) {
	source := l.cfg.URL
	key := cache.MakeKey("sheet", source)
	caching := l.store != nil && l.cfg.CacheTTL.Std() > 0

	if caching {
		data, ok, err := l.store.Get(ctx, key)
		if err != nil {
			l.logger.Warn().Err(err).Msg("Sheet cache read failed")
		} else if ok {
			l.metrics.RecordSheetCacheHit()
			return data, nil
		}
	}

	// The shared fetch outlives any single caller; each attempt is bounded by sheet.timeout.
	ch := l.group.DoChan(source, func() (interface{}, error) {
		return l.fetchWithRetry(context.WithoutCancel(ctx), source)
	})
	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("fetch sheet: %w", ctx.Err())
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}
	data := res.Val.([]byte)

	if caching {
		if err := l.store.Set(ctx, key, data, l.cfg.CacheTTL.Std()); err != nil {
			l.logger.Warn().Err(err).Msg("Sheet cache write failed")
		}
	}
	return data, nil
}

func (l *Loader) fetchWithRetry(ctx context.Context, source string) ([]byte, error) {
	retries := l.cfg.Retries
	if retries < 0 {
		retries = 0
	}
	if retries > 1 {
		retries = 1
	}

	var data []byte
	attempt := 0
	op := func() error {
		attempt++
		start := time.Now()
		var err error
		kind := "http"
		if isRemote(source) {
			data, err = l.fetchHTTP(ctx, source)
		} else {
			kind = "file"
			data, err = readFile(source)
		}
		l.metrics.RecordSheetFetch(kind, time.Since(start), err)
		if err != nil {
			l.logger.Warn().Str("source", source).Int("attempt", attempt).Err(err).Msg("Sheet fetch failed")
		}
		return err
	}

	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(retryDelay), uint64(retries)), ctx)
	if err := backoff.Retry(op, b); err != nil {
		return nil, fmt.Errorf("fetch sheet: %w", err)
	}
	return data, nil
}

func isRemote(source string) bool {
	s := strings.ToLower(source)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func (l *Loader) fetchHTTP(ctx context.Context, url string) ([]byte, error) {
	if timeout := l.cfg.Timeout.Std(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/csv")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach sheet: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSheetBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("sheet returned %d", resp.StatusCode)
		if resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}
	return body, nil
}

func readFile(source string) ([]byte, error) {
	path := strings.TrimPrefix(source, "file://")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to read sheet file %s: %w", path, err))
	}
	return data, nil
}
