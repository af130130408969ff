package config

import "time"

// DefaultDateLayouts lists the accepted date formats in priority order.
// Ambiguous numeric dates are read day-first.
var DefaultDateLayouts = []string{
	"2006-01-02",
	"02-01-2006",
	"02/01/2006",
	"2-1-2006",
	"2/1/2006",
	"2-Jan-2006",
	"2 Jan 2006",
	"Jan 2, 2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// NewDefaultConfig creates a configuration with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 4241,
			Host: "localhost",
		},
		Sheet: SheetConfig{
			Timeout:     Duration(15 * time.Second),
			Retries:     1,
			CacheTTL:    0,
			DateLayouts: append([]string(nil), DefaultDateLayouts...),
			Columns: ColumnsConfig{
				NAV:                "nav",
				DayChange:          "day change",
				DayChangePct:       "day change %",
				BenchmarkValue:     "nifty50 value",
				BenchmarkChangePct: "nifty50 change %",
				CurrentValue:       "current value",
				Drawdown:           "dd",
				BenchmarkDrawdown:  "dd_n50",
				HoldingName:        "portfolio",
				HoldingChange:      "today change",
			},
			Header: HeaderConfig{
				PortfolioValue: HeaderField{Column: "portfolio value", Index: -1, Row: 0},
				AbsoluteGain:   HeaderField{Column: "absolute gain", Index: -1, Row: 0},
				BenchmarkValue: HeaderField{Column: "nifty50", Index: -1, Row: 0},
				XIRR:           HeaderField{Column: "portfolio value", Index: -1, Row: 2},
				PreviousValue:  HeaderField{Column: "portfolio value", Index: -1, Row: 4},
			},
			Movers: MoversConfig{
				GainersStart: 14,
				LosersStart:  18,
			},
		},
		Cache: CacheConfig{
			Backend:    "memory",
			MaxEntries: 16,
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "nav-portal:",
			},
		},
		Benchmark: BenchmarkConfig{
			Enabled:  true,
			Symbol:   "^NSEI",
			BaseURL:  "https://query1.finance.yahoo.com",
			Timeout:  Duration(10 * time.Second),
			Timezone: "Asia/Kolkata",
		},
		Auth: AuthConfig{
			Username:   "admin",
			SessionTTL: Duration(12 * time.Hour),
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Outputs:    []string{"console", "file"},
			FilePath:   "logs/nav-portal.log",
			MaxSizeMB:  1,
			MaxBackups: 20,
		},
	}
}
