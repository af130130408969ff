package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Sheet     SheetConfig     `toml:"sheet"`
	Cache     CacheConfig     `toml:"cache"`
	Benchmark BenchmarkConfig `toml:"benchmark"`
	Auth      AuthConfig      `toml:"auth"`
	Logging   LoggingConfig   `toml:"logging"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

// SheetConfig describes the published portfolio sheet.
type SheetConfig struct {
	URL         string        `toml:"url"`
	Timeout     Duration      `toml:"timeout"`
	Retries     int           `toml:"retries"`
	CacheTTL    Duration      `toml:"cache_ttl"`
	DateLayouts []string      `toml:"date_layouts"`
	Columns     ColumnsConfig `toml:"columns"`
	Header      HeaderConfig  `toml:"header"`
	Movers      MoversConfig  `toml:"movers"`
}

// ColumnsConfig names the sheet columns read by the loader. Names are matched
// after trimming and lowercasing.
type ColumnsConfig struct {
	NAV                string `toml:"nav"`
	DayChange          string `toml:"day_change"`
	DayChangePct       string `toml:"day_change_pct"`
	BenchmarkValue     string `toml:"benchmark_value"`
	BenchmarkChangePct string `toml:"benchmark_change_pct"`
	CurrentValue       string `toml:"current_value"`
	Drawdown           string `toml:"drawdown"`
	BenchmarkDrawdown  string `toml:"benchmark_drawdown"`
	HoldingName        string `toml:"holding_name"`
	HoldingChange      string `toml:"holding_change"`
}

// HeaderConfig locates each scalar header figure.
type HeaderConfig struct {
	PortfolioValue HeaderField `toml:"portfolio_value"`
	AbsoluteGain   HeaderField `toml:"absolute_gain"`
	BenchmarkValue HeaderField `toml:"benchmark_value"`
	XIRR           HeaderField `toml:"xirr"`
	PreviousValue  HeaderField `toml:"previous_value"`
}

// HeaderField addresses one cell by column name and data row. Index pins the
// column by position when set (>= 0), for sheets with blank header cells.
type HeaderField struct {
	Column string `toml:"column"`
	Index  int    `toml:"index"`
	Row    int    `toml:"row"`
}

// MoversConfig gives the zero-based first column of the gainer and loser blocks.
// Each block is three columns wide: name, price, change %.
type MoversConfig struct {
	GainersStart int `toml:"gainers_start"`
	LosersStart  int `toml:"losers_start"`
}

// CacheConfig selects the store behind the sheet fetch cache.
type CacheConfig struct {
	Backend    string      `toml:"backend"`
	MaxEntries int         `toml:"max_entries"`
	Redis      RedisConfig `toml:"redis"`
}

// RedisConfig contains Redis connection settings.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

// BenchmarkConfig contains live index settings.
type BenchmarkConfig struct {
	Enabled  bool     `toml:"enabled"`
	Symbol   string   `toml:"symbol"`
	BaseURL  string   `toml:"base_url"`
	Timeout  Duration `toml:"timeout"`
	Timezone string   `toml:"timezone"`
}

// AuthConfig holds the single dashboard credential.
type AuthConfig struct {
	Username      string   `toml:"username"`
	Password      string   `toml:"password"`
	PasswordHash  string   `toml:"password_hash"`
	SessionSecret string   `toml:"session_secret"`
	SessionTTL    Duration `toml:"session_ttl"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level      string   `toml:"level"`
	Format     string   `toml:"format"`
	Outputs    []string `toml:"outputs"`
	FilePath   string   `toml:"file_path"`
	MaxSizeMB  int      `toml:"max_size_mb"`
	MaxBackups int      `toml:"max_backups"`
}

// Duration is a time.Duration that reads from TOML strings such as "10s".
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Location resolves the benchmark timezone, falling back to UTC.
func (c BenchmarkConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Address returns host:port for the HTTP listener.
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LoadFromFile loads configuration with priority: defaults -> file -> env.
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority:
// defaults -> file1 -> file2 -> ... -> .env -> env.
// Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		err = toml.Unmarshal(data, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	// A missing .env is normal; variables may already be in the environment.
	_ = godotenv.Load()

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies NAV_* environment variable overrides to config.
func applyEnvOverrides(config *Config) {
	if port := os.Getenv("NAV_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("NAV_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if url := os.Getenv("NAV_SHEET_URL"); url != "" {
		config.Sheet.URL = url
	}
	if ttl := os.Getenv("NAV_SHEET_CACHE_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil {
			config.Sheet.CacheTTL = Duration(d)
		}
	}
	if backend := os.Getenv("NAV_CACHE_BACKEND"); backend != "" {
		config.Cache.Backend = backend
	}
	if addr := os.Getenv("NAV_REDIS_ADDR"); addr != "" {
		config.Cache.Redis.Addr = addr
	}
	if pw := os.Getenv("NAV_REDIS_PASSWORD"); pw != "" {
		config.Cache.Redis.Password = pw
	}
	if enabled := os.Getenv("NAV_BENCHMARK_ENABLED"); enabled != "" {
		if b, err := strconv.ParseBool(enabled); err == nil {
			config.Benchmark.Enabled = b
		}
	}
	if symbol := os.Getenv("NAV_BENCHMARK_SYMBOL"); symbol != "" {
		config.Benchmark.Symbol = symbol
	}
	if user := os.Getenv("NAV_AUTH_USERNAME"); user != "" {
		config.Auth.Username = user
	}
	if pw := os.Getenv("NAV_AUTH_PASSWORD"); pw != "" {
		config.Auth.Password = pw
	}
	if hash := os.Getenv("NAV_AUTH_PASSWORD_HASH"); hash != "" {
		config.Auth.PasswordHash = hash
	}
	if secret := os.Getenv("NAV_AUTH_SESSION_SECRET"); secret != "" {
		config.Auth.SessionSecret = secret
	}
	if level := os.Getenv("NAV_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("NAV_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config.
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// Validate returns a list of problems that prevent the portal from starting.
// An empty sheet URL is not an error; the dashboard reports it instead.
func (c *Config) Validate() []string {
	var issues []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		issues = append(issues, fmt.Sprintf("server.port %d is out of range (NAV_SERVER_PORT)", c.Server.Port))
	}
	if c.Auth.Username == "" {
		issues = append(issues, "auth.username is required (NAV_AUTH_USERNAME)")
	}
	if c.Auth.Password == "" && c.Auth.PasswordHash == "" {
		issues = append(issues, "auth.password or auth.password_hash is required (NAV_AUTH_PASSWORD, NAV_AUTH_PASSWORD_HASH)")
	}
	switch strings.ToLower(c.Cache.Backend) {
	case "", "memory", "redis":
	default:
		issues = append(issues, fmt.Sprintf("cache.backend %q must be memory or redis (NAV_CACHE_BACKEND)", c.Cache.Backend))
	}
	if c.Benchmark.Enabled && c.Benchmark.Symbol == "" {
		issues = append(issues, "benchmark.symbol is required when the benchmark is enabled (NAV_BENCHMARK_SYMBOL)")
	}

	return issues
}
