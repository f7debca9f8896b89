package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

type Config struct {
	Generator GeneratorConfig
	Analyzer  AnalyzerConfig
	Dashboard DashboardConfig
	Server    ServerConfig
	Logger    LoggerConfig
	Security  SecurityConfig
	Catalog   string
}

type GeneratorConfig struct {
	Records   int
	Seed      uint64
	StartDate time.Time
	EndDate   time.Time
	DataFile  string
}

type AnalyzerConfig struct {
	DataFile   string
	TopN       int
	ReportFile string
	XLSXFile   string
	SQLiteFile string
	CacheDir   string
	Segments   SegmentThresholds
}

// SegmentThresholds drives customer tiering: VIP above either VIP bound,
// Regular at or above RegularMinOrders, Occasional otherwise.
type SegmentThresholds struct {
	VIPMinOrders     int     `yaml:"vip_min_orders" toml:"vip_min_orders"`
	VIPMinSpend      float64 `yaml:"vip_min_spend" toml:"vip_min_spend"`
	RegularMinOrders int     `yaml:"regular_min_orders" toml:"regular_min_orders"`
}

func DefaultSegmentThresholds() SegmentThresholds {
	return SegmentThresholds{
		VIPMinOrders:     5,
		VIPMinSpend:      2000,
		RegularMinOrders: 3,
	}
}

func (t SegmentThresholds) Validate() error {
	if t.VIPMinOrders < 0 || t.RegularMinOrders < 0 || t.VIPMinSpend < 0 {
		return fmt.Errorf("segment thresholds cannot be negative, got vip_orders=%d vip_spend=%.2f regular_orders=%d",
			t.VIPMinOrders, t.VIPMinSpend, t.RegularMinOrders)
	}
	return nil
}

type DashboardConfig struct {
	DataFile  string
	OutputDir string
	TopN      int
	Workers   int
}

type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

type LoggerConfig struct {
	Level  string
	Format string
}

type SecurityConfig struct {
	EnableRateLimit bool
	RateLimitRPS    int
	RateLimitBurst  int
	TrustedProxies  []string
}

func Load() (*Config, error) {
	dataFile := getEnvString("SALES_DATA_FILE", "data/sales_data.csv")
	topN := getEnvInt("SALES_TOP_N", 10)

	startDate, err := getEnvDate("SALES_START_DATE", "2023-01-01")
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	endDate, err := getEnvDate("SALES_END_DATE", "2024-12-31")
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	defaults := DefaultSegmentThresholds()

	cfg := &Config{
		Generator: GeneratorConfig{
			Records:   getEnvInt("SALES_RECORDS", 10000),
			Seed:      getEnvUint("SALES_SEED", 42),
			StartDate: startDate,
			EndDate:   endDate,
			DataFile:  dataFile,
		},
		Analyzer: AnalyzerConfig{
			DataFile:   dataFile,
			TopN:       topN,
			ReportFile: getEnvString("SALES_REPORT_FILE", ""),
			XLSXFile:   getEnvString("SALES_XLSX_FILE", ""),
			SQLiteFile: getEnvString("SALES_SQLITE_FILE", ""),
			CacheDir:   getEnvString("CACHE_DIR", ".cache"),
			Segments: SegmentThresholds{
				VIPMinOrders:     getEnvInt("SALES_SEGMENT_VIP_ORDERS", defaults.VIPMinOrders),
				VIPMinSpend:      getEnvFloat("SALES_SEGMENT_VIP_SPEND", defaults.VIPMinSpend),
				RegularMinOrders: getEnvInt("SALES_SEGMENT_REGULAR_ORDERS", defaults.RegularMinOrders),
			},
		},
		Dashboard: DashboardConfig{
			DataFile:  dataFile,
			OutputDir: getEnvString("SALES_DASHBOARD_DIR", "dashboards"),
			TopN:      topN,
			Workers:   getEnvInt("DASHBOARD_WORKERS", 4),
		},
		Server: ServerConfig{
			Host:            getEnvString("SERVER_HOST", "127.0.0.1"),
			Port:            getEnvInt("SERVER_PORT", 8084),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:     getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Logger: LoggerConfig{
			Level:  getEnvString("LOG_LEVEL", "info"),
			Format: getEnvString("LOG_FORMAT", "text"),
		},
		Security: SecurityConfig{
			EnableRateLimit: getEnvBool("SECURITY_RATE_LIMIT_ENABLED", true),
			RateLimitRPS:    getEnvInt("SECURITY_RATE_LIMIT_RPS", 50),
			RateLimitBurst:  getEnvInt("SECURITY_RATE_LIMIT_BURST", 10),
			TrustedProxies:  getEnvStringSlice("SECURITY_TRUSTED_PROXIES", []string{"127.0.0.1"}),
		},
		Catalog: getEnvString("SALES_CATALOG_FILE", ""),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// validate checks the ambient settings. Domain parameters such as the record
// count are validated by the component that consumes them.
func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Generator.DataFile == "" {
		return fmt.Errorf("data file path cannot be empty")
	}

	if c.Dashboard.Workers <= 0 {
		return fmt.Errorf("dashboard workers must be positive, got %d", c.Dashboard.Workers)
	}

	if err := c.Analyzer.Segments.Validate(); err != nil {
		return err
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.Logger.Level) {
		return fmt.Errorf("invalid log level %q, must be one of: %s", c.Logger.Level, strings.Join(validLogLevels, ", "))
	}

	validLogFormats := []string{"json", "text"}
	if !contains(validLogFormats, c.Logger.Format) {
		return fmt.Errorf("invalid log format %q, must be one of: %s", c.Logger.Format, strings.Join(validLogFormats, ", "))
	}

	if c.Security.RateLimitRPS <= 0 {
		return fmt.Errorf("rate limit RPS must be positive")
	}

	if c.Security.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit burst must be positive")
	}

	return nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvUint(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if uintValue, err := strconv.ParseUint(value, 10, 64); err == nil {
			return uintValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvDate rejects malformed dates instead of falling back, since a silently
// ignored window would change the generated dataset.
func getEnvDate(key, defaultValue string) (time.Time, error) {
	value := getEnvString(key, defaultValue)
	date, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", key, err)
	}
	return date, nil
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
