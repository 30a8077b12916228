package config

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

var (
	errInvalidPort        = errors.New("config: invalid SERVER_PORT")
	errInvalidTitleBounds = errors.New("config: TITLE_MIN_LENGTH must be >= 0 and <= TITLE_MAX_LENGTH")
	errInvalidConcurrency = errors.New("config: MAX_CONCURRENCY must be 1-64")
	errInvalidTimeout     = errors.New("config: timeouts must be positive")
)

// Config holds the application configuration.
type Config struct {
	ServerPort string `mapstructure:"SERVER_PORT"`
	LogLevel   string `mapstructure:"LOG_LEVEL"`
	LogFormat  string `mapstructure:"LOG_FORMAT"`

	PostgresURL string `mapstructure:"POSTGRES_URL"`

	RedisAddr       string `mapstructure:"REDIS_ADDR"`
	RedisPassword   string `mapstructure:"REDIS_PASSWORD"`
	RedisDB         int    `mapstructure:"REDIS_DB"`
	CacheTTLSeconds int    `mapstructure:"CACHE_TTL_SECONDS"`

	MaxConcurrency         int `mapstructure:"MAX_CONCURRENCY"`
	PageLoadTimeoutSeconds int `mapstructure:"PAGE_LOAD_TIMEOUT_SECONDS"`
	SettleDelayMS          int `mapstructure:"SETTLE_DELAY_MS"`
	AuditTimeoutSeconds    int `mapstructure:"AUDIT_TIMEOUT_SECONDS"`

	ScreenshotPath string `mapstructure:"SCREENSHOT_PATH"`
	PreviewPath    string `mapstructure:"PREVIEW_PATH"`
	ScreenshotDir  string `mapstructure:"SCREENSHOT_DIR"`
	ReportPath     string `mapstructure:"REPORT_PATH"`

	ValidatorDir            string `mapstructure:"VALIDATOR_DIR"`
	ValidatorURL            string `mapstructure:"VALIDATOR_URL"`
	ValidatorTimeoutSeconds int    `mapstructure:"VALIDATOR_TIMEOUT_SECONDS"`
	DownloadTimeoutSeconds  int    `mapstructure:"DOWNLOAD_TIMEOUT_SECONDS"`

	TitleMinLength int `mapstructure:"TITLE_MIN_LENGTH"`
	TitleMaxLength int `mapstructure:"TITLE_MAX_LENGTH"`
}

var defaults = map[string]any{
	"SERVER_PORT":               "8080",
	"LOG_LEVEL":                 "info",
	"LOG_FORMAT":                "json",
	"POSTGRES_URL":              "",
	"REDIS_ADDR":                "",
	"REDIS_PASSWORD":            "",
	"REDIS_DB":                  0,
	"CACHE_TTL_SECONDS":         600,
	"MAX_CONCURRENCY":           2,
	"PAGE_LOAD_TIMEOUT_SECONDS": 60,
	"SETTLE_DELAY_MS":           2000,
	"AUDIT_TIMEOUT_SECONDS":     120,
	"SCREENSHOT_PATH":           "page_preview.png",
	"PREVIEW_PATH":              "page_preview_small.png",
	"SCREENSHOT_DIR":            "screenshots",
	"REPORT_PATH":               "audit_report.txt",
	"VALIDATOR_DIR":             "validator",
	"VALIDATOR_URL":             "https://github.com/validator/validator/releases/latest/download/vnu.jar",
	"VALIDATOR_TIMEOUT_SECONDS": 30,
	"DOWNLOAD_TIMEOUT_SECONDS":  60,
	"TITLE_MIN_LENGTH":          10,
	"TITLE_MAX_LENGTH":          70,
}

// Load reads configuration from an optional .env file and the environment.
func Load() (*Config, error) {
	return load(".env")
}

func load(envFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(envFile)
	v.SetConfigType("env")
	v.AutomaticEnv()

	// A missing .env file is fine; the environment alone is enough.
	_ = v.ReadInConfig()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values that would otherwise fail deep inside an audit.
func (c *Config) Validate() error {
	port, err := strconv.Atoi(c.ServerPort)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("%w: %q", errInvalidPort, c.ServerPort)
	}
	if c.TitleMinLength < 0 || c.TitleMinLength > c.TitleMaxLength {
		return fmt.Errorf("%w: got %d..%d", errInvalidTitleBounds, c.TitleMinLength, c.TitleMaxLength)
	}
	if c.MaxConcurrency < 1 || c.MaxConcurrency > 64 {
		return fmt.Errorf("%w: got %d", errInvalidConcurrency, c.MaxConcurrency)
	}
	if c.PageLoadTimeoutSeconds <= 0 || c.ValidatorTimeoutSeconds <= 0 ||
		c.DownloadTimeoutSeconds <= 0 || c.AuditTimeoutSeconds <= 0 {
		return errInvalidTimeout
	}
	return nil
}

func (c *Config) PageLoadTimeout() time.Duration {
	return time.Duration(c.PageLoadTimeoutSeconds) * time.Second
}

func (c *Config) SettleDelay() time.Duration {
	return time.Duration(c.SettleDelayMS) * time.Millisecond
}

func (c *Config) AuditTimeout() time.Duration {
	return time.Duration(c.AuditTimeoutSeconds) * time.Second
}

func (c *Config) ValidatorTimeout() time.Duration {
	return time.Duration(c.ValidatorTimeoutSeconds) * time.Second
}

func (c *Config) DownloadTimeout() time.Duration {
	return time.Duration(c.DownloadTimeoutSeconds) * time.Second
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}
