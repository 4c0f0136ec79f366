package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/liamashdown/walletscan/internal/secrets"
)

// AuthMode represents the authentication mode for Data API
type AuthMode string

const (
	AuthModeNone   AuthMode = "none"
	AuthModeBearer AuthMode = "bearer"
	AuthModeAPIKey AuthMode = "api_key"
)

// Config holds all application configuration
type Config struct {
	// Environment
	Environment string `toml:"environment"`
	LogLevel    string `toml:"log_level"`

	// Data API
	DataAPIBaseURL      string            `toml:"data_api_base_url"`
	DataAPIAuthMode     AuthMode          `toml:"data_api_auth_mode"`
	DataAPIBearerToken  string            `toml:"-"`
	DataAPIAPIKey       string            `toml:"-"`
	DataAPIExtraHeaders map[string]string `toml:"data_api_extra_headers"`

	// Gamma API
	GammaAPIBaseURL string `toml:"gamma_api_base_url"`

	// Upstream request policy
	RequestTimeoutSec int `toml:"request_timeout_sec"`
	RetryAttempts     int `toml:"retry_attempts"`
	MaxConcurrency    int `toml:"max_concurrency"`

	// Rate limits (requests per second)
	DataAPITradesRPS   float64 `toml:"data_api_trades_rps"`
	GammaAPIMarketsRPS float64 `toml:"gamma_api_markets_rps"`

	// Paging
	TradePageSize      int `toml:"trade_page_size"`
	MarketPageSize     int `toml:"market_page_size"`
	MaxTradesPerWallet int `toml:"max_trades_per_wallet"`

	// Market cache
	MaxMarkets int `toml:"max_markets"`

	// Discovery
	SampleSize        int  `toml:"sample_size"`
	MaxWallets        int  `toml:"max_wallets"`
	Continuous        bool `toml:"continuous"`
	IterationDelaySec int  `toml:"iteration_delay_sec"`

	// Acceptance thresholds
	MinResolvedPositions int     `toml:"min_resolved_positions"`
	MinROIPercent        float64 `toml:"min_roi_percent"`
	MinNetProfitUSD      float64 `toml:"min_net_profit_usd"`

	// Arbitrage
	ArbitrageThreshold float64 `toml:"arbitrage_threshold"`

	// Alerts
	AlertMode          string   `toml:"alert_mode"` // log, discord, smtp (comma-separated)
	DiscordWebhookURLs []string `toml:"-"`
	SMTPHost           string   `toml:"smtp_host"`
	SMTPPort           int      `toml:"smtp_port"`
	SMTPUser           string   `toml:"smtp_user"`
	SMTPPassword       string   `toml:"-"`
	SMTPFrom           string   `toml:"smtp_from"`
	SMTPTo             []string `toml:"smtp_to"`

	// Metrics/Health
	HealthPort int `toml:"health_port"`
}

// Defaults returns the built-in configuration
func Defaults() *Config {
	return &Config{
		Environment:          "production",
		LogLevel:             "info",
		DataAPIBaseURL:       "https://data-api.polymarket.com",
		DataAPIAuthMode:      AuthModeNone,
		DataAPIExtraHeaders:  map[string]string{},
		GammaAPIBaseURL:      "https://gamma-api.polymarket.com",
		RequestTimeoutSec:    30,
		RetryAttempts:        3,
		MaxConcurrency:       10,
		DataAPITradesRPS:     10.0,
		GammaAPIMarketsRPS:   10.0,
		TradePageSize:        500,
		MarketPageSize:       500,
		MaxTradesPerWallet:   5000,
		MaxMarkets:           15000,
		SampleSize:           5000,
		MaxWallets:           30,
		MinResolvedPositions: 10,
		MinROIPercent:        10.0,
		MinNetProfitUSD:      50.0,
		ArbitrageThreshold:   0.99,
		AlertMode:            "log",
		SMTPPort:             587,
		SMTPFrom:             "walletscan@example.com",
		HealthPort:           8080,
	}
}

// Load builds the configuration from defaults, an optional TOML file named by
// WALLETSCAN_CONFIG, a .env file and environment variables, in that order.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := Defaults()

	if path := os.Getenv("WALLETSCAN_CONFIG"); path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("decode config file %s: %w", path, err)
		}
	}

	env := &envReader{}
	env.str(&cfg.Environment, "ENVIRONMENT")
	env.str(&cfg.LogLevel, "LOG_LEVEL")
	env.str(&cfg.DataAPIBaseURL, "DATA_API_BASE_URL")
	env.str((*string)(&cfg.DataAPIAuthMode), "DATA_API_AUTH_MODE")
	env.str(&cfg.GammaAPIBaseURL, "GAMMA_API_BASE_URL")
	env.int(&cfg.RequestTimeoutSec, "REQUEST_TIMEOUT_SEC")
	env.int(&cfg.RetryAttempts, "RETRY_ATTEMPTS")
	env.int(&cfg.MaxConcurrency, "MAX_CONCURRENCY")
	env.float(&cfg.DataAPITradesRPS, "DATA_API_TRADES_RPS")
	env.float(&cfg.GammaAPIMarketsRPS, "GAMMA_API_MARKETS_RPS")
	env.int(&cfg.TradePageSize, "TRADE_PAGE_SIZE")
	env.int(&cfg.MarketPageSize, "MARKET_PAGE_SIZE")
	env.int(&cfg.MaxTradesPerWallet, "MAX_TRADES_PER_WALLET")
	env.int(&cfg.MaxMarkets, "MAX_MARKETS")
	env.int(&cfg.SampleSize, "SAMPLE_SIZE")
	env.int(&cfg.MaxWallets, "MAX_WALLETS")
	env.bool(&cfg.Continuous, "CONTINUOUS")
	env.int(&cfg.IterationDelaySec, "ITERATION_DELAY_SEC")
	env.int(&cfg.MinResolvedPositions, "MIN_RESOLVED_POSITIONS")
	env.float(&cfg.MinROIPercent, "MIN_ROI_PERCENT")
	env.float(&cfg.MinNetProfitUSD, "MIN_NET_PROFIT_USD")
	env.float(&cfg.ArbitrageThreshold, "ARBITRAGE_THRESHOLD")
	env.str(&cfg.AlertMode, "ALERT_MODE")
	env.str(&cfg.SMTPHost, "SMTP_HOST")
	env.int(&cfg.SMTPPort, "SMTP_PORT")
	env.str(&cfg.SMTPUser, "SMTP_USER")
	env.str(&cfg.SMTPFrom, "SMTP_FROM")
	env.int(&cfg.HealthPort, "HEALTH_PORT")

	var webhooks string
	env.secret(&cfg.DataAPIBearerToken, "DATA_API_BEARER_TOKEN")
	env.secret(&cfg.DataAPIAPIKey, "DATA_API_API_KEY")
	env.secret(&cfg.SMTPPassword, "SMTP_PASSWORD")
	env.secret(&webhooks, "DISCORD_WEBHOOK_URLS")
	if err := env.err(); err != nil {
		return nil, err
	}

	if webhooks != "" {
		cfg.DiscordWebhookURLs = parseCSV(webhooks)
	}
	if smtpTo := os.Getenv("SMTP_TO"); smtpTo != "" {
		cfg.SMTPTo = parseCSV(smtpTo)
	}

	if extra := os.Getenv("DATA_API_EXTRA_HEADERS"); extra != "" {
		if err := json.Unmarshal([]byte(extra), &cfg.DataAPIExtraHeaders); err != nil {
			return nil, fmt.Errorf("invalid DATA_API_EXTRA_HEADERS JSON: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks configuration for errors
func (c *Config) Validate() error {
	switch c.DataAPIAuthMode {
	case AuthModeNone:
	case AuthModeBearer:
		if c.DataAPIBearerToken == "" {
			return fmt.Errorf("DATA_API_BEARER_TOKEN is required when AUTH_MODE is bearer")
		}
	case AuthModeAPIKey:
		if c.DataAPIAPIKey == "" {
			return fmt.Errorf("DATA_API_API_KEY is required when AUTH_MODE is api_key")
		}
	default:
		return fmt.Errorf("invalid DATA_API_AUTH_MODE: %s (must be none, bearer, or api_key)", c.DataAPIAuthMode)
	}

	positive := []struct {
		name  string
		value int
	}{
		{"REQUEST_TIMEOUT_SEC", c.RequestTimeoutSec},
		{"RETRY_ATTEMPTS", c.RetryAttempts},
		{"MAX_CONCURRENCY", c.MaxConcurrency},
		{"TRADE_PAGE_SIZE", c.TradePageSize},
		{"MARKET_PAGE_SIZE", c.MarketPageSize},
		{"MAX_TRADES_PER_WALLET", c.MaxTradesPerWallet},
		{"MAX_MARKETS", c.MaxMarkets},
		{"SAMPLE_SIZE", c.SampleSize},
		{"MAX_WALLETS", c.MaxWallets},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return fmt.Errorf("%s must be positive, got %d", p.name, p.value)
		}
	}

	if c.IterationDelaySec < 0 {
		return fmt.Errorf("ITERATION_DELAY_SEC must not be negative, got %d", c.IterationDelaySec)
	}
	if c.MinResolvedPositions < 0 {
		return fmt.Errorf("MIN_RESOLVED_POSITIONS must not be negative, got %d", c.MinResolvedPositions)
	}
	if c.ArbitrageThreshold <= 0 || c.ArbitrageThreshold > 1 {
		return fmt.Errorf("ARBITRAGE_THRESHOLD must be in (0, 1], got %v", c.ArbitrageThreshold)
	}

	// Validate alert mode (comma-separated list)
	hasDiscord := false
	hasSMTP := false
	for _, mode := range strings.Split(c.AlertMode, ",") {
		switch strings.TrimSpace(mode) {
		case "log":
		case "discord":
			hasDiscord = true
		case "smtp":
			hasSMTP = true
		default:
			return fmt.Errorf("invalid ALERT_MODE value: %s (valid values: log, discord, smtp)", mode)
		}
	}

	if hasDiscord && len(c.DiscordWebhookURLs) == 0 {
		return fmt.Errorf("DISCORD_WEBHOOK_URLS is required when discord is in ALERT_MODE")
	}
	if hasSMTP && (c.SMTPHost == "" || len(c.SMTPTo) == 0) {
		return fmt.Errorf("SMTP_HOST and SMTP_TO are required when smtp is in ALERT_MODE")
	}

	return nil
}

// RequestTimeout returns the per-request upstream timeout
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSec) * time.Second
}

// IterationDelay returns the pause between continuous scan iterations
func (c *Config) IterationDelay() time.Duration {
	return time.Duration(c.IterationDelaySec) * time.Second
}

// envReader overlays environment variables onto config fields and collects
// parse failures so a bad value is reported instead of silently defaulted.
type envReader struct {
	errs []error
}

func (r *envReader) str(dst *string, key string) {
	if value := os.Getenv(key); value != "" {
		*dst = value
	}
}

func (r *envReader) int(dst *int, key string) {
	value := os.Getenv(key)
	if value == "" {
		return
	}
	v, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %q is not an integer", key, value))
		return
	}
	*dst = v
}

func (r *envReader) float(dst *float64, key string) {
	value := os.Getenv(key)
	if value == "" {
		return
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %q is not a number", key, value))
		return
	}
	*dst = v
}

func (r *envReader) bool(dst *bool, key string) {
	value := os.Getenv(key)
	if value == "" {
		return
	}
	v, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %q is not a boolean", key, value))
		return
	}
	*dst = v
}

// secret reads a credential through the secrets package; an unreadable
// secret file is an error rather than an empty value
func (r *envReader) secret(dst *string, key string) {
	v, err := secrets.Get(key, "")
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
		return
	}
	if v != "" {
		*dst = v
	}
}

func (r *envReader) err() error {
	if len(r.errs) == 0 {
		return nil
	}
	return fmt.Errorf("invalid environment: %w", errors.Join(r.errs...))
}

func parseCSV(s string) []string {
	var result []string
	for _, item := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
