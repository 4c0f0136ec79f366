package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// clearEnv blanks every variable Load reads so the host environment cannot leak in
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"WALLETSCAN_CONFIG", "WALLETSCAN_SECRETS_DIR", "ENVIRONMENT", "LOG_LEVEL",
		"DATA_API_BASE_URL", "DATA_API_AUTH_MODE", "GAMMA_API_BASE_URL",
		"REQUEST_TIMEOUT_SEC", "RETRY_ATTEMPTS", "MAX_CONCURRENCY",
		"DATA_API_TRADES_RPS", "GAMMA_API_MARKETS_RPS", "TRADE_PAGE_SIZE",
		"MARKET_PAGE_SIZE", "MAX_TRADES_PER_WALLET", "MAX_MARKETS", "SAMPLE_SIZE",
		"MAX_WALLETS", "CONTINUOUS", "ITERATION_DELAY_SEC", "MIN_RESOLVED_POSITIONS",
		"MIN_ROI_PERCENT", "MIN_NET_PROFIT_USD", "ARBITRAGE_THRESHOLD", "ALERT_MODE",
		"SMTP_HOST", "SMTP_PORT", "SMTP_USER", "SMTP_FROM", "SMTP_TO", "HEALTH_PORT",
		"DATA_API_BEARER_TOKEN", "DATA_API_API_KEY", "SMTP_PASSWORD",
		"DISCORD_WEBHOOK_URLS", "DATA_API_EXTRA_HEADERS",
		"DATA_API_BEARER_TOKEN_FILE", "DATA_API_API_KEY_FILE", "SMTP_PASSWORD_FILE",
		"DISCORD_WEBHOOK_URLS_FILE",
	} {
		t.Setenv(key, "")
	}
	// keep a stray .env in the package directory out of the picture
	t.Chdir(t.TempDir())
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.MaxConcurrency != 10 {
		t.Errorf("MaxConcurrency = %d, want 10", cfg.MaxConcurrency)
	}
	if cfg.RetryAttempts != 3 {
		t.Errorf("RetryAttempts = %d, want 3", cfg.RetryAttempts)
	}
	if cfg.RequestTimeout().Seconds() != 30 {
		t.Errorf("RequestTimeout() = %v, want 30s", cfg.RequestTimeout())
	}
	if cfg.MaxMarkets != 15000 || cfg.SampleSize != 5000 || cfg.MaxWallets != 30 {
		t.Errorf("unexpected discovery defaults: markets=%d sample=%d wallets=%d",
			cfg.MaxMarkets, cfg.SampleSize, cfg.MaxWallets)
	}
	if cfg.MinResolvedPositions != 10 || cfg.MinROIPercent != 10 || cfg.MinNetProfitUSD != 50 {
		t.Errorf("unexpected acceptance defaults: %d %v %v",
			cfg.MinResolvedPositions, cfg.MinROIPercent, cfg.MinNetProfitUSD)
	}
	if cfg.ArbitrageThreshold != 0.99 {
		t.Errorf("ArbitrageThreshold = %v, want 0.99", cfg.ArbitrageThreshold)
	}
}

func TestLoadOverlayOrder(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "walletscan.toml")
	body := `
max_wallets = 12
sample_size = 800
min_roi_percent = 25.0
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("WALLETSCAN_CONFIG", path)
	t.Setenv("MAX_WALLETS", "7")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.MaxWallets != 7 {
		t.Errorf("MaxWallets = %d, want env value 7", cfg.MaxWallets)
	}
	if cfg.SampleSize != 800 {
		t.Errorf("SampleSize = %d, want file value 800", cfg.SampleSize)
	}
	if cfg.MinROIPercent != 25 {
		t.Errorf("MinROIPercent = %v, want file value 25", cfg.MinROIPercent)
	}
}

func TestLoadRejectsMalformedNumbers(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"MAX_CONCURRENCY", "ten"},
		{"MIN_ROI_PERCENT", "10%"},
		{"CONTINUOUS", "sometimes"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			if err == nil {
				t.Fatalf("expected error for %s=%q", tt.key, tt.value)
			}
			if !strings.Contains(err.Error(), tt.key) {
				t.Errorf("error %q does not name %s", err, tt.key)
			}
		})
	}
}

func TestLoadSecrets(t *testing.T) {
	t.Run("from file", func(t *testing.T) {
		clearEnv(t)
		path := filepath.Join(t.TempDir(), "token")
		if err := os.WriteFile(path, []byte("s3cret\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		t.Setenv("DATA_API_AUTH_MODE", "bearer")
		t.Setenv("DATA_API_BEARER_TOKEN_FILE", path)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		if cfg.DataAPIBearerToken != "s3cret" {
			t.Errorf("DataAPIBearerToken = %q, want s3cret", cfg.DataAPIBearerToken)
		}
	})

	t.Run("unreadable file is fatal", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SMTP_PASSWORD_FILE", filepath.Join(t.TempDir(), "missing"))

		_, err := Load()
		if err == nil {
			t.Fatal("expected error for unreadable secret file")
		}
		if !strings.Contains(err.Error(), "SMTP_PASSWORD") {
			t.Errorf("error %q does not name the secret", err)
		}
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"bearer without token", func(c *Config) { c.DataAPIAuthMode = AuthModeBearer }, true},
		{"bearer with token", func(c *Config) {
			c.DataAPIAuthMode = AuthModeBearer
			c.DataAPIBearerToken = "tok"
		}, false},
		{"unknown auth mode", func(c *Config) { c.DataAPIAuthMode = "oauth" }, true},
		{"zero concurrency", func(c *Config) { c.MaxConcurrency = 0 }, true},
		{"negative delay", func(c *Config) { c.IterationDelaySec = -1 }, true},
		{"threshold above one", func(c *Config) { c.ArbitrageThreshold = 1.2 }, true},
		{"discord without urls", func(c *Config) { c.AlertMode = "log,discord" }, true},
		{"smtp configured", func(c *Config) {
			c.AlertMode = "smtp"
			c.SMTPHost = "mail.example.com"
			c.SMTPTo = []string{"ops@example.com"}
		}, false},
		{"bad alert mode", func(c *Config) { c.AlertMode = "pager" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseCSV(t *testing.T) {
	got := parseCSV(" a@x.com, ,b@x.com ")
	if len(got) != 2 || got[0] != "a@x.com" || got[1] != "b@x.com" {
		t.Errorf("parseCSV() = %v", got)
	}
}
