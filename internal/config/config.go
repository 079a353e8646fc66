// Package config defines the top-level configuration for the broker
// negotiation bot and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by BROKERBOT_* environment
// variables.
type Config struct {
	Transport TransportConfig `toml:"transport"`
	Policy    PolicyConfig    `toml:"policy"`
	Redis     RedisConfig     `toml:"redis"`
	History   HistoryConfig   `toml:"history"`
	Notify    NotifyConfig    `toml:"notify"`
	Items     ItemsConfig     `toml:"items"`
	LogLevel  string          `toml:"log_level"`
}

// TransportConfig holds the connection parameters for the protocol host.
type TransportConfig struct {
	URL            string   `toml:"url"`
	ReconnectDelay duration `toml:"reconnect_delay"`
}

// PolicyConfig holds the initial negotiation policy. These become the
// runtime-mutable settings; when Redis persistence is enabled, stored values
// take precedence after first run.
type PolicyConfig struct {
	AcceptThresholdPct int64 `toml:"accept_threshold_pct"`
	RejectThresholdPct int64 `toml:"reject_threshold_pct"`
	DelayActions       bool  `toml:"delay_actions"`
	Unattended         bool  `toml:"unattended"`
	ConsoleLog         bool  `toml:"console_log"`
}

// RedisConfig holds Redis connection parameters for settings persistence.
type RedisConfig struct {
	Enabled  bool   `toml:"enabled"`
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Key      string `toml:"key"`
}

// HistoryConfig holds PostgreSQL parameters for the negotiation ledger.
type HistoryConfig struct {
	Enabled       bool   `toml:"enabled"`
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// ItemsConfig points at the item-name data file.
type ItemsConfig struct {
	Path string `toml:"path"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "5s", "250ms").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler for the TOML decoder.
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
func Defaults() Config {
	return Config{
		Transport: TransportConfig{
			URL:            "ws://localhost:7801/ws",
			ReconnectDelay: duration{2 * time.Second},
		},
		Policy: PolicyConfig{
			AcceptThresholdPct: 0,
			RejectThresholdPct: 0,
			DelayActions:       true,
			Unattended:         false,
			ConsoleLog:         false,
		},
		Redis: RedisConfig{
			Enabled: false,
			Addr:    "localhost:6379",
			DB:      0,
			Key:     "brokerbot:settings",
		},
		History: HistoryConfig{
			Enabled:       false,
			Host:          "localhost",
			Port:          5432,
			Database:      "brokerbot",
			User:          "brokerbot",
			SSLMode:       "disable",
			PoolMaxConns:  4,
			PoolMinConns:  1,
			RunMigrations: true,
		},
		Notify: NotifyConfig{
			Events: []string{"sold", "aborted", "timed_out", "failed"},
		},
		LogLevel: "info",
	}
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks the Config for invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	if c.Transport.URL == "" {
		errs = append(errs, "transport: url must not be empty")
	}
	if c.Transport.ReconnectDelay.Duration <= 0 {
		errs = append(errs, "transport: reconnect_delay must be positive")
	}

	if c.Policy.AcceptThresholdPct < 0 {
		errs = append(errs, "policy: accept_threshold_pct must be >= 0")
	}
	if c.Policy.RejectThresholdPct < 0 {
		errs = append(errs, "policy: reject_threshold_pct must be >= 0")
	}
	if c.Policy.AcceptThresholdPct > 0 && c.Policy.RejectThresholdPct > c.Policy.AcceptThresholdPct {
		errs = append(errs, "policy: reject_threshold_pct must not exceed accept_threshold_pct")
	}

	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty when enabled")
		}
		if c.Redis.Key == "" {
			errs = append(errs, "redis: key must not be empty when enabled")
		}
	}

	if c.History.Enabled {
		if strings.TrimSpace(c.History.DSN) == "" {
			if c.History.Host == "" {
				errs = append(errs, "history: host must not be empty (or set history.dsn)")
			}
			if c.History.Port <= 0 || c.History.Port > 65535 {
				errs = append(errs, fmt.Sprintf("history: port must be 1-65535, got %d", c.History.Port))
			}
			if c.History.Database == "" {
				errs = append(errs, "history: database must not be empty")
			}
		}
		if c.History.PoolMaxConns < 1 {
			errs = append(errs, "history: pool_max_conns must be >= 1")
		}
		if c.History.PoolMinConns < 0 {
			errs = append(errs, "history: pool_min_conns must be >= 0")
		}
		if c.History.PoolMinConns > c.History.PoolMaxConns {
			errs = append(errs, "history: pool_min_conns must not exceed pool_max_conns")
		}
	}

	tg := c.Notify.TelegramToken != ""
	tc := c.Notify.TelegramChatID != ""
	if tg != tc {
		errs = append(errs, "notify: telegram_token and telegram_chat_id must be set together")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
