package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies BROKERBOT_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known BROKERBOT_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	setStr(&cfg.Transport.URL, "BROKERBOT_TRANSPORT_URL")
	setDuration(&cfg.Transport.ReconnectDelay, "BROKERBOT_TRANSPORT_RECONNECT_DELAY")

	setInt64(&cfg.Policy.AcceptThresholdPct, "BROKERBOT_POLICY_ACCEPT_THRESHOLD_PCT")
	setInt64(&cfg.Policy.RejectThresholdPct, "BROKERBOT_POLICY_REJECT_THRESHOLD_PCT")
	setBool(&cfg.Policy.DelayActions, "BROKERBOT_POLICY_DELAY_ACTIONS")
	setBool(&cfg.Policy.Unattended, "BROKERBOT_POLICY_UNATTENDED")
	setBool(&cfg.Policy.ConsoleLog, "BROKERBOT_POLICY_CONSOLE_LOG")

	setBool(&cfg.Redis.Enabled, "BROKERBOT_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "BROKERBOT_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "BROKERBOT_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "BROKERBOT_REDIS_DB")
	setStr(&cfg.Redis.Key, "BROKERBOT_REDIS_KEY")

	setBool(&cfg.History.Enabled, "BROKERBOT_HISTORY_ENABLED")
	setStr(&cfg.History.DSN, "BROKERBOT_HISTORY_DSN")
	setStr(&cfg.History.Host, "BROKERBOT_HISTORY_HOST")
	setInt(&cfg.History.Port, "BROKERBOT_HISTORY_PORT")
	setStr(&cfg.History.Database, "BROKERBOT_HISTORY_DATABASE")
	setStr(&cfg.History.User, "BROKERBOT_HISTORY_USER")
	setStr(&cfg.History.Password, "BROKERBOT_HISTORY_PASSWORD")
	setStr(&cfg.History.SSLMode, "BROKERBOT_HISTORY_SSLMODE")
	setInt(&cfg.History.PoolMaxConns, "BROKERBOT_HISTORY_POOL_MAX_CONNS")
	setInt(&cfg.History.PoolMinConns, "BROKERBOT_HISTORY_POOL_MIN_CONNS")
	setBool(&cfg.History.RunMigrations, "BROKERBOT_HISTORY_RUN_MIGRATIONS")

	setStr(&cfg.Notify.TelegramToken, "BROKERBOT_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "BROKERBOT_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "BROKERBOT_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "BROKERBOT_NOTIFY_EVENTS")

	setStr(&cfg.Items.Path, "BROKERBOT_ITEMS_PATH")
	setStr(&cfg.LogLevel, "BROKERBOT_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		*dst = out
	}
}
