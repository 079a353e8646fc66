// Package redis persists the runtime-mutable negotiator settings in a Redis
// hash so threshold and mode changes survive process restarts.
package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/caydia/brokerbot/internal/nego"
)

// ClientConfig holds connection parameters for the Redis client.
type ClientConfig struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

// SettingsStore reads and writes nego.SettingsValues under a single hash key.
type SettingsStore struct {
	rdb *redis.Client
	key string
}

// NewSettingsStore connects to Redis, pings it to verify connectivity, and
// returns the store.
func NewSettingsStore(ctx context.Context, cfg ClientConfig) (*SettingsStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}

	return &SettingsStore{rdb: rdb, key: cfg.Key}, nil
}

// Load fetches the persisted settings. ok is false when nothing has been
// stored yet; the caller should fall back to configured defaults.
func (s *SettingsStore) Load(ctx context.Context) (v nego.SettingsValues, ok bool, err error) {
	vals, err := s.rdb.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nego.SettingsValues{}, false, fmt.Errorf("redis: load settings: %w", err)
	}
	if len(vals) == 0 {
		return nego.SettingsValues{}, false, nil
	}

	v.AcceptThresholdPct, err = strconv.ParseInt(vals["accept_threshold_pct"], 10, 64)
	if err != nil {
		return nego.SettingsValues{}, false, fmt.Errorf("redis: parse accept_threshold_pct: %w", err)
	}
	v.RejectThresholdPct, err = strconv.ParseInt(vals["reject_threshold_pct"], 10, 64)
	if err != nil {
		return nego.SettingsValues{}, false, fmt.Errorf("redis: parse reject_threshold_pct: %w", err)
	}
	v.DelayActions = vals["delay_actions"] == "1"
	v.Unattended = vals["unattended"] == "1"
	v.ConsoleLog = vals["console_log"] == "1"
	return v, true, nil
}

// Save writes the settings hash.
func (s *SettingsStore) Save(ctx context.Context, v nego.SettingsValues) error {
	fields := map[string]interface{}{
		"accept_threshold_pct": strconv.FormatInt(v.AcceptThresholdPct, 10),
		"reject_threshold_pct": strconv.FormatInt(v.RejectThresholdPct, 10),
		"delay_actions":        boolField(v.DelayActions),
		"unattended":           boolField(v.Unattended),
		"console_log":          boolField(v.ConsoleLog),
	}
	if err := s.rdb.HSet(ctx, s.key, fields).Err(); err != nil {
		return fmt.Errorf("redis: save settings: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *SettingsStore) Close() error {
	return s.rdb.Close()
}

func boolField(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
