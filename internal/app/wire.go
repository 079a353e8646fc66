package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/caydia/brokerbot/internal/config"
	"github.com/caydia/brokerbot/internal/gamedata"
	"github.com/caydia/brokerbot/internal/nego"
	"github.com/caydia/brokerbot/internal/notify"
	"github.com/caydia/brokerbot/internal/store/postgres"
	redisstore "github.com/caydia/brokerbot/internal/store/redis"
)

// Dependencies bundles the optional infrastructure the negotiator runs on
// top of. It is constructed by Wire and torn down by the returned cleanup
// function.
type Dependencies struct {
	Settings      *nego.Settings
	SettingsStore *redisstore.SettingsStore // nil when Redis is disabled
	History       *postgres.HistoryStore    // nil when history is disabled
	Notifier      *notify.Notifier
	Items         *gamedata.ItemTable
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function to call
// on shutdown.
func Wire(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	logger := slog.Default()

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- Settings (optionally persisted in Redis) ---
	values := nego.SettingsValues{
		AcceptThresholdPct: cfg.Policy.AcceptThresholdPct,
		RejectThresholdPct: cfg.Policy.RejectThresholdPct,
		DelayActions:       cfg.Policy.DelayActions,
		Unattended:         cfg.Policy.Unattended,
		ConsoleLog:         cfg.Policy.ConsoleLog,
	}
	if cfg.Redis.Enabled {
		store, err := redisstore.NewSettingsStore(ctx, redisstore.ClientConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Key:      cfg.Redis.Key,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("app: redis settings store: %w", err)
		}
		closers = append(closers, func() { _ = store.Close() })
		deps.SettingsStore = store

		stored, ok, err := store.Load(ctx)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("app: load settings: %w", err)
		}
		if ok {
			values = stored
			logger.Info("loaded persisted settings",
				slog.Int64("accept_pct", values.AcceptThresholdPct),
				slog.Int64("reject_pct", values.RejectThresholdPct),
			)
		}
	}
	deps.Settings = nego.NewSettings(values)

	// --- Negotiation history ledger ---
	if cfg.History.Enabled {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.History.DSN,
			Host:     cfg.History.Host,
			Port:     cfg.History.Port,
			Database: cfg.History.Database,
			User:     cfg.History.User,
			Password: cfg.History.Password,
			SSLMode:  cfg.History.SSLMode,
			MaxConns: cfg.History.PoolMaxConns,
			MinConns: cfg.History.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("app: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if cfg.History.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("app: migrations: %w", err)
			}
		}
		deps.History = postgres.NewHistoryStore(pgClient.Pool())
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	// --- Item names ---
	if cfg.Items.Path != "" {
		items, err := gamedata.Load(cfg.Items.Path)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("app: item table: %w", err)
		}
		deps.Items = items
	} else {
		deps.Items = gamedata.Empty()
	}

	return deps, cleanup, nil
}
