// Package app provides top-level lifecycle management for the broker
// negotiation bot. It wires dependencies, assembles the event loop,
// negotiator, and transport, and runs them until shutdown.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/caydia/brokerbot/internal/command"
	"github.com/caydia/brokerbot/internal/config"
	"github.com/caydia/brokerbot/internal/nego"
	"github.com/caydia/brokerbot/internal/sysmsg"
	"github.com/caydia/brokerbot/internal/transport"
)

// App is the root application object. It owns the configuration, logger, and
// a list of cleanup functions called in reverse order on shutdown.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	closers []func()
}

// New creates a new App from the given configuration and logger.
func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "app")),
	}
}

// Run wires all dependencies, starts the event loop and transport
// goroutines, and blocks until the context is cancelled.
func (a *App) Run(ctx context.Context) error {
	a.logger.InfoContext(ctx, "starting application",
		slog.String("transport_url", a.cfg.Transport.URL),
		slog.String("log_level", a.cfg.LogLevel),
	)

	deps, cleanup, err := Wire(ctx, a.cfg)
	if err != nil {
		return fmt.Errorf("app: wire dependencies: %w", err)
	}
	a.closers = append(a.closers, cleanup)

	loop := nego.NewLoop(slog.Default())
	sched := nego.NewScheduler(loop)

	client := transport.NewClient(
		a.cfg.Transport.URL,
		a.cfg.Transport.ReconnectDelay.Duration,
		loop,
		slog.Default(),
	)

	// History writes happen off the event loop; the handler only spawns.
	onOutcome := func(rec nego.Record) {
		if deps.History == nil {
			return
		}
		go func() {
			insCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := deps.History.Insert(insCtx, rec); err != nil {
				a.logger.Error("record negotiation failed",
					slog.String("deal_id", rec.DealID.String()),
					slog.String("error", err.Error()),
				)
			}
		}()
	}

	negotiator := nego.New(
		deps.Settings,
		client,
		sched,
		deps.Items,
		sysmsg.Parse,
		deps.Notifier,
		onOutcome,
		slog.Default(),
	)
	client.SetHandler(negotiator)

	var settingsStore command.SettingsStore
	if deps.SettingsStore != nil {
		settingsStore = deps.SettingsStore
	}
	cmdHandler := command.NewHandler(deps.Settings, settingsStore, client, slog.Default())
	client.SetCommandHandler(func(ctx context.Context, cmd, value string) {
		cmdHandler.Handle(ctx, cmd, value)
	})

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := loop.Run(ctx)
		if ctx.Err() != nil {
			return nil // clean shutdown
		}
		return fmt.Errorf("event loop: %w", err)
	})

	g.Go(func() error {
		err := client.Run(ctx)
		if ctx.Err() != nil {
			return nil // clean shutdown
		}
		return fmt.Errorf("transport: %w", err)
	})

	if err := g.Wait(); err != nil {
		a.logger.Error("application stopped with error", slog.String("error", err.Error()))
		return err
	}

	a.logger.Info("application stopped cleanly")
	return nil
}

// Close tears down all resources in reverse registration order. Safe to call
// multiple times.
func (a *App) Close() {
	a.logger.Info("shutting down application")
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
