// Package command implements the "nego" operator command surface. The host
// owns command registration and routing; it hands us (subcommand, value)
// pairs and we mutate the live settings, persisting them when a settings
// store is configured.
package command

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/caydia/brokerbot/internal/nego"
)

const helpText = `Commands:
 "nego accept [x]" (change the minimum percentage to accept a deal, e.g. "nego accept 100" [0 to disable])
 "nego reject [x]" (change the maximum percentage to reject a deal, e.g. "nego reject 75" [0 to disable])
 "nego unattended" (enable/disable automatically accepting deals after clicking the "Accept" link in chat)
 "nego delay" (switch between human-like behavior and immediate negotiation)
 "nego log" (enable/disable logging to console)`

// Messenger writes feedback into the user's chat.
type Messenger interface {
	Message(text string) error
}

// SettingsStore persists settings snapshots. May be nil.
type SettingsStore interface {
	Save(ctx context.Context, v nego.SettingsValues) error
}

// Handler mutates the live negotiator settings in response to operator
// commands.
type Handler struct {
	settings *nego.Settings
	store    SettingsStore
	msg      Messenger
	logger   *slog.Logger
}

// NewHandler creates a Handler. store may be nil for in-memory settings.
func NewHandler(settings *nego.Settings, store SettingsStore, msg Messenger, logger *slog.Logger) *Handler {
	return &Handler{
		settings: settings,
		store:    store,
		msg:      msg,
		logger:   logger.With(slog.String("component", "command")),
	}
}

// Handle dispatches one subcommand. Unknown subcommands print the help text.
func (h *Handler) Handle(ctx context.Context, cmd, value string) {
	switch cmd {
	case "accept":
		h.setThreshold(ctx, value, "accept", func(v *nego.SettingsValues, pct int64) {
			v.AcceptThresholdPct = pct
		})
	case "decline", "reject":
		h.setThreshold(ctx, value, "reject", func(v *nego.SettingsValues, pct int64) {
			v.RejectThresholdPct = pct
		})
	case "unattended":
		v := h.settings.Update(func(v *nego.SettingsValues) { v.Unattended = !v.Unattended })
		h.announceToggle(ctx, "Unattended manual negotiation", v.Unattended, v)
	case "delay":
		v := h.settings.Update(func(v *nego.SettingsValues) { v.DelayActions = !v.DelayActions })
		h.announceToggle(ctx, "Human-like behavior", v.DelayActions, v)
	case "log":
		v := h.settings.Update(func(v *nego.SettingsValues) { v.ConsoleLog = !v.ConsoleLog })
		h.announceToggle(ctx, "Logging to console", v.ConsoleLog, v)
	default:
		h.message(helpText)
	}
}

func (h *Handler) setThreshold(ctx context.Context, value, which string, apply func(*nego.SettingsValues, int64)) {
	if value == "" {
		h.message(helpText)
		return
	}
	pct, err := strconv.ParseInt(value, 10, 64)
	if err != nil || pct < 0 {
		h.message(fmt.Sprintf("Invalid %s threshold %q", which, value))
		return
	}

	v := h.settings.Update(func(v *nego.SettingsValues) { apply(v, pct) })
	h.message(fmt.Sprintf(`Auto %s threshold set to <font color="#F0E442">%d</font>`, which, pct))
	h.logger.Info("threshold changed",
		slog.String("which", which),
		slog.Int64("pct", pct),
	)
	h.persist(ctx, v)
}

func (h *Handler) announceToggle(ctx context.Context, label string, on bool, v nego.SettingsValues) {
	state := `<font color="#E69F00">disabled</font>`
	if on {
		state = `<font color="#56B4E9">enabled</font>`
	}
	h.message(label + " " + state)
	h.logger.Info("setting toggled",
		slog.String("setting", label),
		slog.Bool("enabled", on),
	)
	h.persist(ctx, v)
}

func (h *Handler) persist(ctx context.Context, v nego.SettingsValues) {
	if h.store == nil {
		return
	}
	if err := h.store.Save(ctx, v); err != nil {
		h.logger.Error("persist settings failed", slog.String("error", err.Error()))
	}
}

func (h *Handler) message(text string) {
	if h.msg == nil {
		return
	}
	if err := h.msg.Message(text); err != nil {
		h.logger.Debug("command feedback failed", slog.String("error", err.Error()))
	}
}
