package command

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caydia/brokerbot/internal/nego"
)

type fakeMessenger struct {
	messages []string
}

func (m *fakeMessenger) Message(text string) error {
	m.messages = append(m.messages, text)
	return nil
}

type fakeStore struct {
	saved []nego.SettingsValues
}

func (s *fakeStore) Save(_ context.Context, v nego.SettingsValues) error {
	s.saved = append(s.saved, v)
	return nil
}

func newTestHandler(store SettingsStore) (*Handler, *nego.Settings, *fakeMessenger) {
	settings := nego.NewSettings(nego.SettingsValues{
		AcceptThresholdPct: 95,
		RejectThresholdPct: 75,
	})
	msg := &fakeMessenger{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHandler(settings, store, msg, logger), settings, msg
}

func TestHandleAcceptThreshold(t *testing.T) {
	store := &fakeStore{}
	h, settings, msg := newTestHandler(store)

	h.Handle(context.Background(), "accept", "100")

	assert.Equal(t, int64(100), settings.Snapshot().AcceptThresholdPct)
	require.Len(t, msg.messages, 1)
	assert.Contains(t, msg.messages[0], "100")
	require.Len(t, store.saved, 1)
	assert.Equal(t, int64(100), store.saved[0].AcceptThresholdPct)
}

func TestHandleRejectAliases(t *testing.T) {
	h, settings, _ := newTestHandler(nil)

	h.Handle(context.Background(), "reject", "70")
	assert.Equal(t, int64(70), settings.Snapshot().RejectThresholdPct)

	h.Handle(context.Background(), "decline", "60")
	assert.Equal(t, int64(60), settings.Snapshot().RejectThresholdPct)
}

func TestHandleThresholdZeroDisables(t *testing.T) {
	h, settings, _ := newTestHandler(nil)

	h.Handle(context.Background(), "accept", "0")
	assert.Equal(t, int64(0), settings.Snapshot().AcceptThresholdPct)
}

func TestHandleInvalidThreshold(t *testing.T) {
	store := &fakeStore{}
	h, settings, msg := newTestHandler(store)

	h.Handle(context.Background(), "accept", "banana")
	h.Handle(context.Background(), "accept", "-5")

	assert.Equal(t, int64(95), settings.Snapshot().AcceptThresholdPct)
	require.Len(t, msg.messages, 2)
	assert.Contains(t, msg.messages[0], "Invalid")
	assert.Empty(t, store.saved, "rejected input must not be persisted")
}

func TestHandleMissingThresholdPrintsHelp(t *testing.T) {
	h, _, msg := newTestHandler(nil)

	h.Handle(context.Background(), "accept", "")
	require.Len(t, msg.messages, 1)
	assert.Contains(t, msg.messages[0], "nego accept")
}

func TestHandleToggles(t *testing.T) {
	store := &fakeStore{}
	h, settings, msg := newTestHandler(store)

	h.Handle(context.Background(), "unattended", "")
	assert.True(t, settings.Snapshot().Unattended)
	h.Handle(context.Background(), "unattended", "")
	assert.False(t, settings.Snapshot().Unattended)

	h.Handle(context.Background(), "delay", "")
	assert.True(t, settings.Snapshot().DelayActions)

	h.Handle(context.Background(), "log", "")
	assert.True(t, settings.Snapshot().ConsoleLog)

	require.Len(t, msg.messages, 4)
	assert.Contains(t, msg.messages[0], "enabled")
	assert.Contains(t, msg.messages[1], "disabled")
	assert.Len(t, store.saved, 4)
}

func TestHandleUnknownPrintsHelp(t *testing.T) {
	h, _, msg := newTestHandler(nil)

	h.Handle(context.Background(), "bogus", "")
	require.Len(t, msg.messages, 1)
	assert.Contains(t, msg.messages[0], "Commands:")
}

func TestHandleNilStore(t *testing.T) {
	h, settings, _ := newTestHandler(nil)

	// No panic without a persistence backend.
	h.Handle(context.Background(), "accept", "90")
	assert.Equal(t, int64(90), settings.Snapshot().AcceptThresholdPct)
}
