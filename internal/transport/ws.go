// Package transport connects the negotiator to the protocol host over a
// WebSocket. Inbound frames are decoded into domain events and posted onto
// the serial event loop; outbound commands and chat messages are encoded
// back into frames.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/caydia/brokerbot/internal/domain"
	"github.com/caydia/brokerbot/internal/nego"
	"github.com/caydia/brokerbot/internal/protocol"
)

// Handler consumes decoded protocol events on the event loop. The return
// value reports whether the event was intercepted; un-intercepted events
// belong to other consumers on the host side.
type Handler interface {
	HandleEvent(ev domain.Event) bool
}

// CommandFunc receives operator command invocations relayed by the host.
type CommandFunc func(ctx context.Context, cmd, value string)

// Client is the WebSocket adapter. It implements nego.Sink.
type Client struct {
	url            string
	reconnectDelay time.Duration
	loop           *nego.Loop
	logger         *slog.Logger

	handler   Handler
	onCommand CommandFunc

	mu   sync.Mutex
	conn *websocket.Conn
}

var _ nego.Sink = (*Client)(nil)

// NewClient creates a transport client for the given host URL. SetHandler
// must be called before Run.
func NewClient(url string, reconnectDelay time.Duration, loop *nego.Loop, logger *slog.Logger) *Client {
	return &Client{
		url:            url,
		reconnectDelay: reconnectDelay,
		loop:           loop,
		logger:         logger.With(slog.String("component", "transport")),
	}
}

// SetHandler installs the event consumer.
func (c *Client) SetHandler(h Handler) {
	c.handler = h
}

// SetCommandHandler installs the operator command consumer.
func (c *Client) SetCommandHandler(fn CommandFunc) {
	c.onCommand = fn
}

// Run connects to the host and reads frames until ctx is cancelled,
// reconnecting with a fixed delay on disconnect.
func (c *Client) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := c.runConnection(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.Warn("host connection lost, reconnecting",
			slog.String("error", err.Error()),
			slog.Duration("delay", c.reconnectDelay),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.reconnectDelay):
		}
	}
}

func (c *Client) runConnection(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.conn = nil
		c.mu.Unlock()
		_ = conn.Close()
	}()

	c.logger.Info("connected to host", slog.String("url", c.url))

	// Tear the read loop down when ctx is cancelled.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		c.dispatch(ctx, raw)
	}
}

// dispatch decodes one frame and posts it onto the event loop. Frames that
// don't belong to the negotiation flow are left alone.
func (c *Client) dispatch(ctx context.Context, raw []byte) {
	var frame protocol.Frame
	if err := json.Unmarshal(raw, &frame); err != nil {
		c.logger.Warn("malformed frame", slog.String("error", err.Error()))
		return
	}

	if frame.Op == protocol.OpProxyCommand {
		if c.onCommand == nil {
			return
		}
		var inv protocol.CommandInvocation
		if err := json.Unmarshal(frame.Data, &inv); err != nil {
			c.logger.Warn("malformed command frame", slog.String("error", err.Error()))
			return
		}
		c.onCommand(ctx, inv.Command, inv.Value)
		return
	}

	ev, err := protocol.DecodeEvent(frame)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownOp) {
			c.logger.Debug("pass-through frame", slog.String("op", frame.Op))
		} else {
			c.logger.Warn("undecodable frame",
				slog.String("op", frame.Op),
				slog.String("error", err.Error()),
			)
		}
		return
	}

	c.loop.Post(func() {
		if c.handler != nil {
			c.handler.HandleEvent(ev)
		}
	})
}

// Send encodes and writes an outbound command frame.
func (c *Client) Send(cmd domain.Command) error {
	frame, err := protocol.EncodeCommand(cmd)
	if err != nil {
		return err
	}
	return c.writeFrame(frame)
}

// Message writes chat text to the host's proxy message channel.
func (c *Client) Message(text string) error {
	frame, err := protocol.EncodeChatMessage(text)
	if err != nil {
		return err
	}
	return c.writeFrame(frame)
}

func (c *Client) writeFrame(frame protocol.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return domain.ErrNotConnected
	}
	return c.conn.WriteJSON(frame)
}
