package nats

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/dailyink/dailyink/internal/config"
)

const connectionName = "dailyink"

// Client owns the NATS connection and the JetStream handle used by the
// publisher and consumers.
type Client struct {
	conn *nats.Conn
	js   jetstream.JetStream
}

// EventsStream is the single stream every dailyink event lands in. The
// duplicate window lets publishers retry with the same message id.
func EventsStream() jetstream.StreamConfig {
	return jetstream.StreamConfig{
		Name:       StreamEvents,
		Subjects:   []string{SubjectEventsAll},
		Retention:  jetstream.LimitsPolicy,
		Storage:    jetstream.FileStorage,
		MaxAge:     14 * 24 * time.Hour,
		Duplicates: 10 * time.Minute,
	}
}

// NewClient connects and makes sure EventsStream exists with the current
// settings.
func NewClient(ctx context.Context, cfg config.NATSConfig) (*Client, error) {
	nc, err := nats.Connect(cfg.URL,
		nats.Name(connectionName),
		nats.Timeout(5*time.Second),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				slog.Warn("nats: disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			slog.Info("nats: reconnected", "url", c.ConnectedUrlRedacted())
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			slog.Info("nats: connection closed")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to nats: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("opening jetstream: %w", err)
	}

	stream := EventsStream()
	if _, err := js.CreateOrUpdateStream(ctx, stream); err != nil {
		nc.Close()
		return nil, fmt.Errorf("ensuring stream %s: %w", stream.Name, err)
	}

	slog.Info("connected to NATS", "url", nc.ConnectedUrlRedacted(), "stream", stream.Name)
	return &Client{conn: nc, js: js}, nil
}

func (c *Client) JetStream() jetstream.JetStream {
	return c.js
}

// Healthy reports whether the connection is currently up. Used by the
// readiness probe.
func (c *Client) Healthy() bool {
	return c.conn.IsConnected()
}

// Close drains in-flight messages before closing.
func (c *Client) Close() {
	if err := c.conn.Drain(); err != nil {
		slog.Warn("nats: draining connection", "error", err)
	}
}
