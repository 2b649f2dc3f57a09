package messagebroker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// Publisher is the publishing side of the broker, as used by the app services.
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// NatsClient wraps a core NATS connection.
type NatsClient struct {
	Conn   *nats.Conn
	logger *slog.Logger
}

// NewNatsClient connects to NATS with infinite reconnects.
// natsURL example: "nats://localhost:4222"
func NewNatsClient(natsURL string, appName string, logger *slog.Logger) (*NatsClient, error) {
	logger = logger.With("component", "nats")
	nc, err := nats.Connect(natsURL,
		nats.Name(appName),
		nats.Timeout(5*time.Second),
		nats.PingInterval(20*time.Second),
		nats.MaxPingsOutstanding(3),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("NATS disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed", "last_error", nc.LastError())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NatsClient{Conn: nc, logger: logger}, nil
}

// Publish sends data on subject. Core NATS publishes are fire-and-forget; the context
// is only checked before handing the message to the connection.
func (c *NatsClient) Publish(ctx context.Context, subject string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.Conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publishing to %s: %w", subject, err)
	}
	return nil
}

// Close drains and closes the connection.
func (c *NatsClient) Close() {
	if c == nil || c.Conn == nil || c.Conn.IsClosed() {
		return
	}
	if err := c.Conn.Drain(); err != nil {
		c.logger.Warn("NATS drain failed", "error", err)
		c.Conn.Close()
	}
}

// NopPublisher discards everything. Used when NATS is not reachable at startup.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, []byte) error { return nil }
