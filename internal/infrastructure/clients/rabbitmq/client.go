package rabbitmq

import (
	"context"
	"fmt"
	"time"

	"github.com/mokarr/appointpro/pkg/retry"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

// Client owns one AMQP connection and the channel used for publishing
type Client struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewClient dials the broker with backoff and opens a channel
func NewClient(url string) (*Client, error) {
	probe := retry.DefaultConfig()
	probe.MaxAttempts = 5
	probe.MaxTotalTimeout = 30 * time.Second

	var conn *amqp.Connection
	err := retry.DoWithLog(context.Background(), probe, "RabbitMQ",
		func() error {
			c, err := amqp.Dial(url)
			if err != nil {
				return err
			}
			conn = c
			return nil
		},
		func(attempt int, err error, nextDelay time.Duration) {
			log.Warn().Err(err).Int("attempt", attempt).Dur("next_delay", nextDelay).
				Msg("RabbitMQ connection attempt failed, retrying")
		},
	)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	log.Info().Msg("Successfully connected to RabbitMQ")
	return &Client{conn: conn, ch: ch}, nil
}

// Channel returns the publishing channel
func (c *Client) Channel() *amqp.Channel {
	return c.ch
}

// Close closes the channel and the connection
func (c *Client) Close() error {
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
