package events

import (
	"fmt"

	"github.com/mokarr/appointpro/internal/domain/providers"
	"github.com/mokarr/appointpro/internal/infrastructure/clients/rabbitmq"
	redisclient "github.com/mokarr/appointpro/internal/infrastructure/clients/redis"
	"github.com/mokarr/appointpro/pkg/config"
	"github.com/rs/zerolog/log"
)

// NewPublisher builds the publisher selected by cfg.Backend. The Redis backend reuses
// redisClient and falls back to the no-op publisher when Redis is unavailable.
func NewPublisher(cfg config.EventsConfig, redisClient *redisclient.Client) (providers.BookingEventPublisher, error) {
	switch cfg.Backend {
	case config.EventsBackendRedis:
		if redisClient == nil {
			log.Warn().Msg("Redis is not available, booking events are disabled")
			return providers.NopPublisher{}, nil
		}
		return NewRedisPublisher(redisClient.Client()), nil

	case config.EventsBackendRabbitMQ:
		client, err := rabbitmq.NewClient(cfg.AMQPURL)
		if err != nil {
			return nil, err
		}
		publisher, err := NewAMQPPublisher(client.Channel(), client.Close)
		if err != nil {
			_ = client.Close()
			return nil, err
		}
		return publisher, nil

	case config.EventsBackendNone, "":
		return providers.NopPublisher{}, nil

	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.Backend)
	}
}
