package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mokarr/appointpro/internal/domain/entities"
	"github.com/mokarr/appointpro/internal/domain/providers"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// redisPublishClient is the part of the Redis client the publisher needs
type redisPublishClient interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisPublisher publishes booking events over Redis Pub/Sub, on the facility's
// channel and on the all-bookings channel
type RedisPublisher struct {
	client redisPublishClient
}

// NewRedisPublisher creates a Redis Pub/Sub publisher
func NewRedisPublisher(client redisPublishClient) providers.BookingEventPublisher {
	return &RedisPublisher{client: client}
}

// Publish publishes an event
func (p *RedisPublisher) Publish(ctx context.Context, event *entities.BookingEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	channels := []string{providers.EventChannelAllBookings}
	if event.FacilityID != "" {
		channels = append([]string{providers.GetFacilityBookingsChannel(event.FacilityID)}, channels...)
	}

	for _, channel := range channels {
		if err := p.client.Publish(ctx, channel, data).Err(); err != nil {
			return fmt.Errorf("failed to publish event to %s: %w", channel, err)
		}
		log.Debug().Str("channel", channel).Str("event_id", event.ID).Str("type", string(event.EventType)).
			Msg("Published booking event")
	}

	return nil
}

// Close is a no-op; the Redis client is shared with the cache and closed by its owner
func (p *RedisPublisher) Close() error {
	return nil
}
