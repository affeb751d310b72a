//go:build integration

package events_test

import (
	"context"
	"encoding/json"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/mokarr/appointpro/internal/adapters/events"
	"github.com/mokarr/appointpro/internal/domain/entities"
	"github.com/mokarr/appointpro/internal/domain/providers"
	"github.com/mokarr/appointpro/internal/infrastructure/clients/redis"
	"github.com/mokarr/appointpro/pkg/config"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type RedisPublisherIntegrationTestSuite struct {
	suite.Suite
	client    *redis.Client
	publisher providers.BookingEventPublisher
}

func (s *RedisPublisherIntegrationTestSuite) SetupSuite() {
	port, err := strconv.Atoi(getEnv("TEST_REDIS_PORT", "6379"))
	require.NoError(s.T(), err)

	client, err := redis.NewClient(&config.RedisConfig{
		Enabled: true,
		Host:    getEnv("TEST_REDIS_HOST", "localhost"),
		Port:    port,
	})
	require.NoError(s.T(), err, "Failed to connect to Redis")

	s.client = client
	s.publisher, err = events.NewPublisher(config.EventsConfig{Backend: config.EventsBackendRedis}, client)
	require.NoError(s.T(), err)
}

func (s *RedisPublisherIntegrationTestSuite) TearDownSuite() {
	if s.client != nil {
		s.client.Close()
	}
}

func (s *RedisPublisherIntegrationTestSuite) TestPublishReachesFacilityAndGlobalChannels() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sub := s.client.Client().Subscribe(ctx,
		providers.GetFacilityBookingsChannel("fac-int"),
		providers.EventChannelAllBookings,
	)
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(s.T(), err)

	event := entities.NewBookingEvent(entities.BookingEventTypeCancelled, "fac-int", []string{"b-1", "b-2"})
	require.NoError(s.T(), s.publisher.Publish(ctx, event))

	received := map[string]bool{}
	for len(received) < 2 {
		msg, err := sub.ReceiveMessage(ctx)
		require.NoError(s.T(), err)

		var got entities.BookingEvent
		require.NoError(s.T(), json.Unmarshal([]byte(msg.Payload), &got))
		s.Equal(event.ID, got.ID)
		s.Equal([]string{"b-1", "b-2"}, got.BookingIDs)
		received[msg.Channel] = true
	}
	s.True(received[providers.EventChannelAllBookings])
	s.True(received[providers.GetFacilityBookingsChannel("fac-int")])
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func TestRedisPublisherIntegrationSuite(t *testing.T) {
	if os.Getenv("TEST_REDIS_HOST") == "" {
		t.Skip("Skipping integration test: TEST_REDIS_HOST not set")
	}
	suite.Run(t, new(RedisPublisherIntegrationTestSuite))
}
