package providers

import (
	"context"

	"github.com/mokarr/appointpro/internal/domain/entities"
)

// BookingEventPublisher publishes booking events to other services
type BookingEventPublisher interface {
	// Publish publishes an event
	Publish(ctx context.Context, event *entities.BookingEvent) error

	// Close releases the underlying connection
	Close() error
}

// Event channel names
const (
	// EventChannelAllBookings receives every booking event
	EventChannelAllBookings = "bookings:all"

	// EventChannelFacilityPrefix is the prefix for facility-specific channels
	EventChannelFacilityPrefix = "facility:"
)

// GetFacilityBookingsChannel returns the channel name for a specific facility
func GetFacilityBookingsChannel(facilityID string) string {
	return EventChannelFacilityPrefix + facilityID + ":bookings"
}

// NopPublisher drops every event
type NopPublisher struct{}

// Publish implements BookingEventPublisher
func (NopPublisher) Publish(context.Context, *entities.BookingEvent) error { return nil }

// Close implements BookingEventPublisher
func (NopPublisher) Close() error { return nil }
