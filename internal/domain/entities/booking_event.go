package entities

import (
	"time"

	"github.com/google/uuid"
)

// BookingEventType represents the type of booking event
type BookingEventType string

const (
	BookingEventTypeCreated   BookingEventType = "booking.created"
	BookingEventTypeCancelled BookingEventType = "bookings.cancelled"
	BookingEventTypeClass     BookingEventType = "class.created"
)

// BookingEvent notifies other parts of the system that facility occupancy changed
type BookingEvent struct {
	ID         string           `json:"id"`
	EventType  BookingEventType `json:"event_type"`
	FacilityID string           `json:"facility_id,omitempty"`
	BookingIDs []string         `json:"booking_ids"`
	ClassID    string           `json:"class_id,omitempty"`
	Timestamp  time.Time        `json:"timestamp"`
}

// NewBookingEvent creates a new booking event
func NewBookingEvent(eventType BookingEventType, facilityID string, bookingIDs []string) *BookingEvent {
	if bookingIDs == nil {
		bookingIDs = []string{}
	}
	return &BookingEvent{
		ID:         uuid.NewString(),
		EventType:  eventType,
		FacilityID: facilityID,
		BookingIDs: bookingIDs,
		Timestamp:  time.Now().UTC(),
	}
}
