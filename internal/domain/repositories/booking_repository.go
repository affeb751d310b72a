package repositories

import (
	"context"
	"time"

	"github.com/mokarr/appointpro/internal/domain/entities"
)

// BookingRepository defines the interface for booking data operations
type BookingRepository interface {
	// FindForFacilityInRange returns bookings on the facility whose interval intersects
	// [rangeStart, rangeEnd), skipping excludeStatuses, ordered by start time
	FindForFacilityInRange(ctx context.Context, facilityID string, rangeStart, rangeEnd time.Time, excludeStatuses []entities.BookingStatus) ([]*entities.Booking, error)

	// UpdateStatus moves every listed booking to status and returns the affected row count
	UpdateStatus(ctx context.Context, ids []string, status entities.BookingStatus) (int64, error)

	// CreateIfFree inserts a facility booking in a SERIALIZABLE transaction after
	// re-checking that no non-cancelled booking overlaps it
	CreateIfFree(ctx context.Context, booking *entities.Booking) error

	// CountConfirmedParticipants counts CONFIRMED participant bookings of a session
	CountConfirmedParticipants(ctx context.Context, classSessionID string) (int, error)

	// CreateParticipantIfCapacity inserts a participant booking in a SERIALIZABLE
	// transaction after re-counting participants against maxParticipants
	CreateParticipantIfCapacity(ctx context.Context, booking *entities.Booking, maxParticipants int) error
}
