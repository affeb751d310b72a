package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mokarr/appointpro/internal/domain/entities"
	"github.com/mokarr/appointpro/internal/domain/providers"
	"github.com/mokarr/appointpro/internal/domain/repositories"
	"github.com/mokarr/appointpro/internal/infrastructure/observability"
	apperrors "github.com/mokarr/appointpro/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
)

// BookingService handles checkout-confirmed facility bookings
type BookingService struct {
	facilityRepo repositories.FacilityRepository
	bookingRepo  repositories.BookingRepository
	publisher    providers.BookingEventPublisher
}

// NewBookingService creates a new booking service
func NewBookingService(facilityRepo repositories.FacilityRepository, bookingRepo repositories.BookingRepository, publisher providers.BookingEventPublisher) *BookingService {
	if publisher == nil {
		publisher = providers.NopPublisher{}
	}
	return &BookingService{
		facilityRepo: facilityRepo,
		bookingRepo:  bookingRepo,
		publisher:    publisher,
	}
}

// CreateBooking stores a NORMAL booking on a facility. The facility must be free for
// the whole interval; a concurrent overlapping booking makes this fail with a conflict.
func (s *BookingService) CreateBooking(ctx context.Context, input entities.NewBooking) (*entities.Booking, error) {
	ctx, span := observability.StartSpan(ctx, "BookingService.CreateBooking",
		attribute.String("facility.id", input.FacilityID),
	)
	defer span.End()

	if input.FacilityID == "" {
		return nil, apperrors.NewInvalidArgumentError("facility_id is required")
	}
	if !(entities.Interval{Start: input.StartTime, End: input.EndTime}).Valid() {
		return nil, apperrors.NewInvalidArgumentError("end_time must be after start_time")
	}
	if input.PersonCount != nil && *input.PersonCount < 1 {
		return nil, apperrors.NewInvalidArgumentError(
			fmt.Sprintf("person_count must be at least 1, got %d", *input.PersonCount))
	}

	status := input.Status
	switch status {
	case "":
		status = entities.BookingStatusConfirmed
	case entities.BookingStatusConfirmed, entities.BookingStatusPending:
	default:
		return nil, apperrors.NewInvalidArgumentError(fmt.Sprintf("a new booking cannot have status %s", status))
	}

	facility, err := s.facilityRepo.GetByID(ctx, input.FacilityID)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	now := time.Now().UTC()
	booking := &entities.Booking{
		ID:            uuid.NewString(),
		StartTime:     input.StartTime,
		EndTime:       input.EndTime,
		FacilityID:    &facility.ID,
		LocationID:    facility.LocationID,
		Status:        status,
		Type:          entities.BookingTypeNormal,
		CustomerName:  input.Customer.Name,
		CustomerEmail: input.Customer.Email,
		CustomerPhone: input.Customer.Phone,
		Notes:         input.Notes,
		PersonCount:   input.PersonCount,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.bookingRepo.CreateIfFree(ctx, booking); err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	observability.LoggerFromContext(ctx).Info().
		Str("booking_id", booking.ID).
		Str("facility_id", facility.ID).
		Time("start", booking.StartTime).
		Msg("Booking created")

	publish(ctx, s.publisher, entities.NewBookingEvent(entities.BookingEventTypeCreated, facility.ID, []string{booking.ID}))
	return booking, nil
}
