package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mokarr/appointpro/internal/domain/availability"
	"github.com/mokarr/appointpro/internal/domain/entities"
	"github.com/mokarr/appointpro/internal/domain/providers"
	"github.com/mokarr/appointpro/internal/domain/repositories"
	"github.com/mokarr/appointpro/internal/infrastructure/observability"
	"github.com/mokarr/appointpro/pkg/config"
	apperrors "github.com/mokarr/appointpro/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
)

// ClassService handles classes, their sessions and session capacity
type ClassService struct {
	classRepo    repositories.ClassRepository
	bookingRepo  repositories.BookingRepository
	facilityRepo repositories.FacilityRepository
	publisher    providers.BookingEventPublisher
	cfg          config.AvailabilityConfig
}

// NewClassService creates a new class service
func NewClassService(
	classRepo repositories.ClassRepository,
	bookingRepo repositories.BookingRepository,
	facilityRepo repositories.FacilityRepository,
	publisher providers.BookingEventPublisher,
	cfg config.AvailabilityConfig,
) *ClassService {
	if publisher == nil {
		publisher = providers.NopPublisher{}
	}
	return &ClassService{
		classRepo:    classRepo,
		bookingRepo:  bookingRepo,
		facilityRepo: facilityRepo,
		publisher:    publisher,
		cfg:          cfg,
	}
}

// GetClassSessionAvailability reports headcount against capacity for a session
func (s *ClassService) GetClassSessionAvailability(ctx context.Context, sessionID string) (*entities.SessionAvailability, error) {
	ctx, span := observability.StartSpan(ctx, "ClassService.GetClassSessionAvailability",
		attribute.String("class_session.id", sessionID),
	)
	defer span.End()

	if _, err := s.classRepo.GetSession(ctx, sessionID); err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	rule, err := s.capacityRule(ctx, sessionID)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	return availability.SessionAvailability(sessionID, rule), nil
}

// EnrollParticipant books a place in a class session for customer. A full session
// is a conflict.
func (s *ClassService) EnrollParticipant(ctx context.Context, sessionID string, customer entities.Customer) (*entities.Booking, error) {
	ctx, span := observability.StartSpan(ctx, "ClassService.EnrollParticipant",
		attribute.String("class_session.id", sessionID),
	)
	defer span.End()

	if strings.TrimSpace(customer.Name) == "" {
		return nil, apperrors.NewInvalidArgumentError("customer name is required")
	}

	session, err := s.classRepo.GetSession(ctx, sessionID)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	classes, err := s.classRepo.GetClassesBySessionIDs(ctx, []string{sessionID})
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	class := classes[sessionID]
	if class == nil {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("class for session %s not found", sessionID))
	}

	maxParticipants, err := s.maxParticipants(ctx, sessionID)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	now := time.Now().UTC()
	booking := &entities.Booking{
		ID:             uuid.NewString(),
		StartTime:      session.StartTime,
		EndTime:        session.EndTime,
		ClassSessionID: &session.ID,
		LocationID:     class.LocationID,
		Status:         entities.BookingStatusConfirmed,
		Type:           entities.BookingTypeClasses,
		CustomerName:   customer.Name,
		CustomerEmail:  customer.Email,
		CustomerPhone:  customer.Phone,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.bookingRepo.CreateParticipantIfCapacity(ctx, booking, maxParticipants); err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	return booking, nil
}

// CreateClassWithSessions creates a class with all of its sessions in one transaction.
// When requested, every session also books the class's facility; callers resolve
// conflicts first with CheckFacilityAvailability and CancelConflictingBookings.
func (s *ClassService) CreateClassWithSessions(ctx context.Context, draft entities.ClassDraft) (*entities.ClassWithSessions, error) {
	ctx, span := observability.StartSpan(ctx, "ClassService.CreateClassWithSessions",
		attribute.Int("sessions", len(draft.Sessions)),
	)
	defer span.End()

	if err := validateClassDraft(draft); err != nil {
		return nil, err
	}

	var facility *entities.Facility
	if draft.FacilityID != nil {
		f, err := s.facilityRepo.GetByID(ctx, *draft.FacilityID)
		if err != nil {
			observability.RecordError(span, err)
			return nil, err
		}
		if f.LocationID != draft.LocationID {
			return nil, apperrors.NewInvalidArgumentError(
				fmt.Sprintf("facility %s does not belong to location %s", f.ID, draft.LocationID))
		}
		facility = f
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.ClassCreateTimeout)
	defer cancel()

	now := time.Now().UTC()
	class := &entities.Class{
		ID:         uuid.NewString(),
		Name:       strings.TrimSpace(draft.Name),
		Instructor: draft.Instructor,
		LocationID: draft.LocationID,
		FacilityID: draft.FacilityID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	sessions := make([]*entities.ClassSession, len(draft.Sessions))
	var settings []*entities.ClassSessionSettings
	var bookings []*entities.Booking
	for i, iv := range draft.Sessions {
		session := &entities.ClassSession{
			ID:        uuid.NewString(),
			ClassID:   class.ID,
			StartTime: iv.Start,
			EndTime:   iv.End,
			CreatedAt: now,
			UpdatedAt: now,
		}
		sessions[i] = session

		if draft.MaxParticipants != nil {
			settings = append(settings, &entities.ClassSessionSettings{
				ClassSessionID: session.ID,
				Data:           entities.ClassSessionSettingsData{MaxParticipants: draft.MaxParticipants},
			})
		}

		if facility != nil && draft.CreateFacilityBookings {
			bookings = append(bookings, &entities.Booking{
				ID:             uuid.NewString(),
				StartTime:      iv.Start,
				EndTime:        iv.End,
				FacilityID:     &facility.ID,
				ClassSessionID: &session.ID,
				LocationID:     class.LocationID,
				Status:         entities.BookingStatusConfirmed,
				Type:           entities.BookingTypeClasses,
				CustomerName:   class.Name,
				CreatedAt:      now,
				UpdatedAt:      now,
			})
		}
	}

	if err := s.classRepo.CreateWithSessions(ctx, class, sessions, settings, bookings); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = apperrors.NewInternalError(
				fmt.Sprintf("creating %d sessions exceeded %s", len(sessions), s.cfg.ClassCreateTimeout), err)
		}
		observability.RecordError(span, err)
		return nil, err
	}

	observability.LoggerFromContext(ctx).Info().
		Str("class_id", class.ID).
		Int("sessions", len(sessions)).
		Int("facility_bookings", len(bookings)).
		Msg("Class created")

	facilityID := ""
	if facility != nil {
		facilityID = facility.ID
	}
	bookingIDs := make([]string, len(bookings))
	for i, b := range bookings {
		bookingIDs[i] = b.ID
	}
	event := entities.NewBookingEvent(entities.BookingEventTypeClass, facilityID, bookingIDs)
	event.ClassID = class.ID
	publish(ctx, s.publisher, event)

	return &entities.ClassWithSessions{Class: class, Sessions: sessions, Bookings: bookings}, nil
}

func (s *ClassService) capacityRule(ctx context.Context, sessionID string) (availability.CapacityRule, error) {
	maxParticipants, err := s.maxParticipants(ctx, sessionID)
	if err != nil {
		return availability.CapacityRule{}, err
	}
	current, err := s.bookingRepo.CountConfirmedParticipants(ctx, sessionID)
	if err != nil {
		return availability.CapacityRule{}, err
	}
	return availability.CapacityRule{MaxParticipants: maxParticipants, CurrentParticipants: current}, nil
}

func (s *ClassService) maxParticipants(ctx context.Context, sessionID string) (int, error) {
	settings, err := s.classRepo.FindSessionSettings(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	if settings == nil || settings.Data.MaxParticipants == nil {
		return s.cfg.DefaultMaxParticipants, nil
	}
	return *settings.Data.MaxParticipants, nil
}

func validateClassDraft(draft entities.ClassDraft) error {
	if strings.TrimSpace(draft.Name) == "" {
		return apperrors.NewInvalidArgumentError("class name is required")
	}
	if draft.LocationID == "" {
		return apperrors.NewInvalidArgumentError("location_id is required")
	}
	if len(draft.Sessions) == 0 {
		return apperrors.NewInvalidArgumentError("at least one session is required")
	}
	if draft.MaxParticipants != nil && *draft.MaxParticipants < 1 {
		return apperrors.NewInvalidArgumentError("max_participants must be at least 1")
	}
	if draft.CreateFacilityBookings && draft.FacilityID == nil {
		return apperrors.NewInvalidArgumentError("create_facility_bookings requires facility_id")
	}
	for i, iv := range draft.Sessions {
		if !iv.Valid() {
			return apperrors.NewInvalidArgumentError(fmt.Sprintf("session %d: end_time must be after start_time", i))
		}
	}

	if draft.CreateFacilityBookings {
		ordered := append([]entities.Interval(nil), draft.Sessions...)
		sort.Slice(ordered, func(i, j int) bool { return ordered[i].Start.Before(ordered[j].Start) })
		for i := 1; i < len(ordered); i++ {
			if ordered[i].Overlaps(ordered[i-1]) {
				return apperrors.NewInvalidArgumentError(fmt.Sprintf(
					"sessions starting %s and %s overlap on the same facility",
					ordered[i-1].Start.Format(time.RFC3339), ordered[i].Start.Format(time.RFC3339)))
			}
		}
	}
	return nil
}
