package services

import (
	"context"
	"fmt"
	"time"

	"github.com/mokarr/appointpro/internal/application/loaders"
	"github.com/mokarr/appointpro/internal/domain/availability"
	"github.com/mokarr/appointpro/internal/domain/entities"
	"github.com/mokarr/appointpro/internal/domain/providers"
	"github.com/mokarr/appointpro/internal/domain/repositories"
	"github.com/mokarr/appointpro/internal/infrastructure/observability"
	"github.com/mokarr/appointpro/pkg/config"
	apperrors "github.com/mokarr/appointpro/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
)

// excludeCancelled is the status filter for every occupancy read
var excludeCancelled = []entities.BookingStatus{entities.BookingStatusCancelled}

// AvailabilityService computes facility time slots and detects booking conflicts
type AvailabilityService struct {
	facilityRepo repositories.FacilityRepository
	bookingRepo  repositories.BookingRepository
	classRepo    repositories.ClassRepository
	publisher    providers.BookingEventPublisher
	hours        availability.HoursChain
	cfg          config.AvailabilityConfig
	defaultLoc   *time.Location
	metrics      *observability.Metrics
}

// NewAvailabilityService creates a new availability service. Operating hours resolve
// from the location, then the organization, then cfg's default window.
func NewAvailabilityService(
	facilityRepo repositories.FacilityRepository,
	bookingRepo repositories.BookingRepository,
	classRepo repositories.ClassRepository,
	publisher providers.BookingEventPublisher,
	cfg config.AvailabilityConfig,
	metrics *observability.Metrics,
) (*AvailabilityService, error) {
	defaultLoc, err := time.LoadLocation(cfg.DefaultTimezone)
	if err != nil {
		return nil, fmt.Errorf("default timezone: %w", err)
	}
	if _, _, err := (&entities.OperatingHours{Open: cfg.DefaultOpen, Close: cfg.DefaultClose}).Window(); err != nil {
		return nil, fmt.Errorf("default operating hours: %w", err)
	}
	if publisher == nil {
		publisher = providers.NopPublisher{}
	}

	return &AvailabilityService{
		facilityRepo: facilityRepo,
		bookingRepo:  bookingRepo,
		classRepo:    classRepo,
		publisher:    publisher,
		hours: availability.HoursChain{
			func(ctx context.Context, f *entities.Facility, weekday time.Weekday) (*entities.OperatingHours, error) {
				return facilityRepo.FindLocationHours(ctx, f.LocationID, weekday)
			},
			func(ctx context.Context, f *entities.Facility, weekday time.Weekday) (*entities.OperatingHours, error) {
				if f.OrganizationID == "" {
					return nil, nil
				}
				return facilityRepo.FindOrganizationHours(ctx, f.OrganizationID, weekday)
			},
			availability.StaticHours(cfg.DefaultOpen, cfg.DefaultClose),
		},
		cfg:        cfg,
		defaultLoc: defaultLoc,
		metrics:    metrics,
	}, nil
}

// GetAvailableTimeSlots returns the facility's slots of durationMinutes on date's
// calendar day, each flagged available or blocked by an overlapping booking
func (s *AvailabilityService) GetAvailableTimeSlots(ctx context.Context, facilityID string, date time.Time, durationMinutes int) ([]entities.TimeSlot, error) {
	ctx, span := observability.StartSpan(ctx, "AvailabilityService.GetAvailableTimeSlots",
		attribute.String("facility.id", facilityID),
		attribute.Int("duration.minutes", durationMinutes),
	)
	defer span.End()

	if err := validateSlotRequest(date, durationMinutes); err != nil {
		return nil, err
	}

	facility, loc, err := s.facilityWithLocation(ctx, facilityID)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	slots, err := s.computeDay(ctx, facility, loc, date, durationMinutes)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	observability.RecordSlots(ctx, s.metrics, "day", len(slots))
	return slots, nil
}

// GetAvailableTimeSlotsForRange runs the single-day computation for every day in
// [startDate, startDate+days). The first failing day aborts the whole call.
func (s *AvailabilityService) GetAvailableTimeSlotsForRange(ctx context.Context, facilityID string, startDate time.Time, days, durationMinutes int) (entities.SlotsByDate, error) {
	ctx, span := observability.StartSpan(ctx, "AvailabilityService.GetAvailableTimeSlotsForRange",
		attribute.String("facility.id", facilityID),
		attribute.Int("days", days),
		attribute.Int("duration.minutes", durationMinutes),
	)
	defer span.End()

	if days < 1 || days > s.cfg.MaxRangeDays {
		return nil, apperrors.NewInvalidArgumentError(
			fmt.Sprintf("days must be between 1 and %d, got %d", s.cfg.MaxRangeDays, days))
	}
	if err := validateSlotRequest(startDate, durationMinutes); err != nil {
		return nil, err
	}

	facility, loc, err := s.facilityWithLocation(ctx, facilityID)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	y, m, d := startDate.Date()
	result := make(entities.SlotsByDate, 0, days)
	total := 0
	for i := 0; i < days; i++ {
		day := time.Date(y, m, d+i, 0, 0, 0, 0, loc)
		key := day.Format(entities.DateLayout)

		slots, err := s.computeDay(ctx, facility, loc, day, durationMinutes)
		if err != nil {
			observability.RecordError(span, err)
			return nil, apperrors.Wrapf(err, "computing slots for %s", key)
		}
		result = append(result, entities.DaySlots{Date: key, Slots: slots})
		total += len(slots)
	}

	observability.RecordSlots(ctx, s.metrics, "range", total)
	return result, nil
}

// CheckFacilityAvailability reports every non-cancelled booking on the facility that
// overlaps at least one candidate session, split into regular and class conflicts
func (s *AvailabilityService) CheckFacilityAvailability(ctx context.Context, facilityID string, sessions []entities.Interval) (*entities.AvailabilityReport, error) {
	ctx, span := observability.StartSpan(ctx, "AvailabilityService.CheckFacilityAvailability",
		attribute.String("facility.id", facilityID),
		attribute.Int("sessions", len(sessions)),
	)
	defer span.End()

	report := entities.NewAvailabilityReport()
	if len(sessions) == 0 {
		return report, nil
	}

	bounds := sessions[0]
	for i, session := range sessions {
		if !session.Valid() {
			return nil, apperrors.NewInvalidArgumentError(
				fmt.Sprintf("session %d: end_time must be after start_time", i))
		}
		if session.Start.Before(bounds.Start) {
			bounds.Start = session.Start
		}
		if session.End.After(bounds.End) {
			bounds.End = session.End
		}
	}

	facility, err := s.facilityRepo.GetByID(ctx, facilityID)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	bookings, err := s.bookingRepo.FindForFacilityInRange(ctx, facility.ID, bounds.Start, bounds.End, excludeCancelled)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	var classBookings []*entities.Booking
	for _, booking := range bookings {
		if !overlapsAny(booking.Interval(), sessions) {
			continue
		}
		if booking.Type == entities.BookingTypeClasses {
			classBookings = append(classBookings, booking)
			continue
		}
		report.RegularConflicts = append(report.RegularConflicts, entities.RegularConflict{
			ID:           booking.ID,
			StartTime:    booking.StartTime,
			EndTime:      booking.EndTime,
			FacilityName: facility.Name,
			CustomerName: booking.CustomerName,
		})
	}

	if len(classBookings) > 0 {
		classes, err := s.loadClasses(ctx, classBookings)
		if err != nil {
			observability.RecordError(span, err)
			return nil, err
		}
		for _, booking := range classBookings {
			conflict := entities.ClassConflict{
				ID:           booking.ID,
				StartTime:    booking.StartTime,
				EndTime:      booking.EndTime,
				FacilityName: facility.Name,
			}
			if booking.ClassSessionID != nil {
				if class := classes[*booking.ClassSessionID]; class != nil {
					conflict.ClassName = class.Name
					conflict.Instructor = class.Instructor
				}
			}
			report.ClassConflicts = append(report.ClassConflicts, conflict)
		}
	}

	report.ConflictStatus = len(report.RegularConflicts) > 0
	report.ClassConflictsStatus = len(report.ClassConflicts) > 0

	observability.RecordConflicts(ctx, s.metrics, "regular", len(report.RegularConflicts))
	observability.RecordConflicts(ctx, s.metrics, "class", len(report.ClassConflicts))
	return report, nil
}

// CancelConflictingBookings cancels every listed booking and returns how many rows
// changed. Calling it again with the same IDs is harmless.
func (s *AvailabilityService) CancelConflictingBookings(ctx context.Context, bookingIDs []string) (int64, error) {
	ctx, span := observability.StartSpan(ctx, "AvailabilityService.CancelConflictingBookings",
		attribute.Int("bookings", len(bookingIDs)),
	)
	defer span.End()

	ids := uniqueIDs(bookingIDs)
	if len(ids) == 0 {
		return 0, nil
	}

	n, err := s.bookingRepo.UpdateStatus(ctx, ids, entities.BookingStatusCancelled)
	if err != nil {
		observability.RecordError(span, err)
		return 0, err
	}

	observability.RecordCancelled(ctx, s.metrics, n)
	if n > 0 {
		publish(ctx, s.publisher, entities.NewBookingEvent(entities.BookingEventTypeCancelled, "", ids))
	}
	return n, nil
}

func (s *AvailabilityService) facilityWithLocation(ctx context.Context, facilityID string) (*entities.Facility, *time.Location, error) {
	facility, err := s.facilityRepo.GetByID(ctx, facilityID)
	if err != nil {
		return nil, nil, err
	}
	loc, err := facility.LoadLocation(s.defaultLoc)
	if err != nil {
		return nil, nil, apperrors.NewInternalError(
			fmt.Sprintf("facility %s has an invalid timezone %q", facility.ID, facility.Timezone), err)
	}
	return facility, loc, nil
}

func (s *AvailabilityService) computeDay(ctx context.Context, facility *entities.Facility, loc *time.Location, date time.Time, durationMinutes int) ([]entities.TimeSlot, error) {
	window := availability.DayWindow(date, loc)

	hours, err := s.hours.Resolve(ctx, facility, window.Start.Weekday())
	if err != nil {
		return nil, apperrors.Wrapf(err, "resolving operating hours")
	}
	open, close, err := hours.Window()
	if err != nil {
		return nil, apperrors.NewInternalError(
			fmt.Sprintf("invalid operating hours for %s", window.Start.Weekday()), err)
	}

	slots := availability.GenerateSlots(window.Start, loc, open, close, durationMinutes)
	if len(slots) == 0 {
		return slots, nil
	}

	start := time.Now()
	bookings, err := s.bookingRepo.FindForFacilityInRange(ctx, facility.ID, window.Start, window.End, excludeCancelled)
	observability.RecordDBMetric(ctx, s.metrics, "bookings.find_in_range", time.Since(start))
	if err != nil {
		return nil, err
	}

	return availability.Apply(slots, availability.NewIntervalRule(bookings)), nil
}

func (s *AvailabilityService) loadClasses(ctx context.Context, bookings []*entities.Booking) (map[string]*entities.Class, error) {
	l := loaders.For(ctx)
	if l == nil {
		l = loaders.NewLoaders(s.classRepo)
	}

	sessionIDs := make([]string, 0, len(bookings))
	for _, b := range bookings {
		if b.ClassSessionID != nil {
			sessionIDs = append(sessionIDs, *b.ClassSessionID)
		}
	}
	sessionIDs = uniqueIDs(sessionIDs)

	classes, errs := l.ClassBySession.LoadMany(ctx, sessionIDs)()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	bySession := make(map[string]*entities.Class, len(sessionIDs))
	for i, id := range sessionIDs {
		bySession[id] = classes[i]
	}
	return bySession, nil
}

func validateSlotRequest(date time.Time, durationMinutes int) error {
	if date.IsZero() {
		return apperrors.NewInvalidArgumentError("date is required")
	}
	if durationMinutes <= 0 {
		return apperrors.NewInvalidArgumentError(
			fmt.Sprintf("duration must be a positive number of minutes, got %d", durationMinutes))
	}
	return nil
}

func overlapsAny(iv entities.Interval, candidates []entities.Interval) bool {
	for _, c := range candidates {
		if iv.Overlaps(c) {
			return true
		}
	}
	return false
}

// uniqueIDs drops empty and repeated IDs, keeping first-seen order
func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// publish sends an event and only logs a failure
func publish(ctx context.Context, publisher providers.BookingEventPublisher, event *entities.BookingEvent) {
	if err := publisher.Publish(ctx, event); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).
			Str("event_type", string(event.EventType)).
			Str("event_id", event.ID).
			Msg("Failed to publish booking event")
	}
}
