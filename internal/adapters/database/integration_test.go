//go:build integration

package database_test

import (
	"context"
	"os"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mokarr/appointpro/internal/adapters/database"
	"github.com/mokarr/appointpro/internal/application/services"
	"github.com/mokarr/appointpro/internal/domain/entities"
	"github.com/mokarr/appointpro/internal/domain/repositories"
	"github.com/mokarr/appointpro/internal/infrastructure/clients/postgres"
	"github.com/mokarr/appointpro/pkg/config"
	apperrors "github.com/mokarr/appointpro/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// AvailabilityIntegrationTestSuite runs the adapters and services against PostgreSQL
type AvailabilityIntegrationTestSuite struct {
	suite.Suite
	client     *postgres.Client
	facilities repositories.FacilityRepository
	bookings   repositories.BookingRepository
	classes    repositories.ClassRepository

	organizationID string
	locationID     string
	facilityID     string
}

func (s *AvailabilityIntegrationTestSuite) SetupSuite() {
	cfg := &config.DatabaseConfig{
		Host:     getEnv("TEST_DB_HOST", "localhost"),
		Port:     getEnvAsInt("TEST_DB_PORT", 5432),
		User:     getEnv("TEST_DB_USER", "postgres"),
		Password: getEnv("TEST_DB_PASSWORD", "postgres"),
		Database: getEnv("TEST_DB_NAME", "appointpro_test"),
		SSLMode:  getEnv("TEST_DB_SSLMODE", "disable"),
	}

	client, err := postgres.NewClient(cfg)
	require.NoError(s.T(), err, "Failed to create postgres client")
	require.NoError(s.T(), client.Migrate(context.Background()))

	s.client = client
	s.facilities = database.NewFacilityAdapter(client)
	s.bookings = database.NewBookingAdapter(client)
	s.classes = database.NewClassAdapter(client)
}

func (s *AvailabilityIntegrationTestSuite) TearDownSuite() {
	if s.client != nil {
		s.client.Close()
	}
}

func (s *AvailabilityIntegrationTestSuite) SetupTest() {
	s.cleanup()
	s.seed()
}

func (s *AvailabilityIntegrationTestSuite) cleanup() {
	_, err := s.client.DB().Exec(`TRUNCATE TABLE bookings, class_session_settings, class_sessions, classes,
		location_operating_hours, organization_operating_hours, facilities, locations, organizations CASCADE`)
	require.NoError(s.T(), err)
}

func (s *AvailabilityIntegrationTestSuite) seed() {
	s.organizationID = uuid.NewString()
	s.locationID = uuid.NewString()
	s.facilityID = uuid.NewString()

	db := s.client.DB()
	_, err := db.Exec(`INSERT INTO organizations (id, name) VALUES ($1, 'Test Org')`, s.organizationID)
	require.NoError(s.T(), err)
	_, err = db.Exec(`INSERT INTO locations (id, organization_id, name, timezone) VALUES ($1, $2, 'Test Location', 'UTC')`,
		s.locationID, s.organizationID)
	require.NoError(s.T(), err)
	_, err = db.Exec(`INSERT INTO facilities (id, name, price, location_id) VALUES ($1, 'Court 1', 2500, $2)`,
		s.facilityID, s.locationID)
	require.NoError(s.T(), err)
	_, err = db.Exec(`INSERT INTO location_operating_hours (location_id, weekday, open_time, close_time) VALUES ($1, 1, '09:00', '18:00')`,
		s.locationID)
	require.NoError(s.T(), err)
}

func (s *AvailabilityIntegrationTestSuite) booking(start, end time.Time, status entities.BookingStatus) *entities.Booking {
	now := time.Now().UTC()
	return &entities.Booking{
		ID:           uuid.NewString(),
		StartTime:    start,
		EndTime:      end,
		FacilityID:   &s.facilityID,
		LocationID:   s.locationID,
		Status:       status,
		Type:         entities.BookingTypeNormal,
		CustomerName: "Integration",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (s *AvailabilityIntegrationTestSuite) TestSingleDaySlots() {
	ctx := context.Background()
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	require.NoError(s.T(), s.bookings.CreateIfFree(ctx, s.booking(day.Add(10*time.Hour), day.Add(11*time.Hour), entities.BookingStatusConfirmed)))
	cancelled := s.booking(day.Add(12*time.Hour), day.Add(13*time.Hour), entities.BookingStatusConfirmed)
	require.NoError(s.T(), s.bookings.CreateIfFree(ctx, cancelled))
	_, err := s.bookings.UpdateStatus(ctx, []string{cancelled.ID}, entities.BookingStatusCancelled)
	require.NoError(s.T(), err)

	svc, err := services.NewAvailabilityService(s.facilities, s.bookings, s.classes, nil, config.DefaultAvailability(), nil)
	require.NoError(s.T(), err)

	slots, err := svc.GetAvailableTimeSlots(ctx, s.facilityID, day, 60)
	require.NoError(s.T(), err)
	s.Require().Len(slots, 9)
	for _, slot := range slots {
		s.Equal(slot.Start != "10:00", slot.IsAvailable, "slot %s", slot.Start)
	}
}

func (s *AvailabilityIntegrationTestSuite) TestOrganizationFallbackAndRange() {
	ctx := context.Background()
	_, err := s.client.DB().Exec(`INSERT INTO organization_operating_hours (organization_id, weekday, open_time, close_time) VALUES ($1, 2, '10:00', '12:00')`,
		s.organizationID)
	require.NoError(s.T(), err)

	svc, err := services.NewAvailabilityService(s.facilities, s.bookings, s.classes, nil, config.DefaultAvailability(), nil)
	require.NoError(s.T(), err)

	byDate, err := svc.GetAvailableTimeSlotsForRange(ctx, s.facilityID, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), 3, 60)
	require.NoError(s.T(), err)
	s.Equal([]string{"2024-01-15", "2024-01-16", "2024-01-17"}, byDate.Dates())

	tuesday, _ := byDate.Get("2024-01-16")
	s.Len(tuesday, 2)
	wednesday, _ := byDate.Get("2024-01-17")
	s.Len(wednesday, 14)
}

func (s *AvailabilityIntegrationTestSuite) TestConcurrentOverlappingBookings() {
	ctx := context.Background()
	start := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	const writers = 5
	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			offset := time.Duration(i) * 10 * time.Minute
			errs[i] = s.bookings.CreateIfFree(ctx, s.booking(start.Add(offset), start.Add(offset+time.Hour), entities.BookingStatusConfirmed))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		s.True(apperrors.IsConflict(err), "unexpected error: %v", err)
	}
	s.Equal(1, succeeded)
}

func (s *AvailabilityIntegrationTestSuite) TestClassCapacityAndConflicts() {
	ctx := context.Background()
	classService := services.NewClassService(s.classes, s.bookings, s.facilities, nil, config.DefaultAvailability())
	availability, err := services.NewAvailabilityService(s.facilities, s.bookings, s.classes, nil, config.DefaultAvailability(), nil)
	require.NoError(s.T(), err)

	session := entities.Interval{
		Start: time.Date(2024, 1, 15, 17, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 15, 18, 0, 0, 0, time.UTC),
	}
	normal := s.booking(session.Start.Add(30*time.Minute), session.End, entities.BookingStatusConfirmed)
	require.NoError(s.T(), s.bookings.CreateIfFree(ctx, normal))

	draft := entities.ClassDraft{
		Name:                   "Yoga",
		Instructor:             "Anna",
		LocationID:             s.locationID,
		FacilityID:             &s.facilityID,
		MaxParticipants:        intPtr(2),
		CreateFacilityBookings: true,
		Sessions:               []entities.Interval{session},
	}

	_, err = classService.CreateClassWithSessions(ctx, draft)
	s.True(apperrors.IsConflict(err), "expected conflict, got %v", err)

	report, err := availability.CheckFacilityAvailability(ctx, s.facilityID, draft.Sessions)
	require.NoError(s.T(), err)
	s.Equal([]string{normal.ID}, report.ConflictingBookingIDs())

	n, err := availability.CancelConflictingBookings(ctx, report.ConflictingBookingIDs())
	require.NoError(s.T(), err)
	s.Equal(int64(1), n)

	created, err := classService.CreateClassWithSessions(ctx, draft)
	require.NoError(s.T(), err)
	sessionID := created.Sessions[0].ID

	report, err = availability.CheckFacilityAvailability(ctx, s.facilityID, draft.Sessions)
	require.NoError(s.T(), err)
	s.Require().Len(report.ClassConflicts, 1)
	s.Equal("Yoga", report.ClassConflicts[0].ClassName)

	const customers = 5
	var wg sync.WaitGroup
	results := make([]error, customers)
	for i := 0; i < customers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = classService.EnrollParticipant(ctx, sessionID, entities.Customer{Name: "Customer " + strconv.Itoa(i)})
		}(i)
	}
	wg.Wait()

	enrolled := 0
	for _, err := range results {
		if err == nil {
			enrolled++
		}
	}
	s.Equal(2, enrolled)

	state, err := classService.GetClassSessionAvailability(ctx, sessionID)
	require.NoError(s.T(), err)
	s.False(state.IsAvailable)
	s.Equal(2, state.CurrentParticipants)
}

func intPtr(i int) *int {
	return &i
}

func TestAvailabilityIntegrationSuite(t *testing.T) {
	if os.Getenv("TEST_DB_HOST") == "" {
		t.Skip("Skipping integration test: TEST_DB_HOST not set")
	}
	suite.Run(t, new(AvailabilityIntegrationTestSuite))
}
