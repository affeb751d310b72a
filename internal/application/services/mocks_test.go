package services_test

import (
	"context"
	"time"

	"github.com/mokarr/appointpro/internal/domain/entities"
	"github.com/stretchr/testify/mock"
)

// Mocks

type MockFacilityRepository struct {
	mock.Mock
}

func (m *MockFacilityRepository) GetByID(ctx context.Context, id string) (*entities.Facility, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Facility), args.Error(1)
}

func (m *MockFacilityRepository) FindLocationHours(ctx context.Context, locationID string, weekday time.Weekday) (*entities.OperatingHours, error) {
	args := m.Called(ctx, locationID, weekday)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.OperatingHours), args.Error(1)
}

func (m *MockFacilityRepository) FindOrganizationHours(ctx context.Context, organizationID string, weekday time.Weekday) (*entities.OperatingHours, error) {
	args := m.Called(ctx, organizationID, weekday)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.OperatingHours), args.Error(1)
}

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) FindForFacilityInRange(ctx context.Context, facilityID string, rangeStart, rangeEnd time.Time, excludeStatuses []entities.BookingStatus) ([]*entities.Booking, error) {
	args := m.Called(ctx, facilityID, rangeStart, rangeEnd, excludeStatuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Booking), args.Error(1)
}

func (m *MockBookingRepository) UpdateStatus(ctx context.Context, ids []string, status entities.BookingStatus) (int64, error) {
	args := m.Called(ctx, ids, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBookingRepository) CreateIfFree(ctx context.Context, booking *entities.Booking) error {
	return m.Called(ctx, booking).Error(0)
}

func (m *MockBookingRepository) CountConfirmedParticipants(ctx context.Context, classSessionID string) (int, error) {
	args := m.Called(ctx, classSessionID)
	return args.Int(0), args.Error(1)
}

func (m *MockBookingRepository) CreateParticipantIfCapacity(ctx context.Context, booking *entities.Booking, maxParticipants int) error {
	return m.Called(ctx, booking, maxParticipants).Error(0)
}

type MockClassRepository struct {
	mock.Mock
}

func (m *MockClassRepository) GetSession(ctx context.Context, id string) (*entities.ClassSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ClassSession), args.Error(1)
}

func (m *MockClassRepository) FindSessionSettings(ctx context.Context, classSessionID string) (*entities.ClassSessionSettings, error) {
	args := m.Called(ctx, classSessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ClassSessionSettings), args.Error(1)
}

func (m *MockClassRepository) GetClassesBySessionIDs(ctx context.Context, classSessionIDs []string) (map[string]*entities.Class, error) {
	args := m.Called(ctx, classSessionIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*entities.Class), args.Error(1)
}

func (m *MockClassRepository) CreateWithSessions(ctx context.Context, class *entities.Class, sessions []*entities.ClassSession, settings []*entities.ClassSessionSettings, bookings []*entities.Booking) error {
	return m.Called(ctx, class, sessions, settings, bookings).Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event *entities.BookingEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *MockPublisher) Close() error {
	return nil
}

// Helpers

func stringPtr(s string) *string {
	return &s
}

func intPtr(i int) *int {
	return &i
}
