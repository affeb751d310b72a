package availability_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mokarr/appointpro/internal/domain/availability"
	"github.com/mokarr/appointpro/internal/domain/entities"
)

var testDay = time.Date(2024, 1, 1, 15, 42, 0, 0, time.UTC)

func booking(id string, start, end time.Time, status entities.BookingStatus) *entities.Booking {
	return &entities.Booking{ID: id, StartTime: start, EndTime: end, Status: status, Type: entities.BookingTypeNormal}
}

func hm(h, m int) time.Time {
	return time.Date(2024, 1, 1, h, m, 0, 0, time.UTC)
}

func TestComputeDay_NineToSixWithOneBooking(t *testing.T) {
	hours := &entities.OperatingHours{Weekday: time.Monday, Open: "09:00", Close: "18:00"}
	bookings := []*entities.Booking{booking("b1", hm(10, 0), hm(11, 0), entities.BookingStatusConfirmed)}

	slots, err := availability.ComputeDay(testDay, time.UTC, hours, 60, bookings)
	require.NoError(t, err)

	require.Len(t, slots, 9)
	for i, slot := range slots {
		assert.Equal(t, hm(9+i, 0), slot.StartTime)
		assert.Equal(t, slot.Start == "10:00", !slot.IsAvailable, "slot %s", slot.Start)
	}
	assert.Equal(t, "09:00", slots[0].Start)
	assert.Equal(t, "18:00", slots[8].End)
}

func TestComputeDay_CancelledBookingDoesNotBlock(t *testing.T) {
	hours := &entities.OperatingHours{Open: "09:00", Close: "12:00"}
	bookings := []*entities.Booking{booking("b1", hm(10, 0), hm(11, 0), entities.BookingStatusCancelled)}

	slots, err := availability.ComputeDay(testDay, time.UTC, hours, 60, bookings)
	require.NoError(t, err)

	for _, s := range slots {
		assert.True(t, s.IsAvailable)
	}
}

func TestComputeDay_BlockedSlotsMatchOverlapRelation(t *testing.T) {
	hours := &entities.OperatingHours{Open: "08:00", Close: "20:00"}
	bookings := []*entities.Booking{
		booking("b1", hm(9, 15), hm(9, 45), entities.BookingStatusConfirmed),
		booking("b2", hm(12, 0), hm(14, 30), entities.BookingStatusPending),
		booking("b3", hm(17, 30), hm(18, 0), entities.BookingStatusConfirmed),
	}

	for _, duration := range []int{15, 30, 45, 60, 90, 120} {
		slots, err := availability.ComputeDay(testDay, time.UTC, hours, duration, bookings)
		require.NoError(t, err)

		for _, s := range slots {
			blocked := false
			for _, b := range bookings {
				if b.StartTime.Before(s.EndTime) && b.EndTime.After(s.StartTime) {
					blocked = true
				}
			}
			assert.Equal(t, !blocked, s.IsAvailable, "duration %d slot %s", duration, s.Start)
		}
	}
}

func TestGenerateSlots_PartitionHasNoGapsAndStaysInsideWindow(t *testing.T) {
	open, _ := entities.ParseClockTime("09:00")
	close, _ := entities.ParseClockTime("17:30")

	for _, duration := range []int{1, 7, 25, 60, 100, 510, 511} {
		slots := availability.GenerateSlots(testDay, time.UTC, open, close, duration)

		closing := close.On(testDay, time.UTC)
		if len(slots) > 0 {
			assert.Equal(t, open.On(testDay, time.UTC), slots[0].StartTime)
			assert.False(t, slots[len(slots)-1].EndTime.After(closing))
			assert.True(t, slots[len(slots)-1].EndTime.Add(time.Duration(duration)*time.Minute).After(closing),
				"no further full slot fits for duration %d", duration)
		}
		for i := 1; i < len(slots); i++ {
			assert.Equal(t, slots[i-1].EndTime, slots[i].StartTime)
		}
		assert.Len(t, slots, 510/duration)
	}
}

func TestGenerateSlots_EmptyWindows(t *testing.T) {
	nine, _ := entities.ParseClockTime("09:00")

	assert.Empty(t, availability.GenerateSlots(testDay, time.UTC, nine, nine, 60))
	assert.Empty(t, availability.GenerateSlots(testDay, time.UTC, nine, nine+30, 60))
	assert.Empty(t, availability.GenerateSlots(testDay, time.UTC, nine, nine+120, 0))

	slots, err := availability.ComputeDay(testDay, time.UTC, &entities.OperatingHours{Open: "09:00", Close: "18:00", IsClosed: true}, 60, nil)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestGenerateSlots_UntilMidnight(t *testing.T) {
	open, _ := entities.ParseClockTime("22:00")
	close, _ := entities.ParseClockTime("24:00")

	slots := availability.GenerateSlots(testDay, time.UTC, open, close, 60)

	require.Len(t, slots, 2)
	assert.Equal(t, "24:00", slots[1].End)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), slots[1].EndTime)
}

func TestDayWindow_IgnoresTimeOfDayAndZone(t *testing.T) {
	amsterdam, err := time.LoadLocation("Europe/Amsterdam")
	require.NoError(t, err)

	w := availability.DayWindow(time.Date(2024, 3, 5, 23, 59, 0, 0, time.UTC), amsterdam)

	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, amsterdam), w.Start)
	assert.Equal(t, time.Date(2024, 3, 6, 0, 0, 0, 0, amsterdam), w.End)
}

func TestGenerateSlots_DSTTransitionDays(t *testing.T) {
	amsterdam, err := time.LoadLocation("Europe/Amsterdam")
	require.NoError(t, err)

	tests := []struct {
		name   string
		day    time.Time
		starts []string
		ends   []string
	}{
		{
			name:   "spring forward skips 02:00",
			day:    time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
			starts: []string{"00:00", "01:00", "03:00", "04:00"},
			ends:   []string{"01:00", "03:00", "04:00", "05:00"},
		},
		{
			name:   "fall back repeats 02:00",
			day:    time.Date(2024, 10, 27, 0, 0, 0, 0, time.UTC),
			starts: []string{"00:00", "01:00", "02:00", "02:00", "03:00", "04:00"},
			ends:   []string{"01:00", "02:00", "02:00", "03:00", "04:00", "05:00"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots := availability.GenerateSlots(tt.day, amsterdam, 0, 5*60, 60)

			require.Len(t, slots, len(tt.starts))
			assert.True(t, slots[0].StartTime.Equal(time.Date(tt.day.Year(), tt.day.Month(), tt.day.Day(), 0, 0, 0, 0, amsterdam)))
			assert.True(t, slots[len(slots)-1].EndTime.Equal(time.Date(tt.day.Year(), tt.day.Month(), tt.day.Day(), 5, 0, 0, 0, amsterdam)))
			for i, slot := range slots {
				assert.Equal(t, time.Hour, slot.EndTime.Sub(slot.StartTime), "slot %d", i)
				assert.True(t, slot.Interval().Valid(), "slot %d", i)
				assert.Equal(t, tt.starts[i], slot.Start, "slot %d", i)
				assert.Equal(t, tt.ends[i], slot.End, "slot %d", i)
				if i > 0 {
					assert.True(t, slots[i-1].EndTime.Equal(slot.StartTime), "gap before slot %d", i)
				}
			}
		})
	}
}

func TestGenerateSlots_WindowInsideSpringForwardGap(t *testing.T) {
	amsterdam, err := time.LoadLocation("Europe/Amsterdam")
	require.NoError(t, err)

	slots := availability.GenerateSlots(time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), amsterdam, 2*60, 3*60, 30)

	assert.Empty(t, slots)
}

func TestApply_RecordsBlockingClassSession(t *testing.T) {
	sessionID := "session-1"
	classBooking := booking("b1", hm(10, 0), hm(11, 0), entities.BookingStatusConfirmed)
	classBooking.Type = entities.BookingTypeClasses
	classBooking.ClassSessionID = &sessionID

	slots, err := availability.ComputeDay(testDay, time.UTC, &entities.OperatingHours{Open: "09:00", Close: "12:00"}, 60, []*entities.Booking{classBooking})
	require.NoError(t, err)

	require.Len(t, slots, 3)
	assert.Nil(t, slots[0].ClassSessionID)
	require.NotNil(t, slots[1].ClassSessionID)
	assert.Equal(t, sessionID, *slots[1].ClassSessionID)
}

func TestCapacityRule(t *testing.T) {
	tests := []struct {
		name      string
		rule      availability.CapacityRule
		available bool
		remaining int
	}{
		{"full", availability.CapacityRule{MaxParticipants: 2, CurrentParticipants: 2}, false, 0},
		{"one left", availability.CapacityRule{MaxParticipants: 2, CurrentParticipants: 1}, true, 1},
		{"overbooked", availability.CapacityRule{MaxParticipants: 2, CurrentParticipants: 3}, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := availability.SessionAvailability("s1", tt.rule)
			assert.Equal(t, tt.available, got.IsAvailable)
			assert.Equal(t, tt.remaining, got.Remaining)
		})
	}
}

func TestRulesAreDistinctVariants(t *testing.T) {
	rules := []availability.Rule{
		availability.NewIntervalRule([]*entities.Booking{booking("b1", hm(10, 0), hm(11, 0), entities.BookingStatusConfirmed)}),
		availability.CapacityRule{MaxParticipants: 1, CurrentParticipants: 0},
	}
	candidate := entities.Interval{Start: hm(10, 0), End: hm(11, 0)}

	assert.False(t, rules[0].Evaluate(candidate).Available)
	assert.True(t, rules[1].Evaluate(candidate).Available)
}

func TestHoursChain_Resolve(t *testing.T) {
	facility := &entities.Facility{ID: "fac-1"}
	none := func(context.Context, *entities.Facility, time.Weekday) (*entities.OperatingHours, error) {
		return nil, nil
	}
	org := func(_ context.Context, _ *entities.Facility, wd time.Weekday) (*entities.OperatingHours, error) {
		return &entities.OperatingHours{Weekday: wd, Open: "07:00", Close: "23:00"}, nil
	}

	t.Run("falls through to first configured source", func(t *testing.T) {
		chain := availability.HoursChain{none, org, availability.StaticHours("08:00", "22:00")}
		hours, err := chain.Resolve(context.Background(), facility, time.Tuesday)
		require.NoError(t, err)
		assert.Equal(t, "07:00", hours.Open)
		assert.Equal(t, time.Tuesday, hours.Weekday)
	})

	t.Run("static default is last resort", func(t *testing.T) {
		chain := availability.HoursChain{none, none, availability.StaticHours("08:00", "22:00")}
		hours, err := chain.Resolve(context.Background(), facility, time.Tuesday)
		require.NoError(t, err)
		assert.Equal(t, "08:00", hours.Open)
	})

	t.Run("error aborts", func(t *testing.T) {
		boom := errors.New("db down")
		failing := func(context.Context, *entities.Facility, time.Weekday) (*entities.OperatingHours, error) {
			return nil, boom
		}
		chain := availability.HoursChain{failing, availability.StaticHours("08:00", "22:00")}
		_, err := chain.Resolve(context.Background(), facility, time.Tuesday)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("empty chain", func(t *testing.T) {
		_, err := availability.HoursChain{}.Resolve(context.Background(), facility, time.Tuesday)
		assert.ErrorIs(t, err, availability.ErrNoOperatingHours)
	})
}
