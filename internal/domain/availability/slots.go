package availability

import (
	"time"

	"github.com/mokarr/appointpro/internal/domain/entities"
)

// DayWindow returns [00:00, next 00:00) of date's calendar day in loc. The time of day
// and the zone of date are ignored.
func DayWindow(date time.Time, loc *time.Location) entities.Interval {
	y, m, d := date.Date()
	return entities.Interval{
		Start: time.Date(y, m, d, 0, 0, 0, 0, loc),
		End:   time.Date(y, m, d+1, 0, 0, 0, 0, loc),
	}
}

// GenerateSlots partitions [open, close) on day into consecutive slots of
// durationMinutes starting at open. A trailing slot that would pass close is dropped.
// Every slot starts out available.
//
// Slots are fixed-length instants, so on a DST transition day the labels follow the
// wall clock and may jump ("01:00"-"03:00") or repeat ("02:00"-"02:00").
func GenerateSlots(day time.Time, loc *time.Location, open, close entities.ClockTime, durationMinutes int) []entities.TimeSlot {
	if durationMinutes <= 0 || close <= open {
		return []entities.TimeSlot{}
	}

	step := time.Duration(durationMinutes) * time.Minute
	openAt, closeAt := open.On(day, loc), close.On(day, loc)
	if !closeAt.After(openAt) {
		return []entities.TimeSlot{}
	}

	label := func(t time.Time) string {
		if t.Equal(closeAt) {
			return close.String()
		}
		return t.In(loc).Format("15:04")
	}

	slots := make([]entities.TimeSlot, 0, int(closeAt.Sub(openAt)/step))
	for start := openAt; !start.Add(step).After(closeAt); start = start.Add(step) {
		end := start.Add(step)
		slots = append(slots, entities.TimeSlot{
			StartTime:   start,
			EndTime:     end,
			Start:       label(start),
			End:         label(end),
			IsAvailable: true,
		})
	}
	return slots
}

// Apply evaluates rule for every slot and records the verdict. A slot blocked by a
// class session booking carries that session's id.
func Apply(slots []entities.TimeSlot, rule Rule) []entities.TimeSlot {
	for i := range slots {
		v := rule.Evaluate(slots[i].Interval())
		slots[i].IsAvailable = v.Available
		slots[i].ClassSessionID = nil
		if v.BlockedBy != nil {
			slots[i].ClassSessionID = v.BlockedBy.ClassSessionID
		}
	}
	return slots
}

// ComputeDay is the single-day algorithm over already fetched data
func ComputeDay(day time.Time, loc *time.Location, hours *entities.OperatingHours, durationMinutes int, bookings []*entities.Booking) ([]entities.TimeSlot, error) {
	open, close, err := hours.Window()
	if err != nil {
		return nil, err
	}
	slots := GenerateSlots(day, loc, open, close, durationMinutes)
	return Apply(slots, NewIntervalRule(bookings)), nil
}
