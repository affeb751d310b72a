package entities

import (
	"bytes"
	"encoding/json"
	"time"
)

// DateLayout is the ISO calendar date used for range keys and query parameters
const DateLayout = "2006-01-02"

// Interval is a half-open time interval [Start, End)
type Interval struct {
	Start time.Time `json:"start_time"`
	End   time.Time `json:"end_time"`
}

// Overlaps is the strict half-open overlap test: intervals that only touch do not overlap
func (i Interval) Overlaps(other Interval) bool {
	return other.Start.Before(i.End) && other.End.After(i.Start)
}

// Valid reports whether End is after Start and neither is zero
func (i Interval) Valid() bool {
	return !i.Start.IsZero() && !i.End.IsZero() && i.End.After(i.Start)
}

// TimeSlot is a derived, never persisted candidate booking interval
type TimeSlot struct {
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	Start          string    `json:"start"`
	End            string    `json:"end"`
	IsAvailable    bool      `json:"is_available"`
	ClassSessionID *string   `json:"class_session_id,omitempty"`
}

// Interval returns the slot's interval
func (s *TimeSlot) Interval() Interval {
	return Interval{Start: s.StartTime, End: s.EndTime}
}

// DaySlots holds the slots computed for one calendar day
type DaySlots struct {
	Date  string     `json:"date"`
	Slots []TimeSlot `json:"slots"`
}

// SlotsByDate maps ISO dates to slot lists in chronological day order.
// It marshals to a JSON object whose keys keep that order.
type SlotsByDate []DaySlots

// Dates returns the keys in order
func (s SlotsByDate) Dates() []string {
	dates := make([]string, len(s))
	for i, d := range s {
		dates[i] = d.Date
	}
	return dates
}

// Get returns the slots of date
func (s SlotsByDate) Get(date string) ([]TimeSlot, bool) {
	for _, d := range s {
		if d.Date == date {
			return d.Slots, true
		}
	}
	return nil, false
}

// MarshalJSON writes {"2024-01-01":[...],"2024-01-02":[...]} in slice order
func (s SlotsByDate) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, d := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(d.Date)
		if err != nil {
			return nil, err
		}
		slots := d.Slots
		if slots == nil {
			slots = []TimeSlot{}
		}
		val, err := json.Marshal(slots)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
