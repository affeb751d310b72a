package entities

import (
	"fmt"
	"strconv"
	"time"
)

// MinutesPerDay is the largest ClockTime value ("24:00")
const MinutesPerDay = 24 * 60

// ClockTime is a wall-clock time of day in minutes since midnight
type ClockTime int

// ParseClockTime parses "HH:mm". "24:00" is accepted as end of day.
func ParseClockTime(s string) (ClockTime, error) {
	if len(s) != 5 || s[2] != ':' || !isDigits(s[:2]) || !isDigits(s[3:]) {
		return 0, fmt.Errorf("invalid time %q: expected HH:mm", s)
	}
	h, _ := strconv.Atoi(s[:2])
	m, _ := strconv.Atoi(s[3:])
	if m > 59 || h > 24 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("invalid time %q: out of range", s)
	}
	return ClockTime(h*60 + m), nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// String formats the clock time as HH:mm
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// On returns the instant of c on day's calendar date (as written, not converted), in loc
func (c ClockTime) On(day time.Time, loc *time.Location) time.Time {
	y, mo, d := day.Date()
	return time.Date(y, mo, d, 0, int(c), 0, 0, loc)
}

// OperatingHours is the opening window of one weekday
type OperatingHours struct {
	Weekday  time.Weekday `json:"weekday" db:"weekday"`
	Open     string       `json:"open" db:"open_time"`
	Close    string       `json:"close" db:"close_time"`
	IsClosed bool         `json:"is_closed" db:"is_closed"`
}

// Window parses Open and Close. A closed day, or one whose close is not after its
// open, has an empty window.
func (h *OperatingHours) Window() (open, close ClockTime, err error) {
	if h.IsClosed {
		return 0, 0, nil
	}
	if open, err = ParseClockTime(h.Open); err != nil {
		return 0, 0, err
	}
	if close, err = ParseClockTime(h.Close); err != nil {
		return 0, 0, err
	}
	if close < open {
		close = open
	}
	return open, close, nil
}
