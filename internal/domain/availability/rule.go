// Package availability holds the pure part of the availability engine: the two
// availability rules, operating hours resolution and slot partitioning.
package availability

import (
	"github.com/mokarr/appointpro/internal/domain/entities"
)

// Rule decides whether a candidate is available. It is a closed union:
// IntervalRule for facility slots, CapacityRule for class sessions.
type Rule interface {
	Evaluate(candidate entities.Interval) Verdict
	isRule()
}

// Verdict is the outcome of evaluating a rule
type Verdict struct {
	Available bool
	// BlockedBy is the first occupancy that overlaps the candidate (IntervalRule only)
	BlockedBy *Occupancy
	// Remaining is the number of free places (CapacityRule only)
	Remaining int
}

// Occupancy is an interval taken on a facility by a non-cancelled booking
type Occupancy struct {
	BookingID      string
	Interval       entities.Interval
	ClassSessionID *string
}

// IntervalRule blocks any candidate overlapping one of its occupancies
type IntervalRule struct {
	Occupied []Occupancy
}

// NewIntervalRule builds an IntervalRule from facility bookings. Cancelled bookings
// never occupy the facility.
func NewIntervalRule(bookings []*entities.Booking) IntervalRule {
	occupied := make([]Occupancy, 0, len(bookings))
	for _, b := range bookings {
		if b == nil || b.Status == entities.BookingStatusCancelled {
			continue
		}
		occupied = append(occupied, Occupancy{
			BookingID:      b.ID,
			Interval:       b.Interval(),
			ClassSessionID: b.ClassSessionID,
		})
	}
	return IntervalRule{Occupied: occupied}
}

// Evaluate implements Rule
func (r IntervalRule) Evaluate(candidate entities.Interval) Verdict {
	for i := range r.Occupied {
		if r.Occupied[i].Interval.Overlaps(candidate) {
			return Verdict{Available: false, BlockedBy: &r.Occupied[i]}
		}
	}
	return Verdict{Available: true}
}

func (IntervalRule) isRule() {}

// CapacityRule is available while headcount is below capacity. The candidate
// interval plays no part.
type CapacityRule struct {
	MaxParticipants     int
	CurrentParticipants int
}

// Evaluate implements Rule
func (r CapacityRule) Evaluate(entities.Interval) Verdict {
	remaining := r.MaxParticipants - r.CurrentParticipants
	if remaining < 0 {
		remaining = 0
	}
	return Verdict{
		Available: r.CurrentParticipants < r.MaxParticipants,
		Remaining: remaining,
	}
}

func (CapacityRule) isRule() {}

// SessionAvailability evaluates the capacity rule for a class session
func SessionAvailability(sessionID string, rule CapacityRule) *entities.SessionAvailability {
	v := rule.Evaluate(entities.Interval{})
	return &entities.SessionAvailability{
		ClassSessionID:      sessionID,
		MaxParticipants:     rule.MaxParticipants,
		CurrentParticipants: rule.CurrentParticipants,
		Remaining:           v.Remaining,
		IsAvailable:         v.Available,
	}
}
