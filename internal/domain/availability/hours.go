package availability

import (
	"context"
	"errors"
	"time"

	"github.com/mokarr/appointpro/internal/domain/entities"
)

// ErrNoOperatingHours is returned when no link of a chain resolves
var ErrNoOperatingHours = errors.New("no operating hours resolved")

// HoursSource returns the hours for a weekday, or nil when it has none configured
type HoursSource func(ctx context.Context, facility *entities.Facility, weekday time.Weekday) (*entities.OperatingHours, error)

// HoursChain resolves operating hours as an ordered fallback:
// location hours ?? organization default ?? static default.
type HoursChain []HoursSource

// Resolve returns the first non-nil result. An error from any link aborts.
func (c HoursChain) Resolve(ctx context.Context, facility *entities.Facility, weekday time.Weekday) (*entities.OperatingHours, error) {
	for _, source := range c {
		hours, err := source(ctx, facility, weekday)
		if err != nil {
			return nil, err
		}
		if hours != nil {
			return hours, nil
		}
	}
	return nil, ErrNoOperatingHours
}

// StaticHours always returns the same open/close window
func StaticHours(open, close string) HoursSource {
	return func(_ context.Context, _ *entities.Facility, weekday time.Weekday) (*entities.OperatingHours, error) {
		return &entities.OperatingHours{Weekday: weekday, Open: open, Close: close}, nil
	}
}
