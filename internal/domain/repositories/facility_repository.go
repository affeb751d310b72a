package repositories

import (
	"context"
	"time"

	"github.com/mokarr/appointpro/internal/domain/entities"
)

// FacilityRepository defines the interface for facility and operating hours lookups
type FacilityRepository interface {
	// GetByID retrieves a facility with its location's organization and timezone
	GetByID(ctx context.Context, id string) (*entities.Facility, error)

	// FindLocationHours returns the location's hours for weekday, nil when unset
	FindLocationHours(ctx context.Context, locationID string, weekday time.Weekday) (*entities.OperatingHours, error)

	// FindOrganizationHours returns the organization default for weekday, nil when unset
	FindOrganizationHours(ctx context.Context, organizationID string, weekday time.Weekday) (*entities.OperatingHours, error)
}
