package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/mokarr/appointpro/internal/domain/entities"
	"github.com/mokarr/appointpro/internal/domain/repositories"
	"github.com/mokarr/appointpro/internal/infrastructure/clients/postgres"
	apperrors "github.com/mokarr/appointpro/pkg/errors"
)

// FacilityAdapter implements the FacilityRepository interface
type FacilityAdapter struct {
	client *postgres.Client
}

// NewFacilityAdapter creates a new facility adapter
func NewFacilityAdapter(client *postgres.Client) repositories.FacilityRepository {
	return &FacilityAdapter{
		client: client,
	}
}

// GetByID retrieves a facility by ID, joined with its location's organization and timezone
func (a *FacilityAdapter) GetByID(ctx context.Context, id string) (*entities.Facility, error) {
	query, _, err := dialect.From(goqu.T(tableFacilities).As("f")).
		InnerJoin(goqu.T(tableLocations).As("l"), goqu.On(goqu.I("l.id").Eq(goqu.I("f.location_id")))).
		Select(
			goqu.I("f.id"), goqu.I("f.name"), goqu.I("f.price"), goqu.I("f.location_id"),
			goqu.I("l.organization_id"), goqu.I("l.timezone"),
			goqu.I("f.created_at"), goqu.I("f.updated_at"),
		).
		Where(goqu.I("f.id").Eq(id)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	facility := &entities.Facility{}
	err = a.client.DB().GetContext(ctx, facility, query)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("facility with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get facility", err)
	}

	return facility, nil
}

// FindLocationHours returns the location's hours for weekday, nil when unset
func (a *FacilityAdapter) FindLocationHours(ctx context.Context, locationID string, weekday time.Weekday) (*entities.OperatingHours, error) {
	return a.findHours(ctx, tableLocationHours, goqu.Ex{"location_id": locationID, "weekday": int(weekday)})
}

// FindOrganizationHours returns the organization default for weekday, nil when unset
func (a *FacilityAdapter) FindOrganizationHours(ctx context.Context, organizationID string, weekday time.Weekday) (*entities.OperatingHours, error) {
	return a.findHours(ctx, tableOrganizationHours, goqu.Ex{"organization_id": organizationID, "weekday": int(weekday)})
}

func (a *FacilityAdapter) findHours(ctx context.Context, table string, where goqu.Ex) (*entities.OperatingHours, error) {
	query, _, err := dialect.From(table).
		Select("weekday", "open_time", "close_time", "is_closed").
		Where(where).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	hours := &entities.OperatingHours{}
	err = a.client.DB().GetContext(ctx, hours, query)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get operating hours", err)
	}

	return hours, nil
}
