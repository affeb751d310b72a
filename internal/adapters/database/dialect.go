package database

import (
	"errors"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/mokarr/appointpro/internal/infrastructure/clients/postgres"
	apperrors "github.com/mokarr/appointpro/pkg/errors"
)

// dialect builds every statement; execution goes through sqlx so that rows scan into
// entities by their db tags
var dialect = goqu.Dialect("postgres")

// Table names
const (
	tableFacilities           = "facilities"
	tableLocations            = "locations"
	tableLocationHours        = "location_operating_hours"
	tableOrganizationHours    = "organization_operating_hours"
	tableBookings             = "bookings"
	tableClasses              = "classes"
	tableClassSessions        = "class_sessions"
	tableClassSessionSettings = "class_session_settings"
)

// txError maps an error that escaped a transaction: application errors pass through,
// exhausted serialization retries become a conflict
func txError(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if postgres.IsSerializationFailure(err) {
		return apperrors.NewConflictError(message + ": concurrent update, try again")
	}
	return apperrors.NewInternalError(message, err)
}
