package database

import (
	"context"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"
	"github.com/mokarr/appointpro/internal/domain/entities"
	"github.com/mokarr/appointpro/internal/domain/repositories"
	"github.com/mokarr/appointpro/internal/infrastructure/clients/postgres"
	apperrors "github.com/mokarr/appointpro/pkg/errors"
)

var bookingColumns = []interface{}{
	"id", "start_time", "end_time", "facility_id", "class_session_id", "location_id",
	"status", "type", "customer_name", "customer_email", "customer_phone", "notes",
	"person_count", "created_at", "updated_at",
}

// BookingAdapter implements the BookingRepository interface
type BookingAdapter struct {
	client *postgres.Client
}

// NewBookingAdapter creates a new booking adapter
func NewBookingAdapter(client *postgres.Client) repositories.BookingRepository {
	return &BookingAdapter{
		client: client,
	}
}

// FindForFacilityInRange returns the facility's bookings intersecting [rangeStart, rangeEnd)
func (a *BookingAdapter) FindForFacilityInRange(ctx context.Context, facilityID string, rangeStart, rangeEnd time.Time, excludeStatuses []entities.BookingStatus) ([]*entities.Booking, error) {
	ds := dialect.From(tableBookings).
		Select(bookingColumns...).
		Where(
			goqu.C("facility_id").Eq(facilityID),
			goqu.C("start_time").Lt(rangeEnd),
			goqu.C("end_time").Gt(rangeStart),
		).
		Order(goqu.C("start_time").Asc(), goqu.C("id").Asc())

	if len(excludeStatuses) > 0 {
		statuses := make([]string, len(excludeStatuses))
		for i, s := range excludeStatuses {
			statuses[i] = string(s)
		}
		ds = ds.Where(goqu.C("status").NotIn(statuses))
	}

	query, _, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	bookings := []*entities.Booking{}
	if err := a.client.DB().SelectContext(ctx, &bookings, query); err != nil {
		return nil, apperrors.NewInternalError("failed to list bookings", err)
	}

	return bookings, nil
}

// UpdateStatus moves the listed bookings to status regardless of their current status
func (a *BookingAdapter) UpdateStatus(ctx context.Context, ids []string, status entities.BookingStatus) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query, _, err := dialect.Update(tableBookings).
		Set(goqu.Record{"status": string(status), "updated_at": time.Now().UTC()}).
		Where(goqu.C("id").In(ids)).
		ToSQL()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query)
	if err != nil {
		return 0, apperrors.NewInternalError("failed to update booking status", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to get rows affected", err)
	}

	return rowsAffected, nil
}

// CreateIfFree inserts a facility booking unless a non-cancelled booking overlaps it
func (a *BookingAdapter) CreateIfFree(ctx context.Context, booking *entities.Booking) error {
	if booking.FacilityID == nil {
		return apperrors.NewInvalidArgumentError("facility booking requires a facility")
	}

	err := a.client.WithSerializableTx(ctx, "create booking", func(tx *sqlx.Tx) error {
		n, err := countOverlapping(ctx, tx, *booking.FacilityID, booking.Interval())
		if err != nil {
			return err
		}
		if n > 0 {
			return apperrors.NewConflictError(fmt.Sprintf(
				"facility %s is already booked between %s and %s",
				*booking.FacilityID, booking.StartTime.Format(time.RFC3339), booking.EndTime.Format(time.RFC3339),
			))
		}
		return insertRows(ctx, tx, tableBookings, bookingRecord(booking))
	})

	return txError(err, "failed to create booking")
}

// CountConfirmedParticipants counts CONFIRMED participant bookings of a session
func (a *BookingAdapter) CountConfirmedParticipants(ctx context.Context, classSessionID string) (int, error) {
	n, err := countParticipants(ctx, a.client.DB(), classSessionID)
	if err != nil {
		return 0, apperrors.NewInternalError("failed to count participants", err)
	}
	return n, nil
}

// CreateParticipantIfCapacity inserts a participant booking while the session has room
func (a *BookingAdapter) CreateParticipantIfCapacity(ctx context.Context, booking *entities.Booking, maxParticipants int) error {
	if booking.ClassSessionID == nil {
		return apperrors.NewInvalidArgumentError("participant booking requires a class session")
	}

	err := a.client.WithSerializableTx(ctx, "enroll participant", func(tx *sqlx.Tx) error {
		n, err := countParticipants(ctx, tx, *booking.ClassSessionID)
		if err != nil {
			return err
		}
		if n >= maxParticipants {
			return apperrors.NewConflictError(fmt.Sprintf(
				"class session %s is full (%d/%d)", *booking.ClassSessionID, n, maxParticipants,
			))
		}
		return insertRows(ctx, tx, tableBookings, bookingRecord(booking))
	})

	return txError(err, "failed to enroll participant")
}

func countOverlapping(ctx context.Context, q sqlx.QueryerContext, facilityID string, iv entities.Interval) (int, error) {
	query, _, err := dialect.From(tableBookings).
		Select(goqu.COUNT("*")).
		Where(
			goqu.C("facility_id").Eq(facilityID),
			goqu.C("status").Neq(string(entities.BookingStatusCancelled)),
			goqu.C("start_time").Lt(iv.End),
			goqu.C("end_time").Gt(iv.Start),
		).
		ToSQL()
	if err != nil {
		return 0, err
	}

	var n int
	if err := sqlx.GetContext(ctx, q, &n, query); err != nil {
		return 0, err
	}
	return n, nil
}

func countParticipants(ctx context.Context, q sqlx.QueryerContext, classSessionID string) (int, error) {
	query, _, err := dialect.From(tableBookings).
		Select(goqu.COUNT("*")).
		Where(
			goqu.C("class_session_id").Eq(classSessionID),
			goqu.C("status").Eq(string(entities.BookingStatusConfirmed)),
			goqu.C("facility_id").IsNull(),
		).
		ToSQL()
	if err != nil {
		return 0, err
	}

	var n int
	if err := sqlx.GetContext(ctx, q, &n, query); err != nil {
		return 0, err
	}
	return n, nil
}

func bookingRecord(b *entities.Booking) goqu.Record {
	return goqu.Record{
		"id":               b.ID,
		"start_time":       b.StartTime,
		"end_time":         b.EndTime,
		"facility_id":      nullable(b.FacilityID),
		"class_session_id": nullable(b.ClassSessionID),
		"location_id":      b.LocationID,
		"status":           string(b.Status),
		"type":             string(b.Type),
		"customer_name":    b.CustomerName,
		"customer_email":   b.CustomerEmail,
		"customer_phone":   b.CustomerPhone,
		"notes":            b.Notes,
		"person_count":     nullable(b.PersonCount),
		"created_at":       b.CreatedAt,
		"updated_at":       b.UpdatedAt,
	}
}

// nullable turns a nil pointer into SQL NULL
func nullable[T any](p *T) interface{} {
	if p == nil {
		return nil
	}
	return *p
}
