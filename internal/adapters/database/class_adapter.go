package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"
	"github.com/mokarr/appointpro/internal/domain/entities"
	"github.com/mokarr/appointpro/internal/domain/repositories"
	"github.com/mokarr/appointpro/internal/infrastructure/clients/postgres"
	apperrors "github.com/mokarr/appointpro/pkg/errors"
)

// ClassAdapter implements the ClassRepository interface
type ClassAdapter struct {
	client *postgres.Client
}

// NewClassAdapter creates a new class adapter
func NewClassAdapter(client *postgres.Client) repositories.ClassRepository {
	return &ClassAdapter{
		client: client,
	}
}

type sessionSettingsRow struct {
	ClassSessionID string `db:"class_session_id"`
	Data           []byte `db:"data"`
}

type sessionClassRow struct {
	SessionID string `db:"session_id"`
	entities.Class
}

// GetSession retrieves a class session by ID
func (a *ClassAdapter) GetSession(ctx context.Context, id string) (*entities.ClassSession, error) {
	query, _, err := dialect.From(tableClassSessions).
		Select("id", "class_id", "start_time", "end_time", "created_at", "updated_at").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	session := &entities.ClassSession{}
	err = a.client.DB().GetContext(ctx, session, query)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("class session with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get class session", err)
	}

	return session, nil
}

// FindSessionSettings returns the session's settings, nil when it has none
func (a *ClassAdapter) FindSessionSettings(ctx context.Context, classSessionID string) (*entities.ClassSessionSettings, error) {
	query, _, err := dialect.From(tableClassSessionSettings).
		Select("class_session_id", "data").
		Where(goqu.Ex{"class_session_id": classSessionID}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	var row sessionSettingsRow
	err = a.client.DB().GetContext(ctx, &row, query)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get class session settings", err)
	}

	settings := &entities.ClassSessionSettings{ClassSessionID: row.ClassSessionID}
	if len(row.Data) > 0 {
		if err := json.Unmarshal(row.Data, &settings.Data); err != nil {
			return nil, apperrors.NewInternalError("failed to decode class session settings", err)
		}
	}

	return settings, nil
}

// GetClassesBySessionIDs maps each known session ID to its class. Unknown IDs are absent.
func (a *ClassAdapter) GetClassesBySessionIDs(ctx context.Context, classSessionIDs []string) (map[string]*entities.Class, error) {
	classes := make(map[string]*entities.Class, len(classSessionIDs))
	if len(classSessionIDs) == 0 {
		return classes, nil
	}

	query, _, err := dialect.From(goqu.T(tableClassSessions).As("s")).
		InnerJoin(goqu.T(tableClasses).As("c"), goqu.On(goqu.I("c.id").Eq(goqu.I("s.class_id")))).
		Select(
			goqu.I("s.id").As("session_id"),
			goqu.I("c.id"), goqu.I("c.name"), goqu.I("c.instructor"), goqu.I("c.location_id"),
			goqu.I("c.facility_id"), goqu.I("c.created_at"), goqu.I("c.updated_at"),
		).
		Where(goqu.I("s.id").In(classSessionIDs)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows := []sessionClassRow{}
	if err := a.client.DB().SelectContext(ctx, &rows, query); err != nil {
		return nil, apperrors.NewInternalError("failed to get classes for sessions", err)
	}

	for i := range rows {
		class := rows[i].Class
		classes[rows[i].SessionID] = &class
	}

	return classes, nil
}

// CreateWithSessions persists the class with its sessions, settings and facility bookings
// atomically. A facility booking that overlaps an existing one aborts with a conflict.
func (a *ClassAdapter) CreateWithSessions(ctx context.Context, class *entities.Class, sessions []*entities.ClassSession, settings []*entities.ClassSessionSettings, bookings []*entities.Booking) error {
	err := a.client.WithSerializableTx(ctx, "create class", func(tx *sqlx.Tx) error {
		if err := insertRows(ctx, tx, tableClasses, goqu.Record{
			"id":          class.ID,
			"name":        class.Name,
			"instructor":  class.Instructor,
			"location_id": class.LocationID,
			"facility_id": nullable(class.FacilityID),
			"created_at":  class.CreatedAt,
			"updated_at":  class.UpdatedAt,
		}); err != nil {
			return err
		}

		sessionRows := make([]interface{}, len(sessions))
		for i, s := range sessions {
			sessionRows[i] = goqu.Record{
				"id":         s.ID,
				"class_id":   s.ClassID,
				"start_time": s.StartTime,
				"end_time":   s.EndTime,
				"created_at": s.CreatedAt,
				"updated_at": s.UpdatedAt,
			}
		}
		if err := insertRows(ctx, tx, tableClassSessions, sessionRows...); err != nil {
			return err
		}

		settingRows := make([]interface{}, len(settings))
		for i, s := range settings {
			data, err := json.Marshal(s.Data)
			if err != nil {
				return fmt.Errorf("encode settings for session %s: %w", s.ClassSessionID, err)
			}
			settingRows[i] = goqu.Record{
				"class_session_id": s.ClassSessionID,
				"data":             string(data),
			}
		}
		if err := insertRows(ctx, tx, tableClassSessionSettings, settingRows...); err != nil {
			return err
		}

		bookingRows := make([]interface{}, len(bookings))
		for i, b := range bookings {
			if b.FacilityID != nil {
				n, err := countOverlapping(ctx, tx, *b.FacilityID, b.Interval())
				if err != nil {
					return err
				}
				if n > 0 {
					return apperrors.NewConflictError(fmt.Sprintf(
						"session %s to %s overlaps %d existing booking(s) on facility %s",
						b.StartTime.Format("2006-01-02 15:04"), b.EndTime.Format("15:04"), n, *b.FacilityID,
					))
				}
			}
			bookingRows[i] = bookingRecord(b)
		}
		return insertRows(ctx, tx, tableBookings, bookingRows...)
	})

	return txError(err, "failed to create class")
}

func insertRows(ctx context.Context, tx *sqlx.Tx, table string, rows ...interface{}) error {
	if len(rows) == 0 {
		return nil
	}
	query, _, err := dialect.Insert(table).Rows(rows...).ToSQL()
	if err != nil {
		return fmt.Errorf("build %s insert: %w", table, err)
	}
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}
