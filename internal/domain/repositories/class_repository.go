package repositories

import (
	"context"

	"github.com/mokarr/appointpro/internal/domain/entities"
)

// ClassRepository defines the interface for class and class session operations
type ClassRepository interface {
	// GetSession retrieves a class session by ID
	GetSession(ctx context.Context, id string) (*entities.ClassSession, error)

	// FindSessionSettings returns the session's settings, nil when it has none
	FindSessionSettings(ctx context.Context, classSessionID string) (*entities.ClassSessionSettings, error)

	// GetClassesBySessionIDs maps each known session ID to its class
	GetClassesBySessionIDs(ctx context.Context, classSessionIDs []string) (map[string]*entities.Class, error)

	// CreateWithSessions persists the class, its sessions, their settings and the
	// facility bookings in one transaction. Facility bookings are re-checked for
	// overlap inside the transaction.
	CreateWithSessions(ctx context.Context, class *entities.Class, sessions []*entities.ClassSession, settings []*entities.ClassSessionSettings, bookings []*entities.Booking) error
}
