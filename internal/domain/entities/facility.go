package entities

import (
	"time"
)

// Organization is the tenant that owns locations
type Organization struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Location is a physical site of an organization grouping facilities
type Location struct {
	ID             string    `json:"id" db:"id"`
	OrganizationID string    `json:"organization_id" db:"organization_id"`
	Name           string    `json:"name" db:"name"`
	Timezone       string    `json:"timezone" db:"timezone"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// Facility represents a bookable resource (court, room) at a location.
// OrganizationID and Timezone are joined in from the owning location.
type Facility struct {
	ID             string    `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	Price          int64     `json:"price" db:"price"`
	LocationID     string    `json:"location_id" db:"location_id"`
	OrganizationID string    `json:"organization_id" db:"organization_id"`
	Timezone       string    `json:"timezone" db:"timezone"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// LoadLocation returns the facility's calendar location, falling back to fallback
// when the location has no timezone set.
func (f *Facility) LoadLocation(fallback *time.Location) (*time.Location, error) {
	if f.Timezone == "" {
		return fallback, nil
	}
	return time.LoadLocation(f.Timezone)
}
