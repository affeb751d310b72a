package entities

import (
	"time"
)

// Class is a recurring activity definition
type Class struct {
	ID         string    `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	Instructor string    `json:"instructor" db:"instructor"`
	LocationID string    `json:"location_id" db:"location_id"`
	FacilityID *string   `json:"facility_id,omitempty" db:"facility_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// ClassSession is one scheduled occurrence of a class
type ClassSession struct {
	ID        string    `json:"id" db:"id"`
	ClassID   string    `json:"class_id" db:"class_id"`
	StartTime time.Time `json:"start_time" db:"start_time"`
	EndTime   time.Time `json:"end_time" db:"end_time"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Interval returns the session's half-open interval
func (s *ClassSession) Interval() Interval {
	return Interval{Start: s.StartTime, End: s.EndTime}
}

// ClassSessionSettingsData is stored as JSON in class_session_settings.data
type ClassSessionSettingsData struct {
	MaxParticipants *int `json:"maxParticipants,omitempty"`
}

// ClassSessionSettings holds per-session capacity settings
type ClassSessionSettings struct {
	ClassSessionID string                   `json:"class_session_id"`
	Data           ClassSessionSettingsData `json:"data"`
}

// ClassDraft is the input for creating a class together with its sessions
type ClassDraft struct {
	Name                   string     `json:"name"`
	Instructor             string     `json:"instructor"`
	LocationID             string     `json:"location_id"`
	FacilityID             *string    `json:"facility_id,omitempty"`
	MaxParticipants        *int       `json:"max_participants,omitempty"`
	CreateFacilityBookings bool       `json:"create_facility_bookings"`
	Sessions               []Interval `json:"sessions"`
}

// ClassWithSessions is what CreateClassWithSessions persisted
type ClassWithSessions struct {
	Class    *Class          `json:"class"`
	Sessions []*ClassSession `json:"sessions"`
	Bookings []*Booking      `json:"bookings,omitempty"`
}

// SessionAvailability reports headcount against capacity for one class session
type SessionAvailability struct {
	ClassSessionID      string `json:"class_session_id"`
	MaxParticipants     int    `json:"max_participants"`
	CurrentParticipants int    `json:"current_participants"`
	Remaining           int    `json:"remaining"`
	IsAvailable         bool   `json:"is_available"`
}
