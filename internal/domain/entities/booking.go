package entities

import (
	"time"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

// BookingType distinguishes ad-hoc facility bookings from class bookings
type BookingType string

const (
	BookingTypeNormal  BookingType = "NORMAL"
	BookingTypeClasses BookingType = "CLASSES"
)

// Booking occupies [StartTime, EndTime) on its facility.
// FacilityID is nil for class participant bookings; ClassSessionID is set for both
// the session's facility booking and its participant bookings.
type Booking struct {
	ID             string        `json:"id" db:"id"`
	StartTime      time.Time     `json:"start_time" db:"start_time"`
	EndTime        time.Time     `json:"end_time" db:"end_time"`
	FacilityID     *string       `json:"facility_id,omitempty" db:"facility_id"`
	ClassSessionID *string       `json:"class_session_id,omitempty" db:"class_session_id"`
	LocationID     string        `json:"location_id" db:"location_id"`
	Status         BookingStatus `json:"status" db:"status"`
	Type           BookingType   `json:"type" db:"type"`
	CustomerName   string        `json:"customer_name" db:"customer_name"`
	CustomerEmail  string        `json:"customer_email" db:"customer_email"`
	CustomerPhone  string        `json:"customer_phone" db:"customer_phone"`
	Notes          string        `json:"notes" db:"notes"`
	PersonCount    *int          `json:"person_count,omitempty" db:"person_count"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at" db:"updated_at"`
}

// Interval returns the half-open interval the booking occupies
func (b *Booking) Interval() Interval {
	return Interval{Start: b.StartTime, End: b.EndTime}
}

// Customer holds the contact details captured at checkout
type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// NewBooking is the input for a checkout-confirmed facility booking
type NewBooking struct {
	FacilityID  string        `json:"facility_id"`
	StartTime   time.Time     `json:"start_time"`
	EndTime     time.Time     `json:"end_time"`
	Status      BookingStatus `json:"status,omitempty"`
	Customer    Customer      `json:"customer"`
	Notes       string        `json:"notes,omitempty"`
	PersonCount *int          `json:"person_count,omitempty"`
}
