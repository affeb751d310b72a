package entities

import (
	"time"
)

// RegularConflict is an overlapping NORMAL booking
type RegularConflict struct {
	ID           string    `json:"id"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	FacilityName string    `json:"facility_name"`
	CustomerName string    `json:"customer_name"`
}

// ClassConflict is an overlapping CLASSES booking, resolved to its class
type ClassConflict struct {
	ID           string    `json:"id"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	FacilityName string    `json:"facility_name"`
	ClassName    string    `json:"class_name"`
	Instructor   string    `json:"instructor"`
}

// AvailabilityReport is the result of checking candidate sessions against a facility
type AvailabilityReport struct {
	ConflictStatus       bool              `json:"conflict_status"`
	ClassConflictsStatus bool              `json:"class_conflicts_status"`
	RegularConflicts     []RegularConflict `json:"regular_conflicts"`
	ClassConflicts       []ClassConflict   `json:"class_conflicts"`
}

// NewAvailabilityReport returns an empty report with non-nil lists
func NewAvailabilityReport() *AvailabilityReport {
	return &AvailabilityReport{
		RegularConflicts: []RegularConflict{},
		ClassConflicts:   []ClassConflict{},
	}
}

// HasConflicts reports whether any conflict of either kind was found
func (r *AvailabilityReport) HasConflicts() bool {
	return r.ConflictStatus || r.ClassConflictsStatus
}

// ConflictingBookingIDs lists the ids of all reported bookings, regular first
func (r *AvailabilityReport) ConflictingBookingIDs() []string {
	ids := make([]string, 0, len(r.RegularConflicts)+len(r.ClassConflicts))
	for _, c := range r.RegularConflicts {
		ids = append(ids, c.ID)
	}
	for _, c := range r.ClassConflicts {
		ids = append(ids, c.ID)
	}
	return ids
}
