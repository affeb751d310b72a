package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/mokarr/appointpro/internal/domain/entities"
	apperrors "github.com/mokarr/appointpro/pkg/errors"
)

// AvailabilityService defines the availability engine operations served over HTTP
type AvailabilityService interface {
	GetAvailableTimeSlots(ctx context.Context, facilityID string, date time.Time, durationMinutes int) ([]entities.TimeSlot, error)
	GetAvailableTimeSlotsForRange(ctx context.Context, facilityID string, startDate time.Time, days, durationMinutes int) (entities.SlotsByDate, error)
	CheckFacilityAvailability(ctx context.Context, facilityID string, sessions []entities.Interval) (*entities.AvailabilityReport, error)
	CancelConflictingBookings(ctx context.Context, bookingIDs []string) (int64, error)
}

// AvailabilityHandler handles time slot and conflict requests
type AvailabilityHandler struct {
	service AvailabilityService
}

// NewAvailabilityHandler creates a new availability handler
func NewAvailabilityHandler(service AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{
		service: service,
	}
}

// CheckAvailabilityRequest is the body of POST /api/facilities/{id}/availability-check
type CheckAvailabilityRequest struct {
	Sessions []entities.Interval `json:"sessions"`
}

// CancelConflictsRequest is the body of POST /api/bookings/cancel-conflicts
type CancelConflictsRequest struct {
	BookingIDs []string `json:"booking_ids"`
}

// GetTimeSlots handles GET /api/facilities/{id}/timeslots?date=&duration=
func (h *AvailabilityHandler) GetTimeSlots(w http.ResponseWriter, r *http.Request) {
	facilityID := r.PathValue("id")
	if facilityID == "" {
		respondWithError(w, http.StatusBadRequest, "facility ID is required")
		return
	}

	query := r.URL.Query()
	date, err := parseDate(query.Get("date"), "date")
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	duration, err := parsePositiveInt(query.Get("duration"), "duration")
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	slots, err := h.service.GetAvailableTimeSlots(r.Context(), facilityID, date, duration)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"facility_id": facilityID,
		"date":        date.Format(entities.DateLayout),
		"slots":       slots,
		"count":       len(slots),
	})
}

// GetTimeSlotsForRange handles GET /api/facilities/{id}/timeslots/range?start=&days=&duration=
func (h *AvailabilityHandler) GetTimeSlotsForRange(w http.ResponseWriter, r *http.Request) {
	facilityID := r.PathValue("id")
	if facilityID == "" {
		respondWithError(w, http.StatusBadRequest, "facility ID is required")
		return
	}

	query := r.URL.Query()
	start, err := parseDate(query.Get("start"), "start")
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	// days is bounds-checked by the service
	days, err := strconv.Atoi(query.Get("days"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "days must be an integer")
		return
	}
	duration, err := parsePositiveInt(query.Get("duration"), "duration")
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	byDate, err := h.service.GetAvailableTimeSlotsForRange(r.Context(), facilityID, start, days, duration)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"facility_id": facilityID,
		"days":        byDate,
	})
}

// CheckAvailability handles POST /api/facilities/{id}/availability-check
func (h *AvailabilityHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	facilityID := r.PathValue("id")
	if facilityID == "" {
		respondWithError(w, http.StatusBadRequest, "facility ID is required")
		return
	}

	var req CheckAvailabilityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	report, err := h.service.CheckFacilityAvailability(r.Context(), facilityID, req.Sessions)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, report)
}

// CancelConflicts handles POST /api/bookings/cancel-conflicts
func (h *AvailabilityHandler) CancelConflicts(w http.ResponseWriter, r *http.Request) {
	var req CancelConflictsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if req.BookingIDs == nil {
		respondWithAppError(w, r, apperrors.NewInvalidArgumentError("booking_ids is required"))
		return
	}

	cancelled, err := h.service.CancelConflictingBookings(r.Context(), req.BookingIDs)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"cancelled": cancelled,
	})
}
