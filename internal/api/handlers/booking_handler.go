package handlers

import (
	"context"
	"net/http"

	"github.com/mokarr/appointpro/internal/domain/entities"
)

// BookingService defines the interface for booking operations
type BookingService interface {
	CreateBooking(ctx context.Context, input entities.NewBooking) (*entities.Booking, error)
}

// BookingHandler handles booking requests
type BookingHandler struct {
	service BookingService
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(service BookingService) *BookingHandler {
	return &BookingHandler{
		service: service,
	}
}

// CreateBooking handles POST /api/bookings
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var input entities.NewBooking
	if err := decodeJSON(w, r, &input); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	booking, err := h.service.CreateBooking(r.Context(), input)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, booking)
}
