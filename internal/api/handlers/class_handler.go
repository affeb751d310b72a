package handlers

import (
	"context"
	"net/http"

	"github.com/mokarr/appointpro/internal/domain/entities"
)

// ClassService defines the interface for class and session operations
type ClassService interface {
	CreateClassWithSessions(ctx context.Context, draft entities.ClassDraft) (*entities.ClassWithSessions, error)
	GetClassSessionAvailability(ctx context.Context, sessionID string) (*entities.SessionAvailability, error)
	EnrollParticipant(ctx context.Context, sessionID string, customer entities.Customer) (*entities.Booking, error)
}

// ClassHandler handles class requests
type ClassHandler struct {
	service ClassService
}

// NewClassHandler creates a new class handler
func NewClassHandler(service ClassService) *ClassHandler {
	return &ClassHandler{
		service: service,
	}
}

// CreateClass handles POST /api/classes
func (h *ClassHandler) CreateClass(w http.ResponseWriter, r *http.Request) {
	var draft entities.ClassDraft
	if err := decodeJSON(w, r, &draft); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	created, err := h.service.CreateClassWithSessions(r.Context(), draft)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

// GetSessionAvailability handles GET /api/class-sessions/{id}/availability
func (h *ClassHandler) GetSessionAvailability(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		respondWithError(w, http.StatusBadRequest, "class session ID is required")
		return
	}

	availability, err := h.service.GetClassSessionAvailability(r.Context(), sessionID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, availability)
}

// EnrollParticipant handles POST /api/class-sessions/{id}/participants
func (h *ClassHandler) EnrollParticipant(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		respondWithError(w, http.StatusBadRequest, "class session ID is required")
		return
	}

	var customer entities.Customer
	if err := decodeJSON(w, r, &customer); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	booking, err := h.service.EnrollParticipant(r.Context(), sessionID, customer)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, booking)
}
