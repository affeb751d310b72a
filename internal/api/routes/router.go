package routes

import (
	"net/http"

	"github.com/mokarr/appointpro/internal/api/handlers"
	"github.com/mokarr/appointpro/internal/api/middleware"
	"github.com/mokarr/appointpro/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	availabilityHandler *handlers.AvailabilityHandler
	bookingHandler      *handlers.BookingHandler
	classHandler        *handlers.ClassHandler

	// requestScope wraps every request, e.g. to attach per-request dataloaders
	requestScope   func(http.Handler) http.Handler
	allowedOrigins []string
	metrics        *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	availabilityHandler *handlers.AvailabilityHandler,
	bookingHandler *handlers.BookingHandler,
	classHandler *handlers.ClassHandler,
	requestScope func(http.Handler) http.Handler,
	allowedOrigins []string,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:                 http.NewServeMux(),
		availabilityHandler: availabilityHandler,
		bookingHandler:      bookingHandler,
		classHandler:        classHandler,
		requestScope:        requestScope,
		allowedOrigins:      allowedOrigins,
		metrics:             metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Time slots
	r.mux.HandleFunc("GET /api/facilities/{id}/timeslots", r.availabilityHandler.GetTimeSlots)
	r.mux.HandleFunc("GET /api/facilities/{id}/timeslots/range", r.availabilityHandler.GetTimeSlotsForRange)

	// Conflict detection and resolution
	r.mux.HandleFunc("POST /api/facilities/{id}/availability-check", r.availabilityHandler.CheckAvailability)
	r.mux.HandleFunc("POST /api/bookings/cancel-conflicts", r.availabilityHandler.CancelConflicts)

	r.mux.HandleFunc("POST /api/bookings", r.bookingHandler.CreateBooking)

	// Classes
	r.mux.HandleFunc("POST /api/classes", r.classHandler.CreateClass)
	r.mux.HandleFunc("GET /api/class-sessions/{id}/availability", r.classHandler.GetSessionAvailability)
	r.mux.HandleFunc("POST /api/class-sessions/{id}/participants", r.classHandler.EnrollParticipant)

	// Last applied is outermost. Observability sits on the mux so it sees the matched pattern.
	var handler http.Handler = middleware.ObservabilityMiddleware(r.metrics)(r.mux)
	if r.requestScope != nil {
		handler = r.requestScope(handler)
	}
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.Revalidate(middleware.Compression(handler))
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
