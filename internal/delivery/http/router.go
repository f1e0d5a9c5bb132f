package http

import (
	"net/http"

	"gaming-cafe-booking/internal/delivery/http/handler"
	"gaming-cafe-booking/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router            *mux.Router
	bookingHandler    *handler.BookingHandler
	cafeHandler       *handler.CafeHandler
	auditLogHandler   *handler.AuditLogHandler
	authMiddleware    *middleware.AuthMiddleware
	corsMiddleware    *middleware.CORSMiddleware
	loggingMiddleware *middleware.LoggingMiddleware
}

func NewRouter(
	bookingHandler *handler.BookingHandler,
	cafeHandler *handler.CafeHandler,
	auditLogHandler *handler.AuditLogHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
	loggingMiddleware *middleware.LoggingMiddleware,
) *Router {
	return &Router{
		router:            mux.NewRouter(),
		bookingHandler:    bookingHandler,
		cafeHandler:       cafeHandler,
		auditLogHandler:   auditLogHandler,
		authMiddleware:    authMiddleware,
		corsMiddleware:    corsMiddleware,
		loggingMiddleware: loggingMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	// Preflight catch-all. Must precede the subrouters or they answer 405.
	r.router.Methods(http.MethodOptions).HandlerFunc(func(http.ResponseWriter, *http.Request) {})

	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Cafe routes (public)
	api.HandleFunc("/cafes/{cafeId}", r.cafeHandler.GetCafe).Methods(http.MethodGet)

	// Client routes (protected)
	protected := api.NewRoute().Subrouter()
	protected.Use(r.authMiddleware.Authenticate)
	protected.HandleFunc("/availability/check", r.bookingHandler.CheckAvailability).Methods(http.MethodPost)
	protected.HandleFunc("/bookings", r.bookingHandler.CreateBooking).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/me", r.bookingHandler.GetMyBookings).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{id}", r.bookingHandler.GetBooking).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{id}/history", r.auditLogHandler.GetBookingHistory).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{id}/cancel", r.bookingHandler.CancelBooking).Methods(http.MethodPost)

	// Owner routes (protected - owner only)
	owner := api.PathPrefix("/owner").Subrouter()
	owner.Use(r.authMiddleware.Authenticate)
	owner.Use(middleware.RequireOwner)
	owner.HandleFunc("/cafes/{cafeId}/inventory", r.cafeHandler.UpdateInventory).Methods(http.MethodPut)
	owner.HandleFunc("/cafes/{cafeId}/bookings", r.bookingHandler.GetCafeBookings).Methods(http.MethodGet)
	owner.HandleFunc("/bookings/{id}/confirm", r.bookingHandler.ConfirmBooking).Methods(http.MethodPost)
	owner.HandleFunc("/bookings/{id}/complete", r.bookingHandler.CompleteBooking).Methods(http.MethodPost)

	// Add CORS and request logging middleware
	r.router.Use(r.corsMiddleware.Handle)
	r.router.Use(r.loggingMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
