package handler

import (
	"encoding/json"
	"net/http"

	"gaming-cafe-booking/internal/delivery/dto"
	"gaming-cafe-booking/internal/delivery/http/middleware"
	"gaming-cafe-booking/internal/domain/entity"
	"gaming-cafe-booking/internal/usecase"
	"gaming-cafe-booking/pkg/response"
	"gaming-cafe-booking/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type BookingHandler struct {
	bookingUsecase usecase.BookingUsecase
	validator      *validator.CustomValidator
}

func NewBookingHandler(bookingUsecase usecase.BookingUsecase, validator *validator.CustomValidator) *BookingHandler {
	return &BookingHandler{
		bookingUsecase: bookingUsecase,
		validator:      validator,
	}
}

func (h *BookingHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	var req dto.CheckAvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	result, err := h.bookingUsecase.CheckAvailability(r.Context(), &req)
	if err != nil {
		response.AppError(w, err, "Failed to check availability")
		return
	}

	response.Success(w, http.StatusOK, "Availability checked successfully", result)
}

func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "User not found in context")
		return
	}

	var req dto.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	booking, err := h.bookingUsecase.CreateBooking(r.Context(), actor, &req)
	if err != nil {
		response.AppError(w, err, "Failed to create booking")
		return
	}

	response.Success(w, http.StatusCreated, "Booking created successfully", booking)
}

func (h *BookingHandler) GetMyBookings(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "User not found in context")
		return
	}

	bookings, err := h.bookingUsecase.ListMyBookings(r.Context(), actor)
	if err != nil {
		response.AppError(w, err, "Failed to get bookings")
		return
	}

	response.Success(w, http.StatusOK, "Bookings retrieved successfully", bookings)
}

func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	h.withBooking(w, r, func(actor entity.Actor, bookingID uuid.UUID) {
		booking, err := h.bookingUsecase.GetBooking(r.Context(), actor, bookingID)
		if err != nil {
			response.AppError(w, err, "Failed to get booking")
			return
		}
		response.Success(w, http.StatusOK, "Booking retrieved successfully", booking)
	})
}

func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	h.withBooking(w, r, func(actor entity.Actor, bookingID uuid.UUID) {
		booking, err := h.bookingUsecase.CancelBooking(r.Context(), actor, bookingID)
		if err != nil {
			response.AppError(w, err, "Failed to cancel booking")
			return
		}
		response.Success(w, http.StatusOK, "Booking cancelled successfully", booking)
	})
}

func (h *BookingHandler) ConfirmBooking(w http.ResponseWriter, r *http.Request) {
	h.withBooking(w, r, func(actor entity.Actor, bookingID uuid.UUID) {
		booking, err := h.bookingUsecase.ConfirmBooking(r.Context(), actor, bookingID)
		if err != nil {
			response.AppError(w, err, "Failed to confirm booking")
			return
		}
		response.Success(w, http.StatusOK, "Booking confirmed successfully", booking)
	})
}

func (h *BookingHandler) CompleteBooking(w http.ResponseWriter, r *http.Request) {
	h.withBooking(w, r, func(actor entity.Actor, bookingID uuid.UUID) {
		booking, err := h.bookingUsecase.CompleteBooking(r.Context(), actor, bookingID)
		if err != nil {
			response.AppError(w, err, "Failed to complete booking")
			return
		}
		response.Success(w, http.StatusOK, "Booking completed successfully", booking)
	})
}

func (h *BookingHandler) GetCafeBookings(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "User not found in context")
		return
	}

	cafeID, err := uuid.Parse(mux.Vars(r)["cafeId"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid cafe ID", nil)
		return
	}

	query := r.URL.Query()
	filter := entity.BookingFilter{
		BookingDate: query.Get("date"),
		Status:      entity.BookingStatus(query.Get("status")),
	}

	bookings, err := h.bookingUsecase.ListCafeBookings(r.Context(), actor, cafeID, filter)
	if err != nil {
		response.AppError(w, err, "Failed to get cafe bookings")
		return
	}

	response.Success(w, http.StatusOK, "Bookings retrieved successfully", bookings)
}

// withBooking resolves the caller and the {id} path variable before fn runs
func (h *BookingHandler) withBooking(w http.ResponseWriter, r *http.Request, fn func(actor entity.Actor, bookingID uuid.UUID)) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "User not found in context")
		return
	}

	bookingID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid booking ID", nil)
		return
	}

	fn(actor, bookingID)
}
