package handler

import (
	"net/http"

	"gaming-cafe-booking/internal/delivery/http/middleware"
	"gaming-cafe-booking/internal/usecase"
	"gaming-cafe-booking/pkg/response"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type AuditLogHandler struct {
	auditLogUsecase usecase.AuditLogUsecase
}

func NewAuditLogHandler(auditLogUsecase usecase.AuditLogUsecase) *AuditLogHandler {
	return &AuditLogHandler{
		auditLogUsecase: auditLogUsecase,
	}
}

func (h *AuditLogHandler) GetBookingHistory(w http.ResponseWriter, r *http.Request) {
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

	logs, err := h.auditLogUsecase.GetBookingHistory(r.Context(), actor, bookingID)
	if err != nil {
		response.AppError(w, err, "Failed to get booking history")
		return
	}

	response.Success(w, http.StatusOK, "Booking history retrieved successfully", logs)
}
