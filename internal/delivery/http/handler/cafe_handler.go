package handler

import (
	"encoding/json"
	"net/http"

	"gaming-cafe-booking/internal/delivery/dto"
	"gaming-cafe-booking/internal/delivery/http/middleware"
	"gaming-cafe-booking/internal/usecase"
	"gaming-cafe-booking/pkg/response"
	"gaming-cafe-booking/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type CafeHandler struct {
	cafeUsecase usecase.CafeUsecase
	validator   *validator.CustomValidator
}

func NewCafeHandler(cafeUsecase usecase.CafeUsecase, validator *validator.CustomValidator) *CafeHandler {
	return &CafeHandler{
		cafeUsecase: cafeUsecase,
		validator:   validator,
	}
}

func (h *CafeHandler) GetCafe(w http.ResponseWriter, r *http.Request) {
	cafeID, err := uuid.Parse(mux.Vars(r)["cafeId"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid cafe ID", nil)
		return
	}

	cafe, err := h.cafeUsecase.GetCafe(r.Context(), cafeID)
	if err != nil {
		response.AppError(w, err, "Failed to get cafe")
		return
	}

	response.Success(w, http.StatusOK, "Cafe retrieved successfully", cafe)
}

func (h *CafeHandler) UpdateInventory(w http.ResponseWriter, r *http.Request) {
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

	var req dto.UpdateInventoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	cafe, err := h.cafeUsecase.UpsertInventory(r.Context(), actor, cafeID, &req)
	if err != nil {
		response.AppError(w, err, "Failed to update inventory")
		return
	}

	response.Success(w, http.StatusOK, "Inventory updated successfully", cafe)
}
