package converter

import (
	"gaming-cafe-booking/internal/delivery/dto"
	"gaming-cafe-booking/internal/domain/entity"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// CafeToResponse converts a Cafe entity to CafeResponse DTO
func CafeToResponse(cafe *entity.Cafe) *dto.CafeResponse {
	if cafe == nil {
		return nil
	}

	consoles := make(map[string]dto.ConsoleInventoryResponse)
	for name, inv := range cafe.Consoles.Data() {
		consoles[name] = dto.ConsoleInventoryResponse{
			Quantity:   inv.Quantity,
			HourlyRate: inv.HourlyRate,
			Games:      inv.Games,
		}
	}

	response := &dto.CafeResponse{
		ID:              cafe.ID,
		OwnerID:         cafe.OwnerID,
		Name:            cafe.Name,
		Address:         cafe.Address,
		TotalPCStations: cafe.TotalPCStations,
		HourlyRate:      cafe.HourlyRate,
		Consoles:        consoles,
		OpeningTime:     cafe.OpeningTime,
		ClosingTime:     cafe.ClosingTime,
		UpdatedAt:       cafe.UpdatedAt,
	}
	if cafe.PCHourlyRate.Valid {
		rate := cafe.PCHourlyRate.Decimal
		response.PCHourlyRate = &rate
	}

	return response
}

// ApplyInventoryRequest copies the owner-editable inventory fields onto cafe
func ApplyInventoryRequest(cafe *entity.Cafe, req *dto.UpdateInventoryRequest) {
	consoles := make(map[string]entity.ConsoleInventory, len(req.Consoles))
	for name, inv := range req.Consoles {
		consoles[name] = entity.ConsoleInventory{
			Quantity:   inv.Quantity,
			HourlyRate: inv.HourlyRate,
			Games:      inv.Games,
		}
	}

	cafe.TotalPCStations = req.TotalPCStations
	cafe.PCHourlyRate = decimal.NullDecimal{}
	if req.PCHourlyRate != nil {
		cafe.PCHourlyRate = decimal.NewNullDecimal(*req.PCHourlyRate)
	}
	cafe.HourlyRate = req.HourlyRate
	cafe.Consoles = datatypes.NewJSONType(consoles)
	cafe.OpeningTime = req.OpeningTime
	cafe.ClosingTime = req.ClosingTime
}
