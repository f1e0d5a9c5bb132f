package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type ConsoleInventoryRequest struct {
	Quantity   int             `json:"quantity" validate:"gte=0,lte=500"`
	HourlyRate decimal.Decimal `json:"hourly_rate"`
	Games      []string        `json:"games,omitempty" validate:"max=200,dive,required,max=100"`
}

type UpdateInventoryRequest struct {
	TotalPCStations int                                `json:"total_pc_stations" validate:"gte=0,lte=1000"`
	PCHourlyRate    *decimal.Decimal                   `json:"pc_hourly_rate"`
	HourlyRate      decimal.Decimal                    `json:"hourly_rate"`
	Consoles        map[string]ConsoleInventoryRequest `json:"consoles" validate:"dive,keys,oneof=ps5 ps4 xbox_series_x xbox_series_s xbox_one nintendo_switch,endkeys"`
	OpeningTime     string                             `json:"opening_time" validate:"required,hhmm"`
	ClosingTime     string                             `json:"closing_time" validate:"required,hhmm"`
}

// Response DTOs

type ConsoleInventoryResponse struct {
	Quantity   int             `json:"quantity"`
	HourlyRate decimal.Decimal `json:"hourly_rate"`
	Games      []string        `json:"games,omitempty"`
}

type CafeResponse struct {
	ID              uuid.UUID                           `json:"id"`
	OwnerID         string                              `json:"owner_id"`
	Name            string                              `json:"name"`
	Address         string                              `json:"address,omitempty"`
	TotalPCStations int                                 `json:"total_pc_stations"`
	PCHourlyRate    *decimal.Decimal                    `json:"pc_hourly_rate,omitempty"`
	HourlyRate      decimal.Decimal                     `json:"hourly_rate"`
	Consoles        map[string]ConsoleInventoryResponse `json:"consoles"`
	OpeningTime     string                              `json:"opening_time"`
	ClosingTime     string                              `json:"closing_time"`
	UpdatedAt       time.Time                           `json:"updated_at"`
}
