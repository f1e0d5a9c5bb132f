package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

// SlotRequest names one station on one date for one time window
type SlotRequest struct {
	CafeID        string `json:"cafe_id" validate:"required,uuid"`
	StationType   string `json:"station_type" validate:"required,oneof=pc console"`
	ConsoleType   string `json:"console_type,omitempty" validate:"required_if=StationType console"`
	StationNumber int    `json:"station_number" validate:"required,min=1"`
	BookingDate   string `json:"booking_date" validate:"required,yyyymmdd"`
	StartTime     string `json:"start_time" validate:"required,hhmm"`
	EndTime       string `json:"end_time" validate:"required,hhmm"`
}

type CheckAvailabilityRequest struct {
	SlotRequest
}

type CreateBookingRequest struct {
	SlotRequest
	Notes  string `json:"notes,omitempty" validate:"max=500"`
	PayNow bool   `json:"pay_now"`
}

// Response DTOs

type TimeRangeResponse struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type AvailabilityResponse struct {
	Available     bool                `json:"available"`
	EstimatedCost decimal.Decimal     `json:"estimated_cost"`
	DurationHours decimal.Decimal     `json:"duration_hours"`
	HourlyRate    decimal.Decimal     `json:"hourly_rate"`
	Conflicts     []TimeRangeResponse `json:"conflicts,omitempty"`
}

type BillingResponse struct {
	StationType   string          `json:"station_type"`
	ConsoleType   string          `json:"console_type,omitempty"`
	DurationHours decimal.Decimal `json:"duration_hours"`
	HourlyRate    decimal.Decimal `json:"hourly_rate"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

type BookingResponse struct {
	ID               uuid.UUID       `json:"id"`
	BookingCode      string          `json:"booking_code"`
	CafeID           uuid.UUID       `json:"cafe_id"`
	CafeName         string          `json:"cafe_name,omitempty"`
	UserID           string          `json:"user_id"`
	StationType      string          `json:"station_type"`
	ConsoleType      string          `json:"console_type,omitempty"`
	StationNumber    int             `json:"station_number"`
	BookingDate      string          `json:"booking_date"`
	StartTime        string          `json:"start_time"`
	EndTime          string          `json:"end_time"`
	Status           string          `json:"status"`
	PaymentStatus    string          `json:"payment_status"`
	PaymentReference string          `json:"payment_reference,omitempty"`
	DurationHours    decimal.Decimal `json:"duration_hours"`
	HourlyRate       decimal.Decimal `json:"hourly_rate"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	Notes            string          `json:"notes,omitempty"`
	CancelledAt      *time.Time      `json:"cancelled_at,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

type CreateBookingResponse struct {
	Booking BookingResponse `json:"booking"`
	Billing BillingResponse `json:"billing"`
}

type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
	Total    int               `json:"total"`
}
