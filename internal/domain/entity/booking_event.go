package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Routing keys of booking lifecycle events
const (
	EventBookingCreated   = "booking.created"
	EventBookingConfirmed = "booking.confirmed"
	EventBookingCancelled = "booking.cancelled"
	EventBookingCompleted = "booking.completed"
)

// BookingEvent is published after a booking change commits
type BookingEvent struct {
	BookingID     uuid.UUID       `json:"booking_id"`
	BookingCode   string          `json:"booking_code"`
	CafeID        uuid.UUID       `json:"cafe_id"`
	UserID        string          `json:"user_id"`
	Status        BookingStatus   `json:"status"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

func NewBookingEvent(b *Booking, at time.Time) BookingEvent {
	return BookingEvent{
		BookingID:     b.ID,
		BookingCode:   b.BookingCode,
		CafeID:        b.CafeID,
		UserID:        b.UserID,
		Status:        b.Status,
		PaymentStatus: b.PaymentStatus,
		TotalAmount:   b.TotalAmount,
		OccurredAt:    at,
	}
}

// PaymentUpdate is reported by the payment collaborator
type PaymentUpdate struct {
	BookingID     uuid.UUID     `json:"booking_id"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	Reference     string        `json:"reference"`
}
