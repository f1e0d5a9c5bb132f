package entity

import (
	"time"

	"gaming-cafe-booking/internal/domain/slot"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

// ActiveBookingStatuses are the statuses that hold a slot
var ActiveBookingStatuses = []BookingStatus{BookingStatusPending, BookingStatusConfirmed}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled, BookingStatusCompleted:
		return true
	}
	return false
}

// PaymentStatus is owned by the payment collaborator; bookings only record it
type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "unpaid"
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusUnpaid:  {PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed},
	PaymentStatusPending: {PaymentStatusPaid, PaymentStatusFailed},
	PaymentStatusFailed:  {PaymentStatusPending, PaymentStatusPaid},
	PaymentStatusPaid:    {PaymentStatusRefunded},
}

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusUnpaid, PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

// CanMoveTo reports whether next is a legal successor of s
func (s PaymentStatus) CanMoveTo(next PaymentStatus) bool {
	for _, allowed := range paymentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Booking is a reservation of one station for one contiguous interval.
// Billing fields are frozen at creation and never recomputed.
type Booking struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	BookingCode      string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"booking_code"`
	CafeID           uuid.UUID       `gorm:"type:uuid;not null;index" json:"cafe_id"`
	UserID           string          `gorm:"type:varchar(128);not null;index" json:"user_id"`
	StationType      string          `gorm:"type:varchar(16);not null" json:"station_type"`
	ConsoleType      string          `gorm:"type:varchar(32);not null;default:''" json:"console_type,omitempty"`
	StationNumber    int             `gorm:"not null" json:"station_number"`
	BookingDate      string          `gorm:"type:varchar(10);not null" json:"booking_date"`
	StartTime        string          `gorm:"type:varchar(5);not null" json:"start_time"`
	EndTime          string          `gorm:"type:varchar(5);not null" json:"end_time"`
	StartMinute      int             `gorm:"not null" json:"-"`
	EndMinute        int             `gorm:"not null" json:"-"`
	Status           BookingStatus   `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`
	PaymentStatus    PaymentStatus   `gorm:"type:varchar(16);not null;default:'unpaid'" json:"payment_status"`
	PaymentReference string          `gorm:"type:varchar(128)" json:"payment_reference,omitempty"`
	DurationHours    decimal.Decimal `gorm:"type:decimal(6,2);not null" json:"duration_hours"`
	HourlyRate       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"hourly_rate"`
	TotalAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	Notes            string          `gorm:"type:text" json:"notes,omitempty"`
	CancelledAt      *time.Time      `json:"cancelled_at,omitempty"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Cafe *Cafe `gorm:"foreignKey:CafeID" json:"cafe,omitempty"`
}

func (Booking) TableName() string {
	return "bookings"
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// SlotKey identifies the station and day a booking competes for
type SlotKey struct {
	CafeID        uuid.UUID
	StationType   string
	ConsoleType   string
	StationNumber int
	BookingDate   string
}

func NewSlotKey(cafeID uuid.UUID, req slot.Request) SlotKey {
	return SlotKey{
		CafeID:        cafeID,
		StationType:   string(req.Station.Type()),
		ConsoleType:   string(req.Station.Console()),
		StationNumber: req.Station.Number(),
		BookingDate:   req.Date,
	}
}

func (b *Booking) SlotKey() SlotKey {
	return SlotKey{
		CafeID:        b.CafeID,
		StationType:   b.StationType,
		ConsoleType:   b.ConsoleType,
		StationNumber: b.StationNumber,
		BookingDate:   b.BookingDate,
	}
}

func (b *Booking) Window() slot.Window {
	return slot.Window{Start: b.StartMinute, End: b.EndMinute}
}

// ApplyRequest copies the station, date, window and frozen quote onto b
func (b *Booking) ApplyRequest(req slot.Request, quote slot.Quote) {
	b.StationType = string(req.Station.Type())
	b.ConsoleType = string(req.Station.Console())
	b.StationNumber = req.Station.Number()
	b.BookingDate = req.Date
	b.StartTime = slot.FormatClock(req.Window.Start)
	b.EndTime = slot.FormatClock(req.Window.End)
	b.StartMinute = req.Window.Start
	b.EndMinute = req.Window.End
	b.DurationHours = quote.DurationHours
	b.HourlyRate = quote.HourlyRate
	b.TotalAmount = quote.TotalAmount
}

// IsActive reports whether the booking holds its slot
func (b *Booking) IsActive() bool {
	return b.Status == BookingStatusPending || b.Status == BookingStatusConfirmed
}

// IsPending checks if booking is in pending status
func (b *Booking) IsPending() bool {
	return b.Status == BookingStatusPending
}

// IsConfirmed checks if booking is confirmed
func (b *Booking) IsConfirmed() bool {
	return b.Status == BookingStatusConfirmed
}

// IsCancelled checks if booking is cancelled
func (b *Booking) IsCancelled() bool {
	return b.Status == BookingStatusCancelled
}

func (b *Booking) IsCompleted() bool {
	return b.Status == BookingStatusCompleted
}

// Confirm changes booking status to confirmed
func (b *Booking) Confirm() {
	b.Status = BookingStatusConfirmed
}

// Cancel changes booking status to cancelled
func (b *Booking) Cancel(at time.Time) {
	b.Status = BookingStatusCancelled
	b.CancelledAt = &at
}

func (b *Booking) Complete() {
	b.Status = BookingStatusCompleted
}

// BookingFilter narrows an owner's booking list
type BookingFilter struct {
	BookingDate string
	Status      BookingStatus
}
