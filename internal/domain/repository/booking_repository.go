package repository

import (
	"time"

	"gaming-cafe-booking/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookingRepository interface {
	Create(db *gorm.DB, booking *entity.Booking) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Booking, error)
	FindByIDForUpdate(db *gorm.DB, id uuid.UUID) (*entity.Booking, error)
	FindActiveForSlot(db *gorm.DB, key entity.SlotKey) ([]entity.Booking, error)
	FindByUserID(db *gorm.DB, userID string) ([]entity.Booking, error)
	FindByCafeID(db *gorm.DB, cafeID uuid.UUID, filter entity.BookingFilter) ([]entity.Booking, error)
	TransitionStatus(db *gorm.DB, id uuid.UUID, from entity.BookingStatus, to entity.BookingStatus) (int64, error)
	CancelBooking(db *gorm.DB, id uuid.UUID, at time.Time) (int64, error)
	UpdatePaymentStatus(db *gorm.DB, id uuid.UUID, from entity.PaymentStatus, to entity.PaymentStatus, reference string) (int64, error)
}
