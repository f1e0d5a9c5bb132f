package repository

import (
	"errors"
	"time"

	"gaming-cafe-booking/internal/domain/entity"
	domainRepo "gaming-cafe-booking/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type bookingRepository struct{}

func NewBookingRepository() domainRepo.BookingRepository {
	return &bookingRepository{}
}

func (r *bookingRepository) Create(db *gorm.DB, booking *entity.Booking) error {
	return db.Omit(clause.Associations).Create(booking).Error
}

func (r *bookingRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Booking, error) {
	var booking entity.Booking
	err := db.Preload("Cafe").Where("id = ?", id).First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &booking, nil
}

// FindByIDForUpdate locks the booking row until the surrounding transaction ends
func (r *bookingRepository) FindByIDForUpdate(db *gorm.DB, id uuid.UUID) (*entity.Booking, error) {
	var booking entity.Booking
	err := db.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).Where("id = ?", id).First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &booking, nil
}

// FindActiveForSlot returns the pending and confirmed bookings competing for key
func (r *bookingRepository) FindActiveForSlot(db *gorm.DB, key entity.SlotKey) ([]entity.Booking, error) {
	var bookings []entity.Booking
	err := db.Where(
		"cafe_id = ? AND station_type = ? AND console_type = ? AND station_number = ? AND booking_date = ? AND status IN ?",
		key.CafeID, key.StationType, key.ConsoleType, key.StationNumber, key.BookingDate, entity.ActiveBookingStatuses,
	).
		Order("start_minute ASC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepository) FindByUserID(db *gorm.DB, userID string) ([]entity.Booking, error) {
	var bookings []entity.Booking
	err := db.Preload("Cafe").
		Where("user_id = ?", userID).
		Order("booking_date DESC, start_minute DESC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepository) FindByCafeID(db *gorm.DB, cafeID uuid.UUID, filter entity.BookingFilter) ([]entity.Booking, error) {
	var bookings []entity.Booking
	query := db.Where("cafe_id = ?", cafeID)
	if filter.BookingDate != "" {
		query = query.Where("booking_date = ?", filter.BookingDate)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	err := query.
		Order("booking_date ASC, station_type ASC, console_type ASC, station_number ASC, start_minute ASC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

// TransitionStatus moves a booking from one status to another only if it is
// still in the expected status. Returns affected rows: 0 means it moved on.
func (r *bookingRepository) TransitionStatus(db *gorm.DB, id uuid.UUID, from entity.BookingStatus, to entity.BookingStatus) (int64, error) {
	result := db.Model(&entity.Booking{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return result.RowsAffected, result.Error
}

// CancelBooking atomically cancels a booking ONLY if it still holds its slot.
// Returns affected rows: 1 = cancelled now, 0 = already cancelled or completed.
func (r *bookingRepository) CancelBooking(db *gorm.DB, id uuid.UUID, at time.Time) (int64, error) {
	result := db.Model(&entity.Booking{}).
		Where("id = ? AND status IN ?", id, entity.ActiveBookingStatuses).
		Updates(map[string]interface{}{
			"status":       entity.BookingStatusCancelled,
			"cancelled_at": at,
		})
	return result.RowsAffected, result.Error
}

func (r *bookingRepository) UpdatePaymentStatus(db *gorm.DB, id uuid.UUID, from entity.PaymentStatus, to entity.PaymentStatus, reference string) (int64, error) {
	updates := map[string]interface{}{"payment_status": to}
	if reference != "" {
		updates["payment_reference"] = reference
	}
	result := db.Model(&entity.Booking{}).
		Where("id = ? AND payment_status = ?", id, from).
		Updates(updates)
	return result.RowsAffected, result.Error
}
