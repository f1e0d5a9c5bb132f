package usecase

import (
	"context"

	"gaming-cafe-booking/internal/converter"
	"gaming-cafe-booking/internal/delivery/dto"
	"gaming-cafe-booking/internal/domain/entity"
	"gaming-cafe-booking/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AuditLogUsecase exposes the recorded lifecycle of a booking. Bookings are
// never deleted, so this history is complete.
type AuditLogUsecase interface {
	GetBookingHistory(ctx context.Context, actor entity.Actor, bookingID uuid.UUID) (*dto.AuditLogListResponse, error)
}

type auditLogUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	bookingRepo  repository.BookingRepository
	auditLogRepo repository.AuditLogRepository
}

func NewAuditLogUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	bookingRepo repository.BookingRepository,
	auditLogRepo repository.AuditLogRepository,
) AuditLogUsecase {
	return &auditLogUsecase{
		db:           db,
		log:          log,
		bookingRepo:  bookingRepo,
		auditLogRepo: auditLogRepo,
	}
}

func (u *auditLogUsecase) GetBookingHistory(ctx context.Context, actor entity.Actor, bookingID uuid.UUID) (*dto.AuditLogListResponse, error) {
	booking, err := u.bookingRepo.FindByID(u.db.WithContext(ctx), bookingID)
	if err != nil {
		u.log.Warnf("Failed to find booking %s: %+v", bookingID, err)
		return nil, storageError(err)
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}

	isClient := booking.UserID == actor.UserID
	isOwner := actor.IsOwner() && booking.Cafe != nil && booking.Cafe.IsOwnedBy(actor.UserID)
	if !isClient && !isOwner {
		return nil, ErrBookingNotOwned
	}

	logs, err := u.auditLogRepo.FindByEntity(u.db.WithContext(ctx), entity.AuditEntityBooking, bookingID.String())
	if err != nil {
		u.log.Warnf("Failed to find audit logs for booking %s: %+v", bookingID, err)
		return nil, storageError(err)
	}

	return &dto.AuditLogListResponse{
		Logs:  converter.AuditLogsToResponses(logs),
		Total: len(logs),
	}, nil
}
