package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"gaming-cafe-booking/internal/converter"
	"gaming-cafe-booking/internal/delivery/dto"
	"gaming-cafe-booking/internal/domain/entity"
	"gaming-cafe-booking/internal/domain/repository"
	"gaming-cafe-booking/internal/domain/slot"
	storage "gaming-cafe-booking/internal/repository"
	"gaming-cafe-booking/internal/service"
	"gaming-cafe-booking/pkg/apperror"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrCafeNotFound             = apperror.NotFound("cafe not found")
	ErrBookingNotFound          = apperror.NotFound("booking not found")
	ErrSlotUnavailable          = apperror.Conflict("this slot just became unavailable")
	ErrBookingNotOwned          = apperror.Forbidden("booking does not belong to you")
	ErrNotCafeOwner             = apperror.Forbidden("you do not own this cafe")
	ErrBookingCompleted         = apperror.Validation("a completed booking cannot be cancelled")
	ErrInvalidStatusTransition  = apperror.Validation("booking cannot move to the requested status")
	ErrInvalidPaymentTransition = apperror.Validation("payment status cannot move to the requested status")
	ErrInvalidPaymentStatus     = apperror.Validation("unknown payment status")
	ErrInvalidBookingStatus     = apperror.Validation("unknown booking status")
	ErrStorageUnavailable       = apperror.New(apperror.KindStorage, "storage temporarily unavailable, please retry")
)

type BookingUsecase interface {
	CheckAvailability(ctx context.Context, req *dto.CheckAvailabilityRequest) (*dto.AvailabilityResponse, error)
	CreateBooking(ctx context.Context, actor entity.Actor, req *dto.CreateBookingRequest) (*dto.CreateBookingResponse, error)
	CancelBooking(ctx context.Context, actor entity.Actor, bookingID uuid.UUID) (*dto.BookingResponse, error)
	ConfirmBooking(ctx context.Context, actor entity.Actor, bookingID uuid.UUID) (*dto.BookingResponse, error)
	CompleteBooking(ctx context.Context, actor entity.Actor, bookingID uuid.UUID) (*dto.BookingResponse, error)
	UpdatePaymentStatus(ctx context.Context, update entity.PaymentUpdate) error
	GetBooking(ctx context.Context, actor entity.Actor, bookingID uuid.UUID) (*dto.BookingResponse, error)
	ListMyBookings(ctx context.Context, actor entity.Actor) (*dto.BookingListResponse, error)
	ListCafeBookings(ctx context.Context, actor entity.Actor, cafeID uuid.UUID, filter entity.BookingFilter) (*dto.BookingListResponse, error)
}

type bookingUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	bookingRepo  repository.BookingRepository
	cafeRepo     repository.CafeRepository
	auditService service.AuditService
	slotLocker   service.SlotLocker
	cafeCache    service.CafeCache
	publisher    service.EventPublisher
	maxRetries   int
	now          func() time.Time
}

func NewBookingUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	bookingRepo repository.BookingRepository,
	cafeRepo repository.CafeRepository,
	auditService service.AuditService,
	slotLocker service.SlotLocker,
	cafeCache service.CafeCache,
	publisher service.EventPublisher,
	maxRetries int,
) BookingUsecase {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &bookingUsecase{
		db:           db,
		log:          log,
		bookingRepo:  bookingRepo,
		cafeRepo:     cafeRepo,
		auditService: auditService,
		slotLocker:   slotLocker,
		cafeCache:    cafeCache,
		publisher:    publisher,
		maxRetries:   maxRetries,
		now:          time.Now,
	}
}

// CheckAvailability reports whether the requested station is free and what
// it would cost. It reads without locking; only CreateBooking's answer is
// authoritative.
func (u *bookingUsecase) CheckAvailability(ctx context.Context, req *dto.CheckAvailabilityRequest) (*dto.AvailabilityResponse, error) {
	cafeID, slotReq, err := parseSlotRequest(&req.SlotRequest)
	if err != nil {
		return nil, err
	}

	cafe, err := u.loadCafe(ctx, cafeID)
	if err != nil {
		return nil, err
	}
	rc, err := cafe.RateConfig()
	if err != nil {
		return nil, err
	}

	active, err := u.bookingRepo.FindActiveForSlot(u.db.WithContext(ctx), entity.NewSlotKey(cafeID, slotReq))
	if err != nil {
		u.log.Warnf("Failed to load bookings for cafe %s: %+v", cafeID, err)
		return nil, storageError(err)
	}

	decision, err := slot.Evaluate(slotReq, rc, windowsOf(active))
	if err != nil {
		return nil, err
	}

	return converter.AvailabilityToResponse(decision), nil
}

// CreateBooking re-runs the availability check and inserts the booking.
//
// Flow:
// 1. Take the slot lock (in-process mutex + Redis lease, degrades silently)
// 2. In one transaction: lock the cafe row, reload active bookings for the
//    slot, evaluate, insert, write the audit row
// 3. Replay the transaction on serialization failures and deadlocks
// 4. Publish booking.created after commit
func (u *bookingUsecase) CreateBooking(ctx context.Context, actor entity.Actor, req *dto.CreateBookingRequest) (*dto.CreateBookingResponse, error) {
	cafeID, slotReq, err := parseSlotRequest(&req.SlotRequest)
	if err != nil {
		return nil, err
	}
	key := entity.NewSlotKey(cafeID, slotReq)

	unlock := u.slotLocker.Lock(ctx, key)
	defer unlock()

	paymentStatus := entity.PaymentStatusUnpaid
	if req.PayNow {
		paymentStatus = entity.PaymentStatusPending
	}

	var booking *entity.Booking
	err = u.withRetry(ctx, "create booking", func() error {
		return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			cafe, err := u.cafeRepo.FindByIDForUpdate(tx, cafeID)
			if err != nil {
				return err
			}
			if cafe == nil {
				return ErrCafeNotFound
			}
			rc, err := cafe.RateConfig()
			if err != nil {
				return err
			}

			active, err := u.bookingRepo.FindActiveForSlot(tx, key)
			if err != nil {
				return err
			}

			decision, err := slot.Evaluate(slotReq, rc, windowsOf(active))
			if err != nil {
				return err
			}
			if !decision.Available {
				return ErrSlotUnavailable
			}

			b := &entity.Booking{
				BookingCode:   generateBookingCode(slotReq.Date),
				CafeID:        cafeID,
				UserID:        actor.UserID,
				Status:        entity.BookingStatusPending,
				PaymentStatus: paymentStatus,
				Notes:         strings.TrimSpace(req.Notes),
			}
			b.ApplyRequest(slotReq, decision.Quote)

			if err := u.bookingRepo.Create(tx, b); err != nil {
				return err
			}

			if err := u.auditService.LogCreate(ctx, tx, actor.UserID, entity.AuditActionBookingCreate, entity.AuditEntityBooking, b.ID.String(), b); err != nil {
				return err
			}

			booking = b
			return nil
		})
	})
	if err != nil {
		if storage.IsSlotConflict(err) {
			return nil, ErrSlotUnavailable
		}
		if apperror.KindOf(err) == apperror.KindInternal {
			u.log.Warnf("Failed to create booking on %s: %+v", service.SlotLockKey(key), err)
			return nil, storageError(err)
		}
		return nil, err
	}

	u.publish(ctx, entity.EventBookingCreated, booking)

	u.log.Infof("Booking created: id=%s, code=%s, station=%s, window=%s-%s",
		booking.ID, booking.BookingCode, slotReq.Station, booking.StartTime, booking.EndTime)

	return &dto.CreateBookingResponse{
		Booking: *converter.BookingToResponse(booking),
		Billing: converter.BillingToResponse(booking),
	}, nil
}

// CancelBooking cancels a pending or confirmed booking. Cancelling an already
// cancelled booking returns it unchanged.
func (u *bookingUsecase) CancelBooking(ctx context.Context, actor entity.Actor, bookingID uuid.UUID) (*dto.BookingResponse, error) {
	var changed bool
	booking, err := u.mutate(ctx, bookingID, func(tx *gorm.DB, b *entity.Booking) error {
		if !u.canActOnBooking(actor, b) {
			return ErrBookingNotOwned
		}
		if b.IsCancelled() {
			return nil
		}
		if b.IsCompleted() {
			return ErrBookingCompleted
		}

		old := *b
		at := u.now().UTC()
		rows, err := u.bookingRepo.CancelBooking(tx, b.ID, at)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrInvalidStatusTransition
		}
		b.Cancel(at)
		changed = true

		return u.auditService.LogUpdate(ctx, tx, actor.UserID, entity.AuditActionBookingCancel, entity.AuditEntityBooking, b.ID.String(), statusSnapshot(&old), statusSnapshot(b))
	})
	if err != nil {
		return nil, err
	}

	if changed {
		u.publish(ctx, entity.EventBookingCancelled, booking)
		u.log.Infof("Booking cancelled: id=%s, by=%s", booking.ID, actor.UserID)
	}
	return converter.BookingToResponse(booking), nil
}

// ConfirmBooking moves a pending booking to confirmed. Owner only.
func (u *bookingUsecase) ConfirmBooking(ctx context.Context, actor entity.Actor, bookingID uuid.UUID) (*dto.BookingResponse, error) {
	return u.ownerTransition(ctx, actor, bookingID, entity.BookingStatusPending, entity.BookingStatusConfirmed,
		entity.AuditActionBookingConfirm, entity.EventBookingConfirmed)
}

// CompleteBooking moves a confirmed booking to completed. Owner only.
func (u *bookingUsecase) CompleteBooking(ctx context.Context, actor entity.Actor, bookingID uuid.UUID) (*dto.BookingResponse, error) {
	return u.ownerTransition(ctx, actor, bookingID, entity.BookingStatusConfirmed, entity.BookingStatusCompleted,
		entity.AuditActionBookingComplete, entity.EventBookingCompleted)
}

func (u *bookingUsecase) ownerTransition(
	ctx context.Context,
	actor entity.Actor,
	bookingID uuid.UUID,
	from, to entity.BookingStatus,
	action, event string,
) (*dto.BookingResponse, error) {
	var changed bool
	booking, err := u.mutate(ctx, bookingID, func(tx *gorm.DB, b *entity.Booking) error {
		if !u.ownsCafe(actor, b) {
			return ErrNotCafeOwner
		}
		if b.Status == to {
			return nil
		}
		if b.Status != from {
			return ErrInvalidStatusTransition
		}

		old := *b
		rows, err := u.bookingRepo.TransitionStatus(tx, b.ID, from, to)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrInvalidStatusTransition
		}
		b.Status = to
		changed = true

		return u.auditService.LogUpdate(ctx, tx, actor.UserID, action, entity.AuditEntityBooking, b.ID.String(), statusSnapshot(&old), statusSnapshot(b))
	})
	if err != nil {
		return nil, err
	}

	if changed {
		u.publish(ctx, event, booking)
		u.log.Infof("Booking %s: id=%s, by=%s", to, booking.ID, actor.UserID)
	}
	return converter.BookingToResponse(booking), nil
}

// UpdatePaymentStatus records a payment status reported by the payment
// collaborator. Repeating the current status is a no-op.
func (u *bookingUsecase) UpdatePaymentStatus(ctx context.Context, update entity.PaymentUpdate) error {
	if !update.PaymentStatus.Valid() {
		return ErrInvalidPaymentStatus
	}

	_, err := u.mutate(ctx, update.BookingID, func(tx *gorm.DB, b *entity.Booking) error {
		if b.PaymentStatus == update.PaymentStatus {
			return nil
		}
		if !b.PaymentStatus.CanMoveTo(update.PaymentStatus) {
			return ErrInvalidPaymentTransition
		}

		old := *b
		rows, err := u.bookingRepo.UpdatePaymentStatus(tx, b.ID, b.PaymentStatus, update.PaymentStatus, update.Reference)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrInvalidPaymentTransition
		}
		b.PaymentStatus = update.PaymentStatus
		b.PaymentReference = update.Reference

		return u.auditService.LogUpdate(ctx, tx, "", entity.AuditActionBookingPayment, entity.AuditEntityBooking, b.ID.String(), statusSnapshot(&old), statusSnapshot(b))
	})
	if err != nil {
		return err
	}

	u.log.Infof("Booking payment updated: id=%s, status=%s", update.BookingID, update.PaymentStatus)
	return nil
}

// GetBooking returns a booking visible to its client or the cafe owner
func (u *bookingUsecase) GetBooking(ctx context.Context, actor entity.Actor, bookingID uuid.UUID) (*dto.BookingResponse, error) {
	booking, err := u.bookingRepo.FindByID(u.db.WithContext(ctx), bookingID)
	if err != nil {
		u.log.Warnf("Failed to find booking %s: %+v", bookingID, err)
		return nil, storageError(err)
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}
	if !u.canActOnBooking(actor, booking) {
		return nil, ErrBookingNotOwned
	}

	return converter.BookingToResponse(booking), nil
}

// ListMyBookings returns all bookings for the logged-in client
func (u *bookingUsecase) ListMyBookings(ctx context.Context, actor entity.Actor) (*dto.BookingListResponse, error) {
	bookings, err := u.bookingRepo.FindByUserID(u.db.WithContext(ctx), actor.UserID)
	if err != nil {
		u.log.Warnf("Failed to find bookings for user %s: %+v", actor.UserID, err)
		return nil, storageError(err)
	}

	return &dto.BookingListResponse{
		Bookings: converter.BookingsToResponses(bookings),
		Total:    len(bookings),
	}, nil
}

// ListCafeBookings returns the bookings of a cafe to its owner
func (u *bookingUsecase) ListCafeBookings(ctx context.Context, actor entity.Actor, cafeID uuid.UUID, filter entity.BookingFilter) (*dto.BookingListResponse, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, ErrInvalidBookingStatus
	}
	if filter.BookingDate != "" {
		if _, err := slot.ParseDate(filter.BookingDate); err != nil {
			return nil, err
		}
	}

	cafe, err := u.cafeRepo.FindByID(u.db.WithContext(ctx), cafeID)
	if err != nil {
		u.log.Warnf("Failed to find cafe %s: %+v", cafeID, err)
		return nil, storageError(err)
	}
	if cafe == nil {
		return nil, ErrCafeNotFound
	}
	if !cafe.IsOwnedBy(actor.UserID) {
		return nil, ErrNotCafeOwner
	}

	bookings, err := u.bookingRepo.FindByCafeID(u.db.WithContext(ctx), cafeID, filter)
	if err != nil {
		u.log.Warnf("Failed to find bookings for cafe %s: %+v", cafeID, err)
		return nil, storageError(err)
	}

	return &dto.BookingListResponse{
		Bookings: converter.BookingsToResponses(bookings),
		Total:    len(bookings),
	}, nil
}

// mutate loads a booking FOR UPDATE and runs fn on it inside one retried
// transaction. fn sees the booking with its Cafe preloaded.
func (u *bookingUsecase) mutate(ctx context.Context, bookingID uuid.UUID, fn func(tx *gorm.DB, b *entity.Booking) error) (*entity.Booking, error) {
	var booking *entity.Booking
	err := u.withRetry(ctx, "update booking", func() error {
		return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			b, err := u.bookingRepo.FindByIDForUpdate(tx, bookingID)
			if err != nil {
				return err
			}
			if b == nil {
				return ErrBookingNotFound
			}
			if b.Cafe == nil {
				cafe, err := u.cafeRepo.FindByID(tx, b.CafeID)
				if err != nil {
					return err
				}
				b.Cafe = cafe
			}

			if err := fn(tx, b); err != nil {
				return err
			}
			booking = b
			return nil
		})
	})
	if err != nil {
		if apperror.KindOf(err) == apperror.KindInternal {
			u.log.Warnf("Failed to update booking %s: %+v", bookingID, err)
			return nil, storageError(err)
		}
		return nil, err
	}
	return booking, nil
}

// withRetry replays fn while it fails with a transient storage error
func (u *bookingUsecase) withRetry(ctx context.Context, op string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= u.maxRetries; attempt++ {
		err = fn()
		if err == nil || !storage.IsRetryable(err) {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		u.log.Warnf("Retrying %s after attempt %d/%d: %+v", op, attempt, u.maxRetries, err)
	}
	return err
}

func (u *bookingUsecase) loadCafe(ctx context.Context, cafeID uuid.UUID) (*entity.Cafe, error) {
	cafe, err := u.cafeCache.Get(ctx, cafeID)
	if err != nil {
		u.log.Warnf("Cafe cache read failed for %s, falling back to database: %+v", cafeID, err)
	}
	if cafe != nil {
		return cafe, nil
	}

	cafe, err = u.cafeRepo.FindByID(u.db.WithContext(ctx), cafeID)
	if err != nil {
		u.log.Warnf("Failed to find cafe %s: %+v", cafeID, err)
		return nil, storageError(err)
	}
	if cafe == nil {
		return nil, ErrCafeNotFound
	}

	if err := u.cafeCache.Set(ctx, cafe); err != nil {
		u.log.Warnf("Failed to cache cafe %s: %+v", cafeID, err)
	}
	return cafe, nil
}

func (u *bookingUsecase) ownsCafe(actor entity.Actor, b *entity.Booking) bool {
	return actor.IsOwner() && b.Cafe != nil && b.Cafe.IsOwnedBy(actor.UserID)
}

func (u *bookingUsecase) canActOnBooking(actor entity.Actor, b *entity.Booking) bool {
	return b.UserID == actor.UserID || u.ownsCafe(actor, b)
}

// publish sends a lifecycle event. The change is already committed, so a
// broker failure is logged and not returned.
func (u *bookingUsecase) publish(ctx context.Context, routingKey string, b *entity.Booking) {
	if err := u.publisher.Publish(ctx, routingKey, entity.NewBookingEvent(b, u.now().UTC())); err != nil {
		u.log.Warnf("Failed to publish %s for booking %s: %+v", routingKey, b.ID, err)
	}
}

func parseSlotRequest(req *dto.SlotRequest) (uuid.UUID, slot.Request, error) {
	cafeID, err := uuid.Parse(req.CafeID)
	if err != nil {
		return uuid.Nil, slot.Request{}, apperror.Validation("cafe_id must be a valid UUID")
	}
	slotReq, err := slot.NewRequest(req.StationType, req.ConsoleType, req.StationNumber, req.BookingDate, req.StartTime, req.EndTime)
	if err != nil {
		return uuid.Nil, slot.Request{}, err
	}
	return cafeID, slotReq, nil
}

func windowsOf(bookings []entity.Booking) []slot.Window {
	windows := make([]slot.Window, len(bookings))
	for i := range bookings {
		windows[i] = bookings[i].Window()
	}
	return windows
}

func statusSnapshot(b *entity.Booking) map[string]interface{} {
	return map[string]interface{}{
		"status":            b.Status,
		"payment_status":    b.PaymentStatus,
		"payment_reference": b.PaymentReference,
	}
}

func storageError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return apperror.Wrap(apperror.KindStorage, "request timed out", err)
	}
	return apperror.Wrap(apperror.KindStorage, ErrStorageUnavailable.Message, err)
}

// generateBookingCode generates a booking code: GC-YYYYMMDD-XXXXXX
func generateBookingCode(bookingDate string) string {
	dateStr := strings.ReplaceAll(bookingDate, "-", "")
	randomBytes := make([]byte, 3)
	rand.Read(randomBytes)
	return fmt.Sprintf("GC-%s-%06X", dateStr, randomBytes)
}
