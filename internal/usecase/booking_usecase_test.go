package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"gaming-cafe-booking/internal/delivery/dto"
	"gaming-cafe-booking/internal/domain/entity"
	"gaming-cafe-booking/internal/domain/slot"
	"gaming-cafe-booking/internal/repository"
	"gaming-cafe-booking/internal/service"
	"gaming-cafe-booking/internal/testutil"
	"gaming-cafe-booking/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testDate = "2026-10-20"

var (
	owner    = entity.Actor{UserID: "owner-1", Role: entity.RoleOwner}
	gamer    = entity.Actor{UserID: "gamer-1", Role: entity.RoleClient}
	stranger = entity.Actor{UserID: "gamer-2", Role: entity.RoleClient}
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(_ context.Context, routingKey string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, routingKey)
	return nil
}

func (p *recordingPublisher) Events() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

type fixture struct {
	db        *gorm.DB
	cafe      *entity.Cafe
	bookings  BookingUsecase
	cafes     CafeUsecase
	history   AuditLogUsecase
	publisher *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewSQLiteDB(t)
	log := quietLogger()
	cafe := testutil.SeedCafe(t, db, owner.UserID)

	bookingRepo := repository.NewBookingRepository()
	cafeRepo := repository.NewCafeRepository()
	auditRepo := repository.NewAuditLogRepository()
	auditService := service.NewAuditService(log, auditRepo)
	locks := service.NewSlotLockService(nil, log, time.Second)
	t.Cleanup(locks.Stop)
	cache := service.NewCafeCache(nil, log, time.Minute)
	publisher := &recordingPublisher{}

	return &fixture{
		db:        db,
		cafe:      cafe,
		bookings:  NewBookingUsecase(db, log, bookingRepo, cafeRepo, auditService, locks, cache, publisher, 3),
		cafes:     NewCafeUsecase(db, log, cafeRepo, auditService, cache),
		history:   NewAuditLogUsecase(db, log, bookingRepo, auditRepo),
		publisher: publisher,
	}
}

func (f *fixture) slot(stationType, consoleType string, number int, start, end string) dto.SlotRequest {
	return dto.SlotRequest{
		CafeID:        f.cafe.ID.String(),
		StationType:   stationType,
		ConsoleType:   consoleType,
		StationNumber: number,
		BookingDate:   testDate,
		StartTime:     start,
		EndTime:       end,
	}
}

func (f *fixture) create(actor entity.Actor, req dto.SlotRequest) (*dto.CreateBookingResponse, error) {
	return f.bookings.CreateBooking(context.Background(), actor, &dto.CreateBookingRequest{SlotRequest: req})
}

func (f *fixture) check(req dto.SlotRequest) (*dto.AvailabilityResponse, error) {
	return f.bookings.CheckAvailability(context.Background(), &dto.CheckAvailabilityRequest{SlotRequest: req})
}

func TestCheckAvailability_FreeSlotIsPriced(t *testing.T) {
	f := newFixture(t)

	resp, err := f.check(f.slot("console", "ps5", 1, "15:00", "18:00"))
	require.NoError(t, err)
	assert.True(t, resp.Available)
	assert.Equal(t, "450", resp.EstimatedCost.String())
	assert.Equal(t, "3", resp.DurationHours.String())
	assert.Equal(t, "150", resp.HourlyRate.String())
	assert.Empty(t, resp.Conflicts)
}

func TestCheckAvailability_ReportsConflicts(t *testing.T) {
	f := newFixture(t)

	_, err := f.create(gamer, f.slot("pc", "", 3, "14:00", "16:00"))
	require.NoError(t, err)

	resp, err := f.check(f.slot("pc", "", 3, "15:00", "17:00"))
	require.NoError(t, err)
	assert.False(t, resp.Available)
	assert.Equal(t, []dto.TimeRangeResponse{{StartTime: "14:00", EndTime: "16:00"}}, resp.Conflicts)
	assert.Equal(t, "200", resp.EstimatedCost.String(), "estimate is returned even when busy")
}

func TestCheckAvailability_UnknownCafe(t *testing.T) {
	f := newFixture(t)

	req := f.slot("pc", "", 1, "10:00", "11:00")
	req.CafeID = uuid.NewString()

	_, err := f.check(req)
	assert.ErrorIs(t, err, ErrCafeNotFound)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestCheckAvailability_ValidationErrors(t *testing.T) {
	f := newFixture(t)

	cases := map[string]struct {
		req  dto.SlotRequest
		want error
	}{
		"station beyond capacity": {f.slot("pc", "", 21, "10:00", "11:00"), slot.ErrStationOutOfRange},
		"console not offered":     {f.slot("console", "xbox_one", 1, "10:00", "11:00"), slot.ErrConsoleNotOffered},
		"before opening":          {f.slot("pc", "", 1, "08:00", "10:00"), slot.ErrOutsideOperatingHours},
		"empty window":            {f.slot("pc", "", 1, "11:00", "11:00"), slot.ErrEmptyWindow},
		"console without type":    {f.slot("console", "", 1, "10:00", "11:00"), slot.ErrConsoleTypeRequired},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.check(tc.req)
			assert.ErrorIs(t, err, tc.want)
			assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
		})
	}
}

func TestCheckAvailability_CapacityBoundary(t *testing.T) {
	f := newFixture(t)

	resp, err := f.check(f.slot("pc", "", 20, "10:00", "11:00"))
	require.NoError(t, err)
	assert.True(t, resp.Available)

	_, err = f.check(f.slot("pc", "", 21, "10:00", "11:00"))
	assert.ErrorIs(t, err, slot.ErrStationOutOfRange)
}

func TestCreateBooking_PersistsFrozenBilling(t *testing.T) {
	f := newFixture(t)

	resp, err := f.create(gamer, f.slot("pc", "", 1, "10:00", "12:00"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(resp.Booking.BookingCode, "GC-20261020-"), resp.Booking.BookingCode)
	assert.Len(t, resp.Booking.BookingCode, len("GC-20261020-ABCDEF"))
	assert.Equal(t, string(entity.BookingStatusPending), resp.Booking.Status)
	assert.Equal(t, string(entity.PaymentStatusUnpaid), resp.Booking.PaymentStatus)
	assert.Equal(t, gamer.UserID, resp.Booking.UserID)
	assert.Equal(t, "pc", resp.Billing.StationType)
	assert.Empty(t, resp.Billing.ConsoleType)
	assert.Equal(t, "200", resp.Billing.TotalAmount.String())
	assert.Equal(t, "100", resp.Billing.HourlyRate.String())
	assert.Equal(t, "2", resp.Billing.DurationHours.String())

	var stored entity.Booking
	require.NoError(t, f.db.First(&stored, "id = ?", resp.Booking.ID).Error)
	assert.Equal(t, 600, stored.StartMinute)
	assert.Equal(t, 720, stored.EndMinute)
	assert.Equal(t, "200", stored.TotalAmount.String())

	assert.Equal(t, []string{entity.EventBookingCreated}, f.publisher.Events())
}

func TestCreateBooking_PayNowMarksPaymentPending(t *testing.T) {
	f := newFixture(t)

	resp, err := f.bookings.CreateBooking(context.Background(), gamer, &dto.CreateBookingRequest{
		SlotRequest: f.slot("console", "ps5", 2, "18:00", "21:00"),
		Notes:       "  bring the racing wheel  ",
		PayNow:      true,
	})
	require.NoError(t, err)
	assert.Equal(t, string(entity.PaymentStatusPending), resp.Booking.PaymentStatus)
	assert.Equal(t, "bring the racing wheel", resp.Booking.Notes)
	assert.Equal(t, "ps5", resp.Billing.ConsoleType)
	assert.Equal(t, "450", resp.Billing.TotalAmount.String())
}

func TestCreateBooking_OverlapIsConflict(t *testing.T) {
	f := newFixture(t)

	_, err := f.create(gamer, f.slot("pc", "", 5, "14:00", "16:00"))
	require.NoError(t, err)

	_, err = f.create(stranger, f.slot("pc", "", 5, "15:00", "17:00"))
	assert.ErrorIs(t, err, ErrSlotUnavailable)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
	assert.Equal(t, "this slot just became unavailable", apperror.MessageOf(err))

	var count int64
	require.NoError(t, f.db.Model(&entity.Booking{}).Count(&count).Error)
	assert.Equal(t, int64(1), count, "no record on conflict")
}

func TestCreateBooking_BackToBackAllowed(t *testing.T) {
	f := newFixture(t)

	_, err := f.create(gamer, f.slot("pc", "", 5, "14:00", "16:00"))
	require.NoError(t, err)
	_, err = f.create(stranger, f.slot("pc", "", 5, "16:00", "18:00"))
	require.NoError(t, err)
	_, err = f.create(stranger, f.slot("pc", "", 5, "12:00", "14:00"))
	require.NoError(t, err)
}

func TestCreateBooking_OtherStationsDoNotConflict(t *testing.T) {
	f := newFixture(t)

	_, err := f.create(gamer, f.slot("console", "ps5", 1, "14:00", "16:00"))
	require.NoError(t, err)

	_, err = f.create(stranger, f.slot("console", "ps5", 2, "14:00", "16:00"))
	require.NoError(t, err)
	_, err = f.create(stranger, f.slot("pc", "", 1, "14:00", "16:00"))
	require.NoError(t, err)
}

func TestCreateBooking_ConcurrentRequestsExactlyOneWins(t *testing.T) {
	f := newFixture(t)

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			actor := entity.Actor{UserID: fmt.Sprintf("gamer-%d", i), Role: entity.RoleClient}
			_, err := f.create(actor, f.slot("console", "ps5", 3, "19:00", "21:00"))

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrSlotUnavailable):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, conflicts)
}

func TestCancelBooking_FreesSlotAndIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.create(gamer, f.slot("pc", "", 7, "20:00", "22:00"))
	require.NoError(t, err)

	cancelled, err := f.bookings.CancelBooking(ctx, gamer, created.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.BookingStatusCancelled), cancelled.Status)
	assert.NotNil(t, cancelled.CancelledAt)

	again, err := f.bookings.CancelBooking(ctx, gamer, created.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.BookingStatusCancelled), again.Status)

	resp, err := f.check(f.slot("pc", "", 7, "20:00", "22:00"))
	require.NoError(t, err)
	assert.True(t, resp.Available)

	_, err = f.create(stranger, f.slot("pc", "", 7, "21:00", "23:00"))
	require.NoError(t, err)

	assert.Equal(t, []string{
		entity.EventBookingCreated,
		entity.EventBookingCancelled,
		entity.EventBookingCreated,
	}, f.publisher.Events())
}

func TestCancelBooking_Access(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.create(gamer, f.slot("pc", "", 2, "10:00", "11:00"))
	require.NoError(t, err)

	_, err = f.bookings.CancelBooking(ctx, stranger, created.Booking.ID)
	assert.ErrorIs(t, err, ErrBookingNotOwned)

	otherOwner := entity.Actor{UserID: "owner-2", Role: entity.RoleOwner}
	_, err = f.bookings.CancelBooking(ctx, otherOwner, created.Booking.ID)
	assert.ErrorIs(t, err, ErrBookingNotOwned)

	_, err = f.bookings.CancelBooking(ctx, owner, created.Booking.ID)
	require.NoError(t, err)

	_, err = f.bookings.CancelBooking(ctx, gamer, uuid.New())
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestOwnerLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.create(gamer, f.slot("console", "ps5", 4, "12:00", "13:30"))
	require.NoError(t, err)
	id := created.Booking.ID

	_, err = f.bookings.ConfirmBooking(ctx, gamer, id)
	assert.ErrorIs(t, err, ErrNotCafeOwner)

	_, err = f.bookings.CompleteBooking(ctx, owner, id)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition, "pending cannot complete")

	confirmed, err := f.bookings.ConfirmBooking(ctx, owner, id)
	require.NoError(t, err)
	assert.Equal(t, string(entity.BookingStatusConfirmed), confirmed.Status)

	_, err = f.bookings.ConfirmBooking(ctx, owner, id)
	require.NoError(t, err, "confirming twice is a no-op")

	completed, err := f.bookings.CompleteBooking(ctx, owner, id)
	require.NoError(t, err)
	assert.Equal(t, string(entity.BookingStatusCompleted), completed.Status)

	_, err = f.bookings.CancelBooking(ctx, gamer, id)
	assert.ErrorIs(t, err, ErrBookingCompleted)

	resp, err := f.check(f.slot("console", "ps5", 4, "12:00", "13:30"))
	require.NoError(t, err)
	assert.True(t, resp.Available, "completed bookings no longer hold the slot")

	assert.Equal(t, []string{
		entity.EventBookingCreated,
		entity.EventBookingConfirmed,
		entity.EventBookingCompleted,
	}, f.publisher.Events())
}

func TestUpdatePaymentStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.create(gamer, f.slot("pc", "", 9, "09:00", "10:00"))
	require.NoError(t, err)
	id := created.Booking.ID

	require.NoError(t, f.bookings.UpdatePaymentStatus(ctx, entity.PaymentUpdate{
		BookingID: id, PaymentStatus: entity.PaymentStatusPaid, Reference: "pay_001",
	}))
	require.NoError(t, f.bookings.UpdatePaymentStatus(ctx, entity.PaymentUpdate{
		BookingID: id, PaymentStatus: entity.PaymentStatusPaid, Reference: "pay_001",
	}), "repeating the current status is a no-op")

	err = f.bookings.UpdatePaymentStatus(ctx, entity.PaymentUpdate{BookingID: id, PaymentStatus: entity.PaymentStatusPending})
	assert.ErrorIs(t, err, ErrInvalidPaymentTransition)

	err = f.bookings.UpdatePaymentStatus(ctx, entity.PaymentUpdate{BookingID: id, PaymentStatus: "bogus"})
	assert.ErrorIs(t, err, ErrInvalidPaymentStatus)

	err = f.bookings.UpdatePaymentStatus(ctx, entity.PaymentUpdate{BookingID: uuid.New(), PaymentStatus: entity.PaymentStatusPaid})
	assert.ErrorIs(t, err, ErrBookingNotFound)

	got, err := f.bookings.GetBooking(ctx, gamer, id)
	require.NoError(t, err)
	assert.Equal(t, string(entity.PaymentStatusPaid), got.PaymentStatus)
	assert.Equal(t, "pay_001", got.PaymentReference)
	assert.Equal(t, f.cafe.Name, got.CafeName)
}

func TestReadPaths(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.create(gamer, f.slot("pc", "", 1, "10:00", "11:00"))
	require.NoError(t, err)
	_, err = f.create(stranger, f.slot("pc", "", 2, "10:00", "11:00"))
	require.NoError(t, err)
	_, err = f.bookings.CancelBooking(ctx, gamer, first.Booking.ID)
	require.NoError(t, err)

	mine, err := f.bookings.ListMyBookings(ctx, gamer)
	require.NoError(t, err)
	assert.Equal(t, 1, mine.Total)

	_, err = f.bookings.GetBooking(ctx, stranger, first.Booking.ID)
	assert.ErrorIs(t, err, ErrBookingNotOwned)

	all, err := f.bookings.ListCafeBookings(ctx, owner, f.cafe.ID, entity.BookingFilter{BookingDate: testDate})
	require.NoError(t, err)
	assert.Equal(t, 2, all.Total)

	pending, err := f.bookings.ListCafeBookings(ctx, owner, f.cafe.ID, entity.BookingFilter{Status: entity.BookingStatusPending})
	require.NoError(t, err)
	assert.Equal(t, 1, pending.Total)

	_, err = f.bookings.ListCafeBookings(ctx, stranger, f.cafe.ID, entity.BookingFilter{})
	assert.ErrorIs(t, err, ErrNotCafeOwner)

	_, err = f.bookings.ListCafeBookings(ctx, owner, f.cafe.ID, entity.BookingFilter{Status: "lost"})
	assert.ErrorIs(t, err, ErrInvalidBookingStatus)
}

func TestGetBookingHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.create(gamer, f.slot("pc", "", 4, "10:00", "11:00"))
	require.NoError(t, err)
	id := created.Booking.ID
	_, err = f.bookings.ConfirmBooking(ctx, owner, id)
	require.NoError(t, err)
	_, err = f.bookings.CancelBooking(ctx, gamer, id)
	require.NoError(t, err)

	history, err := f.history.GetBookingHistory(ctx, owner, id)
	require.NoError(t, err)
	require.Equal(t, 3, history.Total)
	assert.Equal(t, entity.AuditActionBookingCreate, history.Logs[0].Action)
	assert.Equal(t, entity.AuditActionBookingConfirm, history.Logs[1].Action)
	assert.Equal(t, entity.AuditActionBookingCancel, history.Logs[2].Action)

	_, err = f.history.GetBookingHistory(ctx, stranger, id)
	assert.ErrorIs(t, err, ErrBookingNotOwned)
}

// Random create/cancel sequences never leave two active bookings overlapping
// on the same station, and every create succeeds exactly when a reference
// model says the window is free.
func TestCreateBooking_RandomSequencesKeepNoOverlap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(7))

	type held struct {
		id     uuid.UUID
		number int
		window slot.Window
	}
	var active []held

	for step := 0; step < 120; step++ {
		if len(active) > 0 && rng.Intn(4) == 0 {
			i := rng.Intn(len(active))
			_, err := f.bookings.CancelBooking(ctx, gamer, active[i].id)
			require.NoError(t, err)
			active = append(active[:i], active[i+1:]...)
			continue
		}

		number := 1 + rng.Intn(2)
		start := 9*60 + rng.Intn(28)*30
		end := start + (1+rng.Intn(6))*30
		if end > slot.MinutesPerDay {
			end = slot.MinutesPerDay
		}
		window := slot.Window{Start: start, End: end}

		free := true
		for _, h := range active {
			if h.number == number && h.window.Overlaps(window) {
				free = false
				break
			}
		}

		resp, err := f.create(gamer, f.slot("pc", "", number, slot.FormatClock(start), slot.FormatClock(end)))
		if free {
			require.NoError(t, err, "step %d: %s on pc %d", step, window, number)
			active = append(active, held{id: resp.Booking.ID, number: number, window: window})
		} else {
			require.ErrorIs(t, err, ErrSlotUnavailable, "step %d: %s on pc %d", step, window, number)
		}
	}

	var stored []entity.Booking
	require.NoError(t, f.db.Where("status IN ?", entity.ActiveBookingStatuses).Find(&stored).Error)
	require.Len(t, stored, len(active))
	for i := range stored {
		for j := i + 1; j < len(stored); j++ {
			if stored[i].StationNumber != stored[j].StationNumber {
				continue
			}
			assert.False(t, stored[i].Window().Overlaps(stored[j].Window()),
				"%s overlaps %s", stored[i].Window(), stored[j].Window())
		}
	}
}

func TestWithRetry_ReplaysTransientFailures(t *testing.T) {
	u := &bookingUsecase{log: quietLogger(), maxRetries: 3}

	attempts := 0
	err := u.withRetry(context.Background(), "test", func() error {
		attempts++
		if attempts < 3 {
			return &pgconn.PgError{Code: "40001"}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)

	attempts = 0
	err = u.withRetry(context.Background(), "test", func() error {
		attempts++
		return &pgconn.PgError{Code: "40P01"}
	})
	assert.Error(t, err)
	assert.Equal(t, 3, attempts, "gives up after maxRetries")

	attempts = 0
	err = u.withRetry(context.Background(), "test", func() error {
		attempts++
		return &pgconn.PgError{Code: "23P01"}
	})
	assert.True(t, repository.IsSlotConflict(err))
	assert.Equal(t, 1, attempts, "exclusion violations are not retried")
}
