package usecase

import (
	"context"

	"gaming-cafe-booking/internal/converter"
	"gaming-cafe-booking/internal/delivery/dto"
	"gaming-cafe-booking/internal/domain/entity"
	"gaming-cafe-booking/internal/domain/repository"
	"gaming-cafe-booking/internal/domain/slot"
	"gaming-cafe-booking/internal/service"
	"gaming-cafe-booking/pkg/apperror"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrNegativeRate = apperror.Validation("hourly rates cannot be negative")
)

type CafeUsecase interface {
	GetCafe(ctx context.Context, cafeID uuid.UUID) (*dto.CafeResponse, error)
	UpsertInventory(ctx context.Context, actor entity.Actor, cafeID uuid.UUID, req *dto.UpdateInventoryRequest) (*dto.CafeResponse, error)
}

type cafeUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	cafeRepo     repository.CafeRepository
	auditService service.AuditService
	cafeCache    service.CafeCache
}

func NewCafeUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	cafeRepo repository.CafeRepository,
	auditService service.AuditService,
	cafeCache service.CafeCache,
) CafeUsecase {
	return &cafeUsecase{
		db:           db,
		log:          log,
		cafeRepo:     cafeRepo,
		auditService: auditService,
		cafeCache:    cafeCache,
	}
}

func (u *cafeUsecase) GetCafe(ctx context.Context, cafeID uuid.UUID) (*dto.CafeResponse, error) {
	cafe, err := u.cafeCache.Get(ctx, cafeID)
	if err != nil {
		u.log.Warnf("Cafe cache read failed for %s, falling back to database: %+v", cafeID, err)
	}
	if cafe != nil {
		return converter.CafeToResponse(cafe), nil
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
	return converter.CafeToResponse(cafe), nil
}

// UpsertInventory replaces the station inventory, rates and opening hours
// of a cafe. The cafe row is locked so no booking is priced against a
// half-written inventory. Existing bookings keep their frozen billing.
func (u *cafeUsecase) UpsertInventory(ctx context.Context, actor entity.Actor, cafeID uuid.UUID, req *dto.UpdateInventoryRequest) (*dto.CafeResponse, error) {
	if err := validateInventory(req); err != nil {
		return nil, err
	}

	var updated *entity.Cafe
	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cafe, err := u.cafeRepo.FindByIDForUpdate(tx, cafeID)
		if err != nil {
			return err
		}
		if cafe == nil {
			return ErrCafeNotFound
		}
		if !actor.IsOwner() || !cafe.IsOwnedBy(actor.UserID) {
			return ErrNotCafeOwner
		}

		old := converter.CafeToResponse(cafe)
		converter.ApplyInventoryRequest(cafe, req)

		if err := u.cafeRepo.UpdateInventory(tx, cafe); err != nil {
			return err
		}
		if err := u.auditService.LogUpdate(ctx, tx, actor.UserID, entity.AuditActionInventoryUpdate, entity.AuditEntityCafe, cafe.ID.String(), old, converter.CafeToResponse(cafe)); err != nil {
			return err
		}

		updated = cafe
		return nil
	})
	if err != nil {
		if apperror.KindOf(err) == apperror.KindInternal {
			u.log.Warnf("Failed to update inventory of cafe %s: %+v", cafeID, err)
			return nil, storageError(err)
		}
		return nil, err
	}

	if err := u.cafeCache.Invalidate(ctx, cafeID); err != nil {
		u.log.Warnf("Failed to invalidate cached cafe %s: %+v", cafeID, err)
	}

	u.log.Infof("Cafe inventory updated: id=%s, by=%s", cafeID, actor.UserID)
	return converter.CafeToResponse(updated), nil
}

func validateInventory(req *dto.UpdateInventoryRequest) error {
	if req.HourlyRate.IsNegative() {
		return ErrNegativeRate
	}
	if req.PCHourlyRate != nil && req.PCHourlyRate.IsNegative() {
		return ErrNegativeRate
	}
	for name, inv := range req.Consoles {
		if !slot.ConsoleType(name).Valid() {
			return slot.ErrUnknownConsoleType
		}
		if inv.HourlyRate.IsNegative() {
			return ErrNegativeRate
		}
	}
	if _, err := slot.NewOperatingHours(req.OpeningTime, req.ClosingTime); err != nil {
		return err
	}
	return nil
}
