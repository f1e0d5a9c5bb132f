package repository

import (
	"errors"

	"gaming-cafe-booking/internal/domain/entity"
	domainRepo "gaming-cafe-booking/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type cafeRepository struct{}

func NewCafeRepository() domainRepo.CafeRepository {
	return &cafeRepository{}
}

func (r *cafeRepository) Create(db *gorm.DB, cafe *entity.Cafe) error {
	return db.Create(cafe).Error
}

func (r *cafeRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Cafe, error) {
	var cafe entity.Cafe
	err := db.Where("id = ?", id).First(&cafe).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cafe, nil
}

// FindByIDForUpdate locks the cafe row. Booking creation takes this lock so
// concurrent creates for the same cafe run one after another.
func (r *cafeRepository) FindByIDForUpdate(db *gorm.DB, id uuid.UUID) (*entity.Cafe, error) {
	var cafe entity.Cafe
	err := db.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).Where("id = ?", id).First(&cafe).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cafe, nil
}

func (r *cafeRepository) UpdateInventory(db *gorm.DB, cafe *entity.Cafe) error {
	return db.Model(cafe).
		Select("total_pc_stations", "pc_hourly_rate", "hourly_rate", "consoles", "opening_time", "closing_time").
		Updates(cafe).Error
}
