package repository

import (
	"gaming-cafe-booking/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CafeRepository interface {
	Create(db *gorm.DB, cafe *entity.Cafe) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Cafe, error)
	FindByIDForUpdate(db *gorm.DB, id uuid.UUID) (*entity.Cafe, error)
	UpdateInventory(db *gorm.DB, cafe *entity.Cafe) error
}
