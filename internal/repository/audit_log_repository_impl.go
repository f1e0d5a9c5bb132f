package repository

import (
	"gaming-cafe-booking/internal/domain/entity"
	domainRepo "gaming-cafe-booking/internal/domain/repository"

	"gorm.io/gorm"
)

type auditLogRepository struct{}

func NewAuditLogRepository() domainRepo.AuditLogRepository {
	return &auditLogRepository{}
}

func (r *auditLogRepository) Create(db *gorm.DB, log *entity.AuditLog) error {
	return db.Create(log).Error
}

func (r *auditLogRepository) FindByEntity(db *gorm.DB, entityName string, entityID string) ([]entity.AuditLog, error) {
	var logs []entity.AuditLog
	err := db.Where("entity = ? AND entity_id = ?", entityName, entityID).
		Order("created_at ASC, id ASC").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}
