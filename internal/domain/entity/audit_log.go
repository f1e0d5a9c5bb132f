package entity

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog records one state change. It is written in the same transaction
// as the change, so a booking's history is never ahead of or behind the row.
type AuditLog struct {
	ID        int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    string            `gorm:"type:varchar(128);index" json:"user_id,omitempty"`
	Action    string            `gorm:"type:varchar(100);not null;index" json:"action"`
	Entity    string            `gorm:"type:varchar(50);not null" json:"entity"`
	EntityID  string            `gorm:"type:varchar(64);not null;index" json:"entity_id"`
	Metadata  datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time         `gorm:"autoCreateTime;index" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// Audited entity names
const (
	AuditEntityBooking = "booking"
	AuditEntityCafe    = "cafe"
)

// Common audit actions
const (
	AuditActionBookingCreate   = "booking.create"
	AuditActionBookingConfirm  = "booking.confirm"
	AuditActionBookingCancel   = "booking.cancel"
	AuditActionBookingComplete = "booking.complete"
	AuditActionBookingPayment  = "booking.payment"
	AuditActionInventoryUpdate = "cafe.inventory.update"
)
