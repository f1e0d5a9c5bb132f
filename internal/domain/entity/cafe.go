package entity

import (
	"time"

	"gaming-cafe-booking/internal/domain/slot"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ConsoleInventory is the stock of one console family at a cafe
type ConsoleInventory struct {
	Quantity   int             `json:"quantity"`
	HourlyRate decimal.Decimal `json:"hourly_rate"`
	Games      []string        `json:"games,omitempty"`
}

// Cafe holds the station inventory, rates and opening hours of one cafe
type Cafe struct {
	ID              uuid.UUID                                       `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID         string                                          `gorm:"type:varchar(128);not null;index" json:"owner_id"`
	Name            string                                          `gorm:"type:varchar(255);not null" json:"name"`
	Address         string                                          `gorm:"type:text" json:"address,omitempty"`
	TotalPCStations int                                             `gorm:"not null;default:0" json:"total_pc_stations"`
	PCHourlyRate    decimal.NullDecimal                             `gorm:"type:decimal(12,2)" json:"pc_hourly_rate"`
	HourlyRate      decimal.Decimal                                 `gorm:"type:decimal(12,2);not null;default:0" json:"hourly_rate"`
	Consoles        datatypes.JSONType[map[string]ConsoleInventory] `gorm:"type:jsonb" json:"consoles"`
	OpeningTime     string                                          `gorm:"type:varchar(5);not null" json:"opening_time"`
	ClosingTime     string                                          `gorm:"type:varchar(5);not null" json:"closing_time"`
	CreatedAt       time.Time                                       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time                                       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Cafe) TableName() string {
	return "cafes"
}

func (c *Cafe) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (c *Cafe) IsOwnedBy(userID string) bool {
	return c.OwnerID != "" && c.OwnerID == userID
}

// RateConfig derives the read-only pricing view the slot engine works on
func (c *Cafe) RateConfig() (slot.RateConfig, error) {
	hours, err := slot.NewOperatingHours(c.OpeningTime, c.ClosingTime)
	if err != nil {
		return slot.RateConfig{}, err
	}

	rc := slot.RateConfig{
		TotalPCStations: c.TotalPCStations,
		HourlyRate:      c.HourlyRate,
		Consoles:        make(map[slot.ConsoleType]slot.ConsoleRate),
		OpeningHours:    hours,
	}
	if c.PCHourlyRate.Valid {
		rate := c.PCHourlyRate.Decimal
		rc.PCHourlyRate = &rate
	}
	for name, inv := range c.Consoles.Data() {
		rc.Consoles[slot.ConsoleType(name)] = slot.ConsoleRate{
			Quantity:   inv.Quantity,
			HourlyRate: inv.HourlyRate,
		}
	}

	return rc, nil
}
