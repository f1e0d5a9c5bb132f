// Package testutil opens throwaway databases for package tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"

	"gaming-cafe-booking/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Minimal sqlite-friendly schema mirroring the PostgreSQL migrations.
// The overlap exclusion constraint has no sqlite equivalent; tests rely on
// the transactional check instead.
var schema = []string{
	`CREATE TABLE cafes (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		name TEXT NOT NULL,
		address TEXT,
		total_pc_stations INTEGER NOT NULL DEFAULT 0,
		pc_hourly_rate NUMERIC,
		hourly_rate NUMERIC NOT NULL DEFAULT 0,
		consoles TEXT NOT NULL DEFAULT '{}',
		opening_time TEXT NOT NULL,
		closing_time TEXT NOT NULL,
		created_at DATETIME,
		updated_at DATETIME
	);`,
	`CREATE TABLE bookings (
		id TEXT PRIMARY KEY,
		booking_code TEXT NOT NULL UNIQUE,
		cafe_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		station_type TEXT NOT NULL,
		console_type TEXT NOT NULL DEFAULT '',
		station_number INTEGER NOT NULL,
		booking_date TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		start_minute INTEGER NOT NULL,
		end_minute INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		payment_status TEXT NOT NULL DEFAULT 'unpaid',
		payment_reference TEXT,
		duration_hours NUMERIC NOT NULL,
		hourly_rate NUMERIC NOT NULL,
		total_amount NUMERIC NOT NULL,
		notes TEXT,
		cancelled_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	);`,
	`CREATE TABLE audit_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT,
		action TEXT NOT NULL,
		entity TEXT NOT NULL,
		entity_id TEXT NOT NULL,
		metadata TEXT,
		created_at DATETIME
	);`,
}

// NewSQLiteDB returns an in-memory database private to t. A single
// connection is used so transactions serialize like row locks would.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}

	return db
}

// SeedCafe inserts a cafe with 20 PCs at 100/h and 4 PS5 units at 150/h,
// open 09:00 to midnight.
func SeedCafe(t *testing.T, db *gorm.DB, ownerID string) *entity.Cafe {
	t.Helper()

	cafe := &entity.Cafe{
		ID:              uuid.New(),
		OwnerID:         ownerID,
		Name:            "Respawn Point",
		TotalPCStations: 20,
		PCHourlyRate:    decimal.NewNullDecimal(decimal.NewFromInt(100)),
		HourlyRate:      decimal.NewFromInt(80),
		Consoles: datatypes.NewJSONType(map[string]entity.ConsoleInventory{
			"ps5": {Quantity: 4, HourlyRate: decimal.NewFromInt(150), Games: []string{"EA FC 26"}},
		}),
		OpeningTime: "09:00",
		ClosingTime: "00:00",
	}
	if err := db.Create(cafe).Error; err != nil {
		t.Fatalf("seed cafe: %v", err)
	}
	return cafe
}
