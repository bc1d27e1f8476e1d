package mysql

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"underwriting-backend/internal/domain/application"
	"underwriting-backend/pkg/id"
)

var t0 = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

// openTestDB migrates the real models; none of them use mysql-only column types.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// every connection to :memory: is a fresh database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := AutoMigrate(context.Background(), db); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}

func makeApplication(customerID string, status application.Status, created time.Time) *application.Application {
	return &application.Application{
		ApplicationID: id.New("APP"),
		CustomerID:    customerID,
		Status:        status,
		Data:          datatypes.JSONMap{"type": "auto", "annual_income": 80000},
		CreatedAt:     created,
		UpdatedAt:     created,
	}
}

func mustCreate(t *testing.T, repo *ApplicationRepository, a *application.Application) {
	t.Helper()
	if err := repo.Create(context.Background(), a); err != nil {
		t.Fatalf("create %s: %v", a.ApplicationID, err)
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
