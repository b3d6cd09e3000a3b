package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"roti-erp/internal/database"
	"roti-erp/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func mustCreate(t *testing.T, db *gorm.DB, v interface{}) {
	t.Helper()
	if err := db.Create(v).Error; err != nil {
		t.Fatalf("create %T: %v", v, err)
	}
}

func seedCounter(t *testing.T, db *gorm.DB, name string) models.Counter {
	t.Helper()
	c := models.Counter{Name: name, Location: "Main road", IsActive: true}
	mustCreate(t, db, &c)
	return c
}

func seedProduct(t *testing.T, db *gorm.DB, name, sku, price string) models.Product {
	t.Helper()
	p := models.Product{Name: name, SKU: sku, UnitPrice: dec(price), CostPrice: dec("1.00"), IsActive: true}
	mustCreate(t, db, &p)
	return p
}
