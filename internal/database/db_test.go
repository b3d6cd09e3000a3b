package database

import (
	"context"
	"testing"
	"time"

	"roti-erp/internal/config"
	"roti-erp/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func connectTest(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Connect(config.DBConfig{
		Driver:       "sqlite",
		DSN:          "file:" + t.Name() + "?mode=memory&cache=shared",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		LogLevel:     "silent",
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { sqlDB.Close() })
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestUnsupportedDriver(t *testing.T) {
	if _, err := Connect(config.DBConfig{Driver: "oracle"}, zap.NewNop()); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestSeedCreatesFirstAdminOnce(t *testing.T) {
	db := connectTest(t)
	cfg := config.DBConfig{SeedEmail: "root@roti.local", SeedPassword: "s3cret-pass"}

	if err := Seed(db, cfg, zap.NewNop()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := Seed(db, cfg, zap.NewNop()); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	var users []models.User
	db.Find(&users)
	if len(users) != 1 || users[0].Role != "SUPER_ADMIN" {
		t.Fatalf("expected one super admin, got %+v", users)
	}
	if bcrypt.CompareHashAndPassword([]byte(users[0].PasswordHash), []byte("s3cret-pass")) != nil {
		t.Fatal("stored hash does not match the seed password")
	}
}

func TestSeedRequiresPassword(t *testing.T) {
	db := connectTest(t)
	if err := Seed(db, config.DBConfig{SeedEmail: "root@roti.local"}, zap.NewNop()); err == nil {
		t.Fatal("expected error without a seed password")
	}
}

func TestTopProductsAndStatusCounts(t *testing.T) {
	db := connectTest(t)
	ctx := context.Background()
	now := time.Date(2026, 5, 14, 9, 0, 0, 0, time.UTC)

	plain := models.Product{Name: "Plain", SKU: "P", UnitPrice: decimal.NewFromInt(8)}
	butter := models.Product{Name: "Butter", SKU: "B", UnitPrice: decimal.NewFromInt(12)}
	db.Create(&plain)
	db.Create(&butter)

	orders := []struct {
		status models.OrderStatus
		lines  map[uint]int
	}{
		{models.OrderPending, map[uint]int{plain.ID: 3, butter.ID: 1}},
		{models.OrderDelivered, map[uint]int{plain.ID: 2}},
		{models.OrderCancelled, map[uint]int{butter.ID: 50}},
	}
	for i, o := range orders {
		order := models.Order{
			Base:        models.Base{CreatedAt: now},
			OrderNumber: "ORD-" + string(rune('A'+i)),
			CounterID:   1,
			Status:      o.status,
		}
		if err := db.Create(&order).Error; err != nil {
			t.Fatalf("create order: %v", err)
		}
		for pid, qty := range o.lines {
			item := models.OrderItem{OrderID: order.ID, ProductID: pid, Quantity: qty, UnitPrice: decimal.NewFromInt(1), TotalPrice: decimal.NewFromInt(int64(qty))}
			if err := db.Create(&item).Error; err != nil {
				t.Fatalf("create item: %v", err)
			}
		}
	}

	top, err := TopProducts(ctx, db, now.Add(-time.Hour), now.Add(time.Hour), 5)
	if err != nil {
		t.Fatalf("top products: %v", err)
	}
	if len(top) != 2 || top[0].ProductName != "Plain" || top[0].Sold != 5 || top[1].Sold != 1 {
		t.Fatalf("unexpected ranking %+v", top)
	}

	pending, err := CountOrdersByStatus(ctx, db, models.OrderPending)
	if err != nil || pending != 1 {
		t.Fatalf("expected 1 pending order, got %d (%v)", pending, err)
	}
}
