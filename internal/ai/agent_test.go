package ai

import (
	"context"
	"testing"
	"time"

	"roti-erp/internal/database"
	"roti-erp/internal/models"
	"roti-erp/internal/services"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestAgent(t *testing.T) (*Agent, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	now := func() time.Time { return time.Date(2026, 5, 14, 9, 0, 0, 0, time.UTC) }
	reports := services.NewReportService(db, time.UTC, now)
	inventory := services.NewInventoryService(db, time.UTC, now, nil)
	return NewAgent("", "", reports, inventory), db
}

func TestConfigured(t *testing.T) {
	var nilAgent *Agent
	if nilAgent.Configured() {
		t.Fatal("nil agent reports configured")
	}
	a, _ := newTestAgent(t)
	if a.Configured() {
		t.Fatal("agent without key reports configured")
	}
}

func TestToolsDeclared(t *testing.T) {
	names := map[string]bool{}
	for _, tool := range Tools() {
		for _, fn := range tool.FunctionDeclarations {
			names[fn.Name] = true
		}
	}
	for _, want := range []string{"get_sales_report", "get_profit_loss", "check_counter_inventory"} {
		if !names[want] {
			t.Errorf("tool %s not declared", want)
		}
	}
}

func TestCallTool(t *testing.T) {
	a, db := newTestAgent(t)
	ctx := context.Background()

	out, err := a.CallTool(ctx, "get_sales_report", map[string]any{"period": "today"})
	if err != nil {
		t.Fatalf("sales tool: %v", err)
	}
	summary, ok := out["summary"].(map[string]any)
	if !ok || summary["totalSales"] != "0" {
		t.Fatalf("unexpected sales output %v", out)
	}

	if _, err := a.CallTool(ctx, "get_profit_loss", map[string]any{"period": "not-a-period"}); err == nil {
		t.Fatal("expected period error")
	}

	counter := models.Counter{Name: "Depot"}
	if err := db.Create(&counter).Error; err != nil {
		t.Fatalf("create counter: %v", err)
	}
	out, err = a.CallTool(ctx, "check_counter_inventory", map[string]any{"counter_id": float64(counter.ID)})
	if err != nil {
		t.Fatalf("inventory tool: %v", err)
	}
	if rows, ok := out["inventory"].([]any); !ok || len(rows) != 0 {
		t.Fatalf("unexpected inventory output %v", out)
	}

	if _, err := a.CallTool(ctx, "check_counter_inventory", map[string]any{}); err == nil {
		t.Fatal("expected counter_id error")
	}
	if _, err := a.CallTool(ctx, "drop_tables", nil); err == nil {
		t.Fatal("expected unknown tool error")
	}
}
