package services

import (
	"context"
	"testing"
	"time"

	"roti-erp/internal/apperr"
	"roti-erp/internal/models"
)

func newInventory(t *testing.T) (*InventoryService, models.Counter) {
	t.Helper()
	db := setupServiceDB(t)
	counter := seedCounter(t, db, "Station Counter")
	now := time.Date(2026, 5, 14, 9, 30, 0, 0, time.UTC)
	return NewInventoryService(db, time.UTC, fixedClock(now), nil), counter
}

func assertLedger(t *testing.T, row models.CounterInventory) {
	t.Helper()
	if row.RemainingPackets != row.TotalPackets-row.SoldPackets {
		t.Fatalf("remaining packets %d != %d - %d", row.RemainingPackets, row.TotalPackets, row.SoldPackets)
	}
	if row.RemainingRotis != row.TotalRotis-row.SoldRotis {
		t.Fatalf("remaining rotis %d != %d - %d", row.RemainingRotis, row.TotalRotis, row.SoldRotis)
	}
	if row.RemainingPackets < 0 {
		t.Fatalf("negative remaining: %d", row.RemainingPackets)
	}
}

func TestDeliveryThenSale(t *testing.T) {
	svc, counter := newInventory(t)
	ctx := context.Background()

	res, err := svc.RecordDelivery(ctx, counter.ID, 1, DeliveryInput{
		Items: []PacketDelivery{{PacketSize: 5, Quantity: 10}},
		Notes: "morning run",
	})
	if err != nil {
		t.Fatalf("delivery: %v", err)
	}
	if res.CounterOrder.TotalPackets != 10 || res.CounterOrder.TotalRotis != 50 || len(res.CounterOrder.Items) != 1 {
		t.Fatalf("unexpected counter order: %+v", res.CounterOrder)
	}
	if len(res.Inventory) != 1 {
		t.Fatalf("expected one ledger row, got %d", len(res.Inventory))
	}
	row := res.Inventory[0]
	if row.BusinessDate != "2026-05-14" || row.RemainingPackets != 10 || row.RemainingRotis != 50 {
		t.Fatalf("unexpected row after delivery: %+v", row)
	}
	assertLedger(t, row)

	rows, err := svc.RecordSale(ctx, counter.ID, 1, SaleInput{Items: []PacketSale{{PacketSize: 5, SoldPackets: 3}}})
	if err != nil {
		t.Fatalf("sale: %v", err)
	}
	if rows[0].RemainingPackets != 7 || rows[0].RemainingRotis != 35 || rows[0].SoldRotis != 15 {
		t.Fatalf("unexpected row after sale: %+v", rows[0])
	}
	assertLedger(t, rows[0])
}

func TestSaleBeyondRemainingIsRejected(t *testing.T) {
	svc, counter := newInventory(t)
	ctx := context.Background()

	if _, err := svc.RecordDelivery(ctx, counter.ID, 1, DeliveryInput{Items: []PacketDelivery{{PacketSize: 5, Quantity: 10}}}); err != nil {
		t.Fatalf("delivery: %v", err)
	}
	if _, err := svc.RecordSale(ctx, counter.ID, 1, SaleInput{Items: []PacketSale{{PacketSize: 5, SoldPackets: 3}}}); err != nil {
		t.Fatalf("sale: %v", err)
	}

	_, err := svc.RecordSale(ctx, counter.ID, 1, SaleInput{Items: []PacketSale{{PacketSize: 5, SoldPackets: 8}}})
	if !apperr.Is(err, apperr.KindInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	rows, err := svc.DailyInventory(ctx, counter.ID, "")
	if err != nil {
		t.Fatalf("inventory: %v", err)
	}
	if len(rows) != 1 || rows[0].RemainingPackets != 7 || rows[0].SoldPackets != 3 {
		t.Fatalf("row changed by a rejected sale: %+v", rows)
	}
}

func TestSaleBatchIsAllOrNothing(t *testing.T) {
	svc, counter := newInventory(t)
	ctx := context.Background()

	_, err := svc.RecordDelivery(ctx, counter.ID, 1, DeliveryInput{Items: []PacketDelivery{
		{PacketSize: 5, Quantity: 10},
		{PacketSize: 10, Quantity: 2},
	}})
	if err != nil {
		t.Fatalf("delivery: %v", err)
	}

	_, err = svc.RecordSale(ctx, counter.ID, 1, SaleInput{Items: []PacketSale{
		{PacketSize: 5, SoldPackets: 4},
		{PacketSize: 10, SoldPackets: 3},
	}})
	if !apperr.Is(err, apperr.KindInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	rows, _ := svc.DailyInventory(ctx, counter.ID, "2026-05-14")
	for _, r := range rows {
		if r.SoldPackets != 0 {
			t.Fatalf("packet size %d was sold from a rejected batch", r.PacketSize)
		}
	}
}

func TestSaleOfUndeliveredPacketSize(t *testing.T) {
	svc, counter := newInventory(t)
	_, err := svc.RecordSale(context.Background(), counter.ID, 1, SaleInput{Items: []PacketSale{{PacketSize: 6, SoldPackets: 1}}})
	e, ok := apperr.As(err)
	if !ok || e.Kind != apperr.KindInsufficientStock {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	if e.Status() != 400 {
		t.Fatalf("expected 400, got %d", e.Status())
	}
}

func TestRepeatedDeliveriesAccumulate(t *testing.T) {
	svc, counter := newInventory(t)
	ctx := context.Background()

	events := []struct {
		deliver int
		sell    int
	}{
		{deliver: 4}, {sell: 2}, {deliver: 6}, {sell: 5}, {sell: 3},
	}
	for i, ev := range events {
		var rows []models.CounterInventory
		if ev.deliver > 0 {
			res, err := svc.RecordDelivery(ctx, counter.ID, 1, DeliveryInput{Items: []PacketDelivery{{PacketSize: 10, Quantity: ev.deliver}}})
			if err != nil {
				t.Fatalf("event %d delivery: %v", i, err)
			}
			rows = res.Inventory
		} else {
			var err error
			rows, err = svc.RecordSale(ctx, counter.ID, 1, SaleInput{Items: []PacketSale{{PacketSize: 10, SoldPackets: ev.sell}}})
			if err != nil {
				t.Fatalf("event %d sale: %v", i, err)
			}
		}
		assertLedger(t, rows[0])
	}

	rows, _ := svc.DailyInventory(ctx, counter.ID, "")
	r := rows[0]
	if r.TotalPackets != 10 || r.SoldPackets != 10 || r.RemainingPackets != 0 || r.TotalRotis != 100 {
		t.Fatalf("unexpected final row: %+v", r)
	}

	orders, err := svc.ListCounterOrders(ctx, counter.ID, 0, 0)
	if err != nil || len(orders) != 2 {
		t.Fatalf("expected 2 counter orders, got %d (%v)", len(orders), err)
	}
}

func TestDeliveryValidation(t *testing.T) {
	svc, counter := newInventory(t)
	ctx := context.Background()

	if _, err := svc.RecordDelivery(ctx, 404, 1, DeliveryInput{Items: []PacketDelivery{{PacketSize: 5, Quantity: 1}}}); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.RecordDelivery(ctx, counter.ID, 1, DeliveryInput{}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for empty items, got %v", err)
	}
	if _, err := svc.RecordDelivery(ctx, counter.ID, 1, DeliveryInput{Items: []PacketDelivery{{PacketSize: 0, Quantity: 1}}}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for packet size, got %v", err)
	}
	if _, err := svc.RecordDelivery(ctx, counter.ID, 1, DeliveryInput{Items: []PacketDelivery{{PacketSize: 5, Quantity: 1}}, Date: "14/05/2026"}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for date, got %v", err)
	}

	res, err := svc.RecordDelivery(ctx, counter.ID, 1, DeliveryInput{Items: []PacketDelivery{{PacketSize: 5, Quantity: 1}}, Date: "2026-05-15"})
	if err != nil {
		t.Fatalf("dated delivery: %v", err)
	}
	if res.Inventory[0].BusinessDate != "2026-05-15" {
		t.Fatalf("delivery landed on %s", res.Inventory[0].BusinessDate)
	}
}
