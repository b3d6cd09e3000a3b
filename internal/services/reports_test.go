package services

import (
	"context"
	"testing"
	"time"

	"roti-erp/internal/models"

	"gorm.io/gorm"
)

var reportNow = time.Date(2026, 5, 14, 18, 0, 0, 0, time.UTC)

func seedOrder(t *testing.T, db *gorm.DB, counterID uint, status models.OrderStatus, total string, at time.Time) models.Order {
	t.Helper()
	o := models.Order{
		Base:        models.Base{CreatedAt: at},
		OrderNumber: NewDocumentNumber("ORD", at),
		CounterID:   counterID,
		Status:      status,
		TotalAmount: dec(total),
		Discount:    dec("0"),
		Tax:         dec(total).Mul(DefaultTaxRate).Round(2),
		FinalAmount: dec(total).Mul(dec("1.05")).Round(2),
	}
	mustCreate(t, db, &o)
	return o
}

func seedPOS(t *testing.T, db *gorm.DB, counterID *uint, total string, at time.Time) {
	t.Helper()
	mustCreate(t, db, &models.POSTransaction{
		Base:              models.Base{CreatedAt: at},
		TransactionNumber: NewDocumentNumber("POS", at),
		CounterID:         counterID,
		TotalAmount:       dec(total),
		Discount:          dec("0"),
		Tax:               dec("0"),
		FinalAmount:       dec(total),
		PaymentMethod:     "CASH",
	})
}

func TestSalesReportEmptyToday(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewReportService(db, time.UTC, fixedClock(reportNow))

	r, err := svc.Sales(context.Background(), SalesQuery{PeriodQuery: PeriodQuery{Period: "today"}})
	if err != nil {
		t.Fatalf("sales: %v", err)
	}
	if !r.Summary.TotalSales.IsZero() || r.Summary.TotalOrders != 0 || !r.Summary.AverageOrderValue.IsZero() {
		t.Fatalf("expected zero summary, got %+v", r.Summary)
	}
	if len(r.ChartData) != 0 || r.Orders == nil || r.POSTransactions == nil {
		t.Fatalf("expected empty (non-nil) rows, got %+v", r)
	}
}

func TestSalesReportAggregates(t *testing.T) {
	db := setupServiceDB(t)
	c := seedCounter(t, db, "C1")
	seedOrder(t, db, c.ID, models.OrderDelivered, "48.00", time.Date(2026, 5, 12, 10, 0, 0, 0, time.UTC))
	seedOrder(t, db, c.ID, models.OrderPending, "20.00", time.Date(2026, 5, 14, 9, 0, 0, 0, time.UTC))
	seedOrder(t, db, c.ID, models.OrderCancelled, "500.00", time.Date(2026, 5, 14, 9, 30, 0, 0, time.UTC))
	seedOrder(t, db, c.ID, models.OrderDelivered, "999.00", time.Date(2026, 4, 30, 23, 0, 0, 0, time.UTC))
	seedPOS(t, db, nil, "12.00", time.Date(2026, 5, 14, 11, 0, 0, 0, time.UTC))

	svc := NewReportService(db, time.UTC, fixedClock(reportNow))
	ctx := context.Background()
	r, err := svc.Sales(ctx, SalesQuery{PeriodQuery: PeriodQuery{Period: "this-month"}})
	if err != nil {
		t.Fatalf("sales: %v", err)
	}
	s := r.Summary
	if !s.TotalSales.Equal(dec("80")) || s.TotalOrders != 3 || s.OrderCount != 2 || s.POSCount != 1 {
		t.Fatalf("unexpected summary %+v", s)
	}
	if !s.AverageOrderValue.Equal(dec("26.67")) {
		t.Fatalf("unexpected average %s", s.AverageOrderValue)
	}
	if len(r.ChartData) != 2 || r.ChartData[0].Key != "2026-05-12" || r.ChartData[1].Key != "2026-05-14" {
		t.Fatalf("unexpected chart %+v", r.ChartData)
	}
	if r.ChartData[1].TotalOrders != 2 || !r.ChartData[1].TotalSales.Equal(dec("32")) || !r.ChartData[1].AverageOrderValue.Equal(dec("16")) {
		t.Fatalf("unexpected bucket %+v", r.ChartData[1])
	}

	weekly, err := svc.Sales(ctx, SalesQuery{PeriodQuery: PeriodQuery{Period: "this-month"}, GroupBy: "week"})
	if err != nil {
		t.Fatalf("weekly: %v", err)
	}
	if len(weekly.ChartData) != 1 || weekly.ChartData[0].Key != "2026-05-11" {
		t.Fatalf("unexpected weekly chart %+v", weekly.ChartData)
	}

	monthly, err := svc.Sales(ctx, SalesQuery{PeriodQuery: PeriodQuery{StartDate: "2026-04-01", EndDate: "2026-05-31"}, GroupBy: "month"})
	if err != nil {
		t.Fatalf("monthly: %v", err)
	}
	if len(monthly.ChartData) != 2 || monthly.ChartData[0].Key != "2026-04" || monthly.ChartData[1].Key != "2026-05" {
		t.Fatalf("unexpected monthly chart %+v", monthly.ChartData)
	}

	// Same data, same numbers.
	again, _ := svc.Sales(ctx, SalesQuery{PeriodQuery: PeriodQuery{Period: "this-month"}})
	if !again.Summary.TotalSales.Equal(s.TotalSales) || again.Summary.TotalOrders != s.TotalOrders {
		t.Fatalf("report not stable across calls")
	}

	if _, err := svc.Sales(ctx, SalesQuery{GroupBy: "hour"}); err == nil {
		t.Fatalf("expected groupBy validation error")
	}
}

func TestProfitLoss(t *testing.T) {
	db := setupServiceDB(t)
	c := seedCounter(t, db, "C1")
	seedOrder(t, db, c.ID, models.OrderDelivered, "200.00", time.Date(2026, 5, 3, 10, 0, 0, 0, time.UTC))
	mustCreate(t, db, &models.Expense{Category: "Rent", Amount: dec("50"), ExpenseDate: "2026-05-01", Status: models.ExpenseApproved})
	mustCreate(t, db, &models.Expense{Category: "Flour", Amount: dec("30"), ExpenseDate: "2026-05-10", Status: models.ExpenseApproved})
	mustCreate(t, db, &models.Expense{Category: "Flour", Amount: dec("20"), ExpenseDate: "2026-05-11", Status: models.ExpenseApproved})
	mustCreate(t, db, &models.Expense{Category: "Flour", Amount: dec("99"), ExpenseDate: "2026-05-11", Status: models.ExpensePending})
	mustCreate(t, db, &models.Expense{Category: "Rent", Amount: dec("50"), ExpenseDate: "2026-04-30", Status: models.ExpenseApproved})

	svc := NewReportService(db, time.UTC, fixedClock(reportNow))
	pl, err := svc.ProfitLoss(context.Background(), PeriodQuery{Period: "this-month"})
	if err != nil {
		t.Fatalf("profit-loss: %v", err)
	}
	if !pl.Revenue.Total.Equal(dec("200")) || !pl.Expenses.Total.Equal(dec("100")) {
		t.Fatalf("unexpected revenue/expenses: %s / %s", pl.Revenue.Total, pl.Expenses.Total)
	}
	if !pl.NetProfit.Equal(dec("100")) || !pl.ProfitMargin.Equal(dec("50")) {
		t.Fatalf("unexpected net %s margin %s", pl.NetProfit, pl.ProfitMargin)
	}
	if len(pl.Expenses.ByCategory) != 2 || pl.Expenses.ByCategory[0].Category != "Flour" || !pl.Expenses.ByCategory[0].Amount.Equal(dec("50")) {
		t.Fatalf("unexpected categories %+v", pl.Expenses.ByCategory)
	}
}

func TestProfitLossWithoutRevenue(t *testing.T) {
	db := setupServiceDB(t)
	mustCreate(t, db, &models.Expense{Category: "Rent", Amount: dec("50"), ExpenseDate: "2026-05-14", Status: models.ExpenseApproved})
	svc := NewReportService(db, time.UTC, fixedClock(reportNow))

	pl, err := svc.ProfitLoss(context.Background(), PeriodQuery{Period: "today"})
	if err != nil {
		t.Fatalf("profit-loss: %v", err)
	}
	if !pl.ProfitMargin.IsZero() || !pl.NetProfit.Equal(dec("-50")) {
		t.Fatalf("unexpected margin %s net %s", pl.ProfitMargin, pl.NetProfit)
	}
}

func TestInventorySummaryAndValuation(t *testing.T) {
	db := setupServiceDB(t)
	c1 := seedCounter(t, db, "C1")
	c2 := seedCounter(t, db, "C2")
	inv := NewInventoryService(db, time.UTC, fixedClock(reportNow), nil)
	ctx := context.Background()
	for _, c := range []models.Counter{c1, c2} {
		if _, err := inv.RecordDelivery(ctx, c.ID, 1, DeliveryInput{Items: []PacketDelivery{{PacketSize: 5, Quantity: 4}, {PacketSize: 10, Quantity: 1}}}); err != nil {
			t.Fatalf("delivery: %v", err)
		}
	}
	if _, err := inv.RecordSale(ctx, c1.ID, 1, SaleInput{Items: []PacketSale{{PacketSize: 5, SoldPackets: 1}}}); err != nil {
		t.Fatalf("sale: %v", err)
	}

	svc := NewReportService(db, time.UTC, fixedClock(reportNow))
	sum, err := svc.InventorySummary(ctx, "")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if len(sum.Counters) != 2 || sum.Counters[0].CounterName != "C1" || sum.Counters[0].RemainingPackets != 4 {
		t.Fatalf("unexpected counters %+v", sum.Counters)
	}
	if sum.Totals.TotalRotis != 60 || sum.Totals.SoldRotis != 5 || sum.Totals.RemainingRotis != 55 {
		t.Fatalf("unexpected totals %+v", sum.Totals)
	}

	mustCreate(t, db, &models.RawMaterial{Name: "Atta", Category: "Flour", Unit: "kg", Quantity: dec("10"), CostPerUnit: dec("40")})
	mustCreate(t, db, &models.RawMaterial{Name: "Maida", Category: "Flour", Unit: "kg", Quantity: dec("2.5"), CostPerUnit: dec("50")})
	mustCreate(t, db, &models.RawMaterial{Name: "Ghee", Unit: "kg", Quantity: dec("1"), CostPerUnit: dec("600")})
	val, err := svc.StockValuation(ctx)
	if err != nil {
		t.Fatalf("valuation: %v", err)
	}
	if len(val.Categories) != 2 || val.Categories[0].CategoryName != "Flour" || !val.Categories[0].Subtotal.Equal(dec("525")) {
		t.Fatalf("unexpected categories %+v", val.Categories)
	}
	if !val.GrandTotal.Equal(dec("1125")) {
		t.Fatalf("unexpected grand total %s", val.GrandTotal)
	}
}

func TestDashboardAndFranchiseSummary(t *testing.T) {
	db := setupServiceDB(t)
	f := models.Franchise{Name: "North", RoyaltyRate: dec("10")}
	mustCreate(t, db, &f)
	own := models.Counter{Name: "Franchised", Location: "Mall", FranchiseID: &f.ID, IsActive: true}
	mustCreate(t, db, &own)
	other := seedCounter(t, db, "Company")

	seedOrder(t, db, own.ID, models.OrderPending, "100.00", time.Date(2026, 5, 14, 8, 0, 0, 0, time.UTC))
	seedOrder(t, db, other.ID, models.OrderDelivered, "70.00", time.Date(2026, 5, 2, 8, 0, 0, 0, time.UTC))
	seedPOS(t, db, &own.ID, "50.00", time.Date(2026, 5, 10, 8, 0, 0, 0, time.UTC))
	mustCreate(t, db, &models.RoyaltyPayment{FranchiseID: f.ID, Amount: dec("5"), PaidOn: "2026-05-05"})
	mustCreate(t, db, &models.RoyaltyPayment{FranchiseID: f.ID, Amount: dec("99"), PaidOn: "2026-04-05"})

	svc := NewReportService(db, time.UTC, fixedClock(reportNow))
	ctx := context.Background()

	fs, err := svc.FranchiseSummary(ctx, f.ID, PeriodQuery{Period: "this-month"})
	if err != nil {
		t.Fatalf("franchise summary: %v", err)
	}
	if !fs.Sales.TotalSales.Equal(dec("150")) || !fs.RoyaltyDue.Equal(dec("15")) || !fs.RoyaltyPaid.Equal(dec("5")) || !fs.Outstanding.Equal(dec("10")) {
		t.Fatalf("unexpected franchise summary %+v", fs)
	}

	d, err := svc.Dashboard(ctx)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if d.Today.TotalOrders != 1 || !d.Month.TotalSales.Equal(dec("220")) {
		t.Fatalf("unexpected dashboard sales today=%+v month=%+v", d.Today, d.Month)
	}
	if d.PendingOrders != 1 || d.ActiveCounters != 2 || len(d.RecentOrders) != 2 {
		t.Fatalf("unexpected dashboard counts %+v", d)
	}
}
