package services

import (
	"context"
	"sort"
	"time"

	"roti-erp/internal/apperr"
	"roti-erp/internal/database"
	"roti-erp/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SalesSummary aggregates orders and POS transactions of one window.
type SalesSummary struct {
	TotalSales        decimal.Decimal `json:"totalSales"`
	TotalOrders       int64           `json:"totalOrders"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
	OrderSales        decimal.Decimal `json:"orderSales"`
	OrderCount        int64           `json:"orderCount"`
	POSSales          decimal.Decimal `json:"posSales"`
	POSCount          int64           `json:"posCount"`
}

// ChartPoint is one bucket of the sales series.
type ChartPoint struct {
	Key               string          `json:"key"`
	TotalSales        decimal.Decimal `json:"totalSales"`
	TotalOrders       int64           `json:"totalOrders"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
}

type SalesQuery struct {
	PeriodQuery
	GroupBy string `form:"groupBy"`
}

type SalesReport struct {
	Period          Period                  `json:"period"`
	GroupBy         string                  `json:"groupBy"`
	Summary         SalesSummary            `json:"summary"`
	ChartData       []ChartPoint            `json:"chartData"`
	Orders          []models.Order          `json:"orders"`
	POSTransactions []models.POSTransaction `json:"posTransactions"`
}

type CategoryAmount struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

type ProfitLoss struct {
	Period   Period `json:"period"`
	Revenue  struct {
		Orders decimal.Decimal `json:"orders"`
		POS    decimal.Decimal `json:"pos"`
		Total  decimal.Decimal `json:"total"`
	} `json:"revenue"`
	Expenses struct {
		Total      decimal.Decimal  `json:"total"`
		ByCategory []CategoryAmount `json:"byCategory"`
	} `json:"expenses"`
	NetProfit    decimal.Decimal `json:"netProfit"`
	ProfitMargin decimal.Decimal `json:"profitMargin"`
}

type Dashboard struct {
	Today          SalesSummary            `json:"today"`
	Month          SalesSummary            `json:"month"`
	PendingOrders  int64                   `json:"pendingOrders"`
	ActiveCounters int64                   `json:"activeCounters"`
	TopProducts    []database.ProductSales `json:"topProducts"`
	RecentOrders   []models.Order          `json:"recentOrders"`
	LowStock       []models.RawMaterial    `json:"lowStock"`
}

// CounterStock totals one counter's ledger for a day.
type CounterStock struct {
	CounterID        uint   `json:"counterId"`
	CounterName      string `json:"counterName"`
	TotalPackets     int    `json:"totalPackets"`
	SoldPackets      int    `json:"soldPackets"`
	RemainingPackets int    `json:"remainingPackets"`
	TotalRotis       int    `json:"totalRotis"`
	SoldRotis        int    `json:"soldRotis"`
	RemainingRotis   int    `json:"remainingRotis"`
}

type InventorySummary struct {
	Date     string                    `json:"date"`
	Counters []CounterStock            `json:"counters"`
	Totals   CounterStock              `json:"totals"`
	Rows     []models.CounterInventory `json:"rows"`
}

// ValuationItem is one raw material priced at cost.
type ValuationItem struct {
	Name        string          `json:"name"`
	Unit        string          `json:"unit"`
	Quantity    decimal.Decimal `json:"quantity"`
	CostPerUnit decimal.Decimal `json:"costPerUnit"`
	TotalCost   decimal.Decimal `json:"totalCost"`
}

// CategoryGroup is one category table of the valuation.
type CategoryGroup struct {
	CategoryName string          `json:"categoryName"`
	Items        []ValuationItem `json:"items"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

type Valuation struct {
	Categories []CategoryGroup `json:"categories"`
	GrandTotal decimal.Decimal `json:"grandTotal"`
}

type FranchiseSummary struct {
	Franchise   models.Franchise `json:"franchise"`
	Period      Period           `json:"period"`
	Sales       SalesSummary     `json:"sales"`
	RoyaltyRate decimal.Decimal  `json:"royaltyRate"`
	RoyaltyDue  decimal.Decimal  `json:"royaltyDue"`
	RoyaltyPaid decimal.Decimal  `json:"royaltyPaid"`
	Outstanding decimal.Decimal  `json:"outstanding"`
}

// ReportService runs the read-only aggregations. Sums are taken over the
// fetched rows in decimal so every driver yields the same figures.
type ReportService struct {
	db       *gorm.DB
	location *time.Location
	clock    func() time.Time
}

func NewReportService(db *gorm.DB, loc *time.Location, clock func() time.Time) *ReportService {
	if loc == nil {
		loc = time.Local
	}
	if clock == nil {
		clock = time.Now
	}
	return &ReportService{db: db, location: loc, clock: clock}
}

// Resolve applies ResolvePeriod with the service clock and timezone.
func (s *ReportService) Resolve(q PeriodQuery) (Period, error) {
	return ResolvePeriod(q.Period, q.StartDate, q.EndDate, s.clock(), s.location)
}

// Sales builds the summary, chart series and raw rows for a window.
func (s *ReportService) Sales(ctx context.Context, q SalesQuery) (*SalesReport, error) {
	groupBy := q.GroupBy
	if groupBy == "" {
		groupBy = "day"
	}
	if groupBy != "day" && groupBy != "week" && groupBy != "month" {
		return nil, apperr.Field("groupBy", "must be one of day, week, month")
	}
	period, err := s.Resolve(q.PeriodQuery)
	if err != nil {
		return nil, err
	}

	orders, pos, err := s.fetchSales(ctx, period, nil)
	if err != nil {
		return nil, err
	}

	return &SalesReport{
		Period:          period,
		GroupBy:         groupBy,
		Summary:         summarize(orders, pos),
		ChartData:       s.chart(orders, pos, groupBy),
		Orders:          orders,
		POSTransactions: pos,
	}, nil
}

// fetchSales loads non-cancelled orders and all POS transactions created in
// the window, optionally restricted to a set of counters.
func (s *ReportService) fetchSales(ctx context.Context, p Period, counterIDs []uint) ([]models.Order, []models.POSTransaction, error) {
	db := s.db.WithContext(ctx)

	oq := db.Where("created_at >= ? AND created_at < ? AND status <> ?", p.Start, p.End, models.OrderCancelled)
	pq := db.Where("created_at >= ? AND created_at < ?", p.Start, p.End)
	if counterIDs != nil {
		oq = oq.Where("counter_id IN ?", counterIDs)
		pq = pq.Where("counter_id IN ?", counterIDs)
	}

	orders := []models.Order{}
	if err := oq.Order("created_at asc, id asc").Find(&orders).Error; err != nil {
		return nil, nil, apperr.FromDB(err, "order")
	}
	pos := []models.POSTransaction{}
	if err := pq.Order("created_at asc, id asc").Find(&pos).Error; err != nil {
		return nil, nil, apperr.FromDB(err, "pos transaction")
	}
	return orders, pos, nil
}

func summarize(orders []models.Order, pos []models.POSTransaction) SalesSummary {
	sum := SalesSummary{OrderSales: decimal.Zero, POSSales: decimal.Zero}
	for _, o := range orders {
		sum.OrderSales = sum.OrderSales.Add(o.TotalAmount)
	}
	for _, t := range pos {
		sum.POSSales = sum.POSSales.Add(t.TotalAmount)
	}
	sum.OrderCount = int64(len(orders))
	sum.POSCount = int64(len(pos))
	sum.TotalSales = sum.OrderSales.Add(sum.POSSales)
	sum.TotalOrders = sum.OrderCount + sum.POSCount
	sum.AverageOrderValue = averageOf(sum.TotalSales, sum.TotalOrders)
	return sum
}

func (s *ReportService) bucketKey(t time.Time, groupBy string) string {
	local := t.In(s.location)
	switch groupBy {
	case "month":
		return local.Format("2006-01")
	case "week":
		day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.location)
		return weekStart(day).Format(dateLayout)
	}
	return local.Format(dateLayout)
}

func (s *ReportService) chart(orders []models.Order, pos []models.POSTransaction, groupBy string) []ChartPoint {
	buckets := map[string]*ChartPoint{}
	add := func(t time.Time, amount decimal.Decimal) {
		key := s.bucketKey(t, groupBy)
		b, ok := buckets[key]
		if !ok {
			b = &ChartPoint{Key: key, TotalSales: decimal.Zero}
			buckets[key] = b
		}
		b.TotalSales = b.TotalSales.Add(amount)
		b.TotalOrders++
	}
	for _, o := range orders {
		add(o.CreatedAt, o.TotalAmount)
	}
	for _, t := range pos {
		add(t.CreatedAt, t.TotalAmount)
	}

	points := make([]ChartPoint, 0, len(buckets))
	for _, b := range buckets {
		b.AverageOrderValue = averageOf(b.TotalSales, b.TotalOrders)
		points = append(points, *b)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Key < points[j].Key })
	return points
}

// ProfitLoss is revenue minus approved expenses dated inside the window.
func (s *ReportService) ProfitLoss(ctx context.Context, q PeriodQuery) (*ProfitLoss, error) {
	period, err := s.Resolve(q)
	if err != nil {
		return nil, err
	}
	orders, pos, err := s.fetchSales(ctx, period, nil)
	if err != nil {
		return nil, err
	}
	sales := summarize(orders, pos)

	var expenses []models.Expense
	err = s.db.WithContext(ctx).
		Where("status = ? AND expense_date >= ? AND expense_date < ?", models.ExpenseApproved, period.StartDate(), period.EndDate()).
		Find(&expenses).Error
	if err != nil {
		return nil, apperr.FromDB(err, "expense")
	}

	out := &ProfitLoss{Period: period}
	out.Revenue.Orders = sales.OrderSales
	out.Revenue.POS = sales.POSSales
	out.Revenue.Total = sales.TotalSales

	byCategory := map[string]decimal.Decimal{}
	out.Expenses.Total = decimal.Zero
	for _, e := range expenses {
		byCategory[e.Category] = byCategory[e.Category].Add(e.Amount)
		out.Expenses.Total = out.Expenses.Total.Add(e.Amount)
	}
	out.Expenses.ByCategory = make([]CategoryAmount, 0, len(byCategory))
	for cat, amount := range byCategory {
		out.Expenses.ByCategory = append(out.Expenses.ByCategory, CategoryAmount{Category: cat, Amount: amount})
	}
	sort.Slice(out.Expenses.ByCategory, func(i, j int) bool {
		return out.Expenses.ByCategory[i].Category < out.Expenses.ByCategory[j].Category
	})

	out.NetProfit = out.Revenue.Total.Sub(out.Expenses.Total)
	out.ProfitMargin = decimal.Zero
	if !out.Revenue.Total.IsZero() {
		out.ProfitMargin = out.NetProfit.Div(out.Revenue.Total).Mul(hundred).Round(2)
	}
	return out, nil
}

// Dashboard is the landing-page snapshot.
func (s *ReportService) Dashboard(ctx context.Context) (*Dashboard, error) {
	now := s.clock()
	today, err := ResolvePeriod("today", "", "", now, s.location)
	if err != nil {
		return nil, err
	}
	month, err := ResolvePeriod("this-month", "", "", now, s.location)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{}
	// 1. Today and month-to-date
	orders, pos, err := s.fetchSales(ctx, today, nil)
	if err != nil {
		return nil, err
	}
	d.Today = summarize(orders, pos)
	if orders, pos, err = s.fetchSales(ctx, month, nil); err != nil {
		return nil, err
	}
	d.Month = summarize(orders, pos)

	// 2. Counts
	db := s.db.WithContext(ctx)
	if d.PendingOrders, err = database.CountOrdersByStatus(ctx, s.db, models.OrderPending); err != nil {
		return nil, apperr.FromDB(err, "order")
	}
	if err := db.Model(&models.Counter{}).Where("is_active = ?", true).Count(&d.ActiveCounters).Error; err != nil {
		return nil, apperr.FromDB(err, "counter")
	}

	// 3. Best sellers of the month
	if d.TopProducts, err = database.TopProducts(ctx, s.db, month.Start, month.End, 5); err != nil {
		return nil, apperr.FromDB(err, "product")
	}
	if d.TopProducts == nil {
		d.TopProducts = []database.ProductSales{}
	}

	// 4. Recent orders and materials at or below reorder level
	d.RecentOrders = []models.Order{}
	if err := db.Preload("Counter").Order("created_at desc, id desc").Limit(5).Find(&d.RecentOrders).Error; err != nil {
		return nil, apperr.FromDB(err, "order")
	}
	d.LowStock = []models.RawMaterial{}
	if err := db.Where("quantity <= reorder_level").Order("name asc").Find(&d.LowStock).Error; err != nil {
		return nil, apperr.FromDB(err, "raw material")
	}
	return d, nil
}

// InventorySummary totals every counter's ledger for a date ("" = today).
func (s *ReportService) InventorySummary(ctx context.Context, date string) (*InventorySummary, error) {
	if date == "" {
		date = s.clock().In(s.location).Format(dateLayout)
	} else if _, err := time.ParseInLocation(dateLayout, date, s.location); err != nil {
		return nil, apperr.Field("date", "must be YYYY-MM-DD")
	}
	db := s.db.WithContext(ctx)

	rows := []models.CounterInventory{}
	if err := db.Where("business_date = ?", date).Order("counter_id asc, packet_size asc").Find(&rows).Error; err != nil {
		return nil, apperr.FromDB(err, "counter inventory")
	}
	var counters []models.Counter
	if err := db.Find(&counters).Error; err != nil {
		return nil, apperr.FromDB(err, "counter")
	}
	names := make(map[uint]string, len(counters))
	for _, c := range counters {
		names[c.ID] = c.Name
	}

	out := &InventorySummary{Date: date, Rows: rows, Counters: []CounterStock{}}
	index := map[uint]int{}
	for _, r := range rows {
		i, ok := index[r.CounterID]
		if !ok {
			out.Counters = append(out.Counters, CounterStock{CounterID: r.CounterID, CounterName: names[r.CounterID]})
			i = len(out.Counters) - 1
			index[r.CounterID] = i
		}
		out.Counters[i].add(r)
		out.Totals.add(r)
	}
	return out, nil
}

func (c *CounterStock) add(r models.CounterInventory) {
	c.TotalPackets += r.TotalPackets
	c.SoldPackets += r.SoldPackets
	c.RemainingPackets += r.RemainingPackets
	c.TotalRotis += r.TotalRotis
	c.SoldRotis += r.SoldRotis
	c.RemainingRotis += r.RemainingRotis
}

// StockValuation prices raw materials on hand at cost, grouped by category.
func (s *ReportService) StockValuation(ctx context.Context) (*Valuation, error) {
	var materials []models.RawMaterial
	if err := s.db.WithContext(ctx).Order("name asc").Find(&materials).Error; err != nil {
		return nil, apperr.FromDB(err, "raw material")
	}

	out := &Valuation{Categories: []CategoryGroup{}, GrandTotal: decimal.Zero}
	grouped := map[string]*CategoryGroup{}
	for _, m := range materials {
		cat := m.Category
		if cat == "" {
			cat = "Uncategorized"
		}
		g, ok := grouped[cat]
		if !ok {
			g = &CategoryGroup{CategoryName: cat, Items: []ValuationItem{}, Subtotal: decimal.Zero}
			grouped[cat] = g
		}
		total := m.Quantity.Mul(m.CostPerUnit).Round(2)
		g.Items = append(g.Items, ValuationItem{
			Name:        m.Name,
			Unit:        m.Unit,
			Quantity:    m.Quantity,
			CostPerUnit: m.CostPerUnit,
			TotalCost:   total,
		})
		g.Subtotal = g.Subtotal.Add(total)
		out.GrandTotal = out.GrandTotal.Add(total)
	}
	for _, g := range grouped {
		out.Categories = append(out.Categories, *g)
	}
	sort.Slice(out.Categories, func(i, j int) bool {
		return out.Categories[i].CategoryName < out.Categories[j].CategoryName
	})
	return out, nil
}

// FranchiseSummary reports the sales of a franchise's counters and the
// royalty owed on them. The rate is a percent.
func (s *ReportService) FranchiseSummary(ctx context.Context, franchiseID uint, q PeriodQuery) (*FranchiseSummary, error) {
	period, err := s.Resolve(q)
	if err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)

	var f models.Franchise
	if err := db.Preload("Counters").First(&f, franchiseID).Error; err != nil {
		return nil, apperr.FromDB(err, "franchise")
	}
	ids := make([]uint, 0, len(f.Counters))
	for _, c := range f.Counters {
		ids = append(ids, c.ID)
	}

	sales := summarize(nil, nil)
	if len(ids) > 0 {
		orders, pos, err := s.fetchSales(ctx, period, ids)
		if err != nil {
			return nil, err
		}
		sales = summarize(orders, pos)
	}

	var payments []models.RoyaltyPayment
	err = db.Where("franchise_id = ? AND paid_on >= ? AND paid_on < ?", f.ID, period.StartDate(), period.EndDate()).
		Find(&payments).Error
	if err != nil {
		return nil, apperr.FromDB(err, "royalty payment")
	}
	paid := decimal.Zero
	for _, p := range payments {
		paid = paid.Add(p.Amount)
	}

	due := sales.TotalSales.Mul(f.RoyaltyRate).Div(hundred).Round(2)
	return &FranchiseSummary{
		Franchise:   f,
		Period:      period,
		Sales:       sales,
		RoyaltyRate: f.RoyaltyRate,
		RoyaltyDue:  due,
		RoyaltyPaid: paid,
		Outstanding: due.Sub(paid),
	}, nil
}
