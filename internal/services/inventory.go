package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"roti-erp/internal/apperr"
	"roti-erp/internal/logger"
	"roti-erp/internal/metrics"
	"roti-erp/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const dateLayout = "2006-01-02"

// PacketDelivery is one line of a delivery to a counter.
type PacketDelivery struct {
	PacketSize int `json:"packetSize" binding:"required,min=1"`
	Quantity   int `json:"quantity" binding:"required,min=1"`
}

// PacketSale is one line of a counter sale.
type PacketSale struct {
	PacketSize  int `json:"packetSize" binding:"required,min=1"`
	SoldPackets int `json:"soldPackets" binding:"required,min=1"`
}

// DeliveryInput is the body of POST /counters/:counterId/orders.
type DeliveryInput struct {
	Items []PacketDelivery `json:"items" binding:"required,min=1,dive"`
	Notes string           `json:"notes" binding:"max=500"`
	Date  string           `json:"date" binding:"omitempty,datetime=2006-01-02"`
}

// SaleInput is the body of POST /counters/:counterId/sales.
type SaleInput struct {
	Items []PacketSale `json:"items" binding:"required,min=1,dive"`
}

// DeliveryResult is what a delivery returns: the counter order and the
// ledger rows it touched.
type DeliveryResult struct {
	CounterOrder models.CounterOrder       `json:"counterOrder"`
	Inventory    []models.CounterInventory `json:"inventory"`
}

// InventoryService keeps the per-counter, per-day, per-packet-size ledger.
// Every change is a single atomic statement against the row, so concurrent
// requests on one key never lose updates.
type InventoryService struct {
	db       *gorm.DB
	location *time.Location
	clock    func() time.Time
	metrics  *metrics.Metrics
}

func NewInventoryService(db *gorm.DB, loc *time.Location, clock func() time.Time, m *metrics.Metrics) *InventoryService {
	if loc == nil {
		loc = time.Local
	}
	if clock == nil {
		clock = time.Now
	}
	return &InventoryService{db: db, location: loc, clock: clock, metrics: m}
}

// Today is the business date in the configured timezone.
func (s *InventoryService) Today() string {
	return s.clock().In(s.location).Format(dateLayout)
}

// RecordDelivery writes the counter order and adds every line to the day's
// ledger, creating rows on first delivery.
func (s *InventoryService) RecordDelivery(ctx context.Context, counterID, userID uint, in DeliveryInput) (*DeliveryResult, error) {
	if len(in.Items) == 0 {
		return nil, apperr.Field("items", "at least one item is required")
	}
	for i, it := range in.Items {
		if it.PacketSize < 1 || it.Quantity < 1 {
			return nil, apperr.Field(fmt.Sprintf("items[%d]", i), "packetSize and quantity must be at least 1")
		}
	}
	date := in.Date
	if date == "" {
		date = s.Today()
	} else if _, err := time.ParseInLocation(dateLayout, date, s.location); err != nil {
		return nil, apperr.Field("date", "must be YYYY-MM-DD")
	}

	var result DeliveryResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := activeCounter(tx, counterID); err != nil {
			return err
		}

		order := models.CounterOrder{
			CounterID:    counterID,
			BusinessDate: date,
			Notes:        in.Notes,
			CreatedBy:    userID,
		}
		for _, it := range in.Items {
			rotis := it.PacketSize * it.Quantity
			order.TotalPackets += it.Quantity
			order.TotalRotis += rotis
			order.Items = append(order.Items, models.CounterOrderItem{
				PacketSize: it.PacketSize,
				Quantity:   it.Quantity,
				Rotis:      rotis,
			})
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		for _, it := range in.Items {
			if err := s.addDelivered(tx, counterID, date, it.PacketSize, it.Quantity); err != nil {
				return err
			}
		}

		rows, err := ledgerRows(tx, counterID, date, packetSizesOf(in.Items))
		if err != nil {
			return err
		}
		result = DeliveryResult{CounterOrder: order, Inventory: rows}
		return recordAudit(tx, userID, "DELIVERY", "counter", counterID, map[string]any{
			"counterOrderId": order.ID,
			"date":           date,
			"packets":        order.TotalPackets,
		})
	})
	if err != nil {
		return nil, apperr.FromDB(err, "counter inventory")
	}

	s.metrics.Adjustment("delivery", len(in.Items))
	logger.FromContext(ctx).Info("Counter delivery recorded",
		zap.Uint("counter_id", counterID),
		zap.String("date", date),
		zap.Int("packets", result.CounterOrder.TotalPackets),
	)
	return &result, nil
}

// addDelivered upserts the (counter, date, packetSize) row, incrementing
// totals and remaining by the same amounts.
func (s *InventoryService) addDelivered(tx *gorm.DB, counterID uint, date string, packetSize, quantity int) error {
	rotis := packetSize * quantity
	row := models.CounterInventory{
		CounterID:        counterID,
		BusinessDate:     date,
		PacketSize:       packetSize,
		TotalPackets:     quantity,
		TotalRotis:       rotis,
		RemainingPackets: quantity,
		RemainingRotis:   rotis,
	}
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "counter_id"}, {Name: "business_date"}, {Name: "packet_size"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"total_packets":     gorm.Expr("counter_inventories.total_packets + ?", quantity),
			"total_rotis":       gorm.Expr("counter_inventories.total_rotis + ?", rotis),
			"remaining_packets": gorm.Expr("counter_inventories.remaining_packets + ?", quantity),
			"remaining_rotis":   gorm.Expr("counter_inventories.remaining_rotis + ?", rotis),
			"updated_at":        s.clock(),
		}),
	}).Create(&row).Error
}

// RecordSale books sold packets against today's ledger. The whole batch is
// one transaction: a line that would take remaining below zero rejects the
// batch and leaves every row as it was.
func (s *InventoryService) RecordSale(ctx context.Context, counterID, userID uint, in SaleInput) ([]models.CounterInventory, error) {
	if len(in.Items) == 0 {
		return nil, apperr.Field("items", "at least one item is required")
	}
	for i, it := range in.Items {
		if it.PacketSize < 1 || it.SoldPackets < 1 {
			return nil, apperr.Field(fmt.Sprintf("items[%d]", i), "packetSize and soldPackets must be at least 1")
		}
	}
	date := s.Today()

	var rows []models.CounterInventory
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := activeCounter(tx, counterID); err != nil {
			return err
		}
		for _, it := range in.Items {
			if err := s.takeSold(tx, counterID, date, it.PacketSize, it.SoldPackets); err != nil {
				return err
			}
		}
		sizes := make([]int, 0, len(in.Items))
		for _, it := range in.Items {
			sizes = append(sizes, it.PacketSize)
		}
		var err error
		rows, err = ledgerRows(tx, counterID, date, sizes)
		if err != nil {
			return err
		}
		return recordAudit(tx, userID, "SALE", "counter", counterID, map[string]any{"date": date, "items": in.Items})
	})
	if err != nil {
		if apperr.Is(err, apperr.KindInsufficientStock) {
			s.metrics.StockRejected()
			logger.FromContext(ctx).Warn("Counter sale rejected", zap.Uint("counter_id", counterID), zap.Error(err))
		}
		return nil, apperr.FromDB(err, "counter inventory")
	}

	s.metrics.Adjustment("sale", len(in.Items))
	return rows, nil
}

// takeSold applies one sale line as a conditional update; the guard on
// remaining_packets makes check and decrement a single statement.
func (s *InventoryService) takeSold(tx *gorm.DB, counterID uint, date string, packetSize, sold int) error {
	rotis := packetSize * sold
	res := tx.Model(&models.CounterInventory{}).
		Where("counter_id = ? AND business_date = ? AND packet_size = ? AND remaining_packets >= ?",
			counterID, date, packetSize, sold).
		Updates(map[string]interface{}{
			"sold_packets":      gorm.Expr("sold_packets + ?", sold),
			"sold_rotis":        gorm.Expr("sold_rotis + ?", rotis),
			"remaining_packets": gorm.Expr("remaining_packets - ?", sold),
			"remaining_rotis":   gorm.Expr("remaining_rotis - ?", rotis),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}

	remaining := 0
	var row models.CounterInventory
	err := tx.Where("counter_id = ? AND business_date = ? AND packet_size = ?", counterID, date, packetSize).
		First(&row).Error
	switch {
	case err == nil:
		remaining = row.RemainingPackets
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	}
	return apperr.InsufficientStock(
		"Cannot sell %d packets of size %d: only %d remaining", sold, packetSize, remaining)
}

// DailyInventory lists the ledger rows of a counter for one date ("" = today).
func (s *InventoryService) DailyInventory(ctx context.Context, counterID uint, date string) ([]models.CounterInventory, error) {
	if date == "" {
		date = s.Today()
	} else if _, err := time.ParseInLocation(dateLayout, date, s.location); err != nil {
		return nil, apperr.Field("date", "must be YYYY-MM-DD")
	}
	db := s.db.WithContext(ctx)
	var n int64
	if err := db.Model(&models.Counter{}).Where("id = ?", counterID).Count(&n).Error; err != nil {
		return nil, apperr.FromDB(err, "counter")
	}
	if n == 0 {
		return nil, apperr.NotFound("Counter %d not found", counterID)
	}
	rows, err := ledgerRows(db, counterID, date, nil)
	if err != nil {
		return nil, apperr.FromDB(err, "counter inventory")
	}
	return rows, nil
}

// ListCounterOrders returns the deliveries of a counter, newest first.
func (s *InventoryService) ListCounterOrders(ctx context.Context, counterID uint, limit, offset int) ([]models.CounterOrder, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	var orders []models.CounterOrder
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("counter_id = ?", counterID).
		Order("created_at desc, id desc").
		Limit(limit).Offset(offset).
		Find(&orders).Error
	if err != nil {
		return nil, apperr.FromDB(err, "counter order")
	}
	return orders, nil
}

func ledgerRows(tx *gorm.DB, counterID uint, date string, sizes []int) ([]models.CounterInventory, error) {
	q := tx.Where("counter_id = ? AND business_date = ?", counterID, date)
	if len(sizes) > 0 {
		q = q.Where("packet_size IN ?", sizes)
	}
	rows := []models.CounterInventory{}
	err := q.Order("packet_size asc").Find(&rows).Error
	return rows, err
}

func packetSizesOf(items []PacketDelivery) []int {
	sizes := make([]int, 0, len(items))
	for _, it := range items {
		sizes = append(sizes, it.PacketSize)
	}
	return sizes
}
