package services

import (
	"context"
	"errors"
	"time"

	"roti-erp/internal/apperr"
	"roti-erp/internal/logger"
	"roti-erp/internal/metrics"
	"roti-erp/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	numberAttempts  = 3
	defaultPageSize = 50
)

// CreateOrderInput is the body of POST /orders.
type CreateOrderInput struct {
	CounterID     uint            `json:"counterId" binding:"required"`
	CustomerID    *uint           `json:"customerId"`
	Items         []LineInput     `json:"items" binding:"required,min=1,dive"`
	PaymentMethod string          `json:"paymentMethod" binding:"max=30"`
	Discount      decimal.Decimal `json:"discount"`
	Notes         string          `json:"notes" binding:"max=500"`
}

// UpdateOrderInput is the body of PUT /orders/:id; nil fields are left alone.
type UpdateOrderInput struct {
	Status        *string `json:"status"`
	Notes         *string `json:"notes" binding:"omitempty,max=500"`
	PaymentMethod *string `json:"paymentMethod" binding:"omitempty,max=30"`
}

// OrderFilter narrows List.
type OrderFilter struct {
	Status    models.OrderStatus
	CounterID uint
	From, To  time.Time
	Limit     int
	Offset    int
}

type OrderService struct {
	db      *gorm.DB
	taxRate decimal.Decimal
	metrics *metrics.Metrics
	clock   func() time.Time
	numbers func(time.Time) string
}

func NewOrderService(db *gorm.DB, taxRate decimal.Decimal, m *metrics.Metrics) *OrderService {
	return &OrderService{
		db:      db,
		taxRate: taxRate,
		metrics: m,
		clock:   time.Now,
		numbers: func(t time.Time) string { return NewDocumentNumber("ORD", t) },
	}
}

// Create validates the request, prices it and writes the order with all of
// its items in one transaction. A clash on the order number retries with a
// fresh number.
func (s *OrderService) Create(ctx context.Context, userID uint, in CreateOrderInput) (*models.Order, error) {
	if err := ValidateLines(in.Items); err != nil {
		return nil, err
	}
	totals, err := ComputeTotals(in.Items, in.Discount, s.taxRate)
	if err != nil {
		return nil, err
	}

	var orderID uint
	for attempt := 1; ; attempt++ {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if _, err := activeCounter(tx, in.CounterID); err != nil {
				return err
			}
			if in.CustomerID != nil {
				if err := customerExists(tx, *in.CustomerID); err != nil {
					return err
				}
			}
			if err := checkProducts(tx, in.Items); err != nil {
				return err
			}

			order := models.Order{
				OrderNumber:   s.numbers(s.clock()),
				CustomerID:    in.CustomerID,
				CounterID:     in.CounterID,
				Status:        models.OrderPending,
				TotalAmount:   totals.TotalAmount,
				Discount:      totals.Discount,
				Tax:           totals.Tax,
				FinalAmount:   totals.FinalAmount,
				PaymentMethod: in.PaymentMethod,
				Notes:         in.Notes,
				CreatedBy:     userID,
			}
			for _, l := range in.Items {
				order.Items = append(order.Items, models.OrderItem{
					ProductID:  l.ProductID,
					Quantity:   l.Quantity,
					UnitPrice:  l.UnitPrice,
					TotalPrice: l.Total().Round(2),
				})
			}
			if err := tx.Create(&order).Error; err != nil {
				return err
			}
			orderID = order.ID
			return recordAudit(tx, userID, "CREATE", "order", order.ID, map[string]any{
				"orderNumber": order.OrderNumber,
				"finalAmount": order.FinalAmount,
			})
		})
		if err == nil {
			break
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) && attempt < numberAttempts {
			logger.FromContext(ctx).Warn("Order number collision, retrying", zap.Int("attempt", attempt))
			continue
		}
		return nil, apperr.FromDB(err, "order")
	}

	s.metrics.OrderCreated()
	logger.FromContext(ctx).Info("Order created",
		zap.Uint("order_id", orderID),
		zap.Uint("counter_id", in.CounterID),
		zap.String("final_amount", totals.FinalAmount.StringFixed(2)),
	)
	return s.Get(ctx, orderID)
}

// Get loads an order with its items, products, counter and customer.
func (s *OrderService) Get(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Preload("Items.Product").
		Preload("Counter").
		Preload("Customer").
		First(&order, id).Error
	if err != nil {
		return nil, apperr.FromDB(err, "order")
	}
	return &order, nil
}

// List returns one page of orders, newest first, and the total match count.
func (s *OrderService) List(ctx context.Context, f OrderFilter) ([]models.Order, int64, error) {
	if f.Limit <= 0 {
		f.Limit = defaultPageSize
	}
	q := s.db.WithContext(ctx).Model(&models.Order{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.CounterID != 0 {
		q = q.Where("counter_id = ?", f.CounterID)
	}
	if !f.From.IsZero() {
		q = q.Where("created_at >= ?", f.From)
	}
	if !f.To.IsZero() {
		q = q.Where("created_at < ?", f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperr.FromDB(err, "order")
	}

	var orders []models.Order
	err := q.Preload("Items").Preload("Counter").Preload("Customer").
		Order("created_at desc, id desc").
		Limit(f.Limit).Offset(f.Offset).
		Find(&orders).Error
	if err != nil {
		return nil, 0, apperr.FromDB(err, "order")
	}
	return orders, total, nil
}

// Update changes status, notes or payment method.
func (s *OrderService) Update(ctx context.Context, userID, id uint, in UpdateOrderInput) (*models.Order, error) {
	updates := map[string]interface{}{}
	if in.Status != nil {
		status, ok := models.ParseOrderStatus(*in.Status)
		if !ok {
			return nil, apperr.Field("status", "must be one of PENDING, CONFIRMED, IN_PREPARATION, READY, DELIVERED, CANCELLED")
		}
		updates["status"] = status
	}
	if in.Notes != nil {
		updates["notes"] = *in.Notes
	}
	if in.PaymentMethod != nil {
		updates["payment_method"] = *in.PaymentMethod
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, id).Error; err != nil {
			return err
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&order).Updates(updates).Error; err != nil {
			return err
		}
		return recordAudit(tx, userID, "UPDATE", "order", order.ID, updates)
	})
	if err != nil {
		return nil, apperr.FromDB(err, "order")
	}
	return s.Get(ctx, id)
}

// Delete removes an order and its items together.
func (s *OrderService) Delete(ctx context.Context, userID, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, id).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&order).Error; err != nil {
			return err
		}
		return recordAudit(tx, userID, "DELETE", "order", id, map[string]any{"orderNumber": order.OrderNumber})
	})
	return apperr.FromDB(err, "order")
}
