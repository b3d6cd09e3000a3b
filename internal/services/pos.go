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

// CreatePOSInput is the body of POST /pos/transactions.
type CreatePOSInput struct {
	CounterID     *uint           `json:"counterId"`
	CustomerID    *uint           `json:"customerId"`
	Items         []LineInput     `json:"items" binding:"required,min=1,dive"`
	PaymentMethod string          `json:"paymentMethod" binding:"required,max=30"`
	Discount      decimal.Decimal `json:"discount"`
}

// POSService records walk-up sales. They share pricing with orders but have
// no lifecycle.
type POSService struct {
	db      *gorm.DB
	taxRate decimal.Decimal
	metrics *metrics.Metrics
	clock   func() time.Time
	numbers func(time.Time) string
}

func NewPOSService(db *gorm.DB, taxRate decimal.Decimal, m *metrics.Metrics) *POSService {
	return &POSService{
		db:      db,
		taxRate: taxRate,
		metrics: m,
		clock:   time.Now,
		numbers: func(t time.Time) string { return NewDocumentNumber("POS", t) },
	}
}

func (s *POSService) Create(ctx context.Context, userID uint, in CreatePOSInput) (*models.POSTransaction, error) {
	if err := ValidateLines(in.Items); err != nil {
		return nil, err
	}
	totals, err := ComputeTotals(in.Items, in.Discount, s.taxRate)
	if err != nil {
		return nil, err
	}

	var txnID uint
	for attempt := 1; ; attempt++ {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if in.CounterID != nil {
				if _, err := activeCounter(tx, *in.CounterID); err != nil {
					return err
				}
			}
			if in.CustomerID != nil {
				if err := customerExists(tx, *in.CustomerID); err != nil {
					return err
				}
			}
			if err := checkProducts(tx, in.Items); err != nil {
				return err
			}

			txn := models.POSTransaction{
				TransactionNumber: s.numbers(s.clock()),
				CounterID:         in.CounterID,
				CustomerID:        in.CustomerID,
				TotalAmount:       totals.TotalAmount,
				Discount:          totals.Discount,
				Tax:               totals.Tax,
				FinalAmount:       totals.FinalAmount,
				PaymentMethod:     in.PaymentMethod,
				CreatedBy:         userID,
			}
			for _, l := range in.Items {
				txn.Items = append(txn.Items, models.POSTransactionItem{
					ProductID:  l.ProductID,
					Quantity:   l.Quantity,
					UnitPrice:  l.UnitPrice,
					TotalPrice: l.Total().Round(2),
				})
			}
			if err := tx.Create(&txn).Error; err != nil {
				return err
			}
			txnID = txn.ID
			return recordAudit(tx, userID, "CREATE", "pos_transaction", txn.ID, map[string]any{
				"transactionNumber": txn.TransactionNumber,
				"finalAmount":       txn.FinalAmount,
			})
		})
		if err == nil {
			break
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) && attempt < numberAttempts {
			continue
		}
		return nil, apperr.FromDB(err, "pos transaction")
	}

	s.metrics.POSTransaction()
	logger.FromContext(ctx).Info("POS transaction recorded",
		zap.Uint("transaction_id", txnID),
		zap.String("final_amount", totals.FinalAmount.StringFixed(2)),
	)
	return s.Get(ctx, txnID)
}

func (s *POSService) Get(ctx context.Context, id uint) (*models.POSTransaction, error) {
	var txn models.POSTransaction
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Preload("Items.Product").
		Preload("Counter").
		First(&txn, id).Error
	if err != nil {
		return nil, apperr.FromDB(err, "pos transaction")
	}
	return &txn, nil
}

// List returns POS transactions created in [from, to), newest first.
func (s *POSService) List(ctx context.Context, from, to time.Time, limit, offset int) ([]models.POSTransaction, int64, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	q := s.db.WithContext(ctx).Model(&models.POSTransaction{})
	if !from.IsZero() {
		q = q.Where("created_at >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("created_at < ?", to)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperr.FromDB(err, "pos transaction")
	}
	var rows []models.POSTransaction
	if err := q.Preload("Items").Order("created_at desc, id desc").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		return nil, 0, apperr.FromDB(err, "pos transaction")
	}
	return rows, total, nil
}
