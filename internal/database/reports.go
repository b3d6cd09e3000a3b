package database

import (
	"context"
	"time"

	"roti-erp/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductSales is one row of the best-seller table.
type ProductSales struct {
	ProductID   uint            `json:"productId"`
	ProductName string          `json:"productName"`
	Sold        int64           `json:"sold"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// TopProducts ranks products by quantity sold through non-cancelled orders
// created in [start, end).
func TopProducts(ctx context.Context, db *gorm.DB, start, end time.Time, limit int) ([]ProductSales, error) {
	var rows []ProductSales
	err := db.WithContext(ctx).Table("order_items").
		Select("products.id as product_id, products.name as product_name, SUM(order_items.quantity) as sold, COALESCE(SUM(order_items.total_price), 0) as revenue").
		Joins("JOIN orders ON order_items.order_id = orders.id").
		Joins("JOIN products ON order_items.product_id = products.id").
		Where("orders.created_at >= ? AND orders.created_at < ? AND orders.status <> ?", start, end, models.OrderCancelled).
		Group("products.id, products.name").
		Order("sold desc").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// CountOrdersByStatus returns how many orders sit in the given status.
func CountOrdersByStatus(ctx context.Context, db *gorm.DB, status models.OrderStatus) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&models.Order{}).Where("status = ?", status).Count(&n).Error
	return n, err
}
