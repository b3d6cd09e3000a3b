package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending       OrderStatus = "PENDING"
	OrderConfirmed     OrderStatus = "CONFIRMED"
	OrderInPreparation OrderStatus = "IN_PREPARATION"
	OrderReady         OrderStatus = "READY"
	OrderDelivered     OrderStatus = "DELIVERED"
	OrderCancelled     OrderStatus = "CANCELLED"
)

// ParseOrderStatus accepts any casing and the PREPARING alias.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case OrderPending:
		return OrderPending, true
	case OrderConfirmed:
		return OrderConfirmed, true
	case OrderInPreparation, "PREPARING":
		return OrderInPreparation, true
	case OrderReady:
		return OrderReady, true
	case OrderDelivered:
		return OrderDelivered, true
	case OrderCancelled:
		return OrderCancelled, true
	}
	return "", false
}

// Order - The Transaction Header
type Order struct {
	Base
	OrderNumber   string          `gorm:"uniqueIndex;size:40;not null" json:"orderNumber"`
	CustomerID    *uint           `gorm:"index" json:"customerId"`
	Customer      *Customer       `json:"customer,omitempty"`
	CounterID     uint            `gorm:"index;not null" json:"counterId"`
	Counter       *Counter        `json:"counter,omitempty"`
	Status        OrderStatus     `gorm:"size:20;index;not null" json:"status"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"totalAmount"`
	Discount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"discount"`
	Tax           decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"tax"`
	FinalAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"finalAmount"`
	PaymentMethod string          `gorm:"size:30" json:"paymentMethod"`
	Notes         string          `gorm:"size:500" json:"notes"`
	CreatedBy     uint            `gorm:"index" json:"createdBy"`
	Items         []OrderItem     `gorm:"constraint:OnDelete:CASCADE" json:"items"`
}

// OrderItem - one line of an order
type OrderItem struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	OrderID    uint            `gorm:"index;not null" json:"orderId"`
	ProductID  uint            `gorm:"index;not null" json:"productId"`
	Product    *Product        `json:"product,omitempty"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unitPrice"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"totalPrice"` // Quantity * UnitPrice
}

// POSTransaction - a walk-up sale
type POSTransaction struct {
	Base
	TransactionNumber string               `gorm:"uniqueIndex;size:40;not null" json:"transactionNumber"`
	CounterID         *uint                `gorm:"index" json:"counterId"`
	Counter           *Counter             `json:"counter,omitempty"`
	CustomerID        *uint                `gorm:"index" json:"customerId"`
	TotalAmount       decimal.Decimal      `gorm:"type:decimal(12,2);not null" json:"totalAmount"`
	Discount          decimal.Decimal      `gorm:"type:decimal(12,2);not null" json:"discount"`
	Tax               decimal.Decimal      `gorm:"type:decimal(12,2);not null" json:"tax"`
	FinalAmount       decimal.Decimal      `gorm:"type:decimal(12,2);not null" json:"finalAmount"`
	PaymentMethod     string               `gorm:"size:30" json:"paymentMethod"`
	CreatedBy         uint                 `gorm:"index" json:"createdBy"`
	Items             []POSTransactionItem `gorm:"constraint:OnDelete:CASCADE" json:"items"`
}

type POSTransactionItem struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	POSTransactionID uint            `gorm:"index;not null" json:"transactionId"`
	ProductID        uint            `gorm:"index;not null" json:"productId"`
	Product          *Product        `json:"product,omitempty"`
	Quantity         int             `gorm:"not null" json:"quantity"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unitPrice"`
	TotalPrice       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"totalPrice"`
}
