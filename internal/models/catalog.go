package models

import (
	"github.com/shopspring/decimal"
)

// Product - a sellable roti line
type Product struct {
	Base
	Name      string          `gorm:"size:100;not null" json:"name" binding:"required"`
	SKU       string          `gorm:"uniqueIndex;size:50;not null" json:"sku" binding:"required"`
	Category  string          `gorm:"size:50;index" json:"category"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unitPrice"`
	CostPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"costPrice"`
	Unit      string          `gorm:"size:20" json:"unit"`
	IsActive  bool            `gorm:"not null" json:"isActive"`
}

// RawMaterial - flour, oil, packaging...
type RawMaterial struct {
	Base
	Name         string          `gorm:"size:100;not null" json:"name" binding:"required"`
	Category     string          `gorm:"size:50" json:"category"`
	Unit         string          `gorm:"size:20" json:"unit" binding:"required"`
	Quantity     decimal.Decimal `gorm:"type:decimal(12,3)" json:"quantity"`
	CostPerUnit  decimal.Decimal `gorm:"type:decimal(12,2)" json:"costPerUnit"`
	ReorderLevel decimal.Decimal `gorm:"type:decimal(12,3)" json:"reorderLevel"`
	Supplier     string          `gorm:"size:100" json:"supplier"`
}

// ProductionBatch - one kitchen run of a product
type ProductionBatch struct {
	Base
	BatchNumber string   `gorm:"uniqueIndex;size:40;not null" json:"batchNumber" binding:"required"`
	ProductID   uint     `gorm:"index;not null" json:"productId" binding:"required"`
	Product     *Product `json:"product,omitempty"`
	Quantity    int      `json:"quantity" binding:"required,gt=0"`
	ProducedOn  string   `gorm:"size:10;index" json:"producedOn" binding:"required,datetime=2006-01-02"`
	Status      string   `gorm:"size:20" json:"status" binding:"omitempty,oneof=PLANNED IN_PROGRESS COMPLETED"`
	Notes       string   `gorm:"size:500" json:"notes"`
}

// Customer - a named buyer attached to orders
type Customer struct {
	Base
	Name     string `gorm:"size:100;not null" json:"name" binding:"required"`
	Phone    string `gorm:"size:20" json:"phone"`
	Email    string `gorm:"size:100" json:"email" binding:"omitempty,email"`
	Address  string `gorm:"size:255" json:"address"`
	Type     string `gorm:"size:20" json:"type"`
	IsActive bool   `gorm:"not null" json:"isActive"`
}

func (p *Product) SetDefaults() { p.IsActive = true }

func (c *Customer) SetDefaults() { c.IsActive = true }
