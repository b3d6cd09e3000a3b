package models

import (
	"time"
)

// Base carries the columns every table shares.
type Base struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Identity returns a copy of the shared columns.
func (b *Base) Identity() Base { return *b }

// Restore puts back the columns a client payload must never change.
func (b *Base) Restore(orig Base) {
	b.ID = orig.ID
	b.CreatedAt = orig.CreatedAt
}

// User - an operator of the ERP
type User struct {
	Base
	Name         string     `gorm:"size:100;not null" json:"name"`
	Email        string     `gorm:"uniqueIndex;size:100;not null" json:"email"`
	PasswordHash string     `json:"-"` // Never return this in JSON
	Role         string     `gorm:"size:20;not null" json:"role"`
	IsActive     bool       `gorm:"not null" json:"isActive"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
}

// AuditLog - who changed what
type AuditLog struct {
	Base
	UserID   uint   `gorm:"index" json:"userId"`
	Action   string `gorm:"size:50;not null" json:"action"`
	Entity   string `gorm:"size:50;index" json:"entity"`
	EntityID uint   `gorm:"index" json:"entityId"`
	Details  string `gorm:"type:text" json:"details"`
}

// Setting - key/value application settings
type Setting struct {
	Base
	Key         string `gorm:"uniqueIndex;size:100;not null" json:"key" binding:"required"`
	Value       string `gorm:"type:text" json:"value"`
	Description string `gorm:"size:255" json:"description"`
}

// All lists every model for AutoMigrate, parents before children.
func All() []interface{} {
	return []interface{}{
		&User{}, &AuditLog{}, &Setting{},
		&Franchise{}, &Counter{}, &Customer{},
		&Product{}, &RawMaterial{}, &ProductionBatch{},
		&Order{}, &OrderItem{},
		&POSTransaction{}, &POSTransactionItem{},
		&CounterInventory{}, &CounterOrder{}, &CounterOrderItem{},
		&RoyaltyPayment{}, &Hotel{}, &Hostel{}, &SupplyOrder{},
		&Employee{}, &Attendance{}, &Payroll{},
		&Account{}, &Expense{}, &TaxRecord{},
	}
}
