package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ExpensePending  = "PENDING"
	ExpenseApproved = "APPROVED"
	ExpenseRejected = "REJECTED"
)

type Account struct {
	Base
	Code        string          `gorm:"uniqueIndex;size:20;not null" json:"code" binding:"required"`
	Name        string          `gorm:"size:100;not null" json:"name" binding:"required"`
	Type        string          `gorm:"size:20;not null" json:"type" binding:"required,oneof=ASSET LIABILITY EQUITY INCOME EXPENSE"`
	Balance     decimal.Decimal `gorm:"type:decimal(14,2)" json:"balance"`
	Description string          `gorm:"size:255" json:"description"`
}

// Expense - money spent; only APPROVED rows count toward profit and loss
type Expense struct {
	Base
	Category    string          `gorm:"size:50;index;not null" json:"category" binding:"required"`
	Description string          `gorm:"size:255" json:"description"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	ExpenseDate string          `gorm:"size:10;index;not null" json:"expenseDate" binding:"required,datetime=2006-01-02"`
	Status      string          `gorm:"size:20;index;not null" json:"status"`
	AccountID   *uint           `gorm:"index" json:"accountId"`
	CreatedBy   uint            `json:"createdBy"`
	ApprovedBy  *uint           `json:"approvedBy,omitempty"`
	ApprovedAt  *time.Time      `json:"approvedAt,omitempty"`
}

type TaxRecord struct {
	Base
	Period        string          `gorm:"size:7;index;not null" json:"period" binding:"required,datetime=2006-01"`
	TaxType       string          `gorm:"size:30;not null" json:"taxType" binding:"required"`
	TaxableAmount decimal.Decimal `gorm:"type:decimal(14,2)" json:"taxableAmount"`
	TaxAmount     decimal.Decimal `gorm:"type:decimal(14,2)" json:"taxAmount"`
	Status        string          `gorm:"size:20" json:"status" binding:"omitempty,oneof=PENDING FILED PAID"`
	FiledOn       string          `gorm:"size:10" json:"filedOn" binding:"omitempty,datetime=2006-01-02"`
}
