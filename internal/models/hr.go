package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Employee struct {
	Base
	Name        string          `gorm:"size:100;not null" json:"name" binding:"required"`
	Email       string          `gorm:"size:100" json:"email" binding:"omitempty,email"`
	Phone       string          `gorm:"size:20" json:"phone"`
	Designation string          `gorm:"size:50" json:"designation"`
	Department  string          `gorm:"size:50;index" json:"department"`
	JoinDate    string          `gorm:"size:10" json:"joinDate" binding:"omitempty,datetime=2006-01-02"`
	BasicSalary decimal.Decimal `gorm:"type:decimal(12,2)" json:"basicSalary"`
	CounterID   *uint           `gorm:"index" json:"counterId"`
	UserID      *uint           `gorm:"index" json:"userId"`
	IsActive    bool            `gorm:"not null" json:"isActive"`
}

type Attendance struct {
	Base
	EmployeeID uint   `gorm:"not null;uniqueIndex:idx_attendance_day,priority:1" json:"employeeId" binding:"required"`
	Date       string `gorm:"size:10;not null;uniqueIndex:idx_attendance_day,priority:2" json:"date" binding:"required,datetime=2006-01-02"`
	Status     string `gorm:"size:20;not null" json:"status" binding:"required,oneof=PRESENT ABSENT LEAVE HALF_DAY"`
	CheckIn    string `gorm:"size:5" json:"checkIn" binding:"omitempty,datetime=15:04"`
	CheckOut   string `gorm:"size:5" json:"checkOut" binding:"omitempty,datetime=15:04"`
}

// Payroll - one month of pay for one employee
type Payroll struct {
	Base
	EmployeeID  uint            `gorm:"not null;uniqueIndex:idx_payroll_month,priority:1" json:"employeeId" binding:"required"`
	Month       string          `gorm:"size:7;not null;uniqueIndex:idx_payroll_month,priority:2" json:"month" binding:"required,datetime=2006-01"`
	BasicSalary decimal.Decimal `gorm:"type:decimal(12,2)" json:"basicSalary"`
	Allowances  decimal.Decimal `gorm:"type:decimal(12,2)" json:"allowances"`
	Deductions  decimal.Decimal `gorm:"type:decimal(12,2)" json:"deductions"`
	NetSalary   decimal.Decimal `gorm:"type:decimal(12,2)" json:"netSalary"`
	Status      string          `gorm:"size:20" json:"status" binding:"omitempty,oneof=PENDING PAID"`
	PaidOn      string          `gorm:"size:10" json:"paidOn" binding:"omitempty,datetime=2006-01-02"`
}

// BeforeSave derives NetSalary.
func (p *Payroll) BeforeSave(tx *gorm.DB) error {
	p.NetSalary = p.BasicSalary.Add(p.Allowances).Sub(p.Deductions)
	if p.Status == "" {
		p.Status = "PENDING"
	}
	return nil
}

func (e *Employee) SetDefaults() { e.IsActive = true }
