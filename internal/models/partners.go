package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Franchise - an operator running one or more counters
type Franchise struct {
	Base
	Name        string          `gorm:"size:100;not null" json:"name" binding:"required"`
	OwnerName   string          `gorm:"size:100" json:"ownerName"`
	Phone       string          `gorm:"size:20" json:"phone"`
	Email       string          `gorm:"size:100" json:"email" binding:"omitempty,email"`
	Address     string          `gorm:"size:255" json:"address"`
	RoyaltyRate decimal.Decimal `gorm:"type:decimal(5,2)" json:"royaltyRate"` // percent, reporting only
	IsActive    bool            `gorm:"not null" json:"isActive"`
	Counters    []Counter       `json:"counters,omitempty"`
}

// RoyaltyPayment - money received from a franchise
type RoyaltyPayment struct {
	Base
	FranchiseID uint            `gorm:"index;not null" json:"franchiseId" binding:"required"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	PeriodStart string          `gorm:"size:10" json:"periodStart" binding:"omitempty,datetime=2006-01-02"`
	PeriodEnd   string          `gorm:"size:10" json:"periodEnd" binding:"omitempty,datetime=2006-01-02"`
	PaidOn      string          `gorm:"size:10" json:"paidOn" binding:"required,datetime=2006-01-02"`
	Reference   string          `gorm:"size:100" json:"reference"`
}

type Hotel struct {
	Base
	Name          string `gorm:"size:100;not null" json:"name" binding:"required"`
	ContactPerson string `gorm:"size:100" json:"contactPerson"`
	Phone         string `gorm:"size:20" json:"phone"`
	Address       string `gorm:"size:255" json:"address"`
	IsActive      bool   `gorm:"not null" json:"isActive"`
}

type Hostel struct {
	Base
	Name          string `gorm:"size:100;not null" json:"name" binding:"required"`
	ContactPerson string `gorm:"size:100" json:"contactPerson"`
	Phone         string `gorm:"size:20" json:"phone"`
	Address       string `gorm:"size:255" json:"address"`
	Capacity      int    `json:"capacity" binding:"gte=0"`
	IsActive      bool   `gorm:"not null" json:"isActive"`
}

// SupplyOrder - a bulk roti order placed by a hotel or hostel
type SupplyOrder struct {
	Base
	ClientType   string          `gorm:"size:10;index;not null" json:"clientType" binding:"required,oneof=HOTEL HOSTEL"`
	ClientID     uint            `gorm:"index;not null" json:"clientId" binding:"required"`
	PacketSize   int             `json:"packetSize" binding:"required,gt=0"`
	Quantity     int             `json:"quantity" binding:"required,gt=0"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(12,2)" json:"unitPrice"`
	Amount       decimal.Decimal `gorm:"type:decimal(12,2)" json:"amount"`
	DeliveryDate string          `gorm:"size:10;index" json:"deliveryDate" binding:"required,datetime=2006-01-02"`
	Status       string          `gorm:"size:20" json:"status" binding:"omitempty,oneof=PENDING DELIVERED CANCELLED"`
}

// BeforeSave keeps Amount derived from the line.
func (s *SupplyOrder) BeforeSave(tx *gorm.DB) error {
	s.Amount = s.UnitPrice.Mul(decimal.NewFromInt(int64(s.Quantity))).Round(2)
	if s.Status == "" {
		s.Status = "PENDING"
	}
	return nil
}

func (f *Franchise) SetDefaults() { f.IsActive = true }

func (h *Hotel) SetDefaults() { h.IsActive = true }

func (h *Hostel) SetDefaults() { h.IsActive = true }
