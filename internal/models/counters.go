package models

// Counter - a distribution/sale point, optionally run by a franchise
type Counter struct {
	Base
	Name         string     `gorm:"size:100;not null" json:"name" binding:"required"`
	Location     string     `gorm:"size:255" json:"location" binding:"required"`
	ManagerName  string     `gorm:"size:100" json:"managerName"`
	ManagerPhone string     `gorm:"size:20" json:"managerPhone"`
	FranchiseID  *uint      `gorm:"index" json:"franchiseId"`
	Franchise    *Franchise `json:"franchise,omitempty"`
	IsActive     bool       `gorm:"not null" json:"isActive"`
}

// CounterInventory is the per-day ledger of one packet size at one counter.
// Remaining* always equals Total* minus Sold*.
type CounterInventory struct {
	Base
	CounterID        uint   `gorm:"not null;uniqueIndex:idx_counter_day_packet,priority:1" json:"counterId"`
	BusinessDate     string `gorm:"size:10;not null;uniqueIndex:idx_counter_day_packet,priority:2" json:"date"`
	PacketSize       int    `gorm:"not null;uniqueIndex:idx_counter_day_packet,priority:3" json:"packetSize"`
	TotalPackets     int    `gorm:"not null" json:"totalPackets"`
	TotalRotis       int    `gorm:"not null" json:"totalRotis"`
	SoldPackets      int    `gorm:"not null" json:"soldPackets"`
	SoldRotis        int    `gorm:"not null" json:"soldRotis"`
	RemainingPackets int    `gorm:"not null" json:"remainingPackets"`
	RemainingRotis   int    `gorm:"not null" json:"remainingRotis"`
}

// CounterOrder - one delivery of packets to a counter
type CounterOrder struct {
	Base
	CounterID    uint               `gorm:"index;not null" json:"counterId"`
	BusinessDate string             `gorm:"size:10;index;not null" json:"date"`
	TotalPackets int                `json:"totalPackets"`
	TotalRotis   int                `json:"totalRotis"`
	Notes        string             `gorm:"size:500" json:"notes"`
	CreatedBy    uint               `json:"createdBy"`
	Items        []CounterOrderItem `gorm:"constraint:OnDelete:CASCADE" json:"items"`
}

type CounterOrderItem struct {
	ID             uint `gorm:"primaryKey" json:"id"`
	CounterOrderID uint `gorm:"index;not null" json:"counterOrderId"`
	PacketSize     int  `json:"packetSize"`
	Quantity       int  `json:"quantity"`
	Rotis          int  `json:"rotis"`
}

// SetDefaults runs before a create payload is decoded, so an explicit
// "isActive": false still wins.
func (c *Counter) SetDefaults() { c.IsActive = true }
