package models

import "time"

type MovementType string

const (
	MovementSale       MovementType = "sale"
	MovementRestock    MovementType = "restock"
	MovementAdjustment MovementType = "adjustment"
)

type StockMovement struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	ProductID uint         `gorm:"not null;index" json:"product_id"`
	Type      MovementType `gorm:"size:20;not null" json:"type"`
	Quantity  int          `gorm:"not null" json:"quantity"`
	PrevStock int          `gorm:"not null" json:"prev_stock"`
	NewStock  int          `gorm:"not null" json:"new_stock"`
	Reason    string       `gorm:"size:255" json:"reason"`
	OrderID   *uint        `gorm:"index" json:"order_id,omitempty"`
	UserID    uint         `json:"user_id"`
	CreatedAt time.Time    `gorm:"index" json:"created_at"`
}

// LowStockProduct is a row of the low stock report.
type LowStockProduct struct {
	ProductID     uint   `json:"product_id"`
	ProductName   string `json:"product_name"`
	SKU           string `json:"sku"`
	StockQuantity int    `json:"stock_quantity"`
	Threshold     int    `json:"threshold"`
	OutOfStock    bool   `json:"out_of_stock"`
}

type AuditLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"index" json:"user_id"`
	UserEmail  string    `gorm:"size:255" json:"user_email"`
	Action     string    `gorm:"size:64;not null;index" json:"action"`
	Resource   string    `gorm:"size:64;not null" json:"resource"`
	ResourceID string    `gorm:"size:64" json:"resource_id"`
	NewValue   string    `gorm:"type:text" json:"new_value,omitempty"`
	IPAddress  string    `gorm:"size:64" json:"ip_address"`
	UserAgent  string    `gorm:"size:255" json:"user_agent"`
	Success    bool      `gorm:"not null" json:"success"`
	ErrorMsg   string    `gorm:"size:255" json:"error_msg,omitempty"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}
