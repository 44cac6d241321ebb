package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

const DefaultPaymentMethod = "credit_card"

// ShippingAddress is stored as a JSON document on the order row.
type ShippingAddress struct {
	Street       string `json:"street"`
	Number       string `json:"number,omitempty"`
	Complement   string `json:"complement,omitempty"`
	Neighborhood string `json:"neighborhood,omitempty"`
	City         string `json:"city"`
	State        string `json:"state,omitempty"`
	Zipcode      string `json:"zipcode"`
	Country      string `json:"country,omitempty"`
}

// Missing lists the required fields left blank.
func (a ShippingAddress) Missing() []string {
	var missing []string
	if strings.TrimSpace(a.Street) == "" {
		missing = append(missing, "street")
	}
	if strings.TrimSpace(a.City) == "" {
		missing = append(missing, "city")
	}
	if strings.TrimSpace(a.Zipcode) == "" {
		missing = append(missing, "zipcode")
	}
	return missing
}

func (a ShippingAddress) Value() (driver.Value, error) {
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (a *ShippingAddress) Scan(value any) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*a = ShippingAddress{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported shipping_address type %T", value)
	}
	return json.Unmarshal(raw, a)
}

func (ShippingAddress) GormDataType() string { return "text" }

type Order struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	OrderNumber     string          `gorm:"size:32;not null;uniqueIndex" json:"order_number"`
	UserID          uint            `gorm:"not null;index" json:"user_id"`
	TotalAmount     decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"total_amount"`
	Status          OrderStatus     `gorm:"size:20;not null;index" json:"status"`
	PaymentMethod   string          `gorm:"size:50;not null" json:"payment_method"`
	PaymentStatus   PaymentStatus   `gorm:"size:20;not null;index" json:"payment_status"`
	ShippingAddress ShippingAddress `gorm:"not null" json:"shipping_address"`
	Notes           string          `gorm:"type:text" json:"notes,omitempty"`
	TrackingCode    *string         `gorm:"size:100" json:"tracking_code,omitempty"`
	CreatedAt       time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Items           []OrderItem     `gorm:"-" json:"items,omitempty"`
}

// OrderItem freezes the price and name of a product at checkout time.
type OrderItem struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	OrderID      uint            `gorm:"not null;index" json:"order_id"`
	ProductID    uint            `gorm:"not null;index" json:"product_id"`
	ProductName  string          `gorm:"size:255;not null" json:"product_name"`
	Quantity     int             `gorm:"not null" json:"quantity"`
	Size         string          `gorm:"size:20;not null" json:"size"`
	UnitPrice    decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"unit_price"`
	TotalPrice   decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"total_price"`
	ProductImage string          `gorm:"->;-:migration" json:"product_image,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// AdminOrder is an order row enriched with its customer.
type AdminOrder struct {
	Order
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
}

type OrderStats struct {
	TotalOrders  int64                   `json:"total_orders"`
	TotalRevenue decimal.Decimal         `json:"total_revenue"`
	ByStatus     map[OrderStatus]int64   `json:"by_status"`
	ByPayment    map[PaymentStatus]int64 `json:"by_payment_status"`
}
