package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxCartItemQuantity caps the quantity of a single cart line.
const MaxCartItemQuantity = 10

// CartItem is one (user, product, size) line of a cart.
type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_cart_user_product_size" json:"user_id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_cart_user_product_size" json:"product_id"`
	Size      string    `gorm:"size:20;not null;uniqueIndex:idx_cart_user_product_size" json:"size"`
	Quantity  int       `gorm:"not null;check:chk_cart_items_quantity,quantity BETWEEN 1 AND 10" json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CartLine is a cart item joined with the current state of its product.
type CartLine struct {
	ID            uint            `json:"id"`
	ProductID     uint            `json:"product_id"`
	ProductName   string          `json:"product_name"`
	Price         decimal.Decimal `json:"price"`
	Size          string          `json:"size"`
	Quantity      int             `json:"quantity"`
	StockQuantity int             `json:"stock_quantity"`
	ProductImage  string          `json:"product_image"`
	CategoryName  string          `json:"category_name"`
	ItemTotal     decimal.Decimal `gorm:"-" json:"item_total"`
	CreatedAt     time.Time       `json:"created_at"`
}

type CartSummary struct {
	TotalItems    int    `json:"totalItems"`
	TotalQuantity int    `json:"totalQuantity"`
	TotalAmount   string `json:"totalAmount"`
}

type Cart struct {
	Items   []CartLine  `json:"items"`
	Summary CartSummary `json:"summary"`
}

// NewCart computes line totals and the summary.
func NewCart(lines []CartLine) Cart {
	if lines == nil {
		lines = []CartLine{}
	}
	total := decimal.Zero
	qty := 0
	for i := range lines {
		lines[i].ItemTotal = lines[i].Price.Mul(decimal.NewFromInt(int64(lines[i].Quantity)))
		total = total.Add(lines[i].ItemTotal)
		qty += lines[i].Quantity
	}
	return Cart{
		Items: lines,
		Summary: CartSummary{
			TotalItems:    len(lines),
			TotalQuantity: qty,
			TotalAmount:   total.StringFixed(2),
		},
	}
}
