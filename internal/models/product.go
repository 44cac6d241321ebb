package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const DefaultLowStockThreshold = 10

type Product struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	Name              string          `gorm:"size:255;not null" json:"name"`
	Description       string          `gorm:"type:text" json:"description"`
	Price             decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	CategoryID        uint            `gorm:"index;not null" json:"category_id"`
	Brand             string          `gorm:"size:100" json:"brand"`
	Team              string          `gorm:"size:100" json:"team"`
	Sport             string          `gorm:"size:100;not null" json:"sport"`
	SizeOptions       SizeOptions     `gorm:"not null" json:"size_options"`
	StockQuantity     int             `gorm:"not null;check:chk_products_stock,stock_quantity >= 0" json:"stock_quantity"`
	LowStockThreshold int             `gorm:"not null" json:"low_stock_threshold"`
	SKU               *string         `gorm:"size:100;uniqueIndex" json:"sku,omitempty"`
	IsActive          bool            `gorm:"not null;index" json:"is_active"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// Threshold falls back to the store-wide default when the product has none.
func (p *Product) Threshold() int {
	if p.LowStockThreshold <= 0 {
		return DefaultLowStockThreshold
	}
	return p.LowStockThreshold
}

// ProductListItem is a product row as shown in listings.
type ProductListItem struct {
	Product
	CategoryName string `json:"category_name"`
	CategorySlug string `json:"category_slug"`
	PrimaryImage string `json:"primary_image"`
}

// ProductDetail is a product with its category and every image.
type ProductDetail struct {
	ProductListItem
	Images []ProductImage `gorm:"-" json:"images"`
}

type ProductImage struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ProductID     uint      `gorm:"index;not null" json:"product_id"`
	ImageURL      string    `gorm:"size:500;not null" json:"image_url"`
	ObjectKey     string    `gorm:"size:255" json:"-"`
	AltText       string    `gorm:"size:255" json:"alt_text"`
	OrderPosition int       `gorm:"not null" json:"order_position"`
	IsPrimary     bool      `gorm:"not null" json:"is_primary"`
	CreatedAt     time.Time `json:"created_at"`
}
