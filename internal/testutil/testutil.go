// Package testutil builds throwaway stores and fixtures for package tests.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"dkstore_back_end/internal/config"
	"dkstore_back_end/internal/database"
	"dkstore_back_end/internal/models"
)

var seq atomic.Int64

// NewDB returns a migrated in-memory SQLite store closed at test end.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	name := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", seq.Add(1))
	db, err := database.Open(config.Database{
		Driver:     "sqlite",
		SQLitePath: name,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

// Category inserts an active category.
func Category(t testing.TB, db *gorm.DB, slug string) models.Category {
	t.Helper()
	c := models.Category{Name: slug, Slug: slug, IsActive: true}
	require.NoError(t, db.Create(&c).Error)
	return c
}

// ProductOpt tweaks a fixture product before insertion.
type ProductOpt func(*models.Product)

func WithStock(n int) ProductOpt       { return func(p *models.Product) { p.StockQuantity = n } }
func WithPrice(s string) ProductOpt    { return func(p *models.Product) { p.Price = decimal.RequireFromString(s) } }
func WithSizes(s ...string) ProductOpt { return func(p *models.Product) { p.SizeOptions = s } }
func Inactive() ProductOpt             { return func(p *models.Product) { p.IsActive = false } }

func WithSKU(sku string) ProductOpt {
	return func(p *models.Product) { p.SKU = &sku }
}

// Product inserts an active product, creating a category when categoryID is 0.
func Product(t testing.TB, db *gorm.DB, name string, opts ...ProductOpt) models.Product {
	t.Helper()
	p := models.Product{
		Name:          name,
		Price:         decimal.RequireFromString("100.00"),
		Sport:         "Futebol",
		SizeOptions:   models.SizeOptions{"P", "M", "G"},
		StockQuantity: 10,
		IsActive:      true,
	}
	for _, opt := range opts {
		opt(&p)
	}
	if p.CategoryID == 0 {
		c := Category(t, db, fmt.Sprintf("cat-%d", seq.Add(1)))
		p.CategoryID = c.ID
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

// User inserts an active customer.
func User(t testing.TB, db *gorm.DB, email string) models.User {
	t.Helper()
	u := models.User{
		Name:     "Test " + email,
		Email:    email,
		Password: "not-a-hash",
		CPF:      fmt.Sprintf("%011d", seq.Add(1)),
		Role:     models.RoleCustomer,
		IsActive: true,
	}
	require.NoError(t, db.Create(&u).Error)
	return u
}

// StockOf reads the current stock of a product.
func StockOf(t testing.TB, db *gorm.DB, productID uint) int {
	t.Helper()
	var p models.Product
	require.NoError(t, db.First(&p, productID).Error)
	return p.StockQuantity
}
