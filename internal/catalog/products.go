package catalog

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"dkstore_back_end/internal/apperr"
	"dkstore_back_end/internal/models"
)

const primaryImageSQL = `COALESCE((SELECT pi.image_url FROM product_images pi
	WHERE pi.product_id = p.id AND pi.is_primary = ? ORDER BY pi.order_position LIMIT 1), '') AS primary_image`

// ProductFilter narrows the public product listing. Empty fields are ignored.
type ProductFilter struct {
	Category string           `form:"category"`
	Sport    string           `form:"sport"`
	Team     string           `form:"team"`
	Brand    string           `form:"brand"`
	Search   string           `form:"search"`
	MinPrice *decimal.Decimal `form:"-"`
	MaxPrice *decimal.Decimal `form:"-"`
	models.PageRequest
}

func (f ProductFilter) scopes() []func(*gorm.DB) *gorm.DB {
	var scopes []func(*gorm.DB) *gorm.DB
	if f.Category != "" {
		scopes = append(scopes, where("c.slug = ?", f.Category))
	}
	if f.Sport != "" {
		scopes = append(scopes, contains("p.sport", f.Sport))
	}
	if f.Team != "" {
		scopes = append(scopes, contains("p.team", f.Team))
	}
	if f.Brand != "" {
		scopes = append(scopes, contains("p.brand", f.Brand))
	}
	if f.MinPrice != nil {
		scopes = append(scopes, where("p.price >= ?", *f.MinPrice))
	}
	if f.MaxPrice != nil {
		scopes = append(scopes, where("p.price <= ?", *f.MaxPrice))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		pattern := "%" + strings.ToLower(s) + "%"
		scopes = append(scopes, where(
			"(LOWER(p.name) LIKE ? OR LOWER(p.description) LIKE ? OR LOWER(p.team) LIKE ?)",
			pattern, pattern, pattern))
	}
	return scopes
}

func where(query string, args ...any) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB { return db.Where(query, args...) }
}

func contains(column, value string) func(*gorm.DB) *gorm.DB {
	return where("LOWER("+column+") LIKE ?", "%"+strings.ToLower(strings.TrimSpace(value))+"%")
}

func (s *Service) productQuery(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Table("products AS p").
		Joins("LEFT JOIN categories c ON c.id = p.category_id").
		Where("p.is_active = ?", true)
}

func (s *Service) selectListItem(q *gorm.DB) *gorm.DB {
	return q.Select("p.*, COALESCE(c.name, '') AS category_name, COALESCE(c.slug, '') AS category_slug, "+primaryImageSQL, true)
}

// ListProducts returns one page of active products, newest first.
func (s *Service) ListProducts(ctx context.Context, f ProductFilter) ([]models.ProductListItem, models.Pagination, error) {
	page := f.PageRequest.Normalize()
	base := s.productQuery(ctx).Scopes(f.scopes()...).Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, models.Pagination{}, dbError(err, "")
	}

	items := []models.ProductListItem{}
	err := s.selectListItem(base).
		Order("p.created_at DESC, p.id DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Scan(&items).Error
	if err != nil {
		return nil, models.Pagination{}, dbError(err, "")
	}
	return items, models.NewPagination(page, total), nil
}

// GetProduct returns an active product with its category and images.
func (s *Service) GetProduct(ctx context.Context, id uint) (*models.ProductDetail, error) {
	var rows []models.ProductListItem
	err := s.selectListItem(s.productQuery(ctx).Where("p.id = ?", id)).Limit(1).Scan(&rows).Error
	if err != nil {
		return nil, dbError(err, "")
	}
	if len(rows) == 0 {
		return nil, apperr.NotFound("product not found")
	}

	images, err := s.ListImages(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.ProductDetail{ProductListItem: rows[0], Images: images}, nil
}

// ProductInput carries the fields of a new product.
type ProductInput struct {
	Name              string             `json:"name"`
	Description       string             `json:"description"`
	Price             decimal.Decimal    `json:"price"`
	CategoryID        uint               `json:"category_id"`
	Brand             string             `json:"brand"`
	Team              string             `json:"team"`
	Sport             string             `json:"sport"`
	SizeOptions       models.SizeOptions `json:"size_options"`
	StockQuantity     int                `json:"stock_quantity"`
	LowStockThreshold int                `json:"low_stock_threshold"`
	SKU               string             `json:"sku"`
}

// ProductPatch carries a partial update; nil fields are left untouched.
type ProductPatch struct {
	Name              *string             `json:"name"`
	Description       *string             `json:"description"`
	Price             *decimal.Decimal    `json:"price"`
	CategoryID        *uint               `json:"category_id"`
	Brand             *string             `json:"brand"`
	Team              *string             `json:"team"`
	Sport             *string             `json:"sport"`
	SizeOptions       *models.SizeOptions `json:"size_options"`
	StockQuantity     *int                `json:"stock_quantity"`
	LowStockThreshold *int                `json:"low_stock_threshold"`
	SKU               *string             `json:"sku"`
	IsActive          *bool               `json:"is_active"`
}

func validateProduct(p *models.Product) error {
	var missing []string
	if strings.TrimSpace(p.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(p.Sport) == "" {
		missing = append(missing, "sport")
	}
	if p.CategoryID == 0 {
		missing = append(missing, "category_id")
	}
	if len(missing) > 0 {
		return apperr.Validation("missing required fields: %s", strings.Join(missing, ", "))
	}
	if !p.Price.IsPositive() {
		return apperr.Validation("price must be greater than zero")
	}
	if p.StockQuantity < 0 {
		return apperr.Validation("stock_quantity cannot be negative")
	}
	return nil
}

func (s *Service) checkCategory(tx *gorm.DB, id uint) error {
	var n int64
	if err := tx.Model(&models.Category{}).Where("id = ? AND is_active = ?", id, true).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return apperr.Validation("category not found or inactive")
	}
	return nil
}

func (s *Service) checkSKU(tx *gorm.DB, sku *string, exceptID uint) error {
	if sku == nil {
		return nil
	}
	var n int64
	if err := tx.Model(&models.Product{}).Where("sku = ? AND id <> ?", *sku, exceptID).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return apperr.Duplicate("SKU %s already exists", *sku)
	}
	return nil
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// CreateProduct inserts an active product.
func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	p := models.Product{
		Name:              strings.TrimSpace(in.Name),
		Description:       in.Description,
		Price:             in.Price.Round(2),
		CategoryID:        in.CategoryID,
		Brand:             in.Brand,
		Team:              in.Team,
		Sport:             strings.TrimSpace(in.Sport),
		SizeOptions:       in.SizeOptions,
		StockQuantity:     in.StockQuantity,
		LowStockThreshold: in.LowStockThreshold,
		SKU:               optionalString(in.SKU),
		IsActive:          true,
	}
	if p.SizeOptions == nil {
		p.SizeOptions = models.SizeOptions{}
	}
	if err := validateProduct(&p); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.checkCategory(tx, p.CategoryID); err != nil {
			return err
		}
		if err := s.checkSKU(tx, p.SKU, 0); err != nil {
			return err
		}
		return tx.Create(&p).Error
	})
	if err != nil {
		return nil, dbError(err, "")
	}

	s.log.InfoContext(ctx, "product created", "product_id", p.ID, "name", p.Name)
	return &p, nil
}

// UpdateProduct applies a partial update to an existing product.
func (s *Service) UpdateProduct(ctx context.Context, id uint, patch ProductPatch) (*models.Product, error) {
	var p models.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&p, id).Error; err != nil {
			return err
		}
		categoryChanged := patch.CategoryID != nil && *patch.CategoryID != p.CategoryID
		applyPatch(&p, patch)

		if err := validateProduct(&p); err != nil {
			return err
		}
		if categoryChanged {
			if err := s.checkCategory(tx, p.CategoryID); err != nil {
				return err
			}
		}
		if patch.SKU != nil {
			if err := s.checkSKU(tx, p.SKU, p.ID); err != nil {
				return err
			}
		}
		return tx.Save(&p).Error
	})
	if err != nil {
		return nil, dbError(err, "product not found")
	}

	s.log.InfoContext(ctx, "product updated", "product_id", p.ID)
	return &p, nil
}

func applyPatch(p *models.Product, patch ProductPatch) {
	if patch.Name != nil {
		p.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Price != nil {
		p.Price = patch.Price.Round(2)
	}
	if patch.CategoryID != nil {
		p.CategoryID = *patch.CategoryID
	}
	if patch.Brand != nil {
		p.Brand = *patch.Brand
	}
	if patch.Team != nil {
		p.Team = *patch.Team
	}
	if patch.Sport != nil {
		p.Sport = strings.TrimSpace(*patch.Sport)
	}
	if patch.SizeOptions != nil {
		p.SizeOptions = *patch.SizeOptions
	}
	if patch.StockQuantity != nil {
		p.StockQuantity = *patch.StockQuantity
	}
	if patch.LowStockThreshold != nil {
		p.LowStockThreshold = *patch.LowStockThreshold
	}
	if patch.SKU != nil {
		p.SKU = optionalString(*patch.SKU)
	}
	if patch.IsActive != nil {
		p.IsActive = *patch.IsActive
	}
}

// DeleteProduct deactivates a product; order history keeps referencing it.
func (s *Service) DeleteProduct(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", id).
		Update("is_active", false)
	if res.Error != nil {
		return dbError(res.Error, "")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("product not found")
	}
	s.log.InfoContext(ctx, "product deactivated", "product_id", id)
	return nil
}
