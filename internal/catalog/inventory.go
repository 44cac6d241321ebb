package catalog

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"dkstore_back_end/internal/apperr"
	"dkstore_back_end/internal/models"
)

const (
	defaultMovementLimit = 50
	maxMovementLimit     = 100
)

type StockUpdate struct {
	Type     models.MovementType `json:"type" binding:"required"`
	Quantity int                 `json:"quantity"`
	Reason   string              `json:"reason" binding:"required"`
}

// UpdateStock applies a manual restock (relative) or adjustment (absolute)
// and records the movement.
func (s *Service) UpdateStock(ctx context.Context, productID, actorID uint, in StockUpdate) (*models.StockMovement, error) {
	if strings.TrimSpace(in.Reason) == "" {
		return nil, apperr.Validation("reason is required")
	}
	switch in.Type {
	case models.MovementRestock:
		if in.Quantity <= 0 {
			return nil, apperr.Validation("restock quantity must be positive")
		}
	case models.MovementAdjustment:
	default:
		return nil, apperr.Validation("invalid movement type %q", in.Type)
	}

	var (
		p        models.Product
		movement models.StockMovement
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&p, productID).Error; err != nil {
			return err
		}

		newStock := in.Quantity
		if in.Type == models.MovementRestock {
			newStock = p.StockQuantity + in.Quantity
		}
		if newStock < 0 {
			return apperr.Validation("stock cannot be negative")
		}

		movement = models.StockMovement{
			ProductID: p.ID,
			Type:      in.Type,
			Quantity:  newStock - p.StockQuantity,
			PrevStock: p.StockQuantity,
			NewStock:  newStock,
			Reason:    in.Reason,
			UserID:    actorID,
		}
		if err := tx.Model(&p).Update("stock_quantity", newStock).Error; err != nil {
			return err
		}
		return tx.Create(&movement).Error
	})
	if err != nil {
		return nil, dbError(err, "product not found")
	}

	s.log.InfoContext(ctx, "stock updated",
		"product_id", p.ID, "type", in.Type, "prev", movement.PrevStock, "new", movement.NewStock)
	if movement.NewStock <= p.Threshold() {
		s.log.WarnContext(ctx, "low stock", "product_id", p.ID, "name", p.Name,
			"stock", movement.NewStock, "threshold", p.Threshold())
	}
	return &movement, nil
}

// lockForUpdate takes a row lock where the dialect supports it.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// ListMovements returns the latest movements, optionally for one product.
func (s *Service) ListMovements(ctx context.Context, productID uint, limit int) ([]models.StockMovement, error) {
	if limit <= 0 {
		limit = defaultMovementLimit
	}
	if limit > maxMovementLimit {
		limit = maxMovementLimit
	}

	q := s.db.WithContext(ctx).Order("created_at DESC, id DESC").Limit(limit)
	if productID != 0 {
		q = q.Where("product_id = ?", productID)
	}
	movements := []models.StockMovement{}
	if err := q.Find(&movements).Error; err != nil {
		return nil, dbError(err, "")
	}
	return movements, nil
}

// LowStock lists active products at or below their threshold, emptiest first.
func (s *Service) LowStock(ctx context.Context) ([]models.LowStockProduct, error) {
	rows := []models.LowStockProduct{}
	err := s.db.WithContext(ctx).
		Table("products").
		Select(`id AS product_id, name AS product_name, COALESCE(sku, '') AS sku, stock_quantity,
			CASE WHEN low_stock_threshold > 0 THEN low_stock_threshold ELSE ? END AS threshold,
			stock_quantity = 0 AS out_of_stock`, models.DefaultLowStockThreshold).
		Where("is_active = ?", true).
		Where("stock_quantity <= CASE WHEN low_stock_threshold > 0 THEN low_stock_threshold ELSE ? END",
			models.DefaultLowStockThreshold).
		Order("stock_quantity, id").
		Scan(&rows).Error
	if err != nil {
		return nil, dbError(err, "")
	}
	return rows, nil
}
