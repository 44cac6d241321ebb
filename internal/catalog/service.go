// Package catalog serves products, categories, product images and stock.
package catalog

import (
	"context"
	"errors"
	"log/slog"

	"gorm.io/gorm"

	"dkstore_back_end/internal/apperr"
	"dkstore_back_end/internal/cache"
	"dkstore_back_end/internal/models"
)

type Service struct {
	db    *gorm.DB
	cache cache.Store
	log   *slog.Logger
}

// NewService builds the catalog. store may be nil.
func NewService(db *gorm.DB, store cache.Store) *Service {
	return &Service{db: db, cache: store, log: slog.Default().With("component", "catalog")}
}

// GetActiveProduct returns the product if it exists and is active.
func (s *Service) GetActiveProduct(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	err := s.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("product not found or inactive")
	}
	if err != nil {
		return nil, apperr.Internal(err, "failed to load product")
	}
	return &p, nil
}

func dbError(err error, notFound string) error {
	var appErr *apperr.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.NotFound("%s", notFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.Duplicate("record already exists")
	default:
		return apperr.Internal(err, "database error")
	}
}
