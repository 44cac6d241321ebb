package catalog

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"dkstore_back_end/internal/apperr"
	"dkstore_back_end/internal/models"
)

// MaxProductImages caps the gallery of a single product.
const MaxProductImages = 10

// NewImage describes an uploaded object to attach to a product.
type NewImage struct {
	URL       string
	ObjectKey string
	AltText   string
}

func (s *Service) ListImages(ctx context.Context, productID uint) ([]models.ProductImage, error) {
	images := []models.ProductImage{}
	err := s.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("is_primary DESC, order_position, id").
		Find(&images).Error
	if err != nil {
		return nil, dbError(err, "")
	}
	return images, nil
}

func (s *Service) requireProduct(tx *gorm.DB, productID uint) error {
	var n int64
	if err := tx.Model(&models.Product{}).Where("id = ?", productID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("product not found")
	}
	return nil
}

// AddImages appends images after the existing ones. The first image of a
// product without a primary image becomes primary.
func (s *Service) AddImages(ctx context.Context, productID uint, uploads []NewImage) ([]models.ProductImage, error) {
	if len(uploads) == 0 {
		return nil, apperr.Validation("no images provided")
	}

	var created []models.ProductImage
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.requireProduct(tx, productID); err != nil {
			return err
		}

		var stats struct {
			Total       int
			MaxPosition int
			Primaries   int
		}
		err := tx.Model(&models.ProductImage{}).
			Select("COUNT(*) AS total, COALESCE(MAX(order_position), -1) AS max_position, COALESCE(SUM(CASE WHEN is_primary THEN 1 ELSE 0 END), 0) AS primaries").
			Where("product_id = ?", productID).
			Scan(&stats).Error
		if err != nil {
			return err
		}
		if stats.Total+len(uploads) > MaxProductImages {
			return apperr.Validation("a product can have at most %d images: it has %d, trying to add %d",
				MaxProductImages, stats.Total, len(uploads))
		}

		for i, up := range uploads {
			created = append(created, models.ProductImage{
				ProductID:     productID,
				ImageURL:      up.URL,
				ObjectKey:     up.ObjectKey,
				AltText:       up.AltText,
				OrderPosition: stats.MaxPosition + 1 + i,
				IsPrimary:     stats.Primaries == 0 && i == 0,
			})
		}
		return tx.Create(&created).Error
	})
	if err != nil {
		return nil, dbError(err, "")
	}

	s.log.InfoContext(ctx, "product images added", "product_id", productID, "count", len(created))
	return created, nil
}

// DeleteImage removes an image row and returns it so the caller can drop the
// stored object. Deleting the primary image promotes the next one.
func (s *Service) DeleteImage(ctx context.Context, productID, imageID uint) (*models.ProductImage, error) {
	var img models.ProductImage
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND product_id = ?", imageID, productID).First(&img).Error; err != nil {
			return err
		}
		if err := tx.Delete(&img).Error; err != nil {
			return err
		}
		if !img.IsPrimary {
			return nil
		}

		var next models.ProductImage
		err := tx.Where("product_id = ?", productID).Order("order_position, id").First(&next).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return tx.Model(&next).Update("is_primary", true).Error
	})
	if err != nil {
		return nil, dbError(err, "image not found")
	}
	return &img, nil
}

// SetPrimaryImage makes imageID the only primary image of the product.
func (s *Service) SetPrimaryImage(ctx context.Context, productID, imageID uint) (*models.ProductImage, error) {
	var img models.ProductImage
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND product_id = ?", imageID, productID).First(&img).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.ProductImage{}).
			Where("product_id = ? AND id <> ?", productID, imageID).
			Update("is_primary", false).Error; err != nil {
			return err
		}
		img.IsPrimary = true
		return tx.Model(&img).Update("is_primary", true).Error
	})
	if err != nil {
		return nil, dbError(err, "image not found")
	}
	return &img, nil
}
