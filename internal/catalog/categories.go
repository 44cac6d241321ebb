package catalog

import (
	"context"
	"regexp"
	"strings"

	"dkstore_back_end/internal/apperr"
	"dkstore_back_end/internal/cache"
	"dkstore_back_end/internal/models"
)

var slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(s string) string {
	return strings.Trim(slugInvalid.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

// ListCategories returns active categories by name, served from cache when possible.
func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if cache.GetJSON(ctx, s.cache, cache.CategoriesKey, &categories) {
		return categories, nil
	}

	categories = []models.Category{}
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name").
		Find(&categories).Error
	if err != nil {
		return nil, dbError(err, "")
	}

	cache.SetJSON(ctx, s.cache, cache.CategoriesKey, categories, cache.CategoriesTTL)
	return categories, nil
}

func (s *Service) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	var c models.Category
	err := s.db.WithContext(ctx).Where("id = ? AND is_active = ?", id, true).First(&c).Error
	if err != nil {
		return nil, dbError(err, "category not found")
	}
	return &c, nil
}

type CategoryInput struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Slug        string `json:"slug"`
}

func (s *Service) CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation("name is required")
	}
	slug := slugify(in.Slug)
	if slug == "" {
		slug = slugify(name)
	}
	if slug == "" {
		return nil, apperr.Validation("slug cannot be derived from name")
	}

	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Category{}).Where("slug = ?", slug).Count(&n).Error; err != nil {
		return nil, dbError(err, "")
	}
	if n > 0 {
		return nil, apperr.Duplicate("category slug %s already exists", slug)
	}

	c := models.Category{Name: name, Description: in.Description, Slug: slug, IsActive: true}
	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, dbError(err, "")
	}

	cache.Invalidate(ctx, s.cache, cache.CategoriesKey)
	s.log.InfoContext(ctx, "category created", "category_id", c.ID, "slug", slug)
	return &c, nil
}

// ProductsByCategorySlug lists the active products of an active category.
func (s *Service) ProductsByCategorySlug(ctx context.Context, slug string) ([]models.ProductListItem, error) {
	items := []models.ProductListItem{}
	err := s.selectListItem(s.productQuery(ctx)).
		Where("c.slug = ? AND c.is_active = ?", slug, true).
		Order("p.name").
		Scan(&items).Error
	if err != nil {
		return nil, dbError(err, "")
	}
	if len(items) == 0 {
		return nil, apperr.NotFound("no products found for this category")
	}
	return items, nil
}
