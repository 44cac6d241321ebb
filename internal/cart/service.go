// Package cart manages per-user shopping carts.
package cart

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"dkstore_back_end/internal/apperr"
	"dkstore_back_end/internal/cache"
	"dkstore_back_end/internal/models"
)

// ProductReader resolves the product behind a cart line.
type ProductReader interface {
	GetActiveProduct(ctx context.Context, id uint) (*models.Product, error)
}

// EventPublisher is notified after every cart change.
type EventPublisher interface {
	PublishCartEvent(ctx context.Context, userID uint, event string) error
}

type Service struct {
	db       *gorm.DB
	products ProductReader
	events   EventPublisher
	log      *slog.Logger
}

// NewService builds the cart manager. events may be nil.
func NewService(db *gorm.DB, products ProductReader, events EventPublisher) *Service {
	return &Service{
		db:       db,
		products: products,
		events:   events,
		log:      slog.Default().With("component", "cart"),
	}
}

type AddItemInput struct {
	ProductID uint   `json:"product_id"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

func validateQuantity(q int) error {
	if q < 1 || q > models.MaxCartItemQuantity {
		return apperr.Validation("quantity must be between 1 and %d", models.MaxCartItemQuantity)
	}
	return nil
}

// AddItem adds quantity units of (product, size) to the cart, merging with an
// existing line for the same pair.
func (s *Service) AddItem(ctx context.Context, userID uint, in AddItemInput) (*models.CartItem, error) {
	if in.ProductID == 0 {
		return nil, apperr.Validation("product_id is required")
	}
	if strings.TrimSpace(in.Size) == "" {
		return nil, apperr.Validation("size is required")
	}
	if err := validateQuantity(in.Quantity); err != nil {
		return nil, err
	}

	product, err := s.products.GetActiveProduct(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	size, ok := product.SizeOptions.Match(in.Size)
	if !ok {
		return nil, apperr.InvalidSize(strings.TrimSpace(in.Size), product.SizeOptions)
	}
	if in.Quantity > product.StockQuantity {
		return nil, apperr.Stock(product.Name, product.StockQuantity, in.Quantity)
	}

	var item models.CartItem
	upsert := func(tx *gorm.DB) error {
		item = models.CartItem{}
		err := tx.Where("user_id = ? AND product_id = ? AND size = ?", userID, product.ID, size).
			First(&item).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			item = models.CartItem{UserID: userID, ProductID: product.ID, Size: size, Quantity: in.Quantity}
			return tx.Create(&item).Error
		case err != nil:
			return err
		}

		merged := item.Quantity + in.Quantity
		if merged > models.MaxCartItemQuantity {
			return apperr.StockLimit(models.MaxCartItemQuantity)
		}
		if merged > product.StockQuantity {
			return apperr.Stock(product.Name, product.StockQuantity, merged)
		}
		item.Quantity = merged
		return tx.Model(&item).Update("quantity", merged).Error
	}
	err = s.db.WithContext(ctx).Transaction(upsert)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// a concurrent add created the line first; merge into it
		err = s.db.WithContext(ctx).Transaction(upsert)
	}
	if err != nil {
		return nil, wrap(err, "failed to add item to cart")
	}

	s.log.InfoContext(ctx, "item added to cart",
		"user_id", userID, "product_id", product.ID, "size", size, "quantity", item.Quantity)
	s.publish(ctx, userID, cache.CartEventUpdated)
	return &item, nil
}

type itemWithStock struct {
	models.CartItem
	ProductName   string
	StockQuantity int
}

// UpdateItem sets the quantity of one of the user's cart lines.
func (s *Service) UpdateItem(ctx context.Context, userID, itemID uint, quantity int) (*models.CartItem, error) {
	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}

	var rows []itemWithStock
	err := s.db.WithContext(ctx).
		Table("cart_items AS ci").
		Select("ci.*, p.name AS product_name, p.stock_quantity").
		Joins("JOIN products p ON p.id = ci.product_id").
		Where("ci.id = ? AND ci.user_id = ?", itemID, userID).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, wrap(err, "failed to load cart item")
	}
	if len(rows) == 0 {
		return nil, apperr.NotFound("cart item not found")
	}
	row := rows[0]
	if quantity > row.StockQuantity {
		return nil, apperr.Stock(row.ProductName, row.StockQuantity, quantity)
	}

	item := row.CartItem
	err = s.db.WithContext(ctx).Model(&item).
		Where("user_id = ?", userID).
		Update("quantity", quantity).Error
	if err != nil {
		return nil, wrap(err, "failed to update cart item")
	}
	item.Quantity = quantity

	s.log.InfoContext(ctx, "cart item updated", "user_id", userID, "item_id", itemID, "quantity", quantity)
	s.publish(ctx, userID, cache.CartEventUpdated)
	return &item, nil
}

// RemoveItem deletes one of the user's cart lines.
func (s *Service) RemoveItem(ctx context.Context, userID, itemID uint) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", itemID, userID).
		Delete(&models.CartItem{})
	if res.Error != nil {
		return wrap(res.Error, "failed to remove cart item")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("cart item not found")
	}

	s.log.InfoContext(ctx, "cart item removed", "user_id", userID, "item_id", itemID)
	s.publish(ctx, userID, cache.CartEventUpdated)
	return nil
}

// ClearCart empties the user's cart. Clearing an empty cart succeeds.
func (s *Service) ClearCart(ctx context.Context, userID uint) error {
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
		return wrap(err, "failed to clear cart")
	}
	s.publish(ctx, userID, cache.CartEventCleared)
	return nil
}

// GetCart returns the user's lines for active products, newest first.
func (s *Service) GetCart(ctx context.Context, userID uint) (models.Cart, error) {
	var lines []models.CartLine
	err := s.db.WithContext(ctx).
		Table("cart_items AS ci").
		Select(`ci.id, ci.product_id, ci.size, ci.quantity, ci.created_at,
			p.name AS product_name, p.price, p.stock_quantity,
			COALESCE(c.name, '') AS category_name,
			COALESCE((SELECT pi.image_url FROM product_images pi
				WHERE pi.product_id = p.id AND pi.is_primary = ? LIMIT 1), '') AS product_image`, true).
		Joins("JOIN products p ON p.id = ci.product_id").
		Joins("LEFT JOIN categories c ON c.id = p.category_id").
		Where("ci.user_id = ? AND p.is_active = ?", userID, true).
		Order("ci.created_at DESC, ci.id DESC").
		Scan(&lines).Error
	if err != nil {
		return models.Cart{}, wrap(err, "failed to load cart")
	}
	return models.NewCart(lines), nil
}

func (s *Service) publish(ctx context.Context, userID uint, event string) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishCartEvent(ctx, userID, event); err != nil {
		s.log.WarnContext(ctx, "cart event not published", "user_id", userID, "event", event, "error", err)
	}
}

func wrap(err error, msg string) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperr.Internal(err, "%s", msg)
}
