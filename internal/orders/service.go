// Package orders serves order history and the admin status workflow.
package orders

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"dkstore_back_end/internal/apperr"
	"dkstore_back_end/internal/models"
)

// Notifier is told about status changes after they are stored.
type Notifier interface {
	OrderStatusChanged(ctx context.Context, to models.User, order models.Order) error
}

type Service struct {
	db       *gorm.DB
	notifier Notifier
	log      *slog.Logger
}

// NewService builds the order lifecycle manager. notifier may be nil.
func NewService(db *gorm.DB, notifier Notifier) *Service {
	return &Service{db: db, notifier: notifier, log: slog.Default().With("component", "orders")}
}

type Page[T any] struct {
	Items      []T               `json:"items"`
	Pagination models.Pagination `json:"pagination"`
}

// ListOrders returns one page of the user's orders, newest first.
func (s *Service) ListOrders(ctx context.Context, userID uint, req models.PageRequest) (Page[models.Order], error) {
	req = req.Normalize()
	q := s.db.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return Page[models.Order]{}, apperr.Internal(err, "failed to count orders")
	}

	orders := []models.Order{}
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(req.Limit).
		Offset(req.Offset()).
		Find(&orders).Error
	if err != nil {
		return Page[models.Order]{}, apperr.Internal(err, "failed to list orders")
	}
	return Page[models.Order]{Items: orders, Pagination: models.NewPagination(req, total)}, nil
}

// GetOrder returns one of the user's orders with its items.
func (s *Service) GetOrder(ctx context.Context, userID, orderID uint) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", orderID, userID).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("order not found")
	}
	if err != nil {
		return nil, apperr.Internal(err, "failed to load order")
	}

	items, err := s.items(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return &order, nil
}

func (s *Service) items(ctx context.Context, orderID uint) ([]models.OrderItem, error) {
	items := []models.OrderItem{}
	err := s.db.WithContext(ctx).
		Table("order_items AS oi").
		Select(`oi.*, COALESCE((SELECT pi.image_url FROM product_images pi
			WHERE pi.product_id = oi.product_id AND pi.is_primary = ? LIMIT 1), '') AS product_image`, true).
		Where("oi.order_id = ?", orderID).
		Order("oi.id").
		Scan(&items).Error
	if err != nil {
		return nil, apperr.Internal(err, "failed to load order items")
	}
	return items, nil
}

// AdminFilter narrows the admin listing; empty fields are ignored and the
// rest are combined with AND.
type AdminFilter struct {
	Status        models.OrderStatus   `form:"status"`
	PaymentStatus models.PaymentStatus `form:"payment_status"`
	models.PageRequest
}

func (f AdminFilter) validate() error {
	if f.Status != "" && !f.Status.Valid() {
		return apperr.Validation("invalid status %q", f.Status)
	}
	if f.PaymentStatus != "" && !f.PaymentStatus.Valid() {
		return apperr.Validation("invalid payment_status %q", f.PaymentStatus)
	}
	return nil
}

func (f AdminFilter) scopes() []func(*gorm.DB) *gorm.DB {
	var scopes []func(*gorm.DB) *gorm.DB
	if f.Status != "" {
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB { return db.Where("o.status = ?", f.Status) })
	}
	if f.PaymentStatus != "" {
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB { return db.Where("o.payment_status = ?", f.PaymentStatus) })
	}
	return scopes
}

// ListAllOrders returns orders of every customer, newest first.
func (s *Service) ListAllOrders(ctx context.Context, f AdminFilter) (Page[models.AdminOrder], error) {
	if err := f.validate(); err != nil {
		return Page[models.AdminOrder]{}, err
	}
	req := f.PageRequest.Normalize()

	base := s.db.WithContext(ctx).
		Table("orders AS o").
		Joins("LEFT JOIN users u ON u.id = o.user_id").
		Scopes(f.scopes()...).
		Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return Page[models.AdminOrder]{}, apperr.Internal(err, "failed to count orders")
	}

	rows := []models.AdminOrder{}
	err := base.
		Select("o.*, COALESCE(u.name, '') AS customer_name, COALESCE(u.email, '') AS customer_email").
		Order("o.created_at DESC, o.id DESC").
		Limit(req.Limit).
		Offset(req.Offset()).
		Scan(&rows).Error
	if err != nil {
		return Page[models.AdminOrder]{}, apperr.Internal(err, "failed to list orders")
	}
	return Page[models.AdminOrder]{Items: rows, Pagination: models.NewPagination(req, total)}, nil
}

// StatusUpdate is a partial update: nil fields keep their current value.
type StatusUpdate struct {
	Status        *models.OrderStatus   `json:"status"`
	PaymentStatus *models.PaymentStatus `json:"payment_status"`
	TrackingCode  *string               `json:"tracking_code"`
}

func (u StatusUpdate) validate() error {
	if u.Status != nil && !u.Status.Valid() {
		return apperr.Validation("invalid status %q", *u.Status)
	}
	if u.PaymentStatus != nil && !u.PaymentStatus.Valid() {
		return apperr.Validation("invalid payment_status %q", *u.PaymentStatus)
	}
	return nil
}

// UpdateStatus applies an admin update. Any status may follow any other.
func (s *Service) UpdateStatus(ctx context.Context, orderID uint, u StatusUpdate) (*models.Order, error) {
	if err := u.validate(); err != nil {
		return nil, err
	}

	var (
		order    models.Order
		previous models.OrderStatus
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, orderID).Error; err != nil {
			return err
		}
		previous = order.Status

		changes := map[string]any{"updated_at": time.Now()}
		if u.Status != nil {
			order.Status = *u.Status
			changes["status"] = order.Status
		}
		if u.PaymentStatus != nil {
			order.PaymentStatus = *u.PaymentStatus
			changes["payment_status"] = order.PaymentStatus
		}
		if u.TrackingCode != nil {
			// A blank code clears the field.
			if code := strings.TrimSpace(*u.TrackingCode); code != "" {
				order.TrackingCode = &code
				changes["tracking_code"] = code
			} else {
				order.TrackingCode = nil
				changes["tracking_code"] = nil
			}
		}
		return tx.Model(&order).Updates(changes).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("order not found")
	}
	if err != nil {
		return nil, apperr.Internal(err, "failed to update order")
	}

	s.log.InfoContext(ctx, "order updated",
		"order_id", order.ID, "status", order.Status, "payment_status", order.PaymentStatus)
	if order.Status != previous {
		s.notify(ctx, order)
	}
	return &order, nil
}

func (s *Service) notify(ctx context.Context, order models.Order) {
	if s.notifier == nil {
		return
	}
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, order.UserID).Error; err != nil {
		s.log.WarnContext(ctx, "status notification skipped", "order_id", order.ID, "error", err)
		return
	}
	go func() {
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		if err := s.notifier.OrderStatusChanged(sendCtx, user, order); err != nil {
			s.log.WarnContext(sendCtx, "status notification not sent", "order_id", order.ID, "error", err)
		}
	}()
}

// Stats summarizes all orders. Revenue counts paid orders only.
func (s *Service) Stats(ctx context.Context) (*models.OrderStats, error) {
	stats := &models.OrderStats{
		TotalRevenue: decimal.Zero,
		ByStatus:     map[models.OrderStatus]int64{},
		ByPayment:    map[models.PaymentStatus]int64{},
	}

	var byStatus []struct {
		Status models.OrderStatus
		Count  int64
	}
	if err := s.db.WithContext(ctx).Model(&models.Order{}).
		Select("status, COUNT(*) AS count").Group("status").Scan(&byStatus).Error; err != nil {
		return nil, apperr.Internal(err, "failed to compute order stats")
	}
	for _, row := range byStatus {
		stats.ByStatus[row.Status] = row.Count
		stats.TotalOrders += row.Count
	}

	var byPayment []struct {
		PaymentStatus models.PaymentStatus
		Count         int64
	}
	if err := s.db.WithContext(ctx).Model(&models.Order{}).
		Select("payment_status, COUNT(*) AS count").Group("payment_status").Scan(&byPayment).Error; err != nil {
		return nil, apperr.Internal(err, "failed to compute order stats")
	}
	for _, row := range byPayment {
		stats.ByPayment[row.PaymentStatus] = row.Count
	}

	var amounts []decimal.Decimal
	if err := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("payment_status = ?", models.PaymentPaid).
		Pluck("total_amount", &amounts).Error; err != nil {
		return nil, apperr.Internal(err, "failed to compute order revenue")
	}
	for _, a := range amounts {
		stats.TotalRevenue = stats.TotalRevenue.Add(a)
	}
	stats.TotalRevenue = stats.TotalRevenue.Round(2)
	return stats, nil
}
