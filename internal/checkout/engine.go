// Package checkout turns a cart into an order.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"dkstore_back_end/internal/apperr"
	"dkstore_back_end/internal/cache"
	"dkstore_back_end/internal/models"
)

// EventPublisher is told when checkout empties a cart.
type EventPublisher interface {
	PublishCartEvent(ctx context.Context, userID uint, event string) error
}

// Notifier receives placed orders after commit. Failures never affect checkout.
type Notifier interface {
	OrderPlaced(ctx context.Context, to models.User, order models.Order) error
}

type Engine struct {
	db       *gorm.DB
	events   EventPublisher
	notifier Notifier
	log      *slog.Logger
	now      func() time.Time
}

// NewEngine builds the checkout engine. events and notifier may be nil.
func NewEngine(db *gorm.DB, events EventPublisher, notifier Notifier) *Engine {
	return &Engine{
		db:       db,
		events:   events,
		notifier: notifier,
		log:      slog.Default().With("component", "checkout"),
		now:      time.Now,
	}
}

type Request struct {
	PaymentMethod   string                 `json:"payment_method"`
	ShippingAddress models.ShippingAddress `json:"shipping_address"`
	Notes           string                 `json:"notes"`
}

type line struct {
	ProductID     uint
	Size          string
	Quantity      int
	Name          string
	Price         decimal.Decimal
	StockQuantity int
}

// NewOrderNumber builds a human readable, practically unique order number.
func NewOrderNumber(now time.Time) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("DK%s-%s", now.UTC().Format("20060102"), strings.ToUpper(id[:8]))
}

// Checkout places an order for everything in the user's cart. Stock is
// decremented, the order and its items are written and the cart is emptied
// in a single transaction; any failure leaves all of them untouched.
func (e *Engine) Checkout(ctx context.Context, userID uint, req Request) (*models.Order, error) {
	if missing := req.ShippingAddress.Missing(); len(missing) > 0 {
		err := apperr.Validation("shipping address is incomplete, missing: %s", strings.Join(missing, ", "))
		err.Details = map[string]any{"missing": missing}
		return nil, err
	}
	method := strings.TrimSpace(req.PaymentMethod)
	if method == "" {
		method = models.DefaultPaymentMethod
	}

	var order models.Order
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lines, err := loadLines(tx, userID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return apperr.EmptyCart()
		}

		needed := make(map[uint]int, len(lines))
		for _, l := range lines {
			needed[l.ProductID] += l.Quantity
		}
		for _, l := range lines {
			if l.StockQuantity < needed[l.ProductID] {
				return apperr.Stock(l.Name, l.StockQuantity, needed[l.ProductID])
			}
		}

		total := decimal.Zero
		items := make([]models.OrderItem, 0, len(lines))
		for _, l := range lines {
			lineTotal := l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))).Round(2)
			total = total.Add(lineTotal)
			items = append(items, models.OrderItem{
				ProductID:   l.ProductID,
				ProductName: l.Name,
				Quantity:    l.Quantity,
				Size:        l.Size,
				UnitPrice:   l.Price,
				TotalPrice:  lineTotal,
			})
		}

		order = models.Order{
			OrderNumber:     NewOrderNumber(e.now()),
			UserID:          userID,
			TotalAmount:     total.Round(2),
			Status:          models.OrderPending,
			PaymentMethod:   method,
			PaymentStatus:   models.PaymentPending,
			ShippingAddress: req.ShippingAddress,
			Notes:           strings.TrimSpace(req.Notes),
		}
		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return fmt.Errorf("insert order items: %w", err)
		}
		order.Items = items

		if err := decrementStock(tx, order.ID, userID, lines, needed); err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		return nil
	})
	if err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		e.log.ErrorContext(ctx, "checkout failed", "user_id", userID, "error", err)
		return nil, apperr.Internal(err, "failed to create order")
	}

	e.log.InfoContext(ctx, "order created",
		"order_id", order.ID, "order_number", order.OrderNumber,
		"user_id", userID, "total", order.TotalAmount.StringFixed(2), "items", len(order.Items))

	if e.events != nil {
		if err := e.events.PublishCartEvent(ctx, userID, cache.CartEventCleared); err != nil {
			e.log.WarnContext(ctx, "cart event not published", "user_id", userID, "error", err)
		}
	}
	e.notify(ctx, userID, order)
	return &order, nil
}

func loadLines(tx *gorm.DB, userID uint) ([]line, error) {
	var lines []line
	err := tx.Table("cart_items AS ci").
		Select("ci.product_id, ci.size, ci.quantity, p.name, p.price, p.stock_quantity").
		Joins("JOIN products p ON p.id = ci.product_id").
		Where("ci.user_id = ? AND p.is_active = ?", userID, true).
		Order("ci.created_at, ci.id").
		Scan(&lines).Error
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return lines, nil
}

// decrementStock takes the stock of each product with a conditional update so
// a concurrent checkout can never drive it negative. Products are visited in
// id order to keep lock acquisition consistent across transactions.
func decrementStock(tx *gorm.DB, orderID, userID uint, lines []line, needed map[uint]int) error {
	names := make(map[uint]string, len(lines))
	ids := make([]uint, 0, len(needed))
	for _, l := range lines {
		if _, seen := names[l.ProductID]; !seen {
			ids = append(ids, l.ProductID)
		}
		names[l.ProductID] = l.Name
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		qty := needed[id]
		res := tx.Exec(
			`UPDATE products SET stock_quantity = stock_quantity - ?, updated_at = ?
			 WHERE id = ? AND is_active = ? AND stock_quantity >= ?`,
			qty, time.Now(), id, true, qty)
		if res.Error != nil {
			return fmt.Errorf("decrement stock of product %d: %w", id, res.Error)
		}

		var current int
		if err := tx.Model(&models.Product{}).Select("stock_quantity").Where("id = ?", id).Scan(&current).Error; err != nil {
			return fmt.Errorf("read stock of product %d: %w", id, err)
		}
		if res.RowsAffected != 1 {
			return apperr.Stock(names[id], current, qty)
		}

		oid := orderID
		movement := models.StockMovement{
			ProductID: id,
			Type:      models.MovementSale,
			Quantity:  -qty,
			PrevStock: current + qty,
			NewStock:  current,
			Reason:    "checkout",
			OrderID:   &oid,
			UserID:    userID,
		}
		if err := tx.Create(&movement).Error; err != nil {
			return fmt.Errorf("record stock movement: %w", err)
		}
	}
	return nil
}

func (e *Engine) notify(ctx context.Context, userID uint, order models.Order) {
	if e.notifier == nil {
		return
	}
	var user models.User
	if err := e.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		e.log.WarnContext(ctx, "order confirmation skipped", "order_id", order.ID, "error", err)
		return
	}
	go func() {
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		if err := e.notifier.OrderPlaced(sendCtx, user, order); err != nil {
			e.log.WarnContext(sendCtx, "order confirmation not sent", "order_id", order.ID, "error", err)
		}
	}()
}
