package checkout

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"dkstore_back_end/internal/apperr"
	"dkstore_back_end/internal/models"
	"dkstore_back_end/internal/testutil"
)

var address = models.ShippingAddress{
	Street:  "Av. Paulista, 1000",
	City:    "São Paulo",
	State:   "SP",
	Zipcode: "01310-100",
}

type notifierFunc func(models.User, models.Order)

func (f notifierFunc) OrderPlaced(_ context.Context, to models.User, order models.Order) error {
	f(to, order)
	return nil
}

func addToCart(t *testing.T, db *gorm.DB, userID, productID uint, size string, qty int) {
	t.Helper()
	item := models.CartItem{UserID: userID, ProductID: productID, Size: size, Quantity: qty}
	require.NoError(t, db.Create(&item).Error)
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestCheckoutEmptyCart(t *testing.T) {
	db := testutil.NewDB(t)
	u := testutil.User(t, db, "ana@example.com")

	_, err := NewEngine(db, nil, nil).Checkout(context.Background(), u.ID, Request{ShippingAddress: address})
	assert.Equal(t, apperr.KindEmptyCart, apperr.KindOf(err))
}

func TestCheckoutIgnoresInactiveProducts(t *testing.T) {
	db := testutil.NewDB(t)
	u := testutil.User(t, db, "bia@example.com")
	p := testutil.Product(t, db, "Retirado", testutil.Inactive())
	addToCart(t, db, u.ID, p.ID, "M", 1)

	_, err := NewEngine(db, nil, nil).Checkout(context.Background(), u.ID, Request{ShippingAddress: address})
	assert.Equal(t, apperr.KindEmptyCart, apperr.KindOf(err))
}

func TestCheckoutValidatesAddress(t *testing.T) {
	db := testutil.NewDB(t)
	u := testutil.User(t, db, "caio@example.com")

	_, err := NewEngine(db, nil, nil).Checkout(context.Background(), u.ID, Request{
		ShippingAddress: models.ShippingAddress{Street: "Rua 1"},
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, []string{"city", "zipcode"}, apperr.As(err).Details["missing"])
}

func TestCheckoutCreatesOrder(t *testing.T) {
	db := testutil.NewDB(t)
	u := testutil.User(t, db, "duda@example.com")
	shirt := testutil.Product(t, db, "Camisa Seleção", testutil.WithPrice("349.90"), testutil.WithStock(5))
	ball := testutil.Product(t, db, "Bola", testutil.WithPrice("129.99"), testutil.WithStock(3))
	addToCart(t, db, u.ID, shirt.ID, "M", 2)
	addToCart(t, db, u.ID, shirt.ID, "G", 1)
	addToCart(t, db, u.ID, ball.ID, "P", 3)

	placed := make(chan models.Order, 1)
	engine := NewEngine(db, nil, notifierFunc(func(to models.User, o models.Order) {
		assert.Equal(t, "duda@example.com", to.Email)
		placed <- o
	}))
	engine.now = func() time.Time { return time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC) }

	order, err := engine.Checkout(context.Background(), u.ID, Request{ShippingAddress: address, Notes: " portão azul "})
	require.NoError(t, err)

	// 3 x 349.90 + 3 x 129.99
	assert.Equal(t, "1439.67", order.TotalAmount.StringFixed(2))
	assert.Equal(t, models.OrderPending, order.Status)
	assert.Equal(t, models.PaymentPending, order.PaymentStatus)
	assert.Equal(t, models.DefaultPaymentMethod, order.PaymentMethod)
	assert.Equal(t, "portão azul", order.Notes)
	assert.Regexp(t, `^DK20261016-[0-9A-F]{8}$`, order.OrderNumber)
	require.Len(t, order.Items, 3)
	assert.Equal(t, "699.80", order.Items[0].TotalPrice.StringFixed(2))

	assert.Equal(t, 2, testutil.StockOf(t, db, shirt.ID))
	assert.Equal(t, 0, testutil.StockOf(t, db, ball.ID))
	assert.Zero(t, countRows(t, db, &models.CartItem{}))
	assert.EqualValues(t, 3, countRows(t, db, &models.OrderItem{}))

	var movements []models.StockMovement
	require.NoError(t, db.Order("product_id").Find(&movements).Error)
	require.Len(t, movements, 2)
	assert.Equal(t, 5, movements[0].PrevStock)
	assert.Equal(t, 2, movements[0].NewStock)
	assert.Equal(t, models.MovementSale, movements[0].Type)

	var stored models.Order
	require.NoError(t, db.First(&stored, order.ID).Error)
	assert.Equal(t, "São Paulo", stored.ShippingAddress.City)

	select {
	case o := <-placed:
		assert.Equal(t, order.ID, o.ID)
	case <-time.After(5 * time.Second):
		t.Fatal("order confirmation was not dispatched")
	}
}

func TestCheckoutUsesCurrentPriceAndFreezesIt(t *testing.T) {
	db := testutil.NewDB(t)
	u := testutil.User(t, db, "edu@example.com")
	p := testutil.Product(t, db, "Chuteira", testutil.WithPrice("500.00"))
	addToCart(t, db, u.ID, p.ID, "M", 1)
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", p.ID).Update("price", "450.00").Error)

	order, err := NewEngine(db, nil, nil).Checkout(context.Background(), u.ID, Request{ShippingAddress: address})
	require.NoError(t, err)
	assert.Equal(t, "450.00", order.TotalAmount.StringFixed(2))

	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", p.ID).Update("price", "999.00").Error)
	var item models.OrderItem
	require.NoError(t, db.Where("order_id = ?", order.ID).First(&item).Error)
	assert.Equal(t, "450.00", item.UnitPrice.StringFixed(2))
}

func TestCheckoutStockFailureLeavesNoTrace(t *testing.T) {
	db := testutil.NewDB(t)
	u := testutil.User(t, db, "fabi@example.com")
	ok := testutil.Product(t, db, "Camisa", testutil.WithStock(10))
	short := testutil.Product(t, db, "Luva", testutil.WithStock(5))
	addToCart(t, db, u.ID, ok.ID, "M", 2)
	addToCart(t, db, u.ID, short.ID, "M", 4)
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", short.ID).Update("stock_quantity", 1).Error)

	_, err := NewEngine(db, nil, nil).Checkout(context.Background(), u.ID, Request{ShippingAddress: address})
	require.Error(t, err)
	assert.Equal(t, apperr.KindStock, apperr.KindOf(err))
	details := apperr.As(err).Details
	assert.Equal(t, "Luva", details["product"])
	assert.Equal(t, 1, details["available"])

	assert.Zero(t, countRows(t, db, &models.Order{}))
	assert.Zero(t, countRows(t, db, &models.OrderItem{}))
	assert.EqualValues(t, 2, countRows(t, db, &models.CartItem{}))
	assert.Equal(t, 10, testutil.StockOf(t, db, ok.ID))
}

func TestCheckoutSumsLinesOfSameProduct(t *testing.T) {
	db := testutil.NewDB(t)
	u := testutil.User(t, db, "gabi@example.com")
	p := testutil.Product(t, db, "Camisa", testutil.WithStock(3))
	addToCart(t, db, u.ID, p.ID, "M", 2)
	addToCart(t, db, u.ID, p.ID, "G", 2)

	_, err := NewEngine(db, nil, nil).Checkout(context.Background(), u.ID, Request{ShippingAddress: address})
	assert.Equal(t, apperr.KindStock, apperr.KindOf(err))
	assert.Equal(t, 3, testutil.StockOf(t, db, p.ID))
}

func TestConcurrentCheckoutOfLastUnit(t *testing.T) {
	db := testutil.NewDB(t)
	p := testutil.Product(t, db, "Edição Limitada", testutil.WithStock(1))
	a := testutil.User(t, db, "hugo@example.com")
	b := testutil.User(t, db, "iris@example.com")
	addToCart(t, db, a.ID, p.ID, "M", 1)
	addToCart(t, db, b.ID, p.ID, "M", 1)

	engine := NewEngine(db, nil, nil)
	var (
		wg   sync.WaitGroup
		errs = make([]error, 2)
	)
	for i, u := range []models.User{a, b} {
		wg.Add(1)
		go func(i int, userID uint) {
			defer wg.Done()
			_, errs[i] = engine.Checkout(context.Background(), userID, Request{ShippingAddress: address})
		}(i, u.ID)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.Equal(t, apperr.KindStock, apperr.KindOf(err))
	}
	assert.Equal(t, 1, succeeded)
	assert.EqualValues(t, 1, countRows(t, db, &models.Order{}))
	assert.Equal(t, 0, testutil.StockOf(t, db, p.ID))
}

func TestDecrementStockRefusesDrainedProduct(t *testing.T) {
	db := testutil.NewDB(t)
	p := testutil.Product(t, db, "Camisa Retrô", testutil.WithStock(1))
	u := testutil.User(t, db, "joao@example.com")
	// another checkout already took the last unit after this one read the stock
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", p.ID).UpdateColumn("stock_quantity", 0).Error)

	lines := []line{{ProductID: p.ID, Name: p.Name, Size: "M", Quantity: 1, StockQuantity: 1}}
	err := db.Transaction(func(tx *gorm.DB) error {
		return decrementStock(tx, 0, u.ID, lines, map[uint]int{p.ID: 1})
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindStock, apperr.KindOf(err))
	details := apperr.As(err).Details
	assert.Equal(t, 0, details["available"])
	assert.Equal(t, 1, details["requested"])

	assert.Equal(t, 0, testutil.StockOf(t, db, p.ID))
	assert.Zero(t, countRows(t, db, &models.StockMovement{}))
}

func TestDecrementStockRecordsSale(t *testing.T) {
	db := testutil.NewDB(t)
	p := testutil.Product(t, db, "Chuteira", testutil.WithStock(5))
	u := testutil.User(t, db, "lia@example.com")

	lines := []line{
		{ProductID: p.ID, Name: p.Name, Size: "40", Quantity: 1},
		{ProductID: p.ID, Name: p.Name, Size: "41", Quantity: 2},
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		return decrementStock(tx, 7, u.ID, lines, map[uint]int{p.ID: 3})
	})
	require.NoError(t, err)
	assert.Equal(t, 2, testutil.StockOf(t, db, p.ID))

	var moves []models.StockMovement
	require.NoError(t, db.Find(&moves).Error)
	require.Len(t, moves, 1)
	assert.Equal(t, models.MovementSale, moves[0].Type)
	assert.Equal(t, -3, moves[0].Quantity)
	assert.Equal(t, 5, moves[0].PrevStock)
	assert.Equal(t, 2, moves[0].NewStock)
	require.NotNil(t, moves[0].OrderID)
	assert.EqualValues(t, 7, *moves[0].OrderID)
}

func TestNewOrderNumberIsUnique(t *testing.T) {
	now := time.Now()
	seen := make(map[string]struct{})
	for i := 0; i < 500; i++ {
		n := NewOrderNumber(now)
		_, dup := seen[n]
		require.False(t, dup)
		seen[n] = struct{}{}
	}
}
