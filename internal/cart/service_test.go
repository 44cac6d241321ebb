package cart

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"dkstore_back_end/internal/apperr"
	"dkstore_back_end/internal/catalog"
	"dkstore_back_end/internal/models"
	"dkstore_back_end/internal/testutil"
)

type recordedEvents struct {
	mu     sync.Mutex
	events []string
}

func (r *recordedEvents) PublishCartEvent(_ context.Context, _ uint, event string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func newService(t *testing.T) (*Service, *gorm.DB, *recordedEvents) {
	t.Helper()
	db := testutil.NewDB(t)
	events := &recordedEvents{}
	return NewService(db, catalog.NewService(db, nil), events), db, events
}

func TestAddThenGet(t *testing.T) {
	svc, db, events := newService(t)
	ctx := context.Background()
	u := testutil.User(t, db, "ana@example.com")
	p := testutil.Product(t, db, "Camisa Palmeiras", testutil.WithPrice("249.90"))

	_, err := svc.AddItem(ctx, u.ID, AddItemInput{ProductID: p.ID, Size: "M", Quantity: 2})
	require.NoError(t, err)

	cart, err := svc.GetCart(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, "Camisa Palmeiras", cart.Items[0].ProductName)
	assert.Equal(t, 1, cart.Summary.TotalItems)
	assert.Equal(t, 2, cart.Summary.TotalQuantity)
	assert.Equal(t, "499.80", cart.Summary.TotalAmount)
	assert.Equal(t, []string{"updated"}, events.events)
}

func TestAddMergesSameProductAndSize(t *testing.T) {
	svc, db, _ := newService(t)
	ctx := context.Background()
	u := testutil.User(t, db, "bia@example.com")
	p := testutil.Product(t, db, "Camisa", testutil.WithStock(10))

	_, err := svc.AddItem(ctx, u.ID, AddItemInput{ProductID: p.ID, Size: "M", Quantity: 2})
	require.NoError(t, err)
	item, err := svc.AddItem(ctx, u.ID, AddItemInput{ProductID: p.ID, Size: "m", Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, 5, item.Quantity)
	assert.Equal(t, "M", item.Size)

	_, err = svc.AddItem(ctx, u.ID, AddItemInput{ProductID: p.ID, Size: "G", Quantity: 1})
	require.NoError(t, err)

	cart, err := svc.GetCart(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 2)
	assert.Equal(t, 6, cart.Summary.TotalQuantity)
}

func TestAddRejectsInsufficientStock(t *testing.T) {
	svc, db, _ := newService(t)
	ctx := context.Background()
	u := testutil.User(t, db, "caio@example.com")
	p := testutil.Product(t, db, "Luva Goleiro", testutil.WithStock(3))

	_, err := svc.AddItem(ctx, u.ID, AddItemInput{ProductID: p.ID, Size: "M", Quantity: 5})
	require.Error(t, err)
	assert.Equal(t, apperr.KindStock, apperr.KindOf(err))
	assert.Equal(t, 3, apperr.As(err).Details["available"])

	_, err = svc.AddItem(ctx, u.ID, AddItemInput{ProductID: p.ID, Size: "M", Quantity: 2})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, u.ID, AddItemInput{ProductID: p.ID, Size: "M", Quantity: 2})
	assert.Equal(t, apperr.KindStock, apperr.KindOf(err))
}

func TestAddEnforcesPerLineCap(t *testing.T) {
	svc, db, _ := newService(t)
	ctx := context.Background()
	u := testutil.User(t, db, "duda@example.com")
	p := testutil.Product(t, db, "Meião", testutil.WithStock(100))

	_, err := svc.AddItem(ctx, u.ID, AddItemInput{ProductID: p.ID, Size: "M", Quantity: 8})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, u.ID, AddItemInput{ProductID: p.ID, Size: "M", Quantity: 3})
	assert.Equal(t, apperr.KindStock, apperr.KindOf(err))

	_, err = svc.AddItem(ctx, u.ID, AddItemInput{ProductID: p.ID, Size: "M", Quantity: 11})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	_, err = svc.AddItem(ctx, u.ID, AddItemInput{ProductID: p.ID, Size: "M", Quantity: 0})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	_, err = svc.AddItem(ctx, u.ID, AddItemInput{ProductID: p.ID, Size: " ", Quantity: 1})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestAddValidatesSizeForEveryStoredForm(t *testing.T) {
	svc, db, _ := newService(t)
	ctx := context.Background()
	u := testutil.User(t, db, "edu@example.com")

	for _, raw := range []string{"M,L,XL", `["M","L","XL"]`, "{M,L,XL}"} {
		p := testutil.Product(t, db, "Camisa "+raw)
		require.NoError(t, db.Exec("UPDATE products SET size_options = ? WHERE id = ?", raw, p.ID).Error)

		_, err := svc.AddItem(ctx, u.ID, AddItemInput{ProductID: p.ID, Size: "M", Quantity: 1})
		assert.NoError(t, err, raw)

		_, err = svc.AddItem(ctx, u.ID, AddItemInput{ProductID: p.ID, Size: "S", Quantity: 1})
		assert.Equal(t, apperr.KindInvalidSize, apperr.KindOf(err), raw)
	}
}

func TestAddUnknownOrInactiveProduct(t *testing.T) {
	svc, db, _ := newService(t)
	ctx := context.Background()
	u := testutil.User(t, db, "fabi@example.com")
	p := testutil.Product(t, db, "Fora de linha", testutil.Inactive())

	_, err := svc.AddItem(ctx, u.ID, AddItemInput{ProductID: p.ID, Size: "M", Quantity: 1})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	_, err = svc.AddItem(ctx, u.ID, AddItemInput{ProductID: 777, Size: "M", Quantity: 1})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestUpdateItem(t *testing.T) {
	svc, db, _ := newService(t)
	ctx := context.Background()
	owner := testutil.User(t, db, "gabi@example.com")
	other := testutil.User(t, db, "hugo@example.com")
	p := testutil.Product(t, db, "Shorts", testutil.WithStock(4))

	item, err := svc.AddItem(ctx, owner.ID, AddItemInput{ProductID: p.ID, Size: "G", Quantity: 1})
	require.NoError(t, err)

	updated, err := svc.UpdateItem(ctx, owner.ID, item.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Quantity)

	_, err = svc.UpdateItem(ctx, owner.ID, item.ID, 5)
	assert.Equal(t, apperr.KindStock, apperr.KindOf(err))
	_, err = svc.UpdateItem(ctx, owner.ID, item.ID, 11)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	_, err = svc.UpdateItem(ctx, other.ID, item.ID, 1)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestRemoveAndClear(t *testing.T) {
	svc, db, events := newService(t)
	ctx := context.Background()
	owner := testutil.User(t, db, "iris@example.com")
	other := testutil.User(t, db, "joao@example.com")
	p := testutil.Product(t, db, "Boné")

	item, err := svc.AddItem(ctx, owner.ID, AddItemInput{ProductID: p.ID, Size: "P", Quantity: 1})
	require.NoError(t, err)

	err = svc.RemoveItem(ctx, other.ID, item.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	require.NoError(t, svc.RemoveItem(ctx, owner.ID, item.ID))
	err = svc.RemoveItem(ctx, owner.ID, item.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = svc.AddItem(ctx, owner.ID, AddItemInput{ProductID: p.ID, Size: "P", Quantity: 1})
	require.NoError(t, err)
	require.NoError(t, svc.ClearCart(ctx, owner.ID))
	require.NoError(t, svc.ClearCart(ctx, owner.ID))

	cart, err := svc.GetCart(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Equal(t, "0.00", cart.Summary.TotalAmount)
	assert.Equal(t, "cleared", events.events[len(events.events)-1])
}

func TestGetCartHidesInactiveProducts(t *testing.T) {
	svc, db, _ := newService(t)
	ctx := context.Background()
	u := testutil.User(t, db, "leo@example.com")
	p := testutil.Product(t, db, "Agasalho")

	_, err := svc.AddItem(ctx, u.ID, AddItemInput{ProductID: p.ID, Size: "M", Quantity: 1})
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", p.ID).Update("is_active", false).Error)

	cart, err := svc.GetCart(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}
