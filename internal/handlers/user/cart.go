package user

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dkstore_back_end/internal/cache"
	"dkstore_back_end/internal/cart"
	"dkstore_back_end/internal/handlers"
	"dkstore_back_end/internal/middleware"
)

type CartHandler struct {
	cart   *cart.Service
	events *cache.Redis
}

// NewCartHandler accepts a nil events source; the websocket then answers 503.
func NewCartHandler(svc *cart.Service, events *cache.Redis) *CartHandler {
	return &CartHandler{cart: svc, events: events}
}

// GET /api/orders/cart
func (h *CartHandler) GetCart(c *gin.Context) {
	current, err := h.cart.GetCart(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	handlers.OK(c, current)
}

// POST /api/orders/cart/add
func (h *CartHandler) AddToCart(c *gin.Context) {
	var input struct {
		ProductID uint   `json:"product_id"`
		Size      string `json:"size"`
		Quantity  *int   `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		handlers.BadRequest(c, err)
		return
	}
	quantity := 1
	if input.Quantity != nil {
		quantity = *input.Quantity
	}

	item, err := h.cart.AddItem(c.Request.Context(), middleware.CurrentUserID(c), cart.AddItemInput{
		ProductID: input.ProductID,
		Size:      input.Size,
		Quantity:  quantity,
	})
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	handlers.Message(c, http.StatusOK, "item added to cart", item)
}

// PUT /api/orders/cart/:itemId
func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	itemID, err := handlers.ParamID(c, "itemId")
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	var input struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		handlers.BadRequest(c, err)
		return
	}

	item, err := h.cart.UpdateItem(c.Request.Context(), middleware.CurrentUserID(c), itemID, input.Quantity)
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	handlers.Message(c, http.StatusOK, "cart item updated", item)
}

// DELETE /api/orders/cart/:itemId
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	itemID, err := handlers.ParamID(c, "itemId")
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	if err := h.cart.RemoveItem(c.Request.Context(), middleware.CurrentUserID(c), itemID); err != nil {
		handlers.Fail(c, err)
		return
	}
	handlers.Message(c, http.StatusOK, "item removed from cart", nil)
}

// DELETE /api/orders/cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	if err := h.cart.ClearCart(c.Request.Context(), middleware.CurrentUserID(c)); err != nil {
		handlers.Fail(c, err)
		return
	}
	handlers.Message(c, http.StatusOK, "cart cleared", nil)
}
