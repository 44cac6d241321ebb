package user

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dkstore_back_end/internal/checkout"
	"dkstore_back_end/internal/handlers"
	"dkstore_back_end/internal/middleware"
	"dkstore_back_end/internal/models"
	"dkstore_back_end/internal/orders"
)

type OrderHandler struct {
	checkout *checkout.Engine
	orders   *orders.Service
}

func NewOrderHandler(engine *checkout.Engine, svc *orders.Service) *OrderHandler {
	return &OrderHandler{checkout: engine, orders: svc}
}

// POST /api/orders/checkout
func (h *OrderHandler) Checkout(c *gin.Context) {
	var req checkout.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.BadRequest(c, err)
		return
	}

	order, err := h.checkout.Checkout(c.Request.Context(), middleware.CurrentUserID(c), req)
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	handlers.Message(c, http.StatusCreated, "order created", order)
}

// GET /api/orders
func (h *OrderHandler) ListOrders(c *gin.Context) {
	var req models.PageRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		handlers.BadRequest(c, err)
		return
	}

	page, err := h.orders.ListOrders(c.Request.Context(), middleware.CurrentUserID(c), req)
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	handlers.Paginated(c, page.Items, page.Pagination)
}

// GET /api/orders/:orderId
func (h *OrderHandler) GetOrder(c *gin.Context) {
	orderID, err := handlers.ParamID(c, "orderId")
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	order, err := h.orders.GetOrder(c.Request.Context(), middleware.CurrentUserID(c), orderID)
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	handlers.OK(c, order)
}
