package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dkstore_back_end/internal/handlers"
	"dkstore_back_end/internal/middleware"
	"dkstore_back_end/internal/orders"
)

type OrderHandler struct {
	orders *orders.Service
}

func NewOrderHandler(svc *orders.Service) *OrderHandler {
	return &OrderHandler{orders: svc}
}

// GET /api/orders/admin/all?status=&payment_status=&page=&limit=
func (h *OrderHandler) GetAllOrders(c *gin.Context) {
	var f orders.AdminFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		handlers.BadRequest(c, err)
		return
	}
	page, err := h.orders.ListAllOrders(c.Request.Context(), f)
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	handlers.Paginated(c, page.Items, page.Pagination)
}

// GET /api/orders/admin/stats
func (h *OrderHandler) GetOrderStats(c *gin.Context) {
	stats, err := h.orders.Stats(c.Request.Context())
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	handlers.OK(c, stats)
}

// PUT /api/orders/:orderId/status
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	orderID, err := handlers.ParamID(c, "orderId")
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	var update orders.StatusUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		handlers.BadRequest(c, err)
		return
	}

	order, err := h.orders.UpdateStatus(c.Request.Context(), orderID, update)
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	c.Set(middleware.KeyAuditValue, update)
	handlers.Message(c, http.StatusOK, "order status updated", order)
}
