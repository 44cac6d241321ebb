package product

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"dkstore_back_end/internal/catalog"
	"dkstore_back_end/internal/handlers"
	"dkstore_back_end/internal/middleware"
)

type InventoryHandler struct {
	catalog *catalog.Service
}

func NewInventoryHandler(svc *catalog.Service) *InventoryHandler {
	return &InventoryHandler{catalog: svc}
}

// PATCH /api/products/:id/stock
func (h *InventoryHandler) UpdateStock(c *gin.Context) {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	var input catalog.StockUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		handlers.BadRequest(c, err)
		return
	}

	movement, err := h.catalog.UpdateStock(c.Request.Context(), id, middleware.CurrentUserID(c), input)
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	c.Set(middleware.KeyAuditValue, movement)
	handlers.OK(c, movement)
}

// GET /api/inventory/movements?product_id=&limit=
func (h *InventoryHandler) ListMovements(c *gin.Context) {
	productID, _ := strconv.ParseUint(c.Query("product_id"), 10, 64)
	limit, _ := strconv.Atoi(c.Query("limit"))

	movements, err := h.catalog.ListMovements(c.Request.Context(), uint(productID), limit)
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	handlers.OK(c, movements)
}

// GET /api/inventory/low-stock
func (h *InventoryHandler) LowStock(c *gin.Context) {
	rows, err := h.catalog.LowStock(c.Request.Context())
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	handlers.OK(c, rows)
}
