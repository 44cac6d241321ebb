package product

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"dkstore_back_end/internal/apperr"
	"dkstore_back_end/internal/catalog"
	"dkstore_back_end/internal/handlers"
	"dkstore_back_end/internal/middleware"
)

type ProductHandler struct {
	catalog *catalog.Service
}

func NewProductHandler(svc *catalog.Service) *ProductHandler {
	return &ProductHandler{catalog: svc}
}

func decimalQuery(c *gin.Context, name string) (*decimal.Decimal, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, apperr.Validation("invalid %s", name)
	}
	return &d, nil
}

// GET /api/products
func (h *ProductHandler) ListProducts(c *gin.Context) {
	var f catalog.ProductFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		handlers.BadRequest(c, err)
		return
	}
	var err error
	if f.MinPrice, err = decimalQuery(c, "min_price"); err != nil {
		handlers.Fail(c, err)
		return
	}
	if f.MaxPrice, err = decimalQuery(c, "max_price"); err != nil {
		handlers.Fail(c, err)
		return
	}

	items, page, err := h.catalog.ListProducts(c.Request.Context(), f)
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	handlers.Paginated(c, items, page)
}

// GET /api/products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	p, err := h.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	handlers.OK(c, p)
}

// POST /api/products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var input catalog.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		handlers.BadRequest(c, err)
		return
	}
	p, err := h.catalog.CreateProduct(c.Request.Context(), input)
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	c.Set(middleware.KeyAuditValue, p)
	handlers.Message(c, http.StatusCreated, "product created", p)
}

// PUT /api/products/:id
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	var patch catalog.ProductPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		handlers.BadRequest(c, err)
		return
	}
	p, err := h.catalog.UpdateProduct(c.Request.Context(), id, patch)
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	c.Set(middleware.KeyAuditValue, patch)
	handlers.Message(c, http.StatusOK, "product updated", p)
}

// DELETE /api/products/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	if err := h.catalog.DeleteProduct(c.Request.Context(), id); err != nil {
		handlers.Fail(c, err)
		return
	}
	handlers.Message(c, http.StatusOK, "product deactivated", nil)
}
