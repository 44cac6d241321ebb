package product

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dkstore_back_end/internal/catalog"
	"dkstore_back_end/internal/handlers"
	"dkstore_back_end/internal/middleware"
)

type CategoryHandler struct {
	catalog *catalog.Service
}

func NewCategoryHandler(svc *catalog.Service) *CategoryHandler {
	return &CategoryHandler{catalog: svc}
}

// GET /api/categories
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	cats, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	handlers.OK(c, cats)
}

// GET /api/categories/:id
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	cat, err := h.catalog.GetCategory(c.Request.Context(), id)
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	handlers.OK(c, cat)
}

// GET /api/categories/:id/products
// The segment is the category slug; gin cannot name it differently from the sibling route.
func (h *CategoryHandler) CategoryProducts(c *gin.Context) {
	items, err := h.catalog.ProductsByCategorySlug(c.Request.Context(), c.Param("id"))
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	handlers.OK(c, items)
}

// POST /api/categories
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var input catalog.CategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		handlers.BadRequest(c, err)
		return
	}
	cat, err := h.catalog.CreateCategory(c.Request.Context(), input)
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	c.Set(middleware.KeyAuditValue, cat)
	handlers.Message(c, http.StatusCreated, "category created", cat)
}
