package admin

import (
	"github.com/gin-gonic/gin"

	"dkstore_back_end/internal/handlers"
	"dkstore_back_end/internal/utils"
)

type AuditHandler struct {
	audit *utils.AuditRecorder
}

func NewAuditHandler(rec *utils.AuditRecorder) *AuditHandler {
	return &AuditHandler{audit: rec}
}

// GET /api/admin/audit-logs?action=&resource=&user_id=&limit=
func (h *AuditHandler) GetAuditLogs(c *gin.Context) {
	var f utils.AuditFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		handlers.BadRequest(c, err)
		return
	}
	logs, err := h.audit.List(c.Request.Context(), f)
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	handlers.OK(c, logs)
}
