package middleware

import (
	"github.com/gin-gonic/gin"

	"dkstore_back_end/internal/utils"
)

// Context key a handler can set to attach the affected record to the audit entry.
const KeyAuditValue = "audit_value"

// AuditCriticalActions records the outcome of the wrapped handler.
func AuditCriticalActions(rec *utils.AuditRecorder, action, resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		resourceID := c.Param("id")
		if resourceID == "" {
			resourceID = c.Param("orderId")
		}
		if resourceID == "" {
			resourceID = c.Param("productId")
		}

		c.Next()

		status := c.Writer.Status()
		entry := utils.AuditEntry{
			UserID:     CurrentUserID(c),
			UserEmail:  CurrentEmail(c),
			Action:     action,
			Resource:   resource,
			ResourceID: resourceID,
			IPAddress:  c.ClientIP(),
			UserAgent:  c.Request.UserAgent(),
			Success:    status >= 200 && status < 300,
		}
		if v, ok := c.Get(KeyAuditValue); ok {
			entry.NewValue = v
		}
		if !entry.Success {
			entry.ErrorMsg = c.Errors.String()
			if entry.ErrorMsg == "" {
				entry.ErrorMsg = "request failed"
			}
		}
		rec.Record(c.Request.Context(), entry)
	}
}
