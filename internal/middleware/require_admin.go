package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dkstore_back_end/internal/handlers"
	"dkstore_back_end/internal/models"
)

// RequireAdmin must run after AuthRequired.
func RequireAdmin(c *gin.Context) {
	if c.GetString(KeyRole) != models.RoleAdmin {
		handlers.Abort(c, http.StatusForbidden, "admin access required")
		return
	}
	c.Next()
}
