package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"dkstore_back_end/internal/auth"
	"dkstore_back_end/internal/handlers"
)

// Context keys set by AuthRequired.
const (
	KeyUserID = "user_id"
	KeyEmail  = "email"
	KeyRole   = "role"
)

// AuthRequired accepts "Authorization: Bearer <token>" or, for websocket
// upgrades that cannot set headers, a token query parameter.
func AuthRequired(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			handlers.Abort(c, http.StatusUnauthorized, "access token required")
			return
		}

		claims, err := tokens.Parse(tokenString)
		if err != nil {
			slog.DebugContext(c.Request.Context(), "token rejected", "error", err)
			handlers.Abort(c, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		c.Set(KeyUserID, claims.UserID)
		c.Set(KeyEmail, claims.Email)
		c.Set(KeyRole, claims.Role)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			return ""
		}
		return strings.TrimSpace(token)
	}
	return c.Query("token")
}

// CurrentUserID returns the authenticated user, 0 outside AuthRequired.
func CurrentUserID(c *gin.Context) uint {
	return c.GetUint(KeyUserID)
}

func CurrentEmail(c *gin.Context) string {
	return c.GetString(KeyEmail)
}
