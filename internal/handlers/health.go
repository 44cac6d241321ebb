package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether a backing store answers.
type Pinger func(ctx context.Context) error

// Health answers GET /health with the database state and uptime.
func Health(ping Pinger, started time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status, db := http.StatusOK, "ok"
		if err := ping(ctx); err != nil {
			status, db = http.StatusServiceUnavailable, "unavailable"
		}
		c.JSON(status, Envelope{
			Success: status == http.StatusOK,
			Data: gin.H{
				"status":    db,
				"database":  db,
				"uptime":    time.Since(started).Round(time.Second).String(),
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			},
		})
	}
}

// Banner answers GET / with the endpoint map.
func Banner(c *gin.Context) {
	c.JSON(http.StatusOK, Envelope{
		Success: true,
		Message: "DK Store API",
		Data: gin.H{
			"version": "1.0.0",
			"endpoints": gin.H{
				"health":     "/health",
				"categories": "/api/categories",
				"products":   "/api/products",
				"users":      "/api/users",
				"orders":     "/api/orders",
				"cart":       "/api/orders/cart",
				"inventory":  "/api/inventory",
				"uploads":    "/api/uploads",
			},
		},
	})
}

// NotFound is the fallback for unknown routes.
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, Envelope{
		Success: false,
		Message: "route " + c.Request.Method + " " + c.Request.URL.Path + " not found",
	})
}
