package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"dkstore_back_end/internal/cache"
	"dkstore_back_end/internal/handlers"
)

const (
	CartMaxRequests = 20
	CartWindow      = time.Minute

	LoginMaxAttempts = 5
	LoginCooldown    = 15 * time.Minute
)

func tooManyRequests(c *gin.Context, message string, retryAfter time.Duration) {
	secs := int(retryAfter.Seconds())
	c.Header("Retry-After", strconv.Itoa(secs))
	c.AbortWithStatusJSON(http.StatusTooManyRequests, handlers.Envelope{
		Success: false,
		Message: message,
		Details: map[string]any{"retry_after": secs},
	})
}

// CartRateLimit caps cart mutations per authenticated user. Without Redis
// every request passes.
func CartRateLimit(r *cache.Redis) gin.HandlerFunc {
	return func(c *gin.Context) {
		if r == nil {
			c.Next()
			return
		}
		ctx := c.Request.Context()
		key := fmt.Sprintf("rate:cart:%d", CurrentUserID(c))

		n, err := r.Hit(ctx, key, CartWindow)
		if err != nil {
			slog.WarnContext(ctx, "cart rate limit unavailable", "error", err)
			c.Next()
			return
		}
		if n > CartMaxRequests {
			tooManyRequests(c, "too many cart operations, try again shortly", r.TTL(ctx, key))
			return
		}
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(CartMaxRequests-n, 10))
		c.Next()
	}
}

// LoginRateLimit locks an email out for LoginCooldown after
// LoginMaxAttempts failed logins.
func LoginRateLimit(r *cache.Redis) gin.HandlerFunc {
	return func(c *gin.Context) {
		if r == nil {
			c.Next()
			return
		}

		bodyBytes, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.Next()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(bodyBytes))

		var input struct {
			Email string `json:"email"`
		}
		if err := json.Unmarshal(bodyBytes, &input); err != nil || input.Email == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		email := strings.ToLower(strings.TrimSpace(input.Email))
		attemptsKey := "login_attempts:" + email
		cooldownKey := "login_cooldown:" + email

		if locked, _ := r.Get(ctx, cooldownKey); locked != "" {
			ttl := r.TTL(ctx, cooldownKey)
			tooManyRequests(c, fmt.Sprintf("too many failed attempts, try again in %d minutes", int(ttl.Minutes())+1), ttl)
			return
		}

		c.Next()

		switch c.Writer.Status() {
		case http.StatusUnauthorized:
			n, err := r.Hit(ctx, attemptsKey, LoginCooldown)
			if err != nil {
				slog.WarnContext(ctx, "login attempt not counted", "error", err)
				return
			}
			if n >= LoginMaxAttempts {
				_ = r.Set(ctx, cooldownKey, "1", LoginCooldown)
				_ = r.Delete(ctx, attemptsKey)
				slog.WarnContext(ctx, "login locked", "email", email)
			}
		case http.StatusOK:
			_ = r.Delete(ctx, attemptsKey, cooldownKey)
		}
	}
}
