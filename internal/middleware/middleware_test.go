package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dkstore_back_end/internal/auth"
	"dkstore_back_end/internal/cache"
	"dkstore_back_end/internal/logger"
	"dkstore_back_end/internal/models"
)

func init() { gin.SetMode(gin.TestMode) }

func newRedis(t *testing.T) (*cache.Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewRedis(client), mr
}

func TestAuthRequired(t *testing.T) {
	tokens := auth.NewTokenManager("secret", time.Hour)
	r := gin.New()
	r.GET("/me", AuthRequired(tokens), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": CurrentUserID(c), "email": CurrentEmail(c)})
	})
	r.GET("/admin", AuthRequired(tokens), RequireAdmin, func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	customer, err := tokens.Issue(models.User{ID: 7, Email: "ana@example.com", Role: models.RoleCustomer})
	require.NoError(t, err)
	admin, err := tokens.Issue(models.User{ID: 1, Email: "admin@example.com", Role: models.RoleAdmin})
	require.NoError(t, err)

	do := func(path, header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusUnauthorized, do("/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do("/me", "Bearer garbage").Code)
	assert.Equal(t, http.StatusUnauthorized, do("/me", "Token "+customer).Code)

	w := do("/me", "Bearer "+customer)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":7,"email":"ana@example.com"}`, w.Body.String())

	assert.Equal(t, http.StatusOK, do("/me?token="+customer, "").Code)

	assert.Equal(t, http.StatusForbidden, do("/admin", "Bearer "+customer).Code)
	assert.Equal(t, http.StatusNoContent, do("/admin", "Bearer "+admin).Code)
}

func TestCartRateLimit(t *testing.T) {
	rc, _ := newRedis(t)
	r := gin.New()
	r.POST("/cart", func(c *gin.Context) { c.Set(KeyUserID, uint(3)) }, CartRateLimit(rc), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < CartMaxRequests; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/cart", nil))
		require.Equal(t, http.StatusOK, w.Code, "request %d", i+1)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/cart", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestCartRateLimitWithoutRedis(t *testing.T) {
	r := gin.New()
	r.POST("/cart", CartRateLimit(nil), func(c *gin.Context) { c.Status(http.StatusOK) })
	for i := 0; i < CartMaxRequests+5; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/cart", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
}

func TestLoginRateLimit(t *testing.T) {
	rc, mr := newRedis(t)
	r := gin.New()
	r.POST("/login", LoginRateLimit(rc), func(c *gin.Context) {
		var body struct {
			Password string `json:"password"`
		}
		_ = c.ShouldBindJSON(&body)
		if body.Password != "ok" {
			c.Status(http.StatusUnauthorized)
			return
		}
		c.Status(http.StatusOK)
	})

	login := func(password string) int {
		w := httptest.NewRecorder()
		body := `{"email":"Ana@Example.com","password":"` + password + `"}`
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body)))
		return w.Code
	}

	assert.Equal(t, http.StatusUnauthorized, login("bad"))
	assert.Equal(t, http.StatusOK, login("ok"))
	assert.False(t, mr.Exists("login_attempts:ana@example.com"))

	for i := 0; i < LoginMaxAttempts; i++ {
		require.Equal(t, http.StatusUnauthorized, login("bad"))
	}
	assert.Equal(t, http.StatusTooManyRequests, login("ok"))

	mr.FastForward(LoginCooldown + time.Second)
	assert.Equal(t, http.StatusOK, login("ok"))
}

func TestRequestIDPropagates(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), AccessLog())
	var seen string
	r.GET("/", func(c *gin.Context) {
		seen = logger.RequestID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "req-123")
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-123", seen)
	assert.Equal(t, "req-123", w.Header().Get(HeaderRequestID))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, w.Header().Get(HeaderRequestID), 36)
}
