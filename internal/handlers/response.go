// Package handlers holds the JSON envelope shared by every HTTP handler.
package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"sync/atomic"

	"github.com/gin-gonic/gin"

	"dkstore_back_end/internal/apperr"
	"dkstore_back_end/internal/models"
)

// Envelope is the body of every API response.
type Envelope struct {
	Success    bool               `json:"success"`
	Message    string             `json:"message,omitempty"`
	Data       any                `json:"data,omitempty"`
	Pagination *models.Pagination `json:"pagination,omitempty"`
	Error      string             `json:"error,omitempty"`
	Details    map[string]any     `json:"details,omitempty"`
}

var exposeErrors atomic.Bool

// ExposeErrors makes internal error causes visible in responses. Development only.
func ExposeErrors(on bool) { exposeErrors.Store(on) }

func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

func Message(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Envelope{Success: true, Message: message, Data: data})
}

func Paginated(c *gin.Context, data any, p models.Pagination) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data, Pagination: &p})
}

// Fail renders err with the status of its kind and aborts the chain.
func Fail(c *gin.Context, err error) {
	ae := apperr.As(err)
	status := apperr.HTTPStatus(ae.Kind)
	body := Envelope{Success: false, Message: ae.Message, Details: ae.Details}

	if ae.Kind == apperr.KindInternal {
		slog.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method, "path", c.FullPath(), "error", err)
		body.Message = "internal server error"
		if exposeErrors.Load() {
			body.Error = err.Error()
		}
	}
	c.AbortWithStatusJSON(status, body)
}

// Abort answers with a plain failure message.
func Abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Envelope{Success: false, Message: message})
}

// BadRequest reports an unparsable body.
func BadRequest(c *gin.Context, err error) {
	body := Envelope{Success: false, Message: "invalid request body"}
	if exposeErrors.Load() && err != nil {
		body.Error = err.Error()
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, body)
}

// ParamID reads a positive integer path parameter.
func ParamID(c *gin.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		return 0, apperr.Validation("invalid %s", name)
	}
	return uint(v), nil
}
