package user

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dkstore_back_end/internal/apperr"
	"dkstore_back_end/internal/handlers"
	"dkstore_back_end/internal/middleware"
	"dkstore_back_end/internal/users"
	"dkstore_back_end/internal/utils"
)

type AuthHandler struct {
	users *users.Service
	audit *utils.AuditRecorder
}

func NewAuthHandler(svc *users.Service, audit *utils.AuditRecorder) *AuthHandler {
	return &AuthHandler{users: svc, audit: audit}
}

// POST /api/users/register
func (h *AuthHandler) Register(c *gin.Context) {
	var input users.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		handlers.BadRequest(c, err)
		return
	}

	u, err := h.users.Register(c.Request.Context(), input)
	if err != nil {
		handlers.Fail(c, err)
		return
	}

	h.audit.Record(c.Request.Context(), utils.AuditEntry{
		UserID: u.ID, UserEmail: u.Email,
		Action: utils.ActionUserRegister, Resource: utils.ResourceUser,
		IPAddress: c.ClientIP(), UserAgent: c.Request.UserAgent(), Success: true,
	})
	handlers.Message(c, http.StatusCreated, "user registered", u)
}

// POST /api/users/login
func (h *AuthHandler) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		handlers.BadRequest(c, err)
		return
	}

	session, err := h.users.Login(c.Request.Context(), input.Email, input.Password)
	entry := utils.AuditEntry{
		UserEmail: input.Email,
		Action:    utils.ActionLoginSuccess,
		Resource:  utils.ResourceAuth,
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Success:   err == nil,
	}
	if err != nil {
		if apperr.Is(err, apperr.KindAuth) {
			entry.Action = utils.ActionLoginFailed
			entry.ErrorMsg = err.Error()
			h.audit.Record(c.Request.Context(), entry)
		}
		handlers.Fail(c, err)
		return
	}
	entry.UserID = session.User.ID
	h.audit.Record(c.Request.Context(), entry)

	handlers.Message(c, http.StatusOK, "login successful", session)
}

// GET /api/users/profile
func (h *AuthHandler) Profile(c *gin.Context) {
	u, err := h.users.Profile(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	handlers.OK(c, u)
}
