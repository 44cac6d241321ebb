package utils

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"dkstore_back_end/internal/models"
)

// Audit actions.
const (
	ActionProductCreate = "product.create"
	ActionProductUpdate = "product.update"
	ActionProductDelete = "product.delete"

	ActionCategoryCreate = "category.create"

	ActionImageUpload     = "image.upload"
	ActionImageDelete     = "image.delete"
	ActionImageSetPrimary = "image.set_primary"

	ActionOrderCreate       = "order.create"
	ActionOrderStatusUpdate = "order.status_update"

	ActionStockUpdate = "stock.update"

	ActionUserRegister = "user.register"
	ActionLoginSuccess = "auth.login_success"
	ActionLoginFailed  = "auth.login_failed"
)

// Audit resources.
const (
	ResourceProduct   = "product"
	ResourceCategory  = "category"
	ResourceImage     = "image"
	ResourceOrder     = "order"
	ResourceInventory = "inventory"
	ResourceUser      = "user"
	ResourceAuth      = "auth"
)

// AuditEntry is what callers know about an action when they record it.
type AuditEntry struct {
	UserID     uint
	UserEmail  string
	Action     string
	Resource   string
	ResourceID string
	NewValue   any
	IPAddress  string
	UserAgent  string
	Success    bool
	ErrorMsg   string
}

// AuditRecorder persists audit entries without blocking the request path.
type AuditRecorder struct {
	db  *gorm.DB
	log *slog.Logger
}

func NewAuditRecorder(db *gorm.DB) *AuditRecorder {
	return &AuditRecorder{db: db, log: slog.Default().With("component", "audit")}
}

// Record writes the entry in the background.
func (r *AuditRecorder) Record(ctx context.Context, e AuditEntry) {
	if r == nil {
		return
	}
	go func() {
		writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := r.Write(writeCtx, e); err != nil {
			r.log.ErrorContext(writeCtx, "audit log not stored", "action", e.Action, "error", err)
		}
	}()
}

// Write stores the entry synchronously.
func (r *AuditRecorder) Write(ctx context.Context, e AuditEntry) error {
	row := models.AuditLog{
		UserID:     e.UserID,
		UserEmail:  e.UserEmail,
		Action:     e.Action,
		Resource:   e.Resource,
		ResourceID: e.ResourceID,
		IPAddress:  e.IPAddress,
		UserAgent:  truncate(e.UserAgent, 255),
		Success:    e.Success,
		ErrorMsg:   truncate(e.ErrorMsg, 255),
	}
	if e.NewValue != nil {
		if b, err := json.Marshal(e.NewValue); err == nil {
			row.NewValue = string(b)
		}
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

// AuditFilter narrows List. Empty fields are ignored.
type AuditFilter struct {
	Action   string `form:"action"`
	Resource string `form:"resource"`
	UserID   uint   `form:"user_id"`
	Limit    int    `form:"limit"`
}

// List returns the latest matching entries, newest first.
func (r *AuditRecorder) List(ctx context.Context, f AuditFilter) ([]models.AuditLog, error) {
	if f.Limit <= 0 || f.Limit > 500 {
		f.Limit = 100
	}
	q := r.db.WithContext(ctx).Model(&models.AuditLog{})
	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}
	if f.Resource != "" {
		q = q.Where("resource = ?", f.Resource)
	}
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	var logs []models.AuditLog
	err := q.Order("created_at DESC, id DESC").Limit(f.Limit).Find(&logs).Error
	return logs, err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
