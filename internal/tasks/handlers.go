package tasks

import (
	"context"
	"encoding/json"
	"time"

	"faktura/internal/config"
	"faktura/internal/events"
	"faktura/internal/models"
	"faktura/internal/utils/logger"

	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

var (
	cfg, _ = config.Load()
)

// TaskHandler handles task processing with improved error handling and logging
type TaskHandler struct {
	db         *gorm.DB
	logger     *logger.Logger
	taskClient *TaskClient
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(db *gorm.DB) *TaskHandler {
	h := &TaskHandler{
		db:         db,
		logger:     logger.New("task_handler"),
		taskClient: NewTaskClient(cfg.Redis.Addr, cfg.Redis.Username, cfg.Redis.Password, cfg.Redis.DB),
	}

	// Sending an invoice queues its delivery.
	events.On("invoice.sent", func(data interface{}) {
		invoice, ok := data.(*models.Invoice)
		if !ok {
			return
		}
		if err := h.taskClient.EnqueueInvoiceDelivery(context.Background(), invoice.ID, invoice.BusinessID); err != nil {
			h.logger.Error("failed to enqueue invoice delivery", err)
		}
	})

	return h
}

// HandleInvoiceDeliver resolves a delivery task and hands the invoice
// to downstream listeners (mailer, webhooks). Deleted invoices and
// invoices no longer in SENT are skipped without error.
func (h *TaskHandler) HandleInvoiceDeliver(ctx context.Context, t *asynq.Task) error {
	var payload DeliverPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return err
	}

	var invoice models.Invoice
	if err := h.db.WithContext(ctx).
		Where("id = ? AND business_id = ? AND is_deleted = ?", payload.InvoiceID, payload.BusinessID, false).
		Preload("Client").First(&invoice).Error; err != nil {
		h.logger.Warn("delivery skipped, invoice %s not found", payload.InvoiceID)
		return nil
	}

	if invoice.Status != models.InvoiceStatusSent {
		return nil
	}

	events.Emit("invoice.delivery_requested", &invoice)
	h.logger.Info("delivery requested for invoice %s", invoice.ID)
	return nil
}

// HandleInvoiceOverdueSweep flips SENT invoices whose due date has
// passed to OVERDUE. The sweep is idempotent: rerunning it touches
// nothing it already flipped.
func (h *TaskHandler) HandleInvoiceOverdueSweep(ctx context.Context, t *asynq.Task) error {
	now := time.Now()

	var overdue []models.Invoice
	if err := h.db.WithContext(ctx).
		Where("status = ? AND due_at < ? AND is_deleted = ?", models.InvoiceStatusSent, now, false).
		Find(&overdue).Error; err != nil {
		return err
	}

	if len(overdue) == 0 {
		return nil
	}

	if err := h.db.WithContext(ctx).Model(&models.Invoice{}).
		Where("status = ? AND due_at < ? AND is_deleted = ?", models.InvoiceStatusSent, now, false).
		Update("status", models.InvoiceStatusOverdue).Error; err != nil {
		return err
	}

	for i := range overdue {
		overdue[i].Status = models.InvoiceStatusOverdue
		events.Emit("invoice.overdue", &overdue[i])
	}

	h.logger.Info("overdue sweep flipped %d invoices", len(overdue))
	return nil
}

// HandleAuthPurge drops expired sessions and spent password reset
// codes so stale credentials stop resolving.
func (h *TaskHandler) HandleAuthPurge(ctx context.Context, t *asynq.Task) error {
	now := time.Now()

	sessions := h.db.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&models.AuthTransaction{})
	if sessions.Error != nil {
		return sessions.Error
	}

	resets := h.db.WithContext(ctx).
		Where("used = ? OR expires_at < ?", true, now).
		Delete(&models.PasswordReset{})
	if resets.Error != nil {
		return resets.Error
	}

	h.logger.Info("auth purge removed %d sessions and %d reset codes", sessions.RowsAffected, resets.RowsAffected)
	return nil
}
