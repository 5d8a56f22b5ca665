package handlers

import (
	"net/http"
	"time"

	"faktura/internal/api/middleware"
	"faktura/internal/config"
	"faktura/internal/events"
	"faktura/internal/models"
	"faktura/internal/utils/crypto"
	"faktura/internal/utils/logger"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// InvoiceHandler owns the status workflow of an invoice and its public
// share links. Document CRUD lives on the generic controller.
type InvoiceHandler struct {
	db  *gorm.DB
	cfg *config.Config
	log *logger.Logger
}

func NewInvoiceHandler(db *gorm.DB, cfg *config.Config) *InvoiceHandler {
	return &InvoiceHandler{db: db, cfg: cfg, log: logger.New("InvoiceHandler")}
}

func (h *InvoiceHandler) ownedInvoice(c echo.Context) (*models.Invoice, error) {
	id := c.Param("id")
	businessID := middleware.GetBusinessID(c)

	var invoice models.Invoice
	if err := h.db.Where("id = ? AND business_id = ? AND is_deleted = ?", id, businessID, false).First(&invoice).Error; err != nil {
		return nil, echo.NewHTTPError(http.StatusNotFound, "invoice not found")
	}
	return &invoice, nil
}

// Send transitions a draft invoice to SENT and stamps the send time.
// @Summary Send an invoice
// @Description Transition a DRAFT invoice to SENT
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} models.Invoice
// @Failure 403 {object} rbac.Denial "Forbidden"
// @Failure 404 {object} map[string]string "Not found"
// @Failure 409 {object} map[string]string "Invalid status transition"
// @Router /api/v1/invoices/{id}/send [post]
func (h *InvoiceHandler) Send(c echo.Context) error {
	invoice, err := h.ownedInvoice(c)
	if err != nil {
		return err
	}

	if invoice.Status != models.InvoiceStatusDraft {
		return c.JSON(http.StatusConflict, map[string]string{"error": "Only draft invoices can be sent"})
	}

	now := time.Now()
	invoice.Status = models.InvoiceStatusSent
	invoice.SentAt = &now
	if invoice.IssuedAt.IsZero() {
		invoice.IssuedAt = now
	}

	if err := h.db.Save(invoice).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update invoice"})
	}

	events.Emit("invoice.sent", invoice)

	return c.JSON(http.StatusOK, invoice)
}

// MarkPaid stamps a sent or overdue invoice as PAID.
// @Summary Mark an invoice paid
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} models.Invoice
// @Failure 403 {object} rbac.Denial "Forbidden"
// @Failure 404 {object} map[string]string "Not found"
// @Failure 409 {object} map[string]string "Invalid status transition"
// @Router /api/v1/invoices/{id}/pay [post]
func (h *InvoiceHandler) MarkPaid(c echo.Context) error {
	invoice, err := h.ownedInvoice(c)
	if err != nil {
		return err
	}

	if invoice.Status != models.InvoiceStatusSent && invoice.Status != models.InvoiceStatusOverdue {
		return c.JSON(http.StatusConflict, map[string]string{"error": "Only sent or overdue invoices can be paid"})
	}

	now := time.Now()
	invoice.Status = models.InvoiceStatusPaid
	invoice.PaidAt = &now

	if err := h.db.Save(invoice).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update invoice"})
	}

	events.Emit("invoice.paid", invoice)

	return c.JSON(http.StatusOK, invoice)
}

// ShareLink issues a signed public link for an invoice.
// @Summary Create a public share link
// @Description Issue a signed, expiring link that renders the invoice without a session
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} map[string]string "Share token"
// @Failure 403 {object} rbac.Denial "Forbidden"
// @Failure 404 {object} map[string]string "Not found"
// @Router /api/v1/invoices/{id}/share [post]
func (h *InvoiceHandler) ShareLink(c echo.Context) error {
	invoice, err := h.ownedInvoice(c)
	if err != nil {
		return err
	}

	ttl := time.Duration(h.cfg.Invoicing.ShareLinkTTLDays) * 24 * time.Hour
	token, err := crypto.SignShareToken(invoice.ID, invoice.BusinessID, ttl)
	if err != nil {
		h.log.Error("Failed to sign share token", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create share link"})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"token":      token,
		"url":        "/shared/invoices/" + token,
		"expires_in": ttl.String(),
	})
}

// Shared serves a shared invoice to an anonymous visitor. The token is
// the only credential; it scopes the lookup to one invoice in one
// business.
// @Summary Fetch a shared invoice
// @Tags invoices
// @Produce json
// @Param token path string true "Share token"
// @Success 200 {object} models.Invoice
// @Failure 404 {object} map[string]string "Unknown or expired link"
// @Router /shared/invoices/{token} [get]
func (h *InvoiceHandler) Shared(c echo.Context) error {
	claims, err := crypto.VerifyShareToken(c.Param("token"))
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Unknown or expired link"})
	}

	var invoice models.Invoice
	if err := h.db.Where("id = ? AND business_id = ? AND is_deleted = ?",
		claims.InvoiceID, claims.BusinessID, false).
		Preload("Client").Preload("Layout").Preload("Business").
		First(&invoice).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Unknown or expired link"})
	}

	return c.JSON(http.StatusOK, invoice)
}

// Export returns a flat listing of the business's invoices for
// bookkeeping export.
// @Summary Export invoices
// @Tags invoices
// @Produce json
// @Success 200 {array} models.Invoice
// @Failure 403 {object} rbac.Denial "Forbidden"
// @Router /api/v1/invoices/export [get]
func (h *InvoiceHandler) Export(c echo.Context) error {
	businessID := middleware.GetBusinessID(c)

	var invoices []models.Invoice
	if err := h.db.Where("business_id = ? AND is_deleted = ?", businessID, false).
		Preload("Client").Order("issued_at desc").Find(&invoices).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to export invoices"})
	}

	return c.JSON(http.StatusOK, invoices)
}
