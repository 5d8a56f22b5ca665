package routes

import (
	"faktura/internal/api/middleware"
	"faktura/internal/config"
	"faktura/internal/handlers"
	"faktura/internal/rbac"
	"faktura/internal/utils/logger"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// SetupInvoiceRoutes mounts the invoice workflow endpoints. The shared
// link endpoint hangs off the root echo instance because it serves
// anonymous visitors.
func SetupInvoiceRoutes(e *echo.Echo, api *echo.Group, db *gorm.DB, cfg *config.Config) {
	log := logger.New("invoice_routes")

	invoiceHandler := handlers.NewInvoiceHandler(db, cfg)

	invoices := api.Group("/invoices")
	invoices.POST("/:id/send", invoiceHandler.Send, middleware.RequireAbility(rbac.AbilityInvoicesSend))
	invoices.POST("/:id/pay", invoiceHandler.MarkPaid, middleware.RequireAbility(rbac.AbilityInvoicesEdit))
	invoices.POST("/:id/share", invoiceHandler.ShareLink, middleware.RequireAbility(rbac.AbilityInvoicesSend))
	invoices.GET("/export", invoiceHandler.Export, middleware.RequireAbility(rbac.AbilityInvoicesExport))

	e.GET("/shared/invoices/:token", invoiceHandler.Shared)

	log.Success("Invoice routes initialized successfully")
}
