package registry

import (
	"github.com/labstack/echo/v4"

	"faktura/internal/api/controllers"
	"faktura/internal/api/middleware"
	"faktura/internal/models"
	"faktura/internal/rbac"
	"faktura/internal/services"

	"gorm.io/gorm"
)

// 📝 RegisterCRUDRoutes mounts the tenant-scoped CRUD surface - godoc
// @Summary Register CRUD routes for all models
// @Description Every resource route carries the ability guard matching
// @Description its operation; deletes resolve to admin-only abilities.
// @Accept json
// @Produce json
func RegisterCRUDRoutes(g *echo.Group, db *gorm.DB) {
	// Clients
	clientService := services.NewBaseService(db, models.Client{})
	clientController := controllers.NewBaseController(clientService)
	// @Summary Client CRUD
	// @Success 200 {array} models.Client
	// @Failure 401 {object} rbac.Denial "Unauthorized"
	// @Failure 403 {object} rbac.Denial "Forbidden"
	// @Router /api/v1/clients [get]
	clientController.RegisterRoutes(g, "/clients", controllers.Guards{
		Create: middleware.RequireAbility(rbac.AbilityClientsCreate),
		Read:   middleware.RequireAbility(rbac.AbilityClientsView),
		Update: middleware.RequireAbility(rbac.AbilityClientsEdit),
		Delete: middleware.RequireAbility(rbac.AbilityClientsDelete),
	})

	// Items
	itemService := services.NewBaseService(db, models.Item{})
	itemController := controllers.NewBaseController(itemService)
	// @Summary Item CRUD
	// @Success 200 {array} models.Item
	// @Failure 401 {object} rbac.Denial "Unauthorized"
	// @Failure 403 {object} rbac.Denial "Forbidden"
	// @Router /api/v1/items [get]
	itemController.RegisterRoutes(g, "/items", controllers.Guards{
		Create: middleware.RequireAbility(rbac.AbilityItemsCreate),
		Read:   middleware.RequireAbility(rbac.AbilityItemsView),
		Update: middleware.RequireAbility(rbac.AbilityItemsEdit),
		Delete: middleware.RequireAbility(rbac.AbilityItemsDelete),
	})

	// Layouts
	layoutService := services.NewBaseService(db, models.Layout{})
	layoutController := controllers.NewBaseController(layoutService)
	// @Summary Layout CRUD
	// @Success 200 {array} models.Layout
	// @Failure 401 {object} rbac.Denial "Unauthorized"
	// @Failure 403 {object} rbac.Denial "Forbidden"
	// @Router /api/v1/layouts [get]
	layoutController.RegisterRoutes(g, "/layouts", controllers.Guards{
		Create: middleware.RequireAbility(rbac.AbilityLayoutsCreate),
		Read:   middleware.RequireAbility(rbac.AbilityLayoutsView),
		Update: middleware.RequireAbility(rbac.AbilityLayoutsEdit),
		Delete: middleware.RequireAbility(rbac.AbilityLayoutsDelete),
	})

	// Invoices. Status transitions (send, mark paid) live on the invoice
	// handler; the generic controller only covers document CRUD.
	invoiceService := services.NewBaseService(db, models.Invoice{})
	invoiceController := controllers.NewBaseController(invoiceService)
	// @Summary Invoice CRUD
	// @Success 200 {array} models.Invoice
	// @Failure 401 {object} rbac.Denial "Unauthorized"
	// @Failure 403 {object} rbac.Denial "Forbidden"
	// @Router /api/v1/invoices [get]
	invoiceController.RegisterRoutes(g, "/invoices", controllers.Guards{
		Create: middleware.RequireAbility(rbac.AbilityInvoicesCreate),
		Read:   middleware.RequireAbility(rbac.AbilityInvoicesView),
		Update: middleware.RequireAbility(rbac.AbilityInvoicesEdit),
		Delete: middleware.RequireAbility(rbac.AbilityInvoicesDelete),
	})

	// Businesses: read for everyone in the tenant, edit is manager+.
	// Businesses are never deleted through the API.
	businessService := services.NewBaseService(db, models.Business{})
	businessController := controllers.NewBaseController(businessService)
	businessGroup := g.Group("/businesses")
	// @Summary Get business
	// @Success 200 {object} models.Business
	// @Failure 401 {object} rbac.Denial "Unauthorized"
	// @Router /api/v1/businesses/{id} [get]
	businessGroup.GET("/:id", businessController.Get, middleware.RequireAbility(rbac.AbilityBusinessView))
	businessGroup.GET("", businessController.List, middleware.RequireAbility(rbac.AbilityBusinessView))
	// @Summary Update business
	// @Success 200 {object} models.Business
	// @Failure 403 {object} rbac.Denial "Forbidden"
	// @Router /api/v1/businesses/{id} [put]
	businessGroup.PUT("/:id", businessController.Update, middleware.RequireAbility(rbac.AbilityBusinessEdit))

	// Invites: listing and revoking ride on the user-management abilities.
	inviteService := services.NewBaseService(db, models.BusinessInvite{})
	inviteController := controllers.NewBaseController(inviteService)
	inviteGroup := g.Group("/invites")
	// @Summary List invites
	// @Success 200 {array} models.BusinessInvite
	// @Failure 403 {object} rbac.Denial "Forbidden"
	// @Router /api/v1/invites [get]
	inviteGroup.GET("", inviteController.List, middleware.RequireAbility(rbac.AbilityUsersView))
	// @Summary Revoke invite
	// @Success 204 "No content"
	// @Failure 403 {object} rbac.Denial "Forbidden"
	// @Router /api/v1/invites/{id} [delete]
	inviteGroup.DELETE("/:id", inviteController.Delete, middleware.RequireAbility(rbac.AbilityUsersDelete))

	// file routes
	fileService := services.NewBaseService(db, models.File{})
	fileController := controllers.NewBaseController(fileService)
	fileGroup := g.Group("/files")
	// @Summary List files
	// @Success 200 {array} models.File
	// @Failure 401 {object} rbac.Denial "Unauthorized"
	// @Router /api/v1/files [get]
	fileGroup.GET("", fileController.List, middleware.RequireAbility(rbac.AbilityInvoicesView))
	// @Summary Get file
	// @Success 200 {object} models.File
	// @Failure 404 {object} map[string]string "Not found"
	// @Router /api/v1/files/{id} [get]
	fileGroup.GET("/:id", fileController.Get, middleware.RequireAbility(rbac.AbilityInvoicesView))
}
