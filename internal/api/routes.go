package api

import (
	"net/http"

	"faktura/internal/api/middleware"
	"faktura/internal/api/registry"
	"faktura/internal/routes"
	"faktura/internal/utils"

	_ "faktura/docs/swagger"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

func (s *Server) registerRoutes() {
	s.echo.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "Faktura API")
	})
	// Health check
	// @Summary Health check
	// @Description Check if the server is running
	// @Accept json
	// @Produce json
	// @Success 200 {object} map[string]string "OK"
	// @Router /health [get]
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/swagger/*", echoSwagger.WrapHandler)

	// API v1 group: authentication first, then per-route ability guards.
	api := s.echo.Group("/api/v1")
	tokens := utils.NewTokenManager(s.config.JWT.Secret)
	auth := middleware.NewAuthMiddleware(tokens, middleware.NewGormProfileStore(s.db))
	api.Use(auth.Middleware())

	// Register CRUD routes for all models
	registry.RegisterCRUDRoutes(api, s.db)

	routes.SetupUploadRoutes(api, s.config)
	routes.SetupInvoiceRoutes(s.echo, api, s.db, s.config)
}
