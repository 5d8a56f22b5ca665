package routes

import (
	"faktura/internal/api/middleware"
	"faktura/internal/config"
	"faktura/internal/handlers"
	"faktura/internal/rbac"
	"faktura/internal/utils/logger"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/labstack/echo/v4"
)

func SetupUploadRoutes(api *echo.Group, cfg *config.Config) {
	log := logger.New("upload_routes")

	// Initialize upload handler
	uploadHandler := handlers.NewUploadHandler(
		types.ObjectCannedACLAuthenticatedRead,
	)

	fileGroup := api.Group("/files")

	// Uploads back logos and layout assets, so the layout edit ability
	// is the natural gate.
	fileGroup.POST("/upload", uploadHandler.UploadFile, middleware.RequireAbility(rbac.AbilityLayoutsEdit))

	log.Success("Upload routes initialized successfully")
}
