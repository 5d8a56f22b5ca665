package routes

import (
	"faktura/internal/api/middleware"
	"faktura/internal/config"
	"faktura/internal/handlers"
	"faktura/internal/rbac"
	"faktura/internal/utils"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

func SetupAuthRoutes(e *echo.Echo, db *gorm.DB, cfg *config.Config) {
	tokens := utils.NewTokenManager(cfg.JWT.Secret)
	authHandler := handlers.NewAuthHandler(db, tokens)

	base := e.Group("/api/v1")

	// Public auth routes group
	auth := base.Group("/auth")
	users := base.Group("/users")

	// Public routes (no auth required)
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	auth.POST("/accept/:code", authHandler.AcceptInvite)
	auth.POST("/password-reset", authHandler.RequestPasswordReset)
	auth.POST("/password-reset/verify", authHandler.VerifyResetCode)
	auth.POST("/refresh", authHandler.RefreshToken)

	// Protected user routes (require authentication)
	authMiddleware := middleware.NewAuthMiddleware(tokens, middleware.NewGormProfileStore(db))
	users.Use(authMiddleware.Middleware())

	users.GET("/me", authHandler.GetMe)
	users.POST("/logout", authHandler.Logout)

	// User management rides on the users.* abilities; deletes and role
	// changes resolve to admin-only entries in the matrix.
	users.GET("", authHandler.ListUsers, middleware.RequireAbility(rbac.AbilityUsersView))
	users.GET("/:id", authHandler.GetUser, middleware.RequireAbility(rbac.AbilityUsersView))
	users.PUT("/:id", authHandler.UpdateUser, middleware.RequireAbility(rbac.AbilityUsersEdit))
	users.DELETE("/:id", authHandler.DeleteUser, middleware.RequireAbility(rbac.AbilityUsersDelete))
	users.PUT("/:id/role", authHandler.ChangeRole, middleware.RequireAbility(rbac.AbilityUsersChangeRole))

	users.POST("/invite", authHandler.InviteUser, middleware.RequireAbility(rbac.AbilityUsersCreate))
	users.DELETE("/invite/:id", authHandler.DeleteInvite, middleware.RequireAbility(rbac.AbilityUsersDelete))
}
