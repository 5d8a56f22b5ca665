package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"faktura/internal/models"
	"faktura/internal/rbac"
	"faktura/internal/utils"
	"faktura/internal/utils/logger"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

var log = logger.New("auth_middleware")

const identityContextKey = "identity"

// TokenVerifier resolves a bearer credential to verified claims.
type TokenVerifier interface {
	ParseToken(tokenString string) (*utils.Claims, error)
}

// ProfileStore loads the caller's profile and checks that the token still
// belongs to an active session.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (*models.User, error)
	HasActiveSession(ctx context.Context, userID, token string) (bool, error)
}

// GormProfileStore is the database-backed ProfileStore.
type GormProfileStore struct {
	db *gorm.DB
}

func NewGormProfileStore(db *gorm.DB) *GormProfileStore {
	return &GormProfileStore{db: db}
}

func (s *GormProfileStore) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	user := &models.User{}
	if err := s.db.WithContext(ctx).Where("id = ? AND is_deleted = ?", userID, false).First(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (s *GormProfileStore) HasActiveSession(ctx context.Context, userID, token string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.AuthTransaction{}).
		Where("user_id = ? AND token = ?", userID, token).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// AuthMiddleware authenticates a request: it extracts the bearer
// credential, verifies it, loads the caller's profile and attaches a
// typed rbac.Identity to the context. Authorization is left to the
// guard factories; this stage only answers "who is calling".
//
// Both collaborators are injected so tests can stub them and the
// process owns their lifecycle.
type AuthMiddleware struct {
	tokens   TokenVerifier
	profiles ProfileStore
}

func NewAuthMiddleware(tokens TokenVerifier, profiles ProfileStore) *AuthMiddleware {
	return &AuthMiddleware{
		tokens:   tokens,
		profiles: profiles,
	}
}

func (m *AuthMiddleware) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return unauthorized("Missing authorization header")
			}

			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
				return unauthorized("Invalid authorization header format")
			}

			return m.resolveIdentity(c, tokenParts[1], next)
		}
	}
}

func (m *AuthMiddleware) resolveIdentity(c echo.Context, tokenString string, next echo.HandlerFunc) error {
	claims, err := m.tokens.ParseToken(tokenString)
	if err != nil {
		log.Error("Error parsing token: %v", err)
		return unauthorized("Invalid or expired token")
	}

	ctx := c.Request().Context()

	// The token must still belong to a live session; sign-out revokes it.
	active, err := m.profiles.HasActiveSession(ctx, claims.UserID, tokenString)
	if err != nil {
		log.Error("Session lookup failed", err)
		return internalFault()
	}
	if !active {
		return unauthorized("Session not found")
	}

	user, err := m.profiles.GetProfile(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Deliberately the same code as a bad token: a missing profile
			// must not be distinguishable from an invalid credential.
			return unauthorized("Not authenticated")
		}
		log.Error("Profile lookup failed", err)
		return internalFault()
	}

	identity := user.Identity()
	if !identity.Complete() {
		// Incomplete identity (no role or no business) is treated as not
		// fully authenticated, not as a server fault.
		return unauthorized("Not authenticated")
	}

	c.Set(identityContextKey, identity)

	return next(c)
}

// IdentityFrom returns the resolved identity attached by the gate.
func IdentityFrom(c echo.Context) (rbac.Identity, bool) {
	identity, ok := c.Get(identityContextKey).(rbac.Identity)
	return identity, ok
}

// GetUserID Helper functions to get values from context
func GetUserID(c echo.Context) string {
	identity, _ := IdentityFrom(c)
	return identity.ID
}

func GetBusinessID(c echo.Context) string {
	identity, _ := IdentityFrom(c)
	return identity.BusinessID
}

func GetUserRole(c echo.Context) rbac.Role {
	identity, _ := IdentityFrom(c)
	return identity.Role
}

func unauthorized(message string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusUnauthorized, rbac.Denial{
		Code:    rbac.CodeUnauthorized,
		Message: message,
	})
}

// internalFault is the fail-closed response for collaborator errors:
// generic, detail-free, never an allow.
func internalFault() *echo.HTTPError {
	return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
}
