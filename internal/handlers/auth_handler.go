package handlers

import (
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"faktura/internal/api/middleware"
	"faktura/internal/events"
	"faktura/internal/models"
	"faktura/internal/rbac"
	"faktura/internal/utils"
	"faktura/internal/utils/logger"

	"crypto/rand"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthHandler struct {
	db     *gorm.DB
	tokens *utils.TokenManager
	log    *logger.Logger
}

func NewAuthHandler(db *gorm.DB, tokens *utils.TokenManager) *AuthHandler {
	return &AuthHandler{db: db, tokens: tokens, log: logger.New("AuthHandler")}
}

type RegisterRequest struct {
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=8"`
	FirstName    string `json:"first_name" validate:"required"`
	LastName     string `json:"last_name" validate:"required"`
	BusinessName string `json:"business_name"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ResetPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyResetCodeRequest struct {
	Code     string `json:"code" validate:"required"`
	Password string `json:"new_password" validate:"required,min=8"`
}

// Register handles the registration of a new user by validating input, hashing the password and storing user data.
// @Summary Register a new user
// @Description Register a new user with email, password and name details
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration details"
// @Success 201 {object} map[string]string "User registered successfully"
// @Failure 400 {object} map[string]string "Validation error or email exists"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	// check if user already exists
	var existing models.User
	if err := h.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "User already exists"})
	}

	// A pending invite binds the registration to an existing business
	// with the invited role. Without one, the user founds a business
	// and becomes its admin.
	createBusiness := true
	var business models.Business
	var invite models.BusinessInvite
	if err := h.db.Where("email = ? AND status = ? AND expires_at > ?", req.Email, models.InviteStatusPending, time.Now()).First(&invite).Error; err == nil {
		createBusiness = false
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to hash password"})
	}

	// Start a transaction
	tx := h.db.Begin()
	if tx.Error != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to start transaction"})
	}

	if createBusiness {
		name := req.BusinessName
		if name == "" {
			name = req.FirstName + "'s Business"
		}
		business = models.Business{Name: name}

		if err = tx.Create(&business).Error; err != nil {
			tx.Rollback()
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create business"})
		}
	}

	user := models.User{
		Email:      req.Email,
		Password:   string(hashedPassword),
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Role:       rbac.RoleAdmin,
		BusinessID: business.ID,
	}

	if !createBusiness {
		user.Role = invite.Role
		user.BusinessID = invite.BusinessID
		invite.Status = models.InviteStatusAccepted
		if err := tx.Save(&invite).Error; err != nil {
			tx.Rollback()
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update invitation"})
		}
	}

	if err := tx.Create(&user).Error; err != nil {
		tx.Rollback()
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Email already exists"})
	}

	// Commit the transaction
	if err := tx.Commit().Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to commit transaction"})
	}

	events.Emit("users.created", &user)

	return c.JSON(http.StatusCreated, map[string]string{"message": "User registered successfully"})
}

// Login handles user login by validating credentials, generating a JWT token, and returning it.
// @Summary Login user
// @Description Authenticate user and return JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} map[string]string "JWT token"
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	var user models.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
	}

	token, err := h.tokens.GenerateToken(user)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to generate token"})
	}
	refreshToken, err := h.tokens.GenerateRefreshToken(user)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to generate token"})
	}

	session := &models.AuthTransaction{
		UserID:     user.ID,
		BusinessID: user.BusinessID,
		Token:      token,
		Refresh:    refreshToken,
		IPAddress:  utils.GetIPAddress(c.Request()),
		UserAgent:  c.Request().UserAgent(),
		ExpiresAt:  time.Now().Add(24 * 7 * time.Hour),
	}

	if err := h.db.Create(session).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create session"})
	}

	return c.JSON(http.StatusOK, map[string]string{"token": token, "refresh_token": refreshToken})
}

// Logout revokes the current session so the token stops resolving.
// @Summary Logout
// @Description Revoke the current session token
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]string "Logged out"
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	userID := middleware.GetUserID(c)
	token := strings.TrimPrefix(c.Request().Header.Get("Authorization"), "Bearer ")

	if err := h.db.Where("user_id = ? AND token = ?", userID, token).Delete(&models.AuthTransaction{}).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to revoke session"})
	}

	events.Emit(events.EventSignedOut, userID)

	return c.JSON(http.StatusOK, map[string]string{"message": "Logged out"})
}

// RequestPasswordReset handles the request to reset a user's password by generating a reset code, storing it, and sending an email.
// @Summary Request password reset
// @Description Request a password reset code to be sent via email
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ResetPasswordRequest true "Email for password reset"
// @Success 200 {object} map[string]string "Reset code sent if email exists"
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /auth/password-reset [post]
func (h *AuthHandler) RequestPasswordReset(c echo.Context) error {
	tx := h.db.Begin()
	if tx.Error != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to start transaction"})
	}

	var req ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		tx.Rollback()
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if err := c.Validate(req); err != nil {
		tx.Rollback()
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	var user models.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		tx.Rollback()
		return c.JSON(http.StatusOK, map[string]string{"message": "If the email exists, a reset code will be sent"})
	}

	code, err := generateResetCode(10)
	if err != nil {
		tx.Rollback()
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to generate reset code"})
	}

	reset := models.PasswordReset{
		UserID:    user.ID,
		Code:      code,
		ExpiresAt: time.Now().Add(15 * time.Minute),
	}

	if err := tx.Create(&reset).Error; err != nil {
		tx.Rollback()
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create reset code"})
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to commit transaction"})
	}

	reset.User = &user

	events.Emit("password.reset", &reset)

	return c.JSON(http.StatusOK, map[string]string{"message": "If the email exists, a reset code will be sent"})
}

// VerifyResetCode handles the verification of a reset code, updating the user's password, and marking the reset code as used.
// @Summary Verify reset code and set new password
// @Description Verify password reset code and update password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body VerifyResetCodeRequest true "Reset code verification and new password"
// @Success 200 {object} map[string]string "Password reset successful"
// @Failure 400 {object} map[string]string "Invalid or expired reset code"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /auth/password-reset/verify [post]
func (h *AuthHandler) VerifyResetCode(c echo.Context) error {
	var req VerifyResetCodeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	var reset models.PasswordReset
	if err := h.db.Where("code = ? AND used = ? AND expires_at > ?",
		req.Code, false, time.Now()).First(&reset).Error; err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid or expired reset code"})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to hash password"})
	}

	var user models.User
	if err := h.db.Where("id = ?", reset.UserID).First(&user).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get user"})
	}

	h.db.Model(&user).Update("password", string(hashedPassword))
	h.db.Model(&reset).Update("used", true)

	// Existing sessions are stale once the password changes.
	h.db.Where("user_id = ?", user.ID).Delete(&models.AuthTransaction{})

	return c.JSON(http.StatusOK, map[string]string{"message": "Password reset successfully"})
}

// GenerateResetCode generates a cryptographically secure random code
// without special characters, using crypto/rand
func generateResetCode(length int) (string, error) {
	// Generate random bytes (we need more than length because
	// of the base64 encoding and replacement of special chars)
	buffer := make([]byte, length*2)
	_, err := rand.Read(buffer)
	if err != nil {
		return "", err
	}

	// Convert to base64 string
	encoded := base64.StdEncoding.EncodeToString(buffer)

	// Remove non-alphanumeric characters
	result := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1 // Will be removed
	}, encoded)

	// Trim to desired length
	if len(result) > length {
		result = result[:length]
	}

	return result, nil
}

// ListUsers returns the members of the caller's business.
// @Summary List users
// @Description Get the users of the caller's business
// @Tags users
// @Accept json
// @Produce json
// @Success 200 {array} models.User
// @Failure 403 {object} rbac.Denial "Forbidden"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/users [get]
func (h *AuthHandler) ListUsers(c echo.Context) error {
	businessID := middleware.GetBusinessID(c)
	var users []models.User
	if err := h.db.Where("business_id = ?", businessID).Find(&users).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch users"})
	}
	return c.JSON(http.StatusOK, users)
}

// GetUser returns details of a specific user in the caller's business.
// @Summary Get user details
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} models.User
// @Failure 403 {object} rbac.Denial "Forbidden"
// @Failure 404 {object} map[string]string "User not found"
// @Router /api/v1/users/{id} [get]
func (h *AuthHandler) GetUser(c echo.Context) error {
	id := c.Param("id")
	businessID := middleware.GetBusinessID(c)
	var user models.User
	if err := h.db.Where("id = ? AND business_id = ?", id, businessID).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "User not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch user"})
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateUser updates a user's profile fields. Role changes go through
// ChangeRole, never through here.
// @Summary Update user details
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param user body models.User true "Updated user details"
// @Success 200 {object} models.User
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} rbac.Denial "Forbidden"
// @Failure 404 {object} map[string]string "User not found"
// @Router /api/v1/users/{id} [put]
func (h *AuthHandler) UpdateUser(c echo.Context) error {
	id := c.Param("id")
	businessID := middleware.GetBusinessID(c)
	var user models.User
	if err := h.db.Where("id = ? AND business_id = ?", id, businessID).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "User not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch user"})
	}

	// Only update allowed fields
	var updateData struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}

	if err := c.Bind(&updateData); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid input"})
	}

	user.FirstName = updateData.FirstName
	user.LastName = updateData.LastName

	if err := h.db.Save(&user).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update user"})
	}

	return c.JSON(http.StatusOK, user)
}

// DeleteUser removes a user from the caller's business.
// @Summary Delete user
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} map[string]string "User deleted successfully"
// @Failure 403 {object} rbac.Denial "Forbidden"
// @Failure 404 {object} map[string]string "User not found"
// @Router /api/v1/users/{id} [delete]
func (h *AuthHandler) DeleteUser(c echo.Context) error {
	id := c.Param("id")
	businessID := middleware.GetBusinessID(c)

	if id == middleware.GetUserID(c) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Cannot delete your own account"})
	}

	var user models.User
	if err := h.db.Where("id = ? AND business_id = ?", id, businessID).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "User not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch user"})
	}

	if err := h.db.Delete(&user).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to delete user"})
	}

	// Dead sessions cannot be left resolving for a deleted account.
	h.db.Where("user_id = ?", user.ID).Delete(&models.AuthTransaction{})

	return c.JSON(http.StatusOK, map[string]string{"message": "User deleted successfully"})
}

// ChangeRoleRequest assigns a new role to a user in the caller's business.
type ChangeRoleRequest struct {
	Role string `json:"role" validate:"required,user_role"`
}

// ChangeRole changes another member's role. The caller can only hand
// out roles at or below their own, and never edits their own role.
// @Summary Change a user's role
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body ChangeRoleRequest true "New role"
// @Success 200 {object} models.User
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} rbac.Denial "Forbidden"
// @Failure 404 {object} map[string]string "User not found"
// @Router /api/v1/users/{id}/role [put]
func (h *AuthHandler) ChangeRole(c echo.Context) error {
	id := c.Param("id")
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing identity")
	}

	if id == identity.ID {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Cannot change your own role"})
	}

	var req ChangeRoleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid input"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	newRole := rbac.Role(req.Role)
	if !rbac.CanAssignRole(identity.Role, newRole) {
		return c.JSON(http.StatusForbidden, rbac.Denial{
			Code:     rbac.CodeForbidden,
			Message:  "cannot assign a role above your own",
			UserRole: identity.Role,
		})
	}

	var user models.User
	if err := h.db.Where("id = ?", id).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "User not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch user"})
	}

	if !rbac.CanAccessBusiness(identity, user.BusinessID) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "User not found"})
	}

	if err := h.db.Model(&user).Update("role", newRole).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update role"})
	}
	user.Role = newRole

	// The target's cached capabilities are stale until they re-resolve.
	h.db.Where("user_id = ?", user.ID).Delete(&models.AuthTransaction{})
	events.Emit("users.role_changed", &user)

	return c.JSON(http.StatusOK, user)
}

// RefreshToken refreshes a user's access token using their refresh token
// @Summary Refresh access token
// @Description Get a new access token using a valid refresh token
// @Tags auth
// @Accept json
// @Produce json
// @Param refresh_token body string true "Refresh token"
// @Success 200 {object} map[string]string "New access token"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Invalid refresh token"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c echo.Context) error {
	var input struct {
		RefreshToken string `json:"refresh_token"`
	}

	if err := c.Bind(&input); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid input"})
	}

	// get refresh token from request
	refreshToken := input.RefreshToken

	// validate refresh token
	_, err := h.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid refresh token"})
	}

	// check in db if refresh token is valid
	var session models.AuthTransaction
	if err := h.db.Where("refresh = ? AND expires_at > ?", refreshToken, time.Now()).First(&session).Error; err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid refresh token"})
	}

	// get user from claims
	var user models.User
	if err := h.db.Where("id = ?", session.UserID).First(&user).Error; err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "User not found"})
	}

	// generate new access token
	accessToken, err := h.tokens.GenerateToken(user)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to generate access token"})
	}

	// save new access token to db
	session.Token = accessToken
	if err := h.db.Save(&session).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to save access token"})
	}

	events.Emit(events.EventTokenRefreshed, user.ID)

	return c.JSON(http.StatusOK, map[string]string{"token": accessToken, "exp": "24h"})
}

// GetMe returns the current user's identity plus the abilities their
// role grants, so a client can bootstrap its capability cache in one
// round trip.
// @Summary Get current user
// @Description Get identity and abilities of the authenticated user
// @Tags users
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/users/me [get]
func (h *AuthHandler) GetMe(c echo.Context) error {
	userID := middleware.GetUserID(c)

	var user models.User
	if err := h.db.Where("id = ?", userID).Preload("Business").First(&user).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "User not found"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"user":      user,
		"identity":  user.Identity(),
		"abilities": rbac.GetAbilities(user.Role),
	})
}

// InviteUserRequest is the request body for inviting a user to a business
// @Description Send an invitation email to a user to join a business
type InviteUserRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required,min=2"`
	Role  string `json:"role" default:"user" validate:"required,user_role"`
}

// InviteUser handles sending invitations to new business members
// @Summary Invite a user to join a business
// @Description Send an invitation email to a user to join a business
// @Tags auth
// @Accept json
// @Produce json
// @Param request body InviteUserRequest true "Invitation details"
// @Success 201 {object} map[string]string "Invitation sent successfully"
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 403 {object} rbac.Denial "Forbidden"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/users/invite [post]
func (h *AuthHandler) InviteUser(c echo.Context) error {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing identity")
	}

	h.log.Info("User %s inviting to business %s", identity.ID, identity.BusinessID)

	var request InviteUserRequest
	if err := c.Bind(&request); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if err := c.Validate(request); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	// The invited role is capped at the inviter's own role.
	if !rbac.CanAssignRole(identity.Role, rbac.Role(request.Role)) {
		return c.JSON(http.StatusForbidden, rbac.Denial{
			Code:     rbac.CodeForbidden,
			Message:  "cannot invite above your own role",
			UserRole: identity.Role,
		})
	}

	// Generate invite code
	code, err := utils.GenerateRandomString(32)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to generate invite code"})
	}

	invite := models.BusinessInvite{
		Code:       code,
		ExpiresAt:  time.Now().Add(24 * 7 * time.Hour),
		InviterID:  identity.ID,
		BusinessID: identity.BusinessID,
		Status:     models.InviteStatusPending,
		Role:       rbac.Role(request.Role),
		Email:      request.Email,
		Name:       request.Name,
	}

	if err := h.db.Create(&invite).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create invitation"})
	}
	return c.JSON(http.StatusCreated, map[string]string{"message": "Invitation sent successfully"})
}

type AcceptInviteRequest struct {
	Password string `json:"password" validate:"required,min=8"`
}

// AcceptInvite handles accepting business invitations
// @Summary Accept a business invitation
// @Description Accept an invitation to join a business
// @Tags auth
// @Accept json
// @Produce json
// @Param code path string true "Invitation code"
// @Success 200 {object} map[string]string "Invitation accepted successfully"
// @Failure 400 {object} map[string]string "Invalid invitation"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /auth/invite/accept/{code} [post]
func (h *AuthHandler) AcceptInvite(c echo.Context) error {
	code := c.Param("code")

	var req AcceptInviteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to hash password"})
	}

	var invite models.BusinessInvite
	if err := h.db.Where("code = ? AND status = ? AND expires_at > ?",
		code, models.InviteStatusPending, time.Now()).First(&invite).Error; err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid or expired invitation"})
	}

	// Start transaction
	tx := h.db.Begin()

	newUser := models.User{
		Email:      invite.Email,
		FirstName:  invite.Name,
		LastName:   "",
		Password:   string(hashedPassword),
		BusinessID: invite.BusinessID,
		Role:       invite.Role,
	}

	if err := tx.Create(&newUser).Error; err != nil {
		tx.Rollback()
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create user"})
	}

	invite.Status = models.InviteStatusAccepted
	if err := tx.Save(&invite).Error; err != nil {
		tx.Rollback()
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update invitation"})
	}

	if err := tx.Commit().Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to commit transaction"})
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Invitation accepted successfully"})
}

// DeleteInvite handles deleting business invitations
// @Summary Delete a business invitation
// @Description Delete a pending business invitation
// @Tags auth
// @Accept json
// @Produce json
// @Param id path string true "Invitation ID"
// @Success 200 {object} map[string]string "Invitation deleted successfully"
// @Failure 400 {object} map[string]string "Invalid invitation"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/users/invite/{id} [delete]
func (h *AuthHandler) DeleteInvite(c echo.Context) error {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing identity")
	}
	inviteID := c.Param("id")

	var invite models.BusinessInvite
	if err := h.db.Where("id = ? AND business_id = ?", inviteID, identity.BusinessID).First(&invite).Error; err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invitation not found"})
	}

	if err := h.db.Delete(&invite).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to delete invitation"})
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Invitation deleted successfully"})
}
