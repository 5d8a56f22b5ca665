package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"faktura/internal/models"
	"faktura/internal/rbac"
	"faktura/internal/utils"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubVerifier struct {
	claims *utils.Claims
	err    error
}

func (s *stubVerifier) ParseToken(tokenString string) (*utils.Claims, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.claims, nil
}

type stubProfiles struct {
	user       *models.User
	profileErr error
	active     bool
	sessionErr error
}

func (s *stubProfiles) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	if s.profileErr != nil {
		return nil, s.profileErr
	}
	return s.user, nil
}

func (s *stubProfiles) HasActiveSession(ctx context.Context, userID, token string) (bool, error) {
	if s.sessionErr != nil {
		return false, s.sessionErr
	}
	return s.active, nil
}

func validUser() *models.User {
	u := &models.User{
		Email:      "owner@acme.test",
		Role:       rbac.RoleManager,
		BusinessID: "biz-1",
		FirstName:  "Ada",
	}
	u.ID = "user-1"
	return u
}

func newAuthApp(verifier TokenVerifier, profiles ProfileStore, guards ...echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	auth := NewAuthMiddleware(verifier, profiles)
	group := e.Group("", auth.Middleware())
	group.GET("/protected", func(c echo.Context) error {
		identity, ok := IdentityFrom(c)
		if !ok {
			return echo.NewHTTPError(http.StatusInternalServerError, "identity missing")
		}
		return c.JSON(http.StatusOK, identity)
	}, guards...)
	return e
}

func doRequest(e *echo.Echo, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAuthMissingHeader(t *testing.T) {
	e := newAuthApp(&stubVerifier{}, &stubProfiles{})
	rec := doRequest(e, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), rbac.CodeUnauthorized)
}

func TestAuthMalformedHeader(t *testing.T) {
	e := newAuthApp(&stubVerifier{}, &stubProfiles{})
	for _, header := range []string{"Bearer", "Basic abc", "Bearer a b"} {
		rec := doRequest(e, header)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}
}

func TestAuthInvalidToken(t *testing.T) {
	e := newAuthApp(&stubVerifier{err: errors.New("token is expired")}, &stubProfiles{})
	rec := doRequest(e, "Bearer expired-token")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), rbac.CodeUnauthorized)
}

func TestAuthRevokedSession(t *testing.T) {
	verifier := &stubVerifier{claims: &utils.Claims{UserID: "user-1"}}
	e := newAuthApp(verifier, &stubProfiles{user: validUser(), active: false})
	rec := doRequest(e, "Bearer revoked")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMissingProfile(t *testing.T) {
	verifier := &stubVerifier{claims: &utils.Claims{UserID: "user-1"}}
	e := newAuthApp(verifier, &stubProfiles{profileErr: gorm.ErrRecordNotFound, active: true})
	rec := doRequest(e, "Bearer token")

	// A missing profile is indistinguishable from a bad token.
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), rbac.CodeUnauthorized)
}

func TestAuthIncompleteProfile(t *testing.T) {
	user := validUser()
	user.BusinessID = ""

	verifier := &stubVerifier{claims: &utils.Claims{UserID: "user-1"}}
	e := newAuthApp(verifier, &stubProfiles{user: user, active: true})
	rec := doRequest(e, "Bearer token")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthCollaboratorFaultFailsClosed(t *testing.T) {
	verifier := &stubVerifier{claims: &utils.Claims{UserID: "user-1"}}

	// Profile store blows up: generic 500, never an allow, no details.
	e := newAuthApp(verifier, &stubProfiles{profileErr: errors.New("connection refused"), active: true})
	rec := doRequest(e, "Bearer token")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")

	e = newAuthApp(verifier, &stubProfiles{sessionErr: errors.New("redis down")})
	rec = doRequest(e, "Bearer token")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "redis down")
}

func TestAuthAttachesTypedIdentity(t *testing.T) {
	verifier := &stubVerifier{claims: &utils.Claims{UserID: "user-1"}}
	e := newAuthApp(verifier, &stubProfiles{user: validUser(), active: true})
	rec := doRequest(e, "Bearer token")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"user-1"`)
	assert.Contains(t, rec.Body.String(), `"role":"manager"`)
	assert.Contains(t, rec.Body.String(), `"businessId":"biz-1"`)
}

func TestTokenManagerRoundTrip(t *testing.T) {
	manager := utils.NewTokenManager("test-secret")
	token, err := manager.GenerateToken(*validUser())
	require.NoError(t, err)

	claims, err := manager.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "biz-1", claims.BusinessID)
	assert.Equal(t, rbac.RoleManager, claims.Role)

	_, err = utils.NewTokenManager("other-secret").ParseToken(token)
	assert.Error(t, err)
}
