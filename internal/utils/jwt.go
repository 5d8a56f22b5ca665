package utils

import (
	"time"

	"faktura/internal/models"
	"faktura/internal/rbac"

	"github.com/golang-jwt/jwt/v4"
)

type Claims struct {
	UserID     string    `json:"user_id"`
	BusinessID string    `json:"business_id"`
	Email      string    `json:"email"`
	Role       rbac.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies access and refresh tokens. It is
// constructed once at process start and injected into the gate, so tests
// can swap it out and the secret has an explicit lifecycle.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenManager(secret string) *TokenManager {
	return &TokenManager{
		secret:     []byte(secret),
		accessTTL:  24 * time.Hour,
		refreshTTL: 24 * 7 * time.Hour,
	}
}

func (m *TokenManager) GenerateToken(user models.User) (string, error) {
	claims := Claims{
		UserID:     user.ID,
		BusinessID: user.BusinessID,
		Email:      user.Email,
		Role:       user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ParseToken parses and validates an access token
func (m *TokenManager) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}

	return claims, nil
}

// GenerateRefreshToken generates a refresh token for a user
func (m *TokenManager) GenerateRefreshToken(user models.User) (string, error) {
	claims := Claims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.refreshTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ParseRefreshToken parses and validates a refresh token
func (m *TokenManager) ParseRefreshToken(tokenString string) (*Claims, error) {
	return m.ParseToken(tokenString)
}
