package crypto

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"time"

	base64_ "faktura/internal/utils/base64"
	"faktura/internal/utils/logger"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/ssh"
)

var log = logger.New("crypto")

var PrivateKey *rsa.PrivateKey
var PublicKey *rsa.PublicKey

func InitializeKeys(privateKeyEnv string) error {

	log.Info("Initializing keys")

	if privateKeyEnv == "" {
		return errors.New("private key not found")
	}

	privateKeyEnv, err := base64_.DecodeFromBase64(privateKeyEnv)

	if err != nil {
		return fmt.Errorf("failed to decode private key: %w", err)
	}

	key, err := ssh.ParseRawPrivateKey([]byte(privateKeyEnv))

	if err != nil {
		return fmt.Errorf("failed to parse private key: %w", err)
	}

	PrivateKey = key.(*rsa.PrivateKey)
	PublicKey = &PrivateKey.PublicKey
	return nil
}

type ShareClaims struct {
	InvoiceID  string `json:"invoice_id"`
	BusinessID string `json:"business_id"`
	jwt.RegisteredClaims
}

// SignShareToken issues a public share-link token for an invoice. The
// link works without a session, so the token itself carries the scope.
func SignShareToken(invoiceID, businessID string, ttl time.Duration) (string, error) {
	if PrivateKey == nil {
		return "", errors.New("private key not initialized")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, ShareClaims{
		InvoiceID:  invoiceID,
		BusinessID: businessID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	})

	return token.SignedString(PrivateKey)
}

// VerifyShareToken validates a share-link token and returns its claims.
func VerifyShareToken(tokenString string) (*ShareClaims, error) {
	if PublicKey == nil {
		return nil, errors.New("public key not initialized")
	}

	claims := &ShareClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return PublicKey, nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}

	return claims, nil
}
