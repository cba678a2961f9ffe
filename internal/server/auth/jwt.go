// Package auth issues and checks the project API keys. A key is an HS256 JWT
// whose role claim says what the caller may do.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
)

// Roles carried by API keys.
const (
	RoleAnon    = "anon"
	RoleService = "service_role"
)

// Claims holds the registered claims plus the role.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// GenerateAPIKey signs a key for role. A zero validity yields a key without
// an expiry.
func GenerateAPIKey(role string, secretKey []byte, validity time.Duration) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
			Issuer:   "accountkeeper",
		},
		Role: role,
	}
	if validity != 0 {
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(validity))
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseAPIKey validates tokenString and returns its role. Bad signatures,
// other algorithms, expired keys and unknown roles all yield
// common.ErrInvalidToken.
func ParseAPIKey(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("%w: expired", common.ErrInvalidToken)
		}
		return "", fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid {
		return "", common.ErrInvalidToken
	}

	switch claims.Role {
	case RoleAnon, RoleService:
		return claims.Role, nil
	default:
		return "", fmt.Errorf("%w: unknown role %q", common.ErrInvalidToken, claims.Role)
	}
}
