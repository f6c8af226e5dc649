// Package security provides JWT token utilities
package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const (
	// RoleAdmin is the only role allowed to read the sales dashboard.
	RoleAdmin = "admin"

	tokenTypeAdmin = "admin_auth"
)

// ErrInvalidToken is returned for malformed, expired or mis-signed tokens.
var ErrInvalidToken = errors.New("security: invalid token")

// GenerateAdminToken signs an HS256 admin token valid for ttl.
func GenerateAdminToken(jwtSecret string, now time.Time, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"role": RoleAdmin,
		"type": tokenTypeAdmin,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(jwtSecret))
	if err != nil {
		return "", fmt.Errorf("sign admin token: %w", err)
	}
	return signed, nil
}

// ValidateJWT validates a JWT token and returns the claims
func ValidateJWT(tokenString, jwtSecret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidToken
}

// RoleFromClaims returns the role of an admin token, or "" if the claims are
// not an admin token.
func RoleFromClaims(claims jwt.MapClaims) string {
	if t, _ := claims["type"].(string); t != tokenTypeAdmin {
		return ""
	}
	role, _ := claims["role"].(string)
	return role
}
