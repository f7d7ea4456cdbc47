// Package auth verifies the HS256 bearer tokens issued by the identity
// provider and extracts the caller identity from them.
package auth

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/contribvault/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims includes the registered claims plus the caller identity fields
// the server relies on for scoping.
type Claims struct {
	jwt.RegisteredClaims
	UserID string
	Admin  bool
}

// GenerateToken signs a token for the given identity. Used by tests and by
// the provisioning tooling; in production tokens come from the identity
// provider.
func GenerateToken(userID string, admin bool, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		UserID: userID,
		Admin:  admin,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken verifies the signature and expiry and returns the claims.
// Any verification failure wraps common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secretKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
