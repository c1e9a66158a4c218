package utils

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AllPermissions grants every permission check.
const AllPermissions = "*:*:*"

// Claims represents JWT claims.
type Claims struct {
	UserName    string   `json:"userName"`
	Roles       []string `json:"roles,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
	jwt.RegisteredClaims
}

// HasRole reports whether the claims carry role.
func (c *Claims) HasRole(role string) bool {
	return Contains(c.Roles, role)
}

// HasPermission reports whether the claims grant perm, directly or through AllPermissions.
func (c *Claims) HasPermission(perm string) bool {
	return Contains(c.Permissions, AllPermissions) || Contains(c.Permissions, perm)
}

// GenerateToken creates a signed access token for an operator.
func GenerateToken(secret []byte, userName string, roles, permissions []string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserName:    userName,
		Roles:       roles,
		Permissions: permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userName,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// VerifyJWT parses and validates a JWT string.
func VerifyJWT(tokenStr string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrSignatureInvalid
}
