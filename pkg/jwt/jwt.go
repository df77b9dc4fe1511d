package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "go-vendas-api"

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrMissingToken = errors.New("missing authorization token")
)

// Claims represents the JWT claims structure
type Claims struct {
	ActorID    string   `json:"actor_id"`
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Privileges []string `json:"privileges"`
	jwt.RegisteredClaims
}

// HasPrivilege checks if the claims grant a specific privilege
func (c *Claims) HasPrivilege(code string) bool {
	for _, p := range c.Privileges {
		if p == code {
			return true
		}
	}
	return false
}

// GenerateToken creates a signed token. The API only verifies tokens; this is
// used by cmd/issue-token and tests.
func GenerateToken(secret []byte, actorID, name, email string, privileges []string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		ActorID:    actorID,
		Name:       name,
		Email:      email,
		Privileges: privileges,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actorID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateToken parses and validates a JWT token
func ValidateToken(secret []byte, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	}, jwt.WithIssuer(issuer))

	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid && claims.ActorID != "" {
		return claims, nil
	}

	return nil, ErrInvalidToken
}
