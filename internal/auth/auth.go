package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v4"
)

var (
	ErrNoToken      = errors.New("no token provided")
	ErrInvalidToken = errors.New("invalid token")
)

// Identity is the resolved caller: who they are and whether they hold the
// admin flag. The admin flag is the only authorization dimension this
// service consumes.
type Identity struct {
	UserID  string
	IsAdmin bool
}

// Resolver turns a bearer token into an Identity. The order core consumes
// this contract; credential issuance lives elsewhere.
type Resolver interface {
	Resolve(token string) (Identity, error)
}

// JWTResolver verifies HS256 tokens carrying {userId, isAdmin} claims.
type JWTResolver struct {
	secret []byte
}

func NewJWTResolver(secret string) *JWTResolver {
	return &JWTResolver{secret: []byte(secret)}
}

func (r *JWTResolver) Resolve(token string) (Identity, error) {
	if token == "" {
		return Identity{}, ErrNoToken
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return r.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Identity{}, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrInvalidToken
	}

	userID, _ := claims["userId"].(string)
	isAdmin, _ := claims["isAdmin"].(bool)
	if userID == "" {
		return Identity{}, ErrInvalidToken
	}

	return Identity{UserID: userID, IsAdmin: isAdmin}, nil
}
