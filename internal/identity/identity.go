// Package identity treats session acquisition as an opaque precondition:
// the sync core only needs a stable user id and display name, and every
// write operation fails without one.
package identity

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"chatsync/internal/common"
)

// Session is the identity the core stamps onto every write.
type Session struct {
	UserID      string
	DisplayName string
}

// Provider resolves a session token handed in by the render layer.
type Provider interface {
	SessionFromToken(tokenString string) (*Session, error)
}

// Claims carried in the session token.
type Claims struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	jwt.RegisteredClaims
}

type jwtProvider struct {
	secret []byte
}

func NewJWTProvider(secret []byte) Provider {
	return &jwtProvider{secret: secret}
}

func (p *jwtProvider) SessionFromToken(tokenString string) (*Session, error) {
	if tokenString == "" {
		return nil, common.ErrNoSession
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return p.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, common.ErrNoSession
	}

	return &Session{
		UserID:      claims.UserID,
		DisplayName: claims.DisplayName,
	}, nil
}

// GenerateToken mints a session token. The identity provider proper lives
// outside this system; this exists for local development and tests.
func GenerateToken(secret []byte, userID, displayName string) (string, error) {
	claims := &Claims{
		UserID:      userID,
		DisplayName: displayName,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "chatsync",
			Subject:   "user-session",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}
