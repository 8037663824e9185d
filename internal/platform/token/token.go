// Package token issues and validates the HMAC-signed JWTs that carry actor
// claims.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"gxpgovern/pkg/requestcontext"
)

// Claims is the JWT payload. Role names match the review package's RBAC
// roles.
type Claims struct {
	UserID string `json:"uid"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type Manager struct {
	signingKey []byte
}

func NewManager(signingKey string) (*Manager, error) {
	if signingKey == "" {
		return nil, errors.New("signing key is required")
	}
	return &Manager{signingKey: []byte(signingKey)}, nil
}

// Issue signs a token for the given identity.
func (m *Manager) Issue(userID, name, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Name:   name,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.signingKey)
}

// ValidateToken parses and verifies the token, returning the actor it names.
func (m *Manager) ValidateToken(tokenString string) (requestcontext.Actor, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.signingKey, nil
	})
	if err != nil {
		return requestcontext.Actor{}, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return requestcontext.Actor{}, errors.New("invalid token")
	}
	if claims.UserID == "" || claims.Role == "" {
		return requestcontext.Actor{}, errors.New("token missing identity claims")
	}
	return requestcontext.Actor{
		UserID:   claims.UserID,
		UserName: claims.Name,
		Role:     claims.Role,
	}, nil
}
