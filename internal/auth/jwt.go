package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Principal identifies the authenticated caller. The email is carried in the
// claims because invite redemption gates on it.
type Principal struct {
	ID    uuid.UUID
	Email string
}

// Claims are the JWT claims issued for a session.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Manager issues and validates session tokens.
type Manager struct {
	secretKey []byte
	tokenTTL  time.Duration
}

// NewManager creates a Manager signing with the given secret.
func NewManager(secretKey string, tokenTTL time.Duration) *Manager {
	return &Manager{secretKey: []byte(secretKey), tokenTTL: tokenTTL}
}

// Issue creates a signed token for the principal.
func (m *Manager) Issue(p Principal) (string, error) {
	now := time.Now()
	claims := &Claims{
		Email: p.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secretKey)
}

// Validate parses a token and returns the principal it identifies.
func (m *Manager) Validate(tokenString string) (Principal, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secretKey, nil
	})
	if err != nil {
		return Principal{}, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Principal{}, fmt.Errorf("invalid token")
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Principal{}, fmt.Errorf("invalid subject: %w", err)
	}

	return Principal{ID: id, Email: claims.Email}, nil
}
