package util

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the payload of a provider-session token. Besides the
// identity it embeds profile claims enriched from the database at mint and
// refresh time, so ordinary requests need no database hit to know the role.
//
// Embedded claims can go stale relative to the database (e.g. right after an
// admin verifies a partner) until the client triggers a session refresh.
type SessionClaims struct {
	SessionID         string  `json:"sid"`
	UserID            uint    `json:"user_id"`
	Email             string  `json:"email"`
	Name              string  `json:"name"`
	Image             string  `json:"image,omitempty"`
	Role              string  `json:"role"`
	Username          string  `json:"username,omitempty"`
	PhoneNumber       string  `json:"phone_number,omitempty"`
	Address           string  `json:"address,omitempty"`
	UmkmProfileStatus *string `json:"umkm_profile_status"`
	jwt.RegisteredClaims
}

// GenerateSessionToken signs a provider-session token with the session secret.
func GenerateSessionToken(claims SessionClaims, secret string, maxAge time.Duration) (string, error) {
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(maxAge)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateSessionToken verifies a provider-session token.
func ValidateSessionToken(tokenString, secret string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
