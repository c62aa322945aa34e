package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// SessionTTL is the lifetime of a locally issued session token.
const SessionTTL = 72 * time.Hour

// SessionClaims are the claims of a session token. The subject is the
// external identity id the session was issued for.
type SessionClaims struct {
	jwt.RegisteredClaims
}

// SessionTokens issues and verifies HS256 session tokens.
type SessionTokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionTokens(secret string) *SessionTokens {
	return &SessionTokens{secret: []byte(secret), ttl: SessionTTL, now: time.Now}
}

// Issue signs a session token for uid and returns it with its expiry.
func (s *SessionTokens) Issue(uid string) (string, time.Time, error) {
	now := s.now()
	expires := now.Add(s.ttl)
	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

func (s *SessionTokens) Verify(_ context.Context, tokenString string) (string, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
