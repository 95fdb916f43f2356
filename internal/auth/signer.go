package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// SessionCookie is the name of the signed session cookie.
const SessionCookie = "pressroom_session"

// CookieSigner signs and verifies the session cookie. The cookie payload is
// a JWT whose JTI claim is the server-side session token; the signature makes
// the cookie tamper-evident while revocation stays server-side in Redis.
type CookieSigner struct {
	secret []byte
	ttl    time.Duration
}

// NewCookieSigner creates a signer with the given secret and token lifetime.
func NewCookieSigner(secret string, ttl time.Duration) *CookieSigner {
	return &CookieSigner{secret: []byte(secret), ttl: ttl}
}

// Sign wraps a session token into a signed cookie value.
func (s *CookieSigner) Sign(sessionToken string) (string, error) {
	claims := &jwt.RegisteredClaims{
		ID:        sessionToken,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.ttl)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		NotBefore: jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Parse validates a cookie value and returns the session token it carries.
func (s *CookieSigner) Parse(value string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(value, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.ID == "" {
		return "", errors.New("invalid session cookie")
	}
	return claims.ID, nil
}
