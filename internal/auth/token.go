// Package auth issues and verifies the HS256 bearer tokens the REST
// surface uses. The relay itself stays unauthenticated unless the ws
// auth toggle is on.
package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

type Tokens struct {
	secret []byte
	ttl    time.Duration
}

func New(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl}
}

// Sign issues a token whose subject is the user's store id.
func (t *Tokens) Sign(userID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": userID,
		"iat": now.Unix(),
		"exp": now.Add(t.ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Verify checks the signature and expiry and returns the subject.
func (t *Tokens) Verify(token string) (string, error) {
	tok, err := jwt.Parse(token, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return t.secret, nil
	})
	if err != nil || !tok.Valid {
		return "", ErrInvalidToken
	}
	sub, err := tok.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}

const userIDKey = "user_id"

// Middleware guards a route group. Clients send the raw token in the
// Authorization header; a Bearer prefix is tolerated.
func Middleware(t *Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "))
		if raw == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		sub, err := t.Verify(raw)
		if err != nil {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Set(userIDKey, sub)
		c.Next()
	}
}

// UserID returns the subject the middleware stashed on the context.
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
