// Package auth derives the conversation key from the authenticated
// identity carried in the request's access token.
package auth

import (
	"log/slog"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// AnonymousKey is the conversation key used when no identity is available.
const AnonymousKey = "conversation:anonymous"

// keyPrefix namespaces conversation keys in the store.
const keyPrefix = "conversation:"

// Authenticator resolves access tokens into conversation keys.
type Authenticator struct {
	secret []byte
}

// NewAuthenticator creates an authenticator verifying HS256 tokens signed
// with secret.
func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

// ConversationKey derives the conversation key deterministically from the
// request's bearer token subject. Absent or invalid tokens degrade to the
// anonymous placeholder: the assistant works without authentication.
func (a *Authenticator) ConversationKey(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" || token == authHeader {
		return AnonymousKey
	}

	subject, err := a.verify(token)
	if err != nil || subject == "" {
		slog.Debug("invalid access token, using anonymous conversation", "error", err)
		return AnonymousKey
	}
	return keyPrefix + subject
}

// verify parses the token and returns its subject.
func (a *Authenticator) verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}
