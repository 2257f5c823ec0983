package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext(t *testing.T, authorization string) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/assistant/chat", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	return e.NewContext(req, httptest.NewRecorder())
}

func signToken(t *testing.T, secret, subject string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestConversationKey_ValidToken(t *testing.T) {
	a := NewAuthenticator("secret")
	token := signToken(t, "secret", "user-42")

	key := a.ConversationKey(newContext(t, "Bearer "+token))
	assert.Equal(t, "conversation:user-42", key)
}

func TestConversationKey_Anonymous(t *testing.T) {
	a := NewAuthenticator("secret")

	tests := []struct {
		name          string
		authorization string
	}{
		{name: "no header", authorization: ""},
		{name: "not a bearer token", authorization: "Basic dXNlcjpwYXNz"},
		{name: "empty bearer", authorization: "Bearer "},
		{name: "garbage token", authorization: "Bearer not.a.jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, AnonymousKey, a.ConversationKey(newContext(t, tt.authorization)))
		})
	}
}

func TestConversationKey_WrongSecret(t *testing.T) {
	a := NewAuthenticator("secret")
	token := signToken(t, "other-secret", "user-42")

	assert.Equal(t, AnonymousKey, a.ConversationKey(newContext(t, "Bearer "+token)))
}

func TestConversationKey_ExpiredToken(t *testing.T) {
	a := NewAuthenticator("secret")
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-42",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	})
	signed, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)

	assert.Equal(t, AnonymousKey, a.ConversationKey(newContext(t, "Bearer "+signed)))
}

func TestConversationKey_MissingSubject(t *testing.T) {
	a := NewAuthenticator("secret")
	token := signToken(t, "secret", "")

	assert.Equal(t, AnonymousKey, a.ConversationKey(newContext(t, "Bearer "+token)))
}
