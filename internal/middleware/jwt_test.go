package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	InitJWT("test-secret")

	userID := uuid.New()
	token, err := GenerateToken(userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "gator-gram-api", claims.Issuer)

	// Expiry sits roughly seven days out.
	remaining := time.Until(claims.ExpiresAt.Time)
	assert.InDelta(t, TokenExpiration.Seconds(), remaining.Seconds(), 60)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	InitJWT("test-secret")
	token, err := GenerateToken(uuid.New())
	require.NoError(t, err)

	InitJWT("a-different-secret")
	_, err = ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenExpired(t *testing.T) {
	InitJWT("test-secret")

	claims := &Claims{
		UserID: uuid.New(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			Issuer:    "gator-gram-api",
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret)
	require.NoError(t, err)

	_, err = ValidateToken(token)
	assert.Error(t, err)
}

func TestMiddlewareRejectsTokenWithoutExpiry(t *testing.T) {
	InitJWT("test-secret")

	// Validly signed but missing the exp claim entirely.
	claims := &Claims{
		UserID: uuid.New(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
			Issuer:   "gator-gram-api",
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret)
	require.NoError(t, err)

	handler := ApplyJWTMiddleware(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not be reached")
	})

	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestApplyJWTMiddleware(t *testing.T) {
	InitJWT("test-secret")

	userID := uuid.New()
	token, err := GenerateToken(userID)
	require.NoError(t, err)

	var seenUserID uuid.UUID
	handler := ApplyJWTMiddleware(func(w http.ResponseWriter, r *http.Request) {
		id, ok := GetUserIDFromContext(r.Context())
		require.True(t, ok)
		seenUserID = id
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc123", http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-token", http.StatusUnauthorized},
		{"valid token", "Bearer " + token, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/posts", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			handler(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}

	assert.Equal(t, userID, seenUserID)
}
