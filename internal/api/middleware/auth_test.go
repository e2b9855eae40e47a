package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/hanzi-srs/internal/mocks"
	"github.com/phrazzld/hanzi-srs/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthMiddleware_Authenticate(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	tests := []struct {
		name            string
		authHeader      string
		validateErr     error
		claims          *auth.Claims
		expectedStatus  int
		expectedMessage string
		expectedUserID  uuid.UUID
	}{
		{
			name:           "valid token",
			authHeader:     "Bearer valid-token",
			claims:         &auth.Claims{UserID: userID},
			expectedStatus: http.StatusOK,
			expectedUserID: userID,
		},
		{
			name:           "lowercase scheme",
			authHeader:     "bearer valid-token",
			claims:         &auth.Claims{UserID: userID},
			expectedStatus: http.StatusOK,
			expectedUserID: userID,
		},
		{
			name:            "missing auth header",
			authHeader:      "",
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: "Authorization header required",
		},
		{
			name:            "invalid auth format",
			authHeader:      "InvalidFormat",
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: "Invalid authorization format",
		},
		{
			name:            "basic scheme",
			authHeader:      "Basic dXNlcjpwYXNz",
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: "Invalid authorization format",
		},
		{
			name:            "expired token",
			authHeader:      "Bearer expired-token",
			validateErr:     auth.ErrExpiredToken,
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: "Token expired",
		},
		{
			name:            "invalid token",
			authHeader:      "Bearer invalid-token",
			validateErr:     auth.ErrInvalidToken,
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: "Invalid token",
		},
		{
			name:            "wrong token type",
			authHeader:      "Bearer refresh-token",
			validateErr:     auth.ErrWrongTokenType,
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: "Invalid token",
		},
		{
			name:            "unexpected validation failure",
			authHeader:      "Bearer some-token",
			validateErr:     errors.New("keystore unavailable"),
			expectedStatus:  http.StatusInternalServerError,
			expectedMessage: "Authentication error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jwtService := &mocks.MockJWTService{
				ValidateErr: tt.validateErr,
				Claims:      tt.claims,
			}
			middleware := NewAuthMiddleware(jwtService)

			var capturedUserID uuid.UUID
			var called bool
			nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				capturedUserID, _ = GetUserID(r)
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/notebook/due", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rr := httptest.NewRecorder()

			middleware.Authenticate(nextHandler).ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedStatus == http.StatusOK {
				require.True(t, called)
				assert.Equal(t, tt.expectedUserID, capturedUserID)
				assert.Equal(t, []string{"valid-token"}, jwtService.ValidatedTokens)
				return
			}
			assert.False(t, called, "next handler must not run")
			assert.Contains(t, rr.Body.String(), tt.expectedMessage)
		})
	}
}

func TestAuthMiddleware_OptionalAuthenticate(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	tests := []struct {
		name          string
		authHeader    string
		validateErr   error
		claims        *auth.Claims
		authenticated bool
	}{
		{name: "no header", authHeader: ""},
		{name: "malformed header", authHeader: "Token abc"},
		{name: "invalid token", authHeader: "Bearer nope", validateErr: auth.ErrInvalidToken},
		{
			name:          "valid token",
			authHeader:    "Bearer good",
			claims:        &auth.Claims{UserID: userID},
			authenticated: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			middleware := NewAuthMiddleware(&mocks.MockJWTService{
				ValidateErr: tt.validateErr,
				Claims:      tt.claims,
			})

			var gotID uuid.UUID
			var gotOK bool
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotID, gotOK = GetUserID(r)
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/user-characters?chars=学", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rr := httptest.NewRecorder()

			middleware.OptionalAuthenticate(next).ServeHTTP(rr, req)

			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, tt.authenticated, gotOK)
			if tt.authenticated {
				assert.Equal(t, userID, gotID)
			}
		})
	}
}
