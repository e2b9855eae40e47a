package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/hanzi-srs/internal/api/shared"
	"github.com/phrazzld/hanzi-srs/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestGetUserIDFromContext(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name       string
		ctx        context.Context
		expectedOK bool
	}{
		{"valid user ID in context", shared.WithUserID(context.Background(), userID), true},
		{"missing user ID in context", context.Background(), false},
		{"nil user ID in context", shared.WithUserID(context.Background(), uuid.Nil), false},
		{
			"wrong type in context",
			context.WithValue(context.Background(), shared.UserIDContextKey, "not-a-uuid"),
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(tt.ctx)

			got, ok := getUserIDFromContext(req)

			assert.Equal(t, tt.expectedOK, ok)
			if tt.expectedOK {
				assert.Equal(t, userID, got)
			} else {
				assert.Equal(t, uuid.Nil, got)
			}
		})
	}
}

func TestGetPathUUID(t *testing.T) {
	validUUID := uuid.New()

	tests := []struct {
		name      string
		value     string
		expectErr error
	}{
		{"valid UUID", validUUID.String(), nil},
		{"missing parameter", "", domain.ErrValidation},
		{"malformed UUID", "not-a-uuid", domain.ErrInvalidID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", tt.value)

			got, err := getPathUUID(req, "id")

			if tt.expectErr != nil {
				assert.ErrorIs(t, err, tt.expectErr)
				assert.Equal(t, uuid.Nil, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, validUUID, got)
		})
	}
}

func TestHandleUserIDAndPathUUID(t *testing.T) {
	userID := uuid.New()
	pathID := uuid.New()

	t.Run("missing user", func(t *testing.T) {
		req := withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", pathID.String())
		rr := httptest.NewRecorder()

		_, _, ok := handleUserIDAndPathUUID(rr, req, "id", nil)

		assert.False(t, ok)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("bad path UUID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = withURLParam(req.WithContext(shared.WithUserID(req.Context(), userID)), "id", "xyz")
		rr := httptest.NewRecorder()

		_, _, ok := handleUserIDAndPathUUID(rr, req, "id", nil)

		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("success", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = withURLParam(req.WithContext(shared.WithUserID(req.Context(), userID)), "id", pathID.String())
		rr := httptest.NewRecorder()

		gotUser, gotPath, ok := handleUserIDAndPathUUID(rr, req, "id", nil)

		assert.True(t, ok)
		assert.Equal(t, userID, gotUser)
		assert.Equal(t, pathID, gotPath)
	})
}

func TestParseAndValidateRequest(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectOK       bool
		expectedStatus int
	}{
		{"valid", `{"character":"学","familiarity":4}`, true, http.StatusOK},
		{"empty body", ``, false, http.StatusBadRequest},
		{"malformed JSON", `{"character":`, false, http.StatusBadRequest},
		{"wrong type", `{"character":"学","familiarity":"high"}`, false, http.StatusBadRequest},
		{"fails validation", `{"character":"学","familiarity":6}`, false, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/user-character", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()

			var parsed MarkCharacterRequest
			ok := parseAndValidateRequest(rr, req, &parsed)

			assert.Equal(t, tt.expectOK, ok)
			if tt.expectOK {
				assert.Equal(t, "学", parsed.Character)
				assert.Equal(t, 4, parsed.Familiarity)
			} else {
				assert.Equal(t, tt.expectedStatus, rr.Code)
			}
		})
	}
}

func TestQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=20&page=abc&empty=", nil)

	v, err := queryInt(req, "limit", 50)
	require.NoError(t, err)
	assert.Equal(t, 20, v)

	v, err = queryInt(req, "missing", 50)
	require.NoError(t, err)
	assert.Equal(t, 50, v)

	v, err = queryInt(req, "empty", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	_, err = queryInt(req, "page", 1)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, set, err := queryOptionalInt(req, "missing")
	require.NoError(t, err)
	assert.False(t, set)
}
