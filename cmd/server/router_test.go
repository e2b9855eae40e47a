package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/hanzi-srs/internal/config"
	"github.com/phrazzld/hanzi-srs/internal/domain"
	"github.com/phrazzld/hanzi-srs/internal/domain/srs"
	"github.com/phrazzld/hanzi-srs/internal/mocks"
	"github.com/phrazzld/hanzi-srs/internal/platform/logger"
	"github.com/phrazzld/hanzi-srs/internal/service/auth"
	"github.com/phrazzld/hanzi-srs/internal/service/review"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "good-token"

func newTestApplication(t *testing.T, svc review.ReviewService) (*application, uuid.UUID) {
	t.Helper()

	userID := uuid.New()
	jwtService := &mocks.MockJWTService{
		ValidateTokenFn: func(ctx context.Context, token string) (*auth.Claims, error) {
			if token != testToken {
				return nil, auth.ErrInvalidToken
			}
			return &auth.Claims{UserID: userID, TokenType: "access"}, nil
		},
	}

	return &application{
		config:        &config.Config{Server: config.ServerConfig{Port: 0, LogLevel: "debug"}},
		logger:        logger.DiscardLogger(),
		jwtService:    jwtService,
		reviewService: svc,
	}, userID
}

func TestRouter(t *testing.T) {
	var gotUser uuid.UUID
	var gotPreviewID uuid.UUID

	svc := &review.MockReviewService{
		GetDueFunc: func(ctx context.Context, userID uuid.UUID, limit int) ([]*review.DueCharacter, error) {
			gotUser = userID
			return nil, nil
		},
		PreviewIntervalsFunc: func(ctx context.Context, userID, id uuid.UUID) (*srs.IntervalPreview, error) {
			gotPreviewID = id
			return &srs.IntervalPreview{Again: "1m", Hard: "1d", Good: "3d", Easy: "15d"}, nil
		},
		SetFamiliarityFunc: func(ctx context.Context, userID uuid.UUID, c string, f int) (*domain.UserCharacter, error) {
			return &domain.UserCharacter{CharacterID: c, Familiarity: f}, nil
		},
		LookupFunc: func(ctx context.Context, userID uuid.UUID, chars string) (map[string]*domain.UserCharacter, error) {
			return map[string]*domain.UserCharacter{}, nil
		},
	}

	app, userID := newTestApplication(t, svc)
	server := httptest.NewServer(app.setupRouter())
	defer server.Close()

	do := func(t *testing.T, method, path, token, body string) *http.Response {
		t.Helper()
		var req *http.Request
		var err error
		if body != "" {
			req, err = http.NewRequest(method, server.URL+path, strings.NewReader(body))
		} else {
			req, err = http.NewRequest(method, server.URL+path, nil)
		}
		require.NoError(t, err)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		t.Cleanup(func() { _ = resp.Body.Close() })
		return resp
	}

	t.Run("health is public", func(t *testing.T) {
		resp := do(t, http.MethodGet, "/health", "", "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("notebook requires a token", func(t *testing.T) {
		resp := do(t, http.MethodGet, "/api/notebook/due", "", "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		resp = do(t, http.MethodGet, "/api/notebook/due", "forged", "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("authenticated due queue", func(t *testing.T) {
		resp := do(t, http.MethodGet, "/api/notebook/due", testToken, "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, userID, gotUser)
		assert.NotEmpty(t, resp.Header.Get("Content-Type"))
	})

	t.Run("preview path parameter", func(t *testing.T) {
		id := uuid.New()
		resp := do(t, http.MethodGet, "/api/notebook/characters/"+id.String()+"/preview", testToken, "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, id, gotPreviewID)
	})

	t.Run("patch familiarity", func(t *testing.T) {
		resp := do(t, http.MethodPatch, "/api/notebook/characters", testToken, `{"character_id":"学","familiarity":5}`)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("lookup is optionally authenticated", func(t *testing.T) {
		resp := do(t, http.MethodGet, "/api/user-characters?chars=abc", "", "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		resp = do(t, http.MethodGet, "/api/user-characters?chars=abc", "forged", "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("bulk requires a token", func(t *testing.T) {
		resp := do(t, http.MethodPost, "/api/user-characters/bulk", "", `{"characters":["一"],"familiarity":5}`)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("wrong method", func(t *testing.T) {
		resp := do(t, http.MethodDelete, "/api/notebook/characters", testToken, "")
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})
}

func TestStartHTTPServerStopsOnCancel(t *testing.T) {
	app, _ := newTestApplication(t, &review.MockReviewService{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.startHTTPServer(ctx, app.setupRouter()) }()

	cancel()
	assert.NoError(t, <-done)
}
