package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/streamviewapp/streamview-server/internal/auth"
	"github.com/streamviewapp/streamview-server/internal/domain"
	"github.com/streamviewapp/streamview-server/internal/service"
	"github.com/streamviewapp/streamview-server/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	*Server
	api     humatest.TestAPI
	store   *store.Store
	cleanup func()
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "api-test-*")
	require.NoError(t, err)

	dbPath := filepath.Join(tmpDir, "test.db")
	st, err := store.New(dbPath, nil)
	require.NoError(t, err)

	secret := make([]byte, 32)
	for i := range secret {
		secret[i] = byte(i + 1)
	}
	tokenService, err := auth.NewTokenService(secret, time.Hour)
	require.NoError(t, err)

	logger := slog.New(slog.DiscardHandler)

	services := &Services{
		Auth:      service.NewAuthService(st, tokenService, logger),
		Catalog:   service.NewCatalogService(st, nil, logger),
		EPG:       service.NewEPGService(st, logger),
		Viewing:   service.NewViewingService(st, logger),
		Recommend: service.NewRecommendationService(st, logger),
		Streaming: service.NewStreamingService(st, "http://cdn.example.com", logger),
	}

	s := NewServer(Options{
		Store:          st,
		Services:       services,
		CORSOrigins:    []string{"*"},
		LoginRateLimit: 1000,
		Logger:         logger,
	})

	cleanup := func() {
		st.Close()
		os.RemoveAll(tmpDir)
	}

	return &testServer{
		Server:  s,
		api:     humatest.Wrap(t, s.api),
		store:   st,
		cleanup: cleanup,
	}
}

// registerTestUser creates a user through the API and returns a bearer token.
func (ts *testServer) registerTestUser(t *testing.T, username string) string {
	t.Helper()

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"username": username,
		"email":    username + "@test.com",
		"password": "TestPassword123",
	})
	require.Equal(t, http.StatusOK, resp.Code, "register failed: %s", resp.Body.String())

	var body struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.NotEmpty(t, body.AccessToken)

	return "Bearer " + body.AccessToken
}

func TestViewingFlow(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token := ts.registerTestUser(t, "viewer")

	content := &domain.Content{
		ID:        "cnt-flow",
		Title:     "Flow Test Movie",
		StreamURL: "/vod/flow.m3u8",
		Type:      domain.ContentTypeMovie,
		Genre:     "Drama",
	}
	content.InitTimestamps()
	require.NoError(t, ts.store.CreateContent(context.Background(), content))

	// Start a session
	resp := ts.api.Post("/api/v1/viewing/start",
		"Authorization: "+token,
		map[string]any{"content_id": "cnt-flow"},
	)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var session struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &session))
	require.NotEmpty(t, session.ID)

	// Report progress
	resp = ts.api.Put("/api/v1/viewing/"+session.ID+"/progress",
		"Authorization: "+token,
		map[string]any{"progress_seconds": 300.0},
	)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	// Session shows up in history
	resp = ts.api.Get("/api/v1/viewing/history", "Authorization: "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	var history struct {
		Sessions []struct {
			ID              string  `json:"id"`
			ProgressSeconds float64 `json:"progress_seconds"`
		} `json:"sessions"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &history))
	require.Len(t, history.Sessions, 1)
	assert.Equal(t, session.ID, history.Sessions[0].ID)
	assert.Equal(t, 300.0, history.Sessions[0].ProgressSeconds)

	// And in continue watching
	resp = ts.api.Get("/api/v1/viewing/continue", "Authorization: "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	var cw struct {
		Items []struct {
			SessionID string `json:"session_id"`
			Content   struct {
				ID string `json:"id"`
			} `json:"content"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &cw))
	require.Len(t, cw.Items, 1)
	assert.Equal(t, "cnt-flow", cw.Items[0].Content.ID)
}

func TestViewingRequiresAuth(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	resp := ts.api.Post("/api/v1/viewing/start", map[string]any{"content_id": "cnt-1"})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = ts.api.Get("/api/v1/viewing/history")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestProgressOnUnknownSessionSucceeds(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token := ts.registerTestUser(t, "stale")

	resp := ts.api.Put("/api/v1/viewing/sess-gone/progress",
		"Authorization: "+token,
		map[string]any{"progress_seconds": 10.0},
	)
	assert.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
}

func TestAdminContentRequiresAdminRole(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token := ts.registerTestUser(t, "plainuser")

	resp := ts.api.Post("/api/v1/admin/content",
		"Authorization: "+token,
		map[string]any{
			"title":      "Forbidden Movie",
			"stream_url": "/vod/x.m3u8",
			"type":       "movie",
		},
	)
	assert.Equal(t, http.StatusForbidden, resp.Code, resp.Body.String())
}

func TestAdminContentCRUD(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token := ts.registerTestUser(t, "adminuser")

	// Promote directly in the store
	ctx := context.Background()
	user, err := ts.store.GetUserByUsername(ctx, "adminuser")
	require.NoError(t, err)
	user.Role = domain.RoleAdmin
	require.NoError(t, ts.store.UpdateUser(ctx, user))

	resp := ts.api.Post("/api/v1/admin/content",
		"Authorization: "+token,
		map[string]any{
			"title":      "Created Movie",
			"stream_url": "/vod/created.m3u8",
			"type":       "movie",
			"genre":      "Action",
			"rating":     7.5,
		},
	)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))

	resp = ts.api.Get("/api/v1/content/"+created.ID, "Authorization: "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Delete("/api/v1/admin/content/"+created.ID, "Authorization: "+token)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Get("/api/v1/content/"+created.ID, "Authorization: "+token)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestHealthCheckPublic(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	resp := ts.api.Get("/health")
	assert.Equal(t, http.StatusOK, resp.Code)
}
