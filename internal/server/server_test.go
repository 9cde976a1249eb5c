package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/codecast/codecast/internal/model"
	"github.com/codecast/codecast/internal/store/memory"
)

const testJWTSecret = "test-secret-for-server"

type mockPinger struct{ err error }

func (m *mockPinger) Ping(ctx context.Context) error { return m.err }

func newTestServer() *Server {
	return New(Config{
		Store:     memory.New(),
		JWTSecret: testJWTSecret,
	})
}

var authIPCounter int

// do sends a JSON request. Auth endpoints get a unique client IP per call so
// the login rate limiter never interferes with the flow under test.
func do(t *testing.T, srv http.Handler, method, target, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	authIPCounter++
	req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", authIPCounter%250+1))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func register(t *testing.T, srv http.Handler, username, role string) (userID, token string) {
	t.Helper()
	rec := do(t, srv, http.MethodPost, "/api/auth/register", "", map[string]any{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
		"role":     role,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s failed with status %d: %s", username, rec.Code, rec.Body.String())
	}
	var resp struct {
		User  model.User `json:"user"`
		Token string     `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse register response: %v", err)
	}
	return resp.User.ID, resp.Token
}

func TestHealth(t *testing.T) {
	srv := New(Config{Store: memory.New(), JWTSecret: testJWTSecret, Pinger: &mockPinger{}})

	rec := do(t, srv, http.MethodGet, "/api/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHealthUnreachableDatabase(t *testing.T) {
	srv := New(Config{Store: memory.New(), JWTSecret: testJWTSecret, Pinger: &mockPinger{err: errors.New("connection refused")}})

	rec := do(t, srv, http.MethodGet, "/api/health", "", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv := newTestServer()

	rec := do(t, srv, http.MethodGet, "/api/videos", "", nil)
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("expected nosniff, got %q", got)
	}
	if rec.Header().Get("Content-Security-Policy") == "" {
		t.Error("expected Content-Security-Policy header")
	}
	if rec.Header().Get("Strict-Transport-Security") != "" {
		t.Error("expected no HSTS header without an https base URL")
	}
}

func TestRequestIDHeader(t *testing.T) {
	srv := newTestServer()

	rec := do(t, srv, http.MethodGet, "/api/videos", "", nil)
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header on responses")
	}
}

func TestSPAFallback(t *testing.T) {
	webFS := fstest.MapFS{
		"index.html": {Data: []byte("<html>codecast</html>")},
		"app.js":     {Data: []byte("console.log('hi')")},
	}
	srv := New(Config{Store: memory.New(), JWTSecret: testJWTSecret, WebFS: webFS})

	rec := do(t, srv, http.MethodGet, "/app.js", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for existing asset, got %d", rec.Code)
	}

	// Client-side routes fall back to index.html.
	rec = do(t, srv, http.MethodGet, "/videos/some-client-route", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for SPA route, got %d", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("codecast")) {
		t.Errorf("expected index.html content, got %q", rec.Body.String())
	}
}

func TestAuthRequiredRoutes(t *testing.T) {
	srv := newTestServer()

	tests := []struct {
		method string
		target string
	}{
		{http.MethodGet, "/api/users/me"},
		{http.MethodPost, "/api/videos"},
		{http.MethodGet, "/api/creator/videos"},
		{http.MethodGet, "/api/admin/videos"},
		{http.MethodGet, "/api/watch-history"},
		{http.MethodGet, "/api/watch-later"},
	}
	for _, tt := range tests {
		rec := do(t, srv, tt.method, tt.target, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401 without token, got %d", tt.method, tt.target, rec.Code)
		}
	}
}

func TestRoleGates(t *testing.T) {
	srv := newTestServer()
	_, viewerToken := register(t, srv, "viewer1", "viewer")
	_, creatorToken := register(t, srv, "creator1", "creator")

	// Viewers cannot publish.
	rec := do(t, srv, http.MethodPost, "/api/videos", viewerToken, map[string]any{})
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for viewer create, got %d", rec.Code)
	}
	rec = do(t, srv, http.MethodGet, "/api/creator/videos", viewerToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for viewer creator dashboard, got %d", rec.Code)
	}

	// Creators cannot moderate.
	rec = do(t, srv, http.MethodGet, "/api/admin/videos", creatorToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for creator admin listing, got %d", rec.Code)
	}
}

func TestLoginRateLimited(t *testing.T) {
	srv := newTestServer()

	var lastCode int
	for i := 0; i < 8; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader([]byte(`{"username":"ghost","password":"password123"}`)))
		req.Header.Set("X-Forwarded-For", "198.51.100.7")
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		lastCode = rec.Code
	}
	if lastCode != http.StatusTooManyRequests {
		t.Errorf("expected 429 after hammering login, got %d", lastCode)
	}
}

func TestVideoLifecycle(t *testing.T) {
	srv := newTestServer()
	creatorUID, creatorToken := register(t, srv, "creator1", "creator")
	_, viewerToken := register(t, srv, "viewer1", "viewer")
	_, otherToken := register(t, srv, "creator2", "creator")
	_, adminToken := register(t, srv, "admin1", "admin")

	// Creator publishes a video.
	rec := do(t, srv, http.MethodPost, "/api/videos", creatorToken, map[string]any{
		"title":       "Intro to Goroutines",
		"description": "A walkthrough of building concurrent pipelines in Go.",
		"url":         "https://www.youtube.com/watch?v=abc123",
		"embedType":   "youtube",
		"category":    "Backend",
		"difficulty":  "intermediate",
		"tags":        []string{"go", "concurrency"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create failed with status %d: %s", rec.Code, rec.Body.String())
	}
	var video model.Video
	if err := json.Unmarshal(rec.Body.Bytes(), &video); err != nil {
		t.Fatalf("failed to parse create response: %v", err)
	}
	if video.CreatorID != creatorUID {
		t.Errorf("expected creator %q, got %q", creatorUID, video.CreatorID)
	}

	// Anyone can browse.
	rec = do(t, srv, http.MethodGet, "/api/videos", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list failed with status %d", rec.Code)
	}
	var videos []model.Video
	if err := json.Unmarshal(rec.Body.Bytes(), &videos); err != nil {
		t.Fatalf("failed to parse list response: %v", err)
	}
	if len(videos) != 1 {
		t.Fatalf("expected 1 video in catalog, got %d", len(videos))
	}

	// Fetching the detail bumps the view counter.
	do(t, srv, http.MethodGet, "/api/videos/"+video.ID, "", nil)
	rec = do(t, srv, http.MethodGet, "/api/videos/"+video.ID, "", nil)
	var detail model.Video
	if err := json.Unmarshal(rec.Body.Bytes(), &detail); err != nil {
		t.Fatalf("failed to parse detail response: %v", err)
	}
	if detail.Views != 1 {
		t.Errorf("expected 1 view after first fetch, got %d", detail.Views)
	}

	// Viewer likes the video.
	rec = do(t, srv, http.MethodPost, "/api/videos/"+video.ID+"/like", viewerToken, map[string]any{"isLike": true})
	if rec.Code != http.StatusOK {
		t.Fatalf("like failed with status %d: %s", rec.Code, rec.Body.String())
	}

	// Another creator cannot edit it.
	rec = do(t, srv, http.MethodPatch, "/api/videos/"+video.ID, otherToken, map[string]any{"title": "Hijacked title here"})
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for non-owner edit, got %d", rec.Code)
	}

	// Admin takes it down.
	rec = do(t, srv, http.MethodPatch, "/api/admin/videos/"+video.ID+"/status", adminToken, map[string]any{"status": "removed"})
	if rec.Code != http.StatusOK {
		t.Fatalf("moderation failed with status %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, srv, http.MethodGet, "/api/videos", "", nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &videos); err != nil {
		t.Fatalf("failed to parse list response: %v", err)
	}
	if len(videos) != 0 {
		t.Errorf("expected removed video to leave the catalog, got %d", len(videos))
	}

	// The creator still sees it on the dashboard.
	rec = do(t, srv, http.MethodGet, "/api/creator/videos", creatorToken, nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &videos); err != nil {
		t.Fatalf("failed to parse dashboard response: %v", err)
	}
	if len(videos) != 1 {
		t.Errorf("expected dashboard to keep the removed video, got %d", len(videos))
	}
}

func TestWatchLaterAcrossUsers(t *testing.T) {
	srv := newTestServer()
	_, creatorToken := register(t, srv, "creator1", "creator")
	_, viewerToken := register(t, srv, "viewer1", "viewer")
	_, otherViewerToken := register(t, srv, "viewer2", "viewer")

	rec := do(t, srv, http.MethodPost, "/api/videos", creatorToken, map[string]any{
		"title":       "Intro to Goroutines",
		"description": "A walkthrough of building concurrent pipelines in Go.",
		"url":         "https://www.youtube.com/watch?v=abc123",
		"embedType":   "youtube",
		"category":    "Backend",
		"difficulty":  "intermediate",
		"tags":        []string{"go"},
	})
	var video model.Video
	if err := json.Unmarshal(rec.Body.Bytes(), &video); err != nil {
		t.Fatalf("failed to parse create response: %v", err)
	}

	rec = do(t, srv, http.MethodPost, "/api/watch-later", viewerToken, map[string]any{"videoId": video.ID})
	if rec.Code != http.StatusCreated {
		t.Fatalf("watch-later add failed with status %d: %s", rec.Code, rec.Body.String())
	}

	// Lists are per user.
	rec = do(t, srv, http.MethodGet, "/api/watch-later", otherViewerToken, nil)
	var entries []model.WatchLaterEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("failed to parse watch-later response: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty list for the other viewer, got %d", len(entries))
	}

	rec = do(t, srv, http.MethodGet, "/api/watch-later", viewerToken, nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("failed to parse watch-later response: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected 1 entry for the saving viewer, got %d", len(entries))
	}
}
