package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"melodia/internal/config"
	"melodia/internal/media"
	"melodia/internal/middleware"
	"melodia/internal/models"
	"melodia/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

const (
	testSecret    = "test-secret-at-least-32-characters-long"
	testPublicURL = "http://localhost:8375/media"
)

type testServer struct {
	*Server
	mediaDir string
}

func newTestServer(t *testing.T, rdb *redis.Client) *testServer {
	t.Helper()
	db := testutil.NewDB(t)
	mediaDir := t.TempDir()

	cfg := &config.Config{
		Env:               "test",
		Port:              "0",
		JWTSecret:         testSecret,
		JWTTTL:            time.Hour,
		FeatureFlags:      "play_tracking=on",
		StorageProvider:   "disk",
		StoragePublicURL:  testPublicURL,
		StorageRootFolder: "melodia",
		MediaDir:          mediaDir,
		UploadTmpDir:      t.TempDir(),
		UploadMaxSizeMB:   5,
	}
	uploader := media.NewUploader(media.NewDiskProvider(mediaDir, testPublicURL), cfg.StorageRootFolder)

	s := newServer(cfg, db, rdb, uploader)
	s.App()
	return &testServer{Server: s, mediaDir: mediaDir}
}

func tokenFor(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := middleware.IssueToken(testSecret, user.ID, time.Hour)
	require.NoError(t, err)
	return token
}

// call sends a JSON request and decodes the JSON response body.
func (ts *testServer) call(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	return ts.send(t, req)
}

func (ts *testServer) send(t *testing.T, req *http.Request) (int, map[string]any) {
	t.Helper()
	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	out := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out)
	}
	return resp.StatusCode, out
}

// object returns body[key] as a JSON object.
func object(t *testing.T, body map[string]any, key string) map[string]any {
	t.Helper()
	obj, ok := body[key].(map[string]any)
	require.True(t, ok, "expected object at %q in %v", key, body)
	return obj
}

func list(t *testing.T, body map[string]any, key string) []any {
	t.Helper()
	items, ok := body[key].([]any)
	require.True(t, ok, "expected array at %q in %v", key, body)
	return items
}
