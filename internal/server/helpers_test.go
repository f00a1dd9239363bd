package server

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"melodia/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func TestHumanizeParam(t *testing.T) {
	tests := []struct {
		param    string
		expected string
	}{
		{"id", "ID"},
		{"userId", "user ID"},
		{"songId", "song ID"},
		{"playlistSongId", "playlist song ID"},
		{"something", "something"},
	}
	for _, tt := range tests {
		t.Run(tt.param, func(t *testing.T) {
			assert.Equal(t, tt.expected, humanizeParam(tt.param))
		})
	}
}

func TestParseID_RejectsNonPositive(t *testing.T) {
	ts := newTestServer(t, nil)
	token := tokenFor(t, testutil.CreateUser(t, ts.db, "admin@example.com", true))

	for _, raw := range []string{"0", "-3", "1.5", "x"} {
		status, body := ts.call(t, http.MethodDelete, "/api/albums/1/songs/"+raw, token, nil)
		assert.Equal(t, fiber.StatusBadRequest, status, raw)
		assert.Equal(t, "Invalid song ID", body["message"], raw)
	}
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t, nil)

	status, body := ts.call(t, http.MethodGet, "/health/live", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "up", body["status"])

	status, body = ts.call(t, http.MethodGet, "/health/ready", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	checks := object(t, body, "checks")
	assert.Equal(t, "healthy", checks["database"])
	assert.Equal(t, "disabled", checks["redis"])
	assert.Equal(t, "disk", checks["storage"])
}

func TestSecurityHeaders(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, err := ts.app.Test(httptest.NewRequest(http.MethodGet, "/health/live", nil), -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.NotEmpty(t, resp.Header.Get("X-Content-Type-Options"))
	assert.NotEmpty(t, resp.Header.Get("X-Frame-Options"))
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))
	assert.NotEmpty(t, resp.Header.Get("X-Trace-ID"))
}
