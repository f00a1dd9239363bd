package server

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"melodia/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func multipartRequest(t *testing.T, method, path, token string, fields map[string]string, fileField, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileField != "" {
		part, err := w.CreateFormFile(fileField, filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	return req
}

func tempFiles(t *testing.T, dir string) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	return entries
}

func TestCreateArtist_UploadedImageWins(t *testing.T) {
	ts := newTestServer(t, nil)
	token := tokenFor(t, testutil.CreateUser(t, ts.db, "admin@example.com", true))

	req := multipartRequest(t, http.MethodPost, "/api/artists", token, map[string]string{
		"name":               `"Four Tet"`,
		"verificationStatus": "yes",
		"image":              "https://old.example.com/portrait.png",
	}, "image", "portrait.png", pngBytes(t))

	status, body := ts.send(t, req)
	require.Equal(t, fiber.StatusCreated, status, body)
	artist := object(t, body, "artist")
	assert.Equal(t, "Four Tet", artist["name"])
	assert.Equal(t, true, artist["verificationStatus"])

	imageURL, _ := artist["image"].(string)
	require.True(t, strings.HasPrefix(imageURL, testPublicURL+"/melodia/artists/"), imageURL)
	assert.True(t, strings.HasSuffix(imageURL, ".png"))

	key := strings.TrimPrefix(imageURL, testPublicURL+"/")
	_, err := os.Stat(filepath.Join(ts.mediaDir, filepath.FromSlash(key)))
	assert.NoError(t, err, "uploaded file is stored under the media dir")
	assert.Empty(t, tempFiles(t, ts.config.UploadTmpDir), "temp files are removed after upload")

	resp, err := ts.app.Test(httptest.NewRequest(http.MethodGet, "/media/"+key, nil), -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestCreateArtist_RejectsNonImage(t *testing.T) {
	ts := newTestServer(t, nil)
	token := tokenFor(t, testutil.CreateUser(t, ts.db, "admin@example.com", true))

	req := multipartRequest(t, http.MethodPost, "/api/artists", token,
		map[string]string{"name": "Fake"}, "image", "portrait.png", []byte("definitely not a picture"))

	status, body := ts.send(t, req)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Invalid image file", body["message"])
	assert.Empty(t, tempFiles(t, ts.config.UploadTmpDir))

	var count int64
	require.NoError(t, ts.db.Table("artists").Count(&count).Error)
	assert.Zero(t, count)
}

func TestUpdateMe_ProfilePictureUpload(t *testing.T) {
	ts := newTestServer(t, nil)
	token := tokenFor(t, testutil.CreateUser(t, ts.db, "fan@example.com", false))

	req := multipartRequest(t, http.MethodPut, "/api/users/me", token,
		map[string]string{"fullName": "Night Owl"}, "image", "me.png", pngBytes(t))

	status, body := ts.send(t, req)
	require.Equal(t, fiber.StatusOK, status, body)
	user := object(t, body, "user")
	assert.Equal(t, "Night Owl", user["fullName"])
	picture, _ := user["profilePicture"].(string)
	assert.True(t, strings.HasPrefix(picture, testPublicURL+"/melodia/users/"), picture)
}

func TestUpdatePlaylist_OutsiderCoverNotStored(t *testing.T) {
	ts := newTestServer(t, nil)
	owner := testutil.CreateUser(t, ts.db, "owner@example.com", false)
	outsider := testutil.CreateUser(t, ts.db, "outsider@example.com", false)
	playlist := testutil.CreatePlaylist(t, ts.db, "Late Night", owner.ID, true)

	req := multipartRequest(t, http.MethodPut, fmt.Sprintf("/api/playlists/%d", playlist.ID), tokenFor(t, outsider),
		map[string]string{"name": "Hijacked"}, "coverImage", "cover.png", pngBytes(t))

	status, _ := ts.send(t, req)
	assert.Equal(t, fiber.StatusForbidden, status)

	_, err := os.Stat(filepath.Join(ts.mediaDir, "melodia", "playlists"))
	assert.True(t, os.IsNotExist(err), "no cover is stored for a rejected update")
	assert.Empty(t, tempFiles(t, ts.config.UploadTmpDir))
}
