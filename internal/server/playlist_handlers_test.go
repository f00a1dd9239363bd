package server

import (
	"net/http"
	"testing"

	"melodia/internal/models"
	"melodia/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrivatePlaylist_Visibility(t *testing.T) {
	ts := newTestServer(t, nil)
	creator := testutil.CreateUser(t, ts.db, "creator@example.com", false)
	collaborator := testutil.CreateUser(t, ts.db, "collab@example.com", false)
	outsider := testutil.CreateUser(t, ts.db, "outsider@example.com", false)
	artist := testutil.CreateArtist(t, ts.db, "Burial")
	song := testutil.CreateSong(t, ts.db, "Archangel", artist.ID, nil)

	status, body := ts.call(t, http.MethodPost, "/api/playlists", tokenFor(t, creator), map[string]any{
		"name":     "Night Bus",
		"isPublic": false,
	})
	require.Equal(t, fiber.StatusCreated, status, body)
	created := object(t, body, "playlist")
	assert.Equal(t, false, created["isPublic"])
	path := "/api/playlists/" + itoa(uint(created["id"].(float64)))

	status, _ = ts.call(t, http.MethodPost, path+"/collaborators", tokenFor(t, creator), map[string]any{"userId": collaborator.ID})
	require.Equal(t, fiber.StatusOK, status)

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"anonymous", "", fiber.StatusForbidden},
		{"outsider", tokenFor(t, outsider), fiber.StatusForbidden},
		{"creator", tokenFor(t, creator), fiber.StatusOK},
		{"collaborator", tokenFor(t, collaborator), fiber.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := ts.call(t, http.MethodGet, path, tt.token, nil)
			assert.Equal(t, tt.want, status)
			if tt.want == fiber.StatusForbidden {
				assert.NotEmpty(t, body["message"])
			}
		})
	}

	status, _ = ts.call(t, http.MethodGet, "/api/playlists", "", nil)
	require.Equal(t, fiber.StatusOK, status)

	status, _ = ts.call(t, http.MethodPost, path+"/songs", tokenFor(t, outsider), map[string]any{"songIds": []uint{song.ID}})
	assert.Equal(t, fiber.StatusForbidden, status)

	var count int64
	require.NoError(t, ts.db.Model(&models.PlaylistSong{}).Count(&count).Error)
	assert.Zero(t, count, "an outsider must not change the playlist")

	status, _ = ts.call(t, http.MethodPost, path+"/follow", tokenFor(t, outsider), nil)
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestPlaylistSongs_EditorsAndMissingIDs(t *testing.T) {
	ts := newTestServer(t, nil)
	creator := testutil.CreateUser(t, ts.db, "creator@example.com", false)
	collaborator := testutil.CreateUser(t, ts.db, "collab@example.com", false)
	playlist := testutil.CreatePlaylist(t, ts.db, "Warehouse", creator.ID, true)
	artist := testutil.CreateArtist(t, ts.db, "Floating Points")
	first := testutil.CreateSong(t, ts.db, "Silhouettes", artist.ID, nil)
	second := testutil.CreateSong(t, ts.db, "Ratio", artist.ID, nil)
	path := "/api/playlists/" + itoa(playlist.ID)
	creatorToken, collabToken := tokenFor(t, creator), tokenFor(t, collaborator)

	status, body := ts.call(t, http.MethodPost, path+"/songs", creatorToken, map[string]any{"songIds": []uint{first.ID, 998, 999}})
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Contains(t, body["message"], "998, 999")

	status, _ = ts.call(t, http.MethodPost, path+"/songs", collabToken, map[string]any{"songIds": []uint{first.ID}})
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = ts.call(t, http.MethodPost, path+"/collaborators", collabToken, map[string]any{"userId": collaborator.ID})
	assert.Equal(t, fiber.StatusForbidden, status)
	status, _ = ts.call(t, http.MethodPost, path+"/collaborators", creatorToken, map[string]any{"userId": creator.ID})
	assert.Equal(t, fiber.StatusBadRequest, status)
	status, _ = ts.call(t, http.MethodPost, path+"/collaborators", creatorToken, map[string]any{"userId": 4242})
	assert.Equal(t, fiber.StatusNotFound, status)
	status, _ = ts.call(t, http.MethodPost, path+"/collaborators", creatorToken, map[string]any{"userId": collaborator.ID})
	require.Equal(t, fiber.StatusOK, status)

	status, _ = ts.call(t, http.MethodPost, path+"/songs", collabToken, map[string]any{"songIds": []uint{first.ID}})
	require.Equal(t, fiber.StatusOK, status)
	status, body = ts.call(t, http.MethodPost, path+"/songs", creatorToken, map[string]any{"songIds": []uint{first.ID, second.ID}})
	require.Equal(t, fiber.StatusOK, status)

	songs := list(t, object(t, body, "playlist"), "songs")
	require.Len(t, songs, 2, "re-adding a song is a no-op")
	assert.Equal(t, "Silhouettes", songs[0].(map[string]any)["title"])
	assert.Equal(t, "Ratio", songs[1].(map[string]any)["title"])

	status, _ = ts.call(t, http.MethodPut, path, collabToken, map[string]any{"name": "Hijacked"})
	assert.Equal(t, fiber.StatusForbidden, status)

	status, body = ts.call(t, http.MethodDelete, path+"/songs", collabToken, map[string]any{"songIds": []uint{first.ID}})
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, list(t, object(t, body, "playlist"), "songs"), 1)

	status, _ = ts.call(t, http.MethodDelete, path+"/collaborators/"+itoa(collaborator.ID), creatorToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	status, _ = ts.call(t, http.MethodDelete, path+"/collaborators/"+itoa(collaborator.ID), creatorToken, nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, body = ts.call(t, http.MethodGet, "/api/playlists/me", creatorToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, list(t, body, "playlists"), 1)

	status, _ = ts.call(t, http.MethodDelete, path, collabToken, nil)
	assert.Equal(t, fiber.StatusForbidden, status)
	status, _ = ts.call(t, http.MethodDelete, path, creatorToken, nil)
	assert.Equal(t, fiber.StatusOK, status)
}

func TestPlaylistFollow(t *testing.T) {
	ts := newTestServer(t, nil)
	creator := testutil.CreateUser(t, ts.db, "creator@example.com", false)
	fan := testutil.CreateUser(t, ts.db, "fan@example.com", false)
	playlist := testutil.CreatePlaylist(t, ts.db, "Sunday", creator.ID, true)
	path := "/api/playlists/" + itoa(playlist.ID) + "/follow"
	token := tokenFor(t, fan)

	status, _ := ts.call(t, http.MethodPost, path, token, nil)
	require.Equal(t, fiber.StatusOK, status)
	status, _ = ts.call(t, http.MethodPost, path, token, nil)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body := ts.call(t, http.MethodGet, "/api/users/me/followed-playlists", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	followed := list(t, body, "playlists")
	require.Len(t, followed, 1)
	assert.Equal(t, float64(1), followed[0].(map[string]any)["followerCount"])

	status, _ = ts.call(t, http.MethodDelete, path, token, nil)
	require.Equal(t, fiber.StatusOK, status)
	status, _ = ts.call(t, http.MethodDelete, path, token, nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestCreatePlaylist_ArrayForScalarField(t *testing.T) {
	ts := newTestServer(t, nil)
	token := tokenFor(t, testutil.CreateUser(t, ts.db, "listener@example.com", false))

	status, body := ts.call(t, http.MethodPost, "/api/playlists", token, map[string]any{"name": []string{"x"}})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "name must be a single value", body["message"])

	var count int64
	require.NoError(t, ts.db.Model(&models.Playlist{}).Count(&count).Error)
	assert.Zero(t, count)
}
