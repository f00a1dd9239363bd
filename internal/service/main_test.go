package service

import (
	"testing"
	"time"

	"melodia/internal/cache"
	"melodia/internal/featureflags"
	"melodia/internal/models"
	"melodia/internal/repository"
	"melodia/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testSecret = "test-secret-at-least-32-characters-long"

type testEnv struct {
	db        *gorm.DB
	store     *cache.Store
	users     *UserService
	artists   *ArtistService
	songs     *SongService
	albums    *AlbumService
	playlists *PlaylistService
}

func newTestEnv(t *testing.T, store *cache.Store) *testEnv {
	t.Helper()
	db := testutil.NewDB(t)
	if store == nil {
		store = cache.NewStore(nil)
	}

	userRepo := repository.NewUserRepository(db)
	artistRepo := repository.NewArtistRepository(db)
	songRepo := repository.NewSongRepository(db)
	albumRepo := repository.NewAlbumRepository(db)
	playlistRepo := repository.NewPlaylistRepository(db)

	return &testEnv{
		db:    db,
		store: store,
		users: NewUserService(userRepo, songRepo, artistRepo, playlistRepo, store, UserServiceConfig{
			JWTSecret: testSecret,
			TokenTTL:  time.Hour,
			HashCost:  bcrypt.MinCost,
		}),
		artists:   NewArtistService(artistRepo, songRepo, albumRepo, store),
		songs:     NewSongService(songRepo, artistRepo, albumRepo, store, featureflags.NewManager("play_tracking=on")),
		albums:    NewAlbumService(albumRepo, artistRepo, songRepo, store),
		playlists: NewPlaylistService(playlistRepo, songRepo, userRepo),
	}
}

func assertStatus(t *testing.T, want int, err error) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, want, models.StatusFor(err), "unexpected status for %v", err)
}
