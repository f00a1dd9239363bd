// Package testutil provides shared test databases and fixtures for backend tests.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"melodia/internal/database"
	"melodia/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a private in-memory SQLite database with foreign keys enforced
// and the full schema migrated. It is closed when the test ends.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()) + "_" + uuid.NewString()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	return db
}

// TestPassword satisfies the password policy and is used for every fixture user.
const TestPassword = "SecurePass12!@"

// CreateUser inserts a user with a bcrypt hash of TestPassword.
func CreateUser(t *testing.T, db *gorm.DB, email string, admin bool) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{Email: email, Password: string(hash), IsAdmin: admin}
	require.NoError(t, db.WithContext(context.Background()).Create(user).Error)
	return user
}

// CreateArtist inserts an artist.
func CreateArtist(t *testing.T, db *gorm.DB, name string) *models.Artist {
	t.Helper()
	artist := &models.Artist{Name: name}
	require.NoError(t, db.Create(artist).Error)
	return artist
}

// CreateAlbum inserts an album for artistID.
func CreateAlbum(t *testing.T, db *gorm.DB, title string, artistID uint) *models.Album {
	t.Helper()
	album := &models.Album{Title: title, ArtistID: artistID}
	require.NoError(t, db.Create(album).Error)
	return album
}

// CreateSong inserts a song for artistID, optionally on albumID.
func CreateSong(t *testing.T, db *gorm.DB, title string, artistID uint, albumID *uint) *models.Song {
	t.Helper()
	now := time.Now()
	song := &models.Song{
		Title:       title,
		ArtistID:    artistID,
		AlbumID:     albumID,
		Duration:    200,
		AudioURL:    "https://cdn.example.com/" + uuid.NewString() + ".mp3",
		ReleaseDate: &now,
	}
	require.NoError(t, db.Create(song).Error)
	return song
}

// CreatePlaylist inserts a playlist owned by creatorID.
func CreatePlaylist(t *testing.T, db *gorm.DB, name string, creatorID uint, public bool) *models.Playlist {
	t.Helper()
	playlist := &models.Playlist{Name: name, CreatorID: creatorID, IsPublic: public}
	require.NoError(t, db.Create(playlist).Error)
	return playlist
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
