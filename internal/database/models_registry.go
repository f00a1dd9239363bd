package database

import "melodia/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models,
// parents before the join rows that reference them.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Artist{},
		&models.Album{},
		&models.Song{},
		&models.Playlist{},
		&models.UserLikedSong{},
		&models.UserFollowedArtist{},
		&models.UserFollowedPlaylist{},
		&models.PlaylistCollaborator{},
		&models.PlaylistSong{},
	}
}
