package models

import "time"

// UserLikedSong records a like; songs.like_count mirrors these rows.
type UserLikedSong struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"userId"`
	SongID    uint      `gorm:"primaryKey;autoIncrement:false;index" json:"songId"`
	CreatedAt time.Time `json:"createdAt"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Song *Song `gorm:"foreignKey:SongID;constraint:OnDelete:CASCADE" json:"-"`
}

// UserFollowedArtist records a follow; artists.follower_count mirrors these rows.
type UserFollowedArtist struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"userId"`
	ArtistID  uint      `gorm:"primaryKey;autoIncrement:false;index" json:"artistId"`
	CreatedAt time.Time `json:"createdAt"`

	User   *User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Artist *Artist `gorm:"foreignKey:ArtistID;constraint:OnDelete:CASCADE" json:"-"`
}

// UserFollowedPlaylist records a follow; playlists.follower_count mirrors these rows.
type UserFollowedPlaylist struct {
	UserID     uint      `gorm:"primaryKey;autoIncrement:false" json:"userId"`
	PlaylistID uint      `gorm:"primaryKey;autoIncrement:false;index" json:"playlistId"`
	CreatedAt  time.Time `json:"createdAt"`

	User     *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Playlist *Playlist `gorm:"foreignKey:PlaylistID;constraint:OnDelete:CASCADE" json:"-"`
}

// PlaylistCollaborator grants a user song add/remove rights on a playlist.
type PlaylistCollaborator struct {
	PlaylistID uint      `gorm:"primaryKey;autoIncrement:false" json:"playlistId"`
	UserID     uint      `gorm:"primaryKey;autoIncrement:false;index" json:"userId"`
	CreatedAt  time.Time `json:"createdAt"`

	Playlist *Playlist `gorm:"foreignKey:PlaylistID;constraint:OnDelete:CASCADE" json:"-"`
	User     *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// PlaylistSong is the ordered membership of a song in a playlist.
type PlaylistSong struct {
	PlaylistID uint      `gorm:"primaryKey;autoIncrement:false" json:"playlistId"`
	SongID     uint      `gorm:"primaryKey;autoIncrement:false;index" json:"songId"`
	Position   int       `gorm:"not null;default:0" json:"position"`
	AddedAt    time.Time `gorm:"autoCreateTime" json:"addedAt"`

	Playlist *Playlist `gorm:"foreignKey:PlaylistID;constraint:OnDelete:CASCADE" json:"-"`
	Song     *Song     `gorm:"foreignKey:SongID;constraint:OnDelete:CASCADE" json:"-"`
}
