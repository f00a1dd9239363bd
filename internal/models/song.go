package models

import "time"

// Song belongs to one artist and optionally to one album of that same artist.
type Song struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"size:200;not null;index" json:"title"`
	ArtistID    uint       `gorm:"not null;index" json:"artistId"`
	Artist      *Artist    `gorm:"foreignKey:ArtistID;constraint:OnDelete:CASCADE" json:"artist,omitempty"`
	AlbumID     *uint      `gorm:"index" json:"albumId"`
	Album       *Album     `gorm:"foreignKey:AlbumID;constraint:OnDelete:SET NULL" json:"album,omitempty"`
	Duration    int        `gorm:"not null" json:"duration"`
	AudioURL    string     `gorm:"not null" json:"audioUrl"`
	CoverImage  *string    `json:"coverImage"`
	Genre       *string    `gorm:"size:60;index" json:"genre"`
	ReleaseDate *time.Time `json:"releaseDate"`
	Lyrics      *string    `gorm:"type:text" json:"lyrics"`
	IsExplicit  bool       `gorm:"not null;default:false" json:"isExplicit"`
	PlayCount   int        `gorm:"not null;default:0;index" json:"playCount"`
	LikeCount   int        `gorm:"not null;default:0" json:"likeCount"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
