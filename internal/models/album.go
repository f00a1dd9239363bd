package models

import "time"

// Album belongs to exactly one artist. Songs join an album through Song.AlbumID.
type Album struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"size:200;not null;index" json:"title"`
	ArtistID    uint       `gorm:"not null;index" json:"artistId"`
	Artist      *Artist    `gorm:"foreignKey:ArtistID;constraint:OnDelete:CASCADE" json:"artist,omitempty"`
	ReleaseDate *time.Time `json:"releaseDate"`
	CoverImage  *string    `json:"coverImage"`
	Genre       *string    `gorm:"size:60;index" json:"genre"`
	Description *string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`

	Songs []Song `gorm:"-" json:"songs,omitempty"`
}
