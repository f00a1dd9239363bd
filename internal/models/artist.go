package models

import "time"

// Artist owns songs and albums. FollowerCount mirrors the number of
// UserFollowedArtist rows and is only changed together with them.
type Artist struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	Name               string     `gorm:"size:200;not null;index" json:"name"`
	Bio                *string    `gorm:"type:text" json:"bio"`
	DateOfBirth        *time.Time `json:"dateOfBirth"`
	Image              *string    `json:"image"`
	VerificationStatus bool       `gorm:"not null;default:false" json:"verificationStatus"`
	FollowerCount      int        `gorm:"not null;default:0" json:"followerCount"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`

	// Computed on detail reads.
	SongCount  int64 `gorm:"-" json:"songCount,omitempty"`
	AlbumCount int64 `gorm:"-" json:"albumCount,omitempty"`
}
