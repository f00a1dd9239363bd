package models

import "time"

// Playlist is owned by its creator. Collaborators may add and remove songs;
// every other mutation is reserved to the creator.
type Playlist struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"size:200;not null;index" json:"name"`
	Description   *string   `gorm:"type:text" json:"description"`
	CoverImage    *string   `json:"coverImage"`
	IsPublic      bool      `gorm:"not null" json:"isPublic"`
	CreatorID     uint      `gorm:"not null;index" json:"creatorId"`
	Creator       *User     `gorm:"foreignKey:CreatorID;constraint:OnDelete:CASCADE" json:"-"`
	FollowerCount int       `gorm:"not null;default:0" json:"followerCount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`

	// Populated on detail reads.
	CreatorProfile *PublicUser  `gorm:"-" json:"creator,omitempty"`
	Songs          []Song       `gorm:"-" json:"songs,omitempty"`
	Collaborators  []PublicUser `gorm:"-" json:"collaborators,omitempty"`
}
