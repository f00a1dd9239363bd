// Package models contains data structures for the application's domain models.
package models

import "time"

// User is an account that can own playlists, like songs and follow artists or
// playlists. Admins manage the catalog.
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Email          string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Username       *string   `gorm:"size:30;uniqueIndex" json:"username"`
	Password       string    `gorm:"not null" json:"-"`
	FullName       *string   `gorm:"size:120" json:"fullName"`
	ProfilePicture *string   `json:"profilePicture"`
	Bio            *string   `gorm:"type:text" json:"bio"`
	IsAdmin        bool      `gorm:"not null;default:false" json:"isAdmin"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// PublicUser is the trimmed projection of a user shown to other users.
type PublicUser struct {
	ID             uint    `json:"id"`
	Username       *string `json:"username"`
	FullName       *string `json:"fullName"`
	ProfilePicture *string `json:"profilePicture"`
}

// Public returns the projection of u that is safe to show to other users.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:             u.ID,
		Username:       u.Username,
		FullName:       u.FullName,
		ProfilePicture: u.ProfilePicture,
	}
}
