// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents an account in the Pictive application.
type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Email       string    `gorm:"uniqueIndex;not null" json:"email"`
	Username    string    `gorm:"uniqueIndex;not null" json:"username"`
	DisplayName string    `gorm:"not null" json:"display_name"`
	Bio         string    `json:"bio"`
	AvatarURL   string    `json:"avatar_url"`
	Password    string    `gorm:"not null" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Posts []Post `gorm:"foreignKey:UserID" json:"posts,omitempty"`
}

// Profile is the public view of a user, annotated with aggregate counts and
// the viewer's follow state.
type Profile struct {
	ID             uint      `json:"id"`
	Username       string    `json:"username"`
	DisplayName    string    `json:"display_name"`
	Bio            string    `json:"bio"`
	AvatarURL      string    `json:"avatar_url"`
	PostCount      int64     `json:"post_count"`
	FollowerCount  int64     `json:"follower_count"`
	FollowingCount int64     `json:"following_count"`
	IsFollowing    bool      `json:"is_following"`
	CreatedAt      time.Time `json:"created_at"`
}
