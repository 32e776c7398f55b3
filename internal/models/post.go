package models

import "time"

// Post represents a content item in the Pictive application.
//
// LikeCount and CommentCount are denormalized columns maintained in the same
// database transaction as the like/comment row mutation that changes them.
// LikeCount always equals the cardinality of the post's likes set;
// CommentCount equals the total number of comments and replies on the post.
type Post struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Content      string    `gorm:"type:text;not null" json:"content"`
	ImageURL     string    `json:"image_url"`
	UserID       uint      `gorm:"not null;index" json:"user_id"`
	User         User      `gorm:"foreignKey:UserID" json:"user"`
	LikeCount    int       `gorm:"not null;default:0" json:"like_count"`
	CommentCount int       `gorm:"not null;default:0" json:"comment_count"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Liked indicates whether the requesting user liked this post (computed).
	Liked bool `gorm:"-" json:"liked"`
}

// PostPage is a paginated, newest-first slice of posts.
type PostPage struct {
	Posts      []*Post `json:"posts"`
	Total      int64   `json:"total"`
	Page       int     `json:"page"`
	TotalPages int     `json:"total_pages"`
}
