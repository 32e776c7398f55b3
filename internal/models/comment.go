package models

import "time"

// Comment represents a comment on a post. A comment with a ParentID is a
// reply; the data model allows arbitrary nesting but the API serves one
// level (top-level comments plus their direct replies).
//
// ReplyCount is a denormalized column counting the comment's direct replies,
// maintained transactionally with reply creation and deletion.
type Comment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	PostID     uint      `gorm:"not null;index" json:"post_id"`
	ParentID   *uint     `gorm:"index" json:"parent_id,omitempty"`
	ReplyCount int       `gorm:"not null;default:0" json:"reply_count"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	User    User      `gorm:"foreignKey:UserID" json:"user"`
	Post    Post      `gorm:"foreignKey:PostID" json:"post,omitempty"`
	Parent  *Comment  `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
	Replies []Comment `gorm:"foreignKey:ParentID" json:"replies,omitempty"`
}
