package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Like targets exactly one of PostID or CommentID.
type Like struct {
	ID        string    `gorm:"type:uuid;primary_key" json:"id"`
	PostID    *string   `gorm:"type:uuid;uniqueIndex:idx_likes_post_user" json:"post_id,omitempty"`
	CommentID *string   `gorm:"type:uuid;uniqueIndex:idx_likes_comment_user" json:"comment_id,omitempty"`
	LikedBy   string    `gorm:"type:uuid;not null;index;uniqueIndex:idx_likes_post_user;uniqueIndex:idx_likes_comment_user" json:"liked_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User User `gorm:"foreignKey:LikedBy" json:"-"`
}

func (Like) TableName() string {
	return "likes"
}

func (l *Like) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	return nil
}
