package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Post struct {
	ID        string         `gorm:"type:uuid;primary_key" json:"id"`
	Content   string         `gorm:"type:text;not null" json:"content"`
	ImageURL  string         `gorm:"type:varchar(500)" json:"image_url"`
	OwnerID   string         `gorm:"type:uuid;not null;index" json:"owner_id"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Owner User `gorm:"foreignKey:OwnerID" json:"-"`
}

func (Post) TableName() string {
	return "posts"
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

type Comment struct {
	ID        string         `gorm:"type:uuid;primary_key" json:"id"`
	Content   string         `gorm:"type:text;not null" json:"content"`
	PostID    string         `gorm:"type:uuid;not null;index" json:"post_id"`
	OwnerID   string         `gorm:"type:uuid;not null;index" json:"owner_id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Post  Post `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	Owner User `gorm:"foreignKey:OwnerID" json:"-"`
}

func (Comment) TableName() string {
	return "comments"
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}
