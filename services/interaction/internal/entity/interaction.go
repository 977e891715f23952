package entity

import "time"

type Comment struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	PostID    string    `json:"post"`
	OwnerID   string    `json:"owner"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type LikeTarget string

const (
	TargetPost    LikeTarget = "post"
	TargetComment LikeTarget = "comment"
)
