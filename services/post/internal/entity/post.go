package entity

import "time"

type Post struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	ImageURL  string    `json:"imageUrl"`
	OwnerID   string    `json:"owner"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserSummary is the only user projection that leaves the store.
type UserSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type FeedComment struct {
	ID           string      `json:"id"`
	Content      string      `json:"content"`
	OwnerID      string      `json:"owner"`
	OwnerDetails UserSummary `json:"ownerDetails"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

type FeedLike struct {
	ID             string      `json:"id"`
	PostID         string      `json:"post"`
	LikedBy        string      `json:"likedBy"`
	LikedByDetails UserSummary `json:"likedByDetails"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

type FeedItem struct {
	ID           string        `json:"id"`
	Content      string        `json:"content"`
	ImageURL     string        `json:"imageUrl"`
	OwnerID      string        `json:"owner"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
	OwnerDetails UserSummary   `json:"ownerDetails"`
	Comments     []FeedComment `json:"comments"`
	Likes        []FeedLike    `json:"likes"`
}

type FeedPage struct {
	TotalItems int64      `json:"totalItems"`
	Page       int        `json:"page"`
	TotalPages int        `json:"totalPages"`
	Limit      int        `json:"limit"`
	Items      []FeedItem `json:"items"`
}
