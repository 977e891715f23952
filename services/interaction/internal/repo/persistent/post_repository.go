package persistent

import (
	"context"

	"gorm.io/gorm"
)

// PostRepository answers existence questions about posts owned by the post service.
type PostRepository interface {
	PostExists(ctx context.Context, postID string) (bool, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) PostExists(ctx context.Context, postID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Table("posts").Where("id = ? AND deleted_at IS NULL", postID).Count(&count).Error
	return count > 0, err
}
