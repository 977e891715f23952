package persistent

import (
	"context"

	"postfeed/pkg/models"
	"postfeed/services/post/internal/entity"
	"postfeed/services/post/internal/repo/persistent/feed"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostRepository interface {
	Create(ctx context.Context, post *entity.Post) error
	GetByID(ctx context.Context, id string) (*entity.Post, error)
	UpdateContent(ctx context.Context, id, content string) (*entity.Post, error)
	Delete(ctx context.Context, id string) error
	ListFeed(ctx context.Context, page, limit int) ([]entity.FeedItem, int64, error)
	GetFeedItem(ctx context.Context, id string) (*entity.FeedItem, error)
}

type postRepository struct {
	db      *gorm.DB
	planner *feed.Planner
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db, planner: feed.NewPlanner(db)}
}

func (r *postRepository) Create(ctx context.Context, post *entity.Post) error {
	postModel := ToPostModel(post)
	if postModel.ID == "" {
		postModel.ID = uuid.New().String()
	}

	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(postModel).Error; err != nil {
		return err
	}
	*post = *ToPostEntity(postModel)
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*entity.Post, error) {
	var postModel models.Post
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&postModel).Error; err != nil {
		return nil, err
	}
	return ToPostEntity(&postModel), nil
}

func (r *postRepository) UpdateContent(ctx context.Context, id, content string) (*entity.Post, error) {
	var postModel models.Post
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Post{}).Where("id = ?", id).Update("content", content).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).First(&postModel).Error
	})
	if err != nil {
		return nil, err
	}
	return ToPostEntity(&postModel), nil
}

// Delete removes the post together with its comments, its likes and the likes
// on its comments, all or nothing.
func (r *postRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var commentIDs []string
		if err := tx.Model(&models.Comment{}).Where("post_id = ?", id).Pluck("id", &commentIDs).Error; err != nil {
			return err
		}

		likes := tx.Where("post_id = ?", id)
		if len(commentIDs) > 0 {
			likes = tx.Where("post_id = ? OR comment_id IN ?", id, commentIDs)
		}
		if err := likes.Delete(&models.Like{}).Error; err != nil {
			return err
		}

		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ?", id).Delete(&models.Post{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *postRepository) ListFeed(ctx context.Context, page, limit int) ([]entity.FeedItem, int64, error) {
	return r.planner.Page(ctx, page, limit)
}

func (r *postRepository) GetFeedItem(ctx context.Context, id string) (*entity.FeedItem, error) {
	return r.planner.Item(ctx, id)
}
