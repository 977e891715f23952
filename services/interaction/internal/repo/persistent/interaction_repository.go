package persistent

import (
	"context"

	"postfeed/pkg/models"
	"postfeed/services/interaction/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InteractionRepository interface {
	CreateComment(ctx context.Context, comment *entity.Comment) error
	GetComment(ctx context.Context, id string) (*entity.Comment, error)
	DeleteComment(ctx context.Context, id string) error
	ToggleLike(ctx context.Context, target entity.LikeTarget, targetID, userID string) (bool, error)
	IsLiked(ctx context.Context, target entity.LikeTarget, targetID, userID string) (bool, error)
}

type interactionRepository struct {
	db *gorm.DB
}

func NewInteractionRepository(db *gorm.DB) InteractionRepository {
	return &interactionRepository{db: db}
}

func (r *interactionRepository) CreateComment(ctx context.Context, comment *entity.Comment) error {
	commentModel := ToCommentModel(comment)
	if commentModel.ID == "" {
		commentModel.ID = uuid.New().String()
	}

	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(commentModel).Error; err != nil {
		return err
	}
	*comment = *ToCommentEntity(commentModel)
	return nil
}

func (r *interactionRepository) GetComment(ctx context.Context, id string) (*entity.Comment, error) {
	var commentModel models.Comment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&commentModel).Error; err != nil {
		return nil, err
	}
	return ToCommentEntity(&commentModel), nil
}

// DeleteComment removes the comment and the likes on it in one transaction.
func (r *interactionRepository) DeleteComment(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("comment_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ?", id).Delete(&models.Comment{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// ToggleLike removes the user's like on the target if present, otherwise adds
// one. It reports whether the target is liked afterwards.
func (r *interactionRepository) ToggleLike(ctx context.Context, target entity.LikeTarget, targetID, userID string) (bool, error) {
	column := likeColumn(target)
	liked := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where(column+" = ? AND liked_by = ?", targetID, userID).Delete(&models.Like{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			return nil
		}

		if err := tx.Omit(clause.Associations).Create(newLikeModel(target, targetID, userID)).Error; err != nil {
			return err
		}
		liked = true
		return nil
	})
	if err != nil {
		// A concurrent toggle may have inserted the same like first; the unique
		// index rejected ours, so the target is liked.
		if exists, checkErr := r.IsLiked(ctx, target, targetID, userID); checkErr == nil && exists {
			return true, nil
		}
		return false, err
	}
	return liked, nil
}

func (r *interactionRepository) IsLiked(ctx context.Context, target entity.LikeTarget, targetID, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where(likeColumn(target)+" = ? AND liked_by = ?", targetID, userID).
		Count(&count).Error
	return count > 0, err
}
