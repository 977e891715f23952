package persistent

import (
	"postfeed/pkg/models"
	"postfeed/services/interaction/internal/entity"
)

func ToCommentEntity(m *models.Comment) *entity.Comment {
	if m == nil {
		return nil
	}

	return &entity.Comment{
		ID:        m.ID,
		Content:   m.Content,
		PostID:    m.PostID,
		OwnerID:   m.OwnerID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func ToCommentModel(e *entity.Comment) *models.Comment {
	if e == nil {
		return nil
	}

	return &models.Comment{
		ID:        e.ID,
		Content:   e.Content,
		PostID:    e.PostID,
		OwnerID:   e.OwnerID,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

// likeColumn maps a like target onto the column that references it.
func likeColumn(target entity.LikeTarget) string {
	if target == entity.TargetComment {
		return "comment_id"
	}
	return "post_id"
}

func newLikeModel(target entity.LikeTarget, targetID, userID string) *models.Like {
	like := &models.Like{LikedBy: userID}
	if target == entity.TargetComment {
		like.CommentID = &targetID
	} else {
		like.PostID = &targetID
	}
	return like
}
