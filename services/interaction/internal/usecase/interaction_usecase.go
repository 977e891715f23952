package usecase

import (
	"context"
	"errors"
	"strings"

	"postfeed/pkg/apperr"
	"postfeed/pkg/cache"
	"postfeed/pkg/logger"
	"postfeed/services/interaction/internal/entity"
	"postfeed/services/interaction/internal/repo/persistent"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type InteractionUseCase interface {
	AddComment(ctx context.Context, userID, postID, content string) (*entity.Comment, error)
	DeleteComment(ctx context.Context, userID, commentID string) error
	TogglePostLike(ctx context.Context, userID, postID string) (bool, error)
	ToggleCommentLike(ctx context.Context, userID, commentID string) (bool, error)
}

type interactionUseCase struct {
	interactionRepo persistent.InteractionRepository
	postRepo        persistent.PostRepository
	redisClient     *redis.Client
	logger          *logger.Logger
}

func NewInteractionUseCase(
	interactionRepo persistent.InteractionRepository,
	postRepo persistent.PostRepository,
	redisClient *redis.Client,
	logger *logger.Logger,
) InteractionUseCase {
	return &interactionUseCase{
		interactionRepo: interactionRepo,
		postRepo:        postRepo,
		redisClient:     redisClient,
		logger:          logger,
	}
}

func (uc *interactionUseCase) AddComment(ctx context.Context, userID, postID, content string) (*entity.Comment, error) {
	if !validID(postID) {
		return nil, apperr.Validation("Invalid post id")
	}
	if strings.TrimSpace(content) == "" {
		return nil, apperr.Validation("Content is required")
	}

	if err := uc.requirePost(ctx, postID); err != nil {
		return nil, err
	}

	comment := &entity.Comment{
		Content: content,
		PostID:  postID,
		OwnerID: userID,
	}
	if err := uc.interactionRepo.CreateComment(ctx, comment); err != nil {
		uc.logger.Error("Failed to create comment on post=%s: %v", postID, err)
		return nil, apperr.Internal("Failed to add comment please try again", err)
	}

	uc.invalidateFeed(ctx)
	return comment, nil
}

func (uc *interactionUseCase) DeleteComment(ctx context.Context, userID, commentID string) error {
	comment, err := uc.requireComment(ctx, commentID)
	if err != nil {
		return err
	}

	if comment.OwnerID != userID {
		return apperr.Forbidden("only owner can delete their comment")
	}

	if err := uc.interactionRepo.DeleteComment(ctx, commentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Comment not found")
		}
		uc.logger.Error("Failed to delete comment %s: %v", commentID, err)
		return apperr.Internal("Failed to delete comment please try again", err)
	}

	uc.invalidateFeed(ctx)
	return nil
}

func (uc *interactionUseCase) TogglePostLike(ctx context.Context, userID, postID string) (bool, error) {
	if !validID(postID) {
		return false, apperr.Validation("Invalid post id")
	}
	if err := uc.requirePost(ctx, postID); err != nil {
		return false, err
	}

	return uc.toggle(ctx, entity.TargetPost, postID, userID)
}

func (uc *interactionUseCase) ToggleCommentLike(ctx context.Context, userID, commentID string) (bool, error) {
	if _, err := uc.requireComment(ctx, commentID); err != nil {
		return false, err
	}

	return uc.toggle(ctx, entity.TargetComment, commentID, userID)
}

func (uc *interactionUseCase) toggle(ctx context.Context, target entity.LikeTarget, targetID, userID string) (bool, error) {
	liked, err := uc.interactionRepo.ToggleLike(ctx, target, targetID, userID)
	if err != nil {
		uc.logger.Error("Failed to toggle %s like target=%s user=%s: %v", target, targetID, userID, err)
		return false, apperr.Internal("Failed to toggle like please try again", err)
	}

	uc.invalidateFeed(ctx)
	return liked, nil
}

func (uc *interactionUseCase) requirePost(ctx context.Context, postID string) error {
	exists, err := uc.postRepo.PostExists(ctx, postID)
	if err != nil {
		uc.logger.Error("Failed to look up post %s: %v", postID, err)
		return apperr.Internal("Failed to load post", err)
	}
	if !exists {
		return apperr.NotFound("Post not found")
	}
	return nil
}

func (uc *interactionUseCase) requireComment(ctx context.Context, commentID string) (*entity.Comment, error) {
	if !validID(commentID) {
		return nil, apperr.Validation("Invalid comment id")
	}

	comment, err := uc.interactionRepo.GetComment(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Comment not found")
		}
		uc.logger.Error("Failed to look up comment %s: %v", commentID, err)
		return nil, apperr.Internal("Failed to load comment", err)
	}
	return comment, nil
}

// Comments and likes are part of every feed item, so any change here stales
// the post service's cached pages.
func (uc *interactionUseCase) invalidateFeed(ctx context.Context) {
	if err := cache.BumpFeedVersion(ctx, uc.redisClient); err != nil {
		uc.logger.Warn("Failed to bump feed version: %v", err)
	}
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
