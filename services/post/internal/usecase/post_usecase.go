package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"postfeed/pkg/apperr"
	"postfeed/pkg/cache"
	"postfeed/pkg/logger"
	"postfeed/services/post/internal/entity"
	"postfeed/services/post/internal/repo/persistent"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Uploader stores a file and returns a durable URL for it.
type Uploader interface {
	UploadFile(ctx context.Context, key string, file io.Reader, contentType string) (string, error)
}

// ImageRemover is implemented by uploaders that can also delete what they stored.
type ImageRemover interface {
	KeyFromURL(url string) (string, bool)
	DeleteFile(ctx context.Context, key string) error
}

// Image is an optional attachment for a new post.
type Image struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

type PostUseCase interface {
	ListFeed(ctx context.Context, page, limit int) (*entity.FeedPage, error)
	GetPost(ctx context.Context, postID string) (*entity.FeedItem, error)
	CreatePost(ctx context.Context, ownerID, content string, image *Image) (*entity.Post, error)
	UpdatePost(ctx context.Context, postID, userID, content string) (*entity.Post, error)
	DeletePost(ctx context.Context, postID, userID string) error
}

type postUseCase struct {
	postRepo    persistent.PostRepository
	uploader    Uploader
	redisClient *redis.Client
	cacheTTL    time.Duration
	logger      *logger.Logger
}

func NewPostUseCase(
	postRepo persistent.PostRepository,
	uploader Uploader,
	redisClient *redis.Client,
	cacheTTL time.Duration,
	logger *logger.Logger,
) PostUseCase {
	return &postUseCase{
		postRepo:    postRepo,
		uploader:    uploader,
		redisClient: redisClient,
		cacheTTL:    cacheTTL,
		logger:      logger,
	}
}

func (uc *postUseCase) ListFeed(ctx context.Context, page, limit int) (*entity.FeedPage, error) {
	page, limit = NormalizePagination(page, limit)

	cacheKey := ""
	if uc.redisClient != nil && uc.cacheTTL > 0 {
		cacheKey = uc.feedCacheKey(ctx, page, limit)
		if cached := uc.cachedPage(ctx, cacheKey); cached != nil {
			return cached, nil
		}
	}

	items, total, err := uc.postRepo.ListFeed(ctx, page, limit)
	if err != nil {
		uc.logger.Error("Failed to list feed page=%d limit=%d: %v", page, limit, err)
		return nil, apperr.NotFound("Posts not found")
	}

	result := &entity.FeedPage{
		TotalItems: total,
		Page:       page,
		TotalPages: TotalPages(total, limit),
		Limit:      limit,
		Items:      items,
	}

	if cacheKey != "" {
		uc.storePage(ctx, cacheKey, result)
	}
	return result, nil
}

func (uc *postUseCase) GetPost(ctx context.Context, postID string) (*entity.FeedItem, error) {
	if err := validateID(postID); err != nil {
		return nil, err
	}

	item, err := uc.postRepo.GetFeedItem(ctx, postID)
	if err != nil {
		return nil, notFoundOrInternal(err, "Failed to load post")
	}
	return item, nil
}

func (uc *postUseCase) CreatePost(ctx context.Context, ownerID, content string, image *Image) (*entity.Post, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperr.Validation("Content field is required")
	}

	post := &entity.Post{
		Content: content,
		OwnerID: ownerID,
	}

	if image != nil {
		imageURL, err := uc.uploadImage(ctx, ownerID, image)
		if err != nil {
			return nil, err
		}
		post.ImageURL = imageURL
	}

	if err := uc.postRepo.Create(ctx, post); err != nil {
		uc.logger.Error("Failed to create post for owner=%s: %v", ownerID, err)
		return nil, apperr.Internal("Post creation is failed please try again.", err)
	}

	uc.invalidateFeed(ctx)
	return post, nil
}

func (uc *postUseCase) UpdatePost(ctx context.Context, postID, userID, content string) (*entity.Post, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperr.Validation("content is required")
	}

	if _, err := uc.ownedPost(ctx, postID, userID, "only owner can edit their post"); err != nil {
		return nil, err
	}

	post, err := uc.postRepo.UpdateContent(ctx, postID, content)
	if err != nil {
		uc.logger.Error("Failed to update post %s: %v", postID, err)
		return nil, apperr.Internal("Failed to update post please try again", err)
	}

	uc.invalidateFeed(ctx)
	return post, nil
}

func (uc *postUseCase) DeletePost(ctx context.Context, postID, userID string) error {
	post, err := uc.ownedPost(ctx, postID, userID, "only owner can delete their post")
	if err != nil {
		return err
	}

	if err := uc.postRepo.Delete(ctx, postID); err != nil {
		return notFoundOrInternal(err, "Failed to delete post please try again")
	}

	uc.invalidateFeed(ctx)
	uc.removeImage(ctx, post.ImageURL)
	return nil
}

func (uc *postUseCase) ownedPost(ctx context.Context, postID, userID, forbidden string) (*entity.Post, error) {
	if err := validateID(postID); err != nil {
		return nil, err
	}

	post, err := uc.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, notFoundOrInternal(err, "Failed to load post")
	}

	if post.OwnerID != userID {
		return nil, apperr.Forbidden(forbidden)
	}
	return post, nil
}

func (uc *postUseCase) uploadImage(ctx context.Context, ownerID string, image *Image) (string, error) {
	if uc.uploader == nil {
		return "", apperr.Upload("Image storage is unavailable", nil)
	}

	fileKey := fmt.Sprintf("posts/%s/%s%s", ownerID, uuid.New().String(), strings.ToLower(filepath.Ext(image.Filename)))
	contentType := image.ContentType
	if contentType == "" {
		contentType = "image/jpeg"
	}

	imageURL, err := uc.uploader.UploadFile(ctx, fileKey, image.Body, contentType)
	if err != nil {
		uc.logger.Error("Failed to upload post image %s: %v", fileKey, err)
		return "", apperr.Upload("Failed to upload post image", err)
	}
	return imageURL, nil
}

// removeImage deletes a stored post image. The post is already gone, so failures are only logged.
func (uc *postUseCase) removeImage(ctx context.Context, imageURL string) {
	remover, ok := uc.uploader.(ImageRemover)
	if imageURL == "" || !ok {
		return
	}

	key, ok := remover.KeyFromURL(imageURL)
	if !ok {
		return
	}
	if err := remover.DeleteFile(ctx, key); err != nil {
		uc.logger.Warn("Failed to delete post image %s: %v", key, err)
	}
}

func (uc *postUseCase) feedCacheKey(ctx context.Context, page, limit int) string {
	version, err := cache.FeedVersion(ctx, uc.redisClient)
	if err != nil {
		uc.logger.Warn("Failed to read feed version: %v", err)
		return ""
	}
	return cache.FeedPageKey(version, page, limit)
}

func (uc *postUseCase) cachedPage(ctx context.Context, key string) *entity.FeedPage {
	if key == "" {
		return nil
	}

	data, err := cache.GetBytes(ctx, uc.redisClient, key)
	if err != nil {
		uc.logger.Warn("Failed to read feed cache %s: %v", key, err)
		return nil
	}
	if data == nil {
		return nil
	}

	var page entity.FeedPage
	if err := json.Unmarshal(data, &page); err != nil {
		uc.logger.Warn("Discarding corrupt feed cache entry %s: %v", key, err)
		return nil
	}
	return &page
}

func (uc *postUseCase) storePage(ctx context.Context, key string, page *entity.FeedPage) {
	data, err := json.Marshal(page)
	if err != nil {
		uc.logger.Warn("Failed to encode feed page: %v", err)
		return
	}
	if err := cache.SetBytes(ctx, uc.redisClient, key, data, uc.cacheTTL); err != nil {
		uc.logger.Warn("Failed to cache feed page %s: %v", key, err)
	}
}

func (uc *postUseCase) invalidateFeed(ctx context.Context) {
	if err := cache.BumpFeedVersion(ctx, uc.redisClient); err != nil {
		uc.logger.Warn("Failed to bump feed version: %v", err)
	}
}

func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperr.Validation("Invalid postId")
	}
	return nil
}

func notFoundOrInternal(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("Post not found")
	}
	return apperr.Internal(msg, err)
}
