package http

import (
	"net/http"

	"postfeed/pkg/apperr"
	"postfeed/pkg/logger"
	"postfeed/services/post/internal/usecase"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	postUseCase usecase.PostUseCase
	logger      *logger.Logger
}

func NewPostHandler(postUseCase usecase.PostUseCase, logger *logger.Logger) *PostHandler {
	return &PostHandler{
		postUseCase: postUseCase,
		logger:      logger,
	}
}

type CreatePostRequest struct {
	Content string `form:"content" binding:"required,notblank"`
}

type UpdatePostRequest struct {
	Content string `json:"content" binding:"required,notblank"`
}

// ListFeed godoc
// @Summary      List feed
// @Description  Paginated feed of posts, newest first, each with owner, comments and likes
// @Tags         posts
// @Produce      json
// @Param        page query int false "Page number (default 1)"
// @Param        limit query int false "Page size (default 10, max 100)"
// @Success      200  {object}  entity.FeedPage
// @Failure      404  {object}  map[string]string
// @Router       /posts [get]
func (h *PostHandler) ListFeed(c *gin.Context) {
	page, limit := usecase.ParsePagination(c.Query("page"), c.Query("limit"))

	result, err := h.postUseCase.ListFeed(c.Request.Context(), page, limit)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetPost godoc
// @Summary      Get post by ID
// @Description  Single post with owner, comments and likes
// @Tags         posts
// @Produce      json
// @Param        id path string true "Post ID"
// @Success      200  {object}  entity.FeedItem
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /posts/{id} [get]
func (h *PostHandler) GetPost(c *gin.Context) {
	item, err := h.postUseCase.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// CreatePost godoc
// @Summary      Create a new post
// @Description  Create a post with text content and an optional image
// @Tags         posts
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        content formData string true "Post content"
// @Param        postImage formData file false "Post image"
// @Success      201  {object}  entity.Post
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /posts [post]
func (h *PostHandler) CreatePost(c *gin.Context) {
	userID := c.GetString("user_id")

	var req CreatePostRequest
	if err := c.ShouldBind(&req); err != nil {
		apperr.Respond(c, apperr.Validation("Content field is required"))
		return
	}

	var image *usecase.Image
	if file, err := c.FormFile("postImage"); err == nil {
		src, err := file.Open()
		if err != nil {
			h.logger.Error("Failed to open uploaded image: %v", err)
			apperr.Respond(c, apperr.Validation("Failed to process file"))
			return
		}
		defer src.Close()

		image = &usecase.Image{
			Filename:    file.Filename,
			ContentType: file.Header.Get("Content-Type"),
			Body:        src,
		}
	}

	post, err := h.postUseCase.CreatePost(c.Request.Context(), userID, req.Content, image)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, post)
}

// UpdatePost godoc
// @Summary      Update post
// @Description  Replace the content of a post. Only the owner can update it.
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Post ID"
// @Param        request body UpdatePostRequest true "New content"
// @Success      200  {object}  entity.Post
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /posts/{id} [patch]
func (h *PostHandler) UpdatePost(c *gin.Context) {
	postID := c.Param("id")
	userID := c.GetString("user_id")

	var req UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Validation("content is required"))
		return
	}

	post, err := h.postUseCase.UpdatePost(c.Request.Context(), postID, userID, req.Content)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

// DeletePost godoc
// @Summary      Delete post
// @Description  Delete a post with its comments and likes. Only the owner can delete it.
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Post ID"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /posts/{id} [delete]
func (h *PostHandler) DeletePost(c *gin.Context) {
	postID := c.Param("id")
	userID := c.GetString("user_id")

	if err := h.postUseCase.DeletePost(c.Request.Context(), postID, userID); err != nil {
		apperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}
