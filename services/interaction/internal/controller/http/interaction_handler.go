package http

import (
	"net/http"

	"postfeed/pkg/apperr"
	"postfeed/pkg/logger"
	"postfeed/services/interaction/internal/usecase"

	"github.com/gin-gonic/gin"
)

type InteractionHandler struct {
	interactionUseCase usecase.InteractionUseCase
	logger             *logger.Logger
}

func NewInteractionHandler(interactionUseCase usecase.InteractionUseCase, logger *logger.Logger) *InteractionHandler {
	return &InteractionHandler{
		interactionUseCase: interactionUseCase,
		logger:             logger,
	}
}

type AddCommentRequest struct {
	Content string `json:"content" binding:"required,notblank"`
}

// AddComment godoc
// @Summary      Comment on a post
// @Description  Add a comment to an existing post
// @Tags         comments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        postId path string true "Post ID"
// @Param        request body AddCommentRequest true "Comment content"
// @Success      201  {object}  entity.Comment
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /comments/{postId} [post]
func (h *InteractionHandler) AddComment(c *gin.Context) {
	postID := c.Param("postId")
	userID := c.GetString("user_id")

	var req AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Validation("Content is required"))
		return
	}

	comment, err := h.interactionUseCase.AddComment(c.Request.Context(), userID, postID, req.Content)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// DeleteComment godoc
// @Summary      Delete a comment
// @Description  Delete a comment and its likes. Only the comment owner can delete it.
// @Tags         comments
// @Produce      json
// @Security     BearerAuth
// @Param        commentId path string true "Comment ID"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /comments/{commentId} [delete]
func (h *InteractionHandler) DeleteComment(c *gin.Context) {
	commentID := c.Param("commentId")
	userID := c.GetString("user_id")

	if err := h.interactionUseCase.DeleteComment(c.Request.Context(), userID, commentID); err != nil {
		apperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}

// TogglePostLike godoc
// @Summary      Like a post
// @Description  Like a post (toggle - if already liked, removes like)
// @Tags         likes
// @Produce      json
// @Security     BearerAuth
// @Param        postId path string true "Post ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /likes/toggle/p/{postId} [post]
func (h *InteractionHandler) TogglePostLike(c *gin.Context) {
	liked, err := h.interactionUseCase.TogglePostLike(c.Request.Context(), c.GetString("user_id"), c.Param("postId"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	if liked {
		c.JSON(http.StatusOK, gin.H{"message": "Post liked", "liked": true})
	} else {
		c.JSON(http.StatusOK, gin.H{"message": "Post unliked", "liked": false})
	}
}

// ToggleCommentLike godoc
// @Summary      Like a comment
// @Description  Like a comment (toggle - if already liked, removes like)
// @Tags         likes
// @Produce      json
// @Security     BearerAuth
// @Param        commentId path string true "Comment ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /likes/toggle/c/{commentId} [post]
func (h *InteractionHandler) ToggleCommentLike(c *gin.Context) {
	liked, err := h.interactionUseCase.ToggleCommentLike(c.Request.Context(), c.GetString("user_id"), c.Param("commentId"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	if liked {
		c.JSON(http.StatusOK, gin.H{"message": "Comment liked", "liked": true})
	} else {
		c.JSON(http.StatusOK, gin.H{"message": "Comment unliked", "liked": false})
	}
}
