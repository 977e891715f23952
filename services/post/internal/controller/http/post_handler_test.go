package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"postfeed/pkg/apperr"
	"postfeed/pkg/logger"
	"postfeed/pkg/validation"
	"postfeed/services/post/internal/entity"
	"postfeed/services/post/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPostUseCase is a mock implementation of PostUseCase
type MockPostUseCase struct {
	mock.Mock
}

func (m *MockPostUseCase) ListFeed(ctx context.Context, page, limit int) (*entity.FeedPage, error) {
	args := m.Called(page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.FeedPage), args.Error(1)
}

func (m *MockPostUseCase) GetPost(ctx context.Context, postID string) (*entity.FeedItem, error) {
	args := m.Called(postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.FeedItem), args.Error(1)
}

func (m *MockPostUseCase) CreatePost(ctx context.Context, ownerID, content string, image *usecase.Image) (*entity.Post, error) {
	var body string
	if image != nil {
		data, _ := io.ReadAll(image.Body)
		body = image.Filename + ":" + string(data)
	}
	args := m.Called(ownerID, content, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Post), args.Error(1)
}

func (m *MockPostUseCase) UpdatePost(ctx context.Context, postID, userID, content string) (*entity.Post, error) {
	args := m.Called(postID, userID, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Post), args.Error(1)
}

func (m *MockPostUseCase) DeletePost(ctx context.Context, postID, userID string) error {
	args := m.Called(postID, userID)
	return args.Error(0)
}

var _ usecase.PostUseCase = (*MockPostUseCase)(nil)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	validation.Register()
	return gin.New()
}

func withUser(userID string, next gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		next(c)
	}
}

func TestListFeed_PassesNormalizedPagination(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.GET("/posts", handler.ListFeed)

	mockUseCase.On("ListFeed", 1, 10).Return(&entity.FeedPage{
		TotalItems: 1,
		Page:       1,
		TotalPages: 1,
		Limit:      10,
		Items: []entity.FeedItem{{
			ID:       "post-1",
			Content:  "hi",
			Comments: []entity.FeedComment{},
			Likes:    []entity.FeedLike{},
		}},
	}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/posts?page=0&limit=-5", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, float64(1), response["totalPages"])
	items := response["items"].([]interface{})
	require.Len(t, items, 1)
	item := items[0].(map[string]interface{})
	assert.Equal(t, []interface{}{}, item["comments"])
	assert.Equal(t, []interface{}{}, item["likes"])

	mockUseCase.AssertExpectations(t)
}

func TestListFeed_Error(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.GET("/posts", handler.ListFeed)

	mockUseCase.On("ListFeed", 2, 5).Return(nil, apperr.NotFound("Posts not found"))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/posts?page=2&limit=5", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Posts not found"}`, w.Body.String())
}

func TestGetPost_NotFound(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.GET("/posts/:id", handler.GetPost)

	mockUseCase.On("GetPost", "missing").Return(nil, apperr.NotFound("Post not found"))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/posts/missing", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	mockUseCase.AssertExpectations(t)
}

func multipartBody(t *testing.T, content string, withImage bool) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("content", content))
	if withImage {
		part, err := writer.CreateFormFile("postImage", "cat.png")
		require.NoError(t, err)
		_, err = part.Write([]byte("pixels"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestCreatePost_Success(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.POST("/posts", withUser("user-123", handler.CreatePost))

	mockUseCase.On("CreatePost", "user-123", "hello", "cat.png:pixels").
		Return(&entity.Post{ID: "post-1", Content: "hello", OwnerID: "user-123", ImageURL: "http://storage/cat.png"}, nil)

	body, contentType := multipartBody(t, "hello", true)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/posts", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "post-1", response["id"])
	assert.Equal(t, "http://storage/cat.png", response["imageUrl"])
	mockUseCase.AssertExpectations(t)
}

func TestCreatePost_WithoutImage(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.POST("/posts", withUser("user-123", handler.CreatePost))

	mockUseCase.On("CreatePost", "user-123", "text only", "").
		Return(&entity.Post{ID: "post-2", Content: "text only", OwnerID: "user-123"}, nil)

	body, contentType := multipartBody(t, "text only", false)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/posts", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockUseCase.AssertExpectations(t)
}

func TestCreatePost_BlankContent(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.POST("/posts", withUser("user-123", handler.CreatePost))

	body, contentType := multipartBody(t, "   ", false)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/posts", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Content field is required"}`, w.Body.String())
	mockUseCase.AssertNotCalled(t, "CreatePost", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreatePost_UploadFailure(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.POST("/posts", withUser("user-123", handler.CreatePost))

	mockUseCase.On("CreatePost", "user-123", "hello", "cat.png:pixels").
		Return(nil, apperr.Upload("Failed to upload post image", nil))

	body, contentType := multipartBody(t, "hello", true)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/posts", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestUpdatePost_Success(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.PATCH("/posts/:id", withUser("owner-123", handler.UpdatePost))

	mockUseCase.On("UpdatePost", "post-123", "owner-123", "New content").
		Return(&entity.Post{ID: "post-123", OwnerID: "owner-123", Content: "New content"}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PATCH", "/posts/post-123", bytes.NewBufferString(`{"content":"New content"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockUseCase.AssertExpectations(t)
}

func TestUpdatePost_Forbidden(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.PATCH("/posts/:id", withUser("intruder", handler.UpdatePost))

	mockUseCase.On("UpdatePost", "post-123", "intruder", "mine now").
		Return(nil, apperr.Forbidden("only owner can edit their post"))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PATCH", "/posts/post-123", bytes.NewBufferString(`{"content":"mine now"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"only owner can edit their post"}`, w.Body.String())
}

func TestUpdatePost_MissingContent(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.PATCH("/posts/:id", withUser("owner-123", handler.UpdatePost))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PATCH", "/posts/post-123", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeletePost_Success(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.DELETE("/posts/:id", withUser("owner-123", handler.DeletePost))

	mockUseCase.On("DeletePost", "post-123", "owner-123").Return(nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/posts/post-123", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockUseCase.AssertExpectations(t)
}

func TestDeletePost_NotFound(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.DELETE("/posts/:id", withUser("owner-123", handler.DeletePost))

	mockUseCase.On("DeletePost", "post-404", "owner-123").Return(apperr.NotFound("Post not found"))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/posts/post-404", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	mockUseCase.AssertExpectations(t)
}

func TestNewPostHandler(t *testing.T) {
	handler := NewPostHandler(new(MockPostUseCase), logger.New())
	assert.NotNil(t, handler)
}
