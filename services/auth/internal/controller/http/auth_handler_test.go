package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"postfeed/pkg/apperr"
	"postfeed/pkg/logger"
	"postfeed/pkg/validation"
	"postfeed/services/auth/internal/entity"
	"postfeed/services/auth/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockAuthUseCase is a mock implementation of AuthUseCase
type MockAuthUseCase struct {
	mock.Mock
}

func (m *MockAuthUseCase) Register(ctx context.Context, username, email, password string) (*entity.User, error) {
	args := m.Called(username, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockAuthUseCase) Login(ctx context.Context, username, email, password string) (*entity.User, string, error) {
	args := m.Called(username, email, password)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*entity.User), args.String(1), args.Error(2)
}

func (m *MockAuthUseCase) ForgotPassword(ctx context.Context, email string) error {
	return m.Called(email).Error(0)
}

func (m *MockAuthUseCase) ResetPassword(ctx context.Context, userID, token, newPassword string) error {
	return m.Called(userID, token, newPassword).Error(0)
}

var _ usecase.AuthUseCase = (*MockAuthUseCase)(nil)

func setupTestRouter(mockUseCase *MockAuthUseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	validation.Register()

	handler := NewAuthHandler(mockUseCase, 2*time.Hour, false, logger.New())
	router := gin.New()
	router.POST("/users/register", handler.Register)
	router.POST("/users/login", handler.Login)
	router.POST("/users/forget-password", handler.ForgotPassword)
	router.POST("/users/reset-password/:id/:token", handler.ResetPassword)
	return router
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestRegister_Success(t *testing.T) {
	mockUseCase := new(MockAuthUseCase)
	router := setupTestRouter(mockUseCase)

	mockUseCase.On("Register", "alice", "alice@example.com", "secret1").
		Return(&entity.User{ID: "user-1", Username: "alice", Email: "alice@example.com", Password: "hash"}, nil)

	w := postJSON(router, "/users/register", `{"username":"alice","email":"alice@example.com","password":"secret1"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.NotContains(t, w.Body.String(), "password")
	assert.NotContains(t, w.Body.String(), "hash")
	mockUseCase.AssertExpectations(t)
}

func TestRegister_ValidationMessages(t *testing.T) {
	mockUseCase := new(MockAuthUseCase)
	router := setupTestRouter(mockUseCase)

	cases := []struct {
		name string
		body string
		want string
	}{
		{"blank username", `{"username":"   ","email":"a@example.com","password":"secret1"}`, "All fields are required"},
		{"missing email", `{"username":"alice","password":"secret1"}`, "All fields are required"},
		{"bad email", `{"username":"alice","email":"nope","password":"secret1"}`, "Invalid email address"},
		{"short username", `{"username":"al","email":"a@example.com","password":"secret1"}`, "Username must be between 3 and 50 characters"},
		{"short password", `{"username":"alice","email":"a@example.com","password":"123"}`, "Password must be at least 6 characters"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := postJSON(router, "/users/register", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			var response map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, tc.want, response["error"])
		})
	}

	mockUseCase.AssertNotCalled(t, "Register", mock.Anything, mock.Anything, mock.Anything)
}

func TestRegister_Conflict(t *testing.T) {
	mockUseCase := new(MockAuthUseCase)
	router := setupTestRouter(mockUseCase)

	mockUseCase.On("Register", "alice", "alice@example.com", "secret1").Return(nil, apperr.Conflict("User already existed"))

	w := postJSON(router, "/users/register", `{"username":"alice","email":"alice@example.com","password":"secret1"}`)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"error":"User already existed"}`, w.Body.String())
}

func TestLogin_SetsCookie(t *testing.T) {
	mockUseCase := new(MockAuthUseCase)
	router := setupTestRouter(mockUseCase)

	mockUseCase.On("Login", "alice", "", "secret1").
		Return(&entity.User{ID: "user-1", Username: "alice"}, "signed-token", nil)

	w := postJSON(router, "/users/login", `{"username":"alice","password":"secret1"}`)

	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "signed-token", response["accessToken"])
	assert.Equal(t, "user-1", response["user"].(map[string]interface{})["id"])

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "accessToken", cookies[0].Name)
	assert.Equal(t, "signed-token", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, 7200, cookies[0].MaxAge)
}

func TestLogin_Errors(t *testing.T) {
	mockUseCase := new(MockAuthUseCase)
	router := setupTestRouter(mockUseCase)

	mockUseCase.On("Login", "alice", "", "wrong").Return(nil, "", apperr.Unauthorized("Incorrect Password"))
	mockUseCase.On("Login", "ghost", "", "secret1").Return(nil, "", apperr.NotFound("User does not exist"))

	w := postJSON(router, "/users/login", `{"username":"alice","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, w.Result().Cookies())

	w = postJSON(router, "/users/login", `{"username":"ghost","password":"secret1"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = postJSON(router, "/users/login", `{"username":"alice"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestForgotPassword(t *testing.T) {
	mockUseCase := new(MockAuthUseCase)
	router := setupTestRouter(mockUseCase)

	mockUseCase.On("ForgotPassword", "alice@example.com").Return(nil)
	mockUseCase.On("ForgotPassword", "ghost@example.com").Return(apperr.NotFound("User does not exist"))

	w := postJSON(router, "/users/forget-password", `{"email":"alice@example.com"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = postJSON(router, "/users/forget-password", `{"email":"ghost@example.com"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = postJSON(router, "/users/forget-password", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Email is required"}`, w.Body.String())
}

func TestResetPassword(t *testing.T) {
	mockUseCase := new(MockAuthUseCase)
	router := setupTestRouter(mockUseCase)

	mockUseCase.On("ResetPassword", "user-1", "tok", "brand-new").Return(nil)
	mockUseCase.On("ResetPassword", "user-1", "stale", "brand-new").Return(apperr.Validation("Invalid or expired token"))

	w := postJSON(router, "/users/reset-password/user-1/tok", `{"newPassword":"brand-new"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"New password created"}`, w.Body.String())

	w = postJSON(router, "/users/reset-password/user-1/stale", `{"newPassword":"brand-new"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(router, "/users/reset-password/user-1/tok", `{"newPassword":"123"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockUseCase.AssertNumberOfCalls(t, "ResetPassword", 2)
}
