package http

import (
	"errors"
	"net/http"
	"time"

	"postfeed/pkg/apperr"
	"postfeed/pkg/logger"
	"postfeed/pkg/middleware"
	"postfeed/services/auth/internal/entity"
	"postfeed/services/auth/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type AuthHandler struct {
	authUseCase  usecase.AuthUseCase
	cookieMaxAge time.Duration
	secureCookie bool
	logger       *logger.Logger
}

// NewAuthHandler builds the handler. cookieMaxAge should match the access token TTL.
func NewAuthHandler(authUseCase usecase.AuthUseCase, cookieMaxAge time.Duration, secureCookie bool, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authUseCase:  authUseCase,
		cookieMaxAge: cookieMaxAge,
		secureCookie: secureCookie,
		logger:       logger,
	}
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,notblank,min=3,max=50"`
	Email    string `json:"email" binding:"required,notblank,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email" binding:"omitempty,email"`
	Password string `json:"password" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,notblank"`
}

type ResetPasswordRequest struct {
	NewPassword string `json:"newPassword" binding:"required,min=6"`
}

type LoginResponse struct {
	User        *entity.User `json:"user"`
	AccessToken string       `json:"accessToken"`
}

// Register godoc
// @Summary      Register a new user
// @Description  Register a new user with username, email and password
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Registration data"
// @Success      201  {object}  entity.User
// @Failure      400  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /users/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Validation(bindingMessage(err)))
		return
	}

	user, err := h.authUseCase.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// Login godoc
// @Summary      Login user
// @Description  Authenticate with username or email and password. The access token is returned and set as an httpOnly cookie.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200  {object}  LoginResponse
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /users/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Validation(bindingMessage(err)))
		return
	}

	user, token, err := h.authUseCase.Login(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessTokenCookie, token, int(h.cookieMaxAge.Seconds()), "/", "", h.secureCookie, true)

	c.JSON(http.StatusOK, LoginResponse{
		User:        user,
		AccessToken: token,
	})
}

// ForgotPassword godoc
// @Summary      Request a password reset
// @Description  Email a short-lived password reset link to the user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body ForgotPasswordRequest true "Account email"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /users/forget-password [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Validation("Email is required"))
		return
	}

	if err := h.authUseCase.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		apperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset link sent to your email"})
}

// ResetPassword godoc
// @Summary      Reset password
// @Description  Set a new password using the id and token from the reset link
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id path string true "User ID"
// @Param        token path string true "Reset token"
// @Param        request body ResetPasswordRequest true "New password"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /users/reset-password/{id}/{token} [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Validation(bindingMessage(err)))
		return
	}

	if err := h.authUseCase.ResetPassword(c.Request.Context(), c.Param("id"), c.Param("token"), req.NewPassword); err != nil {
		apperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "New password created"})
}

// bindingMessage turns the first validator failure into a client message.
func bindingMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request body"
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required", "notblank":
		return "All fields are required"
	case "email":
		return "Invalid email address"
	case "min", "max":
		if fe.Field() == "Username" {
			return "Username must be between 3 and 50 characters"
		}
		return "Password must be at least 6 characters"
	default:
		return "Invalid " + fe.Field()
	}
}
