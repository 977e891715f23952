package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"postfeed/pkg/apperr"
	"postfeed/pkg/jwt"
	"postfeed/pkg/logger"
	"postfeed/pkg/mailer"
	"postfeed/pkg/queue"
	"postfeed/services/auth/internal/entity"
	"postfeed/services/auth/internal/repo/persistent"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	MinPasswordLength  = 6
	resetEmailTimeout  = 30 * time.Second
	resetEmailPriority = 5
)

// TaskPublisher hands email work to the mailer service.
type TaskPublisher interface {
	PublishEmailTask(ctx context.Context, task queue.EmailTask) error
}

type AuthUseCase interface {
	Register(ctx context.Context, username, email, password string) (*entity.User, error)
	Login(ctx context.Context, username, email, password string) (*entity.User, string, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, userID, token, newPassword string) error
}

type authUseCase struct {
	userRepo   persistent.UserRepository
	jwtService *jwt.Service
	publisher  TaskPublisher
	sender     mailer.Sender
	baseURL    string
	logger     *logger.Logger
}

// NewAuthUseCase wires the auth flows. Reset emails go to publisher when it is set,
// otherwise straight to sender; with neither the link is only logged.
func NewAuthUseCase(
	userRepo persistent.UserRepository,
	jwtService *jwt.Service,
	publisher TaskPublisher,
	sender mailer.Sender,
	baseURL string,
	logger *logger.Logger,
) AuthUseCase {
	return &authUseCase{
		userRepo:   userRepo,
		jwtService: jwtService,
		publisher:  publisher,
		sender:     sender,
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
	}
}

func (uc *authUseCase) Register(ctx context.Context, username, email, password string) (*entity.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if isBlank(username) || isBlank(email) || isBlank(password) {
		return nil, apperr.Validation("All fields are required")
	}
	if len(password) < MinPasswordLength {
		return nil, apperr.Validation(fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	}

	_, err := uc.userRepo.FindByUsernameOrEmail(ctx, username, email)
	if err == nil {
		return nil, apperr.Conflict("User already existed")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		uc.logger.Error("Failed to look up user %s: %v", username, err)
		return nil, apperr.Internal("Something went wrong while registering the user", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		uc.logger.Error("Failed to hash password: %v", err)
		return nil, apperr.Internal("Something went wrong while registering the user", err)
	}

	user := &entity.User{
		Username: username,
		Email:    email,
		Password: string(hashedPassword),
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration; the unique index rejected it.
		if _, lookupErr := uc.userRepo.FindByUsernameOrEmail(ctx, username, email); lookupErr == nil {
			return nil, apperr.Conflict("User already existed")
		}
		uc.logger.Error("Failed to create user: %v", err)
		return nil, apperr.Internal("Something went wrong while registering the user", err)
	}

	user.Password = ""
	return user, nil
}

func (uc *authUseCase) Login(ctx context.Context, username, email, password string) (*entity.User, string, error) {
	if isBlank(username) && isBlank(email) {
		return nil, "", apperr.Validation("username or email is required")
	}

	user, err := uc.userRepo.FindByUsernameOrEmail(ctx, strings.TrimSpace(username), strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", apperr.NotFound("User does not exist")
		}
		uc.logger.Error("Failed to look up user: %v", err)
		return nil, "", apperr.Internal("Failed to login", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", apperr.Unauthorized("Incorrect Password")
	}

	token, err := uc.jwtService.GenerateToken(user.ID, user.Username)
	if err != nil {
		uc.logger.Error("Failed to generate token: %v", err)
		return nil, "", apperr.Internal("Failed to generate token", err)
	}

	user.Password = ""
	return user, token, nil
}

func (uc *authUseCase) ForgotPassword(ctx context.Context, email string) error {
	if isBlank(email) {
		return apperr.Validation("Email is required")
	}

	user, err := uc.userRepo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("User does not exist")
		}
		uc.logger.Error("Failed to look up user by email: %v", err)
		return apperr.Internal("Failed to process request", err)
	}

	token, err := uc.jwtService.GenerateResetToken(user.ID, user.Email, user.Password)
	if err != nil {
		uc.logger.Error("Failed to generate reset token: %v", err)
		return apperr.Internal("Failed to process request", err)
	}

	link := uc.resetLink(user.ID, token)
	uc.logger.Debug("Password reset link for user=%s: %s", user.ID, link)

	// Delivery is best effort and must not hold up the response.
	go uc.sendResetEmail(user.Email, link)
	return nil
}

func (uc *authUseCase) ResetPassword(ctx context.Context, userID, token, newPassword string) error {
	if _, err := uuid.Parse(userID); err != nil {
		return apperr.Validation("Invalid user id")
	}
	if len(newPassword) < MinPasswordLength {
		return apperr.Validation(fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	}

	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("User does not exist")
		}
		uc.logger.Error("Failed to look up user %s: %v", userID, err)
		return apperr.Internal("Failed to reset password", err)
	}

	claims, err := uc.jwtService.ValidateResetToken(token, user.Password)
	if err != nil || claims.UserID != user.ID {
		return apperr.Validation("Invalid or expired token")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		uc.logger.Error("Failed to hash password: %v", err)
		return apperr.Internal("Failed to reset password", err)
	}

	if err := uc.userRepo.UpdatePassword(ctx, user.ID, string(hashedPassword)); err != nil {
		uc.logger.Error("Failed to update password for user %s: %v", user.ID, err)
		return apperr.Internal("Failed to reset password", err)
	}

	return nil
}

// resetLink is the URL mailed to the user.
func (uc *authUseCase) resetLink(userID, token string) string {
	return fmt.Sprintf("%s/api/v1/users/reset-password/%s/%s", uc.baseURL, userID, token)
}

func (uc *authUseCase) sendResetEmail(to, link string) {
	ctx, cancel := context.WithTimeout(context.Background(), resetEmailTimeout)
	defer cancel()

	subject, body := mailer.ResetEmail(link)

	switch {
	case uc.publisher != nil:
		task := queue.EmailTask{
			Type:     queue.EmailRoutingKey,
			To:       to,
			Subject:  subject,
			Body:     body,
			Priority: resetEmailPriority,
		}
		if err := uc.publisher.PublishEmailTask(ctx, task); err != nil {
			uc.logger.Error("[EMAIL QUEUE] Failed to publish reset email for %s: %v", to, err)
			return
		}
		uc.logger.Info("[EMAIL QUEUE] Published reset email task for %s", to)
	case uc.sender != nil:
		if err := uc.sender.Send(ctx, to, subject, body); err != nil {
			uc.logger.Error("Failed to send reset email to %s: %v", to, err)
			return
		}
		uc.logger.Info("Reset email sent to %s", to)
	default:
		uc.logger.Warn("No email transport configured, reset link for %s not delivered", to)
	}
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
