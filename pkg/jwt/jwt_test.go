package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewService(t *testing.T) {
	secretKey := "test-secret-key"
	service := NewService(secretKey, 0, 0)

	assert.NotNil(t, service)
	assert.Equal(t, []byte(secretKey), service.secretKey)
	assert.Equal(t, DefaultAccessTTL, service.accessTTL)
	assert.Equal(t, DefaultResetTTL, service.resetTTL)
}

func TestGenerateAndValidateToken(t *testing.T) {
	service := NewService("test-secret-key", time.Hour, 0)

	token, err := service.GenerateToken("user-123", "alice")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := service.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.True(t, time.Now().Before(claims.ExpiresAt.Time))
}

func TestValidateToken_InvalidToken(t *testing.T) {
	service := NewService("test-secret-key", 0, 0)

	_, err := service.ValidateToken("invalid-token")
	assert.Error(t, err)
}

func TestValidateToken_EmptyToken(t *testing.T) {
	service := NewService("test-secret-key", 0, 0)

	_, err := service.ValidateToken("")
	assert.Error(t, err)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	service1 := NewService("secret-key-1", 0, 0)
	service2 := NewService("secret-key-2", 0, 0)

	token, err := service1.GenerateToken("user-123", "alice")
	assert.NoError(t, err)

	_, err = service2.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateToken_Expired(t *testing.T) {
	service := NewService("test-secret-key", time.Nanosecond, 0)

	token, err := service.GenerateToken("user-123", "alice")
	assert.NoError(t, err)

	time.Sleep(1100 * time.Millisecond)
	_, err = service.ValidateToken(token)
	assert.Error(t, err)
}

func TestResetToken_RoundTrip(t *testing.T) {
	service := NewService("test-secret-key", 0, 0)

	token, err := service.GenerateResetToken("user-1", "a@example.com", "$2a$10$hash")
	assert.NoError(t, err)

	claims, err := service.ValidateResetToken(token, "$2a$10$hash")
	assert.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "a@example.com", claims.Email)
}

func TestResetToken_InvalidAfterPasswordChange(t *testing.T) {
	service := NewService("test-secret-key", 0, 0)

	token, err := service.GenerateResetToken("user-1", "a@example.com", "old-hash")
	assert.NoError(t, err)

	_, err = service.ValidateResetToken(token, "new-hash")
	assert.Error(t, err)
}

func TestResetToken_NotAccessToken(t *testing.T) {
	service := NewService("test-secret-key", 0, 0)

	token, err := service.GenerateResetToken("user-1", "a@example.com", "hash")
	assert.NoError(t, err)

	_, err = service.ValidateToken(token)
	assert.Error(t, err)
}
