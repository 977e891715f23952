package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	DefaultAccessTTL = 2 * time.Hour
	DefaultResetTTL  = 5 * time.Minute
)

type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type ResetClaims struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

type Service struct {
	secretKey []byte
	accessTTL time.Duration
	resetTTL  time.Duration
}

// NewService builds a token service. Zero TTLs fall back to the defaults.
func NewService(secretKey string, accessTTL, resetTTL time.Duration) *Service {
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTTL
	}
	if resetTTL <= 0 {
		resetTTL = DefaultResetTTL
	}
	return &Service{
		secretKey: []byte(secretKey),
		accessTTL: accessTTL,
		resetTTL:  resetTTL,
	}
}

func (s *Service) GenerateToken(userID, username string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if err := s.parse(tokenString, claims, s.secretKey); err != nil {
		return nil, err
	}
	return claims, nil
}

// GenerateResetToken signs a short-lived password reset token. The key mixes in the
// current password hash, so the token stops verifying once the password changes.
func (s *Service) GenerateResetToken(userID, email, passwordHash string) (string, error) {
	now := time.Now()
	claims := &ResetClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.resetTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.resetKey(passwordHash))
}

func (s *Service) ValidateResetToken(tokenString, passwordHash string) (*ResetClaims, error) {
	claims := &ResetClaims{}
	if err := s.parse(tokenString, claims, s.resetKey(passwordHash)); err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *Service) resetKey(passwordHash string) []byte {
	key := make([]byte, 0, len(s.secretKey)+len(passwordHash))
	key = append(key, s.secretKey...)
	return append(key, passwordHash...)
}

func (s *Service) parse(tokenString string, claims jwt.Claims, key []byte) error {
	if tokenString == "" {
		return errors.New("token is empty")
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return key, nil
	})
	if err != nil {
		return err
	}
	if !token.Valid {
		return errors.New("invalid token")
	}
	return nil
}
