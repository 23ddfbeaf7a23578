package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"healthcare-booking-server/internal/config"
	"healthcare-booking-server/internal/models"
)

// Claims represents the JWT claims.
type Claims struct {
	UserID string      `json:"user_id"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies the access/refresh token pair.
type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewTokenManager(cfg *config.Config) *TokenManager {
	return &TokenManager{
		accessSecret:  []byte(cfg.JWTSecret),
		refreshSecret: []byte(cfg.JWTRefreshSecret),
		accessTTL:     time.Duration(cfg.JWTExpirationMinutes) * time.Minute,
		refreshTTL:    time.Duration(cfg.JWTRefreshExpirationHours) * time.Hour,
	}
}

func (m *TokenManager) RefreshTTL() time.Duration {
	return m.refreshTTL
}

// GenerateTokens generates both access and refresh tokens for a user.
func (m *TokenManager) GenerateTokens(user *models.User) (accessToken string, refreshToken string, err error) {
	accessToken, err = m.sign(user, m.accessSecret, m.accessTTL)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign access token: %w", err)
	}
	refreshToken, err = m.sign(user, m.refreshSecret, m.refreshTTL)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return accessToken, refreshToken, nil
}

// sign stamps a unique token id so two pairs issued in the same second still differ.
func (m *TokenManager) sign(user *models.User, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   user.ID,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ValidateAccessToken returns the claims of a valid access token.
func (m *TokenManager) ValidateAccessToken(token string) (*Claims, error) {
	return ValidateToken(token, m.accessSecret)
}

// ValidateRefreshToken returns the subject of a valid refresh token.
func (m *TokenManager) ValidateRefreshToken(token string) (string, error) {
	claims, err := ValidateToken(token, m.refreshSecret)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

// ValidateToken validates a JWT token.
func ValidateToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secretKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("token has no subject")
	}
	return claims, nil
}
