package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/saranshraj9101/events/internal/models"
)

// Claims defines the JWT claims structure.
type Claims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// UserLoader resolves token subjects to full user records.
type UserLoader interface {
	GetUserByID(id string) (models.User, error)
}

// Service issues and verifies signed identity tokens and authenticates
// incoming requests against them.
type Service struct {
	secret []byte
	ttl    time.Duration
	users  UserLoader
}

// NewService creates a token service. The secret signs every token; ttl
// controls how far out tokens expire.
func NewService(secret string, ttl time.Duration, users UserLoader) *Service {
	return &Service{secret: []byte(secret), ttl: ttl, users: users}
}

// GenerateJWT creates a new JWT for a given user.
func (s *Service) GenerateJWT(user models.User) (string, error) {
	expirationTime := time.Now().Add(s.ttl)
	claims := &Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateJWT parses and validates a JWT string.
func (s *Service) ValidateJWT(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
