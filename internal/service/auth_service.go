package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"salonops-backend/internal/config"
	"salonops-backend/internal/domain"
	"salonops-backend/internal/repository"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService issues access tokens for back-office users.
type AuthService struct {
	Config config.Config
	Users  repository.UserRepository
	Logger *slog.Logger
}

type LoginResult struct {
	AccessToken string
	ExpiresAt   time.Time
	User        domain.User
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.Active {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	expiresAt := time.Now().Add(s.Config.AccessTokenTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":        strconv.FormatInt(user.ID, 10),
		"email":      user.Email,
		"role":       string(user.Role),
		"token_type": "access",
		"iat":        time.Now().Unix(),
		"exp":        expiresAt.Unix(),
	})
	signed, err := token.SignedString([]byte(s.Config.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	s.Logger.Info("user logged in", "user_id", user.ID)
	return &LoginResult{AccessToken: signed, ExpiresAt: expiresAt, User: *user}, nil
}
