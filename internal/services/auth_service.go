package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"meeplemart/internal/caching"
	"meeplemart/internal/email"
	"meeplemart/internal/models"
	"meeplemart/internal/repositories"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUserNotFound       = errors.New("user not found")
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
	resetTokenTTL   = time.Hour
)

type Claims struct {
	UserID  uuid.UUID `json:"user_id"`
	IsAdmin bool      `json:"is_admin"`
	jwt.RegisteredClaims
}

type RegisterParams struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type AuthService interface {
	Register(ctx context.Context, params RegisterParams) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*models.TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	RequestPasswordReset(ctx context.Context, emailAddr string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type authService struct {
	userRepo repositories.UserRepository
	cache    caching.CacheService
	mailer   email.Sender
	secret   []byte
}

func NewAuthService(userRepo repositories.UserRepository, cache caching.CacheService, mailer email.Sender, jwtSecret string) AuthService {
	return &authService{
		userRepo: userRepo,
		cache:    cache,
		mailer:   mailer,
		secret:   []byte(jwtSecret),
	}
}

func (s *authService) Register(ctx context.Context, params RegisterParams) (*models.User, error) {
	params.Email = strings.TrimSpace(strings.ToLower(params.Email))
	if params.Email == "" || !strings.Contains(params.Email, "@") {
		return nil, &ValidationError{Field: "email", Message: "a valid email is required"}
	}
	if len(params.Password) < 8 {
		return nil, &ValidationError{Field: "password", Message: "password must be at least 8 characters"}
	}

	if _, err := s.userRepo.GetByEmail(ctx, params.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        params.Email,
		PasswordHash: string(hash),
		FirstName:    params.FirstName,
		LastName:     params.LastName,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, emailAddr, password string) (*models.TokenResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issueTokens(ctx, user)
}

func (s *authService) issueTokens(ctx context.Context, user *models.User) (*models.TokenResponse, error) {
	accessToken, err := s.signAccessToken(user)
	if err != nil {
		return nil, err
	}

	refreshToken := randomToken()
	key := refreshKey(refreshToken)
	if err := s.cache.SetString(ctx, key, user.ID.String(), refreshTokenTTL); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &models.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(accessTokenTTL.Seconds()),
	}, nil
}

func (s *authService) signAccessToken(user *models.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:  user.ID,
		IsAdmin: user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(accessTokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*models.TokenResponse, error) {
	key := refreshKey(refreshToken)
	userIDStr, err := s.cache.GetString(ctx, key)
	if err != nil {
		return nil, err
	}
	if userIDStr == "" {
		return nil, ErrInvalidToken
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	// Rotate: the old refresh token is single-use.
	if err := s.cache.Delete(ctx, key); err != nil {
		log.Printf("failed to revoke refresh token: %v", err)
	}
	return s.issueTokens(ctx, user)
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	return s.cache.Delete(ctx, refreshKey(refreshToken))
}

func (s *authService) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	user, err := s.userRepo.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Don't reveal whether the address exists.
			return nil
		}
		return err
	}

	token := randomToken()
	if err := s.cache.SetString(ctx, resetKey(token), user.ID.String(), resetTokenTTL); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}
	if err := s.mailer.SendPasswordReset(user.Email, token); err != nil {
		log.Printf("failed to send password reset email to %s: %v", user.Email, err)
	}
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < 8 {
		return &ValidationError{Field: "password", Message: "password must be at least 8 characters"}
	}

	userIDStr, err := s.cache.GetString(ctx, resetKey(token))
	if err != nil {
		return err
	}
	if userIDStr == "" {
		return ErrInvalidToken
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return ErrInvalidToken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return err
	}
	if err := s.cache.Delete(ctx, resetKey(token)); err != nil {
		log.Printf("failed to revoke reset token: %v", err)
	}
	return nil
}

func refreshKey(token string) string {
	return "refresh:" + token
}

func resetKey(token string) string {
	return "reset:" + token
}

func randomToken() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return uuid.NewString()
	}
	return hex.EncodeToString(buf)
}
