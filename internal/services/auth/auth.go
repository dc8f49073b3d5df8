// Package auth содержит логику регистрации, входа и выхода пользователей.
// Выход заносит идентификатор токена в список отозванных в Redis.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/app-subscriptions/internal/apperr"
	"github.com/magabrotheeeer/app-subscriptions/internal/lib/jwt"
	"github.com/magabrotheeeer/app-subscriptions/internal/lib/password"
	"github.com/magabrotheeeer/app-subscriptions/internal/lib/sl"
	"github.com/magabrotheeeer/app-subscriptions/internal/models"
)

const (
	msgRegistered = "User Registered Successfully"
	msgLoggedIn   = "Login Successful"
	msgBadLogin   = "Incorrect Login credentials"

	revokedPrefix = "revoked:"
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// DenyList хранит идентификаторы отозванных токенов.
type DenyList interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Service отвечает за регистрацию, вход, выход и проверку токенов.
type Service struct {
	users    UserRepository
	jwtMaker jwt.Maker
	denylist DenyList
	log      *slog.Logger
	now      func() time.Time
}

// New создает Service.
func New(users UserRepository, jwtMaker jwt.Maker, denylist DenyList, log *slog.Logger) *Service {
	return &Service{
		users:    users,
		jwtMaker: jwtMaker,
		denylist: denylist,
		log:      log,
		now:      time.Now,
	}
}

// Register создает пользователя с хэшированным паролем и сразу выдает токен.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResult, error) {
	const op = "auth.Register"

	hashed, err := password.GetHash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user := &models.User{
		ID:           uuid.New(),
		Username:     req.Username,
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		PasswordHash: hashed,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user registered", slog.String("op", op), sl.UserID(user.ID))
	return s.issue(user, msgRegistered)
}

// Login проверяет пароль и выдает новый токен. Неверные учетные данные
// дают apperr.ErrUnauthenticated без уточнения, что именно не совпало.
func (s *Service) Login(ctx context.Context, username, rawPassword string) (*models.AuthResult, error) {
	const op = "auth.Login"

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.New(apperr.ErrUnauthenticated, msgBadLogin)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			return nil, apperr.New(apperr.ErrUnauthenticated, msgBadLogin)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.issue(user, msgLoggedIn)
}

// Logout отзывает токен до момента его истечения. Повторный выход
// и выход с истекшим токеном ничего не делают.
func (s *Service) Logout(ctx context.Context, claims *jwt.CustomClaims) error {
	const op = "auth.Logout"

	if claims == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	ttl := claims.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.denylist.Set(ctx, revokedPrefix+claims.ID, true, ttl); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("user logged out", slog.String("op", op), sl.UserID(claims.UserID))
	return nil
}

// Profile возвращает данные пользователя.
func (s *Service) Profile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	const op = "auth.Profile"

	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// Authenticate проверяет подпись и срок токена, а также что он не отозван.
func (s *Service) Authenticate(ctx context.Context, token string) (*jwt.CustomClaims, error) {
	const op = "auth.Authenticate"

	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, apperr.New(apperr.ErrUnauthenticated, "Invalid or expired token.")
	}
	revoked, err := s.denylist.Exists(ctx, revokedPrefix+claims.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if revoked {
		return nil, apperr.New(apperr.ErrUnauthenticated, "Token has been revoked.")
	}
	return claims, nil
}

func (s *Service) issue(user *models.User, message string) (*models.AuthResult, error) {
	const op = "auth.issue"

	token, expiresAt, err := s.jwtMaker.GenerateToken(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.AuthResult{
		FullName:       user.FullName(),
		Message:        message,
		Email:          user.Email,
		Username:       user.Username,
		Token:          token,
		TokenExpiresIn: int64(expiresAt.Sub(s.now()).Seconds()),
	}, nil
}
