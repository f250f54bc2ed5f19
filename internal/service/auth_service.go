package service

import (
	"context"
	"errors"
	"strings"

	"spot_difference/internal/domain"
	"spot_difference/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserExists         = errors.New("пользователь уже существует")
	ErrInvalidCredentials = errors.New("неверное имя или пароль")
	ErrInvalidInput       = errors.New("имя и пароль обязательны")
)

const (
	maxUsernameLen = 32
	minPasswordLen = 4
	// bcrypt не принимает пароли длиннее 72 байт
	maxPasswordLen = 72
)

// UserStore - хранилище пользователей (Postgres или память)
type UserStore interface {
	Create(ctx context.Context, u *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// регистрация и вход игроков
type AuthService struct {
	users UserStore
	cost  int
}

func NewAuthService(users UserStore) *AuthService {
	return &AuthService{users: users, cost: bcrypt.DefaultCost}
}

// Register создает пользователя с хэшем пароля
func (s *AuthService) Register(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || len(username) > maxUsernameLen || len(password) < minPasswordLen || len(password) > maxPasswordLen {
		return ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return err
	}

	err = s.users.Create(ctx, &domain.User{Username: username, PasswordHash: string(hash)})
	if errors.Is(err, repository.ErrDuplicate) {
		return ErrUserExists
	}
	return err
}

// Login проверяет пароль и выпускает токен
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", ErrInvalidCredentials
	}

	u, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}
	return GenerateJWT(u.Username)
}
