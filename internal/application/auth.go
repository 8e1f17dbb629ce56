package app

import (
	"context"
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"leafscan/internal/domain/entity"
	"leafscan/internal/domain/port"
)

// AuthService проверяет учётные данные и управляет сессиями веб-интерфейса.
type AuthService struct {
	sessions port.SessionRepository
	username string
	hash     []byte
}

// NewAuthService хеширует пароль из конфигурации.
func NewAuthService(sessions port.SessionRepository, username, password string) (*AuthService, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return &AuthService{sessions: sessions, username: username, hash: hash}, nil
}

// Login открывает сессию при верных учётных данных.
func (s *AuthService) Login(ctx context.Context, username, password string) (*entity.Session, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	passErr := bcrypt.CompareHashAndPassword(s.hash, []byte(password))
	if !userOK || passErr != nil {
		return nil, entity.ErrInvalidCredentials
	}
	return s.sessions.Create(ctx, username)
}

// Authenticate возвращает сессию по её ID.
func (s *AuthService) Authenticate(ctx context.Context, sessionID string) (*entity.Session, error) {
	if sessionID == "" {
		return nil, entity.ErrSessionNotFound
	}
	return s.sessions.Get(ctx, sessionID)
}

// Logout закрывает сессию.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}
