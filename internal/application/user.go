package app

import (
	"context"
	"sync"

	"leafscan/internal/domain/entity"
	"leafscan/internal/domain/port"
)

// UserService ведёт состояние диалога пользователей бота
type UserService struct {
	repo port.UserRepository
	// mu делает проверку и смену состояния атомарной для TryStartProcessing
	mu sync.Mutex
}

// NewUserService создаёт сервис пользователей
func NewUserService(repo port.UserRepository) *UserService {
	return &UserService{repo: repo}
}

// Get возвращает пользователя, создавая его при первом обращении
func (s *UserService) Get(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.repo.Get(ctx, userID, chatID)
}

// SetState переводит пользователя в новое состояние и сохраняет его
func (s *UserService) SetState(ctx context.Context, userID, chatID int64, state entity.UserState) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.setState(ctx, userID, chatID, state)
}

func (s *UserService) setState(ctx context.Context, userID, chatID int64, state entity.UserState) (*entity.User, error) {
	user, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	user.SetState(state)
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// BeginCheck ждёт от пользователя фото листа
func (s *UserService) BeginCheck(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.SetState(ctx, userID, chatID, entity.StateAwaitingPhoto)
}

// StartProcessing отмечает, что фото пользователя распознаётся
func (s *UserService) StartProcessing(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.SetState(ctx, userID, chatID, entity.StateProcessing)
}

// TryStartProcessing занимает пользователя под распознавание.
// Возвращает false, если предыдущее фото ещё обрабатывается.
func (s *UserService) TryStartProcessing(ctx context.Context, userID, chatID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return false, err
	}
	if user.Busy() {
		return false, nil
	}

	if _, err := s.setState(ctx, userID, chatID, entity.StateProcessing); err != nil {
		return false, err
	}
	return true, nil
}

// Cancel возвращает пользователя в главное меню
func (s *UserService) Cancel(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.SetState(ctx, userID, chatID, entity.StateMainMenu)
}
