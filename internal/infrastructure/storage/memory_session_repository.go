package storage

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"leafscan/internal/domain/entity"
	"leafscan/internal/domain/port"
)

// MemorySessionRepository in-memory хранилище сессий
type MemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*entity.Session
	now      func() time.Time
}

// NewMemorySessionRepository создаёт новое хранилище сессий
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{
		sessions: make(map[string]*entity.Session),
		now:      time.Now,
	}
}

// Create открывает сессию для пользователя
func (r *MemorySessionRepository) Create(ctx context.Context, username string) (*entity.Session, error) {
	s := &entity.Session{
		ID:        uuid.NewString(),
		Username:  username,
		CreatedAt: r.now(),
	}

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()

	return s, nil
}

// Get возвращает сессию по ID
func (r *MemorySessionRepository) Get(ctx context.Context, id string) (*entity.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, entity.ErrSessionNotFound
	}
	return s, nil
}

// Delete закрывает сессию; отсутствующая сессия не считается ошибкой
func (r *MemorySessionRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()

	return nil
}

var _ port.SessionRepository = (*MemorySessionRepository)(nil)
