package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"leafscan/internal/domain/entity"
	"leafscan/internal/domain/port"
)

// MemoryPredictionRepository in-memory история распознаваний
type MemoryPredictionRepository struct {
	mu          sync.RWMutex
	predictions []*entity.Prediction
}

// NewMemoryPredictionRepository создаёт пустую историю
func NewMemoryPredictionRepository() *MemoryPredictionRepository {
	return &MemoryPredictionRepository{}
}

// NextID выдаёт новый UUID
func (r *MemoryPredictionRepository) NextID() string {
	return uuid.NewString()
}

// Save добавляет запись в историю
func (r *MemoryPredictionRepository) Save(ctx context.Context, p *entity.Prediction) error {
	r.mu.Lock()
	r.predictions = append(r.predictions, p)
	r.mu.Unlock()

	return nil
}

// List возвращает копию истории, новые записи первыми
func (r *MemoryPredictionRepository) List(ctx context.Context) ([]*entity.Prediction, error) {
	r.mu.RLock()
	result := make([]*entity.Prediction, len(r.predictions))
	copy(result, r.predictions)
	r.mu.RUnlock()

	// Записи с одинаковым временем остаются в порядке, обратном добавлению.
	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

// Проверка реализации интерфейса
var _ port.PredictionRepository = (*MemoryPredictionRepository)(nil)
