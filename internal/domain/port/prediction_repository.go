package port

import (
	"context"

	"leafscan/internal/domain/entity"
)

// PredictionRepository интерфейс хранилища истории распознаваний
type PredictionRepository interface {
	// NextID выдаёт идентификатор для новой записи
	NextID() string

	// Save сохраняет запись
	Save(ctx context.Context, p *entity.Prediction) error

	// List возвращает записи, начиная с самых новых
	List(ctx context.Context) ([]*entity.Prediction, error)
}

// UploadStore интерфейс хранилища загруженных файлов
type UploadStore interface {
	// Store сохраняет файл и возвращает итоговое имя
	Store(ctx context.Context, filename string, data []byte) (string, error)
}
