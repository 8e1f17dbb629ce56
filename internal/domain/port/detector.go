package port

import (
	"context"
	"image"

	"leafscan/internal/domain/entity"
)

// Classifier интерфейс модели распознавания болезней
type Classifier interface {
	// Classify декодирует изображение и возвращает вероятности классов
	Classify(ctx context.Context, imageData []byte) ([]float32, error)
}

// DetectClient интерфейс клиента эндпоинта /detect
type DetectClient interface {
	// Detect отправляет изображение и возвращает разобранный ответ.
	// Прикладная ошибка приходит в DetectResponse.Error, сетевая — в error.
	Detect(ctx context.Context, upload *entity.Upload) (*entity.DetectResponse, error)
}

// FrameSource интерфейс источника кадров (веб-камера)
type FrameSource interface {
	// Frame возвращает текущий кадр
	Frame(ctx context.Context) (image.Image, error)
	Close() error
}
