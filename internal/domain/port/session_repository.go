package port

import (
	"context"

	"leafscan/internal/domain/entity"
)

// SessionRepository интерфейс хранилища сессий веб-интерфейса
type SessionRepository interface {
	Create(ctx context.Context, username string) (*entity.Session, error)
	Get(ctx context.Context, id string) (*entity.Session, error)
	Delete(ctx context.Context, id string) error
}
