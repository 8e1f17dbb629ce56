package port

import (
	"context"

	"leafscan/internal/domain/entity"
)

// UserRepository интерфейс хранилища состояний диалога с ботом
type UserRepository interface {
	// Get возвращает копию пользователя; неизвестный пользователь создаётся в главном меню
	Get(ctx context.Context, userID, chatID int64) (*entity.User, error)

	// Save сохраняет копию пользователя
	Save(ctx context.Context, user *entity.User) error
}
