package repository

import (
	"context"
	"errors"

	"genrpg-server/internal/domain"
)

// ErrSaveNotFound возвращается, когда сохранение с указанным ключом отсутствует.
var ErrSaveNotFound = errors.New("game save not found")

// GameSave — снимок сессии для персистентности: состояние игры плюс текущее
// событие (если есть) и имя файла его иллюстрации. Сохраняется целиком как
// один JSON-документ, без реляционной декомпозиции состояния.
type GameSave struct {
	State     *domain.GameState `json:"state"`
	Event     *domain.GameEvent `json:"event,omitempty"`
	ImagePath string            `json:"image_path,omitempty"`
}

// GameStateRepository предоставляет доступ к сохранениям игры по строковому
// ключу слота. Save перезаписывает существующее сохранение атомарно:
// читатель никогда не видит смесь старого и нового снимка.
type GameStateRepository interface {
	Save(ctx context.Context, slot string, save GameSave) error
	Load(ctx context.Context, slot string) (GameSave, error)
	Delete(ctx context.Context, slot string) error
}
