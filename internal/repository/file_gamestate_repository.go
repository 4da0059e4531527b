package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileGameStateRepository хранит сохранения в JSON-файлах на диске, по файлу
// на слот. Запись идет через временный файл и rename, чтобы неудачная запись
// не портила существующее сохранение.
type FileGameStateRepository struct {
	dir string
	mu  sync.Mutex
}

// NewFileGameStateRepository создает репозиторий поверх каталога сохранений.
func NewFileGameStateRepository(dir string) (*FileGameStateRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("не удалось создать каталог сохранений %s: %w", dir, err)
	}
	return &FileGameStateRepository{dir: dir}, nil
}

func (r *FileGameStateRepository) slotPath(slot string) string {
	return filepath.Join(r.dir, slot+".json")
}

// Save сохраняет снимок сессии, перезаписывая существующий слот.
func (r *FileGameStateRepository) Save(_ context.Context, slot string, save GameSave) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	payload, err := json.MarshalIndent(save, "", "  ")
	if err != nil {
		return fmt.Errorf("ошибка маршалинга сохранения: %w", err)
	}

	tmp := r.slotPath(slot) + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("failed to write game state: %w", err)
	}
	if err := os.Rename(tmp, r.slotPath(slot)); err != nil {
		return fmt.Errorf("failed to commit game state: %w", err)
	}
	return nil
}

// Load загружает снимок сессии по ключу слота.
func (r *FileGameStateRepository) Load(_ context.Context, slot string) (GameSave, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	payload, err := os.ReadFile(r.slotPath(slot))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return GameSave{}, ErrSaveNotFound
		}
		return GameSave{}, fmt.Errorf("failed to read game state: %w", err)
	}

	var save GameSave
	if err := json.Unmarshal(payload, &save); err != nil {
		return GameSave{}, fmt.Errorf("ошибка демаршалинга сохранения: %w", err)
	}
	return save, nil
}

// Delete удаляет сохранение. Отсутствие слота ошибкой не считается.
func (r *FileGameStateRepository) Delete(_ context.Context, slot string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.Remove(r.slotPath(slot)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete game state: %w", err)
	}
	return nil
}
