package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresGameStateRepository хранит сохранения в таблице game_saves,
// снимок лежит в одной JSONB-колонке. Upsert по ключу слота.
type PostgresGameStateRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresGameStateRepository создает новый экземпляр PostgresGameStateRepository
func NewPostgresGameStateRepository(pool *pgxpool.Pool) *PostgresGameStateRepository {
	return &PostgresGameStateRepository{pool: pool}
}

// Save сохраняет снимок сессии, перезаписывая существующий слот.
func (r *PostgresGameStateRepository) Save(ctx context.Context, slot string, save GameSave) error {
	payload, err := json.Marshal(save)
	if err != nil {
		return fmt.Errorf("ошибка маршалинга сохранения: %w", err)
	}

	query := `
		INSERT INTO game_saves (slot, snapshot, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (slot) DO UPDATE
		SET snapshot = EXCLUDED.snapshot, updated_at = now()
	`

	if _, err := r.pool.Exec(ctx, query, slot, payload); err != nil {
		return fmt.Errorf("failed to save game state: %w", err)
	}
	return nil
}

// Load загружает снимок сессии по ключу слота.
func (r *PostgresGameStateRepository) Load(ctx context.Context, slot string) (GameSave, error) {
	query := `SELECT snapshot FROM game_saves WHERE slot = $1`

	var payload []byte
	err := r.pool.QueryRow(ctx, query, slot).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return GameSave{}, ErrSaveNotFound
		}
		return GameSave{}, fmt.Errorf("failed to load game state: %w", err)
	}

	var save GameSave
	if err := json.Unmarshal(payload, &save); err != nil {
		return GameSave{}, fmt.Errorf("ошибка демаршалинга сохранения: %w", err)
	}
	return save, nil
}

// Delete удаляет сохранение. Отсутствие слота ошибкой не считается.
func (r *PostgresGameStateRepository) Delete(ctx context.Context, slot string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM game_saves WHERE slot = $1`, slot); err != nil {
		return fmt.Errorf("failed to delete game state: %w", err)
	}
	return nil
}
