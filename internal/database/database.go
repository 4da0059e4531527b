package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// NewPool создает пул соединений и проверяет доступность базы.
func NewPool(ctx context.Context, dsn string, log zerolog.Logger) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Msg("Подключение к базе данных установлено")
	return pool, nil
}

// Close закрывает пул соединений.
func Close(pool *pgxpool.Pool, log zerolog.Logger) {
	if pool != nil {
		pool.Close()
		log.Info().Msg("Соединение с базой данных закрыто")
	}
}
