package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config структура для хранения всей конфигурации приложения.
type Config struct {
	AppEnv   string `env:"APP_ENV" env-default:"development"`
	LogLevel string `env:"LOG_LEVEL" env-default:"info"`

	HTTP    HTTPConfig
	Storage StorageConfig
	AI      AIConfig
	Images  ImagesConfig
	Session SessionConfig
}

// HTTPConfig настройки HTTP-сервера.
type HTTPConfig struct {
	Host string `env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `env:"HTTP_PORT" env-default:"8080"`
}

// StorageConfig настройки хранилища сохранений.
type StorageConfig struct {
	// Driver выбирает реализацию: postgres или file.
	Driver      string `env:"STORAGE_DRIVER" env-default:"file"`
	PostgresDSN string `env:"POSTGRES_DSN" env-default:""`
	FileDir     string `env:"SAVES_DIR" env-default:"saves"`
}

// AIConfig настройки клиента текстовой генерации.
type AIConfig struct {
	APIKey    string `env:"AI_API_KEY" env-default:""`
	BaseURL   string `env:"AI_BASE_URL" env-default:""`
	ModelName string `env:"AI_MODEL" env-default:""`
	Timeout   int    `env:"AI_TIMEOUT_SEC" env-default:"120"`
}

// ImagesConfig настройки клиента генерации изображений.
type ImagesConfig struct {
	Enabled   bool   `env:"IMAGES_ENABLED" env-default:"true"`
	APIKey    string `env:"IMAGES_API_KEY" env-default:""`
	BaseURL   string `env:"IMAGES_BASE_URL" env-default:""`
	ModelName string `env:"IMAGES_MODEL" env-default:""`
	Timeout   int    `env:"IMAGES_TIMEOUT_SEC" env-default:"120"`
	OutputDir string `env:"IMAGES_DIR" env-default:"images"`
}

// SessionConfig настройки игровой сессии.
type SessionConfig struct {
	Slot        string `env:"SESSION_SLOT" env-default:"default"`
	MaxAttempts int    `env:"GENERATION_MAX_ATTEMPTS" env-default:"3"`
}

// Load загружает конфигурацию из переменных окружения и .env файла.
func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку, если файла нет)
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("error loading configuration: %w", err)
	}

	if cfg.AI.APIKey == "" {
		return nil, fmt.Errorf("AI_API_KEY is required")
	}
	if cfg.Storage.Driver == "postgres" && cfg.Storage.PostgresDSN == "" {
		return nil, fmt.Errorf("POSTGRES_DSN is required when STORAGE_DRIVER=postgres")
	}

	return &cfg, nil
}
