package images

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	defaultBaseURL = "https://api.venice.ai/api/v1"
	defaultModel   = "fluently-xl"

	// Суффикс стиля добавляется к каждому промпту, чтобы все иллюстрации
	// событий выглядели единообразно.
	styleSuffix = ", pixel art style, 16-bit, vibrant colors, detailed fantasy RPG scene"
)

// Client генерирует иллюстрации событий через API генерации изображений
// и сохраняет их на диск. Возвращает путь к файлу относительно каталога
// изображений, по нему файл раздается статикой.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	modelName  string
	outputDir  string
	log        zerolog.Logger
}

// Config содержит конфигурацию для клиента генерации изображений
type Config struct {
	APIKey    string
	BaseURL   string
	ModelName string
	Timeout   int // секунды
	OutputDir string
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type generateResponse struct {
	Images []string `json:"images"`
}

// New создает новый экземпляр клиента генерации изображений
func New(cfg Config, log zerolog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("не указан API ключ для генерации изображений")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}

	if cfg.ModelName == "" {
		cfg.ModelName = defaultModel
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 120
	}

	if cfg.OutputDir == "" {
		cfg.OutputDir = "images"
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("не удалось создать каталог изображений %s: %w", cfg.OutputDir, err)
	}

	return &Client{
		httpClient: &http.Client{Timeout: time.Duration(cfg.Timeout) * time.Second},
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		modelName:  cfg.ModelName,
		outputDir:  cfg.OutputDir,
		log:        log.With().Str("component", "image_client").Logger(),
	}, nil
}

// GenerateEventImage генерирует иллюстрацию по описанию события и сохраняет
// ее в файл, названный по идентификатору события. Возвращает имя файла.
func (c *Client) GenerateEventImage(ctx context.Context, eventID uuid.UUID, description string) (string, error) {
	prompt := description + styleSuffix

	body, err := json.Marshal(generateRequest{
		Model:  c.modelName,
		Prompt: prompt,
		Width:  1024,
		Height: 1024,
	})
	if err != nil {
		return "", fmt.Errorf("ошибка при сериализации запроса: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/image/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("ошибка при создании запроса: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	c.log.Debug().Str("model", c.modelName).Str("eventID", eventID.String()).Msg("Отправка запроса на генерацию изображения")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ошибка при генерации изображения: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API генерации изображений вернул статус %d", resp.StatusCode)
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("ошибка при разборе ответа API: %w", err)
	}

	if len(result.Images) == 0 {
		return "", errors.New("пустой ответ от API: изображения не получены")
	}

	data, err := base64.StdEncoding.DecodeString(result.Images[0])
	if err != nil {
		return "", fmt.Errorf("ошибка при декодировании изображения из base64: %w", err)
	}

	fileName := eventID.String() + ".png"
	filePath := filepath.Join(c.outputDir, fileName)
	if err := os.WriteFile(filePath, data, 0o644); err != nil {
		return "", fmt.Errorf("не удалось сохранить изображение %s: %w", filePath, err)
	}

	c.log.Info().Str("file", filePath).Int("bytes", len(data)).Msg("Изображение события сохранено")

	return fileName, nil
}
