package ai

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
)

const (
	promptsDir      = "promts"
	eventPromptFile = "event.md"

	defaultBaseURL = "https://api.venice.ai/api/v1"
	defaultModel   = "llama-3.3-70b"
)

// Client предоставляет интерфейс для работы с API нейросети.
// Реализует generator.TextGenerator: один вызов Generate — один запрос к API,
// без внутренних повторов. Политика повторов живет на уровне сессии.
type Client struct {
	client       *openai.Client
	modelName    string
	timeout      time.Duration
	systemPrompt string
	log          zerolog.Logger
}

// Config содержит конфигурацию для клиента нейросети
type Config struct {
	APIKey    string
	BaseURL   string
	ModelName string
	Timeout   int // секунды
}

// loadPromptFromFile читает содержимое файла промпта.
func loadPromptFromFile(filename string) (string, error) {
	filePath := filepath.Join(promptsDir, filename)
	content, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read prompt file %s: %w", filePath, err)
	}
	return string(content), nil
}

// New создает новый экземпляр клиента нейросети
func New(cfg Config, log zerolog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("не указан API ключ для текстовой генерации")
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

	systemPrompt, err := loadPromptFromFile(eventPromptFile)
	if err != nil {
		return nil, err
	}

	config := openai.DefaultConfig(cfg.APIKey)
	config.BaseURL = cfg.BaseURL

	return &Client{
		client:       openai.NewClientWithConfig(config),
		modelName:    cfg.ModelName,
		timeout:      time.Duration(cfg.Timeout) * time.Second,
		systemPrompt: systemPrompt,
		log:          log.With().Str("component", "ai_client").Logger(),
	}, nil
}

// Generate выполняет один запрос к API и возвращает сырой текст ответа.
func (c *Client) Generate(ctx context.Context, instruction string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: c.systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: instruction,
			},
		},
		Temperature: 0.8,
		MaxTokens:   2000,
		TopP:        0.95,
	}

	c.log.Debug().Str("model", c.modelName).Msg("Отправка запроса на генерацию события")

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("ошибка при генерации события: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", errors.New("пустой ответ от API: не получены варианты")
	}

	responseContent := resp.Choices[0].Message.Content
	c.log.Info().
		Str("model", c.modelName).
		Int("length", len(responseContent)).
		Msg("Получен ответ от API")

	return responseContent, nil
}
