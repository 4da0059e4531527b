package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
	"github.com/rs/zerolog"

	"genrpg-server/internal/domain"
	"genrpg-server/internal/schema"
)

// TextGenerator — внешняя способность генерации текста. Реализация получает
// готовую инструкцию и возвращает сырой текст, который должен быть JSON
// по схеме события. Ошибки транспорта (таймаут, сеть, пустой ответ API)
// возвращаются как есть.
type TextGenerator interface {
	Generate(ctx context.Context, instruction string) (string, error)
}

// GenerationErrorKind классифицирует ошибку генерации события.
type GenerationErrorKind string

const (
	// KindTransportFailure — сбой самой способности генерации.
	KindTransportFailure GenerationErrorKind = "transport_failure"
	// KindInvalidResponse — текст получен, но не прошел декодер схемы.
	KindInvalidResponse GenerationErrorKind = "invalid_response"
)

// GenerationError описывает неудачную попытку генерации события.
// Для invalid_response сохраняется сырой текст ответа для диагностики.
type GenerationError struct {
	Kind GenerationErrorKind
	Raw  string
	Err  error
}

func (e *GenerationError) Error() string {
	if e.Kind == KindInvalidResponse {
		return fmt.Sprintf("generated text failed schema validation: %v", e.Err)
	}
	return fmt.Sprintf("text generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// AsGenerationError извлекает GenerationError из цепочки ошибок.
func AsGenerationError(err error) (*GenerationError, bool) {
	var genErr *GenerationError
	ok := errors.As(err, &genErr)
	return genErr, ok
}

// EventGenerator строит инструкцию из контекста игрока и локации, один раз
// вызывает внешний генератор текста и прогоняет ответ через декодер схемы.
// Политика повторов намеренно не здесь: повторяет вызывающая сторона.
type EventGenerator struct {
	text TextGenerator
	log  zerolog.Logger
}

// New создает генератор событий.
func New(text TextGenerator, log zerolog.Logger) *EventGenerator {
	return &EventGenerator{
		text: text,
		log:  log.With().Str("component", "event_generator").Logger(),
	}
}

// Generate генерирует событие для персонажа в локации.
// На ошибке декодирования синтетическое событие не подставляется:
// отсутствие валидного события — явное, представимое состояние.
func (g *EventGenerator) Generate(ctx context.Context, character domain.Character, location domain.Location) (*domain.GameEvent, error) {
	instruction := BuildInstruction(character, location)

	if e := g.log.Debug(); e.Enabled() {
		e.Str("location", location.Name).
			Int("level", character.Level).
			Int("prompt_tokens_estimate", estimateTokens(instruction)).
			Msg("requesting event generation")
	}

	raw, err := g.text.Generate(ctx, instruction)
	if err != nil {
		return nil, &GenerationError{Kind: KindTransportFailure, Err: err}
	}

	event, err := schema.DecodeEvent(raw)
	if err != nil {
		g.log.Warn().Err(err).Msg("generated text failed schema validation")
		return nil, &GenerationError{Kind: KindInvalidResponse, Raw: raw, Err: err}
	}

	return event, nil
}

// BuildInstruction собирает инструкцию: контекст локации и персонажа плюс
// структурный контракт, выведенный из дескриптора схемы. Контракт и декодер
// построены из одних и тех же перечислений, расходиться им не из чего.
func BuildInstruction(character domain.Character, location domain.Location) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are creating an event for an RPG game. The event should be appropriate for a player in a %s named %q. The location description is %q. ",
		location.Type, location.Name, location.Description)
	fmt.Fprintf(&b, "The player's level is %d. The player's stats are: Strength: %d, Intelligence: %d, Charisma: %d.\n\n",
		character.Level, character.Strength, character.Intelligence, character.Charisma)

	b.WriteString("The event should be engaging, encourage exploration, and offer 2-4 quantified multiple-choice options. ")
	b.WriteString("Each option must have at least one clear consequence, such as gaining XP, gold, items, or affecting health.\n\n")

	b.WriteString("Respond with a single JSON object and nothing else, matching this shape exactly:\n\n")
	b.WriteString(schema.Encode(schema.KindEvent).Render())
	b.WriteString("\n")

	return b.String()
}

// estimateTokens оценивает размер инструкции в токенах. Подсчет только для
// логов, поэтому любой сбой токенизатора деградирует в -1, а не в ошибку.
func estimateTokens(text string) int {
	tke, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return -1
	}
	return len(tke.Encode(text, nil, nil))
}
