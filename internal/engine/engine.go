package engine

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"genrpg-server/internal/domain"
)

// ErrOptionNotInEvent возвращается, когда применяемый вариант не принадлежит
// разрешаемому событию. Это ошибка вызывающей стороны, а не данных, поэтому
// она фатальна для вызова и не должна молча проглатываться.
var ErrOptionNotInEvent = errors.New("option does not belong to the event being resolved")

// Warning фиксирует пропущенное некорректное последствие. Предупреждения
// накапливаются для диагностики и никогда не прерывают применение варианта.
type Warning struct {
	Index  int                    `json:"index"`
	Type   domain.ConsequenceType `json:"type"`
	Reason string                 `json:"reason"`
}

func (w Warning) String() string {
	return fmt.Sprintf("consequence #%d (%s): %s", w.Index, w.Type, w.Reason)
}

// Engine применяет выбранный вариант события к состоянию игры.
// ApplyOption — чистая функция от (state, option): одинаковый вход всегда
// дает одинаковый результат, скрытой случайности нет.
type Engine struct {
	log zerolog.Logger
}

// New создает движок последствий.
func New(log zerolog.Logger) *Engine {
	return &Engine{log: log.With().Str("component", "engine").Logger()}
}

// ApplyOption применяет последствия варианта строго в порядке списка и
// возвращает новое состояние. Исходное состояние не изменяется.
// Некорректные отдельные последствия пропускаются с предупреждением;
// ошибкой считается только вариант, не принадлежащий событию.
func (e *Engine) ApplyOption(state *domain.GameState, event *domain.GameEvent, optionID uuid.UUID) (*domain.GameState, []Warning, error) {
	if event == nil {
		return nil, nil, ErrOptionNotInEvent
	}
	option, ok := event.Option(optionID)
	if !ok {
		return nil, nil, fmt.Errorf("%w: option %s, event %s", ErrOptionNotInEvent, optionID, event.ID)
	}

	next := state.Clone()
	warnings := e.applyConsequences(next, option.Consequences)

	// Защитная проверка каскада после всего варианта: на случай, если опыт
	// когда-нибудь начнет расти не только через gainXP. Идемпотентна.
	next.Character.ResolveLevelUps()

	for _, w := range warnings {
		e.log.Warn().Int("index", w.Index).Str("type", string(w.Type)).Str("reason", w.Reason).
			Msg("skipped malformed consequence")
	}

	return next, warnings, nil
}

// ApplyQuestReward применяет последствия награды квеста тем же путем,
// что и последствия варианта события.
func (e *Engine) ApplyQuestReward(state *domain.GameState, quest domain.Quest) (*domain.GameState, []Warning) {
	next := state.Clone()
	warnings := e.applyConsequences(next, quest.Reward)
	next.Character.ResolveLevelUps()
	return next, warnings
}

func (e *Engine) applyConsequences(state *domain.GameState, consequences []domain.Consequence) []Warning {
	var warnings []Warning
	for i, cons := range consequences {
		if warning := applyConsequence(state, cons); warning != "" {
			warnings = append(warnings, Warning{Index: i, Type: cons.Type, Reason: warning})
		}
	}
	return warnings
}

// applyConsequence применяет одно последствие. Возвращает непустую причину,
// если последствие некорректно и было пропущено.
func applyConsequence(state *domain.GameState, cons domain.Consequence) string {
	switch cons.Type {
	case domain.ConsequenceGainXP:
		if cons.Amount == nil {
			return "missing amount"
		}
		state.Character.GainXP(*cons.Amount)

	case domain.ConsequenceLoseXP:
		if cons.Amount == nil {
			return "missing amount"
		}
		state.Character.LoseXP(*cons.Amount)

	case domain.ConsequenceGainGold:
		if cons.Amount == nil {
			return "missing amount"
		}
		state.Character.GainGold(*cons.Amount)

	case domain.ConsequenceLoseGold:
		if cons.Amount == nil {
			return "missing amount"
		}
		state.Character.LoseGold(*cons.Amount)

	case domain.ConsequenceGainItem:
		if cons.Item == nil {
			return "missing item"
		}
		state.Character.AddItem(*cons.Item)

	case domain.ConsequenceLoseItem:
		if cons.Item == nil {
			return "missing item"
		}
		// Удаление отсутствующего предмета — no-op, не ошибка.
		state.Character.RemoveItem(*cons.Item)

	case domain.ConsequenceChangeHealth:
		if cons.Amount == nil {
			return "missing amount"
		}
		state.Character.ChangeHealth(*cons.Amount)

	case domain.ConsequenceChangeLocation:
		if cons.Location == nil {
			return "missing location"
		}
		state.MoveTo(*cons.Location)

	case domain.ConsequenceNone:
		// Явная заглушка, эффекта нет.

	default:
		return fmt.Sprintf("unknown consequence type %q", cons.Type)
	}
	return ""
}
