package schema

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/google/uuid"

	"genrpg-server/internal/domain"
)

// DecodeEvent разбирает сырой текст ответа модели в доменное событие.
// Валидация строгая по структуре (неизвестная форма верхнего уровня — ошибка),
// но терпимая к лишним полям: они игнорируются. Отсутствующие или битые
// идентификаторы вложенных объектов заменяются новыми: от модели не ожидается
// умение выдавать корректные UUID. Любая ошибка валидации фатальна для всего
// события, частичный результат не возвращается.
func DecodeEvent(raw string) (*domain.GameEvent, error) {
	payload := extractJSON(raw)

	var data map[string]interface{}
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		return nil, notValidJSON(err)
	}

	description, ok := stringField(data, "description")
	if !ok {
		return nil, missingField("description", "event")
	}

	rawOptions, ok := data["options"].([]interface{})
	if !ok || len(rawOptions) == 0 {
		return nil, missingField("options", "event")
	}

	event := &domain.GameEvent{
		ID:          uuid.New(),
		Description: description,
		Options:     make([]domain.EventOption, 0, len(rawOptions)),
	}

	for _, rawOpt := range rawOptions {
		optMap, ok := rawOpt.(map[string]interface{})
		if !ok {
			return nil, missingField("options", "event")
		}
		opt, err := decodeOption(optMap)
		if err != nil {
			return nil, err
		}
		event.Options = append(event.Options, opt)
	}

	return event, nil
}

func decodeOption(data map[string]interface{}) (domain.EventOption, error) {
	text, ok := stringField(data, "text")
	if !ok {
		return domain.EventOption{}, missingField("text", "option")
	}

	rawConsequences, ok := data["consequences"].([]interface{})
	if !ok {
		return domain.EventOption{}, missingField("consequences", "option")
	}

	opt := domain.EventOption{
		ID:           identityField(data, "id"),
		Text:         text,
		Consequences: make([]domain.Consequence, 0, len(rawConsequences)),
	}

	for _, rawCons := range rawConsequences {
		consMap, ok := rawCons.(map[string]interface{})
		if !ok {
			return domain.EventOption{}, missingField("consequences", "option")
		}
		cons, err := decodeConsequence(consMap)
		if err != nil {
			return domain.EventOption{}, err
		}
		opt.Consequences = append(opt.Consequences, cons)
	}

	return opt, nil
}

func decodeConsequence(data map[string]interface{}) (domain.Consequence, error) {
	rawType, ok := stringField(data, "type")
	if !ok {
		return domain.Consequence{}, missingField("type", "consequence")
	}

	consType := domain.ConsequenceType(rawType)
	if !consType.Valid() {
		return domain.Consequence{}, invalidEnum("type", "consequence", rawType, consequenceTypeValues())
	}

	cons := domain.Consequence{Type: consType}

	if amount, ok := intField(data, "amount"); ok {
		cons.Amount = &amount
	}

	if itemMap, ok := data["item"].(map[string]interface{}); ok {
		item, err := decodeItem(itemMap)
		if err != nil {
			return domain.Consequence{}, err
		}
		cons.Item = &item
	}

	if locMap, ok := data["location"].(map[string]interface{}); ok {
		loc, err := decodeLocation(locMap)
		if err != nil {
			return domain.Consequence{}, err
		}
		cons.Location = &loc
	}

	return cons, nil
}

func decodeItem(data map[string]interface{}) (domain.Item, error) {
	name, ok := stringField(data, "name")
	if !ok {
		return domain.Item{}, missingField("name", "item")
	}
	description, ok := stringField(data, "description")
	if !ok {
		return domain.Item{}, missingField("description", "item")
	}
	value, ok := intField(data, "value")
	if !ok {
		return domain.Item{}, missingField("value", "item")
	}

	rawType, ok := stringField(data, "type")
	if !ok {
		return domain.Item{}, missingField("type", "item")
	}
	itemType := domain.ItemType(rawType)
	if !itemType.Valid() {
		return domain.Item{}, invalidEnum("type", "item", rawType, itemTypeValues())
	}

	effectMap, ok := data["effect"].(map[string]interface{})
	if !ok {
		return domain.Item{}, missingField("effect", "item")
	}
	effect, err := decodeItemEffect(effectMap)
	if err != nil {
		return domain.Item{}, err
	}

	return domain.Item{
		ID:          identityField(data, "id"),
		Name:        name,
		Description: description,
		Value:       value,
		Type:        itemType,
		Effect:      effect,
	}, nil
}

func decodeItemEffect(data map[string]interface{}) (domain.ItemEffect, error) {
	rawType, ok := stringField(data, "type")
	if !ok {
		return domain.ItemEffect{}, missingField("type", "effect")
	}
	effectType := domain.EffectType(rawType)
	if !effectType.Valid() {
		return domain.ItemEffect{}, invalidEnum("type", "effect", rawType, effectTypeValues())
	}

	value, ok := intField(data, "value")
	if !ok {
		return domain.ItemEffect{}, missingField("value", "effect")
	}

	return domain.ItemEffect{Type: effectType, Value: value}, nil
}

func decodeLocation(data map[string]interface{}) (domain.Location, error) {
	name, ok := stringField(data, "name")
	if !ok {
		return domain.Location{}, missingField("name", "location")
	}
	description, ok := stringField(data, "description")
	if !ok {
		return domain.Location{}, missingField("description", "location")
	}

	rawType, ok := stringField(data, "type")
	if !ok {
		return domain.Location{}, missingField("type", "location")
	}
	locType := domain.LocationType(rawType)
	if !locType.Valid() {
		return domain.Location{}, invalidEnum("type", "location", rawType, locationTypeValues())
	}

	return domain.Location{
		ID:          identityField(data, "id"),
		Name:        name,
		Description: description,
		Type:        locType,
	}, nil
}

// stringField возвращает непустое строковое поле.
func stringField(data map[string]interface{}, key string) (string, bool) {
	value, ok := data[key].(string)
	if !ok || strings.TrimSpace(value) == "" {
		return "", false
	}
	return value, true
}

// intField возвращает целочисленное поле. JSON-числа приходят как float64,
// дробные значения считаются отсутствующими.
func intField(data map[string]interface{}, key string) (int, bool) {
	value, ok := data[key].(float64)
	if !ok {
		return 0, false
	}
	if value != math.Trunc(value) {
		return 0, false
	}
	return int(value), true
}

// identityField разбирает UUID из поля или выдает новый, если поле
// отсутствует или не парсится.
func identityField(data map[string]interface{}, key string) uuid.UUID {
	if raw, ok := data[key].(string); ok {
		if id, err := uuid.Parse(raw); err == nil {
			return id
		}
	}
	return uuid.New()
}

// extractJSON вырезает JSON-объект из ответа модели: некоторые модели
// оборачивают ответ в markdown-ограждение или добавляют текст вокруг.
func extractJSON(raw string) string {
	trimmed := strings.TrimSpace(raw)

	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
			trimmed = trimmed[:idx]
		}
		trimmed = strings.TrimSpace(trimmed)
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start >= 0 && end > start {
		return trimmed[start : end+1]
	}
	return trimmed
}
