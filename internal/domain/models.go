package domain

import (
	"github.com/google/uuid"
)

// Основные модели игры. Все сущности с идентификатором сравниваются по ID,
// остальные поля в равенстве не участвуют (см. SameIdentity).

// Item представляет предмет в инвентаре или в последствии события.
// После генерации предмет не изменяется.
type Item struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Value       int        `json:"value"`
	Type        ItemType   `json:"type"`
	Effect      ItemEffect `json:"effect"`
}

// SameIdentity сообщает, ссылаются ли два предмета на одну сущность.
func (i Item) SameIdentity(other Item) bool {
	return i.ID == other.ID
}

// ItemEffect описывает эффект предмета.
type ItemEffect struct {
	Type  EffectType `json:"type"`
	Value int        `json:"value"`
}

// Location представляет локацию мира. Неизменяема после генерации.
type Location struct {
	ID          uuid.UUID    `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Type        LocationType `json:"type"`
}

// SameIdentity сообщает, ссылаются ли две локации на одну сущность.
func (l Location) SameIdentity(other Location) bool {
	return l.ID == other.ID
}

// Quest представляет квест игрока. Награда применяется через тот же
// механизм последствий, что и выбор в событии.
type Quest struct {
	ID          uuid.UUID     `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	IsActive    bool          `json:"is_active"`
	IsCompleted bool          `json:"is_completed"`
	Reward      []Consequence `json:"reward"`
}

// Consequence представляет одно типизированное последствие выбора.
// Amount обязателен для числовых типов, Item для gainItem/loseItem,
// Location для changeLocation. Последствие без обязательного поля
// считается некорректным и пропускается движком с предупреждением.
type Consequence struct {
	Type     ConsequenceType `json:"type"`
	Amount   *int            `json:"amount,omitempty"`
	Item     *Item           `json:"item,omitempty"`
	Location *Location       `json:"location,omitempty"`
}

// EventOption представляет один вариант выбора в событии.
// Последствия применяются строго в порядке списка.
type EventOption struct {
	ID           uuid.UUID     `json:"id"`
	Text         string        `json:"text"`
	Consequences []Consequence `json:"consequences"`
}

// GameEvent представляет сгенерированное событие с вариантами выбора.
type GameEvent struct {
	ID          uuid.UUID     `json:"id"`
	Description string        `json:"description"`
	Options     []EventOption `json:"options"`
}

// Option возвращает вариант выбора по его ID.
func (e *GameEvent) Option(id uuid.UUID) (EventOption, bool) {
	for _, opt := range e.Options {
		if opt.ID == id {
			return opt, true
		}
	}
	return EventOption{}, false
}

// GameProgress отслеживает продвижение по сюжету. Счетчики только растут.
type GameProgress struct {
	Act     int `json:"act"`
	Chapter int `json:"chapter"`
}
