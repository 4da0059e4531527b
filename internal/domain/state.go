package domain

import (
	"github.com/google/uuid"
)

// Стартовая локация нового мира (как в оригинальной кампании).
const (
	DefaultCharacterName        = "Hero"
	startingLocationName        = "Lake Village"
	startingLocationDescription = "A quaint village with cobblestone paths and friendly faces."
)

// GameState является корневым агрегатом: владеет персонажем, открытыми
// локациями, прогрессом и активными квестами. CurrentLocationID всегда
// указывает на элемент Locations.
type GameState struct {
	Character          Character    `json:"character"`
	CurrentLocationID  uuid.UUID    `json:"current_location_id"`
	Locations          []Location   `json:"locations"`
	GameProgress       GameProgress `json:"game_progress"`
	VisitedLocationIDs []uuid.UUID  `json:"visited_location_ids"`
	ActiveQuests       []Quest      `json:"active_quests"`
}

// NewInitialGameState создает состояние новой игры: персонаж по умолчанию,
// одна стартовая локация, пустые квесты, акт 1 / глава 1.
func NewInitialGameState() *GameState {
	start := Location{
		ID:          uuid.New(),
		Name:        startingLocationName,
		Description: startingLocationDescription,
		Type:        LocationVillage,
	}
	return &GameState{
		Character:          NewCharacter(DefaultCharacterName),
		CurrentLocationID:  start.ID,
		Locations:          []Location{start},
		GameProgress:       GameProgress{Act: 1, Chapter: 1},
		VisitedLocationIDs: []uuid.UUID{},
		ActiveQuests:       []Quest{},
	}
}

// CurrentLocation возвращает текущую локацию.
func (s *GameState) CurrentLocation() (Location, bool) {
	return s.LocationByID(s.CurrentLocationID)
}

// LocationByID возвращает локацию по ID.
func (s *GameState) LocationByID(id uuid.UUID) (Location, bool) {
	for _, loc := range s.Locations {
		if loc.ID == id {
			return loc, true
		}
	}
	return Location{}, false
}

// HasVisited сообщает, посещал ли игрок локацию.
func (s *GameState) HasVisited(id uuid.UUID) bool {
	for _, v := range s.VisitedLocationIDs {
		if v == id {
			return true
		}
	}
	return false
}

// RegisterLocation добавляет локацию в мир, если ее там еще нет.
func (s *GameState) RegisterLocation(loc Location) {
	if _, ok := s.LocationByID(loc.ID); !ok {
		s.Locations = append(s.Locations, loc)
	}
}

// MarkVisited отмечает локацию как посещенную.
func (s *GameState) MarkVisited(id uuid.UUID) {
	if !s.HasVisited(id) {
		s.VisitedLocationIDs = append(s.VisitedLocationIDs, id)
	}
}

// MoveTo регистрирует локацию при необходимости, отмечает ее посещенной
// и делает текущей.
func (s *GameState) MoveTo(loc Location) {
	s.RegisterLocation(loc)
	s.MarkVisited(loc.ID)
	s.CurrentLocationID = loc.ID
}

// Clone возвращает глубокую копию состояния. Срезы копируются поэлементно,
// чтобы мутации копии не затрагивали оригинал.
func (s *GameState) Clone() *GameState {
	cp := *s

	cp.Character.Inventory = make([]Item, len(s.Character.Inventory))
	copy(cp.Character.Inventory, s.Character.Inventory)

	cp.Locations = make([]Location, len(s.Locations))
	copy(cp.Locations, s.Locations)

	cp.VisitedLocationIDs = make([]uuid.UUID, len(s.VisitedLocationIDs))
	copy(cp.VisitedLocationIDs, s.VisitedLocationIDs)

	cp.ActiveQuests = make([]Quest, len(s.ActiveQuests))
	for i, q := range s.ActiveQuests {
		qc := q
		qc.Reward = make([]Consequence, len(q.Reward))
		copy(qc.Reward, q.Reward)
		cp.ActiveQuests[i] = qc
	}

	return &cp
}

// ActiveQuestByID возвращает активный квест по ID.
func (s *GameState) ActiveQuestByID(id uuid.UUID) (*Quest, bool) {
	for i := range s.ActiveQuests {
		if s.ActiveQuests[i].ID == id {
			return &s.ActiveQuests[i], true
		}
	}
	return nil, false
}
