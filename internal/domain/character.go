package domain

// Базовые значения нового персонажа.
const (
	BaseLevel        = 1
	BaseGold         = 100
	BaseHealth       = 100
	BaseStat         = 10
	XPPerLevelFactor = 100

	levelUpHealthBonus = 10
	levelUpStatBonus   = 2
)

// Character представляет персонажа игрока. Единственная изменяемая сущность
// помимо GameState; все мутации идут через методы ниже, чтобы инварианты
// (нижние границы золота и здоровья, каскад уровней) держались в одном месте.
type Character struct {
	Name          string `json:"name"`
	Level         int    `json:"level"`
	XP            int    `json:"xp"`
	XPToNextLevel int    `json:"xp_to_next_level"`
	Gold          int    `json:"gold"`
	Health        int    `json:"health"`
	MaxHealth     int    `json:"max_health"`
	Strength      int    `json:"strength"`
	Intelligence  int    `json:"intelligence"`
	Charisma      int    `json:"charisma"`
	Inventory     []Item `json:"inventory"`
}

// NewCharacter создает персонажа первого уровня со стартовыми характеристиками.
func NewCharacter(name string) Character {
	return Character{
		Name:          name,
		Level:         BaseLevel,
		XP:            0,
		XPToNextLevel: BaseLevel * XPPerLevelFactor,
		Gold:          BaseGold,
		Health:        BaseHealth,
		MaxHealth:     BaseHealth,
		Strength:      BaseStat,
		Intelligence:  BaseStat,
		Charisma:      BaseStat,
		Inventory:     []Item{},
	}
}

// levelUp поднимает персонажа на один уровень. Порог пересчитывается от
// нового уровня, избыток опыта сохраняется для следующего порога.
func (c *Character) levelUp() {
	c.Level++
	c.XPToNextLevel = c.Level * XPPerLevelFactor
	c.MaxHealth += levelUpHealthBonus
	c.Strength += levelUpStatBonus
	c.Intelligence += levelUpStatBonus
	c.Charisma += levelUpStatBonus
	c.Health = c.MaxHealth
}

// GainXP добавляет опыт и прогоняет каскад повышений уровня.
// Возвращает количество полученных уровней.
func (c *Character) GainXP(amount int) int {
	if amount <= 0 {
		return 0
	}
	c.XP += amount
	return c.ResolveLevelUps()
}

// ResolveLevelUps повторяет повышение уровня, пока xp >= порога.
// Именно цикл, а не одна проверка: крупное начисление опыта может дать
// несколько уровней подряд, и каждый раз порог берется от нового уровня.
// Идемпотентно, безопасно вызывать после любой мутации xp.
func (c *Character) ResolveLevelUps() int {
	levels := 0
	for c.XP >= c.XPToNextLevel {
		c.XP -= c.XPToNextLevel
		c.levelUp()
		levels++
	}
	return levels
}

// LoseXP снимает опыт с нижней границей 0. Уровни вниз не каскадируются.
func (c *Character) LoseXP(amount int) {
	if amount <= 0 {
		return
	}
	c.XP -= amount
	if c.XP < 0 {
		c.XP = 0
	}
}

// GainGold добавляет золото.
func (c *Character) GainGold(amount int) {
	c.Gold += amount
}

// LoseGold снимает золото с нижней границей 0.
func (c *Character) LoseGold(amount int) {
	c.Gold -= amount
	if c.Gold < 0 {
		c.Gold = 0
	}
}

// AddItem добавляет предмет в конец инвентаря. Дубликаты разрешены,
// стекирования нет.
func (c *Character) AddItem(item Item) {
	c.Inventory = append(c.Inventory, item)
}

// RemoveItem удаляет первый предмет с совпадающим ID.
// Удаление отсутствующего предмета не является ошибкой.
func (c *Character) RemoveItem(item Item) bool {
	for i, inv := range c.Inventory {
		if inv.SameIdentity(item) {
			c.Inventory = append(c.Inventory[:i], c.Inventory[i+1:]...)
			return true
		}
	}
	return false
}

// ChangeHealth изменяет здоровье (amount может быть отрицательным)
// с ограничением диапазона [0, MaxHealth].
func (c *Character) ChangeHealth(amount int) {
	c.Health += amount
	if c.Health < 0 {
		c.Health = 0
	}
	if c.Health > c.MaxHealth {
		c.Health = c.MaxHealth
	}
}

// IsAlive сообщает, жив ли персонаж. Само по себе нулевое здоровье игру
// не завершает, решение принимает сессионный слой.
func (c *Character) IsAlive() bool {
	return c.Health > 0
}
