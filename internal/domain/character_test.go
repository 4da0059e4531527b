package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCharacterDefaults(t *testing.T) {
	c := NewCharacter("Hero")

	assert.Equal(t, "Hero", c.Name)
	assert.Equal(t, 1, c.Level)
	assert.Equal(t, 0, c.XP)
	assert.Equal(t, 100, c.XPToNextLevel)
	assert.Equal(t, 100, c.Gold)
	assert.Equal(t, 100, c.Health)
	assert.Equal(t, 100, c.MaxHealth)
	assert.Equal(t, 10, c.Strength)
	assert.Equal(t, 10, c.Intelligence)
	assert.Equal(t, 10, c.Charisma)
	assert.Empty(t, c.Inventory)
}

func TestGainXPLevelUpCascade(t *testing.T) {
	c := NewCharacter("Hero")
	c.XP = 90

	// 90+250=340: уровень 2 (порог 100, остаток 240), уровень 3 (порог 200,
	// остаток 40), порог уровня 3 равен 300 — каскад останавливается.
	levels := c.GainXP(250)

	assert.Equal(t, 2, levels)
	assert.Equal(t, 3, c.Level)
	assert.Equal(t, 40, c.XP)
	assert.Equal(t, 300, c.XPToNextLevel)

	// Два повышения: +2 к каждой характеристике и +10 к максимуму здоровья
	// за каждое, здоровье восстановлено до максимума.
	assert.Equal(t, 14, c.Strength)
	assert.Equal(t, 14, c.Intelligence)
	assert.Equal(t, 14, c.Charisma)
	assert.Equal(t, 120, c.MaxHealth)
	assert.Equal(t, 120, c.Health)
}

func TestGainXPExactThreshold(t *testing.T) {
	c := NewCharacter("Hero")

	levels := c.GainXP(100)

	assert.Equal(t, 1, levels)
	assert.Equal(t, 2, c.Level)
	assert.Equal(t, 0, c.XP)
	assert.Equal(t, 200, c.XPToNextLevel)
}

func TestGainXPNonPositive(t *testing.T) {
	c := NewCharacter("Hero")
	c.XP = 50

	assert.Zero(t, c.GainXP(0))
	assert.Zero(t, c.GainXP(-10))
	assert.Equal(t, 50, c.XP)
	assert.Equal(t, 1, c.Level)
}

func TestLoseXPFloor(t *testing.T) {
	c := NewCharacter("Hero")
	c.XP = 30

	c.LoseXP(50)
	assert.Equal(t, 0, c.XP)
	// Потеря опыта не понижает уровень.
	assert.Equal(t, 1, c.Level)
}

func TestGoldFloor(t *testing.T) {
	c := NewCharacter("Hero")

	c.LoseGold(9999)
	assert.Equal(t, 0, c.Gold)

	c.GainGold(25)
	assert.Equal(t, 25, c.Gold)
}

func TestChangeHealthClamp(t *testing.T) {
	c := NewCharacter("Hero")

	c.ChangeHealth(9999)
	assert.Equal(t, c.MaxHealth, c.Health)

	c.ChangeHealth(-9999)
	assert.Equal(t, 0, c.Health)
	assert.False(t, c.IsAlive())

	c.ChangeHealth(10)
	assert.Equal(t, 10, c.Health)
	assert.True(t, c.IsAlive())
}

func TestInventoryRemoveFirstMatch(t *testing.T) {
	c := NewCharacter("Hero")

	id := uuid.New()
	sword := Item{ID: id, Name: "Sword", Type: ItemWeapon}
	c.AddItem(sword)
	c.AddItem(sword)
	require.Len(t, c.Inventory, 2)

	// Удаляется ровно один экземпляр.
	assert.True(t, c.RemoveItem(sword))
	assert.Len(t, c.Inventory, 1)

	// Отсутствующий предмет — no-op.
	other := Item{ID: uuid.New(), Name: "Shield", Type: ItemArmor}
	assert.False(t, c.RemoveItem(other))
	assert.Len(t, c.Inventory, 1)
}
