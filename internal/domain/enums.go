package domain

// Closed string enumerations shared by the generation contract and the decoder.
// The schema package derives the instruction text from the Values lists, so the
// set the model is told about and the set the decoder accepts cannot drift apart.

// ConsequenceType определяет вид эффекта, применяемого к состоянию игры.
type ConsequenceType string

const (
	ConsequenceGainXP         ConsequenceType = "gainXP"
	ConsequenceLoseXP         ConsequenceType = "loseXP"
	ConsequenceGainGold       ConsequenceType = "gainGold"
	ConsequenceLoseGold       ConsequenceType = "loseGold"
	ConsequenceGainItem       ConsequenceType = "gainItem"
	ConsequenceLoseItem       ConsequenceType = "loseItem"
	ConsequenceChangeHealth   ConsequenceType = "changeHealth"
	ConsequenceChangeLocation ConsequenceType = "changeLocation"
	ConsequenceNone           ConsequenceType = "none"
)

// ConsequenceTypes возвращает все допустимые значения ConsequenceType.
func ConsequenceTypes() []ConsequenceType {
	return []ConsequenceType{
		ConsequenceGainXP,
		ConsequenceLoseXP,
		ConsequenceGainGold,
		ConsequenceLoseGold,
		ConsequenceGainItem,
		ConsequenceLoseItem,
		ConsequenceChangeHealth,
		ConsequenceChangeLocation,
		ConsequenceNone,
	}
}

// Valid сообщает, входит ли значение в перечисление.
func (t ConsequenceType) Valid() bool {
	for _, v := range ConsequenceTypes() {
		if t == v {
			return true
		}
	}
	return false
}

// RequiresAmount сообщает, обязателен ли числовой параметр для данного типа.
func (t ConsequenceType) RequiresAmount() bool {
	switch t {
	case ConsequenceGainXP, ConsequenceLoseXP, ConsequenceGainGold, ConsequenceLoseGold, ConsequenceChangeHealth:
		return true
	}
	return false
}

// RequiresItem сообщает, обязателен ли предмет для данного типа.
func (t ConsequenceType) RequiresItem() bool {
	return t == ConsequenceGainItem || t == ConsequenceLoseItem
}

// RequiresLocation сообщает, обязательна ли локация для данного типа.
func (t ConsequenceType) RequiresLocation() bool {
	return t == ConsequenceChangeLocation
}

// ItemType определяет категорию предмета.
type ItemType string

const (
	ItemWeapon   ItemType = "weapon"
	ItemArmor    ItemType = "armor"
	ItemPotion   ItemType = "potion"
	ItemQuest    ItemType = "quest"
	ItemTreasure ItemType = "treasure"
)

// ItemTypes возвращает все допустимые значения ItemType.
func ItemTypes() []ItemType {
	return []ItemType{ItemWeapon, ItemArmor, ItemPotion, ItemQuest, ItemTreasure}
}

// Valid сообщает, входит ли значение в перечисление.
func (t ItemType) Valid() bool {
	for _, v := range ItemTypes() {
		if t == v {
			return true
		}
	}
	return false
}

// EffectType определяет вид эффекта предмета.
type EffectType string

const (
	EffectHealing    EffectType = "healing"
	EffectDamage     EffectType = "damage"
	EffectProtection EffectType = "protection"
)

// EffectTypes возвращает все допустимые значения EffectType.
func EffectTypes() []EffectType {
	return []EffectType{EffectHealing, EffectDamage, EffectProtection}
}

// Valid сообщает, входит ли значение в перечисление.
func (t EffectType) Valid() bool {
	for _, v := range EffectTypes() {
		if t == v {
			return true
		}
	}
	return false
}

// LocationType определяет категорию локации.
type LocationType string

const (
	LocationRoom       LocationType = "room"
	LocationVillage    LocationType = "village"
	LocationCity       LocationType = "city"
	LocationRoad       LocationType = "road"
	LocationShop       LocationType = "shop"
	LocationWilderness LocationType = "wilderness"
)

// LocationTypes возвращает все допустимые значения LocationType.
func LocationTypes() []LocationType {
	return []LocationType{LocationRoom, LocationVillage, LocationCity, LocationRoad, LocationShop, LocationWilderness}
}

// Valid сообщает, входит ли значение в перечисление.
func (t LocationType) Valid() bool {
	for _, v := range LocationTypes() {
		if t == v {
			return true
		}
	}
	return false
}
