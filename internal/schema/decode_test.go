package schema

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"genrpg-server/internal/domain"
)

const validEventJSON = `{
	"description": "A merchant waves you over to his stall.",
	"options": [
		{
			"id": "8f14e45f-ea1a-4e4e-9a3b-5b9a0d1a2b3c",
			"text": "Buy the strange amulet",
			"consequences": [
				{"type": "loseGold", "amount": 30},
				{
					"type": "gainItem",
					"item": {
						"name": "Strange Amulet",
						"description": "It hums faintly.",
						"value": 30,
						"type": "treasure",
						"effect": {"type": "protection", "value": 5}
					}
				}
			]
		},
		{
			"text": "Walk away",
			"consequences": [{"type": "none"}]
		}
	]
}`

func TestDecodeEventValid(t *testing.T) {
	event, err := DecodeEvent(validEventJSON)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, "A merchant waves you over to his stall.", event.Description)
	require.Len(t, event.Options, 2)

	first := event.Options[0]
	// Валидный UUID варианта сохраняется.
	assert.Equal(t, "8f14e45f-ea1a-4e4e-9a3b-5b9a0d1a2b3c", first.ID.String())
	require.Len(t, first.Consequences, 2)

	lose := first.Consequences[0]
	assert.Equal(t, domain.ConsequenceLoseGold, lose.Type)
	require.NotNil(t, lose.Amount)
	assert.Equal(t, 30, *lose.Amount)

	gain := first.Consequences[1]
	require.NotNil(t, gain.Item)
	assert.Equal(t, "Strange Amulet", gain.Item.Name)
	assert.Equal(t, domain.ItemTreasure, gain.Item.Type)
	assert.Equal(t, domain.EffectProtection, gain.Item.Effect.Type)
	// Отсутствующий ID предмета выдается декодером.
	assert.NotEqual(t, uuid.Nil, gain.Item.ID)

	// Вариант без ID получает новый.
	assert.NotEqual(t, uuid.Nil, event.Options[1].ID)
}

func TestDecodeEventMarkdownFence(t *testing.T) {
	wrapped := "Here is your event:\n```json\n" + validEventJSON + "\n```\nEnjoy!"

	event, err := DecodeEvent(wrapped)
	require.NoError(t, err)
	assert.Len(t, event.Options, 2)
}

func TestDecodeEventExtraFieldsIgnored(t *testing.T) {
	raw := `{
		"description": "Something happens.",
		"mood": "ominous",
		"options": [
			{"text": "Run", "consequences": [{"type": "none", "flavor": "dust"}], "difficulty": 3}
		]
	}`

	event, err := DecodeEvent(raw)
	require.NoError(t, err)
	assert.Len(t, event.Options, 1)
}

func TestDecodeEventNotValidJSON(t *testing.T) {
	_, err := DecodeEvent("the dragon ate your JSON")

	var decodeErr *DecodeError
	require.True(t, errors.As(err, &decodeErr))
	assert.Equal(t, KindNotValidJSON, decodeErr.Kind)
}

func TestDecodeEventMissingFields(t *testing.T) {
	cases := []struct {
		name   string
		raw    string
		field  string
		entity string
	}{
		{"no description", `{"options": [{"text": "a", "consequences": []}]}`, "description", "event"},
		{"no options", `{"description": "x"}`, "options", "event"},
		{"empty options", `{"description": "x", "options": []}`, "options", "event"},
		{"option without text", `{"description": "x", "options": [{"consequences": []}]}`, "text", "option"},
		{"consequence without type", `{"description": "x", "options": [{"text": "a", "consequences": [{}]}]}`, "type", "consequence"},
		{"item without effect", `{"description": "x", "options": [{"text": "a", "consequences": [
			{"type": "gainItem", "item": {"name": "n", "description": "d", "value": 1, "type": "weapon"}}
		]}]}`, "effect", "item"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeEvent(tc.raw)

			var decodeErr *DecodeError
			require.True(t, errors.As(err, &decodeErr))
			assert.Equal(t, KindMissingRequiredField, decodeErr.Kind)
			assert.Equal(t, tc.field, decodeErr.Field)
			assert.Equal(t, tc.entity, decodeErr.Entity)
		})
	}
}

func TestDecodeEventInvalidEnum(t *testing.T) {
	raw := `{
		"description": "x",
		"options": [{"text": "a", "consequences": [{"type": "stealHorse"}]}]
	}`

	_, err := DecodeEvent(raw)

	var decodeErr *DecodeError
	require.True(t, errors.As(err, &decodeErr))
	assert.Equal(t, KindInvalidEnumValue, decodeErr.Kind)
	assert.Equal(t, "stealHorse", decodeErr.Got)
	assert.Contains(t, decodeErr.Expected, "gainXP")
	assert.Contains(t, decodeErr.Expected, "none")
}

func TestDecodeEventFractionalAmount(t *testing.T) {
	// Дробный amount отбрасывается: последствие декодируется без него,
	// дальше движок пропустит его с предупреждением.
	raw := `{
		"description": "x",
		"options": [{"text": "a", "consequences": [{"type": "gainGold", "amount": 12.5}]}]
	}`

	event, err := DecodeEvent(raw)
	require.NoError(t, err)
	assert.Nil(t, event.Options[0].Consequences[0].Amount)
}
